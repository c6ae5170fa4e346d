package models

import (
	"encoding/json"
	"sort"
)

// Attribute names of the demographics table key schema
const (
	AttrZipCode         = "zip_code"
	AttrNumParticipants = "num_participants"

	// JunkField is stripped from every set of extra attributes before persistence
	JunkField = "junk_field"
)

// Record is one row of the demographics table: the composite key plus any number of
// schemaless attributes (counts by demographic category, nested structures, ...).
type Record map[string]interface{}

// Key identifies a record within the table
type Key struct {
	ZipCode         int64 `json:"zip_code"`
	NumParticipants int64 `json:"num_participants"`
}

// NewRecord builds a record from sanitized extra attributes and the normalized key.
// Key attributes present in extra are overwritten.
func NewRecord(zipCode, numParticipants int64, extra map[string]interface{}) Record {
	record := Record(SanitizeFields(extra))
	record[AttrZipCode] = zipCode
	record[AttrNumParticipants] = numParticipants
	return record
}

// ZipCode returns the record's partition key
func (r Record) ZipCode() (int64, bool) {
	return ParseKey(r[AttrZipCode])
}

// NumParticipants returns the record's sort key
func (r Record) NumParticipants() (int64, bool) {
	return ParseKey(r[AttrNumParticipants])
}

// Key returns the composite key of the record
func (r Record) Key() (Key, bool) {
	zip, ok := r.ZipCode()
	if !ok {
		return Key{}, false
	}
	n, ok := r.NumParticipants()
	if !ok {
		return Key{}, false
	}
	return Key{ZipCode: zip, NumParticipants: n}, true
}

// Attributes returns a copy of the record without its key attributes
func (r Record) Attributes() map[string]interface{} {
	attrs := make(map[string]interface{}, len(r))
	for name, value := range r {
		if name == AttrZipCode || name == AttrNumParticipants {
			continue
		}
		attrs[name] = value
	}
	return attrs
}

// NormalizeKeys rewrites the key attributes as int64 values. Engines that decode
// numbers generically (JSON, DynamoDB attribute values) return float64 otherwise.
func (r Record) NormalizeKeys() Record {
	if zip, ok := r.ZipCode(); ok {
		r[AttrZipCode] = zip
	}
	if n, ok := r.NumParticipants(); ok {
		r[AttrNumParticipants] = n
	}
	return r
}

// String renders the record as JSON for log output
func (r Record) String() string {
	data, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// SortRecords orders records by zip code, then number of participants
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		zi, _ := records[i].ZipCode()
		zj, _ := records[j].ZipCode()
		if zi != zj {
			return zi < zj
		}
		ni, _ := records[i].NumParticipants()
		nj, _ := records[j].NumParticipants()
		return ni < nj
	})
}
