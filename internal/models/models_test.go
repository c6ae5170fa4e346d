package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name  string
		raw   interface{}
		want  int64
		valid bool
	}{
		{"int", 10001, 10001, true},
		{"int64", int64(55555), 55555, true},
		{"float from json", float64(99999), 99999, true},
		{"float truncated", 12.7, 12, true},
		{"negative float truncated", -3.9, -3, true},
		{"numeric string", "10001", 10001, true},
		{"leading whitespace", "  42", 42, true},
		{"trailing garbage", "551abc", 551, true},
		{"signed string", "+7", 7, true},
		{"negative string", "-5", -5, true},
		{"json number", json.Number("20"), 20, true},
		{"nil", nil, 0, false},
		{"empty string", "", 0, false},
		{"zero", 0, 0, false},
		{"zero string", "0", 0, false},
		{"fraction below one", 0.5, 0, false},
		{"not a number", "abc", 0, false},
		{"sign only", "-", 0, false},
		{"NaN", math.NaN(), 0, false},
		{"infinity", math.Inf(1), 0, false},
		{"bool", true, 0, false},
		{"map", map[string]interface{}{"zip": 1}, 0, false},
		{"overflow", "99999999999999999999", 0, false},
		{"uint", uint(12), 12, true},
		{"uint above int64 range", ^uint(0), 0, false},
		{"uint64 above int64 range", uint64(math.MaxUint64), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseKey(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeFields(t *testing.T) {
	t.Run("strips junk field", func(t *testing.T) {
		in := map[string]interface{}{"count_male": 10, JunkField: "x"}
		out := SanitizeFields(in)

		assert.Equal(t, map[string]interface{}{"count_male": 10}, out)
		assert.Contains(t, in, JunkField, "input must not be mutated")
	})

	t.Run("nil yields empty map", func(t *testing.T) {
		out := SanitizeFields(nil)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
}

func TestNewRecord(t *testing.T) {
	extra := map[string]interface{}{
		AttrZipCode:         "should be overwritten",
		AttrNumParticipants: 1,
		"count_female":      10,
		JunkField:           true,
		"extra_field":       map[string]interface{}{"some_list": []interface{}{55, "a"}},
	}

	record := NewRecord(99999, 20, extra)

	assert.Equal(t, Record{
		AttrZipCode:         int64(99999),
		AttrNumParticipants: int64(20),
		"count_female":      10,
		"extra_field":       map[string]interface{}{"some_list": []interface{}{55, "a"}},
	}, record)

	key, ok := record.Key()
	assert.True(t, ok)
	assert.Equal(t, Key{ZipCode: 99999, NumParticipants: 20}, key)
	assert.NotContains(t, record.Attributes(), AttrZipCode)
	assert.Contains(t, record.Attributes(), "count_female")
}

func TestRecordNormalizeKeys(t *testing.T) {
	record := Record{AttrZipCode: float64(10001), AttrNumParticipants: "4", "count_male": float64(2)}
	record.NormalizeKeys()

	assert.Equal(t, int64(10001), record[AttrZipCode])
	assert.Equal(t, int64(4), record[AttrNumParticipants])
	assert.Equal(t, float64(2), record["count_male"])
}

func TestSortRecords(t *testing.T) {
	records := []Record{
		NewRecord(20, 2, nil),
		NewRecord(10, 5, nil),
		NewRecord(10, 1, nil),
	}
	SortRecords(records)

	var keys []Key
	for _, r := range records {
		k, _ := r.Key()
		keys = append(keys, k)
	}
	assert.Equal(t, []Key{{10, 1}, {10, 5}, {20, 2}}, keys)
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, IsTruthy(nil))
	assert.False(t, IsTruthy(""))
	assert.False(t, IsTruthy(0))
	assert.False(t, IsTruthy(float64(0)))
	assert.False(t, IsTruthy(false))
	assert.False(t, IsTruthy(math.NaN()))
	assert.True(t, IsTruthy("0"))
	assert.True(t, IsTruthy(551))
	assert.True(t, IsTruthy("abc"))
	assert.True(t, IsTruthy(map[string]interface{}{}))
}
