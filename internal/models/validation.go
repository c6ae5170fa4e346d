package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseKey normalizes a caller-supplied zip code or participant count.
//
// Strings are parsed like a base-10 leading integer: leading whitespace is skipped,
// an optional sign is accepted and parsing stops at the first non-digit. Numbers are
// truncated toward zero. Absent, empty, unparseable and zero values are rejected,
// which means a literal zero can never be used as a key.
func ParseKey(raw interface{}) (int64, bool) {
	var value int64

	switch v := raw.(type) {
	case nil:
		return 0, false
	case string:
		parsed, ok := parseLeadingInt(v)
		if !ok {
			return 0, false
		}
		value = parsed
	case json.Number:
		parsed, ok := parseLeadingInt(v.String())
		if !ok {
			return 0, false
		}
		value = parsed
	case int:
		value = int64(v)
	case int32:
		value = int64(v)
	case int64:
		value = v
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		value = int64(v)
	case uint32:
		value = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		value = int64(v)
	case float32:
		return parseFloatKey(float64(v))
	case float64:
		return parseFloatKey(v)
	default:
		return 0, false
	}

	if value == 0 {
		return 0, false
	}
	return value, true
}

func parseFloatKey(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v <= math.MinInt64 {
		return 0, false
	}
	value := int64(math.Trunc(v))
	if value == 0 {
		return 0, false
	}
	return value, true
}

func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	value, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// SanitizeFields returns a shallow copy of extra attributes without JunkField.
// A nil map yields an empty, non-nil map.
func SanitizeFields(fields map[string]interface{}) map[string]interface{} {
	cleaned := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		if name == JunkField {
			continue
		}
		cleaned[name] = value
	}
	return cleaned
}

// IsTruthy reports whether an inbound request field counts as supplied.
// nil, empty strings, zero numbers and false are treated as missing.
func IsTruthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	case int:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case uint:
		return val != 0
	case uint32:
		return val != 0
	case uint64:
		return val != 0
	case float32:
		return val != 0 && !math.IsNaN(float64(val))
	case float64:
		return val != 0 && !math.IsNaN(val)
	default:
		return true
	}
}
