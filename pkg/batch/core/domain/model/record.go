package model

import (
	"encoding/json"
	"strconv"
)

// Record is one decoded JSON line. No schema is enforced; numbers are kept
// as json.Number so identifiers and floats reach the database unchanged.
type Record map[string]interface{}

// Has reports whether key is present with a non-null value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns the value of key if it is a non-empty string.
func (r Record) String(key string) (string, bool) {
	s, ok := r[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Bool returns the value of key if it is a boolean.
func (r Record) Bool(key string) (bool, bool) {
	b, ok := r[key].(bool)
	return b, ok
}

// Float returns the numeric value of key. json.Number, float64, the Go
// integer types and numeric strings are accepted.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
