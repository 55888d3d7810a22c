package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one raw payload object as decoded from JSON. Every field is
// optional and may arrive under several names; read it through a Field.
type Record map[string]interface{}

// AsRecord narrows an arbitrary decoded value to a Record.
func AsRecord(v interface{}) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, m != nil
	case map[string]interface{}:
		return Record(m), m != nil
	default:
		return nil, false
	}
}

// Field is the ordered list of source keys that carry one logical value.
// Resolution walks the keys in order and takes the first usable value.
type Field []string

// Lookup returns the first present value that is neither nil nor a blank string.
func (f Field) Lookup(r Record) (interface{}, bool) {
	for _, key := range f {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// String returns the first value with a non-empty scalar string form.
// Numbers are formatted; booleans, objects and arrays are skipped.
func (f Field) String(r Record) string {
	for _, key := range f {
		if s, ok := scalarString(r[key]); ok {
			return s
		}
	}
	return ""
}

// StringOr is String with a fallback for the all-missing case.
func (f Field) StringOr(r Record, fallback string) string {
	if s := f.String(r); s != "" {
		return s
	}
	return fallback
}

// Bool reports whether any key holds exactly the boolean true.
// "true", 1 and other truthy values do not count.
func (f Field) Bool(r Record) bool {
	for _, key := range f {
		if b, ok := r[key].(bool); ok && b {
			return true
		}
	}
	return false
}

// Float returns the first finite number, accepting numeric strings.
func (f Field) Float(r Record) *float64 {
	for _, key := range f {
		if v, ok := toFloat(r[key]); ok {
			return &v
		}
	}
	return nil
}

// Object returns the first value that is itself an object.
func (f Field) Object(r Record) (Record, bool) {
	for _, key := range f {
		if rec, ok := AsRecord(r[key]); ok {
			return rec, true
		}
	}
	return nil, false
}

// List returns the first value that is an array.
func (f Field) List(r Record) ([]interface{}, bool) {
	for _, key := range f {
		if list, ok := r[key].([]interface{}); ok {
			return list, true
		}
	}
	return nil, false
}

// Strings accepts either an array of scalars or a comma-separated string.
func (f Field) Strings(r Record) []string {
	for _, key := range f {
		switch v := r[key].(type) {
		case []interface{}:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := scalarString(item); ok {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		case []string:
			if len(v) > 0 {
				return append([]string(nil), v...)
			}
		case string:
			var out []string
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func scalarString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		return s, s != ""
	case json.Number:
		return s.String(), s != ""
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return "", false
		}
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}

func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
