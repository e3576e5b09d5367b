package state

import (
	"encoding/json"
	"math"
)

// Values is a flat key to value map of persisted settings. It is written as a
// JSON object, so numbers come back as float64 after a load.
type Values map[string]any

// SetFloat stores a float.
func (v Values) SetFloat(key string, f float32) {
	v[key] = float64(f)
}

// SetInt stores an integer.
func (v Values) SetInt(key string, i int64) {
	v[key] = i
}

// SetUint64 stores a bit mask.
func (v Values) SetUint64(key string, u uint64) {
	v[key] = u
}

// SetBool stores a boolean.
func (v Values) SetBool(key string, b bool) {
	v[key] = b
}

// SetString stores a string.
func (v Values) SetString(key string, s string) {
	v[key] = s
}

// SetFloats stores a float array.
func (v Values) SetFloats(key string, fs []float32) {
	out := make([]float64, len(fs))
	for i, f := range fs {
		out[i] = float64(f)
	}
	v[key] = out
}

func number(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int8:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Float loads a float into dst. A missing or non-numeric value leaves dst
// unchanged and returns false.
func (v Values) Float(key string, dst *float32) bool {
	f, ok := number(v[key])
	if ok {
		*dst = float32(f)
	}
	return ok
}

// Int8 loads a small integer into dst.
func (v Values) Int8(key string, dst *int8) bool {
	f, ok := number(v[key])
	if ok {
		*dst = int8(f)
	}
	return ok
}

// Int64 loads an integer into dst.
func (v Values) Int64(key string, dst *int64) bool {
	f, ok := number(v[key])
	if ok {
		*dst = int64(f)
	}
	return ok
}

// Uint64 loads a bit mask into dst.
func (v Values) Uint64(key string, dst *uint64) bool {
	switch n := v[key].(type) {
	case uint64:
		*dst = n
		return true
	case json.Number:
		var u uint64
		if err := json.Unmarshal([]byte(n), &u); err == nil {
			*dst = u
			return true
		}
	}
	f, ok := number(v[key])
	if ok && f >= 0 {
		*dst = uint64(f)
		return true
	}
	return false
}

// Bool loads a boolean into dst. Numbers are accepted, non-zero is true.
func (v Values) Bool(key string, dst *bool) bool {
	if b, ok := v[key].(bool); ok {
		*dst = b
		return true
	}
	f, ok := number(v[key])
	if ok {
		*dst = f != 0
	}
	return ok
}

// String loads a string into dst.
func (v Values) String(key string, dst *string) bool {
	s, ok := v[key].(string)
	if ok {
		*dst = s
	}
	return ok
}

// Floats loads up to len(dst) array elements into dst. Elements that are
// missing or not numbers are left unchanged.
func (v Values) Floats(key string, dst []float32) bool {
	switch arr := v[key].(type) {
	case []any:
		for i := 0; i < len(dst) && i < len(arr); i++ {
			if f, ok := number(arr[i]); ok {
				dst[i] = float32(f)
			}
		}
		return true
	case []float64:
		for i := 0; i < len(dst) && i < len(arr); i++ {
			dst[i] = float32(arr[i])
		}
		return true
	}
	return false
}
