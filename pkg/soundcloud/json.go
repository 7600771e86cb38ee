package soundcloud

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"time"
)

// DateLayout is the timestamp format used by the SoundCloud API.
const DateLayout = "2006/01/02 15:04:05 -0700"

// JSON is a read-only view over a decoded JSON value.
//
// Lookups never fail: a missing key or an out of range index yields a
// null JSON, and the typed accessors report false for it.
type JSON struct {
	value any
}

// NewJSON wraps an already decoded value.
func NewJSON(v any) JSON {
	return JSON{value: v}
}

// errTrailingData is returned when a document is followed by more input.
var errTrailingData = errors.New("soundcloud: unexpected data after JSON document")

// DecodeJSON decodes data, keeping numbers exact. data must hold exactly
// one JSON document.
func DecodeJSON(data []byte) (JSON, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return JSON{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errTrailingData
		}
		return JSON{}, err
	}
	return JSON{value: v}, nil
}

// Raw returns the underlying decoded value.
func (j JSON) Raw() any {
	return j.value
}

// IsNull reports whether the value is null or missing.
func (j JSON) IsNull() bool {
	return j.value == nil
}

// Key returns the member named key of an object.
func (j JSON) Key(key string) JSON {
	if m, ok := j.value.(map[string]any); ok {
		return JSON{value: m[key]}
	}
	return JSON{}
}

// Index returns element i of an array.
func (j JSON) Index(i int) JSON {
	if a, ok := j.value.([]any); ok && i >= 0 && i < len(a) {
		return JSON{value: a[i]}
	}
	return JSON{}
}

// Array returns the elements of an array.
func (j JSON) Array() ([]JSON, bool) {
	a, ok := j.value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]JSON, len(a))
	for i, v := range a {
		out[i] = JSON{value: v}
	}
	return out, true
}

// StringValue returns the value if it is a string.
func (j JSON) StringValue() (string, bool) {
	s, ok := j.value.(string)
	return s, ok
}

// Int64Value returns the value if it is an integral number. Numeric
// strings are accepted since some endpoints quote identifiers.
func (j JSON) Int64Value() (int64, bool) {
	switch v := j.value.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		n := int64(v)
		return n, float64(n) == v
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// IntValue is Int64Value narrowed to int.
func (j JSON) IntValue() (int, bool) {
	n, ok := j.Int64Value()
	return int(n), ok
}

// FloatValue returns the value if it is a number.
func (j JSON) FloatValue() (float64, bool) {
	switch v := j.value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	}
	return 0, false
}

// BoolValue returns the value if it is a boolean.
func (j JSON) BoolValue() (bool, bool) {
	b, ok := j.value.(bool)
	return b, ok
}

// DateValue parses a string value with layout.
func (j JSON) DateValue(layout string) (time.Time, bool) {
	s, ok := j.StringValue()
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// URLValue parses a string value as an absolute URL.
func (j JSON) URLValue() (*url.URL, bool) {
	s, ok := j.StringValue()
	if !ok || s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return nil, false
	}
	return u, true
}

// MapJSON applies fn to every element of an array. It reports false when
// j is not an array.
func MapJSON[U any](j JSON, fn func(JSON) U) ([]U, bool) {
	elems, ok := j.Array()
	if !ok {
		return nil, false
	}
	out := make([]U, 0, len(elems))
	for _, e := range elems {
		out = append(out, fn(e))
	}
	return out, true
}

// CompactMapJSON applies fn to every element of an array and keeps the
// results fn accepted. It reports false when j is not an array.
func CompactMapJSON[U any](j JSON, fn func(JSON) (U, bool)) ([]U, bool) {
	elems, ok := j.Array()
	if !ok {
		return nil, false
	}
	out := make([]U, 0, len(elems))
	for _, e := range elems {
		if v, ok := fn(e); ok {
			out = append(out, v)
		}
	}
	return out, true
}
