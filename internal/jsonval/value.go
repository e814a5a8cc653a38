// Package jsonval provides a tagged-union JSON value on top of jsoniter's
// Any, satisfying the "JSON parser" external collaborator contract of the
// takane object format: a value that is exactly one of
// {Null, Bool, Number, String, Array, Object}.
package jsonval

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Kind classifies a Value the way takane's Json union does.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a parsed JSON node. The zero Value is invalid; use Parse or
// ParseFile to obtain one.
type Value struct {
	any jsoniter.Any
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse parses buf as a single JSON value.
func Parse(buf []byte) (Value, error) {
	if !json.Valid(buf) {
		return Value{}, fmt.Errorf("invalid JSON: malformed or truncated document")
	}
	any := json.Get(buf)
	if err := any.LastError(); err != nil {
		return Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return Value{any: any}, nil
}

// ParseFile reads and parses the JSON document at path.
func ParseFile(path string) (Value, error) {
	data, err := readFile(path)
	if err != nil {
		return Value{}, err
	}
	return Parse(data)
}

// Kind reports the union tag of the value.
func (v Value) Kind() Kind {
	if v.any == nil {
		return KindInvalid
	}
	switch v.any.ValueType() {
	case jsoniter.NilValue:
		return KindNull
	case jsoniter.BoolValue:
		return KindBool
	case jsoniter.NumberValue:
		return KindNumber
	case jsoniter.StringValue:
		return KindString
	case jsoniter.ArrayValue:
		return KindArray
	case jsoniter.ObjectValue:
		return KindObject
	default:
		return KindInvalid
	}
}

// IsObject reports whether the value is a JSON object.
func (v Value) IsObject() bool { return v.Kind() == KindObject }

// String returns the value as a string, or ok=false if it isn't one.
func (v Value) String() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.any.ToString(), true
}

// Bool returns the value as a bool, or ok=false if it isn't one.
func (v Value) Bool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.any.ToBool(), true
}

// Float64 returns the value as a float64, or ok=false if it isn't a number.
func (v Value) Float64() (float64, bool) {
	if v.Kind() != KindNumber {
		return 0, false
	}
	return v.any.ToFloat64(), true
}

// Int returns the value as an int, or ok=false if it isn't a number.
func (v Value) Int() (int, bool) {
	if v.Kind() != KindNumber {
		return 0, false
	}
	return v.any.ToInt(), true
}

// Field returns the named field of an object value. ok is false if the
// value isn't an object or the field is absent.
func (v Value) Field(name string) (Value, bool) {
	if v.Kind() != KindObject {
		return Value{}, false
	}
	sub := v.any.Get(name)
	if sub.ValueType() == jsoniter.InvalidValue {
		return Value{}, false
	}
	return Value{any: sub}, true
}

// Keys returns the object's field names in arbitrary order. Returns nil if
// the value isn't an object.
func (v Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}
	return v.any.Keys()
}

// Len returns the number of elements in an array value, or -1 if the value
// isn't an array.
func (v Value) Len() int {
	if v.Kind() != KindArray {
		return -1
	}
	return v.any.Size()
}

// Index returns the i'th element of an array value.
func (v Value) Index(i int) (Value, bool) {
	if v.Kind() != KindArray || i < 0 || i >= v.any.Size() {
		return Value{}, false
	}
	sub := v.any.Get(i)
	if sub.ValueType() == jsoniter.InvalidValue {
		return Value{}, false
	}
	return Value{any: sub}, true
}

// StringArray decodes the value as an array of strings, failing if any
// element is not a string.
func (v Value) StringArray() ([]string, error) {
	if v.Kind() != KindArray {
		return nil, fmt.Errorf("expected an array, got %s", v.Kind())
	}
	n := v.Len()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		el, _ := v.Index(i)
		s, ok := el.String()
		if !ok {
			return nil, fmt.Errorf("expected array element %d to be a string", i)
		}
		out[i] = s
	}
	return out, nil
}

// Raw returns the underlying value decoded into a generic Go value
// (map[string]interface{}, []interface{}, string, float64, bool, or nil),
// for callers that need to hand the node to another JSON-consuming library.
func (v Value) Raw() interface{} {
	if v.any == nil {
		return nil
	}
	return v.any.GetInterface()
}
