// Package jsonvalue models JSON documents as a tagged union whose objects
// keep their key order, so translation files can be rewritten without
// reshuffling keys.
//
// A Value is one of Null, Bool, Number, String, Array or Object. The zero
// Value is Null. Numbers keep the literal text they were parsed from; the
// encoder writes them the way JavaScript prints the parsed double, so
// 1.0 and 1e2 are written as 1 and 100.
package jsonvalue

import (
	"encoding/json"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
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
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Object is an insertion-ordered JSON object.
type Object = orderedmap.OrderedMap[string, Value]

// NewObject returns an empty Object.
func NewObject() *Object {
	return orderedmap.New[string, Value]()
}

// Value is a single JSON value.
type Value struct {
	kind Kind
	b    bool
	s    string // string contents, or the literal of a number
	arr  []Value
	obj  *Object
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NumberValue wraps a number literal.
func NumberValue(n json.Number) Value { return Value{kind: KindNumber, s: string(n)} }

// IntValue wraps an integer.
func IntValue(n int64) Value { return NumberValue(json.Number(strconv.FormatInt(n, 10))) }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ArrayValue wraps a list of values.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// ObjectValue wraps an object. A nil object is treated as empty.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsObject() bool { return v.kind == KindObject }

// Bool returns the boolean payload; false for non-bool values.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Number returns the number literal; empty for non-number values.
func (v Value) Number() json.Number {
	if v.kind != KindNumber {
		return ""
	}
	return json.Number(v.s)
}

// Str returns the string payload; empty for non-string values.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Array returns the array items; nil for non-array values.
func (v Value) Array() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Object returns the object payload; nil for non-object values.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// IsZeroNumber reports whether v is a number equal to zero (0, -0, 0.0, 0e5).
func (v Value) IsZeroNumber() bool {
	if v.kind != KindNumber {
		return false
	}
	f, err := strconv.ParseFloat(v.s, 64)
	return err == nil && f == 0
}

// Text renders the value as plain text for display and character counts:
// strings are returned as-is, null is empty, arrays are joined with commas
// and objects fall back to compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber, KindString:
		return v.s
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.Text()
		}
		return strings.Join(parts, ",")
	default:
		return string(Marshal(v))
	}
}

// Equal reports structural equality. Object key order is significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		a, errA := strconv.ParseFloat(v.s, 64)
		b, errB := strconv.ParseFloat(o.s, 64)
		if errA != nil || errB != nil {
			return v.s == o.s
		}
		return a == b
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != o.obj.Len() {
			return false
		}
		a, b := v.obj.Oldest(), o.obj.Oldest()
		for ; a != nil && b != nil; a, b = a.Next(), b.Next() {
			if a.Key != b.Key || !a.Value.Equal(b.Value) {
				return false
			}
		}
		return a == nil && b == nil
	}
	return false
}

// String implements fmt.Stringer with compact JSON.
func (v Value) String() string {
	return string(Marshal(v))
}
