// Package expression provides a typed accessor over decoded plan JSON.
// Plan documents carry many optional, heterogeneous shapes; all shape
// tolerance is localized here so callers never touch raw interface{} values.
package expression

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// ValueKind represents the type of a value
type ValueKind int

const (
	KindAbsent ValueKind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value represents a JSON value with type information. The zero value is
// absent, which is distinct from JSON null.
type Value struct {
	kind      ValueKind
	boolVal   bool
	numberVal float64
	stringVal string
	arrayVal  []Value
	objectVal map[string]Value
}

// Absent returns the absent value
func Absent() Value {
	return Value{kind: KindAbsent}
}

// Null creates a null value
func Null() Value {
	return Value{kind: KindNull}
}

// Bool creates a boolean value
func Bool(v bool) Value {
	return Value{kind: KindBool, boolVal: v}
}

// Number creates a numeric value
func Number(v float64) Value {
	return Value{kind: KindNumber, numberVal: v}
}

// String creates a string value
func String(v string) Value {
	return Value{kind: KindString, stringVal: v}
}

// Array creates an array value
func Array(elements ...Value) Value {
	return Value{kind: KindArray, arrayVal: elements}
}

// Object creates an object value
func Object(elements map[string]Value) Value {
	return Value{kind: KindObject, objectVal: elements}
}

// FromJSON decodes raw JSON bytes into a Value
func FromJSON(data []byte) (Value, error) {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Absent(), err
	}
	return FromGo(decoded), nil
}

// FromGo converts a decoded JSON value to a Value
func FromGo(v interface{}) Value {
	if v == nil {
		return Null()
	}

	switch val := v.(type) {
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case int:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return String(val.String())
		}
		return Number(f)
	case string:
		return String(val)
	case []interface{}:
		elements := make([]Value, len(val))
		for i, e := range val {
			elements[i] = FromGo(e)
		}
		return Array(elements...)
	case map[string]interface{}:
		elements := make(map[string]Value, len(val))
		for k, e := range val {
			elements[k] = FromGo(e)
		}
		return Object(elements)
	default:
		return Absent()
	}
}

// Kind returns the value kind
func (v Value) Kind() ValueKind {
	return v.kind
}

// Exists reports whether the value is present (null counts as present)
func (v Value) Exists() bool {
	return v.kind != KindAbsent
}

// IsNull reports whether the value is JSON null
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Get returns the value at a dotted path. Path segments address object keys;
// numeric segments address array indices. Any miss returns the absent value.
func (v Value) Get(path string) Value {
	current := v
	for _, segment := range strings.Split(path, ".") {
		switch current.kind {
		case KindObject:
			next, ok := current.objectVal[segment]
			if !ok {
				return Absent()
			}
			current = next
		case KindArray:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(current.arrayVal) {
				return Absent()
			}
			current = current.arrayVal[idx]
		default:
			return Absent()
		}
	}
	return current
}

// Field returns the value of an object key
func (v Value) Field(key string) Value {
	if v.kind != KindObject {
		return Absent()
	}
	val, ok := v.objectVal[key]
	if !ok {
		return Absent()
	}
	return val
}

// Index returns the element at an array index
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arrayVal) {
		return Absent()
	}
	return v.arrayVal[i]
}

// ArrayValues returns the elements of an array value, or nil
func (v Value) ArrayValues() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arrayVal
}

// ObjectValues returns the members of an object value, or nil
func (v Value) ObjectValues() map[string]Value {
	if v.kind != KindObject {
		return nil
	}
	return v.objectVal
}

// Len returns the number of elements or members
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arrayVal)
	case KindObject:
		return len(v.objectVal)
	default:
		return 0
	}
}

// Bool returns the boolean value, or false
func (v Value) Bool() bool {
	return v.kind == KindBool && v.boolVal
}

// String returns the value as a string. Numbers and booleans are formatted;
// everything else yields the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.stringVal
	case KindNumber:
		return strconv.FormatFloat(v.numberVal, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.boolVal)
	default:
		return ""
	}
}

// Float returns the value as a float64, parsing numeric strings, or 0
func (v Value) Float() float64 {
	switch v.kind {
	case KindNumber:
		return v.numberVal
	case KindString:
		f, err := strconv.ParseFloat(v.stringVal, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Int returns the value as an int64, or 0
func (v Value) Int() int64 {
	return int64(v.Float())
}

// Decimal returns the value as an exact decimal, or zero. Numeric strings
// are parsed; anything non-numeric yields zero.
func (v Value) Decimal() decimal.Decimal {
	switch v.kind {
	case KindString:
		d, err := decimal.NewFromString(v.stringVal)
		if err != nil {
			return decimal.Zero
		}
		return d
	case KindNumber:
		return decimal.NewFromFloat(v.numberVal)
	default:
		return decimal.Zero
	}
}

// DecimalOr returns the value as a decimal, or def when absent or non-numeric
func (v Value) DecimalOr(def decimal.Decimal) decimal.Decimal {
	switch v.kind {
	case KindString:
		d, err := decimal.NewFromString(v.stringVal)
		if err != nil {
			return def
		}
		return d
	case KindNumber:
		return decimal.NewFromFloat(v.numberVal)
	default:
		return def
	}
}

// StringOr returns the value as a string, or def when empty
func (v Value) StringOr(def string) string {
	if s := v.String(); s != "" {
		return s
	}
	return def
}
