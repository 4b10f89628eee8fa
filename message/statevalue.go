package message

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

type stateKind int

const (
	kindEmpty stateKind = iota
	kindNull
	kindBoolean
	kindNumber
	kindString
	kindArray
	kindObject
)

// StateValue is a tagged union mirroring the wire representation of a
// single value in a StateMap: a missing field, an explicit null, or one
// of the scalar/composite JSON-like variants.
type StateValue struct {
	kind    stateKind
	boolean bool
	number  float64
	str     string
	array   []StateValue
	object  StateMap
}

// StateMap is a string-keyed collection of StateValue, the unit of data
// exchanged between client and server for a single route's state.
type StateMap map[string]StateValue

// Empty returns the zero-information StateValue: the field is absent.
func Empty() StateValue { return StateValue{kind: kindEmpty} }

// Null returns a StateValue that is explicitly present but holds no value.
func Null() StateValue { return StateValue{kind: kindNull} }

// Boolean wraps a bool.
func Boolean(b bool) StateValue { return StateValue{kind: kindBoolean, boolean: b} }

// Number wraps a float64.
func Number(n float64) StateValue { return StateValue{kind: kindNumber, number: n} }

// String wraps a string.
func String(s string) StateValue { return StateValue{kind: kindString, str: s} }

// Array wraps an ordered list of StateValue.
func Array(items []StateValue) StateValue { return StateValue{kind: kindArray, array: items} }

// Object wraps a nested StateMap.
func Object(m StateMap) StateValue { return StateValue{kind: kindObject, object: m} }

func (v StateValue) IsEmpty() bool { return v.kind == kindEmpty }
func (v StateValue) IsNull() bool  { return v.kind == kindNull }

// AsBoolean returns the wrapped bool, or false if v is not a Boolean.
func (v StateValue) AsBoolean() bool {
	if v.kind != kindBoolean {
		return false
	}
	return v.boolean
}

// AsNumber returns the wrapped float64, or 0 if v is not a Number.
func (v StateValue) AsNumber() float64 {
	if v.kind != kindNumber {
		return 0
	}
	return v.number
}

// AsString returns the wrapped string, or "" if v is not a String.
func (v StateValue) AsString() string {
	if v.kind != kindString {
		return ""
	}
	return v.str
}

// AsArray returns the wrapped slice, or nil if v is not an Array.
func (v StateValue) AsArray() []StateValue {
	if v.kind != kindArray {
		return nil
	}
	return v.array
}

// AsObject returns the wrapped StateMap, or nil if v is not an Object.
func (v StateValue) AsObject() StateMap {
	if v.kind != kindObject {
		return nil
	}
	return v.object
}

// BooleanValue reports the wrapped bool and whether v is in fact a Boolean.
func (v StateValue) BooleanValue() (bool, bool) { return v.boolean, v.kind == kindBoolean }

// NumberValue reports the wrapped float64 and whether v is in fact a Number.
func (v StateValue) NumberValue() (float64, bool) { return v.number, v.kind == kindNumber }

// StringValue reports the wrapped string and whether v is in fact a String.
func (v StateValue) StringValue() (string, bool) { return v.str, v.kind == kindString }

// ArrayValue reports the wrapped slice and whether v is in fact an Array.
func (v StateValue) ArrayValue() ([]StateValue, bool) { return v.array, v.kind == kindArray }

// ObjectValue reports the wrapped StateMap and whether v is in fact an Object.
func (v StateValue) ObjectValue() (StateMap, bool) { return v.object, v.kind == kindObject }

// Equal reports whether v and other hold the same variant and value.
func (v StateValue) Equal(other StateValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case kindBoolean:
		return v.boolean == other.boolean
	case kindNumber:
		return v.number == other.number
	case kindString:
		return v.str == other.str
	case kindArray:
		if len(v.array) != len(other.array) {
			return false
		}
		for i := range v.array {
			if !v.array[i].Equal(other.array[i]) {
				return false
			}
		}
		return true
	case kindObject:
		if len(v.object) != len(other.object) {
			return false
		}
		for k, val := range v.object {
			ov, ok := other.object[k]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v StateValue) MarshalCBOR() ([]byte, error) {
	switch v.kind {
	case kindEmpty:
		return marshalUnitVariant("Empty")
	case kindNull:
		return marshalUnitVariant("Null")
	case kindBoolean:
		return marshalValueVariant("Boolean", v.boolean)
	case kindNumber:
		return marshalValueVariant("Number", v.number)
	case kindString:
		return marshalValueVariant("String", v.str)
	case kindArray:
		return marshalValueVariant("Array", v.array)
	case kindObject:
		return marshalValueVariant("Object", v.object)
	default:
		return nil, fmt.Errorf("message: unknown StateValue kind %d", v.kind)
	}
}

func (v *StateValue) UnmarshalCBOR(data []byte) error {
	name, payload, isUnit, err := decodeVariant(data)
	if err != nil {
		return fmt.Errorf("message: decode StateValue: %w", err)
	}

	if isUnit {
		switch name {
		case "Empty":
			*v = Empty()
			return nil
		case "Null":
			*v = Null()
			return nil
		default:
			return fmt.Errorf("message: unknown StateValue unit variant %q", name)
		}
	}

	switch name {
	case "Boolean":
		var b bool
		if err := cbor.Unmarshal(payload, &b); err != nil {
			return fmt.Errorf("message: decode StateValue::Boolean: %w", err)
		}
		*v = Boolean(b)
	case "Number":
		var n float64
		if err := cbor.Unmarshal(payload, &n); err != nil {
			return fmt.Errorf("message: decode StateValue::Number: %w", err)
		}
		*v = Number(n)
	case "String":
		var s string
		if err := cbor.Unmarshal(payload, &s); err != nil {
			return fmt.Errorf("message: decode StateValue::String: %w", err)
		}
		*v = String(s)
	case "Array":
		var arr []StateValue
		if err := cbor.Unmarshal(payload, &arr); err != nil {
			return fmt.Errorf("message: decode StateValue::Array: %w", err)
		}
		*v = Array(arr)
	case "Object":
		var obj StateMap
		if err := cbor.Unmarshal(payload, &obj); err != nil {
			return fmt.Errorf("message: decode StateValue::Object: %w", err)
		}
		*v = Object(obj)
	default:
		return fmt.Errorf("message: unknown StateValue variant %q", name)
	}
	return nil
}
