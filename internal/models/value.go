package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

type valueKind uint8

const (
	valueNull valueKind = iota
	valueNumber
	valueString
)

// Value is one optional attribute value: absent (null), a number, or a
// string. Records carry no required fields, so every attribute access
// goes through this wrapper instead of a bare interface{}.
type Value struct {
	str  string
	num  float64
	kind valueKind
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Number wraps a numeric value.
func Number(f float64) Value { return Value{num: f, kind: valueNumber} }

// String wraps a textual value. The text is stored as given; trimming
// happens at comparison and mutation boundaries, not here.
func String(s string) Value { return Value{str: s, kind: valueString} }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == valueNull }

// IsString reports whether the value holds text.
func (v Value) IsString() bool { return v.kind == valueString }

// Number returns the numeric payload. ok is false for null and text
// values; no parsing is attempted here (see Float).
func (v Value) Number() (float64, bool) {
	if v.kind != valueNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the value as a string: the raw text for string values,
// a minimal decimal rendering for numbers (40.0 prints as "40"), and
// "" for null.
func (v Value) Text() string {
	switch v.kind {
	case valueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case valueString:
		return v.str
	default:
		return ""
	}
}

// Norm is the comparison form used by identity matching and filters:
// the trimmed string rendering, "" for null.
func (v Value) Norm() string {
	return strings.TrimSpace(v.Text())
}

// Float returns the value as a number, parsing trimmed text with a
// dot decimal separator. ok is false for null, blank, and unparseable
// text. Comma-decimal tolerance belongs to import coercion, not here.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case valueNumber:
		return v.num, true
	case valueString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MarshalJSON renders null, a JSON number, or a JSON string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueNumber:
		return json.Marshal(jsonNumber(v.num))
	case valueString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// jsonNumber keeps integral floats integral on the wire, so an ID
// written as 12345 does not come back as 12345.0.
func jsonNumber(f float64) json.Number {
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// UnmarshalJSON reads any JSON scalar leniently: null stays null,
// numbers become numbers, strings become strings, and anything else
// (bools, objects) is kept as its compact JSON text rather than
// rejected. Malformed records must never fail a collection load.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*v = Null()
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		if f, err := num.Float64(); err == nil {
			*v = Number(f)
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = String(s)
		return nil
	}
	*v = String(trimmed)
	return nil
}
