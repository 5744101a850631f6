package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindBool
	KindText
	KindNumber
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "none"
	}
}

// FieldValue is the value carried by a candidate or resolved field.
// Exactly one of the variants is set; construct it with Bool, Text or Number.
type FieldValue struct {
	kind ValueKind
	b    bool
	s    string
	n    float64
}

func Bool(b bool) FieldValue      { return FieldValue{kind: KindBool, b: b} }
func Text(s string) FieldValue    { return FieldValue{kind: KindText, s: s} }
func Number(n float64) FieldValue { return FieldValue{kind: KindNumber, n: n} }

func (v FieldValue) Kind() ValueKind { return v.kind }
func (v FieldValue) IsZero() bool    { return v.kind == KindNone }

func (v FieldValue) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v FieldValue) AsText() (string, bool) {
	return v.s, v.kind == KindText
}

func (v FieldValue) AsNumber() (float64, bool) {
	return v.n, v.kind == KindNumber
}

func (v FieldValue) Equal(o FieldValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindText:
		return v.s == o.s
	case KindNumber:
		return v.n == o.n
	}
	return true
}

// String renders the value the way it appears in a flattened patient row.
func (v FieldValue) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindText:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	}
	return ""
}

// MarshalJSON encodes the value as a plain JSON scalar.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindText:
		return json.Marshal(v.s)
	case KindNumber:
		return json.Marshal(v.n)
	}
	return []byte("null"), nil
}

// UnmarshalJSON infers the variant from the JSON token type.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = FieldValue{}
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '{', '[':
		return errors.New("field value must be a scalar")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("field value: %w", err)
		}
		*v = Number(n)
	}
	return nil
}
