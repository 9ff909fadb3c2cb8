package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindNumber
	kindText
)

// Value is a single table cell: a number, a string, or null.
// The zero Value is null.
type Value struct {
	kind valueKind
	num  float64
	text string
}

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: kindNumber, num: f} }

// Text returns a textual cell. Empty strings collapse to null.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: kindText, text: s}
}

// Null returns an empty cell.
func Null() Value { return Value{} }

func (v Value) IsNull() bool   { return v.kind == kindNull }
func (v Value) IsNumber() bool { return v.kind == kindNumber }

// Float returns the numeric content, if any.
func (v Value) Float() (float64, bool) {
	if v.kind != kindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the cell for display; null is "".
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindText:
		return v.text
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return json.Marshal(v.num)
	case kindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*v = Value{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("cell value: %w", err)
		}
		*v = Number(f)
		return nil
	}
}
