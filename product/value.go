package product

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// ValueKind discriminates the variants of Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindNumber
	KindString
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Value is a tagged union over number, string and bool, used for record
// fields that accept any of the three. The kind is explicit: consumers
// branch on Kind() instead of probing the payload, and JSON round-trips
// preserve the kind exactly (a number never comes back as a string).
//
// The zero Value is null.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
}

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float64 returns the numeric payload. Only valid for KindNumber.
func (v Value) Float64() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// StringValue returns the string payload. Only valid for KindString.
func (v Value) StringValue() (string, bool) {
	return v.str, v.kind == KindString
}

// BoolValue returns the boolean payload. Only valid for KindBool.
func (v Value) BoolValue() (bool, bool) {
	return v.b, v.kind == KindBool
}

// String renders the payload for display.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// Equal reports kind-and-payload equality.
func (v Value) Equal(other Value) bool { return v == other }

// Add returns v+other. Both operands must be numbers.
func (v Value) Add(other Value) (Value, error) {
	a, b, err := numericPair("add", v, other)
	if err != nil {
		return Value{}, err
	}
	return Number(a + b), nil
}

// Sub returns v-other. Both operands must be numbers.
func (v Value) Sub(other Value) (Value, error) {
	a, b, err := numericPair("subtract", v, other)
	if err != nil {
		return Value{}, err
	}
	return Number(a - b), nil
}

// Mul returns v*other. Both operands must be numbers.
func (v Value) Mul(other Value) (Value, error) {
	a, b, err := numericPair("multiply", v, other)
	if err != nil {
		return Value{}, err
	}
	return Number(a * b), nil
}

// Less reports v < other under numeric ordering. Both operands must be
// numbers.
func (v Value) Less(other Value) (bool, error) {
	a, b, err := numericPair("compare", v, other)
	if err != nil {
		return false, err
	}
	return a < b, nil
}

func numericPair(op string, a, b Value) (float64, float64, error) {
	if a.kind != KindNumber || b.kind != KindNumber {
		return 0, 0, fmt.Errorf("product: cannot %s %s and %s values", op, a.kind, b.kind)
	}
	return a.num, b.num, nil
}

// MarshalJSON writes the bare payload: a JSON number, string, bool or
// null. The kind is recoverable from the JSON token itself.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reads a number, string, bool or null, setting the kind
// from the JSON token.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Value{}
	case float64:
		*v = Number(x)
	case string:
		*v = Str(x)
	case bool:
		*v = Bool(x)
	default:
		return fmt.Errorf("product: value must be number, string, bool or null, got %T", raw)
	}
	return nil
}
