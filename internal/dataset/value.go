package dataset

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a loosely-typed scalar cell. The zero Value is Null.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

func Null() Value { return Value{} }

// Number wraps f. NaN and infinities become Null so every Number is finite.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Date holds a date-like string exactly as it appeared in the source.
func Date(s string) Value { return Value{kind: KindDate, str: s} }

func (v Value) Kind() Kind { return v.kind }

// IsMissing reports null, empty string, or the literal "null".
func (v Value) IsMissing() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == "" || v.str == "null"
	case KindDate:
		return v.str == ""
	default:
		return false
	}
}

// Float returns the numeric reading of v and whether v is numeric-coercible.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString, KindDate:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// NumberOr is the lossy coercion used by summation: non-numeric values yield def.
func (v Value) NumberOr(def float64) float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return def
}

// FloatOrNaN is the coercion used for correlation series.
func (v Value) FloatOrNaN() float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return math.NaN()
}

// String returns the string coercion of v. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString, KindDate:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool { return v == o }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindString, KindDate:
		return json.Marshal(v.str)
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("unmarshal value: empty input")
	}
	switch data[0] {
	case 'n':
		*v = Null()
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("unmarshal value: %w", err)
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal value: %w", err)
		}
		*v = String(s)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("unmarshal value: %w", err)
		}
		*v = Number(f)
	}
	return nil
}
