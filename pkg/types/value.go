package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the numeric kind of a Value.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
)

// String returns "int" or "float".
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "(unknown)"
	}
}

// Value is the result of evaluating an expression: either a 64-bit signed
// integer or a 64-bit float, tagged by Kind. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
}

// Int returns an integer Value.
func Int(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// Float returns a floating-point Value.
func Float(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool { return v.Kind == KindInt }

// IsFloat reports whether v holds a float.
func (v Value) IsFloat() bool { return v.Kind == KindFloat }

// Float64 returns v as a float64, converting integers.
func (v Value) Float64() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// String formats v. Floats always carry a decimal point or exponent so the
// kind survives a round trip through text.
func (v Value) String() string {
	if v.Kind == KindInt {
		return strconv.FormatInt(v.Int, 10)
	}
	s := strconv.FormatFloat(v.Float, 'g', -1, 64)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'E', 'I', 'N': // decimal, exponent, Inf, NaN
			return s
		}
	}
	return s + ".0"
}

type jsonValue struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes v as {"kind":"int","value":37}. Non-finite floats,
// which JSON numbers cannot carry, are encoded as the strings "+Inf", "-Inf"
// and "NaN".
func (v Value) MarshalJSON() ([]byte, error) {
	var num string
	switch {
	case v.Kind == KindInt:
		num = strconv.FormatInt(v.Int, 10)
	case math.IsInf(v.Float, 0) || math.IsNaN(v.Float):
		num = strconv.Quote(strconv.FormatFloat(v.Float, 'g', -1, 64))
	default:
		num = strconv.FormatFloat(v.Float, 'g', -1, 64)
	}
	return json.Marshal(jsonValue{Kind: v.Kind.String(), Value: json.RawMessage(num)})
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	raw := string(bytes.TrimSpace(jv.Value))
	switch jv.Kind {
	case "int":
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("value: invalid int %s: %w", raw, err)
		}
		*v = Int(i)
	case "float":
		f, err := parseFloatJSON(raw)
		if err != nil {
			return fmt.Errorf("value: invalid float %s: %w", raw, err)
		}
		*v = Float(f)
	default:
		return fmt.Errorf("value: unknown kind %q", jv.Kind)
	}
	return nil
}

// parseFloatJSON accepts a JSON number or one of the quoted non-finite forms.
func parseFloatJSON(raw string) (float64, error) {
	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return 0, err
		}
		switch s {
		case "+Inf":
			return math.Inf(1), nil
		case "-Inf":
			return math.Inf(-1), nil
		case "NaN":
			return math.NaN(), nil
		}
		return 0, errors.New("not a non-finite float name")
	}
	return strconv.ParseFloat(raw, 64)
}
