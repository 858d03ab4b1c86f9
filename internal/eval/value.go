// Package eval implements the tree-walking evaluator: the value model,
// arithmetic/comparison kernel, environment, function call machinery,
// built-ins, and statement/expression evaluation, grounded in the teacher
// codebase's src/parse/asp/objects.go (value model) and
// src/parse/asp/interpreter.go (statement/expression evaluation).
package eval

import (
	"fmt"
	"math/big"
)

// Kind tags which field of a Value is meaningful.
type Kind int

// The closed set of value tags. There is no Kind for a first-class
// function: callees are resolved by name at the call site, never held as a
// value, per the language's non-goal of first-class functions.
const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
)

// A Value is the tagged union every expression evaluates to. Exactly one
// payload field is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   *big.Int
	Float float64
	Str   string
}

// None is the shared None value.
var None = Value{Kind: KindNone}

// BoolVal wraps a bool.
func BoolVal(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IntVal wraps a big.Int. The caller must not mutate n afterwards; values
// are treated as immutable once constructed.
func IntVal(n *big.Int) Value { return Value{Kind: KindInt, Int: n} }

// IntFromInt64 is a convenience constructor for small integer literals.
func IntFromInt64(n int64) Value { return Value{Kind: KindInt, Int: big.NewInt(n)} }

// FloatVal wraps a float64.
func FloatVal(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// StrVal wraps a string.
func StrVal(s string) Value { return Value{Kind: KindStr, Str: s} }

// Truthy implements the language's truthiness rule: None is false, Bool is
// itself, Int/Float are their non-zero-ness, Str is its non-emptiness.
func Truthy(v Value) bool {
	switch v.Kind {
	case KindNone:
		return false
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int.Sign() != 0
	case KindFloat:
		return v.Float != 0
	case KindStr:
		return v.Str != ""
	}
	return false
}

// ToString implements toString: None -> "None", Bool -> "True"/"False",
// Int -> decimal, Float -> fixed-point with exactly 6 fractional digits,
// Str -> its raw characters.
func ToString(v Value) string {
	switch v.Kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindInt:
		return v.Int.String()
	case KindFloat:
		return fmt.Sprintf("%.6f", v.Float)
	case KindStr:
		return v.Str
	}
	return ""
}

// isNumeric reports whether v participates in numeric promotion: Bool, Int
// and Float are all numeric-family, per the coercion rules in the spec.
func isNumeric(v Value) bool {
	return v.Kind == KindBool || v.Kind == KindInt || v.Kind == KindFloat
}

// isIntegral reports whether v is numeric but not Float (Bool coerces to
// Int, never to Float, in an integral context).
func isIntegral(v Value) bool {
	return v.Kind == KindBool || v.Kind == KindInt
}

func toBigInt(v Value) *big.Int {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindBool:
		if v.Bool {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	}
	return big.NewInt(0)
}

func toFloat(v Value) float64 {
	switch v.Kind {
	case KindFloat:
		return v.Float
	case KindInt:
		f, _ := new(big.Float).SetInt(v.Int).Float64()
		return f
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	}
	return 0
}
