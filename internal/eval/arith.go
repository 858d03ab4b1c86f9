package eval

import (
	"math"
	"math/big"
	"strings"

	"github.com/please-build/pyrun/internal/pylog"
)

// Add implements '+': string concatenation for two Str, promoted numeric
// sum otherwise. Anything else is an incompatible operation.
func Add(a, b Value) Value {
	if a.Kind == KindStr && b.Kind == KindStr {
		return StrVal(a.Str + b.Str)
	}
	if isNumeric(a) && isNumeric(b) {
		if a.Kind == KindFloat || b.Kind == KindFloat {
			return FloatVal(toFloat(a) + toFloat(b))
		}
		return IntVal(new(big.Int).Add(toBigInt(a), toBigInt(b)))
	}
	pylog.Log.Debugf("incompatible operands for +: %v, %v", a.Kind, b.Kind)
	return None
}

// Sub implements promoted numeric difference; unsupported on Str.
func Sub(a, b Value) Value {
	if isNumeric(a) && isNumeric(b) {
		if a.Kind == KindFloat || b.Kind == KindFloat {
			return FloatVal(toFloat(a) - toFloat(b))
		}
		return IntVal(new(big.Int).Sub(toBigInt(a), toBigInt(b)))
	}
	pylog.Log.Debugf("incompatible operands for -: %v, %v", a.Kind, b.Kind)
	return None
}

// Mul implements promoted numeric product, plus Str*Int/Int*Str repetition.
func Mul(a, b Value) Value {
	if isNumeric(a) && isNumeric(b) {
		if a.Kind == KindFloat || b.Kind == KindFloat {
			return FloatVal(toFloat(a) * toFloat(b))
		}
		return IntVal(new(big.Int).Mul(toBigInt(a), toBigInt(b)))
	}
	if a.Kind == KindStr && isIntegral(b) {
		return StrVal(repeat(a.Str, toBigInt(b)))
	}
	if isIntegral(a) && b.Kind == KindStr {
		return StrVal(repeat(b.Str, toBigInt(a)))
	}
	pylog.Log.Debugf("incompatible operands for *: %v, %v", a.Kind, b.Kind)
	return None
}

func repeat(s string, n *big.Int) string {
	if n.Sign() <= 0 || !n.IsInt64() {
		if n.Sign() <= 0 {
			return ""
		}
		// A repeat count this large cannot be materialised; treat it as the
		// incompatible-operation case rather than exhausting memory.
		pylog.Log.Warningf("string repeat count %s too large", n.String())
		return ""
	}
	return strings.Repeat(s, int(n.Int64()))
}

// Div implements '/': true division, always Float, for numeric operands.
func Div(a, b Value) Value {
	if !isNumeric(a) || !isNumeric(b) {
		pylog.Log.Debugf("incompatible operands for /: %v, %v", a.Kind, b.Kind)
		return None
	}
	bf := toFloat(b)
	if bf == 0 {
		pylog.Log.Warningf("division by zero")
		return None
	}
	return FloatVal(toFloat(a) / bf)
}

// FloorDiv implements '//': floor-toward-negative-infinity division. Two
// integral operands stay exact via big.Int; any Float operand is computed
// via float64 and floored, per the original implementation this subset was
// distilled from.
func FloorDiv(a, b Value) Value {
	if !isNumeric(a) || !isNumeric(b) {
		pylog.Log.Debugf("incompatible operands for //: %v, %v", a.Kind, b.Kind)
		return None
	}
	if isIntegral(a) && isIntegral(b) {
		bi := toBigInt(b)
		if bi.Sign() == 0 {
			pylog.Log.Warningf("floor division by zero")
			return None
		}
		q, _ := floorDivMod(toBigInt(a), bi)
		return IntVal(q)
	}
	bf := toFloat(b)
	if bf == 0 {
		pylog.Log.Warningf("floor division by zero")
		return None
	}
	q := math.Floor(toFloat(a) / bf)
	bi, _ := big.NewFloat(q).Int(nil)
	return IntVal(bi)
}

// floorDivMod computes floor-toward-negative-infinity quotient and
// remainder: q*b+r == a, with r's sign matching b's (when r != 0). Go's
// big.Int.QuoRem truncates toward zero, so a non-zero remainder whose sign
// differs from b's is adjusted: q is decremented by one and b added to r.
func floorDivMod(a, b *big.Int) (q, r *big.Int) {
	q, r = new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}
	return q, r
}

// Mod implements '%' as a - (a // b) * b, reusing FloorDiv/Mul/Sub so the
// promotion rules for mixed Int/Float operands fall out automatically.
func Mod(a, b Value) Value {
	fd := FloorDiv(a, b)
	if fd.Kind != KindInt {
		return None // FloorDiv already logged the type mismatch or zero-division
	}
	return Sub(a, Mul(fd, b))
}

// Negate implements unary '-': Bool negates as its integer value
// (-True == -1), Int/Float negate directly.
func Negate(v Value) Value {
	switch v.Kind {
	case KindBool:
		return IntVal(new(big.Int).Neg(toBigInt(v)))
	case KindInt:
		return IntVal(new(big.Int).Neg(v.Int))
	case KindFloat:
		return FloatVal(-v.Float)
	}
	pylog.Log.Debugf("incompatible operand for unary -: %v", v.Kind)
	return None
}

// UnaryPlus implements unary '+': identity on numeric values, coercing Bool
// to Int.
func UnaryPlus(v Value) Value {
	switch v.Kind {
	case KindBool:
		return IntVal(toBigInt(v))
	case KindInt, KindFloat:
		return v
	}
	pylog.Log.Debugf("incompatible operand for unary +: %v", v.Kind)
	return None
}

// Compare defines the language's partial order: ok is false when a and b
// are not one of the three comparable shapes (numeric/numeric, Str/Str,
// None/None), in which case cmp is meaningless.
func Compare(a, b Value) (ok bool, cmp int) {
	switch {
	case isNumeric(a) && isNumeric(b):
		if a.Kind == KindFloat || b.Kind == KindFloat {
			af, bf := toFloat(a), toFloat(b)
			switch {
			case af < bf:
				return true, -1
			case af > bf:
				return true, 1
			default:
				return true, 0
			}
		}
		return true, toBigInt(a).Cmp(toBigInt(b))
	case a.Kind == KindStr && b.Kind == KindStr:
		return true, strings.Compare(a.Str, b.Str)
	case a.Kind == KindNone && b.Kind == KindNone:
		return true, 0
	}
	return false, 0
}

// Less, Greater, LessEq and GreaterEq implement the ordered comparison
// operators; an incomparable pair yields false for that link rather than
// raising, per the spec's error-handling design.
func Less(a, b Value) bool      { ok, c := Compare(a, b); return ok && c < 0 }
func Greater(a, b Value) bool   { ok, c := Compare(a, b); return ok && c > 0 }
func LessEq(a, b Value) bool    { ok, c := Compare(a, b); return ok && c <= 0 }
func GreaterEq(a, b Value) bool { ok, c := Compare(a, b); return ok && c >= 0 }

// Equal and NotEqual are defined across all value pairs: equal iff Compare
// succeeds and yields 0, so an incomparable pair (e.g. Str vs Int) is
// simply unequal rather than an error.
func Equal(a, b Value) bool    { ok, c := Compare(a, b); return ok && c == 0 }
func NotEqual(a, b Value) bool { return !Equal(a, b) }

// BinOp dispatches a compound-assignment operator ("+" "-" "*" "/" "//" "%")
// to the corresponding binary operation.
func BinOp(op string, a, b Value) Value {
	switch op {
	case "+":
		return Add(a, b)
	case "-":
		return Sub(a, b)
	case "*":
		return Mul(a, b)
	case "/":
		return Div(a, b)
	case "//":
		return FloorDiv(a, b)
	case "%":
		return Mod(a, b)
	}
	panic("eval: unknown operator " + op)
}
