package eval

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/please-build/pyrun/internal/pylog"
)

// builtins maps the fixed built-in set to their implementations. Call
// dispatch checks this table before the function table, per §4.4: a
// user-defined function cannot shadow a built-in.
var builtins = map[string]func(ev *Eval, args []Value) Value{
	"print": biPrint,
	"int":   biInt,
	"float": biFloat,
	"str":   biStr,
	"bool":  biBool,
}

func biPrint(ev *Eval, args []Value) Value {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(ev.Out, " ")
		}
		fmt.Fprint(ev.Out, ToString(a))
	}
	fmt.Fprintln(ev.Out)
	return None
}

func biInt(ev *Eval, args []Value) Value {
	if len(args) == 0 {
		return IntFromInt64(0)
	}
	v := args[0]
	switch v.Kind {
	case KindInt:
		return v
	case KindBool:
		return IntVal(toBigInt(v))
	case KindFloat:
		trunc := math.Trunc(v.Float)
		bi, _ := big.NewFloat(trunc).Int(nil)
		if bi == nil {
			bi = big.NewInt(0)
		}
		return IntVal(bi)
	case KindStr:
		logLenientParse("int", v.Str)
		return IntVal(parseIntLenient(v.Str))
	}
	return IntFromInt64(0)
}

func biFloat(ev *Eval, args []Value) Value {
	if len(args) == 0 {
		return FloatVal(0)
	}
	v := args[0]
	switch v.Kind {
	case KindFloat:
		return v
	case KindInt:
		return FloatVal(toFloat(v))
	case KindBool:
		return FloatVal(toFloat(v))
	case KindStr:
		logLenientParse("float", v.Str)
		return FloatVal(parseFloatLenient(v.Str))
	}
	return FloatVal(0)
}

func biStr(ev *Eval, args []Value) Value {
	if len(args) == 0 {
		return StrVal("")
	}
	return StrVal(ToString(args[0]))
}

func biBool(ev *Eval, args []Value) Value {
	if len(args) == 0 {
		return BoolVal(false)
	}
	return BoolVal(Truthy(args[0]))
}

// parseIntLenient implements the original interpreter's lenient numeric
// parse: an optional leading sign, then a run of digit characters; any
// trailing non-digit content is ignored, and a string with no digits at
// all parses as 0. See SPEC_FULL.md §12.
func parseIntLenient(s string) *big.Int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n := new(big.Int)
	if start == i {
		return n
	}
	n.SetString(s[start:i], 10)
	if neg {
		n.Neg(n)
	}
	return n
}

// parseFloatLenient applies the same leading-prefix leniency to a
// decimal/float string: sign, digits, optional '.', digits. An
// unparseable or absent prefix yields 0.0.
func parseFloatLenient(s string) float64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	f, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		return 0
	}
	return f
}

func logLenientParse(fn, s string) {
	pylog.Log.Debugf("%s(%q): parsing leading numeric prefix, ignoring trailing content", fn, s)
}
