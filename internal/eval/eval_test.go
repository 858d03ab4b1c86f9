package eval_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/please-build/pyrun/internal/eval"
	"github.com/please-build/pyrun/internal/lexer"
	"github.com/please-build/pyrun/internal/parser"
)

// runProgram parses and evaluates src, returning everything written to
// stdout. This is an end-to-end test on the whole pipeline, mirroring the
// teacher's own interpreter_test.go approach of interpreting whole source
// files rather than constructing ASTs by hand.
func runProgram(t *testing.T, src string) string {
	t.Helper()
	stmts, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	var out bytes.Buffer
	ev := eval.New(&out)
	ev.Run(stmts)
	return out.String()
}

func TestArithmeticPrecedence(t *testing.T) {
	assert.Equal(t, "23\n", runProgram(t, "print(3 + 4 * 5)\n"))
}

func TestFunctionDefaultsAndKeywords(t *testing.T) {
	src := "def f(x, y=10):\n    return x + y\nprint(f(1), f(1, 2), f(1, y=5))\n"
	assert.Equal(t, "11 3 6\n", runProgram(t, src))
}

func TestWritesInsideFunctionDefaultToGlobal(t *testing.T) {
	src := "x = 0\ndef inc():\n    x = x + 1\ninc()\ninc()\nprint(x)\n"
	assert.Equal(t, "2\n", runProgram(t, src))
}

func TestFloorDivAndModNegative(t *testing.T) {
	assert.Equal(t, "-4 -1\n", runProgram(t, "print(7 // -2, 7 % -2)\n"))
}

func TestStringRepetition(t *testing.T) {
	src := `a = "ab"
print(a * 3, 3 * a, a * 0, a * -1)
`
	assert.Equal(t, "ababab ababab  \n", runProgram(t, src))
}

func TestComparisonChainAndFloatEquality(t *testing.T) {
	assert.Equal(t, "True False True\n", runProgram(t, "print(1 < 2 < 3, 1 < 2 > 3, 1 == 1.0)\n"))
}

func TestIntegerPrecisionRoundTrip(t *testing.T) {
	big := strings.Repeat("9", 50)
	assert.Equal(t, big+"\n", runProgram(t, "print("+big+")\n"))
}

func TestFloatFormattingSixDigits(t *testing.T) {
	assert.Equal(t, "0.333333\n", runProgram(t, "print(1 / 3)\n"))
}

func TestShortCircuitOr(t *testing.T) {
	src := `calls = 0
def bump():
    calls = calls + 1
    return True
def f():
    return True
result = f() or bump()
print(calls)
`
	assert.Equal(t, "0\n", runProgram(t, src))
}

func TestShortCircuitAnd(t *testing.T) {
	src := `calls = 0
def bump():
    calls = calls + 1
    return True
def f():
    return False
result = f() and bump()
print(calls)
`
	assert.Equal(t, "0\n", runProgram(t, src))
}

func TestComparisonChainEvaluatesMiddleOnce(t *testing.T) {
	src := `calls = 0
def mid():
    calls = calls + 1
    return 2
print(1 < mid() < 3)
print(calls)
`
	assert.Equal(t, "True\n1\n", runProgram(t, src))
}

func TestDefaultCapturedOnceAtDefinition(t *testing.T) {
	src := `g = 1
def f(x=g):
    return x
g = 2
print(f())
`
	assert.Equal(t, "1\n", runProgram(t, src))
}

func TestWhileBreakAndContinue(t *testing.T) {
	src := `i = 0
total = 0
while i < 10:
    i = i + 1
    if i == 3:
        continue
    if i == 7:
        break
    total = total + i
print(total, i)
`
	assert.Equal(t, "18 7\n", runProgram(t, src))
}

func TestFormatString(t *testing.T) {
	src := `x = 3
y = 4
print(f"{x} + {y} = {x + y}, {{literal}}")
`
	assert.Equal(t, "3 + 4 = 7, {literal}\n", runProgram(t, src))
}

func TestIncompatibleOperationYieldsNone(t *testing.T) {
	assert.Equal(t, "None\n", runProgram(t, `print("a" - "b")`+"\n"))
}

func TestUnknownCalleeYieldsNone(t *testing.T) {
	assert.Equal(t, "None\n", runProgram(t, "print(mystery(1, 2))\n"))
}

func TestCallBindingFailureYieldsNone(t *testing.T) {
	src := "def f(x):\n    return x\nprint(f())\n"
	assert.Equal(t, "None\n", runProgram(t, src))
}

func TestDivisionByZeroYieldsNone(t *testing.T) {
	assert.Equal(t, "None None\n", runProgram(t, "print(1 // 0, 1 % 0)\n"))
}

func TestRecursion(t *testing.T) {
	src := `def fact(n):
    if n <= 1:
        return 1
    return n * fact(n - 1)
print(fact(10))
`
	assert.Equal(t, "3628800\n", runProgram(t, src))
}
