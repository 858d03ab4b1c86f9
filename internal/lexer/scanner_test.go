package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/please-build/pyrun/internal/lexer"
)

func tokenTypes(t *testing.T, src string) []rune {
	t.Helper()
	l := lexer.New(strings.NewReader(src))
	var types []rune
	for {
		tok := l.Next()
		if tok.Type == lexer.EOF {
			return types
		}
		types = append(types, tok.Type)
	}
}

func TestIndentProducesUnindentOnDedent(t *testing.T) {
	src := "if x:\n    y\nz\n"
	types := tokenTypes(t, src)
	assert.Contains(t, types, rune(lexer.Unindent))
}

func TestBlankAndCommentLinesAreInvisible(t *testing.T) {
	a := tokenTypes(t, "x\ny\n")
	b := tokenTypes(t, "x\n\n# a comment\ny\n")
	assert.Equal(t, a, b)
}

func TestOperatorsTwoCharLookahead(t *testing.T) {
	l := lexer.New(strings.NewReader("a //= 1\n"))
	require.Equal(t, lexer.Ident, l.Next().Type)
	tok := l.Next()
	require.Equal(t, lexer.Operator, tok.Type)
	assert.Equal(t, "//=", tok.Value)
}

func TestEOLSuppressedInsideParens(t *testing.T) {
	types := tokenTypes(t, "f(1,\n2)\n")
	count := 0
	for _, ty := range types {
		if ty == lexer.EOL {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestFStringAndPlainStringShareQuoteHandling(t *testing.T) {
	l := lexer.New(strings.NewReader(`f"a{b}" "c"` + "\n"))
	tok1 := l.Next()
	require.Equal(t, lexer.FString, tok1.Type)
	assert.Equal(t, "a{b}", tok1.Value)
	tok2 := l.Next()
	require.Equal(t, lexer.String, tok2.Type)
	assert.Equal(t, "c", tok2.Value)
}

func TestAssignFollowsDistinguishesFromEquality(t *testing.T) {
	l := lexer.New(strings.NewReader("name=1\n"))
	require.Equal(t, lexer.Ident, l.Peek().Type)
	assert.True(t, l.AssignFollows())

	l2 := lexer.New(strings.NewReader("name==1\n"))
	require.Equal(t, lexer.Ident, l2.Peek().Type)
	assert.False(t, l2.AssignFollows())
}

func TestIntegerLiteralArbitraryWidth(t *testing.T) {
	digits := strings.Repeat("7", 40)
	l := lexer.New(strings.NewReader(digits + "\n"))
	tok := l.Next()
	require.Equal(t, lexer.Int, tok.Type)
	n := lexer.ParseInt(tok.Value)
	assert.Equal(t, digits, n.String())
}

func TestUnterminatedStringFails(t *testing.T) {
	assert.Panics(t, func() {
		lexer.New(strings.NewReader(`"abc` + "\n"))
	})
}
