package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/please-build/pyrun/internal/ast"
	"github.com/please-build/pyrun/internal/lexer"
	"github.com/please-build/pyrun/internal/parser"
)

func mustParse(t *testing.T, src string) []*ast.Statement {
	t.Helper()
	stmts, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	return stmts
}

func TestParsePlainExpressionStatement(t *testing.T) {
	stmts := mustParse(t, "1 + 2\n")
	require.Len(t, stmts, 1)
	require.NotNil(t, stmts[0].ExprStmt)
	assert.Empty(t, stmts[0].ExprStmt.CompoundOp)
	assert.Len(t, stmts[0].ExprStmt.Lists, 1)
}

func TestParseChainedAssignment(t *testing.T) {
	stmts := mustParse(t, "a = b = 1\n")
	es := stmts[0].ExprStmt
	require.Len(t, es.Lists, 3)
}

func TestParseCompoundAssignment(t *testing.T) {
	stmts := mustParse(t, "a += 1\n")
	es := stmts[0].ExprStmt
	assert.Equal(t, "+", es.CompoundOp)
	require.Len(t, es.Lists, 2)
}

func TestParseFuncDefWithDefaults(t *testing.T) {
	stmts := mustParse(t, "def f(x, y=10):\n    return x + y\n")
	require.Len(t, stmts, 1)
	fd := stmts[0].FuncDef
	require.NotNil(t, fd)
	assert.Equal(t, "f", fd.Name)
	require.Len(t, fd.Params, 2)
	assert.Nil(t, fd.Params[0].Default)
	assert.NotNil(t, fd.Params[1].Default)
	require.Len(t, fd.Body, 1)
	require.NotNil(t, fd.Body[0].Return)
}

func TestParseNonDefaultAfterDefaultFails(t *testing.T) {
	_, err := parser.Parse(lexer.New(strings.NewReader("def f(x=1, y):\n    return x\n")))
	assert.Error(t, err)
}

func TestParseIfElifElse(t *testing.T) {
	src := "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n"
	stmts := mustParse(t, src)
	ifs := stmts[0].If
	require.NotNil(t, ifs)
	assert.Len(t, ifs.Branches, 2)
	assert.Len(t, ifs.Else, 1)
}

func TestParseInlineSuite(t *testing.T) {
	stmts := mustParse(t, "if a: x = 1\n")
	ifs := stmts[0].If
	require.Len(t, ifs.Branches, 1)
	require.Len(t, ifs.Branches[0].Body, 1)
}

func TestParseWhileLoop(t *testing.T) {
	stmts := mustParse(t, "while x < 10:\n    x = x + 1\n")
	require.NotNil(t, stmts[0].While)
}

func TestParseCallWithKeywordArgument(t *testing.T) {
	stmts := mustParse(t, "f(1, y=2)\n")
	call := stmts[0].ExprStmt.Lists[0].Exprs[0].Ors[0].Ands[0].Cmp.Operands[0].Operands[0].Operands[0].Atom.Call
	require.NotNil(t, call)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "", call.Args[0].Name)
	assert.Equal(t, "y", call.Args[1].Name)
}

func TestParseComparisonChainFlattened(t *testing.T) {
	stmts := mustParse(t, "a < b < c\n")
	cmp := stmts[0].ExprStmt.Lists[0].Exprs[0].Ors[0].Ands[0].Cmp
	require.Len(t, cmp.Operands, 3)
	require.Len(t, cmp.Ops, 2)
	assert.Equal(t, ast.OpLT, cmp.Ops[0])
	assert.Equal(t, ast.OpLT, cmp.Ops[1])
}

func TestParseFormatStringLiteralsAndExprs(t *testing.T) {
	stmts := mustParse(t, `f"a{b}c"` + "\n")
	atom := stmts[0].ExprStmt.Lists[0].Exprs[0].Ors[0].Ands[0].Cmp.Operands[0].Operands[0].Operands[0].Atom.Atom
	require.Equal(t, ast.AtomFString, atom.Kind)
	assert.Equal(t, []string{"a", "c"}, atom.FString.Literals)
	assert.Len(t, atom.FString.Exprs, 1)
}

func TestParseStringConcatenationAdjacent(t *testing.T) {
	stmts := mustParse(t, `"a" "b"` + "\n")
	atom := stmts[0].ExprStmt.Lists[0].Exprs[0].Ors[0].Ands[0].Cmp.Operands[0].Operands[0].Operands[0].Atom.Atom
	assert.Equal(t, "ab", atom.Str)
}

func TestParseAssignmentTargetMustBeBareName(t *testing.T) {
	_, err := parser.Parse(lexer.New(strings.NewReader("1 + 1 = 2\n")))
	assert.Error(t, err)
}
