// Package parser implements a hand-written recursive-descent parser over
// internal/lexer's token stream, in the style of the teacher codebase's
// src/parse/asp/grammar_parse.go: a parser struct wrapping the lexer, small
// next/optional/keyword consumption helpers, and one parse* method per grammar
// production. Parse errors are panics recovered once at the top-level Parse
// entry point, exactly as grammar_parse.go's parseFileInput recovers them.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/please-build/pyrun/internal/ast"
	"github.com/please-build/pyrun/internal/lexer"
)

// Error is a parse error with source position.
type Error struct {
	Pos     lexer.Pos
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

type parser struct {
	l *lexer.Lexer
}

// Parse reads a whole program from l and returns its statement list.
func Parse(l *lexer.Lexer) (stmts []*ast.Statement, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	p := &parser{l: l}
	stmts = p.parseStatements(false)
	p.assertType(lexer.EOF)
	return stmts, nil
}

func astPos(p lexer.Pos) ast.Pos { return ast.Pos{Line: p.Line, Column: p.Column} }

func (p *parser) fail(pos lexer.Pos, format string, args ...interface{}) {
	panic(&Error{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// next consumes and returns the next token, failing if its type doesn't
// match t.
func (p *parser) next(t rune) lexer.Token {
	tok := p.l.Next()
	if tok.Type != t {
		p.fail(tok.Pos, "unexpected %s, expected %s", tok, reverseSymbol(t))
	}
	return tok
}

func reverseSymbol(t rune) string {
	return lexer.ReverseSymbols([]rune{t})[0]
}

func (p *parser) assertType(t rune) {
	tok := p.l.Peek()
	if tok.Type != t {
		p.fail(tok.Pos, "unexpected %s, expected %s", tok, reverseSymbol(t))
	}
}

// optional consumes and returns true if the next token has type t, otherwise
// leaves the stream untouched and returns false.
func (p *parser) optional(t rune) bool {
	if p.l.Peek().Type == t {
		p.l.Next()
		return true
	}
	return false
}

// keyword consumes and returns true if the next token is the identifier kw.
func (p *parser) keyword(kw string) bool {
	if tok := p.l.Peek(); tok.Type == lexer.Ident && tok.Value == kw {
		p.l.Next()
		return true
	}
	return false
}

func (p *parser) peekKeyword(kw string) bool {
	tok := p.l.Peek()
	return tok.Type == lexer.Ident && tok.Value == kw
}

// parseStatements parses statements until Unindent (block) or EOF (program),
// consuming exactly one trailing Unindent for a block, per the teacher's
// parseStatements trick in grammar_parse.go.
func (p *parser) parseStatements(block bool) []*ast.Statement {
	var stmts []*ast.Statement
	for {
		tok := p.l.Peek()
		if tok.Type == lexer.Unindent || tok.Type == lexer.EOF {
			break
		}
		stmts = append(stmts, p.parseStatement())
	}
	if block {
		p.next(lexer.Unindent)
	}
	return stmts
}

func (p *parser) parseStatement() *ast.Statement {
	pos := p.l.Peek().Pos
	stmt := &ast.Statement{Pos: astPos(pos)}
	switch {
	case p.peekKeyword("def"):
		stmt.FuncDef = p.parseFuncDef()
	case p.peekKeyword("if"):
		stmt.If = p.parseIf()
	case p.peekKeyword("while"):
		stmt.While = p.parseWhile()
	case p.peekKeyword("return"):
		p.l.Next()
		stmt.Return = p.parseReturn()
		p.next(lexer.EOL)
	case p.peekKeyword("break"):
		p.l.Next()
		stmt.Break = true
		p.next(lexer.EOL)
	case p.peekKeyword("continue"):
		p.l.Next()
		stmt.Continue = true
		p.next(lexer.EOL)
	default:
		stmt.ExprStmt = p.parseExprStmt()
		p.next(lexer.EOL)
	}
	return stmt
}

// parseSuite parses a block body, which is either an indented statement
// list following EOL, or a single simple statement on the same line as the
// introducing colon.
func (p *parser) parseSuite() []*ast.Statement {
	if p.l.Peek().Type == lexer.EOL {
		p.l.Next()
		return p.parseStatements(true)
	}
	return []*ast.Statement{p.parseStatement()}
}

func (p *parser) parseFuncDef() *ast.FuncDef {
	p.l.Next() // 'def'
	name := p.next(lexer.Ident).Value
	p.next('(')
	fd := &ast.FuncDef{Name: name}
	sawDefault := false
	for p.l.Peek().Type != ')' {
		param := ast.Param{Name: p.next(lexer.Ident).Value}
		if p.optional('=') {
			param.Default = p.parseExpr()
			sawDefault = true
		} else if sawDefault {
			p.fail(p.l.Peek().Pos, "non-default parameter %s follows a default parameter", param.Name)
		}
		fd.Params = append(fd.Params, param)
		if !p.optional(',') {
			break
		}
	}
	p.next(')')
	p.next(':')
	fd.Body = p.parseSuite()
	return fd
}

func (p *parser) parseIf() *ast.IfStmt {
	p.l.Next() // 'if'
	ifs := &ast.IfStmt{}
	cond := p.parseExpr()
	p.next(':')
	ifs.Branches = append(ifs.Branches, ast.Branch{Cond: cond, Body: p.parseSuite()})
	for p.peekKeyword("elif") {
		p.l.Next()
		cond := p.parseExpr()
		p.next(':')
		ifs.Branches = append(ifs.Branches, ast.Branch{Cond: cond, Body: p.parseSuite()})
	}
	if p.peekKeyword("else") {
		p.l.Next()
		p.next(':')
		ifs.Else = p.parseSuite()
	}
	return ifs
}

func (p *parser) parseWhile() *ast.WhileStmt {
	p.l.Next() // 'while'
	cond := p.parseExpr()
	p.next(':')
	return &ast.WhileStmt{Cond: cond, Body: p.parseSuite()}
}

func (p *parser) parseReturn() *ast.ReturnStmt {
	rs := &ast.ReturnStmt{}
	if p.l.Peek().Type == lexer.EOL {
		return rs
	}
	rs.Values = p.parseExprList()
	return rs
}

// compoundOps maps an Operator token's raw text to the bare arithmetic
// operator used for its OP= effect.
var compoundOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "//=": "//", "%=": "%",
}

// parseExprStmt parses a plain expression statement, a simple (possibly
// chained) assignment, or a compound assignment, per ast.ExprStmt's layout.
func (p *parser) parseExprStmt() *ast.ExprStmt {
	first := ast.ExprList{Exprs: p.parseExprList()}
	es := &ast.ExprStmt{Lists: []ast.ExprList{first}}

	if tok := p.l.Peek(); tok.Type == lexer.Operator {
		if op, ok := compoundOps[tok.Value]; ok {
			if len(first.Exprs) != 1 || !isBareName(first.Exprs[0]) {
				p.fail(tok.Pos, "compound assignment target must be a single name")
			}
			p.l.Next()
			es.CompoundOp = op
			es.Lists = append(es.Lists, ast.ExprList{Exprs: p.parseExprList()})
			return es
		}
	}

	for p.optional('=') {
		target := es.Lists[len(es.Lists)-1]
		if len(target.Exprs) != 1 || !isBareName(target.Exprs[0]) {
			p.fail(p.l.Peek().Pos, "assignment target must be a single name")
		}
		es.Lists = append(es.Lists, ast.ExprList{Exprs: p.parseExprList()})
	}
	return es
}

// isBareName reports whether e is a single identifier atom with no sign,
// call or operator applied — the only expression shape a name binding may
// target.
func isBareName(e *ast.Expr) bool {
	atom := unwrapAtom(e)
	return atom != nil && atom.Kind == ast.AtomName
}

func unwrapAtom(e *ast.Expr) *ast.Atom {
	if len(e.Ors) != 1 || len(e.Ors[0].Ands) != 1 {
		return nil
	}
	not := e.Ors[0].Ands[0]
	if not.Nots != 0 || len(not.Cmp.Operands) != 1 {
		return nil
	}
	arith := not.Cmp.Operands[0]
	if len(arith.Operands) != 1 {
		return nil
	}
	term := arith.Operands[0]
	if len(term.Operands) != 1 {
		return nil
	}
	factor := term.Operands[0]
	if factor.Op != 0 || factor.Atom.Call != nil {
		return nil
	}
	return factor.Atom.Atom
}

// parseExprList parses a comma-separated list of expressions. It consumes
// no terminator; the caller decides what follows (EOL, '=', ')', EOF).
func (p *parser) parseExprList() []*ast.Expr {
	exprs := []*ast.Expr{p.parseExpr()}
	for p.optional(',') {
		exprs = append(exprs, p.parseExpr())
	}
	return exprs
}

// Expression precedence, low to high: or, and, not, comparison, arith
// (+ -), term (* / // %), factor (unary + -), atom-expr (call trailer), atom.

func (p *parser) parseExpr() *ast.Expr {
	pos := p.l.Peek().Pos
	e := &ast.Expr{Pos: astPos(pos), Ors: []*ast.AndExpr{p.parseAndExpr()}}
	for p.keyword("or") {
		e.Ors = append(e.Ors, p.parseAndExpr())
	}
	return e
}

func (p *parser) parseAndExpr() *ast.AndExpr {
	a := &ast.AndExpr{Ands: []*ast.NotExpr{p.parseNotExpr()}}
	for p.keyword("and") {
		a.Ands = append(a.Ands, p.parseNotExpr())
	}
	return a
}

func (p *parser) parseNotExpr() *ast.NotExpr {
	n := &ast.NotExpr{}
	for p.keyword("not") {
		n.Nots++
	}
	n.Cmp = p.parseComparison()
	return n
}

var compareOps = map[string]ast.CompareOp{
	"==": ast.OpEQ, "!=": ast.OpNE, "<=": ast.OpLE, ">=": ast.OpGE,
}

func (p *parser) parseComparison() *ast.Comparison {
	c := &ast.Comparison{Operands: []*ast.ArithExpr{p.parseArithExpr()}}
	for {
		tok := p.l.Peek()
		switch tok.Type {
		case '<':
			p.l.Next()
			c.Ops = append(c.Ops, ast.OpLT)
		case '>':
			p.l.Next()
			c.Ops = append(c.Ops, ast.OpGT)
		case lexer.Operator:
			op, ok := compareOps[tok.Value]
			if !ok {
				return c
			}
			p.l.Next()
			c.Ops = append(c.Ops, op)
		default:
			return c
		}
		c.Operands = append(c.Operands, p.parseArithExpr())
	}
}

func (p *parser) parseArithExpr() *ast.ArithExpr {
	a := &ast.ArithExpr{Operands: []*ast.Term{p.parseTerm()}}
	for {
		tok := p.l.Peek()
		if tok.Type != '+' && tok.Type != '-' {
			return a
		}
		p.l.Next()
		a.Ops = append(a.Ops, byte(tok.Type))
		a.Operands = append(a.Operands, p.parseTerm())
	}
}

func (p *parser) parseTerm() *ast.Term {
	t := &ast.Term{Operands: []*ast.Factor{p.parseFactor()}}
	for {
		tok := p.l.Peek()
		var op string
		switch {
		case tok.Type == '*':
			op = "*"
		case tok.Type == '/':
			op = "/"
		case tok.Type == '%':
			op = "%"
		case tok.Type == lexer.Operator && tok.Value == "//":
			op = "//"
		default:
			return t
		}
		p.l.Next()
		t.Ops = append(t.Ops, op)
		t.Operands = append(t.Operands, p.parseFactor())
	}
}

func (p *parser) parseFactor() *ast.Factor {
	tok := p.l.Peek()
	if tok.Type == '+' || tok.Type == '-' {
		p.l.Next()
		return &ast.Factor{Op: byte(tok.Type), Next: p.parseFactor()}
	}
	return &ast.Factor{Atom: p.parseAtomExpr()}
}

func (p *parser) parseAtomExpr() *ast.AtomExpr {
	ae := &ast.AtomExpr{Atom: p.parseAtom()}
	if p.l.Peek().Type == '(' {
		ae.Call = p.parseCall()
	}
	return ae
}

func (p *parser) parseCall() *ast.Call {
	p.next('(')
	call := &ast.Call{}
	names := map[string]bool{}
	for p.l.Peek().Type != ')' {
		var arg ast.Argument
		tok := p.l.Peek()
		if tok.Type == lexer.Ident && p.l.AssignFollows() {
			arg.Name = tok.Value
			p.l.Next()
			p.next('=')
			if names[arg.Name] {
				p.fail(tok.Pos, "repeated argument %s", arg.Name)
			}
			names[arg.Name] = true
		}
		arg.Value = p.parseExpr()
		call.Args = append(call.Args, arg)
		if !p.optional(',') {
			break
		}
	}
	p.next(')')
	return call
}

func (p *parser) parseAtom() *ast.Atom {
	tok := p.l.Peek()
	pos := astPos(tok.Pos)
	switch tok.Type {
	case lexer.Ident:
		p.l.Next()
		switch tok.Value {
		case "True":
			return &ast.Atom{Pos: pos, Kind: ast.AtomTrue}
		case "False":
			return &ast.Atom{Pos: pos, Kind: ast.AtomFalse}
		case "None":
			return &ast.Atom{Pos: pos, Kind: ast.AtomNone}
		default:
			return &ast.Atom{Pos: pos, Kind: ast.AtomName, Name: tok.Value}
		}
	case lexer.Int:
		p.l.Next()
		return &ast.Atom{Pos: pos, Kind: ast.AtomInt, Int: lexer.ParseInt(tok.Value)}
	case lexer.Float:
		p.l.Next()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.fail(tok.Pos, "invalid float literal %q", tok.Value)
		}
		return &ast.Atom{Pos: pos, Kind: ast.AtomFloat, Float: f}
	case lexer.String:
		p.l.Next()
		s := tok.Value
		for p.l.Peek().Type == lexer.String {
			s += p.l.Next().Value
		}
		return &ast.Atom{Pos: pos, Kind: ast.AtomStr, Str: s}
	case lexer.FString:
		p.l.Next()
		return &ast.Atom{Pos: pos, Kind: ast.AtomFString, FString: parseFormatString(pos, tok.Value)}
	case '(':
		p.l.Next()
		inner := p.parseExpr()
		p.next(')')
		return &ast.Atom{Pos: pos, Kind: ast.AtomParen, Paren: inner}
	default:
		p.fail(tok.Pos, "unexpected %s", tok)
		panic("unreachable")
	}
}

// parseFormatString splits a format-string body into literal fragments and
// embedded expression lists, collapsing {{ and }} to literal braces, per the
// language's format-string rule.
func parseFormatString(pos ast.Pos, s string) *ast.FormatString {
	fs := &ast.FormatString{}
	var buf strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			buf.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			buf.WriteByte('}')
			i += 2
		case c == '{':
			j := i + 1
			for j < len(s) && s[j] != '}' {
				j++
			}
			if j >= len(s) {
				panic(&Error{Pos: lexer.Pos{Line: pos.Line, Column: pos.Column}, Message: "unterminated format expression"})
			}
			fs.Literals = append(fs.Literals, buf.String())
			buf.Reset()
			fs.Exprs = append(fs.Exprs, parseExprListFromString(s[i+1:j]))
			i = j + 1
		default:
			buf.WriteByte(c)
			i++
		}
	}
	fs.Literals = append(fs.Literals, buf.String())
	return fs
}

// parseExprListFromString parses a comma-separated expression list out of a
// standalone fragment of source, used for the contents of a format-string
// embed. It reuses the same lexer/parser machinery over a fresh reader.
func parseExprListFromString(src string) []*ast.Expr {
	l := lexer.New(strings.NewReader(src))
	p := &parser{l: l}
	return p.parseExprList()
}
