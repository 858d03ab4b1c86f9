package eval

import (
	"io"
	"strings"

	"github.com/please-build/pyrun/internal/ast"
	"github.com/please-build/pyrun/internal/pylog"
)

// signal is a non-local transfer distinct from any error path: break,
// continue and return unwind the evaluator to a designated catcher (the
// innermost while for break/continue, the innermost call frame for
// return), exactly as the spec's design notes require. It is never an
// error type, so a malformed program cannot observe it as one.
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
	sigReturn
)

// Eval walks a parsed program against an Env, writing print output to Out
// and diagnostics through pylog.
type Eval struct {
	Env *Env
	Out io.Writer
}

// arg is one evaluated call argument: Name is empty for a positional
// argument, or the keyword's parameter name.
type arg struct {
	Name string
	Val  Value
}

// New returns an Eval writing print output to out.
func New(out io.Writer) *Eval {
	return &Eval{Env: NewEnv(), Out: out}
}

// Run executes a whole program's top-level statements.
func (ev *Eval) Run(stmts []*ast.Statement) {
	ev.execBlock(stmts)
}

// execBlock runs a statement list in order, stopping as soon as a
// statement reports a non-local transfer, which it propagates to its
// caller.
func (ev *Eval) execBlock(stmts []*ast.Statement) (signal, Value) {
	for _, s := range stmts {
		if sig, v := ev.execStmt(s); sig != sigNone {
			return sig, v
		}
	}
	return sigNone, None
}

func (ev *Eval) execStmt(s *ast.Statement) (signal, Value) {
	switch {
	case s.FuncDef != nil:
		ev.execFuncDef(s.FuncDef)
	case s.If != nil:
		return ev.execIf(s.If)
	case s.While != nil:
		return ev.execWhile(s.While)
	case s.Return != nil:
		return sigReturn, ev.evalReturnValue(s.Return)
	case s.Break:
		return sigBreak, None
	case s.Continue:
		return sigContinue, None
	case s.ExprStmt != nil:
		ev.execExprStmt(s.ExprStmt)
	}
	return sigNone, None
}

func (ev *Eval) evalReturnValue(r *ast.ReturnStmt) Value {
	if len(r.Values) == 0 {
		return None
	}
	return ev.evalExprListLast(r.Values)
}

func (ev *Eval) execFuncDef(fd *ast.FuncDef) {
	fn := &Function{Name: fd.Name, Body: fd.Body}
	required := len(fd.Params)
	for i, p := range fd.Params {
		fn.Params = append(fn.Params, p.Name)
		if p.Default != nil && required == len(fd.Params) {
			required = i
		}
	}
	fn.Required = required
	for _, p := range fd.Params[required:] {
		fn.Defaults = append(fn.Defaults, ev.evalExpr(p.Default))
	}
	ev.Env.Functions[fd.Name] = fn
}

func (ev *Eval) execIf(s *ast.IfStmt) (signal, Value) {
	for _, b := range s.Branches {
		if Truthy(ev.evalExpr(b.Cond)) {
			return ev.execBlock(b.Body)
		}
	}
	return ev.execBlock(s.Else)
}

func (ev *Eval) execWhile(s *ast.WhileStmt) (signal, Value) {
	for Truthy(ev.evalExpr(s.Cond)) {
		sig, v := ev.execBlock(s.Body)
		switch sig {
		case sigBreak:
			return sigNone, None
		case sigReturn:
			return sigReturn, v
		}
	}
	return sigNone, None
}

func (ev *Eval) execExprStmt(es *ast.ExprStmt) {
	if es.CompoundOp != "" {
		name := bareName(es.Lists[0].Exprs[0])
		cur := ev.Env.LookupVar(name)
		rhs := ev.evalExprListLast(es.Lists[1].Exprs)
		ev.Env.SetVar(name, BinOp(es.CompoundOp, cur, rhs))
		return
	}
	if len(es.Lists) == 1 {
		ev.evalExprListLast(es.Lists[0].Exprs)
		return
	}
	val := ev.evalExprListLast(es.Lists[len(es.Lists)-1].Exprs)
	for _, l := range es.Lists[:len(es.Lists)-1] {
		ev.Env.SetVar(bareName(l.Exprs[0]), val)
	}
}

// evalExprListLast evaluates every expression in order (each may have
// side effects) and returns the last one's value, implementing the
// language's "multiple values collapse to the last" rule.
func (ev *Eval) evalExprListLast(exprs []*ast.Expr) Value {
	var v Value
	for _, e := range exprs {
		v = ev.evalExpr(e)
	}
	return v
}

// bareName extracts the identifier from an expression the parser has
// already validated as a single bare name (see parser.isBareName); the
// nesting is walked directly rather than re-validated.
func bareName(e *ast.Expr) string {
	return e.Ors[0].Ands[0].Cmp.Operands[0].Operands[0].Operands[0].Atom.Atom.Name
}

// Expression evaluation, low precedence (or) to high (atom/call).

func (ev *Eval) evalExpr(e *ast.Expr) Value {
	if len(e.Ors) == 1 {
		return ev.evalAndExpr(e.Ors[0])
	}
	for _, a := range e.Ors {
		if Truthy(ev.evalAndExpr(a)) {
			return BoolVal(true)
		}
	}
	return BoolVal(false)
}

func (ev *Eval) evalAndExpr(a *ast.AndExpr) Value {
	if len(a.Ands) == 1 {
		return ev.evalNotExpr(a.Ands[0])
	}
	for _, n := range a.Ands {
		if !Truthy(ev.evalNotExpr(n)) {
			return BoolVal(false)
		}
	}
	return BoolVal(true)
}

func (ev *Eval) evalNotExpr(n *ast.NotExpr) Value {
	v := ev.evalComparison(n.Cmp)
	if n.Nots == 0 {
		return v
	}
	b := Truthy(v)
	if n.Nots%2 == 1 {
		b = !b
	}
	return BoolVal(b)
}

func (ev *Eval) evalComparison(c *ast.Comparison) Value {
	left := ev.evalArith(c.Operands[0])
	if len(c.Ops) == 0 {
		return left
	}
	result := true
	for i, op := range c.Ops {
		right := ev.evalArith(c.Operands[i+1])
		if !compareLink(op, left, right) {
			result = false
		}
		left = right
	}
	return BoolVal(result)
}

func compareLink(op ast.CompareOp, l, r Value) bool {
	switch op {
	case ast.OpLT:
		return Less(l, r)
	case ast.OpGT:
		return Greater(l, r)
	case ast.OpLE:
		return LessEq(l, r)
	case ast.OpGE:
		return GreaterEq(l, r)
	case ast.OpEQ:
		return Equal(l, r)
	case ast.OpNE:
		return NotEqual(l, r)
	}
	return false
}

func (ev *Eval) evalArith(a *ast.ArithExpr) Value {
	result := ev.evalTerm(a.Operands[0])
	for i, op := range a.Ops {
		right := ev.evalTerm(a.Operands[i+1])
		if op == '+' {
			result = Add(result, right)
		} else {
			result = Sub(result, right)
		}
	}
	return result
}

func (ev *Eval) evalTerm(t *ast.Term) Value {
	result := ev.evalFactor(t.Operands[0])
	for i, op := range t.Ops {
		right := ev.evalFactor(t.Operands[i+1])
		result = BinOp(op, result, right)
	}
	return result
}

func (ev *Eval) evalFactor(f *ast.Factor) Value {
	if f.Op == 0 {
		return ev.evalAtomExpr(f.Atom)
	}
	v := ev.evalFactor(f.Next)
	if f.Op == '-' {
		return Negate(v)
	}
	return UnaryPlus(v)
}

func (ev *Eval) evalAtomExpr(ae *ast.AtomExpr) Value {
	if ae.Call == nil {
		return ev.evalAtom(ae.Atom)
	}
	if ae.Atom.Kind != ast.AtomName {
		pylog.Log.Warningf("call target must be a name")
		return None
	}
	args := ev.evalArgs(ae.Call)
	return ev.call(ae.Atom.Name, args)
}

func (ev *Eval) evalArgs(call *ast.Call) []arg {
	args := make([]arg, len(call.Args))
	for i, a := range call.Args {
		args[i] = arg{Name: a.Name, Val: ev.evalExpr(a.Value)}
	}
	return args
}

func (ev *Eval) evalAtom(a *ast.Atom) Value {
	switch a.Kind {
	case ast.AtomName:
		return ev.Env.LookupVar(a.Name)
	case ast.AtomInt:
		return IntVal(a.Int)
	case ast.AtomFloat:
		return FloatVal(a.Float)
	case ast.AtomStr:
		return StrVal(a.Str)
	case ast.AtomTrue:
		return BoolVal(true)
	case ast.AtomFalse:
		return BoolVal(false)
	case ast.AtomNone:
		return None
	case ast.AtomParen:
		return ev.evalExpr(a.Paren)
	case ast.AtomFString:
		return ev.evalFormatString(a.FString)
	}
	return None
}

// evalFormatString interleaves literal fragments with embedded expression
// lists, rendering each embed's last value via ToString.
func (ev *Eval) evalFormatString(fs *ast.FormatString) Value {
	var b strings.Builder
	for i, lit := range fs.Literals {
		b.WriteString(lit)
		if i < len(fs.Exprs) {
			b.WriteString(ToString(ev.evalExprListLast(fs.Exprs[i])))
		}
	}
	return StrVal(b.String())
}

// call resolves a callee by name: built-ins first, then user functions,
// else None. Arguments have already been evaluated left to right.
func (ev *Eval) call(name string, args []arg) Value {
	if bi, ok := builtins[name]; ok {
		vals := make([]Value, 0, len(args))
		for _, a := range args {
			vals = append(vals, a.Val)
		}
		return bi(ev, vals)
	}
	fn, ok := ev.Env.Functions[name]
	if !ok {
		pylog.Log.Debugf("call to unknown function %q", name)
		return None
	}
	frame, ok := bindArgs(fn, args)
	if !ok {
		pylog.Log.Warningf("argument binding failed for %q", name)
		return None
	}
	ev.Env.PushFrame(frame)
	defer ev.Env.PopFrame()
	sig, v := ev.execBlock(fn.Body)
	if sig == sigReturn {
		return v
	}
	return None
}

// bindArgs implements the §4.4 binding procedure: positional arguments
// fill slots left to right, keyword arguments fill by name into unassigned
// slots, and any slot still unassigned is filled from its default if it
// has one, else binding fails.
func bindArgs(fn *Function, args []arg) (map[string]Value, bool) {
	bound := make(map[string]Value, len(fn.Params))
	assigned := make([]bool, len(fn.Params))
	pos := 0
	for _, a := range args {
		if a.Name != "" {
			continue
		}
		if pos >= len(fn.Params) {
			return nil, false
		}
		bound[fn.Params[pos]] = a.Val
		assigned[pos] = true
		pos++
	}
	for _, a := range args {
		if a.Name == "" {
			continue
		}
		idx := paramIndex(fn.Params, a.Name)
		if idx < 0 || assigned[idx] {
			return nil, false
		}
		bound[a.Name] = a.Val
		assigned[idx] = true
	}
	for i, ok := range assigned {
		if ok {
			continue
		}
		if i < fn.Required {
			return nil, false
		}
		bound[fn.Params[i]] = fn.Defaults[i-fn.Required]
	}
	return bound, true
}

func paramIndex(params []string, name string) int {
	for i, p := range params {
		if p == name {
			return i
		}
	}
	return -1
}
