package eval

import "github.com/please-build/pyrun/internal/ast"

// A Function is a registered user function: its parameter names, the
// number of leading required parameters, evaluated default values aligned
// to the trailing parameters, and its unevaluated body.
type Function struct {
	Name     string
	Params   []string
	Required int
	Defaults []Value // Defaults[i] binds to Params[Required+i]
	Body     []*ast.Statement
}

// Env holds the interpreter's mutable state: the global table, the
// function table, and the parameter frame stack. It is an explicit struct
// rather than package-level globals so that multiple interpreters can
// coexist, per the spec's environment design notes.
type Env struct {
	Globals   map[string]Value
	Functions map[string]*Function
	frames    []map[string]Value
}

// NewEnv returns a fresh, empty environment.
func NewEnv() *Env {
	return &Env{
		Globals:   map[string]Value{},
		Functions: map[string]*Function{},
	}
}

// PushFrame installs a new top parameter frame for the duration of a call.
func (e *Env) PushFrame(frame map[string]Value) {
	e.frames = append(e.frames, frame)
}

// PopFrame removes the top parameter frame on call exit.
func (e *Env) PopFrame() {
	e.frames = e.frames[:len(e.frames)-1]
}

func (e *Env) topFrame() (map[string]Value, bool) {
	if len(e.frames) == 0 {
		return nil, false
	}
	return e.frames[len(e.frames)-1], true
}

// LookupVar resolves a name for a read: the top parameter frame, then the
// global table, else None. A name that only exists in the function table
// has no representable Value (the language has no first-class function
// tag), so reading a bare function name outside a call position yields
// None, consistent with functions not being first-class.
func (e *Env) LookupVar(name string) Value {
	if frame, ok := e.topFrame(); ok {
		if v, ok := frame[name]; ok {
			return v
		}
	}
	if v, ok := e.Globals[name]; ok {
		return v
	}
	return None
}

// SetVar implements the write rule: update the top frame slot if the name
// is already bound there, otherwise always write to globals. This never
// creates a new frame entry, which is what makes ordinary assignment
// inside a function body default to global scope.
func (e *Env) SetVar(name string, v Value) {
	if frame, ok := e.topFrame(); ok {
		if _, ok := frame[name]; ok {
			frame[name] = v
			return
		}
	}
	e.Globals[name] = v
}
