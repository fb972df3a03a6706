package expr

import (
	"github.com/randalmurphal/dfs/pkg/dfs/registry"
)

// Function is a builtin callable from expressions.
//
// Functions receive already evaluated arguments and must not retain or
// mutate them. Errors should be *errors.Error values of kind eval; the
// evaluator attaches the call position when the error has none.
type Function func(args []Value) (Value, error)

// Library is the table of functions and constants visible to expressions.
// It is built once and shared by reference between evaluations.
type Library struct {
	funcs  *registry.Registry[Function]
	consts *registry.Registry[Value]
}

// NewLibrary creates an empty Library.
func NewLibrary() *Library {
	return &Library{
		funcs:  registry.New[Function](),
		consts: registry.New[Value](),
	}
}

// Define registers fn under name, replacing any previous definition.
func (l *Library) Define(name string, fn Function) *Library {
	l.funcs.Register(name, fn)
	return l
}

// DefineConst registers a constant resolved from a bare identifier.
func (l *Library) DefineConst(name string, v Value) *Library {
	l.consts.Register(name, v)
	return l
}

// Func returns the function registered under name.
func (l *Library) Func(name string) (Function, bool) {
	return l.funcs.Get(name)
}

// Const returns the constant registered under name.
func (l *Library) Const(name string) (Value, bool) {
	return l.consts.Get(name)
}

// Functions returns the registered function names in ascending order.
func (l *Library) Functions() []string { return l.funcs.Names() }

// Constants returns the registered constant names in ascending order.
func (l *Library) Constants() []string { return l.consts.Names() }

// Clone returns an independent copy that can be extended without
// affecting l.
func (l *Library) Clone() *Library {
	return &Library{
		funcs:  l.funcs.Clone(),
		consts: l.consts.Clone(),
	}
}
