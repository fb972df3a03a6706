package expr

import (
	"errors"
	"fmt"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
	"github.com/randalmurphal/dfs/pkg/dfs/registry"
)

// Defaults applied by New.
const (
	DefaultMaxExpressionLength = 4096
	DefaultMaxRangeLength      = 1_000_000
	DefaultParseCacheSize      = 256
)

// Evaluator parses and evaluates expressions against a Library.
// An Evaluator is safe for concurrent use.
type Evaluator struct {
	lib         *Library
	cache       *registry.Registry[Node]
	maxExprLen  int
	maxRangeLen int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLibrary sets the functions and constants visible to expressions.
func WithLibrary(lib *Library) Option {
	return func(e *Evaluator) {
		if lib != nil {
			e.lib = lib
		}
	}
}

// WithParseCache keeps up to size parsed expressions keyed by source.
// A size <= 0 disables caching.
func WithParseCache(size int) Option {
	return func(e *Evaluator) {
		if size <= 0 {
			e.cache = nil
			return
		}
		e.cache = registry.NewBounded[Node](size)
	}
}

// WithMaxExpressionLength rejects sources longer than n bytes.
// A value <= 0 removes the limit.
func WithMaxExpressionLength(n int) Option {
	return func(e *Evaluator) {
		e.maxExprLen = n
	}
}

// WithMaxRangeLength caps the number of items a range may produce.
// A value <= 0 removes the limit.
func WithMaxRangeLength(n int) Option {
	return func(e *Evaluator) {
		e.maxRangeLen = n
	}
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		lib:         NewLibrary(),
		cache:       registry.NewBounded[Node](DefaultParseCacheSize),
		maxExprLen:  DefaultMaxExpressionLength,
		maxRangeLen: DefaultMaxRangeLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Library returns the evaluator's function table.
func (e *Evaluator) Library() *Library { return e.lib }

// Eval is a convenience function that evaluates src with an evaluator
// that has no functions or constants.
func Eval(src string, vars map[string]Value) (Value, error) {
	return New().Evaluate(src, vars)
}

// Compile parses src, reusing a cached tree when one exists.
func (e *Evaluator) Compile(src string) (Node, error) {
	if e.maxExprLen > 0 && len(src) > e.maxExprLen {
		return nil, dfserrors.Eval(dfserrors.NoPos, dfserrors.ErrLimitExceeded,
			"expression is %d bytes, limit is %d", len(src), e.maxExprLen).WithSource(src)
	}
	if e.cache == nil {
		return Parse(src)
	}
	return e.cache.GetOrCreateErr(src, func() (Node, error) {
		return Parse(src)
	})
}

// Evaluate parses src and evaluates it against vars.
// vars holds the root bindings, typically ctx and sys.
func (e *Evaluator) Evaluate(src string, vars map[string]Value) (Value, error) {
	n, err := e.Compile(src)
	if err != nil {
		return Null(), err
	}
	v, err := e.EvaluateNode(n, vars)
	if err != nil {
		var dfsErr *dfserrors.Error
		if errors.As(err, &dfsErr) {
			dfsErr.WithSource(src)
		}
		return Null(), err
	}
	return v, nil
}

// EvaluateNode evaluates an already parsed tree against vars.
func (e *Evaluator) EvaluateNode(n Node, vars map[string]Value) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = Null()
			err = dfserrors.Eval(n.Pos(), dfserrors.ErrInternal, "panic during evaluation: %v", r)
		}
	}()
	s := &state{ev: e, vars: vars}
	return s.eval(n)
}

// state is the per-call evaluation environment.
type state struct {
	ev   *Evaluator
	vars map[string]Value
}

func (s *state) eval(n Node) (Value, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *Identifier:
		return s.resolve(n)
	case *MemberAccess:
		return s.member(n)
	case *ArrayLiteral:
		items := make([]Value, 0, len(n.Elements))
		for _, el := range n.Elements {
			v, err := s.eval(el)
			if err != nil {
				return Null(), err
			}
			items = append(items, v)
		}
		return Value{kind: KindArray, arr: items}, nil
	case *Range:
		return s.rangeOf(n)
	case *UnaryOp:
		operand, err := s.eval(n.Operand)
		if err != nil {
			return Null(), err
		}
		return unary(n.Op, operand, n.At)
	case *BinaryOp:
		return s.binary(n)
	case *Call:
		return s.call(n)
	default:
		return Null(), dfserrors.Eval(dfserrors.NoPos, dfserrors.ErrInternal, "unsupported node %T", n)
	}
}

// resolve looks an identifier up in the root bindings, then the constants.
func (s *state) resolve(n *Identifier) (Value, error) {
	if v, ok := s.vars[n.Name]; ok {
		return v, nil
	}
	if v, ok := s.ev.lib.Const(n.Name); ok {
		return v, nil
	}
	return Null(), dfserrors.Eval(n.At, dfserrors.ErrUnresolved, "unknown identifier %q", n.Name)
}

// member resolves base.field. Missing fields, and fields of null, are null.
func (s *state) member(n *MemberAccess) (Value, error) {
	base, err := s.eval(n.Base)
	if err != nil {
		return Null(), err
	}
	switch base.Kind() {
	case KindNull:
		return Null(), nil
	case KindObject:
		v, _ := base.Field(n.Field)
		return v, nil
	default:
		return Null(), dfserrors.Eval(n.At, dfserrors.ErrTypeMismatch,
			"cannot access field %q on %s", n.Field, base.Kind())
	}
}

func (s *state) rangeOf(n *Range) (Value, error) {
	start, err := s.eval(n.Start)
	if err != nil {
		return Null(), err
	}
	end, err := s.eval(n.End)
	if err != nil {
		return Null(), err
	}
	a, okA := start.AsInt()
	b, okB := end.AsInt()
	if !okA || !okB {
		return Null(), dfserrors.Eval(n.At, dfserrors.ErrTypeMismatch,
			"range bounds must be integers, got %s..%s", start.Kind(), end.Kind())
	}
	if b <= a {
		return Array(), nil
	}
	// Unsigned subtraction stays exact when b-a overflows int64.
	size := uint64(b) - uint64(a)
	if s.ev.maxRangeLen > 0 && size > uint64(s.ev.maxRangeLen) {
		return Null(), dfserrors.Eval(n.At, dfserrors.ErrLimitExceeded,
			"range of %d items exceeds limit of %d", size, s.ev.maxRangeLen)
	}
	items := make([]Value, 0, size)
	for i := a; i < b; i++ {
		items = append(items, Int(i))
	}
	return Value{kind: KindArray, arr: items}, nil
}

func (s *state) binary(n *BinaryOp) (Value, error) {
	left, err := s.eval(n.Left)
	if err != nil {
		return Null(), err
	}

	switch n.Op {
	case "&&", "||":
		l, ok := left.AsBool()
		if !ok {
			return Null(), operandError(n.Op, n.At, left.Kind(), "boolean")
		}
		if (n.Op == "&&" && !l) || (n.Op == "||" && l) {
			return Bool(l), nil
		}
		right, err := s.eval(n.Right)
		if err != nil {
			return Null(), err
		}
		r, ok := right.AsBool()
		if !ok {
			return Null(), operandError(n.Op, n.At, right.Kind(), "boolean")
		}
		return Bool(r), nil
	}

	right, err := s.eval(n.Right)
	if err != nil {
		return Null(), err
	}
	return binary(n.Op, left, right, n.At)
}

func (s *state) call(n *Call) (Value, error) {
	fn, ok := s.ev.lib.Func(n.Name)
	if !ok {
		return Null(), dfserrors.Eval(n.At, dfserrors.ErrUnknownFunction, "unknown function %q", n.Name)
	}

	args := make([]Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := s.eval(a)
		if err != nil {
			return Null(), err
		}
		args = append(args, v)
	}

	v, err := fn(args)
	if err == nil {
		return v, nil
	}
	var dfsErr *dfserrors.Error
	if errors.As(err, &dfsErr) {
		if dfsErr.Pos < 0 {
			dfsErr.Pos = n.At
		}
		return Null(), err
	}
	return Null(), &dfserrors.Error{
		Kind:    dfserrors.KindEval,
		Pos:     n.At,
		Message: fmt.Sprintf("%s: %v", n.Name, err),
		Err:     err,
	}
}
