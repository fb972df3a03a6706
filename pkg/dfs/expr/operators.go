package expr

import (
	"math"
	"strings"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
)

func operandError(op string, pos int, got Kind, want string) error {
	return dfserrors.Eval(pos, dfserrors.ErrTypeMismatch,
		"operator %s expects %s operands, got %s", op, want, got)
}

func mismatch(op string, pos int, l, r Value) error {
	return dfserrors.Eval(pos, dfserrors.ErrTypeMismatch,
		"operator %s cannot be applied to %s and %s", op, l.Kind(), r.Kind())
}

func unary(op string, v Value, pos int) (Value, error) {
	switch op {
	case "-":
		switch v.Kind() {
		case KindInt:
			return Int(subInt(0, v.i)), nil
		case KindFloat:
			return Float(-v.f), nil
		}
		return Null(), operandError(op, pos, v.Kind(), "numeric")
	case "!":
		if b, ok := v.AsBool(); ok {
			return Bool(!b), nil
		}
		return Null(), operandError(op, pos, v.Kind(), "boolean")
	}
	return Null(), dfserrors.Eval(pos, dfserrors.ErrInternal, "unknown unary operator %s", op)
}

func binary(op string, l, r Value, pos int) (Value, error) {
	switch op {
	case "==":
		return Bool(looseEqual(l, r)), nil
	case "!=":
		return Bool(!looseEqual(l, r)), nil
	case "<", "<=", ">", ">=":
		return compare(op, l, r, pos)
	case "+", "-", "*", "/", "%":
		return arithmetic(op, l, r, pos)
	}
	return Null(), dfserrors.Eval(pos, dfserrors.ErrInternal, "unknown binary operator %s", op)
}

// looseEqual is == semantics: numbers compare by value across Int and
// Float, everything else compares structurally, and values of unrelated
// kinds are simply unequal.
func looseEqual(l, r Value) bool {
	if l.IsNumber() && r.IsNumber() {
		if l.kind == KindInt && r.kind == KindInt {
			return l.i == r.i
		}
		lf, _ := l.Number()
		rf, _ := r.Number()
		return lf == rf
	}
	if l.kind != r.kind {
		return false
	}
	switch l.kind {
	case KindArray:
		if len(l.arr) != len(r.arr) {
			return false
		}
		for i := range l.arr {
			if !looseEqual(l.arr[i], r.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(l.obj) != len(r.obj) {
			return false
		}
		for k, lv := range l.obj {
			rv, ok := r.obj[k]
			if !ok || !looseEqual(lv, rv) {
				return false
			}
		}
		return true
	}
	return l.Equal(r)
}

// compare orders two numbers or two strings.
func compare(op string, l, r Value, pos int) (Value, error) {
	var c int
	switch {
	case l.kind == KindInt && r.kind == KindInt:
		c = cmpOrdered(l.i, r.i)
	case l.IsNumber() && r.IsNumber():
		lf, _ := l.Number()
		rf, _ := r.Number()
		if math.IsNaN(lf) || math.IsNaN(rf) {
			return Bool(false), nil
		}
		c = cmpOrdered(lf, rf)
	case l.kind == KindString && r.kind == KindString:
		c = strings.Compare(l.s, r.s)
	default:
		return Null(), mismatch(op, pos, l, r)
	}

	switch op {
	case "<":
		return Bool(c < 0), nil
	case "<=":
		return Bool(c <= 0), nil
	case ">":
		return Bool(c > 0), nil
	default:
		return Bool(c >= 0), nil
	}
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// arithmetic applies a numeric operator. Int op Int stays Int except
// division and remainder by zero, which follow IEEE float semantics.
// Integer results saturate at the int64 extrema, like the int() cast.
func arithmetic(op string, l, r Value, pos int) (Value, error) {
	if !l.IsNumber() || !r.IsNumber() {
		return Null(), mismatch(op, pos, l, r)
	}

	if l.kind == KindInt && r.kind == KindInt {
		a, b := l.i, r.i
		switch op {
		case "+":
			return Int(addInt(a, b)), nil
		case "-":
			return Int(subInt(a, b)), nil
		case "*":
			return Int(mulInt(a, b)), nil
		case "/":
			if b == 0 {
				return Float(float64(a) / float64(b)), nil
			}
			if a == math.MinInt64 && b == -1 {
				return Int(math.MaxInt64), nil
			}
			return Int(a / b), nil
		case "%":
			if b == 0 {
				return Float(math.NaN()), nil
			}
			return Int(a % b), nil
		}
	}

	a, _ := l.Number()
	b, _ := r.Number()
	switch op {
	case "+":
		return Float(a + b), nil
	case "-":
		return Float(a - b), nil
	case "*":
		return Float(a * b), nil
	case "/":
		return Float(a / b), nil
	default:
		return Float(math.Mod(a, b)), nil
	}
}

func addInt(a, b int64) int64 {
	c := a + b
	if (c > a) != (b > 0) {
		if b > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return c
}

func subInt(a, b int64) int64 {
	c := a - b
	if (c < a) != (b > 0) {
		if b > 0 {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return c
}

func mulInt(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	overflow := c/b != a ||
		(a == -1 && b == math.MinInt64) ||
		(b == -1 && a == math.MinInt64)
	if !overflow {
		return c
	}
	if (a < 0) != (b < 0) {
		return math.MinInt64
	}
	return math.MaxInt64
}

// Equivalent reports whether l == r under expression semantics.
func Equivalent(l, r Value) bool {
	return looseEqual(l, r)
}
