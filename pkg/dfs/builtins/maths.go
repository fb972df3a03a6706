package builtins

import (
	"math"

	"github.com/randalmurphal/dfs/pkg/dfs/expr"
)

// Constants returns the numeric constants of the maths group.
func Constants() map[string]expr.Value {
	return map[string]expr.Value{
		"MIN_INT":        expr.Int(math.MinInt64),
		"MAX_INT":        expr.Int(math.MaxInt64),
		"MAX_FLOAT":      expr.Float(math.MaxFloat64),
		"MIN_FLOAT":      expr.Float(-math.MaxFloat64),
		"NAN":            expr.Float(math.NaN()),
		"INFINITY":       expr.Float(math.Inf(1)),
		"NEG_INFINITY":   expr.Float(math.Inf(-1)),
		"E":              expr.Float(math.E),
		"PI":             expr.Float(math.Pi),
		"TAU":            expr.Float(2 * math.Pi),
		"SQRT_2":         expr.Float(math.Sqrt2),
		"LN_2":           expr.Float(math.Ln2),
		"LN_10":          expr.Float(math.Ln10),
		"LOG2_E":         expr.Float(math.Log2E),
		"LOG2_10":        expr.Float(math.Log2(10)),
		"LOG10_E":        expr.Float(math.Log10E),
		"LOG10_2":        expr.Float(math.Log10(2)),
		"FRAC_1_PI":      expr.Float(1 / math.Pi),
		"FRAC_2_PI":      expr.Float(2 / math.Pi),
		"FRAC_PI_2":      expr.Float(math.Pi / 2),
		"FRAC_PI_3":      expr.Float(math.Pi / 3),
		"FRAC_PI_4":      expr.Float(math.Pi / 4),
		"FRAC_PI_6":      expr.Float(math.Pi / 6),
		"FRAC_PI_8":      expr.Float(math.Pi / 8),
		"FRAC_1_SQRT_2":  expr.Float(1 / math.Sqrt2),
		"FRAC_2_SQRT_PI": expr.Float(2 / math.SqrtPi),
	}
}

// numbers flattens the arguments of a variadic numeric helper. A single
// array argument is expanded; non-numeric items are skipped.
func numbers(args []expr.Value) []expr.Value {
	if len(args) == 1 {
		if items, ok := args[0].AsArray(); ok {
			args = items
		}
	}
	out := make([]expr.Value, 0, len(args))
	for _, a := range args {
		if a.IsNumber() {
			out = append(out, a)
		}
	}
	return out
}

func allInts(vals []expr.Value) bool {
	for _, v := range vals {
		if v.Kind() != expr.KindInt {
			return false
		}
	}
	return true
}

func abs(args []expr.Value) (expr.Value, error) {
	if len(args) == 0 {
		return expr.Float(math.NaN()), nil
	}
	switch args[0].Kind() {
	case expr.KindInt:
		i, _ := args[0].AsInt()
		switch {
		case i == math.MinInt64:
			return expr.Int(math.MaxInt64), nil
		case i < 0:
			return expr.Int(-i), nil
		}
		return expr.Int(i), nil
	case expr.KindFloat:
		f, _ := args[0].AsFloat()
		return expr.Float(math.Abs(f)), nil
	default:
		return expr.Float(math.NaN()), nil
	}
}

// isNaN reports whether float() of the argument is NaN.
func isNaN(args []expr.Value) (expr.Value, error) {
	if len(args) == 0 {
		return expr.Bool(true), nil
	}
	return expr.Bool(math.IsNaN(ToFloat(args[0]))), nil
}

// extreme builds min (wantLess) or max. Integers stay integers; any float
// promotes the result and a NaN item makes it NaN.
func extreme(wantLess bool) expr.Function {
	better := func(a, b float64) bool {
		if wantLess {
			return a < b
		}
		return a > b
	}
	return func(args []expr.Value) (expr.Value, error) {
		vals := numbers(args)
		if len(vals) == 0 {
			return expr.Float(math.NaN()), nil
		}
		if allInts(vals) {
			best, _ := vals[0].AsInt()
			for _, v := range vals[1:] {
				i, _ := v.AsInt()
				if (wantLess && i < best) || (!wantLess && i > best) {
					best = i
				}
			}
			return expr.Int(best), nil
		}
		best, _ := vals[0].Number()
		for _, v := range vals {
			f, _ := v.Number()
			if math.IsNaN(f) {
				return expr.Float(math.NaN()), nil
			}
			if better(f, best) {
				best = f
			}
		}
		return expr.Float(best), nil
	}
}

func sum(args []expr.Value) (expr.Value, error) {
	vals := numbers(args)
	if allInts(vals) {
		var total int64
		for _, v := range vals {
			i, _ := v.AsInt()
			total += i
		}
		return expr.Int(total), nil
	}
	var total float64
	for _, v := range vals {
		f, _ := v.Number()
		total += f
	}
	return expr.Float(total), nil
}
