package builtins

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/randalmurphal/dfs/pkg/dfs/expr"
)

// ToInt converts v the way int() does. It never fails.
func ToInt(v expr.Value) int64 {
	switch v.Kind() {
	case expr.KindInt:
		i, _ := v.AsInt()
		return i
	case expr.KindFloat:
		f, _ := v.AsFloat()
		return saturate(f)
	case expr.KindBool:
		if b, _ := v.AsBool(); b {
			return 1
		}
		return 0
	case expr.KindString:
		s, _ := v.AsString()
		return Atoi(s)
	default:
		return 0
	}
}

// ToFloat converts v the way float() does. It never fails; inputs with
// no numeric reading become NaN.
func ToFloat(v expr.Value) float64 {
	switch v.Kind() {
	case expr.KindInt, expr.KindFloat:
		f, _ := v.Number()
		return f
	case expr.KindBool:
		if b, _ := v.AsBool(); b {
			return 1
		}
		return 0
	case expr.KindString:
		s, _ := v.AsString()
		return parseFloat(s)
	default:
		return math.NaN()
	}
}

// parseFloat is a strict decimal parse. Overflow saturates to ±Inf.
func parseFloat(s string) float64 {
	if s == "" || strings.ContainsAny(s, "xX_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

// ToBool converts v the way bool() does.
func ToBool(v expr.Value) bool {
	return v.Truthy()
}

// ToStr converts v the way str() does.
func ToStr(v expr.Value) string {
	return v.String()
}

func castInt(args []expr.Value) (expr.Value, error) {
	if len(args) == 0 {
		return expr.Int(0), nil
	}
	return expr.Int(ToInt(args[0])), nil
}

func castFloat(args []expr.Value) (expr.Value, error) {
	if len(args) == 0 {
		return expr.Float(math.NaN()), nil
	}
	return expr.Float(ToFloat(args[0])), nil
}

func castBool(args []expr.Value) (expr.Value, error) {
	if len(args) == 0 {
		return expr.Bool(false), nil
	}
	return expr.Bool(ToBool(args[0])), nil
}

func castStr(args []expr.Value) (expr.Value, error) {
	if len(args) == 0 {
		return expr.String(""), nil
	}
	return expr.String(ToStr(args[0])), nil
}
