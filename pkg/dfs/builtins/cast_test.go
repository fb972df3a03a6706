package builtins

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/dfs/pkg/dfs/expr"
)

func testVars() map[string]expr.Value {
	return map[string]expr.Value{
		"ctx": expr.FromStrings(map[string]string{"some_var": "42", "something": "true"}),
		"sys": expr.FromStrings(map[string]string{"timezone": "US/Eastern"}),
	}
}

func eval(t *testing.T, src string, opts ...Option) expr.Value {
	t.Helper()
	ev := expr.New(expr.WithLibrary(NewLibrary(opts...)))
	v, err := ev.Evaluate(src, testVars())
	require.NoError(t, err, src)
	return v
}

func TestAtoi(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"42", 42},
		{"  42  ", 42},
		{"42 apples", 42},
		{"-42", -42},
		{"+7", 7},
		{"42.42", 42},
		{"42.9", 42},
		{"-7px", -7},
		{"12abc34", 12},
		{"3e5", 3},
		{".5", 1},
		{"-.5", 0},
		{"9223372036854775807", math.MaxInt64},
		{"9223372036854775808", math.MaxInt64},
		{"99999999999999999999999", math.MaxInt64},
		{"-9223372036854775808", math.MinInt64},
		{"-99999999999999999999999", math.MinInt64},
		{"not a num", 0},
		{"", 0},
		{"   ", 0},
		{"-", 0},
		{".", 0},
		{"$100", 0},
		{"١٢", 0},
	}
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, Atoi(tt.in))
		})
	}
}

func TestIntCast(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"int()", 0},
		{"int(42)", 42},
		{"int(42.9)", 42},
		{"int(-42.9)", -42},
		{"int(true)", 1},
		{"int(false)", 0},
		{"int('42.42')", 42},
		{"int('not a num')", 0},
		{"int('')", 0},
		{"int(ctx.some_var)", 42},
		{"int(ctx.missing)", 0},
		{"int(array(1))", 0},
		{"int(ctx)", 0},
		{"int(NAN)", 0},
		{"int(INFINITY)", math.MaxInt64},
		{"int(NEG_INFINITY)", math.MinInt64},
		{"int(MAX_FLOAT)", math.MaxInt64},
		{"int(1, 'extra', 'args')", 1},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := eval(t, tt.src)
			assert.True(t, expr.Int(tt.want).Equal(got), "got %s (%s)", got, got.Kind())
		})
	}
}

func TestFloatCast(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"float(42)", 42},
		{"float(4.5)", 4.5},
		{"float(true)", 1},
		{"float(false)", 0},
		{"float('4.25')", 4.25},
		{"float('-1e3')", -1000},
		{"float(' 4.25')", math.NaN()},
		{"float('1e400')", math.Inf(1)},
		{"float('-1e400')", math.Inf(-1)},
		{"float('0x10')", math.NaN()},
		{"float()", math.NaN()},
		{"float('')", math.NaN()},
		{"float('not a num')", math.NaN()},
		{"float(ctx)", math.NaN()},
		{"float(array())", math.NaN()},
		{"float(ctx.missing)", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := eval(t, tt.src)
			f, ok := got.AsFloat()
			require.True(t, ok, "got %s", got.Kind())
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(f), "want NaN, got %v", f)
				return
			}
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestBoolCast(t *testing.T) {
	falsy := []string{
		"bool()", "bool(0)", "bool(0.0)", "bool(false)", "bool('')",
		"bool(array())", "bool(ctx.missing)", "bool(0..0)",
	}
	for _, src := range falsy {
		assert.True(t, expr.Bool(false).Equal(eval(t, src)), src)
	}

	truthy := []string{
		"bool(1)", "bool(-0.5)", "bool(true)", "bool('false')", "bool('0')",
		"bool(array(0))", "bool(ctx)", "bool(sys)", "bool(ctx.something)", "bool(NAN)",
	}
	for _, src := range truthy {
		assert.True(t, expr.Bool(true).Equal(eval(t, src)), src)
	}
}

func TestBoolCastEmptyMaps(t *testing.T) {
	ev := expr.New(expr.WithLibrary(NewLibrary()))
	vars := map[string]expr.Value{
		"ctx": expr.FromStrings(nil),
		"sys": expr.FromStrings(map[string]string{}),
	}
	for _, src := range []string{"bool(ctx)", "bool(sys)"} {
		v, err := ev.Evaluate(src, vars)
		require.NoError(t, err)
		assert.True(t, expr.Bool(false).Equal(v), src)
	}
}

func TestStrCast(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"str()", ""},
		{"str(42)", "42"},
		{"str(-42)", "-42"},
		{"str(4.5)", "4.5"},
		{"str(42.0)", "42"},
		{"str(true)", "true"},
		{"str('x')", "x"},
		{"str(ctx.missing)", "null"},
		{"str(array(42, 42))", "[42,42]"},
		{"str(array())", "[]"},
		{"str(0..3)", "[0,1,2]"},
		{"str(ctx)", `{"some_var":"42","something":"true"}`},
		{"str(NAN)", "NaN"},
		{"str(INFINITY)", "inf"},
		{"str(MIN_INT)", "-9223372036854775808"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.True(t, expr.String(tt.want).Equal(eval(t, tt.src)), "got %s", eval(t, tt.src))
		})
	}
}

func TestIntegerTextRoundTrip(t *testing.T) {
	ev := expr.New(expr.WithLibrary(NewLibrary()))
	for _, n := range []int64{0, 1, -1, 42, -42, 1 << 40, math.MaxInt64, math.MinInt64} {
		text := strconv.FormatInt(n, 10)

		got, err := ev.Evaluate("str("+text+")", nil)
		require.NoError(t, err, text)
		assert.True(t, expr.String(text).Equal(got), text)

		got, err = ev.Evaluate("int(str("+text+"))", nil)
		require.NoError(t, err, text)
		assert.True(t, expr.Int(n).Equal(got), text)
	}
}
