package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
)

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize(`ctx.a >= 1.5 && !f('x', "y") || 0..3`)
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		TokenIdent, TokenDot, TokenIdent, TokenGTE, TokenFloat, TokenAnd,
		TokenBang, TokenIdent, TokenLParen, TokenString, TokenComma, TokenString, TokenRParen,
		TokenOr, TokenInt, TokenRange, TokenInt, TokenEOF,
	}, types)

	assert.Equal(t, "x", tokens[9].Literal)
	assert.Equal(t, 4, tokens[2].Pos)
	assert.Equal(t, 6, tokens[3].Pos)
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		pos  int
	}{
		{"unterminated double", `"abc`, 0},
		{"unterminated single", `1 + 'abc`, 4},
		{"stray character", `1 # 2`, 2},
		{"lone ampersand", `a & b`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			require.Error(t, err)
			var dfsErr *dfserrors.Error
			require.True(t, errors.As(err, &dfsErr))
			assert.Equal(t, dfserrors.KindParse, dfsErr.Kind)
			assert.Equal(t, tt.pos, dfsErr.Pos)
		})
	}
}

func TestParseStructure(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a || b && c", "(a || (b && c))"},
		{"a == b < c", "(a == (b < c))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"0..2 + 3", "(0..(2 + 3))"},
		{"-x.y", "(-x.y)"},
		{"!!true", "(!(!true))"},
		{"ctx.some_var", "ctx.some_var"},
		{"a.b.c", "a.b.c"},
		{"array()", "array()"},
		{"array(42, 42)", "array(42, 42)"},
		{"f()", "f()"},
		{"is_match(ctx.x, '^[0-9]+$')", `is_match(ctx.x, "^[0-9]+$")`},
		{"2.50", "2.5"},
		{"'say \"hi\"'", `'say "hi"'`},
		{"-9223372036854775808", "-9223372036854775808"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestParseNodeTypes(t *testing.T) {
	n := MustParse("array(1, 2.0, 'x', true)")
	arr, ok := n.(*ArrayLiteral)
	require.True(t, ok)
	require.Len(t, arr.Elements, 4)
	assert.True(t, arr.Elements[0].(*Literal).Value.Equal(Int(1)))
	assert.True(t, arr.Elements[1].(*Literal).Value.Equal(Float(2)))
	assert.True(t, arr.Elements[2].(*Literal).Value.Equal(String("x")))
	assert.True(t, arr.Elements[3].(*Literal).Value.Equal(Bool(true)))

	r, ok := MustParse("0..5").(*Range)
	require.True(t, ok)
	assert.Equal(t, 1, r.Pos())

	m, ok := MustParse("ctx.name").(*MemberAccess)
	require.True(t, ok)
	assert.Equal(t, "name", m.Field)
	assert.Equal(t, "ctx", m.Base.(*Identifier).Name)

	lit, ok := MustParse("-9223372036854775808").(*Literal)
	require.True(t, ok)
	assert.True(t, lit.Value.Equal(Int(math.MinInt64)))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		pos     int
		message string
	}{
		{"empty", "", 0, "empty expression"},
		{"blank", "   ", 3, "empty expression"},
		{"dangling operator", "1 +", 3, "unexpected end of input"},
		{"missing close paren", "(1 + 2", 6, "unbalanced parentheses"},
		{"extra close paren", "1 + 2)", 5, "unbalanced parentheses"},
		{"trailing input", "1 2", 2, "after expression"},
		{"unterminated call", "int(1", 5, "unbalanced parentheses"},
		{"bad separator", "int(1 2)", 6, "argument list"},
		{"field must be identifier", "ctx.1", 4, "expected identifier"},
		{"integer overflow", "9223372036854775808", 0, "out of range"},
		{"call on member", "ctx.f(1)", 5, "after expression"},
		{"leading infix", "* 2", 0, "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.src)
			assert.Nil(t, n, "no partial tree on error")
			require.Error(t, err)
			assert.ErrorIs(t, err, dfserrors.ErrSyntax)

			var dfsErr *dfserrors.Error
			require.True(t, errors.As(err, &dfsErr))
			assert.Equal(t, tt.pos, dfsErr.Pos)
			assert.Equal(t, tt.src, dfsErr.Source)
			assert.Contains(t, dfsErr.Message, tt.message)
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("(") })
}

func TestWalk(t *testing.T) {
	n := MustParse("is_match(str(ctx.x), 'a') && day() > 3")

	var calls []string
	Walk(n, func(n Node) bool {
		if c, ok := n.(*Call); ok {
			calls = append(calls, c.Name)
		}
		return true
	})
	assert.Equal(t, []string{"is_match", "str", "day"}, calls)

	visited := 0
	Walk(n, func(Node) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}
