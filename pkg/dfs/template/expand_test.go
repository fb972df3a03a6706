package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer string

func (s stringer) String() string { return "<" + string(s) + ">" }

func testVars() map[string]any {
	return map[string]any{
		"ctx": map[string]string{"name": "Ada", "some_var": "42"},
		"sys": map[string]string{"timezone": "US/Eastern"},
		"nested": map[string]any{
			"deep": map[string]any{"value": 7},
		},
		"count": 3,
		"flag":  true,
		"value": stringer("v"),
		"nil":   nil,
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"brace path", "Hi ${ctx.name}", "Hi Ada"},
		{"dollar path", "Hi $ctx.name!", "Hi Ada!"},
		{"trailing dot ends dollar path", "Zone is $sys.timezone.", "Zone is US/Eastern."},
		{"adjacent", "${ctx.name}${ctx.some_var}", "Ada42"},
		{"deep nesting", "${nested.deep.value}", "7"},
		{"int value", "count: $count", "count: 3"},
		{"bool value", "flag: ${flag}", "flag: true"},
		{"stringer", "${value}", "<v>"},
		{"nil renders empty", "[${nil}]", "[]"},
		{"whole map", "${ctx}", "name=Ada,some_var=42"},
		{"missing kept", "Hi ${ctx.nope}", "Hi ${ctx.nope}"},
		{"path through scalar", "${count.x}", "${count.x}"},
		{"no references", "plain text", "plain text"},
		{"lone dollar", "costs $5", "costs $5"},
		{"empty", "", ""},
		{"unclosed brace", "${ctx.name", "${ctx.name"},
		{"values are not re-expanded", "${a}", "$ctx.name"},
	}

	vars := testVars()
	vars["a"] = "$ctx.name"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Expand(tt.input, vars))
		})
	}
}

func TestExpand_MissingActions(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingEmpty))
		got, err := exp.Expand("Hi ${ctx.nope}!", testVars())
		require.NoError(t, err)
		assert.Equal(t, "Hi !", got)
	})

	t.Run("error lists each name once", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		_, err := exp.Expand("${a} $b ${a}", testVars())
		require.Error(t, err)

		var undef *UndefinedVariableError
		require.ErrorAs(t, err, &undef)
		assert.Equal(t, []string{"a", "b"}, undef.Names)
		assert.Equal(t, "undefined variables: a, b", err.Error())
	})

	t.Run("single name message", func(t *testing.T) {
		err := &UndefinedVariableError{Names: []string{"ctx.x"}}
		assert.Equal(t, "undefined variable: ctx.x", err.Error())
	})
}

func TestExpand_DisabledStyles(t *testing.T) {
	vars := testVars()

	noBrace := NewExpander(WithBraceStyle(false))
	got, err := noBrace.Expand("${ctx.name} $ctx.name", vars)
	require.NoError(t, err)
	assert.Equal(t, "${ctx.name} Ada", got)

	noDollar := NewExpander(WithDollarStyle(false))
	got, err = noDollar.Expand("${ctx.name} $ctx.name", vars)
	require.NoError(t, err)
	assert.Equal(t, "Ada $ctx.name", got)
}

func TestMustExpand(t *testing.T) {
	exp := NewExpander(WithMissingAction(MissingError))
	assert.Equal(t, "Ada", exp.MustExpand("${ctx.name}", testVars()))
	assert.Panics(t, func() { exp.MustExpand("${ctx.nope}", testVars()) })
}

func TestLookup(t *testing.T) {
	vars := testVars()

	v, ok := Lookup(vars, "ctx.some_var")
	require.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = Lookup(vars, "ctx.some_var.more")
	assert.False(t, ok)

	_, ok = Lookup(nil, "ctx")
	assert.False(t, ok)
}

func TestReferences(t *testing.T) {
	got := References("Hi ${ctx.name}, $sys.timezone and ${ctx.name} again. $5")
	assert.Equal(t, []string{"ctx.name", "sys.timezone"}, got)

	assert.Empty(t, References("nothing here"))
	assert.Equal(t, []string{"sys.x"}, NewExpander(WithBraceStyle(false)).References("${ctx.a} $sys.x"))
}
