package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
	"github.com/randalmurphal/dfs/pkg/dfs/expr"
)

func TestGroups(t *testing.T) {
	assert.True(t, AllGroups().Any())
	assert.False(t, Groups{}.Any())
	assert.True(t, Groups{Regex: true}.Any())
}

func TestRegisterAllGroups(t *testing.T) {
	lib := NewLibrary()
	assert.Equal(t, []string{
		"abs", "bool", "day", "float", "includes", "int", "is_empty", "is_match",
		"is_nan", "is_weekday", "is_weekend", "len", "max", "min", "month", "str",
		"sum", "time", "weekday", "year",
	}, lib.Functions())
	assert.Contains(t, lib.Constants(), "MAX_INT")
}

func TestDisabledGroups(t *testing.T) {
	tests := []struct {
		name   string
		groups Groups
		src    string
		cause  error
	}{
		{"cast off", Groups{Maths: true}, "int('1')", dfserrors.ErrUnknownFunction},
		{"maths off", Groups{Cast: true}, "MAX_INT", dfserrors.ErrUnresolved},
		{"regex off", Groups{Cast: true}, "is_match('a', 'a')", dfserrors.ErrUnknownFunction},
		{"datetime off", Groups{Cast: true}, "day()", dfserrors.ErrUnknownFunction},
		{"collections off", Groups{Cast: true}, "len(ctx)", dfserrors.ErrUnknownFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := expr.New(expr.WithLibrary(NewLibrary(WithGroups(tt.groups))))
			_, err := ev.Evaluate(tt.src, testVars())
			assert.ErrorIs(t, err, tt.cause)
		})
	}

	empty := NewLibrary(WithGroups(Groups{}))
	assert.Empty(t, empty.Functions())
	assert.Empty(t, empty.Constants())
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.Contains(t, Default().Functions(), "is_match")
}

func TestRegisterKeepsExistingEntries(t *testing.T) {
	lib := expr.NewLibrary().Define("custom", func([]expr.Value) (expr.Value, error) {
		return expr.String("ok"), nil
	})
	Register(lib, WithGroups(Groups{Cast: true}))

	ev := expr.New(expr.WithLibrary(lib))
	v, err := ev.Evaluate("custom() == str('ok')", nil)
	assert.NoError(t, err)
	assert.True(t, expr.Bool(true).Equal(v))
}
