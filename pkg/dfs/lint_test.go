package dfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint(t *testing.T) {
	e := newTestEngine(t)

	t.Run("clean spec", func(t *testing.T) {
		assert.Empty(t, e.Lint(Default()))
	})

	t.Run("findings", func(t *testing.T) {
		s, err := New(
			[]string{"a", "b", "c"},
			[]Dialog{
				NewDialog("a",
					Case{Condition: "1 +", Reply: "x"},
					Case{Condition: "frob(ctx.some_var) && frob(1)", Reply: "x"},
					Case{Condition: "ctx.typo == PI && mystery", Reply: "Hi ${ctx.name} $sys.timezone"},
				),
				NewDialog("b"),
			},
			map[string]string{"some_var": "1"},
			map[string]string{"timezone": "UTC"},
		)
		require.NoError(t, err)

		issues := e.Lint(s)
		msgs := make([]string, len(issues))
		for i, is := range issues {
			msgs[i] = is.String()
		}

		assert.Equal(t, []string{
			"warning [c]: intent has no dialog",
			"error [a case 0]: parse error at column 4: unexpected end of input",
			"error [a case 1]: unknown function frob at column 1",
			"warning [a case 2]: ctx.typo is not set and evaluates to null",
			"error [a case 2]: unresolved identifier mystery at column 19",
			"warning [a case 2]: reply references ctx.name which is not set",
			"warning [b]: dialog has no cases",
		}, msgs)
	})

	t.Run("nil spec", func(t *testing.T) {
		assert.Nil(t, e.Lint(nil))
	})
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
}
