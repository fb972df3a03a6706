package builtins

import (
	"strings"
	"unicode/utf8"

	"github.com/randalmurphal/dfs/pkg/dfs/expr"
)

// length counts runes of strings and items of arrays and objects.
// Other values have length 0.
func length(args []expr.Value) (expr.Value, error) {
	if len(args) == 0 {
		return expr.Int(0), nil
	}
	if s, ok := args[0].AsString(); ok {
		return expr.Int(int64(utf8.RuneCountInString(s))), nil
	}
	return expr.Int(int64(args[0].Len())), nil
}

func isEmpty(args []expr.Value) (expr.Value, error) {
	if len(args) == 0 {
		return expr.Bool(true), nil
	}
	switch args[0].Kind() {
	case expr.KindNull:
		return expr.Bool(true), nil
	case expr.KindString, expr.KindArray, expr.KindObject:
		return expr.Bool(args[0].Len() == 0), nil
	default:
		return expr.Bool(false), nil
	}
}

// includes reports membership: an equal item of an array, a key of an
// object, or a substring of a string.
func includes(args []expr.Value) (expr.Value, error) {
	if len(args) < 2 {
		return expr.Bool(false), nil
	}
	haystack, needle := args[0], args[1]
	switch haystack.Kind() {
	case expr.KindArray:
		for i := 0; i < haystack.Len(); i++ {
			if expr.Equivalent(haystack.Index(i), needle) {
				return expr.Bool(true), nil
			}
		}
	case expr.KindObject:
		if key, ok := needle.AsString(); ok {
			_, found := haystack.Field(key)
			return expr.Bool(found), nil
		}
	case expr.KindString:
		s, _ := haystack.AsString()
		return expr.Bool(strings.Contains(s, ToStr(needle))), nil
	}
	return expr.Bool(false), nil
}
