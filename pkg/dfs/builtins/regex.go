package builtins

import (
	"regexp"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
	"github.com/randalmurphal/dfs/pkg/dfs/expr"
	"github.com/randalmurphal/dfs/pkg/dfs/registry"
)

// patterns compiles and caches regular expressions for is_match.
// Go's regexp is RE2, so matching is linear in the subject length.
type patterns struct {
	cache  *registry.Registry[*regexp.Regexp]
	maxLen int
}

func newPatterns(cacheSize, maxLen int) *patterns {
	return &patterns{
		cache:  registry.NewBounded[*regexp.Regexp](cacheSize),
		maxLen: maxLen,
	}
}

func (p *patterns) compile(pattern string) (*regexp.Regexp, error) {
	if p.maxLen > 0 && len(pattern) > p.maxLen {
		return nil, dfserrors.Eval(dfserrors.NoPos, dfserrors.ErrLimitExceeded,
			"pattern is %d bytes, limit is %d", len(pattern), p.maxLen)
	}
	return p.cache.GetOrCreateErr(pattern, func() (*regexp.Regexp, error) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, dfserrors.Eval(dfserrors.NoPos, dfserrors.ErrInvalidPattern,
				"invalid pattern %q: %v", pattern, err)
		}
		return re, nil
	})
}

// isMatch reports whether the str() form of the first argument matches
// the second. Fewer than two arguments is simply no match.
func (p *patterns) isMatch(args []expr.Value) (expr.Value, error) {
	if len(args) < 2 {
		return expr.Bool(false), nil
	}
	pattern, ok := args[1].AsString()
	if !ok {
		pattern = ToStr(args[1])
	}
	re, err := p.compile(pattern)
	if err != nil {
		return expr.Null(), err
	}
	return expr.Bool(re.MatchString(ToStr(args[0]))), nil
}
