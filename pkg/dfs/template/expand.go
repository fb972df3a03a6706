package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const pathExpr = `[\p{L}_][\p{L}\p{N}_]*(?:\.[\p{L}_][\p{L}\p{N}_]*)*`

// refPattern matches ${path} (group 1) or $path (group 2), where path is
// one or more dot-separated identifiers. A trailing dot ends a $path so a
// sentence may finish with one: "balance is $ctx.balance."
var refPattern = regexp.MustCompile(`\$(?:\{(` + pathExpr + `)\}|(` + pathExpr + `))`)

// Expander expands variable references in reply templates.
//
// Create with NewExpander() and configure with Option functions.
// Expander is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
	braceStyle    bool
	dollarStyle   bool
}

// NewExpander creates a new Expander with the given options.
//
// Default configuration:
//   - MissingAction: MissingKeep (keep placeholders as-is)
//   - BraceStyle: enabled (${ctx.name})
//   - DollarStyle: enabled ($ctx.name)
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		missingAction: MissingKeep,
		braceStyle:    true,
		dollarStyle:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lookup resolves a dotted path against vars. Each segment but the last
// must name a nested map[string]any or map[string]string.
func Lookup(vars map[string]any, path string) (any, bool) {
	var cur any = vars
	for _, seg := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]string:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// Expand replaces variable references in s with values from vars.
//
// Errors are only returned when MissingAction is MissingError and a
// reference cannot be resolved. Missing names are reported once each, in
// order of first appearance.
func (e *Expander) Expand(s string, vars map[string]any) (string, error) {
	if s == "" || !strings.Contains(s, "$") {
		return s, nil
	}

	var missing []string
	seen := make(map[string]bool)
	replace := func(match, path string) string {
		if v, ok := Lookup(vars, path); ok {
			return format(v)
		}
		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			if !seen[path] {
				seen[path] = true
				missing = append(missing, path)
			}
		}
		return match
	}

	var b strings.Builder
	last := 0
	for _, loc := range refPattern.FindAllStringSubmatchIndex(s, -1) {
		path, ok := e.pathAt(s, loc)
		if !ok {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(replace(s[loc[0]:loc[1]], path))
		last = loc[1]
	}
	b.WriteString(s[last:])
	result := b.String()

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// pathAt returns the path of the match at loc if its style is enabled.
func (e *Expander) pathAt(s string, loc []int) (string, bool) {
	switch {
	case loc[2] >= 0 && e.braceStyle:
		return s[loc[2]:loc[3]], true
	case loc[4] >= 0 && e.dollarStyle:
		return s[loc[4]:loc[5]], true
	}
	return "", false
}

// References lists the distinct variable paths referenced by s, sorted.
func (e *Expander) References(s string) []string {
	set := make(map[string]struct{})
	for _, loc := range refPattern.FindAllStringSubmatchIndex(s, -1) {
		if path, ok := e.pathAt(s, loc); ok {
			set[path] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MustExpand expands s and panics on error.
func (e *Expander) MustExpand(s string, vars map[string]any) string {
	result, err := e.Expand(s, vars)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}

// format renders a resolved value. Maps render with sorted keys so the
// output is stable.
func format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + val[k]
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// UndefinedVariableError is returned when MissingError is set and one or
// more references are not found.
type UndefinedVariableError struct {
	Names []string
}

func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

var defaultExpander = NewExpander()

// Expand expands s with the default expander, keeping unresolved
// references as-is.
//
//	template.Expand("Hi ${ctx.name}", map[string]any{"ctx": map[string]string{"name": "Ada"}})
//	// "Hi Ada"
func Expand(s string, vars map[string]any) string {
	result, _ := defaultExpander.Expand(s, vars)
	return result
}

// References lists the variable paths in s using the default expander.
func References(s string) []string {
	return defaultExpander.References(s)
}
