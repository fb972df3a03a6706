package dfs

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/randalmurphal/dfs/pkg/dfs/expr"
	"github.com/randalmurphal/dfs/pkg/dfs/template"
)

// Severity grades a lint finding.
type Severity int

const (
	// SeverityWarning marks something legal that is probably a mistake,
	// such as a reference to a ctx key the spec does not define.
	SeverityWarning Severity = iota
	// SeverityError marks a condition that can never evaluate.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is one lint finding. Case is -1 for findings about a dialog or
// the spec itself.
type Issue struct {
	Severity Severity `json:"severity"`
	Intent   string   `json:"intent,omitempty"`
	Case     int      `json:"case"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(i.Severity.String())
	if i.Intent != "" {
		fmt.Fprintf(&b, " [%s", i.Intent)
		if i.Case >= 0 {
			fmt.Fprintf(&b, " case %d", i.Case)
		}
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	return b.String()
}

// Lint checks every condition and reply in s against the engine's library
// without evaluating anything. Findings are ordered by intent then case.
func (e *Engine) Lint(s *Spec) []Issue {
	if s == nil {
		return nil
	}
	var issues []Issue
	for _, intent := range s.Intents {
		if _, ok := s.Dialogs[intent]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Intent:   intent,
				Case:     -1,
				Message:  "intent has no dialog",
			})
		}
	}

	intents := make([]string, 0, len(s.Dialogs))
	for k := range s.Dialogs {
		intents = append(intents, k)
	}
	sort.Strings(intents)

	for _, intent := range intents {
		d := s.Dialogs[intent]
		if len(d.Cases) == 0 {
			issues = append(issues, Issue{Severity: SeverityWarning, Intent: intent, Case: -1, Message: "dialog has no cases"})
		}
		for i, c := range d.Cases {
			add := func(sev Severity, format string, args ...any) {
				issues = append(issues, Issue{Severity: sev, Intent: intent, Case: i, Message: fmt.Sprintf(format, args...)})
			}
			e.lintCondition(s, c.Condition, add)
			for _, ref := range template.References(c.Reply) {
				if _, ok := template.Lookup(replyVars(s, intent), ref); !ok {
					add(SeverityWarning, "reply references %s which is not set", ref)
				}
			}
		}
	}
	return issues
}

func (e *Engine) lintCondition(s *Spec, src string, add func(Severity, string, ...any)) {
	n, err := e.Compile(src)
	if err != nil {
		add(SeverityError, "%v", err)
		return
	}
	lib := e.Library()
	var reported []string
	once := func(key string) bool {
		if slices.Contains(reported, key) {
			return false
		}
		reported = append(reported, key)
		return true
	}
	expr.Walk(n, func(node expr.Node) bool {
		switch node := node.(type) {
		case *expr.Call:
			if _, ok := lib.Func(node.Name); !ok && once("fn:"+node.Name) {
				add(SeverityError, "unknown function %s at column %d", node.Name, node.Pos()+1)
			}
		case *expr.MemberAccess:
			root, ok := node.Base.(*expr.Identifier)
			if !ok {
				return true
			}
			var facts map[string]string
			switch root.Name {
			case "ctx":
				facts = s.Context
			case "sys":
				facts = s.System
			default:
				return true
			}
			if _, set := facts[node.Field]; !set && once(root.Name+"."+node.Field) {
				add(SeverityWarning, "%s.%s is not set and evaluates to null", root.Name, node.Field)
			}
		case *expr.Identifier:
			if node.Name == "ctx" || node.Name == "sys" {
				return true
			}
			if _, ok := lib.Const(node.Name); !ok && once("id:"+node.Name) {
				add(SeverityError, "unresolved identifier %s at column %d", node.Name, node.Pos()+1)
			}
		}
		return true
	})
}

// Lint checks s with DefaultEngine.
func (s *Spec) Lint() []Issue {
	return DefaultEngine().Lint(s)
}
