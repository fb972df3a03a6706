package dfs

import (
	"maps"
	"slices"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
)

// Case pairs a condition expression with the reply used when it holds.
type Case struct {
	Condition string `json:"condition" yaml:"condition"`
	Reply     string `json:"reply" yaml:"reply"`
}

// DefaultCase returns a case that always matches.
func DefaultCase() Case {
	return Case{Condition: "true", Reply: "This is a reply"}
}

// Dialog is the ordered list of cases for one intent.
type Dialog struct {
	Intent string `json:"intent" yaml:"intent"`
	Cases  []Case `json:"cases" yaml:"cases"`
}

// NewDialog creates a dialog for intent.
func NewDialog(intent string, cases ...Case) Dialog {
	return Dialog{Intent: intent, Cases: slices.Clone(cases)}
}

// Spec is a dialog specification: the declared intents, the ctx and sys
// facts visible to conditions, and one dialog per intent.
//
// Context and System may be modified between evaluations. Writes must not
// run concurrently with evaluations of the same Spec.
type Spec struct {
	Intents []string          `json:"intents" yaml:"intents"`
	Context map[string]string `json:"context" yaml:"context"`
	System  map[string]string `json:"system" yaml:"system"`
	Dialogs map[string]Dialog `json:"dialogs" yaml:"dialogs"`
}

// New builds a Spec, keying dialogs by intent.
//
// Returns a construction error when an intent is empty or declared twice,
// when a dialog's intent is not declared in intents, or when two dialogs
// share an intent. Nil maps become empty maps.
func New(intents []string, dialogs []Dialog, context, system map[string]string) (*Spec, error) {
	if err := checkIntents(intents); err != nil {
		return nil, err
	}
	s := &Spec{
		Intents: slices.Clone(intents),
		Context: maps.Clone(context),
		System:  maps.Clone(system),
		Dialogs: make(map[string]Dialog, len(dialogs)),
	}
	for _, d := range dialogs {
		if !slices.Contains(s.Intents, d.Intent) {
			return nil, dfserrors.Construction(dfserrors.ErrUndeclaredIntent,
				"%s was not declared in the intents", d.Intent)
		}
		if _, dup := s.Dialogs[d.Intent]; dup {
			return nil, dfserrors.Construction(dfserrors.ErrDuplicateDialog,
				"%s has multiple dialogs", d.Intent)
		}
		s.Dialogs[d.Intent] = NewDialog(d.Intent, d.Cases...)
	}
	s.normalize()
	return s, nil
}

// Default returns the sample spec written by "dfs init": three intents
// with one always-true case each.
func Default() *Spec {
	intents := []string{"billing", "commissions", "login issue"}
	dialogs := make([]Dialog, len(intents))
	for i, intent := range intents {
		dialogs[i] = NewDialog(intent, DefaultCase())
	}
	s, err := New(intents,
		dialogs,
		map[string]string{"some_var": "42", "something": "true"},
		map[string]string{"timezone": "US/Eastern"},
	)
	if err != nil {
		panic(err) // static input
	}
	return s
}

// Validate checks the invariants New enforces, for specs built by hand
// or decoded from a document.
func (s *Spec) Validate() error {
	if err := checkIntents(s.Intents); err != nil {
		return err
	}
	for key, d := range s.Dialogs {
		if key != d.Intent {
			return dfserrors.Construction(dfserrors.ErrIntentMismatch,
				"dialog %q is stored under %q", d.Intent, key)
		}
		if !slices.Contains(s.Intents, d.Intent) {
			return dfserrors.Construction(dfserrors.ErrUndeclaredIntent,
				"%s was not declared in the intents", d.Intent)
		}
	}
	return nil
}

// checkIntents rejects empty and repeated intent names.
func checkIntents(intents []string) error {
	seen := make(map[string]struct{}, len(intents))
	for _, intent := range intents {
		if intent == "" {
			return dfserrors.Construction(dfserrors.ErrEmptyIntent, "intent names must not be empty")
		}
		if _, dup := seen[intent]; dup {
			return dfserrors.Construction(dfserrors.ErrDuplicateIntent,
				"%s is declared more than once", intent)
		}
		seen[intent] = struct{}{}
	}
	return nil
}

// Dialog returns the dialog for intent. Lookup is exact and case-sensitive.
func (s *Spec) Dialog(intent string) (Dialog, bool) {
	d, ok := s.Dialogs[intent]
	return d, ok
}

// Clone returns a deep copy of s.
func (s *Spec) Clone() *Spec {
	c := &Spec{
		Intents: slices.Clone(s.Intents),
		Context: maps.Clone(s.Context),
		System:  maps.Clone(s.System),
		Dialogs: make(map[string]Dialog, len(s.Dialogs)),
	}
	for k, d := range s.Dialogs {
		c.Dialogs[k] = NewDialog(d.Intent, d.Cases...)
	}
	c.normalize()
	return c
}

// Equal reports whether s and o hold the same intents, facts and dialogs.
// Intent order is significant; nil and empty collections are equal.
func (s *Spec) Equal(o *Spec) bool {
	if s == nil || o == nil {
		return s == o
	}
	if !slices.Equal(s.Intents, o.Intents) ||
		!maps.Equal(s.Context, o.Context) ||
		!maps.Equal(s.System, o.System) {
		return false
	}
	return maps.EqualFunc(s.Dialogs, o.Dialogs, func(a, b Dialog) bool {
		return a.Intent == b.Intent && slices.Equal(a.Cases, b.Cases)
	})
}

// normalize replaces nil collections with empty ones so encoded documents
// carry every field.
func (s *Spec) normalize() {
	if s.Intents == nil {
		s.Intents = []string{}
	}
	if s.Context == nil {
		s.Context = map[string]string{}
	}
	if s.System == nil {
		s.System = map[string]string{}
	}
	if s.Dialogs == nil {
		s.Dialogs = map[string]Dialog{}
	}
	for k, d := range s.Dialogs {
		if d.Cases == nil {
			d.Cases = []Case{}
			s.Dialogs[k] = d
		}
	}
}
