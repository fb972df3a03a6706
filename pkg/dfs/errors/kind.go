// Package errors provides the error taxonomy shared by the dfs packages.
//
// Every failure surfaced by the engine falls into one of three kinds:
//   - Construction: a Spec violates a structural invariant and cannot be built
//   - Parse: an expression is not valid syntax
//   - Eval: a syntactically valid expression failed while being evaluated
//
// Parse and eval failures are recoverable per call. Construction failures
// abort building the Spec they belong to.
package errors

import (
	"errors"
)

// Kind represents which stage produced an error.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in dfs.
	KindUnknown Kind = iota

	// KindConstruction indicates a Spec invariant was violated.
	// Examples: dialog intent not declared, two dialogs for one intent.
	KindConstruction

	// KindParse indicates malformed expression syntax.
	// Examples: unterminated string, unbalanced parentheses, trailing input.
	KindParse

	// KindEval indicates a failure while walking a parsed expression.
	// Examples: unresolved identifier, unknown function, operator type mismatch.
	KindEval
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindParse:
		return "parse"
	case KindEval:
		return "eval"
	default:
		return "unknown"
	}
}

// Sentinel causes. Match them with errors.Is.
var (
	ErrSyntax           = errors.New("syntax error")
	ErrUnresolved       = errors.New("unresolved reference")
	ErrUnknownFunction  = errors.New("unknown function")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrArity            = errors.New("wrong number of arguments")
	ErrInvalidPattern   = errors.New("invalid pattern")
	ErrLimitExceeded    = errors.New("limit exceeded")
	ErrUndeclaredIntent = errors.New("intent not declared")
	ErrDuplicateIntent  = errors.New("duplicate intent")
	ErrEmptyIntent      = errors.New("empty intent name")
	ErrDuplicateDialog  = errors.New("duplicate dialog")
	ErrIntentMismatch   = errors.New("dialog key does not match intent")
	ErrInternal         = errors.New("internal evaluation failure")
)

// Categorize determines which kind of failure err is.
func Categorize(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var dfsErr *Error
	if errors.As(err, &dfsErr) {
		return dfsErr.Kind
	}

	switch {
	case errors.Is(err, ErrUndeclaredIntent),
		errors.Is(err, ErrDuplicateIntent),
		errors.Is(err, ErrEmptyIntent),
		errors.Is(err, ErrDuplicateDialog),
		errors.Is(err, ErrIntentMismatch):
		return KindConstruction
	case errors.Is(err, ErrSyntax):
		return KindParse
	case errors.Is(err, ErrUnresolved),
		errors.Is(err, ErrUnknownFunction),
		errors.Is(err, ErrTypeMismatch),
		errors.Is(err, ErrArity),
		errors.Is(err, ErrInvalidPattern),
		errors.Is(err, ErrLimitExceeded),
		errors.Is(err, ErrInternal):
		return KindEval
	}
	return KindUnknown
}

// IsRecoverable reports whether the caller can keep using the Spec after err.
// Parse and eval failures only affect the expression that produced them.
func IsRecoverable(err error) bool {
	switch Categorize(err) {
	case KindParse, KindEval:
		return true
	default:
		return false
	}
}

// IsParse reports whether err is a parse failure.
func IsParse(err error) bool {
	return Categorize(err) == KindParse
}

// IsEval reports whether err is an evaluation failure.
func IsEval(err error) bool {
	return Categorize(err) == KindEval
}

// IsConstruction reports whether err is a Spec construction failure.
func IsConstruction(err error) bool {
	return Categorize(err) == KindConstruction
}
