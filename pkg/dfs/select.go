package dfs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/dfs/pkg/dfs/observability"
)

// Sentinel errors for case selection.
var (
	// ErrUnknownIntent indicates the spec has no dialog for the intent.
	ErrUnknownIntent = errors.New("unknown intent")

	// ErrNoMatchingCase indicates no case condition held.
	ErrNoMatchingCase = errors.New("no matching case")
)

// CaseError records a case whose condition failed to evaluate. Selection
// moves on to the next case.
type CaseError struct {
	// Index is the position of the case in its dialog.
	Index int
	// Condition is the case's condition source.
	Condition string
	// Err is the parse or evaluation failure.
	Err error
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("case %d (%s): %v", e.Index, e.Condition, e.Err)
}

func (e *CaseError) Unwrap() error {
	return e.Err
}

// NoMatchError is returned when no case of a dialog matched. It lists the
// cases that failed along the way.
type NoMatchError struct {
	Intent     string
	CaseErrors []*CaseError
}

func (e *NoMatchError) Error() string {
	if len(e.CaseErrors) == 0 {
		return fmt.Sprintf("intent %q: %v", e.Intent, ErrNoMatchingCase)
	}
	msgs := make([]string, len(e.CaseErrors))
	for i, ce := range e.CaseErrors {
		msgs[i] = ce.Error()
	}
	return fmt.Sprintf("intent %q: %v; %d case(s) failed: %s",
		e.Intent, ErrNoMatchingCase, len(e.CaseErrors), strings.Join(msgs, "; "))
}

func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatchingCase
}

// Selection is the outcome of choosing a case for an intent.
type Selection struct {
	ID     string `json:"id"`
	Intent string `json:"intent"`
	// Index is the position of the matched case.
	Index int  `json:"index"`
	Case  Case `json:"case"`
	// Reply is the case reply with ${ctx.*} and ${sys.*} references
	// expanded. Unresolved references are kept as written.
	Reply string `json:"reply"`
	// CaseErrors lists earlier cases whose conditions failed.
	CaseErrors []*CaseError `json:"-"`
}

// Select evaluates the cases of the intent's dialog in order and returns
// the first whose condition is truthy under bool() semantics.
//
// A failing condition does not stop the loop; it is recorded as a
// CaseError. Select returns ErrUnknownIntent when the spec has no dialog
// for intent, and an error matching ErrNoMatchingCase when nothing held.
// Cancelling ctx stops the loop between cases.
func (e *Engine) Select(ctx context.Context, s *Spec, intent string) (sel *Selection, err error) {
	if s == nil {
		return nil, ErrNilSpec
	}
	d, ok := s.Dialog(intent)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, intent)
	}

	id := e.newID()
	logger := observability.EnrichLogger(e.logger, id, intent)
	ctx, span := e.spans.StartSelectSpan(ctx, id, intent)
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		e.metrics.RecordSelection(ctx, intent, sel != nil, duration)
		e.spans.EndSpanWithError(span, err)
		index := -1
		if sel != nil {
			index = sel.Index
		}
		observability.LogSelection(logger, index, float64(duration.Microseconds())/1000)
	}()

	vars := Vars(s)
	var caseErrors []*CaseError
	for i, c := range d.Cases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("selection cancelled before case %d: %w", i, err)
		}

		v, evalErr := e.evaluate(ctx, logger, id, vars, c.Condition)
		if evalErr != nil {
			ce := &CaseError{Index: i, Condition: c.Condition, Err: evalErr}
			caseErrors = append(caseErrors, ce)
			e.metrics.RecordCaseError(ctx, intent, evalErr)
			e.spans.AddSpanEvent(ctx, "case.failed",
				attribute.Int("case", i),
				attribute.String("error", evalErr.Error()),
			)
			observability.LogCaseError(logger, i, evalErr)
			continue
		}
		if !v.Truthy() {
			continue
		}

		return &Selection{
			ID:         id,
			Intent:     intent,
			Index:      i,
			Case:       c,
			Reply:      e.expander.MustExpand(c.Reply, replyVars(s, intent)),
			CaseErrors: caseErrors,
		}, nil
	}
	return nil, &NoMatchError{Intent: intent, CaseErrors: caseErrors}
}

// Select chooses a case for intent with DefaultEngine.
func (s *Spec) Select(intent string) (*Selection, error) {
	return DefaultEngine().Select(context.Background(), s, intent)
}

func replyVars(s *Spec, intent string) map[string]any {
	return map[string]any{
		"ctx":    s.Context,
		"sys":    s.System,
		"intent": intent,
	}
}
