package errors

import "fmt"

// NoPos marks an error that has no meaningful source position.
const NoPos = -1

// Error is a positioned, categorized failure.
type Error struct {
	// Kind is the stage that produced the error.
	Kind Kind

	// Pos is the 0-based byte offset into Source, or NoPos.
	Pos int

	// Source is the expression text, when the error came from one.
	Source string

	// Message describes the failure.
	Message string

	// Err is the sentinel or underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s error at column %d: %s", e.Kind, e.Pos+1, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Column returns the 1-based column of the error, or 0 when unknown.
func (e *Error) Column() int {
	if e.Pos < 0 {
		return 0
	}
	return e.Pos + 1
}

// Parse creates a parse error at pos in src.
func Parse(pos int, src string, format string, args ...any) *Error {
	return &Error{
		Kind:    KindParse,
		Pos:     pos,
		Source:  src,
		Message: fmt.Sprintf(format, args...),
		Err:     ErrSyntax,
	}
}

// Eval creates an evaluation error at pos with the given sentinel cause.
func Eval(pos int, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    KindEval,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// Construction creates a Spec construction error.
func Construction(cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    KindConstruction,
		Pos:     NoPos,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// WithSource returns e with Source set when it is not already known.
func (e *Error) WithSource(src string) *Error {
	if e.Source == "" {
		e.Source = src
	}
	return e
}
