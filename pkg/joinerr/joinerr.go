// ------------------------------------------------------
// simjoin - Validation Error Kinds
// ------------------------------------------------------

// Package joinerr defines the typed error kinds the join engine raises
// during pre-flight validation. All of them are raised before the core
// runs; nothing in the parallel phase raises one.
package joinerr

import "fmt"

// Kind identifies one of the validation failure categories a join can
// fail with.
type Kind string

const (
	InvalidInputTable         Kind = "InvalidInputTable"
	UnknownAttribute          Kind = "UnknownAttribute"
	NonTextualJoinAttribute   Kind = "NonTextualJoinAttribute"
	InvalidTokenizer          Kind = "InvalidTokenizer"
	InvalidThreshold          Kind = "InvalidThreshold"
	InvalidComparisonOperator Kind = "InvalidComparisonOperator"
	InvalidOutputAttribute    Kind = "InvalidOutputAttribute"
	NonUniqueOrMissingKey     Kind = "NonUniqueOrMissingKey"
)

// Error is a validation failure of a known Kind, always raised before
// the join's core runs.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is supports errors.Is comparisons against a *Error of the same Kind,
// ignoring Msg — callers typically only care which failure category
// occurred.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs a validation error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
