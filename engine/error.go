package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	// ErrStackOverflow indicates the backtracking stack ran out of room.
	// The stack budget given to the match was too small for the pattern.
	ErrStackOverflow = errors.New("pattern stack overflow")

	// ErrBadGraph indicates a node was reached that has no defined match
	// behavior, or a graph invariant was found broken
	ErrBadGraph = errors.New("inconsistent pattern graph")

	// ErrNeedSet indicates a character class (string or charset.Set) was required
	ErrNeedSet = errors.New("needs string or character set")

	// ErrNeedNonNegative indicates a non-negative integer was required
	ErrNeedNonNegative = errors.New("needs non-negative integer")

	// ErrNeedTarget indicates a callback or variable was required
	ErrNeedTarget = errors.New("needs function or variable")

	// ErrBadResult indicates a match-time callback or variable produced a
	// value that is neither string, pattern, nor bool
	ErrBadResult = errors.New("needs string, pattern, or bool")
)

// UsageError reports a caller-supplied value of the wrong capability.
//
// Usage errors never corrupt engine state: the caller can fix the input and
// retry. At construction time they are raised by panicking with a
// *UsageError; at match time they are returned from the match call.
type UsageError struct {
	// Op is the operation that rejected the value ("any", "len", ...).
	Op string

	// Got is the offending value.
	Got any

	// Source names where the value came from at match time (a variable
	// name, "function"), or is empty at construction time.
	Source string

	Err error
}

// Error implements the error interface
func (e *UsageError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("'%s' %v, got %v (%T) from %s", e.Op, e.Err, e.Got, e.Got, e.Source)
	}
	return fmt.Sprintf("'%s' %v, got %v (%T)", e.Op, e.Err, e.Got, e.Got)
}

// Unwrap returns the underlying error
func (e *UsageError) Unwrap() error {
	return e.Err
}

// MatchError reports a fatal engine error that aborted a match attempt.
// The same attempt must not be retried with the same stack sizing.
type MatchError struct {
	Node NodeID
	Kind Kind
	Err  error
}

// Error implements the error interface
func (e *MatchError) Error() string {
	if e.Node != EOP {
		return fmt.Sprintf("match aborted at node %d (%s): %v", e.Node, e.Kind, e.Err)
	}
	return fmt.Sprintf("match aborted: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *MatchError) Unwrap() error {
	return e.Err
}

// IsUsage reports whether err is (or wraps) a *UsageError.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// IsFatal reports whether err is (or wraps) a *MatchError.
func IsFatal(err error) bool {
	var me *MatchError
	return errors.As(err, &me)
}
