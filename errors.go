package snopat

import "github.com/coregx/snopat/engine"

// Errors reported by pattern construction and matching. Use errors.Is to
// test for them; the returned errors carry more detail.
var (
	// ErrStackOverflow: the match needed more history than the stack holds
	ErrStackOverflow = engine.ErrStackOverflow

	// ErrBadGraph: the interpreter reached a node it cannot execute
	ErrBadGraph = engine.ErrBadGraph

	// ErrNeedSet: a class operand was not a string or character set
	ErrNeedSet = engine.ErrNeedSet

	// ErrNeedNonNegative: an integer operand was negative or not an integer
	ErrNeedNonNegative = engine.ErrNeedNonNegative

	// ErrNeedTarget: an assignment or element was given no callback or variable
	ErrNeedTarget = engine.ErrNeedTarget

	// ErrBadResult: a call or variable produced something that cannot be matched
	ErrBadResult = engine.ErrBadResult
)

// UsageError reports a value of the wrong kind supplied by the caller.
// Construction functions panic with a *UsageError; match functions return
// one when a callback or variable produces an unusable value.
type UsageError = engine.UsageError

// MatchError reports a fatal error that aborted a match attempt.
type MatchError = engine.MatchError

// IsUsage reports whether err is, or wraps, a *UsageError.
func IsUsage(err error) bool {
	return engine.IsUsage(err)
}

// IsFatal reports whether err is, or wraps, a *MatchError.
func IsFatal(err error) bool {
	return engine.IsFatal(err)
}

// ConfigError represents an invalid configuration error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "snopat: invalid config: " + e.Field + ": " + e.Message
}
