// Package snopat provides SNOBOL/SPITBOL-style pattern matching for Go.
//
// Patterns are first-class values built from primitive matchers and
// combinators rather than parsed from a regular-expression string. A
// pattern is compiled into a node graph once, at construction, and then run
// by a backtracking interpreter with an explicit, bounded history stack.
//
// Basic usage:
//
//	// "b", then any number of a's and n's, then "!"
//	p := snopat.Arbno(snopat.Any("an")).PrependedBy("b").AppendedBy("!")
//	m, err := p.MatchAnchored("bananana!")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if m != nil {
//	    fmt.Println(m.Matched()) // "bananana!"
//	}
//
// Alternation is ordered: the left operand is tried first and the first
// overall success wins, with no preference for longer matches.
//
// Side effects:
//
//	var word string
//	p := snopat.Span("abcdefghijklmnopqrstuvwxyz").OnSuccess(func(s string) { word = s })
//
// Immediate assignments (Immediate, ImmediateVar) fire every time their
// operand matches, even if the overall match later fails. Deferred
// assignments (OnSuccess, OnSuccessVar) fire only once the whole pattern has
// matched, oldest first.
//
// Dynamic and recursive patterns:
//
//	var expr *snopat.Pattern
//	expr = snopat.Alternate(snopat.Lit("a"), snopat.Lit("b").And(snopat.Call(func() any { return expr })))
//
// A Call or Deref element that yields a *Pattern at match time matches it
// as a nested pattern. Nesting is kept on the match stack, not the Go call
// stack, so recursion depth is limited only by the stack size.
//
// Subjects are matched as sequences of Unicode code points: Len(1) matches
// one code point regardless of its UTF-8 length, and all offsets reported by
// Match and Cursor are code-point offsets.
//
// Patterns are immutable and safe for concurrent use. Variables are plain
// mutable cells with no locking; a pattern that reads or writes a Var must
// not be matched concurrently with other users of that Var.
package snopat
