package engine

import "fmt"

// Stack budgets of the primitive patterns.
const (
	stackArb     = 1
	stackBal     = 1
	stackBreakX  = 2
	stackFail    = 1
	stackFence   = 1
	stackSucceed = 1
)

// Empty returns the graph with no nodes. Its root is EOP; it matches the
// null string and is the identity of concatenation.
func Empty() *Graph {
	return &Graph{}
}

// Null returns a one-node graph matching the null string. Unlike Empty it
// is a real node, never safe for the simple repetition loop.
func Null() *Graph {
	return single(0, Node{kind: KindNull})
}

// Literal returns a graph matching the given code points.
func Literal(runes []rune) *Graph {
	switch len(runes) {
	case 0:
		return Null()
	case 1:
		return single(0, Node{kind: KindChar, runes: runes, simple: true})
	default:
		return single(0, Node{kind: KindString, runes: runes, simple: true})
	}
}

// Class returns a one-node character-class graph. kind must be one of
// KindAny, KindNotAny, KindSpan, KindNSpan or KindBreak.
func Class(kind Kind, op Operand) *Graph {
	switch kind {
	case KindAny, KindNotAny, KindSpan:
		return single(0, Node{kind: kind, op: op, simple: true})
	case KindNSpan, KindBreak:
		return single(0, Node{kind: kind, op: op})
	}
	panic(fmt.Sprintf("engine: %s is not a class kind", kind))
}

// BreakX returns break-with-extension:
//
//	B -> A -> (successor)
//	     .
//	     X -> B
//
// B (3) scans to a break character, A (1) stacks the extension X (2), which
// steps over the break character and scans again.
func BreakX(op Operand) *Graph {
	return &Graph{
		nodes: []Node{
			{index: 1, kind: KindAlt, succ: EOP, alt: 2},
			{index: 2, kind: KindBreakXX, succ: 3},
			{index: 3, kind: KindBreakX, succ: 1, op: op},
		},
		stack: stackBreakX,
	}
}

// Int returns a one-node length or position graph. kind must be one of
// KindLen, KindPos, KindRPos, KindTab or KindRTab. A fixed negative operand
// panics with a *UsageError.
func Int(kind Kind, op Operand) *Graph {
	switch kind {
	case KindLen, KindPos, KindRPos, KindTab, KindRTab:
	default:
		panic(fmt.Sprintf("engine: %s is not an integer kind", kind))
	}
	if op.src != srcFixed {
		return single(0, Node{kind: kind, op: op})
	}
	if op.n < 0 {
		panic(&UsageError{Op: kind.String(), Got: op.n, Err: ErrNeedNonNegative})
	}
	if kind == KindLen {
		// len(0) must not be simple, or arbno(len(0)) would loop forever
		if op.n == 0 {
			return Null()
		}
		return single(0, Node{kind: kind, op: op, simple: true})
	}
	return single(0, Node{kind: kind, op: op})
}

// Call returns a graph whose node calls fn at match time. fn may return a
// string (matched literally), a Compiled pattern (matched as a nested
// pattern) or a bool (succeed or fail without moving).
func Call(fn func() any) *Graph {
	if fn == nil {
		panic(&UsageError{Op: "pat", Got: fn, Err: ErrNeedTarget})
	}
	return single(0, Node{kind: KindCall, fn: fn})
}

// Deref returns a graph whose node reads v at match time, with the same
// outcomes as Call.
func Deref(v *Var) *Graph {
	if v == nil {
		panic(&UsageError{Op: "pat", Got: v, Err: ErrNeedTarget})
	}
	return single(0, Node{kind: KindDeref, op: VarOperand(v)})
}

// Cursor returns a graph that reports the cursor offset to t and matches
// null.
func Cursor(t Target) *Graph {
	if t.cursor == nil && t.v == nil {
		panic(&UsageError{Op: "cursor", Got: nil, Err: ErrNeedTarget})
	}
	return single(0, Node{kind: KindCursor, target: t})
}

// Arb returns the graph matching any string, shortest first:
//
//	X -> (successor)
//	.
//	Y -> (successor)
//
// X (2) matches null, stacking Y (1), which extends by one code point each
// time it is retried.
func Arb() *Graph {
	return &Graph{
		nodes: []Node{
			{index: 1, kind: KindArbY, succ: EOP},
			{index: 2, kind: KindArbX, succ: EOP, alt: 1},
		},
		stack: stackArb,
	}
}

// Bal returns the graph matching a non-empty string balanced with respect
// to parentheses; each retry extends the match by one more balanced unit.
func Bal() *Graph {
	return single(stackBal, Node{kind: KindBal})
}

// Abort returns the graph that fails the whole match immediately.
func Abort() *Graph {
	return single(0, Node{kind: KindAbort})
}

// Fail returns the graph that always fails, forcing backtracking.
func Fail() *Graph {
	return single(stackFail, Node{kind: KindFail})
}

// Fence returns the graph that matches null but aborts the match when
// backtracked into.
func Fence() *Graph {
	return single(stackFence, Node{kind: KindFence})
}

// Rem returns the graph matching the rest of the subject.
func Rem() *Graph {
	return single(0, Node{kind: KindRem})
}

// Succeed returns the graph that matches null and offers another null
// match every time it is backtracked into.
func Succeed() *Graph {
	return single(stackSucceed, Node{kind: KindSucceed})
}
