// Package engine implements SNOBOL/SPITBOL pattern graphs and the
// backtracking machine that executes them.
//
// A pattern is compiled into a directed graph of nodes stored in a per-pattern
// arena (Graph). Every node has a successor, taken when the node matches, and
// some kinds have an alternate, used by alternation and repetition. The
// universal end-of-pattern sentinel is index 0 (EOP) and is never stored in
// an arena.
//
// The Machine runs a graph against a subject with an explicit, fixed-size
// history stack instead of native recursion, so the nesting depth of
// patterns and the number of repetitions are bounded only by the stack
// budget given to the match.
package engine

import (
	"fmt"

	"github.com/coregx/snopat/charset"
)

// NodeID is the 1-based index of a node within its graph arena.
type NodeID uint32

// EOP is the end-of-pattern sentinel. It is shared by every graph, is never
// copied and never stored in an arena.
const EOP NodeID = 0

// Kind identifies the type of a node and determines which payload fields
// are valid.
type Kind uint8

const (
	// KindNull matches the empty string
	KindNull Kind = iota

	// KindChar matches one code point
	KindChar

	// KindString matches a run of two or more code points
	KindString

	// KindCall calls a function at match time; the result (string, pattern
	// or bool) decides what is matched
	KindCall

	// KindDeref reads a variable at match time with the same three outcomes
	// as KindCall
	KindDeref

	// KindAbort fails the whole match, with no retry at another start
	KindAbort

	// KindFail fails this alternative
	KindFail

	// KindSucceed matches null and offers itself again on every backtrack
	KindSucceed

	// KindFence matches null; backtracking into it aborts the match
	KindFence

	// KindRem matches the remainder of the subject
	KindRem

	// KindArbX starts arb: try null first, stack an extension
	KindArbX

	// KindArbY extends arb by one code point
	KindArbY

	// KindAlt tries the successor, stacking the alternate
	KindAlt

	// KindArbnoS starts a simple repetition
	KindArbnoS

	// KindArbnoX starts a complex repetition
	KindArbnoX

	// KindArbnoY closes one iteration of a complex repetition
	KindArbnoY

	// KindBal matches a non-empty parenthesis-balanced string
	KindBal

	// KindAny matches one code point in a class
	KindAny

	// KindNotAny matches one code point not in a class
	KindNotAny

	// KindSpan matches one or more code points in a class
	KindSpan

	// KindNSpan matches zero or more code points in a class
	KindNSpan

	// KindBreak matches up to (not including) a code point in a class
	KindBreak

	// KindBreakX is break with extension on backtrack
	KindBreakX

	// KindBreakXX skips the break character when a breakx is extended
	KindBreakXX

	// KindLen matches a fixed number of code points
	KindLen

	// KindPos asserts the cursor is at an offset from the start
	KindPos

	// KindRPos asserts the cursor is at an offset from the end
	KindRPos

	// KindTab advances the cursor to an offset from the start
	KindTab

	// KindRTab advances the cursor to an offset from the end
	KindRTab

	// KindCursor reports the cursor to a callback or variable
	KindCursor

	// KindREnter opens a region for an assignment or fence wrapper
	KindREnter

	// KindImm delivers the region's text immediately and closes it
	KindImm

	// KindOnMatch records a pending assignment and closes the region
	KindOnMatch

	// KindFenceX closes a fenced region, cutting its alternatives
	KindFenceX

	// KindRRemove is stacked by region entry; on failure it removes the
	// region (stack only)
	KindRRemove

	// KindRRestore is stacked by region exit; on failure it reinstates the
	// region (stack only)
	KindRRestore

	// KindAssign is a pending-assignment marker (stack only)
	KindAssign

	// KindFenceY strips a fenced region on failure (stack only)
	KindFenceY

	// KindUnanchored slides the start of an unanchored match (stack only)
	KindUnanchored

	kindCount
)

// kindInfo holds the per-kind metadata that does not vary between nodes.
type kindInfo struct {
	name    string
	hasAlt  bool // node has a meaningful alternate reference
	stacked bool // node only ever appears in stack entries
	assign  bool // assignment wrapper: marks a region boundary
}

var kinds = [kindCount]kindInfo{
	KindNull:       {name: "null"},
	KindChar:       {name: "char"},
	KindString:     {name: "string"},
	KindCall:       {name: "call"},
	KindDeref:      {name: "deref"},
	KindAbort:      {name: "abort"},
	KindFail:       {name: "fail"},
	KindSucceed:    {name: "succeed"},
	KindFence:      {name: "fence"},
	KindRem:        {name: "rem"},
	KindArbX:       {name: "arb_x", hasAlt: true},
	KindArbY:       {name: "arb_y"},
	KindAlt:        {name: "alt", hasAlt: true},
	KindArbnoS:     {name: "arbno_s", hasAlt: true},
	KindArbnoX:     {name: "arbno_x", hasAlt: true},
	KindArbnoY:     {name: "arbno_y"},
	KindBal:        {name: "bal"},
	KindAny:        {name: "any"},
	KindNotAny:     {name: "notany"},
	KindSpan:       {name: "span"},
	KindNSpan:      {name: "nspan"},
	KindBreak:      {name: "break"},
	KindBreakX:     {name: "breakx"},
	KindBreakXX:    {name: "breakx_x"},
	KindLen:        {name: "len"},
	KindPos:        {name: "pos"},
	KindRPos:       {name: "rpos"},
	KindTab:        {name: "tab"},
	KindRTab:       {name: "rtab"},
	KindCursor:     {name: "cursor"},
	KindREnter:     {name: "r_enter", assign: true},
	KindImm:        {name: "imm", assign: true},
	KindOnMatch:    {name: "onmatch", assign: true},
	KindFenceX:     {name: "fence_x"},
	KindRRemove:    {name: "r_remove", stacked: true},
	KindRRestore:   {name: "r_restore", stacked: true},
	KindAssign:     {name: "assign", stacked: true},
	KindFenceY:     {name: "fence_y", stacked: true},
	KindUnanchored: {name: "unanchored", stacked: true},
}

// String returns the kind's name
func (k Kind) String() string {
	if k < kindCount {
		return kinds[k].name
	}
	return fmt.Sprintf("Unknown(%d)", k)
}

// HasAlt reports whether nodes of this kind carry an alternate reference.
func (k Kind) HasAlt() bool {
	return k < kindCount && kinds[k].hasAlt
}

// IsAssign reports whether nodes of this kind are assignment wrappers.
func (k Kind) IsAssign() bool {
	return k < kindCount && kinds[k].assign
}

// IsStacked reports whether nodes of this kind only live on the stack.
func (k Kind) IsStacked() bool {
	return k < kindCount && kinds[k].stacked
}

// source says where a node's operand comes from.
type source uint8

const (
	srcFixed source = iota // fixed at construction
	srcFunc                // returned by a function at match time
	srcVar                 // read from a variable at match time
)

// Operand is the argument of a class or integer node: a value fixed at
// construction, a function evaluated at match time, or a variable read at
// match time.
type Operand struct {
	src   source
	set   charset.Set
	n     int
	fn    func() any
	intFn func() int
	v     *Var
}

// SetOperand returns a fixed character-class operand.
func SetOperand(s charset.Set) Operand {
	return Operand{src: srcFixed, set: s}
}

// SetFuncOperand returns a class operand computed at match time. fn must
// return a string or a charset.Set.
func SetFuncOperand(fn func() any) Operand {
	return Operand{src: srcFunc, fn: fn}
}

// IntOperand returns a fixed integer operand.
func IntOperand(n int) Operand {
	return Operand{src: srcFixed, n: n}
}

// IntFuncOperand returns an integer operand computed at match time.
func IntFuncOperand(fn func() int) Operand {
	return Operand{src: srcFunc, intFn: fn}
}

// VarOperand returns an operand read from v at match time.
func VarOperand(v *Var) Operand {
	return Operand{src: srcVar, v: v}
}

// Target receives the text matched by an assignment wrapper or the cursor
// reported by KindCursor: either a callback or a variable.
type Target struct {
	text   func(string)
	cursor func(int)
	v      *Var
}

// FuncTarget returns a target that calls fn with the matched text.
func FuncTarget(fn func(string)) Target {
	return Target{text: fn}
}

// CursorTarget returns a target that calls fn with the cursor offset.
func CursorTarget(fn func(int)) Target {
	return Target{cursor: fn}
}

// VarTarget returns a target that stores into v.
func VarTarget(v *Var) Target {
	return Target{v: v}
}

// Node is one element of a pattern graph.
//
// Nodes are values inside a Graph arena; successor and alternate references
// are arena indices, with EOP for "end of pattern". A node's kind decides
// which payload fields are meaningful.
type Node struct {
	index NodeID
	kind  Kind
	succ  NodeID
	alt   NodeID

	// simple is set when the node always consumes at least one code point
	// and never pushes history, so arbno may use the simple loop.
	simple bool

	runes  []rune // KindChar, KindString
	op     Operand
	n      int // KindArbnoY: stack entries one iteration needs
	fn     func() any
	target Target
}

// Index returns the node's 1-based arena index
func (n *Node) Index() NodeID {
	return n.index
}

// Kind returns the node's kind
func (n *Node) Kind() Kind {
	return n.kind
}

// Succ returns the successor reference (EOP if terminal)
func (n *Node) Succ() NodeID {
	return n.succ
}

// Alt returns the alternate reference for kinds that have one.
// Returns EOP for other kinds.
func (n *Node) Alt() NodeID {
	if n.kind.HasAlt() {
		return n.alt
	}
	return EOP
}

// Simple reports whether the node is safe for the simple arbno loop
func (n *Node) Simple() bool {
	return n.simple
}

// Runes returns the literal of a KindChar or KindString node.
// The slice must not be modified.
func (n *Node) Runes() []rune {
	return n.runes
}

// FixedSet returns the character class of a class node whose operand was
// fixed at construction. The second result is false for any other node.
func (n *Node) FixedSet() (charset.Set, bool) {
	switch n.kind {
	case KindAny, KindNotAny, KindSpan, KindNSpan, KindBreak, KindBreakX:
		if n.op.src == srcFixed {
			return n.op.set, true
		}
	}
	return charset.Set{}, false
}

// Data returns a short description of the node's payload for listings.
func (n *Node) Data() string {
	switch n.kind {
	case KindChar, KindString:
		return fmt.Sprintf("%q", string(n.runes))
	case KindAny, KindNotAny, KindSpan, KindNSpan, KindBreak, KindBreakX,
		KindLen, KindPos, KindRPos, KindTab, KindRTab:
		return n.op.describe()
	case KindArbnoY:
		return fmt.Sprintf("stack %d", n.n)
	case KindDeref:
		return n.op.v.String()
	case KindCall:
		return "func"
	case KindImm, KindOnMatch, KindCursor:
		return n.target.describe()
	}
	return ""
}

func (o Operand) describe() string {
	switch o.src {
	case srcFunc:
		return "func"
	case srcVar:
		return o.v.String()
	}
	if o.set.Len() != 0 || o.set.IsPredicate() {
		return fmt.Sprintf("%q", o.set.String())
	}
	return fmt.Sprintf("%d", o.n)
}

func (t Target) describe() string {
	if t.v != nil {
		return t.v.String()
	}
	return "func"
}

// String returns a human-readable representation of the node
func (n *Node) String() string {
	s := fmt.Sprintf("Node(%d, %s", n.index, n.kind)
	if d := n.Data(); d != "" {
		s += " " + d
	}
	if n.kind.HasAlt() {
		return fmt.Sprintf("%s -> %d | %d)", s, n.succ, n.alt)
	}
	return fmt.Sprintf("%s -> %d)", s, n.succ)
}
