package engine

// Composition never modifies its operands: every combinator builds a new
// arena from copies of the operand nodes, renumbered so that referenced
// nodes keep lower indices than the nodes referencing them.

// Stack entries pushed by the bracket wrappers beyond the operand's own.
const (
	stackArbno  = 3 // X stacks E; E stacks the region marker and R_Remove
	stackAssign = 3 // E stacks two; Imm/OnMatch stacks at most one more
	stackFenced = 1 // E's region collapses to one Fence_Y entry
)

// Concat returns the graph matching a followed by b.
//
// b's nodes keep their indices; a's nodes follow, shifted past b, with
// every EOP reference in a redirected to b's root. Repetition closers in a
// have their per-iteration stack count raised by b's budget, so the
// headroom check made after each iteration also covers what follows the
// repetition.
func Concat(a, b *Graph) *Graph {
	if len(a.nodes) == 0 {
		return b
	}
	if len(b.nodes) == 0 {
		return a
	}
	m := b.Root()
	nodes := make([]Node, 0, len(a.nodes)+len(b.nodes))
	nodes = append(nodes, b.nodes...)
	nodes = appendRemapped(nodes, a, m, m, b.stack)
	return &Graph{nodes: nodes, stack: a.stack + b.stack}
}

// Alternate returns the graph matching l, or r if l fails.
//
// r's nodes come first, then l's shifted past them, then the alternation
// node whose successor is l's root and whose alternate is r's root. The
// alternation node is the root and carries the highest index.
func Alternate(l, r *Graph) *Graph {
	m := r.Root()
	nodes := make([]Node, 0, len(l.nodes)+len(r.nodes)+1)
	nodes = append(nodes, r.nodes...)
	nodes = appendRemapped(nodes, l, m, EOP, 0)

	succ := EOP
	if len(l.nodes) > 0 {
		succ = l.Root() + m
	}
	id := NodeID(len(nodes) + 1) //nolint:gosec // arena size checked by Root
	nodes = append(nodes, Node{index: id, kind: KindAlt, succ: succ, alt: m})
	return &Graph{nodes: nodes, stack: max(l.stack, r.stack) + 1}
}

// Arbno returns the graph matching zero or more repetitions of p, fewest
// first.
//
// When p's root always consumes input and p pushes no history, the simple
// loop is used:
//
//	S -> (successor)
//	.
//	P -> S
//
// Otherwise each iteration runs in a region so that a null iteration can be
// detected and rejected, and the stack headroom is checked before the next
// one:
//
//	X -> (successor)
//	.
//	E -> P -> Y -> X
func Arbno(p *Graph) *Graph {
	n := p.Root()
	if p.stack == 0 && len(p.nodes) > 0 && p.nodes[n-1].simple {
		nodes := make([]Node, 0, len(p.nodes)+1)
		s := n + 1
		nodes = appendRemapped(nodes, p, 0, s, 0)
		nodes = append(nodes, Node{index: s, kind: KindArbnoS, succ: EOP, alt: n})
		return &Graph{nodes: nodes, stack: 0}
	}

	y, e, x := n+1, n+2, n+3
	nodes := make([]Node, 0, len(p.nodes)+3)
	nodes = appendRemapped(nodes, p, 0, y, 0)
	enter := y
	if n != EOP {
		enter = n
	}
	nodes = append(nodes,
		Node{index: y, kind: KindArbnoY, succ: x, n: p.stack + stackArbno},
		Node{index: e, kind: KindREnter, succ: enter},
		Node{index: x, kind: KindArbnoX, succ: EOP, alt: e},
	)
	return &Graph{nodes: nodes, stack: p.stack + stackArbno}
}

// bracket wraps p between a region-enter node E and the closing node a:
//
//	E -> P -> A -> (successor)
//
// p's nodes keep their indices; A is n+1 and E (the root) is n+2.
func bracket(p *Graph, a Node, stack int) *Graph {
	n := p.Root()
	ai, ei := n+1, n+2
	nodes := make([]Node, 0, len(p.nodes)+2)
	nodes = appendRemapped(nodes, p, 0, ai, 0)
	enter := ai
	if n != EOP {
		enter = n
	}
	a.index, a.succ = ai, EOP
	nodes = append(nodes, a, Node{index: ei, kind: KindREnter, succ: enter})
	return &Graph{nodes: nodes, stack: stack}
}

// Imm returns p wrapped so that, each time p matches, the matched text is
// delivered to t at once, even if the overall match later fails.
func Imm(p *Graph, t Target) *Graph {
	if t.text == nil && t.v == nil {
		panic(&UsageError{Op: "imm", Got: nil, Err: ErrNeedTarget})
	}
	return bracket(p, Node{kind: KindImm, target: t}, p.stack+stackAssign)
}

// OnMatch returns p wrapped so that the text p matched is delivered to t
// only if the overall match succeeds.
func OnMatch(p *Graph, t Target) *Graph {
	if t.text == nil && t.v == nil {
		panic(&UsageError{Op: "onmatch", Got: nil, Err: ErrNeedTarget})
	}
	return bracket(p, Node{kind: KindOnMatch, target: t}, p.stack+stackAssign)
}

// FenceOver returns p wrapped so that once p has matched, backtracking does
// not look for alternatives inside p: a later failure skips past it.
func FenceOver(p *Graph) *Graph {
	return bracket(p, Node{kind: KindFenceX}, p.stack+stackFenced)
}
