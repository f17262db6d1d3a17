package engine

import (
	"fmt"

	"github.com/coregx/snopat/internal/conv"
	"github.com/coregx/snopat/internal/sparse"
)

// Graph is a compiled pattern: an arena of nodes plus the pattern's stack
// budget.
//
// Node i lives at nodes[i-1]. Composition numbers nodes so that every node
// reachable from another has a lower index than the combinator node that
// references it, and the root is always the highest index. An empty arena
// is the null pattern with root EOP.
//
// A Graph is immutable after construction and may be shared by any number
// of patterns and concurrent matches.
type Graph struct {
	nodes []Node
	stack int
}

// Root returns the entry node of the graph (EOP for the empty graph).
func (g *Graph) Root() NodeID {
	return NodeID(conv.IntToUint32(len(g.nodes)))
}

// Len returns the number of nodes in the arena
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Stack returns the stack budget: the maximum number of history entries
// one traversal of the graph may push, counting one iteration of each
// repetition.
func (g *Graph) Stack() int {
	return g.stack
}

// Node returns the node with the given index.
// Panics if id is EOP or out of range.
func (g *Graph) Node(id NodeID) *Node {
	if id == EOP || int(id) > len(g.nodes) {
		panic(fmt.Sprintf("engine: node %d out of range [1, %d]", id, len(g.nodes)))
	}
	return &g.nodes[id-1]
}

// Graph returns g, so a *Graph can be used where a compiled pattern is
// expected.
func (g *Graph) Graph() *Graph {
	return g
}

// Compiled is implemented by values that wrap a pattern graph. A call or
// variable that yields a Compiled value at match time starts a nested
// match of that graph.
type Compiled interface {
	Graph() *Graph
}

// Refs returns the indices of the nodes reachable from the root, in
// ascending order. The walk uses an explicit work list, so cyclic graphs
// (repetitions) and deep graphs are handled without recursion.
func (g *Graph) Refs() []NodeID {
	n := len(g.nodes)
	if n == 0 {
		return nil
	}
	seen := sparse.New(conv.IntToUint32(n + 1))
	work := []NodeID{g.Root()}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if id == EOP || int(id) > n || !seen.Insert(uint32(id)) {
			continue
		}
		nd := &g.nodes[id-1]
		work = append(work, nd.succ)
		if nd.kind.HasAlt() {
			work = append(work, nd.alt)
		}
	}

	marks := make([]bool, n+1)
	for _, v := range seen.Values() {
		marks[v] = true
	}
	refs := make([]NodeID, 0, seen.Len())
	for i := 1; i <= n; i++ {
		if marks[i] {
			refs = append(refs, NodeID(i)) //nolint:gosec // i <= n checked above
		}
	}
	return refs
}

// Validate checks the arena invariants: every node carries its own index,
// every reference is EOP or in range, no stack-only kind is stored, and
// every node is reachable from the root.
func (g *Graph) Validate() error {
	n := len(g.nodes)
	for i := range g.nodes {
		nd := &g.nodes[i]
		if int(nd.index) != i+1 {
			return fmt.Errorf("%w: node at slot %d has index %d", ErrBadGraph, i+1, nd.index)
		}
		if nd.kind >= kindCount || nd.kind.IsStacked() {
			return fmt.Errorf("%w: node %d has kind %s", ErrBadGraph, nd.index, nd.kind)
		}
		if int(nd.succ) > n || (nd.kind.HasAlt() && int(nd.alt) > n) {
			return fmt.Errorf("%w: node %d references outside the arena", ErrBadGraph, nd.index)
		}
	}
	if refs := g.Refs(); len(refs) != n {
		return fmt.Errorf("%w: %d of %d nodes reachable", ErrBadGraph, len(refs), n)
	}
	return nil
}

// appendRemapped appends copies of src's nodes to dst. Every non-EOP
// reference is shifted by off, every EOP reference is redirected to end,
// and incr is added to the stack count of repetition closers.
func appendRemapped(dst []Node, src *Graph, off NodeID, end NodeID, incr int) []Node {
	for _, nd := range src.nodes {
		nd.index += off
		if nd.succ == EOP {
			nd.succ = end
		} else {
			nd.succ += off
		}
		if nd.kind.HasAlt() {
			if nd.alt == EOP {
				nd.alt = end
			} else {
				nd.alt += off
			}
		}
		if nd.kind == KindArbnoY {
			nd.n += incr
		}
		dst = append(dst, nd)
	}
	return dst
}

// single builds a one-node graph.
func single(stack int, nd Node) *Graph {
	nd.index = 1
	return &Graph{nodes: []Node{nd}, stack: stack}
}

// Successor returns the logical successor of an alternation node: the
// first node on its successor chain whose index lies outside the range
// owned by the left operand. For other kinds it is the plain successor.
func (g *Graph) Successor(id NodeID) NodeID {
	nd := g.Node(id)
	if nd.kind != KindAlt || nd.succ == EOP {
		return nd.succ
	}
	inLeft := nd.succ - nd.alt
	lowest := nd.index - inLeft
	er := nd.succ
	for er != EOP && er >= lowest && er < nd.index {
		er = g.nodes[er-1].succ
	}
	return er
}

// NodeInfo is a read-only view of one node, for listings and dumps.
type NodeInfo struct {
	Index  NodeID
	Kind   Kind
	Succ   NodeID
	Alt    NodeID
	HasAlt bool
	Data   string
}

// Nodes returns a view of every node in index order.
func (g *Graph) Nodes() []NodeInfo {
	infos := make([]NodeInfo, len(g.nodes))
	for i := range g.nodes {
		nd := &g.nodes[i]
		infos[i] = NodeInfo{
			Index:  nd.index,
			Kind:   nd.kind,
			Succ:   nd.succ,
			Alt:    nd.Alt(),
			HasAlt: nd.kind.HasAlt(),
			Data:   nd.Data(),
		}
	}
	return infos
}

// String returns a multi-line listing of the graph, root first.
func (g *Graph) String() string {
	s := fmt.Sprintf("Graph(root %d, stack %d)\n", g.Root(), g.stack)
	for i := len(g.nodes) - 1; i >= 0; i-- {
		s += "  " + g.nodes[i].String() + "\n"
	}
	return s
}
