package engine

// ref addresses a node in a specific graph. Matches may cross graphs when
// a call or variable yields another pattern, so stack entries carry the
// graph along with the index.
type ref struct {
	g  *Graph
	id NodeID
}

// entry is one history stack entry: the cursor to restore (or, for region
// bookkeeping entries, an encoded stack index) and the node to resume at.
type entry struct {
	cursor int
	node   ref
}

// Stack is the backtracking history.
//
// Indices are negative and grow toward zero: first is the lowest usable
// index and last is -1. The entry at first is never used, so that popping
// the bottom entry leaves ptr in range; init (first+1) holds the anchoring
// sentinel. ptr is the top entry in use and base is the first entry of the
// innermost region.
type Stack struct {
	arr   []entry
	size  int
	first int
	last  int
	init  int
	ptr   int
	base  int
}

// NewStack allocates a stack with room for size entries.
func NewStack(size int) *Stack {
	s := &Stack{
		arr:   make([]entry, size),
		size:  size,
		first: -size,
		last:  -1,
	}
	s.init = s.first + 1
	s.ptr = s.init
	s.base = s.init
	return s
}

// Cap returns the number of entries the stack can hold
func (s *Stack) Cap() int {
	return s.size
}

// Depth returns the number of entries in use above the sentinel
func (s *Stack) Depth() int {
	return s.ptr - s.init
}

func (s *Stack) at(n int) *entry {
	return &s.arr[s.size+n]
}

func (s *Stack) put(n, cursor int, node ref) {
	e := s.at(n)
	e.cursor = cursor
	e.node = node
}

// room reports whether n more entries fit.
func (s *Stack) room(n int) bool {
	return s.ptr+n <= s.last
}

// system nodes live only on the stack; they share this graph.
var sys = &Graph{
	nodes: []Node{
		{index: 1, kind: KindAbort},
		{index: 2, kind: KindRRemove},
		{index: 3, kind: KindRRestore},
		{index: 4, kind: KindAssign},
		{index: 5, kind: KindFenceY},
		{index: 6, kind: KindUnanchored},
	},
}

var (
	refAbort      = ref{g: sys, id: 1}
	refRRemove    = ref{g: sys, id: 2}
	refRRestore   = ref{g: sys, id: 3}
	refAssign     = ref{g: sys, id: 4}
	refFenceY     = ref{g: sys, id: 5}
	refUnanchored = ref{g: sys, id: 6}
)
