package engine

import (
	"context"
	"log/slog"
)

// status is the outcome of one interpreter step.
type status uint8

const (
	// stSucceed: the node matched; advance to its successor
	stSucceed status = iota

	// stFail: the node failed; resume from the top history entry
	stFail

	// stContinue: the node set the next node itself
	stContinue

	// stMatch: the whole pattern matched
	stMatch

	// stNoMatch: the whole pattern failed
	stNoMatch

	// stError: the attempt was aborted; the error is in Machine.err
	stError
)

// Candidates is an optional oracle of start positions for unanchored
// matching. Next returns the first offset >= from at which the pattern can
// possibly start, or -1 if there is none.
//
// An oracle is only sound for patterns whose every start is decided by a
// side-effect free test of the subject.
type Candidates interface {
	Next(from int) int
}

// Options configures one match attempt.
type Options struct {
	// Anchored requires the match to start at offset 0.
	Anchored bool

	// StackSize is the history stack capacity. It is raised to twice the
	// pattern's stack budget when smaller.
	StackSize int

	// Candidates, if set, restricts the start positions of an unanchored
	// match.
	Candidates Candidates

	// Logger, if set, receives a Debug record for every step.
	Logger *slog.Logger
}

// minStack is the smallest usable stack: the unused bottom entry plus the
// anchoring sentinel.
const minStack = 2

// Machine is the interpreter state of one match attempt. It is not
// reusable and not safe for concurrent use.
type Machine struct {
	anchored bool
	subject  []rune
	length   int
	cursor   int

	root *Graph
	g    *Graph // graph of the current node
	node NodeID

	stack       *Stack
	regionLevel int // open regions, reported in the step trace

	// assignOnMatch is set once a deferred assignment has been stacked;
	// the stack is then scanned on success.
	assignOnMatch bool

	cands Candidates
	log   *slog.Logger
	err   error

	start int
	stop  int
}

// NewMachine prepares a match of g against subject.
func NewMachine(g *Graph, subject []rune, opts Options) *Machine {
	size := max(opts.StackSize, 2*g.Stack(), minStack)
	return &Machine{
		anchored: opts.Anchored,
		subject:  subject,
		length:   len(subject),
		root:     g,
		g:        g,
		node:     g.Root(),
		stack:    NewStack(size),
		cands:    opts.Candidates,
		log:      opts.Logger,
	}
}

// Run executes the attempt. It returns true on a match, false if the
// subject does not match, and an error if the attempt was aborted by a
// usage error (a callback or variable produced an unusable value) or a
// fatal engine error (stack overflow, broken graph).
//
// Deferred assignments are performed before Run returns true.
func (m *Machine) Run() (bool, error) {
	if !m.begin() {
		m.trace("no candidate start")
		return false, nil
	}

	for {
		var (
			st   status
			succ NodeID
		)
		if m.node == EOP {
			st = m.endOfPattern()
		} else {
			nd := &m.g.nodes[m.node-1]
			if m.log != nil {
				m.log.Debug("step", "node", nd.index, "kind", nd.kind, "cursor", m.cursor, "depth", m.stack.Depth(), "region", m.regionLevel)
			}
			succ = nd.succ
			st = m.step(nd)
		}

		switch st {
		case stSucceed:
			m.node = succ
		case stFail:
			m.pop()
		case stContinue:
		case stMatch:
			m.finish()
			return true, nil
		case stNoMatch:
			m.trace("match failed")
			return false, nil
		case stError:
			m.trace("match aborted", "error", m.err)
			return false, m.err
		}
	}
}

// Span returns the matched code-point range [start, stop) after a
// successful Run.
func (m *Machine) Span() (start, stop int) {
	return m.start, m.stop
}

// begin stacks the anchoring sentinel.
func (m *Machine) begin() bool {
	s := m.stack
	if m.anchored {
		s.put(s.init, 0, refAbort)
		return true
	}
	start := 0
	if m.cands != nil {
		start = m.cands.Next(0)
		if start < 0 {
			return false
		}
	}
	m.cursor = start
	s.put(s.init, start, refUnanchored)
	return true
}

// slide moves the start of an unanchored match. The cursor holds the
// previous start.
func (m *Machine) slide() status {
	next := m.cursor + 1
	if next > m.length {
		return stNoMatch
	}
	if m.cands != nil {
		if next = m.cands.Next(next); next < 0 {
			return stNoMatch
		}
	}
	m.cursor = next
	if !m.push(refUnanchored) {
		return m.overflow(EOP, KindUnanchored)
	}
	m.g = m.root
	m.node = m.root.Root()
	return stContinue
}

// endOfPattern is reached at EOP. At the outer level the match is done;
// inside a nested pattern the outer continuation saved at region entry is
// resumed.
func (m *Machine) endOfPattern() status {
	s := m.stack
	if s.base == s.init {
		return stMatch
	}
	m.trace("nested pattern done", "cursor", m.cursor)
	e := s.at(s.base - 1)
	m.g, m.node = e.node.g, e.node.id
	if !m.popRegion() {
		return m.overflow(EOP, KindCall)
	}
	return stContinue
}

// finish records the span and performs deferred assignments, oldest first.
func (m *Machine) finish() {
	s := m.stack
	m.start = s.at(s.init).cursor
	m.stop = m.cursor
	m.trace("match succeeded", "start", m.start, "stop", m.stop)
	if !m.assignOnMatch {
		return
	}
	for i := s.init; i <= s.ptr; i++ {
		e := s.at(i)
		if e.node != refAssign {
			continue
		}
		inner := s.at(i + 1).cursor
		special := s.at(inner - 1)
		nd := special.node.g.Node(special.node.id)
		deliver(nd.target, string(m.subject[special.cursor:e.cursor]))
	}
}

// pop resumes from the top history entry.
func (m *Machine) pop() {
	s := m.stack
	e := s.at(s.ptr)
	s.ptr--
	m.cursor = e.cursor
	m.g, m.node = e.node.g, e.node.id
}

// push stacks node at the current cursor. It reports false on overflow.
func (m *Machine) push(node ref) bool {
	s := m.stack
	if !s.room(1) {
		return false
	}
	s.ptr++
	s.put(s.ptr, m.cursor, node)
	return true
}

// pushRegion opens a region: a marker entry holding the cursor and the
// given continuation, then an R_Remove entry holding the outer base, which
// becomes the new base.
func (m *Machine) pushRegion(cont ref) bool {
	s := m.stack
	if !s.room(2) {
		return false
	}
	m.regionLevel++
	s.put(s.ptr+1, m.cursor, cont)
	s.ptr += 2
	s.put(s.ptr, s.base, refRRemove)
	s.base = s.ptr
	return true
}

// popRegion closes the innermost region after its pattern matched. An
// empty region is dropped; otherwise an R_Restore entry is stacked so that
// alternatives inside the region can still be sought.
func (m *Machine) popRegion() bool {
	s := m.stack
	m.regionLevel--
	if s.ptr == s.base {
		s.ptr -= 2
		s.base = s.at(s.ptr + 2).cursor
		return true
	}
	if !s.room(1) {
		return false
	}
	s.ptr++
	s.put(s.ptr, s.base, refRRestore)
	s.base = s.at(s.base).cursor
	return true
}

func (m *Machine) overflow(id NodeID, kind Kind) status {
	m.err = &MatchError{Node: id, Kind: kind, Err: ErrStackOverflow}
	return stError
}

func (m *Machine) trace(msg string, args ...any) {
	if m.log != nil {
		m.log.Log(context.Background(), slog.LevelDebug, msg, args...)
	}
}

// deliver hands text to a callback or variable.
func deliver(t Target, text string) {
	if t.text != nil {
		t.text(text)
		return
	}
	t.v.Set(text)
}
