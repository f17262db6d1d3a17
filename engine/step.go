package engine

import (
	"github.com/coregx/snopat/charset"
	"github.com/coregx/snopat/internal/conv"
)

// step attempts one match step at node nd.
//
//nolint:gocyclo,cyclop // one arm per node kind
func (m *Machine) step(nd *Node) status {
	switch nd.kind {
	case KindNull:
		return stSucceed

	case KindChar:
		if m.cursor < m.length && m.subject[m.cursor] == nd.runes[0] {
			m.cursor++
			return stSucceed
		}
		return stFail

	case KindString:
		return m.matchRunes(nd.runes)

	case KindCall:
		return m.dynamic(nd, nd.fn(), "function")

	case KindDeref:
		return m.dynamic(nd, nd.op.v.Get(), nd.op.v.Name())

	case KindAbort:
		return stNoMatch

	case KindFail:
		return stFail

	case KindSucceed:
		if !m.push(ref{g: m.g, id: nd.index}) {
			return m.overflow(nd.index, nd.kind)
		}
		return stSucceed

	case KindFence:
		if !m.push(refAbort) {
			return m.overflow(nd.index, nd.kind)
		}
		return stSucceed

	case KindRem:
		m.cursor = m.length
		return stSucceed

	case KindArbX, KindAlt, KindArbnoS, KindArbnoX:
		// try the successor first, the alternate on backtrack
		if !m.push(ref{g: m.g, id: nd.alt}) {
			return m.overflow(nd.index, nd.kind)
		}
		m.node = nd.succ
		return stContinue

	case KindArbY:
		if m.cursor < m.length {
			m.cursor++
			if !m.push(ref{g: m.g, id: nd.index}) {
				return m.overflow(nd.index, nd.kind)
			}
			return stSucceed
		}
		return stFail

	case KindArbnoY:
		s := m.stack
		null := m.cursor == s.at(s.base-1).cursor
		if !m.popRegion() {
			return m.overflow(nd.index, nd.kind)
		}
		if null {
			return stFail
		}
		if !s.room(nd.n) {
			return m.overflow(nd.index, nd.kind)
		}
		return stSucceed

	case KindBal:
		return m.bal(nd)

	case KindAny, KindNotAny, KindSpan, KindNSpan, KindBreak, KindBreakX:
		set, ok := m.classSet(nd)
		if !ok {
			return stError
		}
		return m.class(nd.kind, set)

	case KindBreakXX:
		m.cursor++
		return stSucceed

	case KindLen, KindPos, KindRPos, KindTab, KindRTab:
		n, ok := m.intValue(nd)
		if !ok {
			return stError
		}
		return m.position(nd.kind, n)

	case KindCursor:
		if nd.target.cursor != nil {
			nd.target.cursor(m.cursor)
		} else {
			nd.target.v.Set(m.cursor)
		}
		return stSucceed

	case KindREnter:
		if !m.pushRegion(ref{}) {
			return m.overflow(nd.index, nd.kind)
		}
		return stSucceed

	case KindImm:
		s := m.stack
		start := s.at(s.base - 1).cursor
		deliver(nd.target, string(m.subject[start:m.cursor]))
		if !m.popRegion() {
			return m.overflow(nd.index, nd.kind)
		}
		return stSucceed

	case KindOnMatch:
		s := m.stack
		s.at(s.base - 1).node = ref{g: m.g, id: nd.index}
		if !m.push(refAssign) || !m.popRegion() {
			return m.overflow(nd.index, nd.kind)
		}
		m.assignOnMatch = true
		return stSucceed

	case KindFenceX:
		s := m.stack
		if !s.room(1) {
			return m.overflow(nd.index, nd.kind)
		}
		s.ptr++
		s.put(s.ptr, s.base, refFenceY)
		s.base = s.at(s.base).cursor
		m.regionLevel--
		return stSucceed

	// Stack-only kinds. Their entries hold an encoded stack index in the
	// cursor field, except Assign and Unanchored.

	case KindRRemove:
		s := m.stack
		s.base = m.cursor
		s.ptr-- // the region marker underneath
		m.regionLevel--
		return stFail

	case KindRRestore:
		m.stack.base = m.cursor
		m.regionLevel++
		return stFail

	case KindAssign:
		// the deferred assignment is cancelled by backtracking
		return stFail

	case KindFenceY:
		// strip everything the fenced pattern stacked, and its region
		m.stack.ptr = m.cursor - 2
		return stFail

	case KindUnanchored:
		return m.slide()
	}

	m.err = &MatchError{Node: nd.index, Kind: nd.kind, Err: ErrBadGraph}
	return stError
}

func (m *Machine) matchRunes(runes []rune) status {
	if m.length-m.cursor < len(runes) {
		return stFail
	}
	for i, r := range runes {
		if m.subject[m.cursor+i] != r {
			return stFail
		}
	}
	m.cursor += len(runes)
	return stSucceed
}

// dynamic handles the value produced by a call or variable node: a string
// is matched literally, a bool or integer succeeds or fails in place by its
// truth, and a compiled pattern is matched as a nested pattern in a new
// region.
func (m *Machine) dynamic(nd *Node, x any, from string) status {
	switch v := x.(type) {
	case string:
		return m.matchRunes([]rune(v))
	case bool:
		if v {
			return stSucceed
		}
		return stFail
	case Compiled:
		g := v.Graph()
		if g == nil {
			break
		}
		if !m.stack.room(g.Stack()) || !m.pushRegion(ref{g: m.g, id: nd.succ}) {
			return m.overflow(nd.index, nd.kind)
		}
		m.trace("nested pattern", "node", nd.index, "cursor", m.cursor)
		m.g = g
		m.node = g.Root()
		return stContinue
	default:
		if truth, ok := conv.Truth(x); ok {
			if truth {
				return stSucceed
			}
			return stFail
		}
	}
	m.err = &UsageError{Op: "pat", Got: x, Source: from, Err: ErrBadResult}
	return stError
}

// bal scans one balanced unit: a non-parenthesis code point or a
// parenthesized group. Each success restacks the node so a retry extends
// the match by another unit.
func (m *Machine) bal(nd *Node) status {
	if m.cursor >= m.length || m.subject[m.cursor] == ')' {
		return stFail
	}
	if m.subject[m.cursor] == '(' {
		depth := 1
		for depth > 0 {
			m.cursor++
			if m.cursor >= m.length {
				return stFail
			}
			switch m.subject[m.cursor] {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
	}
	m.cursor++
	if !m.push(ref{g: m.g, id: nd.index}) {
		return m.overflow(nd.index, nd.kind)
	}
	return stSucceed
}

func (m *Machine) class(kind Kind, set charset.Set) status {
	c := m.cursor
	switch kind {
	case KindAny:
		if c < m.length && set.Contains(m.subject[c]) {
			m.cursor++
			return stSucceed
		}
		return stFail

	case KindNotAny:
		if c < m.length && !set.Contains(m.subject[c]) {
			m.cursor++
			return stSucceed
		}
		return stFail

	case KindSpan, KindNSpan:
		for c < m.length && set.Contains(m.subject[c]) {
			c++
		}
		if c == m.cursor && kind == KindSpan {
			return stFail
		}
		m.cursor = c
		return stSucceed

	default: // KindBreak, KindBreakX
		for c < m.length && !set.Contains(m.subject[c]) {
			c++
		}
		if c == m.length {
			return stFail
		}
		m.cursor = c
		return stSucceed
	}
}

func (m *Machine) position(kind Kind, n int) status {
	switch kind {
	case KindLen:
		if n > m.length-m.cursor {
			return stFail
		}
		m.cursor += n
		return stSucceed

	case KindPos:
		if m.cursor == n {
			return stSucceed
		}
		return stFail

	case KindRPos:
		if m.cursor == m.length-n {
			return stSucceed
		}
		return stFail

	case KindTab:
		if m.cursor <= n && n <= m.length {
			m.cursor = n
			return stSucceed
		}
		return stFail

	default: // KindRTab
		if m.cursor <= m.length-n {
			m.cursor = m.length - n
			return stSucceed
		}
		return stFail
	}
}

// classSet resolves the character class of nd.
func (m *Machine) classSet(nd *Node) (charset.Set, bool) {
	op := &nd.op
	var (
		x    any
		from string
	)
	switch op.src {
	case srcFixed:
		return op.set, true
	case srcFunc:
		x, from = op.fn(), "function"
	default:
		x, from = op.v.Get(), op.v.Name()
	}

	switch s := x.(type) {
	case string:
		return charset.FromString(s), true
	case charset.Set:
		return s, true
	case []rune:
		return charset.FromRunes(s...), true
	}
	m.err = &UsageError{Op: nd.kind.String(), Got: x, Source: from, Err: ErrNeedSet}
	return charset.Set{}, false
}

// intValue resolves the integer operand of nd.
func (m *Machine) intValue(nd *Node) (int, bool) {
	op := &nd.op
	switch op.src {
	case srcFixed:
		return op.n, true
	case srcFunc:
		n := op.intFn()
		if n < 0 {
			m.err = &UsageError{Op: nd.kind.String(), Got: n, Source: "function", Err: ErrNeedNonNegative}
			return 0, false
		}
		return n, true
	}
	x := op.v.Get()
	n, ok := conv.NonNegative(x)
	if !ok {
		m.err = &UsageError{Op: nd.kind.String(), Got: x, Source: op.v.Name(), Err: ErrNeedNonNegative}
		return 0, false
	}
	return n, true
}
