package snopat

import (
	"sync"

	"github.com/coregx/snopat/engine"
	"github.com/coregx/snopat/literal"
	"github.com/coregx/snopat/prefilter"
)

// Pattern is a compiled, immutable pattern.
//
// Every combinator copies its operands, so a Pattern may be reused freely:
// in any number of matches, inside other patterns, and from multiple
// goroutines at once.
//
// The nil *Pattern is the null pattern: it matches the empty string and is
// the identity of concatenation.
//
// Example:
//
//	greeting := snopat.Alternate(snopat.Lit("hello"), snopat.Lit("hi"))
//	p := greeting.And(snopat.Lit(" "), snopat.Rem())
//	m, _ := p.MatchAnchored("hi there")
//	fmt.Println(m.Matched()) // "hi there"
type Pattern struct {
	g *engine.Graph

	pfOnce sync.Once
	pf     prefilter.Prefilter
}

func newPattern(g *engine.Graph) *Pattern {
	return &Pattern{g: g}
}

// Graph returns the compiled node graph. It implements engine.Compiled, so
// a *Pattern returned by a Call or held in a Var is matched as a nested
// pattern.
func (p *Pattern) Graph() *engine.Graph {
	if p == nil {
		return engine.Empty()
	}
	return p.g
}

// Stack returns the pattern's stack budget: the number of history entries
// one traversal may push, counting one iteration of each repetition.
func (p *Pattern) Stack() int {
	return p.Graph().Stack()
}

// Nodes returns a read-only listing of the pattern's nodes in index order.
func (p *Pattern) Nodes() []engine.NodeInfo {
	return p.Graph().Nodes()
}

// prefilter returns the start-position prefilter of the pattern, built on
// first use, or nil if the pattern has no usable leading literals.
func (p *Pattern) prefilter() prefilter.Prefilter {
	if p == nil {
		return nil
	}
	p.pfOnce.Do(func() {
		prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(p.g)
		p.pf = prefilter.NewBuilder(prefixes).Build()
	})
	return p.pf
}

// Concat returns the concatenation of its operands: p, then each of rest in
// order.
func Concat(p *Pattern, rest ...*Pattern) *Pattern {
	g := p.Graph()
	for _, r := range rest {
		g = engine.Concat(g, r.Graph())
	}
	return newPattern(g)
}

// Alternate returns the ordered alternation of its operands: p is tried
// first, then each of rest in order. Alternate(a, b, c) is (a | b) | c.
func Alternate(p *Pattern, rest ...*Pattern) *Pattern {
	g := p.Graph()
	for _, r := range rest {
		g = engine.Alternate(g, r.Graph())
	}
	return newPattern(g)
}

// Arbno matches zero or more repetitions of p, trying fewer first.
//
// An iteration that matches the empty string ends the repetition, so
// Arbno(Null()) and Arbno(Len(0)) match the empty string and terminate.
func Arbno(p *Pattern) *Pattern {
	return newPattern(engine.Arbno(p.Graph()))
}

// ArbnoText matches zero or more repetitions of text.
func ArbnoText(text string) *Pattern {
	return Arbno(Lit(text))
}

// FenceOver matches p, then discards the alternatives left inside p: once
// p has matched, backtracking cannot re-enter it, though it can still go
// back past it.
func FenceOver(p *Pattern) *Pattern {
	return newPattern(engine.FenceOver(p.Graph()))
}

// And returns p followed by each of rest. It is Concat(p, rest...).
func (p *Pattern) And(rest ...*Pattern) *Pattern {
	return Concat(p, rest...)
}

// Or returns p with each of rest as later alternatives. It is
// Alternate(p, rest...).
func (p *Pattern) Or(rest ...*Pattern) *Pattern {
	return Alternate(p, rest...)
}

// PrependedBy returns the literal text followed by p.
func (p *Pattern) PrependedBy(text string) *Pattern {
	return Concat(Lit(text), p)
}

// AppendedBy returns p followed by the literal text.
func (p *Pattern) AppendedBy(text string) *Pattern {
	return Concat(p, Lit(text))
}

// Immediate returns a pattern that matches p and calls fn with the text p
// matched, each time p matches. The call happens even if the overall match
// later fails or backtracks into p.
//
// Panics with a *UsageError if fn is nil.
func (p *Pattern) Immediate(fn func(string)) *Pattern {
	return newPattern(engine.Imm(p.Graph(), engine.FuncTarget(fn)))
}

// ImmediateVar is Immediate storing into v.
func (p *Pattern) ImmediateVar(v *Var) *Pattern {
	return newPattern(engine.Imm(p.Graph(), engine.VarTarget(v)))
}

// OnSuccess returns a pattern that matches p and, only if the whole match
// succeeds, calls fn with the text p matched in the successful match.
// Pending calls are made in the order their operands matched.
//
// Panics with a *UsageError if fn is nil.
func (p *Pattern) OnSuccess(fn func(string)) *Pattern {
	return newPattern(engine.OnMatch(p.Graph(), engine.FuncTarget(fn)))
}

// OnSuccessVar is OnSuccess storing into v.
func (p *Pattern) OnSuccessVar(v *Var) *Pattern {
	return newPattern(engine.OnMatch(p.Graph(), engine.VarTarget(v)))
}

// String returns a node listing of the pattern, one node per line.
func (p *Pattern) String() string {
	return p.Graph().String()
}
