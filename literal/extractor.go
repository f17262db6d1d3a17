package literal

import (
	"github.com/coregx/snopat/engine"
	"github.com/coregx/snopat/internal/conv"
	"github.com/coregx/snopat/internal/sparse"
)

// ExtractorConfig configures literal extraction limits.
//
// These limits prevent excessive extraction from complex patterns:
//   - MaxLiterals: prevents memory bloat from wide alternations
//   - MaxLiteralLen: prevents extracting very long literals
//   - MaxClassSize: prevents expanding large character classes
//
// Example:
//
//	config := literal.ExtractorConfig{
//	    MaxLiterals:   64,
//	    MaxLiteralLen: 64,
//	    MaxClassSize:  10,
//	}
//	extractor := literal.New(config)
type ExtractorConfig struct {
	// MaxLiterals limits the number of literals extracted. A pattern with
	// more possible starts gets no prefilter at all. Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the length of each extracted literal. Longer
	// literals are cut and marked incomplete. Default: 64.
	MaxLiteralLen int

	// MaxClassSize limits the size of character classes to expand.
	// Any("abc") is expanded to "a", "b" and "c"; larger classes stop
	// extraction. Default: 10.
	MaxClassSize int
}

// DefaultConfig returns the default extractor configuration.
//
// Example:
//
//	extractor := literal.New(literal.DefaultConfig())
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
	}
}

// Extractor extracts prefix literals from pattern graphs.
//
// The walk starts at the root and follows every path until it reaches a
// node that must consume a known literal:
//   - KindChar/KindString: the literal, joined with directly following literals
//   - KindAny/KindSpan: one literal per code point of a small fixed class
//   - KindAlt and the repetition heads: both successor and alternate
//   - zero-width nodes (null, pos, region and fence wrappers): successor
//
// Any path that reaches the end of pattern, or a node whose first code point
// is unknown (arb, bal, calls, variables, large classes), makes the pattern
// unsuitable for prefiltering and extraction returns nil. So does an
// immediate assignment, cursor report, fence or succeed ahead of the first
// literal: their effect at a start position that cannot match would be
// lost if the start were skipped.
//
// Example:
//
//	g := engine.Alternate(engine.Literal([]rune("day")), engine.Literal([]rune("night")))
//	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(g)
//	// prefixes = ["day", "night"]
type Extractor struct {
	config ExtractorConfig
}

// New creates a new Extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// ExtractPrefixes returns the literals one of which begins every match of g,
// or nil when no such finite set exists within the configured limits.
func (e *Extractor) ExtractPrefixes(g *engine.Graph) *Seq {
	if g == nil || g.Len() == 0 {
		return nil
	}

	seen := sparse.New(conv.IntToUint32(g.Len() + 1))
	work := []item{{id: g.Root(), exact: true}}
	var lits []Literal

	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]
		id := it.id
		if id == engine.EOP {
			// a path that matches without consuming a literal
			return nil
		}
		if !seen.Insert(uint32(id)) {
			continue
		}

		nd := g.Node(id)
		switch nd.Kind() {
		case engine.KindChar, engine.KindString:
			lit := e.joinLiterals(g, nd)
			lit.Complete = lit.Complete && it.exact
			lits = append(lits, lit)

		case engine.KindAny, engine.KindSpan:
			set, ok := nd.FixedSet()
			if !ok || set.IsPredicate() || set.Len() == 0 || set.Len() > e.config.MaxClassSize {
				return nil
			}
			for _, r := range set.Runes() {
				lits = append(lits, NewLiteral([]rune{r}, false))
			}

		case engine.KindAlt, engine.KindArbnoS, engine.KindArbnoX:
			work = append(work, item{nd.Alt(), it.exact}, item{nd.Succ(), it.exact})

		case engine.KindNull, engine.KindREnter:
			work = append(work, item{nd.Succ(), it.exact})

		case engine.KindOnMatch, engine.KindFenceX, engine.KindPos, engine.KindRPos, engine.KindArbnoY:
			// the literal alone no longer decides the match
			work = append(work, item{nd.Succ(), false})

		default:
			return nil
		}

		if len(lits) > e.config.MaxLiterals {
			return nil
		}
	}

	if len(lits) == 0 {
		return nil
	}
	return NewSeq(lits...)
}

// item is a node still to visit. exact is false once the path to it has
// passed a node that constrains the match beyond its literals.
type item struct {
	id    engine.NodeID
	exact bool
}

// joinLiterals returns the literal of nd extended by the literal nodes that
// directly follow it, cut to MaxLiteralLen.
func (e *Extractor) joinLiterals(g *engine.Graph, nd *engine.Node) Literal {
	runes := append([]rune(nil), nd.Runes()...)
	next := nd.Succ()
	for next != engine.EOP && len(runes) < e.config.MaxLiteralLen {
		succ := g.Node(next)
		if k := succ.Kind(); k != engine.KindChar && k != engine.KindString {
			break
		}
		runes = append(runes, succ.Runes()...)
		next = succ.Succ()
	}

	if len(runes) > e.config.MaxLiteralLen {
		return NewLiteral(runes[:e.config.MaxLiteralLen], false)
	}
	return NewLiteral(runes, next == engine.EOP)
}
