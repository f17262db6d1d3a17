package snopat

import (
	"github.com/coregx/snopat/engine"
	"github.com/coregx/snopat/prefilter"
)

// Match is the result of a successful match. It is immutable.
type Match struct {
	subject string
	start   int // code-point offsets
	stop    int
	bstart  int // byte offsets into subject
	bstop   int
}

// Matched returns the matched text.
func (m *Match) Matched() string {
	return m.subject[m.bstart:m.bstop]
}

// Span returns the matched range [start, stop) in code points.
func (m *Match) Span() (start, stop int) {
	return m.start, m.stop
}

// Start returns the code-point offset where the match begins.
func (m *Match) Start() int {
	return m.start
}

// Stop returns the code-point offset just past the match.
func (m *Match) Stop() int {
	return m.stop
}

// Subject returns the subject the match was made against.
func (m *Match) Subject() string {
	return m.subject
}

// Replace returns the subject with the matched text replaced by text.
//
// Example:
//
//	m, _ := snopat.Lit("🌎").MatchUnanchored("hello 🌎!")
//	fmt.Println(m.Replace("world")) // "hello world!"
func (m *Match) Replace(text string) string {
	return m.subject[:m.bstart] + text + m.subject[m.bstop:]
}

// MatchAnchored matches p against subject starting at offset 0.
//
// It returns (nil, nil) if the subject does not match. An error is returned
// only if the match was aborted: a *UsageError when a callback or variable
// produced an unusable value, a *MatchError when the stack overflowed.
func (p *Pattern) MatchAnchored(subject string) (*Match, error) {
	return p.MatchWithConfig(subject, true, DefaultConfig())
}

// MatchUnanchored matches p against subject, trying each start offset in
// turn until one matches.
func (p *Pattern) MatchUnanchored(subject string) (*Match, error) {
	return p.MatchWithConfig(subject, false, DefaultConfig())
}

// MatchAnchoredSize is MatchAnchored with a stack of stackSize entries. A
// stackSize <= 0 selects the default.
func (p *Pattern) MatchAnchoredSize(subject string, stackSize int) (*Match, error) {
	return p.MatchWithConfig(subject, true, sized(stackSize))
}

// MatchUnanchoredSize is MatchUnanchored with a stack of stackSize entries.
// A stackSize <= 0 selects the default.
func (p *Pattern) MatchUnanchoredSize(subject string, stackSize int) (*Match, error) {
	return p.MatchWithConfig(subject, false, sized(stackSize))
}

func sized(stackSize int) Config {
	cfg := DefaultConfig()
	if stackSize > 0 {
		cfg.StackSize = stackSize
	}
	return cfg
}

// MatchWithConfig matches p against subject with an explicit
// configuration. It returns a *ConfigError if cfg is invalid.
func (p *Pattern) MatchWithConfig(subject string, anchored bool, cfg Config) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(subject)
	opts := engine.Options{
		Anchored:  anchored,
		StackSize: max(cfg.StackSize, cfg.MinStackSize),
		Logger:    cfg.Logger,
	}
	if !anchored && cfg.EnablePrefilter {
		if pf := p.prefilter(); pf != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("prefilter", "complete", pf.IsComplete(), "heap_bytes", pf.HeapBytes())
			}
			opts.Candidates = prefilter.Bind(pf, runes)
		}
	}

	m := engine.NewMachine(p.Graph(), runes, opts)
	ok, err := m.Run()
	if err != nil || !ok {
		return nil, err
	}

	start, stop := m.Span()
	bstart, bstop := byteSpan(subject, start, stop)
	return &Match{
		subject: subject,
		start:   start,
		stop:    stop,
		bstart:  bstart,
		bstop:   bstop,
	}, nil
}

// byteSpan converts a code-point range of s to byte offsets.
func byteSpan(s string, start, stop int) (bstart, bstop int) {
	bstart, bstop = len(s), len(s)
	i := 0
	for b := range s {
		if i == start {
			bstart = b
		}
		if i == stop {
			bstop = b
			break
		}
		i++
	}
	return bstart, bstop
}

// MustMatch returns m, panicking if err is not nil. It is meant for
// examples and tests:
//
//	m := snopat.MustMatch(p.MatchAnchored("subject"))
func MustMatch(m *Match, err error) *Match {
	if err != nil {
		panic(err)
	}
	return m
}
