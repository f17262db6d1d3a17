// Package prefilter provides start-position filtering for unanchored pattern
// matching using extracted prefix literals.
//
// An unanchored match normally restarts the pattern at every code point of
// the subject. When every match must begin with one of a few known literals,
// the positions where none of them occurs can be skipped without running the
// pattern at all.
//
// The package selects a search strategy from the extracted literals:
//   - Single one-byte literal → memchr (bytes.IndexByte)
//   - Single longer literal → memmem (bytes.Index)
//   - Several literals → Aho-Corasick automaton
//
// Example usage:
//
//	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(g)
//	pf := prefilter.NewBuilder(prefixes).Build()
//	if pf != nil {
//	    opts.Candidates = prefilter.Bind(pf, subject)
//	}
package prefilter

import (
	"bytes"
	"sort"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/snopat/engine"
	"github.com/coregx/snopat/literal"
)

// Prefilter finds candidate match starts in UTF-8 text.
//
// A candidate is a position where one of the prefilter literals occurs. It
// does NOT guarantee a match: the pattern still runs from there.
type Prefilter interface {
	// Find returns the byte index of the first candidate at or after start,
	// or -1 if there is none.
	Find(haystack []byte, start int) int

	// IsComplete reports whether a candidate is a whole match by itself:
	// the pattern is exactly one of the literals.
	IsComplete() bool

	// HeapBytes returns the heap memory held by the prefilter.
	HeapBytes() int
}

// Builder constructs the prefilter for a sequence of prefix literals.
//
// Example:
//
//	pf := prefilter.NewBuilder(prefixes).Build()
//	if pf != nil {
//	    pos := pf.Find(haystack, 0)
//	}
type Builder struct {
	prefixes *literal.Seq
}

// NewBuilder creates a new prefilter builder from extracted prefix literals.
// prefixes may be nil, meaning no literals were extracted.
func NewBuilder(prefixes *literal.Seq) *Builder {
	return &Builder{prefixes: prefixes}
}

// Build constructs the best prefilter for the literals, or returns nil if
// no prefilter applies (no literals, or an empty literal that matches
// everywhere).
func (b *Builder) Build() Prefilter {
	return selectPrefilter(b.prefixes)
}

func selectPrefilter(prefixes *literal.Seq) Prefilter {
	if prefixes.IsEmpty() {
		return nil
	}

	seq := prefixes.Clone()
	seq.Minimize()

	needles := make([][]byte, 0, seq.Len())
	complete := true
	for i := 0; i < seq.Len(); i++ {
		lit := seq.Get(i)
		if lit.Len() == 0 {
			return nil
		}
		needles = append(needles, encode(lit.Runes))
		complete = complete && lit.Complete
	}

	if len(needles) == 1 {
		if len(needles[0]) == 1 {
			return &memchrPrefilter{needle: needles[0][0], complete: complete}
		}
		return &memmemPrefilter{needle: needles[0], complete: complete}
	}

	builder := ahocorasick.NewBuilder()
	size, maxLen := 0, 0
	for _, n := range needles {
		builder.AddPattern(n)
		size += len(n)
		maxLen = max(maxLen, len(n))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &ahoCorasickPrefilter{auto: auto, complete: complete, size: size, maxLen: maxLen}
}

func encode(runes []rune) []byte {
	buf := make([]byte, 0, len(runes))
	for _, r := range runes {
		buf = utf8.AppendRune(buf, r)
	}
	return buf
}

// memchrPrefilter searches for a single byte.
type memchrPrefilter struct {
	needle   byte
	complete bool
}

// Find implements Prefilter.Find using bytes.IndexByte.
func (p *memchrPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}

	idx := bytes.IndexByte(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memchrPrefilter) IsComplete() bool {
	return p.complete
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memchrPrefilter) HeapBytes() int {
	return 0
}

// memmemPrefilter searches for a single substring.
type memmemPrefilter struct {
	needle   []byte
	complete bool
}

// Find implements Prefilter.Find using bytes.Index.
func (p *memmemPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}

	idx := bytes.Index(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memmemPrefilter) IsComplete() bool {
	return p.complete
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memmemPrefilter) HeapBytes() int {
	return len(p.needle)
}

// ahoCorasickPrefilter searches for several literals at once.
type ahoCorasickPrefilter struct {
	auto     *ahocorasick.Automaton
	complete bool
	size     int
	maxLen   int // longest needle, in bytes
}

// Find implements Prefilter.Find.
func (p *ahoCorasickPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}

	// The automaton stops at the first match to END. A longer needle
	// starting earlier overlaps it and ends no sooner, so it starts at most
	// maxLen bytes before that end.
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	for i := max(start, m.End-p.maxLen); i < m.Start; i++ {
		if p.auto.FindAt(haystack, i) != nil {
			return i
		}
	}
	return m.Start
}

// IsComplete implements Prefilter.IsComplete.
func (p *ahoCorasickPrefilter) IsComplete() bool {
	return p.complete
}

// HeapBytes implements Prefilter.HeapBytes. It reports the pattern bytes
// the automaton was built from.
func (p *ahoCorasickPrefilter) HeapBytes() int {
	return p.size
}

// candidates adapts a Prefilter to the code-point offsets of one subject.
type candidates struct {
	pf      Prefilter
	text    []byte
	offsets []int // offsets[i] is the byte offset of code point i; len = n+1
}

// Bind returns the start-position oracle of pf for subject.
func Bind(pf Prefilter, subject []rune) engine.Candidates {
	c := &candidates{
		pf:      pf,
		text:    make([]byte, 0, len(subject)),
		offsets: make([]int, 0, len(subject)+1),
	}
	for _, r := range subject {
		c.offsets = append(c.offsets, len(c.text))
		c.text = utf8.AppendRune(c.text, r)
	}
	c.offsets = append(c.offsets, len(c.text))
	return c
}

// Next implements engine.Candidates.
func (c *candidates) Next(from int) int {
	if from < 0 || from >= len(c.offsets) {
		return -1
	}
	pos := c.pf.Find(c.text, c.offsets[from])
	if pos < 0 {
		return -1
	}
	i := sort.SearchInts(c.offsets, pos)
	if i == len(c.offsets) || c.offsets[i] != pos {
		// inside a code point; report the one containing it
		i--
	}
	return max(i, from)
}
