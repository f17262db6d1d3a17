// Package literal provides types and operations for representing and
// manipulating literal code-point sequences extracted from pattern graphs.
//
// The primary use case is start-position prefiltering for unanchored
// matching: if every way a pattern can begin is a known literal (e.g. "day"
// or "night" for an alternation of the two), an unanchored match only needs
// to try the positions where one of those literals occurs.
//
// Key concepts:
//   - A Literal is a concrete code-point sequence a match must begin with
//   - A Seq is a set of alternative literals (e.g. from an alternation)
//   - Minimize drops literals made redundant by a shorter prefix
package literal

import (
	"sort"
)

// Literal represents a literal code-point sequence extracted from a pattern.
// The Complete flag indicates whether this literal is the entire branch it
// came from (true) or just a necessary prefix of it (false).
//
// Example:
//   - Lit("hello") → Literal{[]rune("hello"), true}
//   - Concat(Lit("hello"), Arb) → Literal{[]rune("hello"), false}
type Literal struct {
	// Runes contains the literal code points.
	Runes []rune

	// Complete indicates whether this literal represents the entire branch.
	Complete bool
}

// NewLiteral creates a new Literal from the given code points and
// completeness flag.
//
// Example:
//
//	lit := literal.NewLiteral([]rune("hello"), true)
//	fmt.Printf("%s (complete=%v)\n", string(lit.Runes), lit.Complete)
//	// Output: hello (complete=true)
func NewLiteral(r []rune, complete bool) Literal {
	return Literal{
		Runes:    r,
		Complete: complete,
	}
}

// Len returns the length of the literal in code points.
func (l Literal) Len() int {
	return len(l.Runes)
}

// String returns a string representation of the literal for debugging purposes.
// Format: "literal{text, complete=true/false}"
//
// Example:
//
//	lit := literal.NewLiteral([]rune("test"), true)
//	fmt.Println(lit.String()) // Output: literal{test, complete=true}
func (l Literal) String() string {
	complete := "false"
	if l.Complete {
		complete = "true"
	}
	return "literal{" + string(l.Runes) + ", complete=" + complete + "}"
}

// Seq represents a set of alternative literals, one of which must begin
// every match.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]rune("foo"), true),
//	    literal.NewLiteral([]rune("bar"), true),
//	)
//	fmt.Printf("Sequence has %d literals\n", seq.Len()) // Output: Sequence has 2 literals
type Seq struct {
	literals []Literal
}

// NewSeq creates a new sequence from the given literals.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{
		literals: lits,
	}
}

// Len returns the number of literals in the sequence.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the literal at the specified index.
// Panics if index is out of bounds.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// IsEmpty returns true if the sequence has no literals.
func (s *Seq) IsEmpty() bool {
	return s == nil || len(s.literals) == 0
}

// Clone returns a deep copy of the sequence.
// All literals and their rune slices are duplicated.
func (s *Seq) Clone() *Seq {
	if s == nil {
		return nil
	}

	cloned := make([]Literal, len(s.literals))
	for i, lit := range s.literals {
		cloned[i] = Literal{
			Runes:    append([]rune(nil), lit.Runes...),
			Complete: lit.Complete,
		}
	}

	return &Seq{literals: cloned}
}

// Strings returns the literals as strings, in sequence order.
func (s *Seq) Strings() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.literals))
	for i, lit := range s.literals {
		out[i] = string(lit.Runes)
	}
	return out
}

// Minimize removes redundant literals from the sequence.
//
// For start-position filtering, a literal L is redundant if there exists a
// shorter literal S that is a prefix of L: every position where L begins is
// also a position where S begins. For example, in ["foo", "foobar"], "foo"
// makes "foobar" redundant. Duplicates collapse the same way.
//
// A redundant literal that was Complete no longer is represented exactly,
// so the surviving prefix is marked incomplete.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]rune("foo"), true),
//	    literal.NewLiteral([]rune("foobar"), true),
//	)
//	seq.Minimize()
//	fmt.Println(seq.Len()) // Output: 1 (only "foo" remains)
func (s *Seq) Minimize() {
	if s.IsEmpty() {
		return
	}

	// Sort by length (shortest first) for efficient redundancy detection
	sort.SliceStable(s.literals, func(i, j int) bool {
		return len(s.literals[i].Runes) < len(s.literals[j].Runes)
	})

	kept := make([]Literal, 0, len(s.literals))

	for _, current := range s.literals {
		redundant := false

		// Check if any shorter (already kept) literal is a prefix of current
		for j := range kept {
			if isPrefix(kept[j].Runes, current.Runes) {
				if len(kept[j].Runes) < len(current.Runes) {
					kept[j].Complete = false
				}
				redundant = true
				break
			}
		}

		if !redundant {
			kept = append(kept, current)
		}
	}

	s.literals = kept
}

func isPrefix(prefix, s []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if prefix[i] != s[i] {
			return false
		}
	}
	return true
}
