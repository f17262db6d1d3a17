// Package charset provides the character-class values used by the class
// matchers (Any, NotAny, Span, NSpan, Break, BreakX).
//
// A Set is either an explicit set of code points or a predicate. Explicit
// sets keep a 128-bit bitmap for ASCII members so the common case is a pair
// of word operations; other code points live in a map.
//
// Sets are immutable once built and may be shared freely between patterns.
package charset

import (
	"strings"
	"unicode/utf8"
)

// Set is an immutable set of code points.
//
// The zero value is the empty set.
type Set struct {
	// ascii holds members below utf8.RuneSelf, one bit per code point.
	ascii [2]uint64

	// other holds members at or above utf8.RuneSelf.
	other map[rune]struct{}

	// order records explicit members in first-seen order, for String.
	order []rune

	// pred, when non-nil, replaces the explicit membership test.
	pred func(rune) bool
}

// FromString returns the set of code points in s.
// Surrogate pairs and multi-byte sequences count as one member each.
//
// Example:
//
//	vowels := charset.FromString("aeiou")
//	vowels.Contains('e') // true
func FromString(s string) Set {
	var b builder
	for _, r := range s {
		b.add(r)
	}
	return b.set()
}

// FromRunes returns the set of the given code points.
func FromRunes(rs ...rune) Set {
	var b builder
	for _, r := range rs {
		b.add(r)
	}
	return b.set()
}

// Range returns the set of code points in [lo, hi].
// An inverted range yields the empty set.
func Range(lo, hi rune) Set {
	var b builder
	for r := lo; r <= hi && r >= lo; r++ {
		b.add(r)
		if r == utf8.MaxRune {
			break
		}
	}
	return b.set()
}

// Predicate returns a set whose membership is decided by fn.
//
// Example:
//
//	digits := charset.Predicate(unicode.IsDigit)
func Predicate(fn func(rune) bool) Set {
	return Set{pred: fn}
}

// Union returns a set containing every member of the given sets.
// If any operand is a predicate the result is a predicate.
func Union(sets ...Set) Set {
	for _, s := range sets {
		if s.pred != nil {
			members := append([]Set(nil), sets...)
			return Predicate(func(r rune) bool {
				for i := range members {
					if members[i].Contains(r) {
						return true
					}
				}
				return false
			})
		}
	}

	var b builder
	for _, s := range sets {
		for _, r := range s.order {
			b.add(r)
		}
	}
	return b.set()
}

// Contains reports whether r is a member of s.
func (s Set) Contains(r rune) bool {
	if s.pred != nil {
		return s.pred(r)
	}
	if r >= 0 && r < utf8.RuneSelf {
		return s.ascii[r/64]&(1<<(uint(r)%64)) != 0
	}
	_, ok := s.other[r]
	return ok
}

// IsPredicate reports whether s is defined by a function rather than by an
// explicit member list.
func (s Set) IsPredicate() bool {
	return s.pred != nil
}

// Len returns the number of explicit members, or -1 for a predicate set.
func (s Set) Len() int {
	if s.pred != nil {
		return -1
	}
	return len(s.order)
}

// Runes returns the explicit members in first-seen order.
// It returns nil for a predicate set.
func (s Set) Runes() []rune {
	if s.pred != nil {
		return nil
	}
	return append([]rune(nil), s.order...)
}

// String returns the explicit members concatenated in first-seen order,
// or "<func>" for a predicate set.
func (s Set) String() string {
	if s.pred != nil {
		return "<func>"
	}
	var sb strings.Builder
	for _, r := range s.order {
		sb.WriteRune(r)
	}
	return sb.String()
}

// builder accumulates explicit members, ignoring duplicates.
type builder struct {
	s Set
}

func (b *builder) add(r rune) {
	if b.s.Contains(r) {
		return
	}
	if r >= 0 && r < utf8.RuneSelf {
		b.s.ascii[r/64] |= 1 << (uint(r) % 64)
	} else {
		if b.s.other == nil {
			b.s.other = make(map[rune]struct{})
		}
		b.s.other[r] = struct{}{}
	}
	b.s.order = append(b.s.order, r)
}

func (b *builder) set() Set {
	return b.s
}
