package snopat

import (
	"github.com/coregx/snopat/charset"
	"github.com/coregx/snopat/engine"
)

// Lit returns a pattern matching text literally. Lit("") matches the empty
// string.
func Lit(text string) *Pattern {
	return newPattern(engine.Literal([]rune(text)))
}

// Call returns a pattern that calls fn each time it is reached during a
// match. The result decides what is matched:
//   - string: matched literally at the cursor
//   - *Pattern: matched as a nested pattern (recursion is allowed)
//   - bool: true matches the empty string, false fails
//   - any Go integer kind: nonzero matches the empty string, zero fails
//
// Any other result, floats included, aborts the match with a *UsageError.
func Call(fn func() any) *Pattern {
	return newPattern(engine.Call(fn))
}

// Deref returns a pattern that reads v each time it is reached during a
// match, with the same outcomes as Call.
func Deref(v *Var) *Pattern {
	return newPattern(engine.Deref(v))
}

// Elem is the set of values Pat converts to a pattern.
type Elem interface {
	string | func() any | *Var | *Pattern
}

// Pat converts x to a pattern: a string with Lit, a function with Call, a
// variable with Deref. A *Pattern is returned unchanged.
func Pat[T Elem](x T) *Pattern {
	switch v := any(x).(type) {
	case string:
		return Lit(v)
	case func() any:
		return Call(v)
	case *Var:
		return Deref(v)
	case *Pattern:
		return v
	}
	panic("unreachable")
}

// ClassArg is the set of values accepted as a character class:
//   - string: the code points of the string
//   - charset.Set: the set itself
//   - func(rune) bool: a membership predicate
//   - func() string, func() charset.Set: computed at match time
//   - *Var: read at match time; must hold a string or charset.Set
type ClassArg interface {
	string | charset.Set | func(rune) bool | func() string | func() charset.Set | *Var
}

func classOperand[T ClassArg](op string, x T) engine.Operand {
	switch v := any(x).(type) {
	case string:
		return engine.SetOperand(charset.FromString(v))
	case charset.Set:
		return engine.SetOperand(v)
	case func(rune) bool:
		if v != nil {
			return engine.SetOperand(charset.Predicate(v))
		}
	case func() string:
		if v != nil {
			return engine.SetFuncOperand(func() any { return v() })
		}
	case func() charset.Set:
		if v != nil {
			return engine.SetFuncOperand(func() any { return v() })
		}
	case *Var:
		if v != nil {
			return engine.VarOperand(v)
		}
	}
	panic(&UsageError{Op: op, Got: x, Err: ErrNeedSet})
}

// Any matches one code point in the class.
func Any[T ClassArg](class T) *Pattern {
	return newPattern(engine.Class(engine.KindAny, classOperand("any", class)))
}

// NotAny matches one code point not in the class.
func NotAny[T ClassArg](class T) *Pattern {
	return newPattern(engine.Class(engine.KindNotAny, classOperand("notany", class)))
}

// Span matches the longest non-empty run of code points in the class.
func Span[T ClassArg](class T) *Pattern {
	return newPattern(engine.Class(engine.KindSpan, classOperand("span", class)))
}

// NSpan matches the longest, possibly empty, run of code points in the
// class.
func NSpan[T ClassArg](class T) *Pattern {
	return newPattern(engine.Class(engine.KindNSpan, classOperand("nspan", class)))
}

// Break matches up to, but not including, the first code point in the
// class. It fails if no such code point follows the cursor.
func Break[T ClassArg](class T) *Pattern {
	return newPattern(engine.Class(engine.KindBreak, classOperand("break", class)))
}

// BreakX is Break with extension: on backtracking it steps over the break
// code point and matches up to the next one.
func BreakX[T ClassArg](class T) *Pattern {
	return newPattern(engine.BreakX(classOperand("breakx", class)))
}

// IntArg is the set of values accepted as a non-negative integer: a fixed
// int, a function called at match time, or a variable read at match time
// (holding any Go integer or a decimal string).
type IntArg interface {
	int | func() int | *Var
}

func intPattern[T IntArg](kind engine.Kind, x T) *Pattern {
	var op engine.Operand
	switch v := any(x).(type) {
	case int:
		op = engine.IntOperand(v)
	case func() int:
		if v == nil {
			panic(&UsageError{Op: kind.String(), Got: x, Err: ErrNeedNonNegative})
		}
		op = engine.IntFuncOperand(v)
	case *Var:
		if v == nil {
			panic(&UsageError{Op: kind.String(), Got: x, Err: ErrNeedNonNegative})
		}
		op = engine.VarOperand(v)
	}
	return newPattern(engine.Int(kind, op))
}

// Len matches exactly n code points.
func Len[T IntArg](n T) *Pattern {
	return intPattern(engine.KindLen, n)
}

// Pos matches the empty string if the cursor is at offset n.
func Pos[T IntArg](n T) *Pattern {
	return intPattern(engine.KindPos, n)
}

// RPos matches the empty string if the cursor is n code points before the
// end of the subject.
func RPos[T IntArg](n T) *Pattern {
	return intPattern(engine.KindRPos, n)
}

// Tab matches from the cursor up to offset n. It fails if the cursor is
// already past n.
func Tab[T IntArg](n T) *Pattern {
	return intPattern(engine.KindTab, n)
}

// RTab matches from the cursor up to n code points before the end of the
// subject.
func RTab[T IntArg](n T) *Pattern {
	return intPattern(engine.KindRTab, n)
}

// Cursor returns a pattern that matches the empty string and calls fn with
// the cursor offset, in code points, each time it is reached.
func Cursor(fn func(int)) *Pattern {
	return newPattern(engine.Cursor(engine.CursorTarget(fn)))
}

// CursorVar is Cursor storing the offset into v.
func CursorVar(v *Var) *Pattern {
	return newPattern(engine.Cursor(engine.VarTarget(v)))
}

// The built-in patterns are immutable, so one instance of each is shared.
var (
	abortPat   = newPattern(engine.Abort())
	arbPat     = newPattern(engine.Arb())
	balPat     = newPattern(engine.Bal())
	failPat    = newPattern(engine.Fail())
	fencePat   = newPattern(engine.Fence())
	nullPat    = newPattern(engine.Null())
	remPat     = newPattern(engine.Rem())
	succeedPat = newPattern(engine.Succeed())
)

// Abort returns the pattern that ends the whole match with failure: no
// further alternatives are tried and an unanchored match does not move on.
func Abort() *Pattern { return abortPat }

// Arb returns the pattern matching any string, shortest first.
func Arb() *Pattern { return arbPat }

// Bal returns the pattern matching a non-empty string that is balanced
// with respect to parentheses, shortest first.
func Bal() *Pattern { return balPat }

// Fail returns the pattern that always fails, forcing backtracking.
func Fail() *Pattern { return failPat }

// Fence returns the pattern that matches the empty string and aborts the
// whole match if backtracked into.
func Fence() *Pattern { return fencePat }

// Null returns the pattern matching the empty string.
func Null() *Pattern { return nullPat }

// Rem returns the pattern matching the rest of the subject.
func Rem() *Pattern { return remPat }

// Succeed returns the pattern that matches the empty string and matches it
// again every time it is backtracked into.
func Succeed() *Pattern { return succeedPat }
