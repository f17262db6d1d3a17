package engine

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/snopat/charset"
)

// run matches g against subject and returns the matched text.
func run(t *testing.T, g *Graph, subject string, anchored bool) (string, bool) {
	t.Helper()
	rs := []rune(subject)
	m := NewMachine(g, rs, Options{Anchored: anchored, StackSize: 256})
	ok, err := m.Run()
	require.NoError(t, err)
	if !ok {
		return "", false
	}
	start, stop := m.Span()
	return string(rs[start:stop]), true
}

func seq(gs ...*Graph) *Graph {
	g := Empty()
	for i := len(gs) - 1; i >= 0; i-- {
		g = Concat(gs[i], g)
	}
	return g
}

func class(kind Kind, s string) *Graph {
	return Class(kind, SetOperand(charset.FromString(s)))
}

func intOf(kind Kind, n int) *Graph {
	return Int(kind, IntOperand(n))
}

func TestMachine(t *testing.T) {
	tests := []struct {
		name     string
		g        *Graph
		subject  string
		anchored bool
		want     string
		ok       bool
	}{
		{"literal", lit("hello"), "hello world", true, "hello", true},
		{"literal mismatch", lit("hello"), "help", true, "", false},
		{"literal unanchored", lit("hello"), "   hello world   ", false, "hello", true},
		{"alternation left first", Alternate(lit("a"), lit("ab")), "ab", true, "a", true},
		{"alternation right", Alternate(lit("day"), lit("night")), "night", true, "night", true},
		{"bal nested", Bal(), "(1 / (x + 2))", true, "(1 / (x + 2))", true},
		{"bal unbalanced", Bal(), ")(", true, "", false},
		{"bal open", Bal(), "(ab", true, "", false},
		{"bal extends", seq(Bal(), intOf(KindRPos, 0)), "a(b)c", true, "a(b)c", true},
		{
			name:     "arbno class",
			g:        seq(lit("b"), Arbno(anyOf("an")), lit("!")),
			subject:  "bananana!",
			anchored: true,
			want:     "bananana!",
			ok:       true,
		},
		{"astral len", intOf(KindLen, 1), "😀x", true, "😀", true},
		{"astral char", lit("😀"), "😀x", true, "😀", true},
		{"arb shortest", seq(Arb(), lit("c")), "abcdc", true, "abc", true},
		{"arb empty", Arb(), "abc", true, "", true},
		{"breakx", BreakX(SetOperand(charset.FromString("z"))), "abcz", true, "abc", true},
		{
			name:     "breakx extends past break",
			g:        seq(BreakX(SetOperand(charset.FromString("-"))), lit("-b")),
			subject:  "a-x-b",
			anchored: true,
			want:     "a-x-b",
			ok:       true,
		},
		{"break", class(KindBreak, "z"), "abcz", true, "abc", true},
		{"break needs break char", class(KindBreak, "z"), "abc", true, "", false},
		{"break at cursor", class(KindBreak, "a"), "abc", true, "", true},
		{"span", class(KindSpan, "ab"), "aabc", true, "aab", true},
		{"span needs one", class(KindSpan, "ab"), "cab", true, "", false},
		{"nspan null", class(KindNSpan, "ab"), "cab", true, "", true},
		{"any", class(KindAny, "xyz"), "yes", true, "y", true},
		{"notany", class(KindNotAny, "xyz"), "yes", true, "", false},
		{"notany match", class(KindNotAny, "xyz"), "abc", true, "a", true},
		{"tab", seq(intOf(KindTab, 2), lit("c")), "abcd", true, "abc", true},
		{"tab beyond end", intOf(KindTab, 5), "abcd", true, "", false},
		{"tab backwards", seq(lit("abc"), intOf(KindTab, 1)), "abcd", true, "", false},
		{"rtab", intOf(KindRTab, 1), "abcd", true, "abc", true},
		{"rtab beyond start", intOf(KindRTab, 5), "abcd", true, "", false},
		{"len rpos", seq(intOf(KindLen, 2), intOf(KindRPos, 2)), "abcd", true, "ab", true},
		{"len too long", intOf(KindLen, 5), "abcd", true, "", false},
		{"pos unanchored", seq(intOf(KindPos, 1), lit("b")), "abc", false, "b", true},
		{"rpos unanchored", seq(lit("c"), intOf(KindRPos, 0)), "cbc", false, "c", true},
		{"rem", seq(lit("a"), Rem()), "abc", true, "abc", true},
		{"fail then alternative", Alternate(Fail(), lit("a")), "a", true, "a", true},
		{"abort", Alternate(seq(lit("a"), Abort()), lit("ab")), "ab", true, "", false},
		{"abort unanchored", seq(lit("x"), Abort()), "ax", false, "", false},
		{"null", Null(), "abc", true, "", true},
		{"empty", Empty(), "abc", true, "", true},
		{"empty subject unanchored", lit("a"), "", false, "", false},
		{"null on empty subject", Null(), "", false, "", true},
		{"arbno null terminates", Arbno(lit("")), "abc", true, "", true},
		{"arbno len0 terminates", Arbno(intOf(KindLen, 0)), "abc", true, "", true},
		{"arbno null then fail", seq(Arbno(Null()), lit("x")), "abc", true, "", false},
		{"arbno null then literal", seq(Arbno(Null()), lit("a")), "abc", true, "a", true},
		{
			name:     "arbno complex",
			g:        seq(Arbno(Alternate(lit("ab"), lit("c"))), intOf(KindRPos, 0)),
			subject:  "abcab",
			anchored: true,
			want:     "abcab",
			ok:       true,
		},
		{
			name:     "arbno complex no progress",
			g:        seq(Arbno(Alternate(lit("ab"), lit("c"))), intOf(KindRPos, 0)),
			subject:  "abx",
			anchored: true,
			ok:       false,
		},
		{
			name:     "fence cuts alternatives",
			g:        seq(Alternate(lit("a"), lit("ab")), Fence(), lit("c")),
			subject:  "abc",
			anchored: true,
			ok:       false,
		},
		{
			name:     "without fence",
			g:        seq(Alternate(lit("a"), lit("ab")), lit("c")),
			subject:  "abc",
			anchored: true,
			want:     "abc",
			ok:       true,
		},
		{
			name:     "fence stops sliding",
			g:        seq(Fence(), lit("b")),
			subject:  "ab",
			anchored: false,
			ok:       false,
		},
		{
			name:     "fence over cuts inner alternatives",
			g:        seq(FenceOver(Alternate(lit("a"), lit("ab"))), lit("c")),
			subject:  "abc",
			anchored: true,
			ok:       false,
		},
		{
			name:     "fence over keeps outer alternatives",
			g:        Alternate(seq(FenceOver(lit("a")), lit("c")), lit("ab")),
			subject:  "abc",
			anchored: true,
			want:     "ab",
			ok:       true,
		},
		{
			name:     "fence over inner failure",
			g:        seq(FenceOver(seq(Arb(), lit("b"))), lit("c")),
			subject:  "abc",
			anchored: true,
			want:     "abc",
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := run(t, tt.g, tt.subject, tt.anchored)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConcatAssociative(t *testing.T) {
	a := Alternate(lit("a"), lit("ab"))
	b := Arbno(anyOf("bc"))
	c := Alternate(lit("cd"), lit("d"))

	left := Concat(Concat(a, b), c)
	right := Concat(a, Concat(b, c))

	for _, subject := range []string{"abcd", "acd", "abbbd", "xabd", "ad", "abc", ""} {
		t.Run(subject, func(t *testing.T) {
			for _, anchored := range []bool{true, false} {
				lt, lok := run(t, left, subject, anchored)
				rt, rok := run(t, right, subject, anchored)
				assert.Equal(t, lok, rok)
				assert.Equal(t, lt, rt)
			}
		})
	}
}

func TestImmediateVersusDeferred(t *testing.T) {
	immVar := NewVar("imm")
	onmVar := NewVar("onm")

	p := Imm(lit("hello"), VarTarget(immVar))
	q := OnMatch(lit("hello"), VarTarget(onmVar))

	_, ok := run(t, Concat(p, lit(" bye")), "hello world", true)
	require.False(t, ok)
	assert.Equal(t, "hello", immVar.Get())

	_, ok = run(t, Concat(q, lit(" bye")), "hello world", true)
	require.False(t, ok)
	assert.Nil(t, onmVar.Get())

	_, ok = run(t, Concat(q, lit(" world")), "hello world", true)
	require.True(t, ok)
	assert.Equal(t, "hello", onmVar.Get())
}

func TestDeferredOrderAndCancellation(t *testing.T) {
	var got []string
	rec := FuncTarget(func(s string) { got = append(got, s) })

	t.Run("oldest first", func(t *testing.T) {
		got = nil
		g := seq(OnMatch(lit("a"), rec), OnMatch(Arb(), rec), OnMatch(lit("c"), rec))
		text, ok := run(t, g, "abbc", true)
		require.True(t, ok)
		assert.Equal(t, "abbc", text)
		assert.Equal(t, []string{"a", "bb", "c"}, got)
	})

	t.Run("cancelled by backtracking", func(t *testing.T) {
		got = nil
		g := Alternate(seq(OnMatch(lit("a"), rec), lit("x")), OnMatch(lit("ab"), rec))
		text, ok := run(t, g, "ab", true)
		require.True(t, ok)
		assert.Equal(t, "ab", text)
		assert.Equal(t, []string{"ab"}, got)
	})

	t.Run("inside repetition", func(t *testing.T) {
		got = nil
		g := seq(Arbno(OnMatch(anyOf("ab"), rec)), intOf(KindRPos, 0))
		_, ok := run(t, g, "abba", true)
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b", "b", "a"}, got)
	})

	t.Run("never on failure", func(t *testing.T) {
		got = nil
		g := seq(Arbno(OnMatch(anyOf("ab"), rec)), intOf(KindRPos, 0))
		_, ok := run(t, g, "abbx", true)
		require.False(t, ok)
		assert.Empty(t, got)
	})
}

func TestImmediateFiresPerAttempt(t *testing.T) {
	var got []string
	g := seq(Imm(Arb(), FuncTarget(func(s string) { got = append(got, s) })), lit("c"))
	_, ok := run(t, g, "abc", true)
	require.True(t, ok)
	assert.Equal(t, []string{"", "a", "ab"}, got)
}

func TestCursor(t *testing.T) {
	var seen []int
	g := seq(Cursor(CursorTarget(func(c int) { seen = append(seen, c) })), Fail())
	_, ok := run(t, g, "abcd", false)
	require.False(t, ok)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)

	v := NewVar("pos")
	_, ok = run(t, seq(lit("ab"), Cursor(VarTarget(v))), "abc", true)
	require.True(t, ok)
	assert.Equal(t, 2, v.Get())
}

func TestSucceedRetries(t *testing.T) {
	calls := 0
	g := seq(Succeed(), Call(func() any {
		calls++
		return calls == 3
	}))
	text, ok := run(t, g, "xyz", true)
	require.True(t, ok)
	assert.Equal(t, "", text)
	assert.Equal(t, 3, calls)
}

func TestRecursivePattern(t *testing.T) {
	var rec *Graph
	rec = Alternate(lit("a"), Concat(lit("b"), Call(func() any { return rec })))

	tests := []struct {
		subject string
		want    string
		ok      bool
	}{
		{"a", "a", true},
		{"ba", "ba", true},
		{"bbba", "bbba", true},
		{"bbbc", "", false},
		{"c", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			got, ok := run(t, rec, tt.subject, true)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	// the nested region must resume the outer continuation
	got, ok := run(t, Concat(rec, lit("!")), "bba!", true)
	require.True(t, ok)
	assert.Equal(t, "bba!", got)
}

func TestDeref(t *testing.T) {
	v := NewVar("x")
	g := Concat(Deref(v), lit("!"))

	v.Set("hi")
	got, ok := run(t, g, "hi!", true)
	require.True(t, ok)
	assert.Equal(t, "hi!", got)

	v.Set(Alternate(lit("h"), lit("hi")))
	got, ok = run(t, g, "hi!", true)
	require.True(t, ok)
	assert.Equal(t, "hi!", got)

	v.Set(false)
	_, ok = run(t, g, "hi!", true)
	assert.False(t, ok)

	v.Set(true)
	got, ok = run(t, Concat(Deref(v), lit("h")), "hi!", true)
	require.True(t, ok)
	assert.Equal(t, "h", got)
}

func TestMatchTimeOperands(t *testing.T) {
	v := NewVar("cls")
	n := NewVar("n")

	tests := []struct {
		name string
		set  func()
		g    *Graph
		want string
	}{
		{"class func string", func() {}, Class(KindSpan, SetFuncOperand(func() any { return "ab" })), "aba"},
		{"class func set", func() {}, Class(KindSpan, SetFuncOperand(func() any { return charset.FromString("ab") })), "aba"},
		{"class var string", func() { v.Set("ab") }, Class(KindSpan, VarOperand(v)), "aba"},
		{"class var set", func() { v.Set(charset.Range('a', 'b')) }, Class(KindSpan, VarOperand(v)), "aba"},
		{"int func", func() {}, Int(KindLen, IntFuncOperand(func() int { return 2 })), "ab"},
		{"int var int", func() { n.Set(3) }, Int(KindLen, VarOperand(n)), "aba"},
		{"int var string", func() { n.Set(" 1 ") }, Int(KindLen, VarOperand(n)), "a"},
		{"breakx var", func() { v.Set("c") }, BreakX(VarOperand(v)), "aba"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set()
			got, ok := run(t, tt.g, "abacus", true)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchTimeUsageErrors(t *testing.T) {
	v := NewVar("bad")

	tests := []struct {
		name string
		set  any
		g    *Graph
		op   string
		err  error
	}{
		{"class from int", 42, Class(KindAny, VarOperand(v)), "any", ErrNeedSet},
		{"class from func", nil, Class(KindSpan, SetFuncOperand(func() any { return 3.5 })), "span", ErrNeedSet},
		{"negative len", -1, Int(KindLen, VarOperand(v)), "len", ErrNeedNonNegative},
		{"non-numeric pos", "abc", Int(KindPos, VarOperand(v)), "pos", ErrNeedNonNegative},
		{"negative func", nil, Int(KindTab, IntFuncOperand(func() int { return -2 })), "tab", ErrNeedNonNegative},
		{"deref float", 4.5, Deref(v), "pat", ErrBadResult},
		{"call nil", nil, Call(func() any { return nil }), "pat", ErrBadResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.Set(tt.set)
			m := NewMachine(tt.g, []rune("abc"), Options{Anchored: true})
			ok, err := m.Run()
			require.False(t, ok)
			require.Error(t, err)
			assert.True(t, IsUsage(err))
			assert.False(t, IsFatal(err))
			assert.ErrorIs(t, err, tt.err)

			var ue *UsageError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.op, ue.Op)
		})
	}
}

func TestStackOverflow(t *testing.T) {
	var rec *Graph
	rec = Alternate(lit("a"), Concat(lit("b"), Call(func() any { return rec })))
	subject := []rune(strings.Repeat("b", 100) + "a")

	m := NewMachine(rec, subject, Options{Anchored: true, StackSize: 16})
	ok, err := m.Run()
	require.False(t, ok)
	require.ErrorIs(t, err, ErrStackOverflow)
	assert.True(t, IsFatal(err))

	var me *MatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindCall, me.Kind)

	m = NewMachine(rec, subject, Options{Anchored: true, StackSize: 1000})
	ok, err = m.Run()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArbnoHeadroomCheck(t *testing.T) {
	g := seq(Arbno(Alternate(lit("a"), lit("b"))), intOf(KindRPos, 0))
	subject := []rune(strings.Repeat("ab", 50))

	m := NewMachine(g, subject, Options{Anchored: true, StackSize: 32})
	_, err := m.Run()
	require.ErrorIs(t, err, ErrStackOverflow)

	var me *MatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindArbnoY, me.Kind)
}

type fixedCandidates struct {
	starts []int
	calls  int
}

func (c *fixedCandidates) Next(from int) int {
	c.calls++
	for _, s := range c.starts {
		if s >= from {
			return s
		}
	}
	return -1
}

func TestCandidates(t *testing.T) {
	var seen []int
	g := seq(Cursor(CursorTarget(func(c int) { seen = append(seen, c) })), lit("b"))

	cands := &fixedCandidates{starts: []int{1, 4}}
	rs := []rune("abcab")
	m := NewMachine(g, rs, Options{Candidates: cands})
	ok, err := m.Run()
	require.NoError(t, err)
	require.True(t, ok)
	start, stop := m.Span()
	assert.Equal(t, 1, start)
	assert.Equal(t, 2, stop)
	assert.Equal(t, []int{1}, seen)

	seen = nil
	m = NewMachine(g, []rune("xxx"), Options{Candidates: &fixedCandidates{}})
	ok, err = m.Run()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, seen)
}

func TestTraceLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := NewMachine(Alternate(lit("x"), lit("a")), []rune("abc"), Options{Anchored: true, Logger: log})
	ok, err := m.Run()
	require.NoError(t, err)
	require.True(t, ok)

	out := buf.String()
	assert.Contains(t, out, "kind=alt")
	assert.Contains(t, out, "kind=char")
	assert.Contains(t, out, "match succeeded")
}

func TestStackGeometry(t *testing.T) {
	s := NewStack(8)
	assert.Equal(t, 8, s.Cap())
	assert.Equal(t, -8, s.first)
	assert.Equal(t, -7, s.init)
	assert.Equal(t, 0, s.Depth())
	assert.True(t, s.room(6))
	assert.False(t, s.room(7))

	m := NewMachine(Arb(), nil, Options{StackSize: 1})
	assert.Equal(t, minStack, m.stack.Cap())

	m = NewMachine(Arbno(Alternate(lit("a"), Bal())), nil, Options{StackSize: 2})
	assert.Equal(t, 10, m.stack.Cap())
}
