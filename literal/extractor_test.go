package literal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/snopat/charset"
	"github.com/coregx/snopat/engine"
)

func lit(s string) *engine.Graph {
	return engine.Literal([]rune(s))
}

func class(kind engine.Kind, s string) *engine.Graph {
	return engine.Class(kind, engine.SetOperand(charset.FromString(s)))
}

func TestExtractPrefixes(t *testing.T) {
	tests := []struct {
		name string
		g    *engine.Graph
		want []string // nil: no prefilter
	}{
		{"literal", lit("hello"), []string{"hello"}},
		{"joined literals", engine.Concat(lit("ab"), engine.Concat(lit("c"), lit("de"))), []string{"abcde"}},
		{"literal then arb", engine.Concat(lit("key"), engine.Arb()), []string{"key"}},
		{"alternation", engine.Alternate(lit("day"), lit("night")), []string{"day", "night"}},
		{"small class", engine.Concat(class(engine.KindAny, "ba"), lit("x")), []string{"a", "b"}},
		{"span", class(engine.KindSpan, "01"), []string{"0", "1"}},
		{"zero width prefix", engine.Concat(engine.Int(engine.KindPos, engine.IntOperand(0)), lit("go")), []string{"go"}},
		{
			"assignment wrapper",
			engine.OnMatch(lit("v"), engine.VarTarget(engine.NewVar("x"))),
			[]string{"v"},
		},
		{"fence over", engine.FenceOver(engine.Alternate(lit("p"), lit("q"))), []string{"p", "q"}},
		{"repetition then literal", engine.Concat(engine.Arbno(lit("a")), lit("b")), []string{"a", "b"}},
		{"complex repetition", engine.Concat(engine.Arbno(engine.Alternate(lit("x"), lit("y"))), lit("z")), []string{"x", "y", "z"}},

		{"empty", engine.Empty(), nil},
		{"null", engine.Null(), nil},
		{"optional", engine.Alternate(lit("a"), engine.Null()), nil},
		{"bare repetition", engine.Arbno(lit("a")), nil},
		{"arb first", engine.Concat(engine.Arb(), lit("x")), nil},
		{"bal", engine.Bal(), nil},
		{"notany", class(engine.KindNotAny, "a"), nil},
		{"break", class(engine.KindBreak, ","), nil},
		{"large class", class(engine.KindAny, "abcdefghijklmnop"), nil},
		{"predicate class", engine.Class(engine.KindAny, engine.SetOperand(charset.Predicate(func(rune) bool { return true }))), nil},
		{"call", engine.Call(func() any { return "x" }), nil},
		{"deref", engine.Deref(engine.NewVar("p")), nil},
		{"len", engine.Int(engine.KindLen, engine.IntOperand(2)), nil},
	}

	ex := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ex.ExtractPrefixes(tt.g)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.ElementsMatch(t, tt.want, got.Strings())
		})
	}
}

func TestExtractCompleteness(t *testing.T) {
	ex := New(DefaultConfig())

	seq := ex.ExtractPrefixes(lit("abc"))
	require.Equal(t, 1, seq.Len())
	assert.True(t, seq.Get(0).Complete)

	seq = ex.ExtractPrefixes(engine.Concat(lit("abc"), engine.Rem()))
	require.Equal(t, 1, seq.Len())
	assert.False(t, seq.Get(0).Complete)

	seq = ex.ExtractPrefixes(engine.Alternate(lit("ab"), lit("cd")))
	require.Equal(t, 2, seq.Len())
	assert.True(t, seq.Get(0).Complete)
	assert.True(t, seq.Get(1).Complete)

	// a position check ahead of the literal also decides the match
	seq = ex.ExtractPrefixes(engine.Concat(engine.Int(engine.KindPos, engine.IntOperand(3)), lit("abc")))
	require.Equal(t, 1, seq.Len())
	assert.False(t, seq.Get(0).Complete)
}

func TestExtractLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLiteralLen = 3
	seq := New(cfg).ExtractPrefixes(lit("abcdef"))
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, "abc", string(seq.Get(0).Runes))
	assert.False(t, seq.Get(0).Complete)

	cfg = DefaultConfig()
	cfg.MaxLiterals = 2
	g := engine.Alternate(lit("a"), engine.Alternate(lit("b"), lit("c")))
	assert.Nil(t, New(cfg).ExtractPrefixes(g))

	cfg = DefaultConfig()
	cfg.MaxClassSize = 1
	assert.Nil(t, New(cfg).ExtractPrefixes(class(engine.KindAny, "ab")))
}

func TestExtractStopsAtVisibleSideEffects(t *testing.T) {
	ex := New(DefaultConfig())

	imm := engine.Concat(engine.Imm(engine.Null(), engine.FuncTarget(func(string) {})), lit("x"))
	assert.Nil(t, ex.ExtractPrefixes(imm))

	cur := engine.Concat(engine.Cursor(engine.CursorTarget(func(int) {})), lit("x"))
	assert.Nil(t, ex.ExtractPrefixes(cur))

	// after the literal they are fine
	late := engine.Imm(lit("x"), engine.FuncTarget(func(string) {}))
	require.NotNil(t, ex.ExtractPrefixes(late))
}

func TestExtractStopsAtFence(t *testing.T) {
	ex := New(DefaultConfig())
	assert.Nil(t, ex.ExtractPrefixes(engine.Concat(engine.Fence(), lit("x"))))
	assert.Nil(t, ex.ExtractPrefixes(engine.Concat(engine.Succeed(), lit("x"))))
	require.NotNil(t, ex.ExtractPrefixes(engine.Concat(lit("x"), engine.Fence())))
}
