package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fruit = "apple\nbanana\ncherry\nbandana\n"

func runCmd(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		code  int
		want  string
	}{
		{"unanchored", []string{`"an"`}, fruit, 0, "banana\nbandana\n"},
		{"anchored", []string{"-a", `"b"`}, fruit, 0, "banana\nbandana\n"},
		{"anchored miss", []string{"--anchored", `"an"`}, fruit, 1, ""},
		{"only matching", []string{"-o", `and("b", arbno(or("an", "and")), "a")`}, fruit, 0, "ba\nba\n"},
		{"only matching to end", []string{"-o", `and("b", arbno(or("an", "and")), "a", rpos(0))`}, fruit, 0, "banana\nbandana\n"},
		{"replace", []string{"-r", "<$>", `span("p")`}, fruit, 0, "a<$>le\n"},
		{"replace empty", []string{"--replace=", `"err"`}, fruit, 0, "chy\n"},
		{"no match", []string{`"kiwi"`}, fruit, 1, ""},
		{"empty input", []string{`"x"`}, "", 1, ""},
		{"no prefilter", []string{"--no-prefilter", "-o", `or("rr", "pp")`}, fruit, 0, "pp\nrr\n"},
		{"vars", []string{"--vars", `and(onmatch(break("n"), $head), "n")`}, "banana\n", 0, "banana\n\thead=ba\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCmd(t, tt.input, tt.args...)
			assert.Equal(t, tt.code, code, "stderr: %s", errOut)
			assert.Equal(t, tt.want, out)
			assert.Empty(t, errOut)
		})
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("one\ntwo\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("three\nfour\n"), 0o644))

	code, out, _ := runCmd(t, "", "-H", `any("o")`, a, b)
	assert.Equal(t, 0, code)
	assert.Equal(t, a+":one\n"+a+":two\n"+b+":four\n", out)

	code, out, _ = runCmd(t, "two\n", `"two"`, b)
	assert.Equal(t, 1, code, "stdin is not read when files are given")
	assert.Empty(t, out)

	code, _, errOut := runCmd(t, "", `"x"`, filepath.Join(dir, "missing.txt"))
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "missing.txt")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"no expression", nil, "requires at least 1 arg"},
		{"syntax", []string{`and("a"`}, "expr: column"},
		{"bad stack size", []string{"--stack-size", "0", `"a"`}, "invalid config: StackSize"},
		{"conflicting output", []string{"-o", "-r", "x", `"a"`}, "cannot be combined"},
		{"match-time usage error", []string{`len($n)`}, "(standard input):1:"},
		{"unknown flag", []string{"--frobnicate", `"a"`}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCmd(t, fruit, tt.args...)
			assert.Equal(t, 2, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, tt.msg)
			assert.True(t, strings.HasPrefix(errOut, "snomatch: "))
		})
	}
}

func TestStackOverflowExit(t *testing.T) {
	input := strings.Repeat("ab", 100) + "\n"
	args := []string{"-a", `and(arbno(or("a", "b")), rpos(0))`}

	code, _, errOut := runCmd(t, input, append([]string{"--stack-size", "20"}, args...)...)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "overflow")

	code, out, _ := runCmd(t, input, args...)
	assert.Equal(t, 0, code)
	assert.Equal(t, input, out)
}

func TestDump(t *testing.T) {
	code, out, _ := runCmd(t, "", "--dump", `or("a", "bc")`)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "pattern (stack 1)")
	assert.Contains(t, out, `char "a"`)
	assert.Contains(t, out, `string "bc"`)
}

func TestVerbose(t *testing.T) {
	code, out, errOut := runCmd(t, "ab\n", "-v", `or("x", "a")`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "ab\n", out)
	assert.Contains(t, errOut, "level=DEBUG")
	assert.Contains(t, errOut, "kind=alt")
}

func TestEnvironment(t *testing.T) {
	t.Setenv("SNOMATCH_ANCHORED", "true")
	t.Setenv("SNOMATCH_ONLY_MATCHING", "1")

	code, out, _ := runCmd(t, fruit, `span("abn")`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "a\nbanana\nban\n", out)

	// flags given on the command line win
	code, out, _ = runCmd(t, fruit, "--only-matching=false", `"ch"`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "cherry\n", out)

	t.Setenv("SNOMATCH_STACK_SIZE", "-5")
	code, _, errOut := runCmd(t, fruit, `"a"`)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "StackSize")
}
