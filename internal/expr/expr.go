// Package expr parses patterns written as combinator calls, such as
//
//	and(or("b", "r"), arbno("an"), "a")
//
// A term is a Go string literal (matched literally), an integer, a built-in
// pattern name (arb, bal, rem, fail, abort, fence, succeed, null), a $name
// variable reference, or a call of one of the combinators:
//
//	and(p, ...)  or(p, ...)  arbno(p)  fence(p)  lit(s)
//	any(c)  notany(c)  span(c)  nspan(c)  break(c)  breakx(c)
//	len(n)  pos(n)  rpos(n)  tab(n)  rtab(n)
//	imm(p, $v)  onmatch(p, $v)  cursor($v)
//
// A variable stands for the pattern it holds where a pattern is expected,
// for a class where a class is expected and for an integer where an
// integer is expected. Variables are created on first reference and are
// shared by every pattern a Parser builds.
package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/coregx/snopat"
)

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	// Pos is the byte offset in the source where the problem was found.
	Pos int
	Msg string
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: column %d: %s", e.Pos+1, e.Msg)
}

// Parser turns expressions into patterns. It owns the variables the
// expressions refer to. A Parser is not safe for concurrent use; the
// patterns it returns are.
type Parser struct {
	vars map[string]*snopat.Var
}

// NewParser returns a parser with no variables.
func NewParser() *Parser {
	return &Parser{vars: make(map[string]*snopat.Var)}
}

// Parse parses src with a fresh parser.
func Parse(src string) (*snopat.Pattern, error) {
	return NewParser().Parse(src)
}

// Parse parses one expression. It returns a *SyntaxError if src is not a
// well-formed pattern expression.
func (p *Parser) Parse(src string) (*snopat.Pattern, error) {
	s := &state{p: p}
	s.init(src)

	x, err := s.value()
	if err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.tok != scanner.EOF {
		return nil, s.errorf("unexpected %s after expression", scanner.TokenString(s.tok))
	}
	return toPattern("expression", x)
}

// Var returns the variable called name, creating it if needed.
func (p *Parser) Var(name string) *snopat.Var {
	v, ok := p.vars[name]
	if !ok {
		v = snopat.NewVar(name)
		p.vars[name] = v
	}
	return v
}

// Vars returns the parser's variables sorted by name.
func (p *Parser) Vars() []*snopat.Var {
	vars := make([]*snopat.Var, 0, len(p.vars))
	for _, v := range p.vars {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name() < vars[j].Name() })
	return vars
}

var builtins = map[string]func() *snopat.Pattern{
	"abort":   snopat.Abort,
	"arb":     snopat.Arb,
	"bal":     snopat.Bal,
	"fail":    snopat.Fail,
	"fence":   snopat.Fence,
	"null":    snopat.Null,
	"rem":     snopat.Rem,
	"succeed": snopat.Succeed,
}

type valueKind uint8

const (
	kindString valueKind = iota
	kindInt
	kindVar
	kindPattern
)

func (k valueKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindInt:
		return "integer"
	case kindVar:
		return "variable"
	}
	return "pattern"
}

// value is a parsed term. Conversion to a pattern, class or integer waits
// until the enclosing call says which one it needs.
type value struct {
	kind valueKind
	pos  int
	s    string
	n    int
	v    *snopat.Var
	p    *snopat.Pattern
}

type state struct {
	p   *Parser
	sc  scanner.Scanner
	tok rune
	err *SyntaxError // first scanner error
}

func (s *state) init(src string) {
	s.sc.Init(strings.NewReader(src))
	s.sc.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings | scanner.ScanRawStrings
	s.sc.Error = func(sc *scanner.Scanner, msg string) {
		if s.err == nil {
			s.err = &SyntaxError{Pos: sc.Pos().Offset, Msg: msg}
		}
	}
	s.next()
}

func (s *state) next() {
	s.tok = s.sc.Scan()
}

func (s *state) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: s.sc.Position.Offset, Msg: fmt.Sprintf(format, args...)}
}

func (s *state) value() (value, error) {
	if s.err != nil {
		return value{}, s.err
	}
	pos := s.sc.Position.Offset
	text := s.sc.TokenText()

	switch s.tok {
	case scanner.String, scanner.RawString:
		str, err := strconv.Unquote(text)
		if err != nil {
			return value{}, &SyntaxError{Pos: pos, Msg: "malformed string " + text}
		}
		s.next()
		return value{kind: kindString, pos: pos, s: str}, nil

	case scanner.Int:
		n, err := strconv.ParseInt(text, 0, 0)
		if err != nil {
			return value{}, &SyntaxError{Pos: pos, Msg: "malformed integer " + text}
		}
		s.next()
		return value{kind: kindInt, pos: pos, n: int(n)}, nil

	case '$':
		s.next()
		if s.tok != scanner.Ident {
			return value{}, s.errorf("expected variable name after '$'")
		}
		name := s.sc.TokenText()
		s.next()
		return value{kind: kindVar, pos: pos, v: s.p.Var(name)}, nil

	case scanner.Ident:
		s.next()
		if s.tok != '(' {
			fn, ok := builtins[text]
			if !ok {
				return value{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unknown pattern %q", text)}
			}
			return value{kind: kindPattern, pos: pos, p: fn()}, nil
		}
		s.next()
		args, err := s.args()
		if err != nil {
			return value{}, err
		}
		p, err := call(text, pos, args)
		if err != nil {
			return value{}, err
		}
		return value{kind: kindPattern, pos: pos, p: p}, nil

	case scanner.EOF:
		return value{}, &SyntaxError{Pos: pos, Msg: "unexpected end of expression"}
	}
	return value{}, s.errorf("unexpected %s", scanner.TokenString(s.tok))
}

// args parses a call's argument list; the opening parenthesis has been
// consumed.
func (s *state) args() ([]value, error) {
	if s.tok == ')' {
		s.next()
		return nil, nil
	}
	var args []value
	for {
		v, err := s.value()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if s.err != nil {
			return nil, s.err
		}
		switch s.tok {
		case ',':
			s.next()
		case ')':
			s.next()
			return args, nil
		default:
			return nil, s.errorf("expected ',' or ')', found %s", scanner.TokenString(s.tok))
		}
	}
}

func call(name string, pos int, args []value) (*snopat.Pattern, error) {
	arity := func(n int) error {
		if len(args) != n {
			return &SyntaxError{Pos: pos, Msg: fmt.Sprintf("%s takes %d argument(s), got %d", name, n, len(args))}
		}
		return nil
	}

	switch name {
	case "and", "or":
		if len(args) == 0 {
			return nil, &SyntaxError{Pos: pos, Msg: name + " needs at least one argument"}
		}
		ps := make([]*snopat.Pattern, len(args))
		for i, a := range args {
			p, err := toPattern(name, a)
			if err != nil {
				return nil, err
			}
			ps[i] = p
		}
		if name == "and" {
			return snopat.Concat(ps[0], ps[1:]...), nil
		}
		return snopat.Alternate(ps[0], ps[1:]...), nil

	case "arbno":
		if err := arity(1); err != nil {
			return nil, err
		}
		p, err := toPattern(name, args[0])
		if err != nil {
			return nil, err
		}
		return snopat.Arbno(p), nil

	case "fence":
		if len(args) == 0 {
			return snopat.Fence(), nil
		}
		if err := arity(1); err != nil {
			return nil, err
		}
		p, err := toPattern(name, args[0])
		if err != nil {
			return nil, err
		}
		return snopat.FenceOver(p), nil

	case "lit":
		if err := arity(1); err != nil {
			return nil, err
		}
		if args[0].kind != kindString {
			return nil, mismatch(name, "string", args[0])
		}
		return snopat.Lit(args[0].s), nil

	case "any", "notany", "span", "nspan", "break", "breakx":
		if err := arity(1); err != nil {
			return nil, err
		}
		switch a := args[0]; a.kind {
		case kindString:
			return classPattern(name, a.s), nil
		case kindVar:
			return classPattern(name, a.v), nil
		default:
			return nil, mismatch(name, "string or variable", a)
		}

	case "len", "pos", "rpos", "tab", "rtab":
		if err := arity(1); err != nil {
			return nil, err
		}
		switch a := args[0]; a.kind {
		case kindInt:
			return intPattern(name, a.n), nil
		case kindVar:
			return intPattern(name, a.v), nil
		default:
			return nil, mismatch(name, "integer or variable", a)
		}

	case "imm", "onmatch":
		if err := arity(2); err != nil {
			return nil, err
		}
		p, err := toPattern(name, args[0])
		if err != nil {
			return nil, err
		}
		if args[1].kind != kindVar {
			return nil, mismatch(name, "variable", args[1])
		}
		if name == "imm" {
			return p.ImmediateVar(args[1].v), nil
		}
		return p.OnSuccessVar(args[1].v), nil

	case "cursor":
		if err := arity(1); err != nil {
			return nil, err
		}
		if args[0].kind != kindVar {
			return nil, mismatch(name, "variable", args[0])
		}
		return snopat.CursorVar(args[0].v), nil
	}
	return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unknown function %q", name)}
}

func mismatch(name, want string, got value) *SyntaxError {
	return &SyntaxError{Pos: got.pos, Msg: fmt.Sprintf("%s wants %s, got %s", name, want, got.kind)}
}

// toPattern converts an element: a string matches literally and a variable
// is dereferenced at match time.
func toPattern(name string, x value) (*snopat.Pattern, error) {
	switch x.kind {
	case kindString:
		return snopat.Lit(x.s), nil
	case kindVar:
		return snopat.Deref(x.v), nil
	case kindPattern:
		return x.p, nil
	}
	return nil, mismatch(name, "pattern", x)
}

func classPattern[T snopat.ClassArg](name string, c T) *snopat.Pattern {
	switch name {
	case "any":
		return snopat.Any(c)
	case "notany":
		return snopat.NotAny(c)
	case "span":
		return snopat.Span(c)
	case "nspan":
		return snopat.NSpan(c)
	case "break":
		return snopat.Break(c)
	}
	return snopat.BreakX(c)
}

func intPattern[T snopat.IntArg](name string, n T) *snopat.Pattern {
	switch name {
	case "len":
		return snopat.Len(n)
	case "pos":
		return snopat.Pos(n)
	case "rpos":
		return snopat.RPos(n)
	case "tab":
		return snopat.Tab(n)
	}
	return snopat.RTab(n)
}
