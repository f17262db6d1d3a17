package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/coregx/snopat"
	"github.com/coregx/snopat/internal/expr"
)

// errNoMatch makes the command exit with status 1 without a message.
var errNoMatch = errors.New("no lines matched")

// maxLine is the longest input line accepted.
const maxLine = 1 << 20

type options struct {
	anchored     bool
	onlyMatching bool
	replace      string
	hasReplace   bool
	withFilename bool
	dump         bool
	vars         bool
	cfg          snopat.Config
}

// run executes the command with args and returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNoMatch):
		return 1
	}
	fmt.Fprintf(stderr, "snomatch: %v\n", err)
	return 2
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("snomatch")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "snomatch [flags] EXPR [FILE...]",
		Short: "Print lines matching a SNOBOL-style pattern.",
		Long: "snomatch reads each FILE, or standard input when none is given, and prints\n" +
			"the lines matched by EXPR. EXPR is written as combinator calls, e.g.\n" +
			"  and(or(\"b\", \"r\"), arbno(\"an\"), \"a\")\n\n" +
			"Every flag can also be set from the environment as SNOMATCH_<FLAG>,\n" +
			"for example SNOMATCH_STACK_SIZE=10000.",
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			opts, err := loadOptions(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return execute(cmd.OutOrStdout(), stdin, args[0], args[1:], opts)
		},
	}

	registerFlags(cmd.Flags())
	return cmd
}

func registerFlags(fs *pflag.FlagSet) {
	def := snopat.DefaultConfig()
	fs.BoolP("anchored", "a", false, "match only at the start of each line")
	fs.BoolP("only-matching", "o", false, "print only the matched part of each line")
	fs.StringP("replace", "r", "", "print each line with the matched part replaced by `TEXT`")
	fs.Int("stack-size", def.StackSize, "pattern stack size, in entries")
	fs.Bool("no-prefilter", false, "try every start offset instead of skipping with the literal prefilter")
	fs.Bool("dump", false, "print the pattern's node tree and exit")
	fs.Bool("vars", false, "print pattern variables after each matching line")
	fs.BoolP("verbose", "v", false, "trace every match step on stderr")
	fs.BoolP("with-filename", "H", false, "prefix each output line with its file name")
}

func loadOptions(v *viper.Viper, stderr io.Writer) (options, error) {
	opts := options{
		anchored:     v.GetBool("anchored"),
		onlyMatching: v.GetBool("only-matching"),
		replace:      v.GetString("replace"),
		hasReplace:   v.IsSet("replace"),
		withFilename: v.GetBool("with-filename"),
		dump:         v.GetBool("dump"),
		vars:         v.GetBool("vars"),
		cfg:          snopat.DefaultConfig(),
	}
	opts.cfg.StackSize = v.GetInt("stack-size")
	opts.cfg.EnablePrefilter = !v.GetBool("no-prefilter")
	if v.GetBool("verbose") {
		opts.cfg.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	if opts.onlyMatching && opts.hasReplace {
		return opts, errors.New("--only-matching and --replace cannot be combined")
	}
	return opts, opts.cfg.Validate()
}

func execute(out io.Writer, stdin io.Reader, src string, files []string, opts options) error {
	ps := expr.NewParser()
	p, err := ps.Parse(src)
	if err != nil {
		return err
	}
	if opts.dump {
		_, err := fmt.Fprint(out, p.Tree())
		return err
	}

	g := &grep{out: bufio.NewWriter(out), p: p, ps: ps, opts: opts}
	if len(files) == 0 {
		err = g.scan("(standard input)", stdin)
	} else {
		for _, name := range files {
			if err = g.scanFile(name); err != nil {
				break
			}
		}
	}
	if ferr := g.out.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	if !g.found {
		return errNoMatch
	}
	return nil
}

type grep struct {
	out   *bufio.Writer
	p     *snopat.Pattern
	ps    *expr.Parser
	opts  options
	found bool
}

func (g *grep) scanFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return g.scan(name, f)
}

func (g *grep) scan(name string, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	for lineno := 1; sc.Scan(); lineno++ {
		line := sc.Text()
		m, err := g.p.MatchWithConfig(line, g.opts.anchored, g.opts.cfg)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineno, err)
		}
		if m == nil {
			continue
		}
		g.found = true
		g.print(name, m)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (g *grep) print(name string, m *snopat.Match) {
	if g.opts.withFilename {
		g.out.WriteString(name)
		g.out.WriteByte(':')
	}
	switch {
	case g.opts.onlyMatching:
		g.out.WriteString(m.Matched())
	case g.opts.hasReplace:
		g.out.WriteString(m.Replace(g.opts.replace))
	default:
		g.out.WriteString(m.Subject())
	}
	g.out.WriteByte('\n')

	if g.opts.vars {
		for _, v := range g.ps.Vars() {
			fmt.Fprintf(g.out, "\t%s=%v\n", v.Name(), v.Get())
		}
	}
}
