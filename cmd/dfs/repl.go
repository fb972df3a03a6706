package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/dfs/pkg/dfs"
)

const (
	replPrompt  = "dfs> "
	historyName = ".dfs_history"
)

const replHelp = `Enter an expression to evaluate it against the spec's facts.

Commands:
  :ctx                  show ctx facts
  :sys                  show sys facts
  :set ctx.KEY VALUE    set a fact (also sys.KEY)
  :unset ctx.KEY        remove a fact
  :intents              list intents
  :select INTENT        run the selection loop for an intent
  :lint                 lint the spec
  :help                 show this help
  exit, quit            leave (or Ctrl+D)`

var replCommands = []string{":ctx", ":sys", ":set ", ":unset ", ":intents", ":select ", ":lint", ":help"}

func newReplCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "repl [-f SPEC]",
		Short: "Evaluate expressions interactively",
		Long: `Start an interactive session. Expressions are evaluated against the spec
given with -f, or the sample spec when none is given. Facts can be changed
with :set and dialogs tried with :select. Type :help for all commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := dfs.Default()
			if file != "" {
				var err error
				if s, err = loadSpec(file); err != nil {
					return err
				}
			}
			e, err := a.engine()
			if err != nil {
				return err
			}
			return runRepl(cmd.Context(), &session{engine: e, spec: s, out: cmd.OutOrStdout()})
		},
	}
	specFlag(cmd, &file)
	return cmd
}

func runRepl(ctx context.Context, s *session) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	historyFile := filepath.Join(os.TempDir(), historyName)
	if dir, err := os.UserCacheDir(); err == nil {
		historyFile = filepath.Join(dir, historyName)
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(s.out, "dfs %s, %d intent(s). Type :help for commands.\n", Version, len(s.spec.Intents))
	for {
		input, err := line.Prompt(replPrompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if s.handle(ctx, input) {
			return nil
		}
	}
}

// session is the state of one repl: the spec being explored and where
// results go. It is independent of the terminal.
type session struct {
	engine *dfs.Engine
	spec   *dfs.Spec
	out    io.Writer
}

// handle runs one line of input and reports whether the session is over.
func (s *session) handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return false
	case input == "exit" || input == "quit":
		return true
	case strings.HasPrefix(input, ":"):
		s.command(ctx, input)
		return false
	}

	r, err := s.engine.EvalResult(ctx, s.spec, input)
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return false
	}
	fmt.Fprintf(s.out, "%s (%s)\n", r.Value, r.InstanceOf)
	return false
}

func (s *session) command(ctx context.Context, input string) {
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case ":help":
		fmt.Fprintln(s.out, replHelp)
	case ":ctx":
		printFacts(s.out, s.spec.Context)
	case ":sys":
		printFacts(s.out, s.spec.System)
	case ":set":
		path, value, _ := strings.Cut(rest, " ")
		if err := setFactValue(s.spec, path, strings.TrimSpace(value)); err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
	case ":unset":
		root, key, _ := strings.Cut(rest, ".")
		switch root {
		case "ctx":
			delete(s.spec.Context, key)
		case "sys":
			delete(s.spec.System, key)
		default:
			fmt.Fprintf(s.out, "error: invalid fact name %q: root must be ctx or sys\n", rest)
		}
	case ":intents":
		for _, intent := range s.spec.Intents {
			fmt.Fprintln(s.out, intent)
		}
	case ":select":
		sel, err := s.engine.Select(ctx, s.spec, rest)
		if sel != nil {
			for _, ce := range sel.CaseErrors {
				fmt.Fprintln(s.out, "skipped", ce)
			}
		}
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
			return
		}
		fmt.Fprintf(s.out, "case %d: %s\n", sel.Index, sel.Reply)
	case ":lint":
		issues := s.engine.Lint(s.spec)
		if len(issues) == 0 {
			fmt.Fprintln(s.out, "no issues")
		}
		for _, is := range issues {
			fmt.Fprintln(s.out, is)
		}
	default:
		fmt.Fprintf(s.out, "unknown command %s (try :help)\n", name)
	}
}

func printFacts(w io.Writer, facts map[string]string) {
	if len(facts) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s = %q\n", k, facts[k])
	}
}

// complete offers commands at the start of a line and function, constant
// and fact names for the word under the cursor.
func (s *session) complete(line string) []string {
	if strings.HasPrefix(line, ":") && !strings.Contains(line, " ") {
		return withPrefix(replCommands, line, "")
	}

	start := 0
	if i := strings.LastIndexFunc(line, func(r rune) bool {
		return r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}); i >= 0 {
		_, size := utf8.DecodeRuneInString(line[i:])
		start = i + size
	}
	head, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	lib := s.engine.Library()
	candidates := make([]string, 0, 64)
	for _, fn := range lib.Functions() {
		candidates = append(candidates, fn+"(")
	}
	candidates = append(candidates, lib.Constants()...)
	for k := range s.spec.Context {
		candidates = append(candidates, "ctx."+k)
	}
	for k := range s.spec.System {
		candidates = append(candidates, "sys."+k)
	}
	sort.Strings(candidates)
	return withPrefix(candidates, word, head)
}

func withPrefix(candidates []string, prefix, head string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, head+c)
		}
	}
	return out
}
