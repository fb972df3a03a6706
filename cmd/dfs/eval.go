package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/dfs/pkg/dfs"
	"github.com/randalmurphal/dfs/pkg/dfs/api"
	"github.com/randalmurphal/dfs/pkg/dfs/builtins"
)

// factFlags are the flags that adjust a loaded spec before it is used.
type factFlags struct {
	sets []string
	at   string
}

func (f *factFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "override a fact: ctx.KEY=VALUE or sys.KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&f.at, "at", "", "evaluate as if the time were this instant (e.g. \"2024-03-02 09:30\")")
}

// apply writes the --set overrides into s.
func (f *factFlags) apply(s *dfs.Spec) error {
	for _, kv := range f.sets {
		if err := setFact(s, kv); err != nil {
			return err
		}
	}
	return nil
}

// engineOptions pins the clock when --at is given. Times without a zone
// are read in the settings' default timezone.
func (f *factFlags) engineOptions(a *app) ([]dfs.Option, error) {
	if f.at == "" {
		return nil, nil
	}
	loc, _ := builtins.LookupZone(a.settings.DefaultTimezone)
	clock, err := builtins.ParseClock(f.at, loc)
	if err != nil {
		return nil, err
	}
	return []dfs.Option{dfs.WithClock(clock)}, nil
}

// setFact applies one "ctx.key=value" or "sys.key=value" assignment.
func setFact(s *dfs.Spec, assignment string) error {
	path, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("invalid fact %q: want ctx.KEY=VALUE or sys.KEY=VALUE", assignment)
	}
	return setFactValue(s, path, value)
}

func setFactValue(s *dfs.Spec, path, value string) error {
	root, key, ok := strings.Cut(strings.TrimSpace(path), ".")
	if !ok || key == "" {
		return fmt.Errorf("invalid fact name %q: want ctx.KEY or sys.KEY", path)
	}
	switch root {
	case "ctx":
		s.Context[key] = value
	case "sys":
		s.System[key] = value
	default:
		return fmt.Errorf("invalid fact name %q: root must be ctx or sys", path)
	}
	return nil
}

func newEvalCmd(a *app) *cobra.Command {
	var (
		file   string
		asJSON bool
		facts  factFlags
	)

	cmd := &cobra.Command{
		Use:   "eval -f SPEC EXPRESSION",
		Short: "Evaluate a condition against a spec",
		Long: `Evaluate an expression against the ctx and sys facts of a spec and print
the value. With --json the output is a response document:
{"message": ..., "result": {"value": ..., "instanceof": ...}, "error": ...}

Examples:
  dfs eval -f support.yaml 'int(ctx.some_var) * 2'
  dfs eval -f support.yaml --set ctx.tier=gold 'ctx.tier == "gold"'
  dfs eval -f support.yaml --at "2024-03-02 10:00" 'is_weekend(sys.timezone)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSpec(file)
			if err != nil {
				return err
			}
			if err := facts.apply(s); err != nil {
				return err
			}
			opts, err := facts.engineOptions(a)
			if err != nil {
				return err
			}
			e, err := a.engine(opts...)
			if err != nil {
				return err
			}

			src := strings.Join(args, " ")
			r, err := e.EvalResult(cmd.Context(), s, src)
			if asJSON {
				resp := api.Success(r)
				if err != nil {
					resp = api.Failure(err)
				}
				if encErr := api.EncodeResponse(cmd.OutOrStdout(), resp); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Value)
			return nil
		},
	}
	specFlag(cmd, &file)
	facts.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON response document")
	return cmd
}
