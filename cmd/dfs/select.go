package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/dfs/pkg/dfs"
	"github.com/randalmurphal/dfs/pkg/dfs/watch"
)

func newSelectCmd(a *app) *cobra.Command {
	var (
		file    string
		watchIt bool
		asJSON  bool
		facts   factFlags
	)

	cmd := &cobra.Command{
		Use:   "select -f SPEC INTENT",
		Short: "Choose the reply for an intent",
		Long: `Evaluate the cases of an intent's dialog in order and print the reply of
the first case whose condition holds. Conditions that fail to evaluate are
reported on stderr and skipped.

With --watch the spec is reloaded and the selection re-run every time the
file changes, until interrupted.

Examples:
  dfs select -f support.yaml billing
  dfs select -f support.yaml "login issue" --set ctx.attempts=4 --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent := args[0]
			opts, err := facts.engineOptions(a)
			if err != nil {
				return err
			}
			e, err := a.engine(opts...)
			if err != nil {
				return err
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			run := func(ctx context.Context, s *dfs.Spec) error {
				if err := facts.apply(s); err != nil {
					return err
				}
				sel, err := e.Select(ctx, s, intent)
				return printSelection(out, errOut, sel, err, asJSON)
			}

			if !watchIt {
				s, err := loadSpec(file)
				if err != nil {
					return err
				}
				return run(cmd.Context(), s)
			}

			if file == "" {
				return fmt.Errorf("no spec file given (use -f)")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fw, err := watch.New(file, watch.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer fw.Close()

			return fw.Watch(ctx, func(s *dfs.Spec, err error) {
				if err != nil {
					fmt.Fprintln(errOut, "reload failed:", err)
					return
				}
				if err := run(ctx, s); err != nil {
					fmt.Fprintln(errOut, err)
				}
			})
		},
	}
	specFlag(cmd, &file)
	facts.register(cmd)
	cmd.Flags().BoolVarP(&watchIt, "watch", "w", false, "re-run whenever the spec file changes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the selection as JSON")
	return cmd
}

func printSelection(out, errOut io.Writer, sel *dfs.Selection, err error, asJSON bool) error {
	if sel != nil {
		for _, ce := range sel.CaseErrors {
			fmt.Fprintln(errOut, "skipped", ce)
		}
	}
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(sel)
	}
	fmt.Fprintln(out, sel.Reply)
	return nil
}
