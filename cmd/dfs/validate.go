package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/dfs/pkg/dfs"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		file   string
		strict bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "validate -f SPEC",
		Short: "Check a spec without evaluating it",
		Long: `Validate a spec document against the schema and the intent rules, then
lint every condition and reply:
  - conditions that do not parse
  - calls to unknown functions and unresolved identifiers
  - ctx and sys keys that are read but never set

Errors make the command fail. With --strict, warnings do too.

Examples:
  dfs validate -f support.yaml
  dfs validate -f support.json --strict --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSpec(file)
			if err != nil {
				return err
			}
			e, err := a.engine()
			if err != nil {
				return err
			}
			issues := e.Lint(s)

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				if issues == nil {
					issues = []dfs.Issue{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(issues); err != nil {
					return err
				}
			case "text":
				for _, is := range issues {
					fmt.Fprintln(out, is)
				}
			default:
				return fmt.Errorf("unsupported format %q (want text or json)", format)
			}

			var errs, warns int
			for _, is := range issues {
				if is.Severity == dfs.SeverityError {
					errs++
				} else {
					warns++
				}
			}
			if errs > 0 || (strict && warns > 0) {
				return fmt.Errorf("%s: %d error(s), %d warning(s)", file, errs, warns)
			}
			if format == "text" {
				fmt.Fprintf(out, "%s: ok (%d warning(s))\n", file, warns)
			}
			return nil
		},
	}
	specFlag(cmd, &file)
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}
