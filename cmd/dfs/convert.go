package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/dfs/pkg/dfs/config"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		in     string
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "convert -f IN [-o OUT]",
		Short: "Convert a spec between yaml and json",
		Long: `Read a spec and write it back in another format. The output format follows
the extension of -o; without -o the spec is printed in --format.

Examples:
  dfs convert -f support.yaml -o support.json
  dfs convert -f support.json --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSpec(in)
			if err != nil {
				return err
			}
			if out != "" {
				if err := s.WriteFile(out); err != nil {
					return err
				}
				a.logger.Debug("spec converted", "from", in, "to", out)
				return nil
			}
			data, err := s.Encode(config.Format(format))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	specFlag(cmd, &in)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&format, "format", string(config.FormatJSON), fmt.Sprintf("stdout format: %s, %s", config.FormatYAML, config.FormatJSON))
	return cmd
}
