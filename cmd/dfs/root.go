package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/dfs/pkg/dfs"
	"github.com/randalmurphal/dfs/pkg/dfs/config"
)

// app holds the state shared by every subcommand: global flags and what
// they resolve to.
type app struct {
	cfgFile   string
	verbose   bool
	logFormat string

	settings  config.Settings
	logger    *slog.Logger
	telemetry *telemetry
}

func newRootCmd() *cobra.Command {
	a := &app{settings: config.DefaultSettings()}

	root := &cobra.Command{
		Use:   "dfs",
		Short: "Dialog flow spec engine",
		Long: `dfs evaluates dialog flow specs.

A spec declares intents, a set of ctx and sys facts, and for each intent an
ordered list of cases. Each case has a condition expression and a reply.
Selecting an intent evaluates its conditions in order and returns the reply
of the first one that holds.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "settings file (yaml or json)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text, json (overrides settings)")

	root.AddCommand(
		newInitCmd(a),
		newEvalCmd(a),
		newSelectCmd(a),
		newValidateCmd(a),
		newConvertCmd(a),
		newReplCmd(a),
		newStoreCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup resolves settings (file, then environment, then flags) and builds
// the logger and telemetry they ask for.
func (a *app) setup(stderr io.Writer) error {
	s, err := config.LoadSettings(a.cfgFile)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if s, err = s.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if a.verbose {
		s.LogLevel = "debug"
	}
	if a.logFormat != "" {
		s.LogFormat = a.logFormat
	}
	if err := s.Validate(); err != nil {
		return err
	}

	a.settings = s
	a.logger = newLogger(stderr, s)
	a.telemetry = setupTelemetry(s, a.logger)
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.telemetry == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return a.telemetry.Shutdown(ctx)
}

func newLogger(w io.Writer, s config.Settings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.Level()}
	if strings.EqualFold(s.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// engine builds an engine from the resolved settings.
func (a *app) engine(opts ...dfs.Option) (*dfs.Engine, error) {
	base := []dfs.Option{dfs.WithLogger(a.logger)}
	return dfs.NewEngine(a.settings, append(base, opts...)...)
}

// specFlag registers the -f flag shared by commands that read a spec.
func specFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "file", "f", "", "spec file (.yaml, .yml or .json)")
}

func loadSpec(path string) (*dfs.Spec, error) {
	if path == "" {
		return nil, fmt.Errorf("no spec file given (use -f)")
	}
	return dfs.LoadFile(path)
}
