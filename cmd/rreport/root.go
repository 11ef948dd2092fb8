package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/rreport/internal/config"
	"github.com/JonMunkholm/rreport/internal/core"
	"github.com/JonMunkholm/rreport/internal/logging"
	"github.com/JonMunkholm/rreport/internal/session"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Output formats for structured results.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// globalOptions holds the persistent flags and the configuration loaded
// from them.
type globalOptions struct {
	envFile  string
	output   string
	logLevel string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "rreport",
		Short:         "Exploratory data analysis for CSV, Excel and JSON files",
		Long:          `rreport profiles tabular files: it summarizes every column, flags data quality issues, runs common statistical tests and serves an interactive web console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.envFile, "env-file", "", "load settings from this .env file (default .env if present)")
	f.StringVarP(&opts.output, "output", "o", outputText, "output format: text, json or yaml")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newServeCmd(opts),
		newReportCmd(opts),
		newTestCmd(opts),
		newPageCmd(opts),
	)
	return cmd
}

// setup loads the environment and configuration shared by all commands.
// Logs go to stderr so that stdout carries only command output.
func (o *globalOptions) setup(cmd *cobra.Command) error {
	switch o.output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unsupported --output %q (use text, json or yaml)", o.output)
	}

	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format))

	o.cfg = cfg
	return nil
}

// analyzeFile loads path into a fresh session the same way an upload is
// analyzed by the web console.
func (o *globalOptions) analyzeFile(ctx context.Context, path string) (*core.Service, *session.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	svc := core.NewService(core.OptionsFromConfig(o.cfg))
	sess := session.New("cli")
	if _, err := svc.Analyze(ctx, sess, filepath.Base(path), data); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return svc, sess, nil
}
