// Package cmd implements the callan CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/app"
	"github.com/avinashkr148/Call-analyzer/internal/config"
	"github.com/avinashkr148/Call-analyzer/internal/render"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	APIKey  string
	Format  string
	Out     string
	NoCache bool
	Timeout string
	Rate    float64
	Top     int
	Quiet   bool
	Verbose bool
	Debug   bool
}

// rootCmd is the base command. Running `callan` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "callan",
	Short: "callan — call-log parser and analytics CLI",
	Long: `callan turns raw call-log text into validated call records and computes
dial totals, talk time, top contacts, connected/missed split and hourly volume.

An optional AI insight summarises a batch through any OpenAI-compatible
chat-completions endpoint.

Quick start:
  callan parse calls.txt                     # list validated records
  callan report calls.txt                    # full analytics report
  callan parse calls.txt --format jsonl | callan analyze top --n 10
  callan report calls.txt --insight          # add an AI summary (needs an API key)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.Format != "" && !render.ValidFormat(globalFlags.Format) {
			return fmt.Errorf("unknown --format %q (valid: table, json, jsonl, csv, tsv, md, yaml)", globalFlags.Format)
		}
		setupLogging(cmd.ErrOrStderr())
		return nil
	},
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setupLogging installs the process-wide slog handler: debug output with
// --debug, warnings otherwise, nothing at all with --quiet.
func setupLogging(w io.Writer) {
	level := slog.LevelWarn
	switch {
	case globalFlags.Debug:
		level = slog.LevelDebug
	case globalFlags.Quiet:
		w = io.Discard
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load(globalFlags.APIKey)
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", globalFlags.Timeout, err)
		}
		cfg.Timeout = d
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	if globalFlags.Top > 0 {
		cfg.TopN = globalFlags.Top
	}

	slog.Debug("config resolved",
		"config_file", cfg.ConfigPath,
		"api_key", cfg.RedactedAPIKey(),
		"db_path", cfg.DBPath,
		"insight_url", cfg.InsightURL,
		"model", cfg.InsightModel,
	)
	return app.New(cfg), nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.APIKey, "api-key", "",
		"insight API key (overrides env CALLAN_API_KEY and config.json)")
	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md|yaml (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.BoolVar(&globalFlags.NoCache, "no-cache", false,
		"always ask the insight service, ignoring cached answers")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"insight request timeout (e.g. 30s, 2m)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max insight requests per second (default: 1.0)")
	pf.IntVar(&globalFlags.Top, "top", 0,
		"number of top contacts to report (default: 5)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress warnings and status messages")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show timing and drop stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log config resolution and insight requests (API key redacted)")
}
