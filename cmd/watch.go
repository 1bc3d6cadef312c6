package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/app"
	"github.com/avinashkr148/Call-analyzer/internal/pipeline"
	"github.com/avinashkr148/Call-analyzer/internal/watch"
)

var (
	watchInsight  bool
	watchChart    bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <FILE>",
	Short: "Re-print the report every time a call-log file changes",
	Long: `Watch prints the report for FILE, then prints it again after each save.
Press Ctrl-C to stop. On a terminal the screen is cleared between reports.

With --insight every change triggers a new AI request unless the same
records were described before (answers are cached by prompt).`,
	Example: `  callan watch calls.txt
  callan watch calls.txt --chart --debounce 1s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if path == pipeline.StdinName {
			return fmt.Errorf("watch needs a file path, not stdin")
		}
		if _, err := os.Stat(path); err != nil {
			return err
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		clearScreen := pipeline.IsTTY() && cmd.OutOrStdout() == os.Stdout && globalFlags.Out == ""
		w := watch.New(path, watchDebounce, watchAction(cmd, deps, path, clearScreen))
		return w.Run(ctx)
	},
}

// watchAction re-reports path. The store is released after each run so other
// callan commands are not locked out of the database while watch sleeps.
func watchAction(cmd *cobra.Command, deps *app.Deps, path string, clearScreen bool) func(context.Context) error {
	return func(ctx context.Context) error {
		defer deps.Close()
		start := time.Now()
		res, _, err := parseInput(cmd, path)
		if err != nil {
			return err
		}
		result := buildReport(ctx, deps, "watch", res.Records, watchInsight, start)
		result.Stats.Dropped = len(res.Dropped)
		result.Warnings = append(dropWarnings(res), result.Warnings...)
		if clearScreen {
			fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")
		}
		if !globalFlags.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  (updated %s)\n\n", path, time.Now().Format("15:04:05"))
		}
		return emitReport(cmd, deps, result, watchChart)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchInsight, "insight", false, "append an AI-generated summary to each report")
	watchCmd.Flags().BoolVar(&watchChart, "chart", false, "append ASCII charts (table output only)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"wait this long for writes to settle before re-running")
}
