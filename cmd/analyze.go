package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/analyze"
	"github.com/avinashkr148/Call-analyzer/internal/app"
	"github.com/avinashkr148/Call-analyzer/internal/model"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Aggregate call records (reads JSONL from stdin)",
	Long: `Analyze operators read JSONL call records from stdin and print aggregates.

Examples:
  callan parse calls.txt --format jsonl | callan analyze summary
  callan batch export 3f2a --format jsonl | callan analyze top --n 10`,
}

// pipedAnalysis reads the record stream and wraps compute's output.
func pipedAnalysis(cmd *cobra.Command, kind, command string,
	compute func(*app.Deps, []model.CallRecord) (interface{}, int)) error {
	start := time.Now()
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	recs, warnings, err := readPipedRecords(cmd)
	if err != nil {
		return err
	}
	data, items := compute(deps, recs)
	result := newResult(kind, command, data, items, start)
	result.Warnings = warnings
	return emit(cmd, deps, result)
}

// ─── analyze summary ─────────────────────────────────────────────────────────

var analyzeSummaryCmd = &cobra.Command{
	Use:     "summary",
	Short:   "Total dials, total talk time, connection rate",
	Example: `  callan parse calls.txt --format jsonl | callan analyze summary`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipedAnalysis(cmd, model.KindSummary, "analyze summary",
			func(_ *app.Deps, recs []model.CallRecord) (interface{}, int) {
				return analyze.Summarize(recs), len(recs)
			})
	},
}

// ─── analyze top ─────────────────────────────────────────────────────────────

var analyzeTopN int

var analyzeTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Most-dialed numbers with dial counts and talk time",
	Long: `Ranks numbers by dial count, descending. Numbers with equal counts keep
the order in which they first appear in the input.`,
	Example: `  callan parse calls.txt --format jsonl | callan analyze top
  callan parse calls.txt --format jsonl | callan analyze top --n 10 --format csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipedAnalysis(cmd, model.KindTopContacts, "analyze top",
			func(deps *app.Deps, recs []model.CallRecord) (interface{}, int) {
				n := analyzeTopN
				if n <= 0 {
					n = topN(deps)
				}
				top := analyze.TopContacts(recs, n)
				return top, len(top)
			})
	},
}

// ─── analyze split ───────────────────────────────────────────────────────────

var analyzeSplitCmd = &cobra.Command{
	Use:     "split",
	Short:   "Connected versus missed calls",
	Example: `  callan parse calls.txt --format jsonl | callan analyze split`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipedAnalysis(cmd, model.KindStatusSplit, "analyze split",
			func(_ *app.Deps, recs []model.CallRecord) (interface{}, int) {
				return analyze.StatusSplit(recs), len(recs)
			})
	},
}

// ─── analyze hourly ──────────────────────────────────────────────────────────

var analyzeHourlyCmd = &cobra.Command{
	Use:     "hourly",
	Short:   "Dials, connected calls and talk time per hour of day",
	Example: `  callan parse calls.txt --format jsonl | callan analyze hourly`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipedAnalysis(cmd, model.KindHourly, "analyze hourly",
			func(_ *app.Deps, recs []model.CallRecord) (interface{}, int) {
				hourly := analyze.HourlyVolume(recs)
				return hourly, len(hourly)
			})
	},
}

// topN resolves the top-contacts limit; buildDeps has already folded --top
// into the config.
func topN(deps *app.Deps) int {
	if deps.Config.TopN > 0 {
		return deps.Config.TopN
	}
	return analyze.DefaultTopN
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeSummaryCmd)
	analyzeCmd.AddCommand(analyzeTopCmd)
	analyzeCmd.AddCommand(analyzeSplitCmd)
	analyzeCmd.AddCommand(analyzeHourlyCmd)

	analyzeTopCmd.Flags().IntVar(&analyzeTopN, "n", 0,
		"number of contacts to show (default: --top, then config top_n, then 5)")
}
