package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/analyze"
	"github.com/avinashkr148/Call-analyzer/internal/app"
	"github.com/avinashkr148/Call-analyzer/internal/chart"
	"github.com/avinashkr148/Call-analyzer/internal/insight"
	"github.com/avinashkr148/Call-analyzer/internal/model"
	"github.com/avinashkr148/Call-analyzer/internal/render"
)

var (
	reportInsight  bool
	reportChart    bool
	reportSaveName string
)

var reportCmd = &cobra.Command{
	Use:   "report [FILE|-]",
	Short: "Parse a call log and print the full analytics report",
	Long: `Report parses FILE (or stdin) and prints the summary, top contacts,
connected/missed split and hourly volume in one go.

With --insight, a short AI-written summary of the batch is appended. Answers
are cached in the local database by prompt; --no-cache forces a fresh request.
If the insight service fails, the report still prints with
"Failed to generate AI insights." in place of the summary.`,
	Example: `  callan report calls.txt
  callan report calls.txt --chart
  callan report calls.txt --insight --format md --out report.md
  cat calls.txt | callan report --save "week 12"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		res, source, err := parseInput(cmd, inputArg(args))
		if err != nil {
			return err
		}

		result := buildReport(cmd.Context(), deps, "report", res.Records, reportInsight, start)
		result.Stats.Dropped = len(res.Dropped)
		result.Warnings = append(dropWarnings(res), result.Warnings...)

		if reportSaveName != "" {
			b, err := saveBatch(deps, reportSaveName, source, res.Records)
			if err != nil {
				return err
			}
			defer note(cmd, "Saved batch %s (%s)", b.ID, recordCount(len(b.Records)))
		}
		return emitReport(cmd, deps, result, reportChart)
	},
}

// buildReport aggregates records and optionally attaches an insight.
func buildReport(ctx context.Context, deps *app.Deps, command string, records []model.CallRecord, withInsight bool, start time.Time) *model.Result {
	rep := analyze.Analyze(records, topN(deps))
	var warnings []string
	cached := false

	if withInsight {
		ir := deps.DescribeBatch(ctx, records, !globalFlags.NoCache)
		switch {
		case !ir.OK:
			warnings = append(warnings, "no call records found; insight skipped")
		case ir.Text == insight.FailureMessage:
			warnings = append(warnings, "insight service unavailable (run with --debug for details)")
		}
		rep.Insight = ir.Text
		cached = ir.Cached
	}

	result := newResult(model.KindReport, command, rep, len(records), start)
	result.Warnings = warnings
	result.Stats.CacheHit = cached
	return result
}

// emitReport renders the report and, for table output with withCharts set,
// appends bar and column charts of the same data.
func emitReport(cmd *cobra.Command, deps *app.Deps, result *model.Result, withCharts bool) error {
	if !withCharts || resolveFormat(deps.Config.Format) != render.FormatTable {
		return emit(cmd, deps, result)
	}
	w, closeFn, err := outputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeFn()
	if err := render.Render(w, result, render.FormatTable); err != nil {
		return err
	}
	rep := result.Data.(model.Report)
	if rep.Summary.TotalDials > 0 {
		if err := writeReportCharts(w, rep); err != nil {
			return err
		}
	}
	if !deps.Config.Quiet {
		render.PrintFooter(cmd.ErrOrStderr(), result, deps.Config.Verbose)
	}
	return nil
}

func writeReportCharts(w io.Writer, rep model.Report) error {
	fmt.Fprintln(w)
	if len(rep.Top) > 0 {
		if err := chart.Bar(w, "Top contacts by talk time", chart.TopContactItems(rep.Top), chart.BarOptions{}); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if err := chart.Bar(w, "Connected vs missed", chart.SplitItems(rep.Split), chart.BarOptions{}); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if peak, ok := analyze.PeakHour(rep.Hourly); ok {
		title := fmt.Sprintf("Dials by hour (peak %s, %d dials)", render.HourLabel(peak.Hour), peak.Dials)
		return chart.Columns(w, chart.HourlyDials(rep.Hourly), chart.ColumnOptions{Title: title})
	}
	return nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportInsight, "insight", false,
		"append an AI-generated summary (needs an API key)")
	reportCmd.Flags().BoolVar(&reportChart, "chart", false,
		"append ASCII charts (table output only)")
	reportCmd.Flags().StringVar(&reportSaveName, "save", "",
		"also archive the parsed records as a named batch")
}
