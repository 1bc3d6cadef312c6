package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/analyze"
	"github.com/avinashkr148/Call-analyzer/internal/chart"
	"github.com/avinashkr148/Call-analyzer/internal/model"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render call aggregates as ASCII charts (reads JSONL from stdin)",
	Long: `Chart commands read JSONL call records from stdin and render to the terminal.

Pipeline examples:
  callan parse calls.txt --format jsonl | callan chart top
  callan parse calls.txt --format jsonl | callan chart split
  callan batch export 3f2a | callan chart hourly`,
}

var (
	chartWidth   int
	chartMaxBars int
	chartHeight  int
	chartTitle   string
	chartTalk    bool
)

// pipedChartRecords reads records for a chart, rejecting an empty stream.
func pipedChartRecords(cmd *cobra.Command) ([]model.CallRecord, error) {
	recs, _, err := readPipedRecords(cmd)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("chart: no call records on stdin")
	}
	return recs, nil
}

func titleOr(def string) string {
	if chartTitle != "" {
		return chartTitle
	}
	return def
}

// ─── chart top ────────────────────────────────────────────────────────────────

var chartTopCmd = &cobra.Command{
	Use:     "top",
	Short:   "Horizontal bars of talk time for the most-dialed numbers",
	Example: `  callan parse calls.txt --format jsonl | callan chart top --top 10`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		recs, err := pipedChartRecords(cmd)
		if err != nil {
			return err
		}
		items := chart.TopContactItems(analyze.TopContacts(recs, topN(deps)))
		return chart.Bar(cmd.OutOrStdout(), titleOr("Top contacts by talk time"), items,
			chart.BarOptions{Width: chartWidth, MaxBars: chartMaxBars})
	},
}

// ─── chart split ──────────────────────────────────────────────────────────────

var chartSplitCmd = &cobra.Command{
	Use:     "split",
	Short:   "Connected versus missed calls as bars",
	Example: `  callan parse calls.txt --format jsonl | callan chart split`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := pipedChartRecords(cmd)
		if err != nil {
			return err
		}
		return chart.Bar(cmd.OutOrStdout(), titleOr("Connected vs missed"),
			chart.SplitItems(analyze.StatusSplit(recs)), chart.BarOptions{Width: chartWidth})
	},
}

// ─── chart hourly ─────────────────────────────────────────────────────────────

var chartHourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Dials per hour of day as a column chart",
	Long: `Renders a 24-column chart of dials per hour. With --talk-time, renders
talk time per active hour as horizontal bars instead.`,
	Example: `  callan parse calls.txt --format jsonl | callan chart hourly
  callan parse calls.txt --format jsonl | callan chart hourly --talk-time`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := pipedChartRecords(cmd)
		if err != nil {
			return err
		}
		hourly := analyze.HourlyVolume(recs)
		if chartTalk {
			return chart.Bar(cmd.OutOrStdout(), titleOr("Talk time by hour"),
				chart.HourlyTalkItems(hourly), chart.BarOptions{Width: chartWidth})
		}
		return chart.Columns(cmd.OutOrStdout(), chart.HourlyDials(hourly),
			chart.ColumnOptions{Height: chartHeight, Title: titleOr("Dials by hour")})
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartTopCmd)
	chartCmd.AddCommand(chartSplitCmd)
	chartCmd.AddCommand(chartHourlyCmd)

	chartCmd.PersistentFlags().IntVar(&chartWidth, "width", 0,
		"total line width in characters (default: $COLUMNS or 80)")
	chartCmd.PersistentFlags().StringVar(&chartTitle, "title", "",
		"chart title (default depends on the chart)")
	chartTopCmd.Flags().IntVar(&chartMaxBars, "max-bars", 0,
		"limit to N bars (default: all)")
	chartHourlyCmd.Flags().IntVar(&chartHeight, "height", 10,
		"chart height in rows")
	chartHourlyCmd.Flags().BoolVar(&chartTalk, "talk-time", false,
		"chart talk time per hour instead of dial counts")
}
