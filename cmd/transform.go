package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/model"
	"github.com/avinashkr148/Call-analyzer/internal/pipeline"
	"github.com/avinashkr148/Call-analyzer/internal/render"
	"github.com/avinashkr148/Call-analyzer/internal/transform"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Filter, sort or dedupe call records (reads JSONL from stdin)",
	Long: `Transform operators read JSONL call records from stdin and write JSONL to
stdout, so they can be chained between parse and analyze/chart.

Examples:
  callan parse calls.txt --format jsonl | callan transform filter --status connected | callan analyze top
  cat a.txt b.txt | callan parse --format jsonl | callan transform dedupe | callan analyze summary`,
}

// writeTransformOutput writes JSONL when piped and a table on a terminal,
// unless --format says otherwise.
func writeTransformOutput(cmd *cobra.Command, command string, recs []model.CallRecord, warnings []string, start time.Time) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	format := globalFlags.Format
	if format == "" {
		format = render.FormatJSONL
		if pipeline.IsTTY() && globalFlags.Out == "" {
			format = render.FormatTable
		}
	}

	if format == render.FormatJSONL {
		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := pipeline.WriteJSONL(w, recs); err != nil {
			closeFn()
			return err
		}
		if !globalFlags.Quiet {
			for _, warn := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠  %s\n", warn)
			}
		}
		return closeFn()
	}

	result := newResult(model.KindCallRecords, command, recs, len(recs), start)
	result.Warnings = warnings
	return emitAs(cmd, deps, result, format)
}

// ─── filter ───────────────────────────────────────────────────────────────────

var (
	transformFilterAfter   string
	transformFilterBefore  string
	transformFilterNumbers []string
	transformFilterStatus  string
	transformFilterMin     string
	transformFilterMax     string
)

// filterTimeLayouts are accepted by --after and --before.
var filterTimeLayouts = []string{"2006-01-02 15:04", "2006-01-02", model.TimestampLayout}

func parseFilterTime(flag, s string) (time.Time, error) {
	for _, layout := range filterTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--%s: invalid time %q (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")", flag, s)
}

func parseFilterDuration(flag, s string) (int64, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return int64(d.Seconds()), nil
	}
	return 0, fmt.Errorf("--%s: invalid duration %q (e.g. 30s, 2m)", flag, s)
}

var transformFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep calls matching a time window, number, status or duration",
	Example: `  callan parse calls.txt --format jsonl | callan transform filter --after 2024-01-02 --before 2024-01-03
  callan parse calls.txt --format jsonl | callan transform filter --number 14155551234 --status connected
  callan parse calls.txt --format jsonl | callan transform filter --min-duration 1m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		opts := transform.FilterOptions{
			Numbers: transformFilterNumbers,
			Status:  transformFilterStatus,
		}
		var err error
		if transformFilterAfter != "" {
			if opts.After, err = parseFilterTime("after", transformFilterAfter); err != nil {
				return err
			}
		}
		if transformFilterBefore != "" {
			if opts.Before, err = parseFilterTime("before", transformFilterBefore); err != nil {
				return err
			}
		}
		if transformFilterMin != "" {
			if opts.MinDuration, err = parseFilterDuration("min-duration", transformFilterMin); err != nil {
				return err
			}
		}
		if transformFilterMax != "" {
			if opts.MaxDuration, err = parseFilterDuration("max-duration", transformFilterMax); err != nil {
				return err
			}
		}
		if err := opts.Validate(); err != nil {
			return err
		}

		recs, warnings, err := readPipedRecords(cmd)
		if err != nil {
			return err
		}
		return writeTransformOutput(cmd, "transform filter", transform.Filter(recs, opts), warnings, start)
	},
}

// ─── sort ─────────────────────────────────────────────────────────────────────

var (
	transformSortBy   string
	transformSortDesc bool
)

var transformSortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Order calls by time, duration or number",
	Example: `  callan parse calls.txt --format jsonl | callan transform sort --by duration --desc
  callan batch export 3f2a | callan transform sort --by time`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		recs, warnings, err := readPipedRecords(cmd)
		if err != nil {
			return err
		}
		out, err := transform.Sort(recs, transform.SortKey(transformSortBy), transformSortDesc)
		if err != nil {
			return err
		}
		return writeTransformOutput(cmd, "transform sort", out, warnings, start)
	},
}

// ─── dedupe ───────────────────────────────────────────────────────────────────

var transformDedupeCmd = &cobra.Command{
	Use:     "dedupe",
	Short:   "Drop calls identical to an earlier one",
	Example: `  cat jan.txt jan-again.txt | callan parse --format jsonl | callan transform dedupe`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		recs, warnings, err := readPipedRecords(cmd)
		if err != nil {
			return err
		}
		out, removed := transform.Dedupe(recs)
		if removed > 0 {
			warnings = append(warnings, fmt.Sprintf("removed %d duplicate calls", removed))
		}
		return writeTransformOutput(cmd, "transform dedupe", out, warnings, start)
	},
}

// ─── head ─────────────────────────────────────────────────────────────────────

var transformHeadN int

var transformHeadCmd = &cobra.Command{
	Use:     "head",
	Short:   "Keep the first N calls",
	Example: `  callan parse calls.txt --format jsonl | callan transform sort --by duration --desc | callan transform head --n 10`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		recs, warnings, err := readPipedRecords(cmd)
		if err != nil {
			return err
		}
		return writeTransformOutput(cmd, "transform head", transform.Head(recs, transformHeadN), warnings, start)
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.AddCommand(transformFilterCmd)
	transformCmd.AddCommand(transformSortCmd)
	transformCmd.AddCommand(transformDedupeCmd)
	transformCmd.AddCommand(transformHeadCmd)

	f := transformFilterCmd.Flags()
	f.StringVar(&transformFilterAfter, "after", "", "keep calls at or after this time (YYYY-MM-DD[ HH:MM])")
	f.StringVar(&transformFilterBefore, "before", "", "keep calls before this time (YYYY-MM-DD[ HH:MM])")
	f.StringSliceVar(&transformFilterNumbers, "number", nil, "keep only these numbers (repeatable or comma-separated)")
	f.StringVar(&transformFilterStatus, "status", "", "keep only connected or missed calls")
	f.StringVar(&transformFilterMin, "min-duration", "", "keep calls lasting at least this long (e.g. 30s)")
	f.StringVar(&transformFilterMax, "max-duration", "", "keep calls lasting at most this long (e.g. 10m)")

	transformSortCmd.Flags().StringVar(&transformSortBy, "by", string(transform.SortTime), "sort key: time|duration|number")
	transformSortCmd.Flags().BoolVar(&transformSortDesc, "desc", false, "sort in descending order")

	transformHeadCmd.Flags().IntVar(&transformHeadN, "n", 10, "number of calls to keep")
}
