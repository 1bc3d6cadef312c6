package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/app"
	"github.com/avinashkr148/Call-analyzer/internal/model"
	"github.com/avinashkr148/Call-analyzer/internal/pipeline"
	"github.com/avinashkr148/Call-analyzer/internal/render"
	"github.com/avinashkr148/Call-analyzer/internal/util"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Archive parsed call logs and re-run reports on them",
	Long: `A batch is a named, timestamped set of parsed call records kept in the
local database. Batch IDs are UUIDs; any unique prefix is accepted.

Batches are created with 'callan batch save', or with --save on parse/report.`,
}

// saveBatch stores records under name, opening the store on demand.
func saveBatch(deps *app.Deps, name, source string, records []model.CallRecord) (model.Batch, error) {
	if err := deps.RequireStore(); err != nil {
		return model.Batch{}, err
	}
	b, err := deps.Store.PutBatch(model.Batch{
		Name:    strings.TrimSpace(name),
		Source:  source,
		Records: records,
	})
	if err != nil {
		return b, fmt.Errorf("saving batch: %w", err)
	}
	return b, nil
}

func recordCount(n int) string {
	return util.Plural(n, "record")
}

// openBatch opens the store and resolves id to a saved batch.
func openBatch(deps *app.Deps, id string) (model.Batch, error) {
	if err := deps.RequireStore(); err != nil {
		return model.Batch{}, err
	}
	b, err := deps.Store.GetBatch(id)
	if err != nil {
		return b, fmt.Errorf("reading batch: %w", err)
	}
	return b, nil
}

// ─── batch save ───────────────────────────────────────────────────────────────

var batchSaveName string

var batchSaveCmd = &cobra.Command{
	Use:   "save [FILE|-] --name <name>",
	Short: "Parse a call log and archive the records",
	Example: `  callan batch save calls.txt --name "monday shift"
  pbpaste | callan batch save --name clipboard`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(batchSaveName) == "" {
			return fmt.Errorf("--name is required")
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		res, source, err := parseInput(cmd, inputArg(args))
		if err != nil {
			return err
		}
		b, err := saveBatch(deps, batchSaveName, source, res.Records)
		if err != nil {
			return err
		}
		status(cmd, "Saved batch %s  (%s, %s)", b.ID, b.Name, recordCount(len(b.Records)))
		if len(res.Dropped) > 0 && !globalFlags.Quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠  %s\n", dropWarnings(res)[0])
		}
		return nil
	},
}

// ─── batch list ───────────────────────────────────────────────────────────────

var batchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved batches, oldest first",
	Example: `  callan batch list
  callan batch list --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		infos, err := deps.Store.ListBatches()
		if err != nil {
			return fmt.Errorf("listing batches: %w", err)
		}
		if len(infos) == 0 && resolveFormat(deps.Config.Format) == render.FormatTable {
			fmt.Fprintln(cmd.OutOrStdout(), "No batches saved.")
			fmt.Fprintln(cmd.OutOrStdout(), "  Use: callan batch save <FILE> --name <name>")
			return nil
		}
		if infos == nil {
			infos = []model.BatchInfo{}
		}
		return emit(cmd, deps, newResult(model.KindBatchList, "batch list", infos, len(infos), start))
	},
}

// ─── batch show ───────────────────────────────────────────────────────────────

var batchShowCmd = &cobra.Command{
	Use:     "show <ID>",
	Short:   "Show a saved batch and its records",
	Example: `  callan batch show 3f2a9c1e`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		b, err := openBatch(deps, args[0])
		if err != nil {
			return err
		}
		return emit(cmd, deps, newResult(model.KindBatch, "batch show", b, len(b.Records), start))
	},
}

// ─── batch export ─────────────────────────────────────────────────────────────

var batchExportCmd = &cobra.Command{
	Use:   "export <ID>",
	Short: "Write a batch's records as JSONL for piping into analyze or chart",
	Example: `  callan batch export 3f2a | callan analyze top --n 10
  callan batch export 3f2a --out week12.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		b, err := openBatch(deps, args[0])
		if err != nil {
			return err
		}
		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := pipeline.WriteJSONL(w, b.Records); err != nil {
			closeFn()
			return err
		}
		return closeFn()
	},
}

// ─── batch report ─────────────────────────────────────────────────────────────

var (
	batchReportInsight bool
	batchReportChart   bool
)

var batchReportCmd = &cobra.Command{
	Use:   "report <ID>",
	Short: "Run the analytics report on a saved batch",
	Example: `  callan batch report 3f2a
  callan batch report 3f2a --insight --format md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		b, err := openBatch(deps, args[0])
		if err != nil {
			return err
		}
		result := buildReport(cmd.Context(), deps, "batch report", b.Records, batchReportInsight, start)
		return emitReport(cmd, deps, result, batchReportChart)
	},
}

// ─── batch delete ─────────────────────────────────────────────────────────────

var batchDeleteCmd = &cobra.Command{
	Use:     "delete <ID...>",
	Short:   "Delete one or more saved batches",
	Example: `  callan batch delete 3f2a 9b1c`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		var errs util.MultiError
		for _, id := range args {
			b, err := deps.Store.GetBatch(id)
			if err == nil {
				err = deps.Store.DeleteBatch(b.ID)
			}
			if err != nil {
				errs.Add(err)
				continue
			}
			status(cmd, "Deleted batch %s  (%s)", b.ID, b.Name)
		}
		return errs.Err()
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchSaveCmd)
	batchCmd.AddCommand(batchListCmd)
	batchCmd.AddCommand(batchShowCmd)
	batchCmd.AddCommand(batchExportCmd)
	batchCmd.AddCommand(batchReportCmd)
	batchCmd.AddCommand(batchDeleteCmd)

	batchSaveCmd.Flags().StringVar(&batchSaveName, "name", "", "human-readable name for the batch (required)")
	batchReportCmd.Flags().BoolVar(&batchReportInsight, "insight", false, "append an AI-generated summary")
	batchReportCmd.Flags().BoolVar(&batchReportChart, "chart", false, "append ASCII charts (table output only)")
}
