package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/insight"
	"github.com/avinashkr148/Call-analyzer/internal/model"
	"github.com/avinashkr148/Call-analyzer/internal/pipeline"
)

var insightRecords bool

var insightCmd = &cobra.Command{
	Use:   "insight [FILE|-]",
	Short: "Ask an AI service for a short summary of a call log",
	Long: fmt.Sprintf(`Insight sends up to %d records of the batch to an OpenAI-compatible
chat-completions endpoint and prints the returned Markdown summary.

The endpoint and model come from config.json (insight_url, insight_model) or
CALLAN_INSIGHT_URL / CALLAN_INSIGHT_MODEL. On any failure the command prints
%q and exits successfully.`, insight.MaxPromptRecords, insight.FailureMessage),
	Example: `  callan insight calls.txt
  callan parse calls.txt --format jsonl | callan insight --records
  callan insight calls.txt --no-cache --timeout 1m`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.Config.Validate(); err != nil {
			return err
		}
		defer deps.Close()

		var (
			records  []model.CallRecord
			warnings []string
			dropped  int
		)
		if insightRecords {
			if len(args) > 0 && args[0] != pipeline.StdinName {
				return fmt.Errorf("--records reads JSONL from stdin; drop the %q argument", args[0])
			}
			records, warnings, err = readPipedRecords(cmd)
		} else {
			res, _, perr := parseInput(cmd, inputArg(args))
			records, warnings, dropped, err = res.Records, dropWarnings(res), len(res.Dropped), perr
		}
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("%w (nothing matched the call-log format)", insight.ErrNoRecords)
		}

		ir := deps.DescribeBatch(cmd.Context(), records, !globalFlags.NoCache)
		result := newResult(model.KindInsight, "insight", ir.Text, len(records), start)
		result.Warnings = warnings
		result.Stats.Dropped = dropped
		result.Stats.CacheHit = ir.Cached
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(insightCmd)
	insightCmd.Flags().BoolVar(&insightRecords, "records", false,
		"read JSONL call records from stdin instead of raw text")
}
