package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/model"
)

var parseSaveName string

var parseCmd = &cobra.Command{
	Use:   "parse [FILE|-]",
	Short: "Extract validated call records from raw call-log text",
	Long: `Parse reads raw call-log text from FILE (or stdin) and prints one row per
valid record, in source order. Records are separated by two or more spaces;
anything that does not match "<number> <M/D/YYYY h:mm AM|PM>[, HH:MM:SS]"
is skipped.

Use --format jsonl to feed the records into analyze or chart.`,
	Example: `  callan parse calls.txt
  pbpaste | callan parse
  callan parse calls.txt --format jsonl | callan analyze top --n 3
  callan parse calls.txt --save "monday shift"`,
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

		result := newResult(model.KindCallRecords, "parse", res.Records, len(res.Records), start)
		result.Stats.Dropped = len(res.Dropped)
		result.Warnings = dropWarnings(res)

		if parseSaveName != "" {
			b, err := saveBatch(deps, parseSaveName, source, res.Records)
			if err != nil {
				return err
			}
			defer note(cmd, "Saved batch %s (%s)", b.ID, recordCount(len(b.Records)))
		}
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&parseSaveName, "save", "",
		"also archive the parsed records as a named batch")
}
