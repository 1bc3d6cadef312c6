package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/avinashkr148/Call-analyzer/internal/app"
	"github.com/avinashkr148/Call-analyzer/internal/calllog"
	"github.com/avinashkr148/Call-analyzer/internal/model"
	"github.com/avinashkr148/Call-analyzer/internal/pipeline"
	"github.com/avinashkr148/Call-analyzer/internal/render"
	"github.com/avinashkr148/Call-analyzer/internal/util"
)

// resolveFormat returns the effective format string, falling back to "table".
func resolveFormat(cfgFormat string) string {
	if globalFlags.Format != "" {
		return globalFlags.Format
	}
	if cfgFormat != "" {
		return cfgFormat
	}
	return render.FormatTable
}

// outputWriter returns def, or a freshly created file when --out is set.
// The returned close function must always be called.
func outputWriter(def io.Writer) (io.Writer, func() error, error) {
	if globalFlags.Out == "" {
		return def, func() error { return nil }, nil
	}
	f, err := os.Create(globalFlags.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// emit renders result in the resolved format and prints the footer to
// stderr unless --quiet is set.
func emit(cmd *cobra.Command, deps *app.Deps, result *model.Result) error {
	return emitAs(cmd, deps, result, resolveFormat(deps.Config.Format))
}

// emitAs is emit with an explicit format.
func emitAs(cmd *cobra.Command, deps *app.Deps, result *model.Result, format string) error {
	w, closeFn, err := outputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := render.Render(w, result, format); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if !deps.Config.Quiet {
		render.PrintFooter(cmd.ErrOrStderr(), result, deps.Config.Verbose)
	}
	return nil
}

// newResult wraps data in a Result envelope stamped with the elapsed time.
func newResult(kind, command string, data interface{}, items int, start time.Time) *model.Result {
	return &model.Result{
		Kind:        kind,
		GeneratedAt: time.Now(),
		Command:     command,
		Data:        data,
		Stats:       model.ResultStats{Items: items, DurationMs: util.Elapsed(start)},
	}
}

// ─── Input ────────────────────────────────────────────────────────────────────

// errNoInput is returned when a command would block on an interactive terminal.
var errNoInput = errors.New("no input: pass a FILE argument or pipe call-log text on stdin")

// inputArg returns the optional positional FILE argument.
func inputArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return pipeline.StdinName
}

// stdinInteractive reports whether cmd would read from a terminal.
func stdinInteractive(cmd *cobra.Command) bool {
	return cmd.InOrStdin() == os.Stdin && pipeline.StdinIsTTY()
}

// parseInput reads raw call-log text from path (or stdin) and parses it.
func parseInput(cmd *cobra.Command, path string) (calllog.ParseResult, string, error) {
	if (path == "" || path == pipeline.StdinName) && stdinInteractive(cmd) {
		return calllog.ParseResult{}, "", errNoInput
	}
	text, source, err := pipeline.ReadRaw(path, cmd.InOrStdin())
	if err != nil {
		return calllog.ParseResult{}, "", err
	}
	res := calllog.ParseDetailed(text)
	slog.Debug("parsed call log",
		"source", source,
		"candidates", res.Candidates,
		"records", len(res.Records),
		"dropped", len(res.Dropped),
	)
	for _, tok := range res.Dropped {
		slog.Debug("dropped token", "token", tok)
	}
	return res, source, nil
}

// dropWarnings describes discarded tokens for the result footer.
func dropWarnings(res calllog.ParseResult) []string {
	if len(res.Dropped) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%s did not match the call-log format and were skipped",
		util.Plural(len(res.Dropped), "token"))}
}

// readPipedRecords reads a JSONL record stream from stdin. An empty stream is
// not an error; it yields no records and a warning.
func readPipedRecords(cmd *cobra.Command) ([]model.CallRecord, []string, error) {
	if stdinInteractive(cmd) {
		return nil, nil, errors.New("no input: pipe JSONL records on stdin, e.g. callan parse calls.txt --format jsonl | callan analyze summary")
	}
	recs, err := pipeline.ReadRecords(cmd.InOrStdin())
	if errors.Is(err, pipeline.ErrEmptyInput) {
		return recs, []string{err.Error()}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return recs, nil, nil
}

// ─── Tables ───────────────────────────────────────────────────────────────────

// printSimpleTable renders a simple table with headers using tablewriter.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// printKVTableTo renders two-column key/value rows.
func printKVTableTo(w io.Writer, rows [][]string) {
	printSimpleTable(w, []string{"KEY", "VALUE"}, func(add func(...string)) {
		for _, r := range rows {
			add(r...)
		}
	})
}

// status prints a ✓ line unless --quiet is set.
func status(cmd *cobra.Command, format string, a ...interface{}) {
	if globalFlags.Quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ "+format+"\n", a...)
}

// note is status for commands whose stdout carries data: it goes to stderr.
func note(cmd *cobra.Command, format string, a ...interface{}) {
	if globalFlags.Quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ "+format+"\n", a...)
}
