// Package pipeline provides helpers for reading raw call logs and for reading
// and writing CallRecord streams via stdin/stdout in JSONL format, the
// canonical pipe format between callan commands.
package pipeline

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/avinashkr148/Call-analyzer/internal/calllog"
	"github.com/avinashkr148/Call-analyzer/internal/model"
)

// StdinName is the path argument that selects standard input.
const StdinName = "-"

// ErrEmptyInput is returned when a JSONL stream holds no records.
var ErrEmptyInput = errors.New("no call records read from input (is stdin empty?)")

// ReadRaw returns the raw call-log text at path. An empty path or "-" reads
// from stdin. The returned source names where the text came from.
func ReadRaw(path string, stdin io.Reader) (text, source string, err error) {
	if path == "" || path == StdinName {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), "stdin", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), path, nil
}

// ReadRecords reads JSONL call records from r. Blank lines and lines starting
// with // are skipped. Each record is checked against the same rules the
// parser enforces, so a hand-edited stream cannot smuggle in bad data.
func ReadRecords(r io.Reader) ([]model.CallRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var recs []model.CallRecord
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		var rec model.CallRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if err := check(&rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(recs) == 0 {
		return []model.CallRecord{}, ErrEmptyInput
	}
	return recs, nil
}

// check validates rec and fills DurationFormatted when it was omitted.
func check(rec *model.CallRecord) error {
	if rec.Number == "" || strings.Trim(rec.Number, "0123456789") != "" {
		return fmt.Errorf("invalid number %q", rec.Number)
	}
	if _, ok := rec.Time(); !ok {
		return fmt.Errorf("invalid timestamp %q", rec.Timestamp)
	}
	if rec.DurationSeconds < 0 {
		return fmt.Errorf("negative duration %d", rec.DurationSeconds)
	}
	if rec.DurationFormatted == "" {
		rec.DurationFormatted = calllog.FormatSeconds(rec.DurationSeconds)
		return nil
	}
	// The parser keeps duration text verbatim, so 00:01:75 is valid for 135s.
	secs, err := calllog.DecodeDuration(rec.DurationFormatted)
	if err != nil {
		return err
	}
	if secs != rec.DurationSeconds {
		return fmt.Errorf("duration %q does not match %d seconds", rec.DurationFormatted, rec.DurationSeconds)
	}
	return nil
}

// WriteJSONL writes records as JSONL to w.
func WriteJSONL(w io.Writer, recs []model.CallRecord) error {
	enc := json.NewEncoder(w)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY returns true if stdout is a terminal (not a pipe).
func IsTTY() bool {
	return isTerminal(os.Stdout)
}

// StdinIsTTY returns true if stdin is attached to a terminal, meaning nothing
// was piped in.
func StdinIsTTY() bool {
	return isTerminal(os.Stdin)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
