package pipeline_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/avinashkr148/Call-analyzer/internal/calllog"
	"github.com/avinashkr148/Call-analyzer/internal/pipeline"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// jsonl joins lines with newlines and appends a trailing newline.
func jsonl(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

const goodLine = `{"number":"5551234","timestamp":"1/2/2024 9:05 AM","duration_seconds":210,"duration_formatted":"00:03:30"}`

// ─── ReadRaw ──────────────────────────────────────────────────────────────────

func TestReadRawStdin(t *testing.T) {
	for _, path := range []string{"", "-"} {
		text, src, err := pipeline.ReadRaw(path, strings.NewReader("raw log"))
		if err != nil {
			t.Fatalf("ReadRaw(%q): %v", path, err)
		}
		if text != "raw log" || src != "stdin" {
			t.Errorf("ReadRaw(%q): got (%q, %q)", path, text, src)
		}
	}
}

func TestReadRawFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.txt")
	if err := os.WriteFile(path, []byte("from file"), 0600); err != nil {
		t.Fatal(err)
	}
	text, src, err := pipeline.ReadRaw(path, strings.NewReader("ignored"))
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if text != "from file" || src != path {
		t.Errorf("got (%q, %q)", text, src)
	}
}

func TestReadRawMissingFile(t *testing.T) {
	_, _, err := pipeline.ReadRaw(filepath.Join(t.TempDir(), "nope.txt"), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

// ─── ReadRecords ──────────────────────────────────────────────────────────────

func TestReadRecordsBasic(t *testing.T) {
	recs, err := pipeline.ReadRecords(strings.NewReader(jsonl(goodLine, goodLine)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Number != "5551234" || recs[0].DurationSeconds != 210 {
		t.Errorf("unexpected record: %+v", recs[0])
	}
}

func TestReadRecordsFillsFormattedDuration(t *testing.T) {
	line := `{"number":"1","timestamp":"1/2/2024 9:05 AM","duration_seconds":61}`
	recs, err := pipeline.ReadRecords(strings.NewReader(line))
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].DurationFormatted != "00:01:01" {
		t.Errorf("expected 00:01:01, got %q", recs[0].DurationFormatted)
	}
}

func TestReadRecordsSkipsBlankAndCommentLines(t *testing.T) {
	recs, err := pipeline.ReadRecords(strings.NewReader(jsonl("", "// header", goodLine, "   ")))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("expected 1 record, got %d", len(recs))
	}
}

func TestReadRecordsEmptyInput(t *testing.T) {
	for _, in := range []string{"", "\n\n  \n"} {
		recs, err := pipeline.ReadRecords(strings.NewReader(in))
		if !errors.Is(err, pipeline.ErrEmptyInput) {
			t.Errorf("ReadRecords(%q): expected ErrEmptyInput, got %v", in, err)
		}
		if recs == nil || len(recs) != 0 {
			t.Errorf("ReadRecords(%q): expected empty non-nil slice, got %#v", in, recs)
		}
	}
}

func TestReadRecordsRejectsBadLines(t *testing.T) {
	cases := map[string]string{
		"invalid JSON": `{"number":`,
		"number":       `{"number":"+555","timestamp":"1/2/2024 9:05 AM","duration_seconds":0}`,
		"empty number": `{"number":"","timestamp":"1/2/2024 9:05 AM","duration_seconds":0}`,
		"timestamp":    `{"number":"555","timestamp":"13/45/2024 9:05 AM","duration_seconds":0}`,
		"negative":     `{"number":"555","timestamp":"1/2/2024 9:05 AM","duration_seconds":-1}`,
		"mismatch":     `{"number":"555","timestamp":"1/2/2024 9:05 AM","duration_seconds":5,"duration_formatted":"00:00:06"}`,
		"bad duration": `{"number":"555","timestamp":"1/2/2024 9:05 AM","duration_seconds":5,"duration_formatted":"5s"}`,
	}
	for want, line := range cases {
		_, err := pipeline.ReadRecords(strings.NewReader(jsonl(goodLine, line)))
		if err == nil {
			t.Errorf("%s: expected error", want)
			continue
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Errorf("%s: error should name line 2, got %v", want, err)
		}
	}
}

func TestReadRecordsLargeInput(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&sb, `{"number":"%d","timestamp":"1/2/2024 9:05 AM","duration_seconds":%d}`+"\n", i, i)
	}
	recs, err := pipeline.ReadRecords(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2000 {
		t.Errorf("expected 2000 records, got %d", len(recs))
	}
}

// ─── WriteJSONL ───────────────────────────────────────────────────────────────

func TestWriteOneLinePerRecord(t *testing.T) {
	recs := calllog.Parse("5551234 1/2/2024 9:05 AM,00:00:10   5559876 1/2/2024 9:10 AM")
	var buf bytes.Buffer
	if err := pipeline.WriteJSONL(&buf, recs); err != nil {
		t.Fatal(err)
	}
	lines := nonEmptyLines(buf.String())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], `"duration_formatted":"00:00:00"`) {
		t.Errorf("missed call should carry 00:00:00, got %s", lines[1])
	}
}

func TestWriteEmptySlice(t *testing.T) {
	var buf bytes.Buffer
	if err := pipeline.WriteJSONL(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("nil slice should produce no output, got %q", buf.String())
	}
}

// ─── Round-trip ───────────────────────────────────────────────────────────────

func TestRoundTrip(t *testing.T) {
	original := calllog.Parse("+14155551234 1/2/2024 9:05 AM,00:03:30   14155551234 1/3/2024 10:00 AM   " +
		"7 12/31/2023 11:59 PM, 10:00:00")
	if len(original) != 3 {
		t.Fatalf("expected 3 parsed records, got %d", len(original))
	}
	var buf bytes.Buffer
	if err := pipeline.WriteJSONL(&buf, original); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	got, err := pipeline.ReadRecords(&buf)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", original, got)
	}
}

func TestRoundTripKeepsVerbatimDuration(t *testing.T) {
	original := calllog.Parse("5551234 1/2/2024 9:05 AM,00:01:75")
	if len(original) != 1 {
		t.Fatalf("expected 1 parsed record, got %d", len(original))
	}
	var buf bytes.Buffer
	if err := pipeline.WriteJSONL(&buf, original); err != nil {
		t.Fatal(err)
	}
	got, err := pipeline.ReadRecords(&buf)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if got[0].DurationSeconds != 135 || got[0].DurationFormatted != "00:01:75" {
		t.Errorf("expected 135s kept as 00:01:75, got %+v", got[0])
	}
}

func TestIsTTYUnderTest(t *testing.T) {
	// go test runs with stdout redirected; just make sure it does not panic.
	_ = pipeline.IsTTY()
	_ = pipeline.StdinIsTTY()
}
