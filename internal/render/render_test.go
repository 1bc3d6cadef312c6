package render_test

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/avinashkr148/Call-analyzer/internal/analyze"
	"github.com/avinashkr148/Call-analyzer/internal/calllog"
	"github.com/avinashkr148/Call-analyzer/internal/model"
	"github.com/avinashkr148/Call-analyzer/internal/render"
)

const sample = "+14155551234 1/2/2024 9:05 AM, 00:03:30  14155550000 1/2/2024 9:40 AM  " +
	"+14155551234 1/2/2024 2:15 PM,00:01:00"

func recordsResult(t *testing.T) *model.Result {
	t.Helper()
	recs := calllog.Parse(sample)
	if len(recs) != 3 {
		t.Fatalf("sample should parse to 3 records, got %d", len(recs))
	}
	return &model.Result{
		Kind:        model.KindCallRecords,
		GeneratedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Command:     "parse",
		Data:        recs,
		Stats:       model.ResultStats{Items: len(recs)},
	}
}

func reportResult(t *testing.T) *model.Result {
	t.Helper()
	rep := analyze.Analyze(calllog.Parse(sample), 5)
	rep.Insight = "- Mornings are busiest"
	return &model.Result{Kind: model.KindReport, Command: "report", Data: rep}
}

func renderString(t *testing.T, r *model.Result, format string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := render.Render(&buf, r, format); err != nil {
		t.Fatalf("Render(%s): %v", format, err)
	}
	return buf.String()
}

// ─── Formats ──────────────────────────────────────────────────────────────────

func TestValidFormat(t *testing.T) {
	for _, f := range render.Formats {
		if !render.ValidFormat(f) {
			t.Errorf("%s should be valid", f)
		}
	}
	if render.ValidFormat("xml") {
		t.Error("xml should not be valid")
	}
}

func TestRenderTableRecords(t *testing.T) {
	out := renderString(t, recordsResult(t), render.FormatTable)
	for _, want := range []string{"NUMBER", "TIMESTAMP", "14155551234", "00:03:30", "Connected", "Missed"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTableReportSections(t *testing.T) {
	out := renderString(t, reportResult(t), render.FormatTable)
	for _, want := range []string{"Summary", "Top Contacts", "Status Split", "Hourly Volume", "Insight",
		"Total Dials", "66.7%", "09:00", "- Mornings are busiest"} {
		if !strings.Contains(out, want) {
			t.Errorf("report table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTableEmptySection(t *testing.T) {
	r := &model.Result{Kind: model.KindTopContacts, Data: []model.NumberStats{}}
	out := renderString(t, r, render.FormatTable)
	if !strings.Contains(out, "(none)") {
		t.Errorf("empty table should say (none), got %q", out)
	}
}

func TestRenderJSONEnvelope(t *testing.T) {
	out := renderString(t, recordsResult(t), render.FormatJSON)
	var env struct {
		Kind string             `json:"kind"`
		Data []model.CallRecord `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if env.Kind != model.KindCallRecords || len(env.Data) != 3 {
		t.Errorf("unexpected envelope: kind=%s records=%d", env.Kind, len(env.Data))
	}
}

func TestRenderJSONLOneRecordPerLine(t *testing.T) {
	out := renderString(t, recordsResult(t), render.FormatJSONL)
	sc := bufio.NewScanner(strings.NewReader(out))
	var n int
	for sc.Scan() {
		var rec model.CallRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line %d is not a record: %v", n+1, err)
		}
		n++
	}
	if n != 3 {
		t.Errorf("expected 3 lines, got %d", n)
	}
}

func TestRenderJSONLInsight(t *testing.T) {
	r := &model.Result{Kind: model.KindInsight, Data: "text"}
	out := strings.TrimSpace(renderString(t, r, render.FormatJSONL))
	if out != `{"insight":"text"}` {
		t.Errorf("unexpected insight line: %s", out)
	}
}

func TestRenderCSVRecords(t *testing.T) {
	out := renderString(t, recordsResult(t), render.FormatCSV)
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][1] != "number" || rows[0][3] != "duration" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[2][4] != model.StatusMissed {
		t.Errorf("second record should be missed, got %v", rows[2])
	}
}

func TestRenderTSVUsesTabs(t *testing.T) {
	r := &model.Result{Kind: model.KindSummary, Data: analyze.Summarize(calllog.Parse(sample))}
	out := renderString(t, r, render.FormatTSV)
	if !strings.Contains(out, "Total Dials\t3") {
		t.Errorf("expected tab-separated summary, got %q", out)
	}
}

func TestRenderCSVReportSections(t *testing.T) {
	out := renderString(t, reportResult(t), render.FormatCSV)
	for _, want := range []string{"metric,value", "rank,number,dials,talk_time", "status,calls,share", "hour,dials,connected,talk_time", "insight"} {
		if !strings.Contains(out, want) {
			t.Errorf("csv report missing header %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := &model.Result{Kind: model.KindTopContacts, Data: analyze.TopContacts(calllog.Parse(sample), 5)}
	out := renderString(t, r, render.FormatMD)
	if !strings.HasPrefix(out, "| RANK | NUMBER | DIALS | TALK TIME |") {
		t.Errorf("unexpected markdown header:\n%s", out)
	}
	if !strings.Contains(out, "|---:|---|---:|---:|") {
		t.Errorf("expected alignment row:\n%s", out)
	}
	if !strings.Contains(out, "| 1 | 14155551234 | 2 | 00:04:30 |") {
		t.Errorf("expected top row:\n%s", out)
	}
}

func TestRenderYAML(t *testing.T) {
	out := renderString(t, reportResult(t), render.FormatYAML)
	var doc struct {
		Kind string `yaml:"kind"`
		Data struct {
			Summary model.SummaryStats `yaml:"summary"`
		} `yaml:"data"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if doc.Kind != model.KindReport || doc.Data.Summary.TotalDials != 3 {
		t.Errorf("unexpected YAML document: %+v", doc)
	}
}

func TestRenderBatchList(t *testing.T) {
	r := &model.Result{Kind: model.KindBatchList, Data: []model.BatchInfo{{
		ID: "0f8fad5b-d9cb-469f-a165-70867728950e", Name: "monday", Source: "log.txt",
		CreatedAt: time.Now(), Records: 12,
	}}}
	out := renderString(t, r, render.FormatTable)
	if !strings.Contains(out, "0f8fad5b") || strings.Contains(out, "469f") {
		t.Errorf("table should show the short ID only:\n%s", out)
	}
}

func TestRenderUnknownDataFallsBackToJSON(t *testing.T) {
	r := &model.Result{Kind: "other", Data: map[string]int{"a": 1}}
	out := renderString(t, r, render.FormatTable)
	if !strings.Contains(out, `"kind": "other"`) {
		t.Errorf("expected JSON fallback, got %q", out)
	}
}

// ─── RenderTo / Footer ────────────────────────────────────────────────────────

func TestRenderToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := render.RenderTo(path, recordsResult(t), render.FormatJSON); err != nil {
		t.Fatalf("RenderTo: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("file should contain valid JSON")
	}
}

func TestPrintFooter(t *testing.T) {
	r := recordsResult(t)
	r.Warnings = []string{"2 tokens dropped"}
	r.Stats.Dropped = 2

	var quiet bytes.Buffer
	render.PrintFooter(&quiet, r, false)
	if !strings.Contains(quiet.String(), "2 tokens dropped") || strings.Contains(quiet.String(), "items") {
		t.Errorf("non-verbose footer should only show warnings, got %q", quiet.String())
	}

	var verbose bytes.Buffer
	render.PrintFooter(&verbose, r, true)
	if !strings.Contains(verbose.String(), "3 items • 2 dropped") {
		t.Errorf("verbose footer missing stats, got %q", verbose.String())
	}
}

func TestHelpers(t *testing.T) {
	if render.HourLabel(9) != "09:00" {
		t.Errorf("HourLabel(9): got %q", render.HourLabel(9))
	}
	if render.ShortID("abc") != "abc" {
		t.Error("ShortID should keep IDs without dashes")
	}
}
