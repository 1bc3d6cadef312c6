// Package render converts Result values into human-readable or machine-parseable
// output. Each format is a separate function; the top-level Render dispatcher
// selects based on the format string.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/avinashkr148/Call-analyzer/internal/analyze"
	"github.com/avinashkr148/Call-analyzer/internal/calllog"
	"github.com/avinashkr148/Call-analyzer/internal/model"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
	FormatYAML  = "yaml"
)

// Formats lists every accepted --format value.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD, FormatYAML}

// ValidFormat reports whether f is an accepted --format value.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',')
	case FormatTSV:
		return renderDelimited(w, result, '\t')
	case FormatMD:
		return renderMarkdown(w, result)
	case FormatYAML:
		return renderYAML(w, result)
	default:
		return renderTable(w, result)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, result *model.Result, format string) error {
	if path == "" {
		return Render(os.Stdout, result, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, result, format)
}

// ─── JSON / YAML ──────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func renderYAML(w io.Writer, result *model.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return err
	}
	return enc.Close()
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// renderJSONL writes one JSON object per line. Slices are unrolled so that
// call_records output can be piped straight into `callan analyze`.
func renderJSONL(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	if result.Kind == model.KindInsight {
		return enc.Encode(map[string]interface{}{"insight": result.Data})
	}
	v := reflect.ValueOf(result.Data)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			if err := enc.Encode(v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(result.Data)
}

// ─── Tabular views ────────────────────────────────────────────────────────────

// section is one titled table of a rendered result.
type section struct {
	title   string
	headers []string
	align   []int
	rows    [][]string
}

// sections converts result.Data into tables for the table, csv, tsv and md
// formats. It returns an error for data it does not know how to lay out.
func sections(result *model.Result) ([]section, error) {
	switch d := result.Data.(type) {
	case []model.CallRecord:
		return []section{recordsSection(d)}, nil
	case model.SummaryStats:
		return []section{summarySection(d)}, nil
	case []model.NumberStats:
		return []section{topSection(d)}, nil
	case []model.StatusSlice:
		return []section{splitSection(d)}, nil
	case []model.HourBucket:
		return []section{hourlySection(d)}, nil
	case model.Report:
		out := []section{
			summarySection(d.Summary),
			topSection(d.Top),
			splitSection(d.Split),
			hourlySection(d.Hourly),
		}
		if d.Insight != "" {
			out = append(out, textSection("Insight", d.Insight))
		}
		return out, nil
	case model.Batch:
		info := d.Info()
		meta := section{
			title:   "Batch",
			headers: []string{"FIELD", "VALUE"},
			rows: [][]string{
				{"ID", info.ID},
				{"Name", info.Name},
				{"Source", info.Source},
				{"Created", info.CreatedAt.Format(time.RFC3339)},
				{"Records", strconv.Itoa(info.Records)},
			},
		}
		return []section{meta, recordsSection(d.Records)}, nil
	case []model.BatchInfo:
		return []section{batchListSection(d)}, nil
	case string:
		return []section{textSection("Insight", d)}, nil
	default:
		return nil, fmt.Errorf("no tabular layout for %s (%T)", result.Kind, result.Data)
	}
}

func recordsSection(recs []model.CallRecord) section {
	s := section{
		title:   "Call Records",
		headers: []string{"#", "NUMBER", "TIMESTAMP", "DURATION", "STATUS"},
		align: []int{
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_LEFT,
		},
	}
	for i, r := range recs {
		status := model.StatusMissed
		if r.Connected() {
			status = model.StatusConnected
		}
		s.rows = append(s.rows, []string{strconv.Itoa(i + 1), r.Number, r.Timestamp, r.DurationFormatted, status})
	}
	return s
}

func summarySection(st model.SummaryStats) section {
	return section{
		title:   "Summary",
		headers: []string{"METRIC", "VALUE"},
		align:   []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT},
		rows: [][]string{
			{"Total Dials", strconv.Itoa(st.TotalDials)},
			{"Total Talk Time", st.FormattedTalkTime},
			{"Unique Numbers", strconv.Itoa(st.UniqueNumbers)},
			{"Connected", strconv.Itoa(st.ConnectedCalls)},
			{"Missed", strconv.Itoa(st.MissedCalls)},
			{"Connection Rate", formatPct(analyze.ConnectionRate(st))},
			{"Avg Talk Time", calllog.FormatSeconds(analyze.AverageTalkSeconds(st))},
		},
	}
}

func topSection(top []model.NumberStats) section {
	s := section{
		title:   "Top Contacts",
		headers: []string{"RANK", "NUMBER", "DIALS", "TALK TIME"},
		align: []int{
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
		},
	}
	for i, n := range top {
		s.rows = append(s.rows, []string{strconv.Itoa(i + 1), n.Number, strconv.Itoa(n.Dials), n.FormattedTalkTime})
	}
	return s
}

func splitSection(split []model.StatusSlice) section {
	s := section{
		title:   "Status Split",
		headers: []string{"STATUS", "CALLS", "SHARE"},
		align:   []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT},
	}
	for _, sl := range split {
		s.rows = append(s.rows, []string{sl.Name, strconv.Itoa(sl.Value), formatPct(sl.Pct)})
	}
	return s
}

func hourlySection(hourly []model.HourBucket) section {
	s := section{
		title:   "Hourly Volume",
		headers: []string{"HOUR", "DIALS", "CONNECTED", "TALK TIME"},
		align: []int{
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
		},
	}
	for _, b := range hourly {
		s.rows = append(s.rows, []string{
			HourLabel(b.Hour),
			strconv.Itoa(b.Dials),
			strconv.Itoa(b.Connected),
			calllog.FormatSeconds(b.TalkTime),
		})
	}
	return s
}

func batchListSection(infos []model.BatchInfo) section {
	s := section{
		title:   "Saved Batches",
		headers: []string{"ID", "NAME", "SOURCE", "RECORDS", "CREATED"},
		align: []int{
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_LEFT,
		},
	}
	for _, b := range infos {
		s.rows = append(s.rows, []string{
			ShortID(b.ID),
			b.Name,
			b.Source,
			strconv.Itoa(b.Records),
			b.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return s
}

func textSection(title, text string) section {
	return section{title: title, rows: [][]string{{text}}}
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, result *model.Result) error {
	secs, err := sections(result)
	if err != nil {
		return renderJSON(w, result)
	}
	for i, s := range secs {
		if len(secs) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s\n", s.title)
		}
		if s.headers == nil {
			fmt.Fprintf(w, "%s\n", strings.TrimRight(s.rows[0][0], "\n"))
			continue
		}
		if len(s.rows) == 0 {
			fmt.Fprintln(w, "(none)")
			continue
		}
		tw := tablewriter.NewWriter(w)
		tw.SetHeader(s.headers)
		tw.SetBorder(true)
		tw.SetRowLine(false)
		tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		tw.SetAlignment(tablewriter.ALIGN_LEFT)
		if s.align != nil {
			tw.SetColumnAlignment(s.align)
		}
		tw.SetAutoWrapText(false)
		tw.AppendBulk(s.rows)
		tw.Render()
	}
	return nil
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

// renderDelimited writes each section as a header row plus data rows.
// Multi-section results separate sections with an empty record.
func renderDelimited(w io.Writer, result *model.Result, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	secs, err := sections(result)
	if err != nil {
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
		cw.Flush()
		return cw.Error()
	}
	for i, s := range secs {
		if i > 0 {
			_ = cw.Write([]string{})
		}
		headers := s.headers
		if headers == nil {
			headers = []string{strings.ToLower(s.title)}
		}
		_ = cw.Write(csvHeaders(headers))
		for _, row := range s.rows {
			_ = cw.Write(row)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvHeaders(h []string) []string {
	out := make([]string, len(h))
	for i, v := range h {
		out[i] = strings.ReplaceAll(strings.ToLower(v), " ", "_")
	}
	return out
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	secs, err := sections(result)
	if err != nil {
		return renderJSON(w, result)
	}
	for i, s := range secs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if len(secs) > 1 {
			fmt.Fprintf(w, "### %s\n\n", s.title)
		}
		if s.headers == nil {
			fmt.Fprintf(w, "%s\n", strings.TrimRight(s.rows[0][0], "\n"))
			continue
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(s.headers, " | "))
		seps := make([]string, len(s.headers))
		for j := range seps {
			seps[j] = "---"
			if s.align != nil && s.align[j] == tablewriter.ALIGN_RIGHT {
				seps[j] = "---:"
			}
		}
		fmt.Fprintf(w, "|%s|\n", strings.Join(seps, "|"))
		for _, row := range s.rows {
			cells := make([]string, len(row))
			for j, c := range row {
				cells[j] = mdEscape(c)
			}
			fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
		}
	}
	return nil
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings and stats to w when verbose mode is on.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		src := "live"
		if result.Stats.CacheHit {
			src = "cache"
		}
		fmt.Fprintf(w, "\n[%s • %d items • %d dropped • %dms • %s]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.Dropped,
			result.Stats.DurationMs,
			src,
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// HourLabel formats an hour of day as HH:00.
func HourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// ShortID trims a uuid to its first block for display.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
