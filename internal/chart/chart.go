// Package chart provides ASCII terminal chart rendering for call analytics.
// Two renderers are available:
//
//   - Bar: horizontal bar chart, one labeled bar per item (top contacts,
//     connected/missed split)
//   - Columns: vertical column chart over the 24 hours of the day
//
// Both renderers draw from a zero baseline and need nothing beyond the Go
// standard library.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/avinashkr148/Call-analyzer/internal/calllog"
	"github.com/avinashkr148/Call-analyzer/internal/model"
)

// Item is one labeled value in a bar chart. Display, when set, replaces the
// numeric value label.
type Item struct {
	Label   string
	Value   float64
	Display string
}

// ─── Bar ─────────────────────────────────────────────────────────────────────

// BarOptions controls horizontal bar chart rendering.
type BarOptions struct {
	// Width is the total character width available for the chart.
	// If 0, auto-detects from $COLUMNS, falls back to 80.
	Width int
	// MaxBars caps the number of bars; the first MaxBars items are kept.
	// If 0, no limit is applied.
	MaxBars int
}

// Bar renders a horizontal bar chart of items to w, one bar per item.
//
// Output example:
//
//	Top contacts by talk time
//	14155551234  00:04:30  ████████████████████
//	14155550000  00:01:00  ████
func Bar(w io.Writer, title string, items []Item, opts BarOptions) error {
	if len(items) == 0 {
		return fmt.Errorf("chart bar: nothing to render")
	}
	for _, it := range items {
		if math.IsNaN(it.Value) || it.Value < 0 {
			return fmt.Errorf("chart bar: invalid value %v for %q", it.Value, it.Label)
		}
	}

	totalWidth := opts.Width
	if totalWidth <= 0 {
		totalWidth = termWidth()
	}
	if opts.MaxBars > 0 && len(items) > opts.MaxBars {
		items = items[:opts.MaxBars]
	}

	labelWidth, valWidth := 0, 0
	maxVal := 0.0
	for _, it := range items {
		if l := utf8.RuneCountInString(it.Label); l > labelWidth {
			labelWidth = l
		}
		if l := utf8.RuneCountInString(valueLabel(it)); l > valWidth {
			valWidth = l
		}
		if it.Value > maxVal {
			maxVal = it.Value
		}
	}

	// Bar area width = totalWidth - labelWidth - valWidth - separators (4 chars)
	barAreaWidth := totalWidth - labelWidth - valWidth - 4
	if barAreaWidth < 4 {
		barAreaWidth = 4
	}

	if title != "" {
		fmt.Fprintf(w, "%s\n", title)
	}
	for _, it := range items {
		fmt.Fprintf(w, "%s  %s  %s\n",
			padRight(it.Label, labelWidth),
			padLeft(valueLabel(it), valWidth),
			strings.Repeat("█", barLength(it.Value, maxVal, barAreaWidth)),
		)
	}
	return nil
}

// barLength scales v into [0, width]. Any positive value gets at least one
// block so it stays visible next to large neighbours.
func barLength(v, maxVal float64, width int) int {
	if v <= 0 || maxVal <= 0 {
		return 0
	}
	n := int(math.Round(v / maxVal * float64(width)))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return n
}

func valueLabel(it Item) string {
	if it.Display != "" {
		return it.Display
	}
	return formatFloat(it.Value)
}

// ─── Columns ──────────────────────────────────────────────────────────────────

// ColumnOptions controls vertical column chart rendering.
type ColumnOptions struct {
	// Height is the number of rows in the chart body (not counting axis labels).
	// If 0, defaults to 10.
	Height int
	// Title is printed above the chart when non-empty.
	Title string
}

// Columns renders one column per hour of the day (0-23) to w. Each column is
// two characters wide so the hour axis labels line up underneath.
func Columns(w io.Writer, hours [24]float64, opts ColumnOptions) error {
	height := opts.Height
	if height <= 0 {
		height = 10
	}

	maxVal := 0.0
	for _, v := range hours {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("chart columns: invalid value %v", v)
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		return fmt.Errorf("chart columns: nothing to render")
	}

	ticks := yTicks(0, maxVal, height)
	yLabelWidth := 0
	for _, t := range ticks {
		if l := len(formatFloat(t)); l > yLabelWidth {
			yLabelWidth = l
		}
	}

	// Column heights in rows; a non-zero hour always gets at least one row.
	var heights [24]int
	for h, v := range hours {
		heights[h] = barLength(v, maxVal, height)
	}

	if opts.Title != "" {
		fmt.Fprintf(w, "%s\n", opts.Title)
	}
	for row := 0; row < height; row++ {
		level := height - row // rows are drawn top-down
		label := ""
		for _, t := range ticks {
			if math.Abs(rowForValue(t, 0, maxVal, height)-float64(row)) < 0.5 {
				label = formatFloat(t)
				break
			}
		}
		axisCh := "┤"
		if label == "" {
			axisCh = " "
		}

		var sb strings.Builder
		for h := 0; h < 24; h++ {
			if heights[h] >= level {
				sb.WriteString("██ ")
			} else {
				sb.WriteString("   ")
			}
		}
		fmt.Fprintf(w, "%*s%s%s\n", yLabelWidth, label, axisCh, strings.TrimRight(sb.String(), " "))
	}

	fmt.Fprintf(w, "%s└%s\n", strings.Repeat(" ", yLabelWidth), strings.Repeat("─", 24*3))
	fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", yLabelWidth), hourAxis())
	return nil
}

// hourAxis labels every third hour under its column.
func hourAxis() string {
	buf := []rune(strings.Repeat(" ", 24*3))
	for h := 0; h < 24; h += 3 {
		for i, ch := range fmt.Sprintf("%02d", h) {
			buf[h*3+i] = ch
		}
	}
	return strings.TrimRight(string(buf), " ")
}

// rowForValue returns the float row index (0=top=max) for a given value.
func rowForValue(v, minVal, maxVal float64, height int) float64 {
	if maxVal == minVal {
		return float64(height) / 2
	}
	return (maxVal - v) / (maxVal - minVal) * float64(height-1)
}

// yTicks returns 3–4 evenly-spaced tick values for the Y axis.
func yTicks(minVal, maxVal float64, height int) []float64 {
	if maxVal == minVal {
		return []float64{minVal}
	}
	nTicks := 4
	if height <= 6 {
		nTicks = 3
	}
	ticks := make([]float64, nTicks)
	for i := 0; i < nTicks; i++ {
		ticks[i] = minVal + float64(i)*(maxVal-minVal)/float64(nTicks-1)
	}
	return ticks
}

// ─── Call analytics adapters ──────────────────────────────────────────────────

// TopContactItems charts contacts by summed talk time.
func TopContactItems(top []model.NumberStats) []Item {
	items := make([]Item, len(top))
	for i, n := range top {
		items[i] = Item{Label: n.Number, Value: float64(n.TalkTime), Display: n.FormattedTalkTime}
	}
	return items
}

// SplitItems charts the connected/missed split.
func SplitItems(split []model.StatusSlice) []Item {
	items := make([]Item, len(split))
	for i, s := range split {
		items[i] = Item{
			Label:   s.Name,
			Value:   float64(s.Value),
			Display: fmt.Sprintf("%d (%s%%)", s.Value, strconv.FormatFloat(s.Pct, 'f', 1, 64)),
		}
	}
	return items
}

// HourlyDials spreads hourly buckets over the 24 hours of the day.
func HourlyDials(hourly []model.HourBucket) [24]float64 {
	var out [24]float64
	for _, b := range hourly {
		if b.Hour >= 0 && b.Hour < 24 {
			out[b.Hour] = float64(b.Dials)
		}
	}
	return out
}

// HourlyTalkItems charts talk time per active hour.
func HourlyTalkItems(hourly []model.HourBucket) []Item {
	items := make([]Item, len(hourly))
	for i, b := range hourly {
		items[i] = Item{
			Label:   fmt.Sprintf("%02d:00", b.Hour),
			Value:   float64(b.TalkTime),
			Display: calllog.FormatSeconds(b.TalkTime),
		}
	}
	return items
}

// ─── Utilities ────────────────────────────────────────────────────────────────

// formatFloat formats a float for axis labels: integers print bare, anything
// else with compact notation for large numbers.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "."
	}
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e4:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "K"
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		s := strings.TrimRight(strconv.FormatFloat(v, 'f', 2, 64), "0")
		return strings.TrimSuffix(s, ".")
	}
}

func padRight(s string, n int) string {
	if d := n - utf8.RuneCountInString(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

func padLeft(s string, n int) string {
	if d := n - utf8.RuneCountInString(s); d > 0 {
		return strings.Repeat(" ", d) + s
	}
	return s
}

// termWidth returns the terminal width from $COLUMNS, defaulting to 80.
func termWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 20 {
			return n
		}
	}
	return 80
}
