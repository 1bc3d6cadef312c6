// Package model defines the canonical data types used throughout callan.
// These types are the single source of truth for parsed call records, the
// derived analytics views, and the result envelope that every command returns.
package model

import (
	"strings"
	"time"
	"unicode"
)

// ─── Call Records ─────────────────────────────────────────────────────────────

// TimestampLayout is the time.Parse layout matching the M/D/YYYY h:mm AM|PM
// timestamps found in call logs.
const TimestampLayout = "1/2/2006 3:04 PM"

// ZeroDuration is the formatted duration of a call without a duration field.
const ZeroDuration = "00:00:00"

// CallRecord is a single validated call event. Records are produced only by
// the calllog parser and are never mutated afterwards.
type CallRecord struct {
	Number            string `json:"number" yaml:"number"`
	Timestamp         string `json:"timestamp" yaml:"timestamp"`
	DurationSeconds   int64  `json:"duration_seconds" yaml:"duration_seconds"`
	DurationFormatted string `json:"duration_formatted" yaml:"duration_formatted"`
}

// Connected reports whether the call has a non-zero duration.
func (c CallRecord) Connected() bool {
	return c.DurationSeconds > 0
}

// IsLogSpace reports whether r separates fields in a call log: ASCII
// whitespace, \v, the Unicode space separators, U+2028, U+2029 and U+FEFF.
// U+0085 is not a separator.
func IsLogSpace(r rune) bool {
	return r == '\uFEFF' || (r != '\u0085' && unicode.IsSpace(r))
}

// CollapseSpace trims s and replaces each run of log whitespace with a
// single ASCII space.
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, IsLogSpace), " ")
}

// Time decodes the verbatim timestamp. Runs of whitespace inside the stamp
// are collapsed first, since the log format allows more than one space
// between the date, the clock and the meridiem.
func (c CallRecord) Time() (time.Time, bool) {
	t, err := time.Parse(TimestampLayout, CollapseSpace(c.Timestamp))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ─── Derived Views ────────────────────────────────────────────────────────────

// SummaryStats holds the batch-wide totals. MissedCalls is always
// TotalDials - ConnectedCalls.
type SummaryStats struct {
	TotalDials        int    `json:"total_dials" yaml:"total_dials"`
	TotalTalkSeconds  int64  `json:"total_talk_seconds" yaml:"total_talk_seconds"`
	FormattedTalkTime string `json:"formatted_talk_time" yaml:"formatted_talk_time"`
	UniqueNumbers     int    `json:"unique_numbers" yaml:"unique_numbers"`
	ConnectedCalls    int    `json:"connected_calls" yaml:"connected_calls"`
	MissedCalls       int    `json:"missed_calls" yaml:"missed_calls"`
}

// NumberStats is the rollup for one distinct number.
type NumberStats struct {
	Number            string `json:"number" yaml:"number"`
	Dials             int    `json:"dials" yaml:"dials"`
	TalkTime          int64  `json:"talk_time" yaml:"talk_time"`
	FormattedTalkTime string `json:"formatted_talk_time" yaml:"formatted_talk_time"`
}

// Status slice names.
const (
	StatusConnected = "Connected"
	StatusMissed    = "Missed"
)

// StatusSlice is one side of the connected/missed split.
type StatusSlice struct {
	Name  string  `json:"name" yaml:"name"`
	Value int     `json:"value" yaml:"value"`
	Pct   float64 `json:"pct" yaml:"pct"`
}

// HourBucket counts calls placed within one hour of the day (0-23).
type HourBucket struct {
	Hour      int   `json:"hour" yaml:"hour"`
	Dials     int   `json:"dials" yaml:"dials"`
	Connected int   `json:"connected" yaml:"connected"`
	TalkTime  int64 `json:"talk_time" yaml:"talk_time"`
}

// Report bundles every derived view of one batch.
type Report struct {
	Summary SummaryStats  `json:"summary" yaml:"summary"`
	Top     []NumberStats `json:"top_contacts" yaml:"top_contacts"`
	Split   []StatusSlice `json:"status_split" yaml:"status_split"`
	Hourly  []HourBucket  `json:"hourly" yaml:"hourly"`
	Insight string        `json:"insight,omitempty" yaml:"insight,omitempty"`
}

// ─── Archive ──────────────────────────────────────────────────────────────────

// Batch is a parse result saved to the local archive. Only the records are
// kept; every derived view is recomputed when the batch is read back.
type Batch struct {
	ID        string       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Source    string       `json:"source" yaml:"source"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Records   []CallRecord `json:"records" yaml:"records"`
}

// BatchInfo is the listing view of a saved Batch.
type BatchInfo struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Source    string    `json:"source" yaml:"source"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Records   int       `json:"records" yaml:"records"`
}

// Info returns the listing view of b.
func (b Batch) Info() BatchInfo {
	return BatchInfo{ID: b.ID, Name: b.Name, Source: b.Source, CreatedAt: b.CreatedAt, Records: len(b.Records)}
}

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries timing and parse metadata for a command result.
type ResultStats struct {
	DurationMs int64 `json:"duration_ms" yaml:"duration_ms"`
	Items      int   `json:"items" yaml:"items"`
	Dropped    int   `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	CacheHit   bool  `json:"cache_hit,omitempty" yaml:"cache_hit,omitempty"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind" yaml:"kind"`
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	Command     string      `json:"command" yaml:"command"`
	Data        interface{} `json:"data" yaml:"data"`
	Warnings    []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Stats       ResultStats `json:"stats" yaml:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindCallRecords = "call_records"
	KindSummary     = "summary"
	KindTopContacts = "top_contacts"
	KindStatusSplit = "status_split"
	KindHourly      = "hourly"
	KindReport      = "report"
	KindBatch       = "batch"
	KindBatchList   = "batch_list"
	KindInsight     = "insight"
)
