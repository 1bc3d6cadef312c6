// Package analyze computes summary statistics and per-contact rankings over
// slices of CallRecords. All functions are pure; no I/O. Inputs are never
// modified, so results can be recomputed at will.
package analyze

import (
	"sort"

	"github.com/avinashkr148/Call-analyzer/internal/calllog"
	"github.com/avinashkr148/Call-analyzer/internal/model"
)

// DefaultTopN is the number of contacts returned by TopContacts when the
// caller does not ask for a specific count.
const DefaultTopN = 5

// ─── Summary ──────────────────────────────────────────────────────────────────

// Summarize computes the batch-wide totals over records.
func Summarize(records []model.CallRecord) model.SummaryStats {
	s := model.SummaryStats{TotalDials: len(records)}

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		s.TotalTalkSeconds += r.DurationSeconds
		seen[r.Number] = struct{}{}
		if r.Connected() {
			s.ConnectedCalls++
		}
	}
	s.UniqueNumbers = len(seen)
	s.MissedCalls = s.TotalDials - s.ConnectedCalls
	s.FormattedTalkTime = calllog.FormatSeconds(s.TotalTalkSeconds)
	return s
}

// ─── Top contacts ─────────────────────────────────────────────────────────────

// TopContacts ranks distinct numbers by summed talk time, descending, and
// returns at most n of them (DefaultTopN when n <= 0). Numbers with equal
// talk time keep the order in which they first appear in records.
func TopContacts(records []model.CallRecord, n int) []model.NumberStats {
	if n <= 0 {
		n = DefaultTopN
	}

	index := make(map[string]int)
	var stats []model.NumberStats
	for _, r := range records {
		i, ok := index[r.Number]
		if !ok {
			i = len(stats)
			index[r.Number] = i
			stats = append(stats, model.NumberStats{Number: r.Number})
		}
		stats[i].Dials++
		stats[i].TalkTime += r.DurationSeconds
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TalkTime > stats[j].TalkTime
	})

	if len(stats) > n {
		stats = stats[:n]
	}
	out := make([]model.NumberStats, len(stats))
	for i, s := range stats {
		s.FormattedTalkTime = calllog.FormatSeconds(s.TalkTime)
		out[i] = s
	}
	return out
}

// ─── Status split ─────────────────────────────────────────────────────────────

// StatusSplit returns the connected/missed split, always Connected first.
// Pct is a percentage of all dials and is 0 for an empty batch.
func StatusSplit(records []model.CallRecord) []model.StatusSlice {
	s := Summarize(records)
	split := []model.StatusSlice{
		{Name: model.StatusConnected, Value: s.ConnectedCalls},
		{Name: model.StatusMissed, Value: s.MissedCalls},
	}
	if s.TotalDials > 0 {
		for i := range split {
			split[i].Pct = float64(split[i].Value) / float64(s.TotalDials) * 100
		}
	}
	return split
}

// ConnectionRate is the share of dials that connected, in percent.
func ConnectionRate(s model.SummaryStats) float64 {
	if s.TotalDials == 0 {
		return 0
	}
	return float64(s.ConnectedCalls) / float64(s.TotalDials) * 100
}

// AverageTalkSeconds is the mean duration of connected calls.
func AverageTalkSeconds(s model.SummaryStats) int64 {
	if s.ConnectedCalls == 0 {
		return 0
	}
	return s.TotalTalkSeconds / int64(s.ConnectedCalls)
}

// ─── Hourly volume ────────────────────────────────────────────────────────────

// HourlyVolume buckets records by hour of day, sorted by hour. Hours without
// calls are omitted; records whose timestamp does not decode are skipped.
func HourlyVolume(records []model.CallRecord) []model.HourBucket {
	var buckets [24]model.HourBucket
	var used [24]bool
	for _, r := range records {
		t, ok := r.Time()
		if !ok {
			continue
		}
		h := t.Hour()
		used[h] = true
		b := &buckets[h]
		b.Hour = h
		b.Dials++
		b.TalkTime += r.DurationSeconds
		if r.Connected() {
			b.Connected++
		}
	}

	out := make([]model.HourBucket, 0, 24)
	for h := range buckets {
		if used[h] {
			out = append(out, buckets[h])
		}
	}
	return out
}

// PeakHour returns the bucket with the most dials; earlier hours win ties.
func PeakHour(hourly []model.HourBucket) (model.HourBucket, bool) {
	if len(hourly) == 0 {
		return model.HourBucket{}, false
	}
	best := hourly[0]
	for _, b := range hourly[1:] {
		if b.Dials > best.Dials {
			best = b
		}
	}
	return best, true
}

// ─── Report ───────────────────────────────────────────────────────────────────

// Analyze builds every derived view of records.
func Analyze(records []model.CallRecord, topN int) model.Report {
	return model.Report{
		Summary: Summarize(records),
		Top:     TopContacts(records, topN),
		Split:   StatusSplit(records),
		Hourly:  HourlyVolume(records),
	}
}
