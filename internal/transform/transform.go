// Package transform implements stateless pipeline operators over call
// records. Each operator is a pure function returning a new slice; the input
// is never modified.
package transform

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/avinashkr148/Call-analyzer/internal/model"
)

// ─── Filter ───────────────────────────────────────────────────────────────────

// FilterOptions describes a record predicate. Zero values disable a criterion.
type FilterOptions struct {
	After       time.Time // keep calls at or after After
	Before      time.Time // keep calls strictly before Before
	Numbers     []string  // keep only these numbers (leading "+" ignored)
	Status      string    // model.StatusConnected or model.StatusMissed
	MinDuration int64     // keep calls lasting at least this many seconds
	MaxDuration int64     // keep calls lasting at most this many seconds (0 = no bound)
}

// Validate rejects contradictory or unknown options.
func (o FilterOptions) Validate() error {
	switch o.Status {
	case "", model.StatusConnected, model.StatusMissed:
	default:
		return fmt.Errorf("unknown status %q (valid: %s, %s)", o.Status, model.StatusConnected, model.StatusMissed)
	}
	if o.MinDuration < 0 || o.MaxDuration < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if o.MaxDuration > 0 && o.MinDuration > o.MaxDuration {
		return fmt.Errorf("min duration %ds exceeds max duration %ds", o.MinDuration, o.MaxDuration)
	}
	if !o.After.IsZero() && !o.Before.IsZero() && !o.After.Before(o.Before) {
		return fmt.Errorf("--after must be earlier than --before")
	}
	return nil
}

// Filter returns the records matching every criterion in opts, in input order.
func Filter(recs []model.CallRecord, opts FilterOptions) []model.CallRecord {
	var numbers map[string]bool
	if len(opts.Numbers) > 0 {
		numbers = make(map[string]bool, len(opts.Numbers))
		for _, n := range opts.Numbers {
			numbers[strings.TrimPrefix(strings.TrimSpace(n), "+")] = true
		}
	}

	out := make([]model.CallRecord, 0, len(recs))
	for _, r := range recs {
		if numbers != nil && !numbers[r.Number] {
			continue
		}
		switch opts.Status {
		case model.StatusConnected:
			if !r.Connected() {
				continue
			}
		case model.StatusMissed:
			if r.Connected() {
				continue
			}
		}
		if r.DurationSeconds < opts.MinDuration {
			continue
		}
		if opts.MaxDuration > 0 && r.DurationSeconds > opts.MaxDuration {
			continue
		}
		if !opts.After.IsZero() || !opts.Before.IsZero() {
			t, ok := r.Time()
			if !ok {
				continue
			}
			if !opts.After.IsZero() && t.Before(opts.After) {
				continue
			}
			if !opts.Before.IsZero() && !t.Before(opts.Before) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// ─── Sort ─────────────────────────────────────────────────────────────────────

// SortKey selects the field records are ordered by.
type SortKey string

const (
	SortTime     SortKey = "time"
	SortDuration SortKey = "duration"
	SortNumber   SortKey = "number"
)

// Sort returns a copy of recs ordered by key. Equal keys keep input order.
func Sort(recs []model.CallRecord, key SortKey, desc bool) ([]model.CallRecord, error) {
	var less func(a, b model.CallRecord) bool
	switch key {
	case SortTime:
		less = func(a, b model.CallRecord) bool {
			ta, _ := a.Time()
			tb, _ := b.Time()
			return ta.Before(tb)
		}
	case SortDuration:
		less = func(a, b model.CallRecord) bool { return a.DurationSeconds < b.DurationSeconds }
	case SortNumber:
		less = func(a, b model.CallRecord) bool { return numberLess(a.Number, b.Number) }
	default:
		return nil, fmt.Errorf("unknown sort key %q (valid: time, duration, number)", key)
	}

	out := make([]model.CallRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, nil
}

// numberLess orders digit strings numerically: shorter is smaller, equal
// lengths compare lexically.
func numberLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ─── Dedupe ───────────────────────────────────────────────────────────────────

// Dedupe drops records identical to an earlier one (same number, timestamp
// and duration), as happens when overlapping exports are concatenated.
// It returns the kept records and the number removed.
func Dedupe(recs []model.CallRecord) ([]model.CallRecord, int) {
	seen := make(map[model.CallRecord]bool, len(recs))
	out := make([]model.CallRecord, 0, len(recs))
	for _, r := range recs {
		k := r
		k.Timestamp = model.CollapseSpace(r.Timestamp)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out, len(recs) - len(out)
}

// ─── Limit ────────────────────────────────────────────────────────────────────

// Head returns a copy of at most the first n records. n <= 0 returns all of
// them.
func Head(recs []model.CallRecord, n int) []model.CallRecord {
	if n <= 0 || n > len(recs) {
		n = len(recs)
	}
	out := make([]model.CallRecord, n)
	copy(out, recs[:n])
	return out
}
