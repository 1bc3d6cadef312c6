package transform_test

import (
	"testing"
	"time"

	"github.com/avinashkr148/Call-analyzer/internal/calllog"
	"github.com/avinashkr148/Call-analyzer/internal/model"
	"github.com/avinashkr148/Call-analyzer/internal/transform"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

const sample = "+15550001 1/2/2024 9:05 AM, 00:03:30  " +
	"15550002 1/2/2024 9:40 AM  " +
	"+15550001 1/2/2024 2:15 PM,00:01:00  " +
	"15550003 1/3/2024 8:00 AM, 00:00:20"

func records(t *testing.T) []model.CallRecord {
	t.Helper()
	recs := calllog.Parse(sample)
	if len(recs) != 4 {
		t.Fatalf("sample should parse to 4 records, got %d", len(recs))
	}
	return recs
}

func numbers(recs []model.CallRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Number
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// date builds a UTC time matching how record timestamps decode.
func date(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

// ─── Filter ───────────────────────────────────────────────────────────────────

func TestFilterStatus(t *testing.T) {
	recs := records(t)
	got := transform.Filter(recs, transform.FilterOptions{Status: model.StatusMissed})
	if !equal(numbers(got), []string{"15550002"}) {
		t.Errorf("missed: got %v", numbers(got))
	}
	got = transform.Filter(recs, transform.FilterOptions{Status: model.StatusConnected})
	if len(got) != 3 {
		t.Errorf("connected: expected 3, got %d", len(got))
	}
}

func TestFilterNumbersIgnoresPlus(t *testing.T) {
	got := transform.Filter(records(t), transform.FilterOptions{Numbers: []string{"+15550001"}})
	if len(got) != 2 {
		t.Errorf("expected both calls to 15550001, got %d", len(got))
	}
}

func TestFilterDurationBounds(t *testing.T) {
	got := transform.Filter(records(t), transform.FilterOptions{MinDuration: 30, MaxDuration: 120})
	if len(got) != 1 || got[0].DurationSeconds != 60 {
		t.Errorf("expected only the 60s call, got %+v", got)
	}
}

func TestFilterTimeWindow(t *testing.T) {
	got := transform.Filter(records(t), transform.FilterOptions{
		After:  date(2024, 1, 2, 9, 40),
		Before: date(2024, 1, 3, 0, 0),
	})
	// After is inclusive, Before exclusive.
	if !equal(numbers(got), []string{"15550002", "15550001"}) {
		t.Errorf("got %v", numbers(got))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	recs := records(t)
	before := numbers(recs)
	transform.Filter(recs, transform.FilterOptions{Status: model.StatusMissed})
	if !equal(numbers(recs), before) {
		t.Error("Filter modified its input")
	}
}

func TestFilterOptionsValidate(t *testing.T) {
	bad := []transform.FilterOptions{
		{Status: "busy"},
		{MinDuration: -1},
		{MinDuration: 100, MaxDuration: 10},
		{After: date(2024, 2, 1, 0, 0), Before: date(2024, 1, 1, 0, 0)},
	}
	for i, o := range bad {
		if err := o.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if err := (transform.FilterOptions{Status: model.StatusConnected}).Validate(); err != nil {
		t.Errorf("valid options rejected: %v", err)
	}
}

// ─── Sort ─────────────────────────────────────────────────────────────────────

func TestSortDurationDesc(t *testing.T) {
	got, err := transform.Sort(records(t), transform.SortDuration, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{210, 60, 20, 0}
	for i, r := range got {
		if r.DurationSeconds != want[i] {
			t.Fatalf("position %d: expected %ds, got %ds", i, want[i], r.DurationSeconds)
		}
	}
}

func TestSortTimeIsChronological(t *testing.T) {
	recs := records(t)
	shuffled := []model.CallRecord{recs[3], recs[1], recs[0], recs[2]}
	got, err := transform.Sort(shuffled, transform.SortTime, false)
	if err != nil {
		t.Fatal(err)
	}
	if !equal(numbers(got), numbers(recs)) {
		t.Errorf("expected source order %v, got %v", numbers(recs), numbers(got))
	}
	if shuffled[0].Number != "15550003" {
		t.Error("Sort modified its input")
	}
}

func TestSortStableOnTies(t *testing.T) {
	got, err := transform.Sort(records(t), transform.SortNumber, false)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Timestamp != "1/2/2024 9:05 AM" || got[1].Timestamp != "1/2/2024 2:15 PM" {
		t.Errorf("equal numbers should keep input order: %+v", got[:2])
	}
}

func TestSortNumberIsNumeric(t *testing.T) {
	in := []model.CallRecord{
		{Number: "10", Timestamp: "1/2/2024 9:05 AM"},
		{Number: "9", Timestamp: "1/2/2024 9:05 AM"},
		{Number: "100", Timestamp: "1/2/2024 9:05 AM"},
		{Number: "11", Timestamp: "1/2/2024 9:05 AM"},
	}
	got, err := transform.Sort(in, transform.SortNumber, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"9", "10", "11", "100"}; !equal(numbers(got), want) {
		t.Errorf("expected %v, got %v", want, numbers(got))
	}
	got, _ = transform.Sort(in, transform.SortNumber, true)
	if want := []string{"100", "11", "10", "9"}; !equal(numbers(got), want) {
		t.Errorf("desc: expected %v, got %v", want, numbers(got))
	}
}

func TestSortUnknownKey(t *testing.T) {
	if _, err := transform.Sort(records(t), "colour", false); err == nil {
		t.Error("expected error for unknown key")
	}
}

// ─── Dedupe / Head ────────────────────────────────────────────────────────────

func TestDedupe(t *testing.T) {
	recs := records(t)
	doubled := append(append([]model.CallRecord{}, recs...), recs[0], recs[1])
	got, removed := transform.Dedupe(doubled)
	if removed != 2 || len(got) != len(recs) {
		t.Errorf("expected 2 removed and %d kept, got %d removed, %d kept", len(recs), removed, len(got))
	}
}

func TestDedupeTreatsSpacingAsEqual(t *testing.T) {
	a := model.CallRecord{Number: "5551", Timestamp: "1/2/2024 9:05 AM", DurationFormatted: model.ZeroDuration}
	b := a
	b.Timestamp = "1/2/2024 9:05\tAM"
	_, removed := transform.Dedupe([]model.CallRecord{a, b})
	if removed != 1 {
		t.Errorf("timestamps differing only in spacing should dedupe, removed %d", removed)
	}
}

func TestHead(t *testing.T) {
	recs := records(t)
	if got := transform.Head(recs, 2); len(got) != 2 {
		t.Errorf("expected 2, got %d", len(got))
	}
	if got := transform.Head(recs, 0); len(got) != len(recs) {
		t.Errorf("n=0 should return all records")
	}
	if got := transform.Head(recs, 99); len(got) != len(recs) {
		t.Errorf("n beyond length should return all records")
	}
}

func TestHeadDoesNotAliasInput(t *testing.T) {
	recs := records(t)
	for _, n := range []int{0, 2} {
		got := transform.Head(recs, n)
		got[0].Number = "changed"
		if recs[0].Number == "changed" {
			t.Fatalf("Head(n=%d) shares its backing array with the input", n)
		}
	}
}
