// Package calllog parses raw, whitespace-delimited call-log text into
// CallRecords. Parsing is best-effort: a token that is not a complete record
// is dropped without error. All functions are pure; no I/O.
package calllog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/avinashkr148/Call-analyzer/internal/model"
)

// ws is the whitespace class of the log format. It matches model.IsLogSpace.
const ws = `[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]`

var (
	// Records are separated by two or more whitespace characters; a single
	// space separates fields inside one record.
	tokenSep = regexp.MustCompile(ws + `{2,}`)

	// number, date/time, optional duration
	recordPattern = regexp.MustCompile(
		`^\+?(\d+)` + ws + `+(\d{1,2}/\d{1,2}/\d{4}` + ws + `+\d{1,2}:\d{2}` + ws +
			`+[AP]M)(?:,` + ws + `*(\d{2}:\d{2}:\d{2}))?$`,
	)
)

// ParseResult carries the parsed records along with counts that describe how
// much of the input was discarded.
type ParseResult struct {
	Records    []model.CallRecord
	Candidates int
	Dropped    []string
}

// Parse converts raw log text into records in source order.
// Empty or whitespace-only input yields an empty, non-nil slice.
func Parse(raw string) []model.CallRecord {
	return ParseDetailed(raw).Records
}

// CandidateTokens splits raw into trimmed candidate tokens.
func CandidateTokens(raw string) []string {
	trimmed := strings.TrimFunc(raw, model.IsLogSpace)
	if trimmed == "" {
		return nil
	}
	parts := tokenSep.Split(trimmed, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimFunc(p, model.IsLogSpace))
	}
	return out
}

// ParseDetailed is Parse plus bookkeeping of the dropped tokens.
func ParseDetailed(raw string) ParseResult {
	tokens := CandidateTokens(raw)
	res := ParseResult{
		Records:    make([]model.CallRecord, 0, len(tokens)),
		Candidates: len(tokens),
	}
	for _, tok := range tokens {
		rec, ok := parseToken(tok)
		if !ok {
			res.Dropped = append(res.Dropped, tok)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// parseToken matches a single trimmed token against the record grammar.
func parseToken(tok string) (model.CallRecord, bool) {
	m := recordPattern.FindStringSubmatch(tok)
	if m == nil {
		return model.CallRecord{}, false
	}

	rec := model.CallRecord{
		Number:            m[1],
		Timestamp:         m[2],
		DurationFormatted: model.ZeroDuration,
	}
	// 13/45/2024 is shaped like a date but is not one.
	if _, ok := rec.Time(); !ok {
		return model.CallRecord{}, false
	}

	if m[3] != "" {
		secs, err := DecodeDuration(m[3])
		if err != nil {
			return model.CallRecord{}, false
		}
		rec.DurationSeconds = secs
		rec.DurationFormatted = m[3]
	}
	return rec, true
}

// DecodeDuration converts HH:MM:SS into seconds. Each field must be exactly
// two digits.
func DecodeDuration(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q: expected HH:MM:SS", s)
	}
	var fields [3]int64
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("invalid duration %q: expected HH:MM:SS", s)
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid duration %q: expected HH:MM:SS", s)
		}
		fields[i] = v
	}
	return fields[0]*3600 + fields[1]*60 + fields[2], nil
}

// FormatSeconds renders total seconds as zero-padded HH:MM:SS. Hours are not
// wrapped at 24. Negative input formats as 00:00:00.
func FormatSeconds(total int64) string {
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
