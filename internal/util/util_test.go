package util_test

import (
	"errors"
	"testing"
	"time"

	"github.com/avinashkr148/Call-analyzer/internal/util"
)

var errSentinel = errors.New("sentinel")

func TestMultiErrorEmpty(t *testing.T) {
	var m util.MultiError
	m.Add(nil)
	if m.Err() != nil {
		t.Errorf("expected nil error, got %v", m.Err())
	}
}

func TestMultiErrorJoins(t *testing.T) {
	var m util.MultiError
	m.Add(errors.New("a"))
	m.Add(errSentinel)
	err := m.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "a; sentinel" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, errSentinel) {
		t.Error("errors.Is should see through MultiError")
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KiB",
		1536:        "1.5 KiB",
		1 << 20:     "1.0 MiB",
		5 * 1 << 30: "5.0 GiB",
	}
	for in, want := range cases {
		if got := util.HumanBytes(in); got != want {
			t.Errorf("HumanBytes(%d): expected %q, got %q", in, want, got)
		}
	}
}

func TestElapsed(t *testing.T) {
	if ms := util.Elapsed(time.Now().Add(-50 * time.Millisecond)); ms < 50 {
		t.Errorf("expected at least 50ms, got %d", ms)
	}
}

func TestPlural(t *testing.T) {
	if got := util.Plural(1, "call"); got != "1 call" {
		t.Errorf("got %q", got)
	}
	if got := util.Plural(0, "call"); got != "0 calls" {
		t.Errorf("got %q", got)
	}
}
