package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avinashkr148/Call-analyzer/internal/calllog"
	"github.com/avinashkr148/Call-analyzer/internal/config"
)

func TestOutputWriterDefault(t *testing.T) {
	globalFlags.Out = ""
	w, closeFn, err := outputWriter(os.Stdout)
	if err != nil {
		t.Fatalf("outputWriter default: %v", err)
	}
	if w != os.Stdout {
		t.Fatalf("expected stdout writer passthrough")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("default closer should be nil error, got: %v", err)
	}
}

func TestOutputWriterFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.txt")
	globalFlags.Out = p
	t.Cleanup(func() { globalFlags.Out = "" })

	w, closeFn, err := outputWriter(os.Stdout)
	if err != nil {
		t.Fatalf("outputWriter file: %v", err)
	}
	if w == os.Stdout {
		t.Fatalf("expected file writer, got stdout")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("closing output writer: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
}

func TestOutputWriterBadPath(t *testing.T) {
	globalFlags.Out = filepath.Join(t.TempDir(), "missing", "out.txt")
	t.Cleanup(func() { globalFlags.Out = "" })
	if _, _, err := outputWriter(os.Stdout); err == nil {
		t.Fatal("expected error for a directory that does not exist")
	}
}

func TestResolveFormat(t *testing.T) {
	globalFlags.Format = ""
	if got := resolveFormat(""); got != "table" {
		t.Errorf("expected table fallback, got %q", got)
	}
	if got := resolveFormat("csv"); got != "csv" {
		t.Errorf("expected config format, got %q", got)
	}
	globalFlags.Format = "json"
	t.Cleanup(func() { globalFlags.Format = "" })
	if got := resolveFormat("csv"); got != "json" {
		t.Errorf("--format should win over config, got %q", got)
	}
}

func TestInputArg(t *testing.T) {
	if got := inputArg(nil); got != "-" {
		t.Errorf("no args should mean stdin, got %q", got)
	}
	if got := inputArg([]string{"calls.txt"}); got != "calls.txt" {
		t.Errorf("got %q", got)
	}
}

func TestDropWarnings(t *testing.T) {
	if w := dropWarnings(calllog.ParseDetailed("5551 1/2/2024 9:05 AM")); w != nil {
		t.Errorf("clean input should not warn, got %v", w)
	}
	w := dropWarnings(calllog.ParseDetailed("5551 1/2/2024 9:05 AM  junk  more junk"))
	if len(w) != 1 || !strings.HasPrefix(w[0], "2 tokens") {
		t.Errorf("unexpected warnings %v", w)
	}
}

func TestSetConfigValue(t *testing.T) {
	f := config.Template()
	if err := setConfigValue(&f, "top_n", "8"); err != nil || f.TopN != 8 {
		t.Errorf("top_n: err=%v value=%d", err, f.TopN)
	}
	if err := setConfigValue(&f, "insight_url", "http://localhost:8080/"); err != nil || f.InsightURL != "http://localhost:8080" {
		t.Errorf("insight_url should drop the trailing slash: %q (%v)", f.InsightURL, err)
	}
	for key, val := range map[string]string{
		"default_format": "xml",
		"timeout":        "soon",
		"rate":           "0",
		"max_retries":    "-1",
		"top_n":          "zero",
		"colour":         "blue",
	} {
		if err := setConfigValue(&f, key, val); err == nil {
			t.Errorf("%s=%s: expected error", key, val)
		}
	}
}
