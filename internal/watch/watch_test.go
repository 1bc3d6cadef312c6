package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avinashkr148/Call-analyzer/internal/watch"
)

func waitFor(t *testing.T, ch <-chan string, what string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return ""
	}
}

func TestWatcherRunsOnStartAndChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calls.txt")
	if err := os.WriteFile(path, []byte("v1"), 0600); err != nil {
		t.Fatal(err)
	}

	seen := make(chan string, 10)
	w := watch.New(path, 20*time.Millisecond, func(context.Context) error {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		seen <- string(b)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if got := waitFor(t, seen, "initial run"); got != "v1" {
		t.Errorf("initial run: expected v1, got %q", got)
	}

	if err := os.WriteFile(path, []byte("v2"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := waitFor(t, seen, "change run"); got != "v2" {
		t.Errorf("change run: expected v2, got %q", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calls.txt")
	if err := os.WriteFile(path, []byte("v1"), 0600); err != nil {
		t.Fatal(err)
	}

	seen := make(chan string, 10)
	w := watch.New(path, 20*time.Millisecond, func(context.Context) error {
		seen <- "run"
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, seen, "initial run")
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-seen:
		t.Error("change to a sibling file should not trigger a run")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherSurvivesActionErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calls.txt")
	if err := os.WriteFile(path, []byte("v1"), 0600); err != nil {
		t.Fatal(err)
	}

	seen := make(chan string, 10)
	w := watch.New(path, 20*time.Millisecond, func(context.Context) error {
		seen <- "run"
		return errors.New("bad batch")
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, seen, "initial run")
	if err := os.WriteFile(path, []byte("v2"), 0600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, seen, "run after failed action")
}

func TestWatcherMissingDirectory(t *testing.T) {
	w := watch.New(filepath.Join(t.TempDir(), "no", "such", "calls.txt"), 0, func(context.Context) error { return nil })
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error for a missing directory")
	}
}
