// Package app wires together configuration, the insight client, and the local
// store into a single Deps struct that commands receive at runtime.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avinashkr148/Call-analyzer/internal/config"
	"github.com/avinashkr148/Call-analyzer/internal/insight"
	"github.com/avinashkr148/Call-analyzer/internal/model"
	"github.com/avinashkr148/Call-analyzer/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
// Store is opened lazily; commands that need it call RequireStore.
type Deps struct {
	Config  *config.Config
	Insight insight.Generator
	Store   *store.Store
}

// New builds a Deps from resolved config.
func New(cfg *config.Config) *Deps {
	return &Deps{
		Config:  cfg,
		Insight: insight.NewClient(cfg.InsightOptions()),
	}
}

// RequireStore opens the local database if it is not open yet.
func (d *Deps) RequireStore() error {
	if d.Store != nil {
		return nil
	}
	if d.Config.DBPath == "" {
		return fmt.Errorf("no database path configured (set %s or db_path in config.json)", config.EnvDBPath)
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return err
	}
	d.Store = s
	return nil
}

// Close releases the store, if one was opened.
func (d *Deps) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}

// ─── Insight ──────────────────────────────────────────────────────────────────

// InsightResult is the outcome of asking for a batch insight.
type InsightResult struct {
	Text   string
	OK     bool // false only when there was nothing to describe
	Cached bool
}

// DescribeBatch produces the insight text for records. When useCache is set
// and the store can be opened, earlier answers for the same prompt are reused
// and fresh answers are saved. Generation failures yield
// insight.FailureMessage and are never cached.
func (d *Deps) DescribeBatch(ctx context.Context, records []model.CallRecord, useCache bool) InsightResult {
	if len(records) == 0 {
		return InsightResult{}
	}

	var key string
	if useCache {
		if err := d.RequireStore(); err != nil {
			slog.Debug("insight cache unavailable", "err", err)
			useCache = false
		} else {
			key = store.InsightKey(d.Config.InsightModel, insight.BuildPrompt(records))
			text, ok, err := d.Store.GetInsight(key)
			if err != nil {
				slog.Debug("insight cache read failed", "err", err)
			} else if ok {
				slog.Debug("insight cache hit", "key", key[:12])
				return InsightResult{Text: text, OK: true, Cached: true}
			}
		}
	}

	text, _ := insight.Describe(ctx, d.Insight, records)
	if text == insight.FailureMessage {
		return InsightResult{Text: text, OK: true}
	}
	if useCache {
		if err := d.Store.PutInsight(key, d.Config.InsightModel, text); err != nil {
			slog.Debug("insight cache write failed", "err", err)
		}
	}
	return InsightResult{Text: text, OK: true}
}
