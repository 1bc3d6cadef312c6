// Package store provides a thin bbolt wrapper for callan's local archive.
//
// The store holds parsed call batches so they can be re-analysed later
// without the original paste, plus a cache of generated insight text. Data is
// written explicitly via `callan batch save` and `callan report --save`;
// nothing expires on its own.
//
// Buckets:
//
//	batches  — saved batches keyed by batch:<uuid>
//	insights — generated insight text keyed by prompt digest
//	_meta    — internal: schema version, created_at
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/avinashkr148/Call-analyzer/internal/model"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

const batchPrefix = "batch:"

var (
	bucketBatches  = []byte("batches")
	bucketInsights = []byte("insights")
	bucketInternal = []byte("_meta")
)

// AllBuckets lists every user-facing bucket for stats and clear operations.
var AllBuckets = []string{"batches", "insights"}

var (
	ErrNotFound  = errors.New("not found")
	ErrAmbiguous = errors.New("ambiguous batch id prefix")
)

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

func openDB(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}
	return db, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBatches, bucketInsights, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// SchemaVersion returns the schema version recorded in the database.
func (s *Store) SchemaVersion() (string, error) {
	var v string
	err := s.db.View(func(tx *bolt.Tx) error {
		v = string(tx.Bucket(bucketInternal).Get([]byte("schema_version")))
		return nil
	})
	return v, err
}

// ─── Batches ──────────────────────────────────────────────────────────────────

// PutBatch saves b, assigning an ID and CreatedAt when they are unset.
// The stored batch is returned.
func (s *Store) PutBatch(b model.Batch) (model.Batch, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.Records == nil {
		b.Records = []model.CallRecord{}
	}
	data, err := json.Marshal(b)
	if err != nil {
		return b, fmt.Errorf("encoding batch: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBatches).Put([]byte(batchPrefix+b.ID), data)
	})
	return b, err
}

// GetBatch retrieves a batch by ID. A unique ID prefix is also accepted.
func (s *Store) GetBatch(id string) (model.Batch, error) {
	var b model.Batch
	err := s.db.View(func(tx *bolt.Tx) error {
		key, err := resolveKey(tx.Bucket(bucketBatches), id)
		if err != nil {
			return err
		}
		return json.Unmarshal(tx.Bucket(bucketBatches).Get(key), &b)
	})
	return b, err
}

// ListBatches returns every saved batch, oldest first.
func (s *Store) ListBatches() ([]model.BatchInfo, error) {
	var infos []model.BatchInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBatches).ForEach(func(k, v []byte) error {
			var b model.Batch
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
			infos = append(infos, b.Info())
			return nil
		})
	})
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos, err
}

// DeleteBatch removes a batch by ID or unique ID prefix.
func (s *Store) DeleteBatch(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBatches)
		key, err := resolveKey(b, id)
		if err != nil {
			return err
		}
		return b.Delete(key)
	})
}

func resolveKey(b *bolt.Bucket, id string) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("batch %q: %w", id, ErrNotFound)
	}
	exact := []byte(batchPrefix + id)
	if b.Get(exact) != nil {
		return exact, nil
	}
	var found []byte
	c := b.Cursor()
	for k, _ := c.Seek(exact); k != nil && strings.HasPrefix(string(k), string(exact)); k, _ = c.Next() {
		if found != nil {
			return nil, fmt.Errorf("batch %q: %w", id, ErrAmbiguous)
		}
		found = append([]byte(nil), k...)
	}
	if found == nil {
		return nil, fmt.Errorf("batch %q: %w", id, ErrNotFound)
	}
	return found, nil
}

// ─── Insights ─────────────────────────────────────────────────────────────────

type storedInsight struct {
	Model     string    `json:"model"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// InsightKey derives the cache key for a prompt sent to a given model.
func InsightKey(modelName, prompt string) string {
	sum := sha256.Sum256([]byte(modelName + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// PutInsight caches generated text under key.
func (s *Store) PutInsight(key, modelName, text string) error {
	data, err := json.Marshal(storedInsight{Model: modelName, Text: text, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding insight: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInsights).Put([]byte(key), data)
	})
}

// GetInsight returns cached text for key.
// Returns (text, true, nil) if found, ("", false, nil) if not.
func (s *Store) GetInsight(key string) (string, bool, error) {
	var in storedInsight
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketInsights).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &in)
	})
	if err != nil || !found {
		return "", false, err
	}
	return in.Text, true, nil
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// BucketStats holds row count and byte size for a single bucket.
type BucketStats struct {
	Name  string
	Count int
	Bytes int64
}

// Stats returns row counts and approximate sizes for all user-facing buckets,
// in AllBuckets order.
func (s *Store) Stats() ([]BucketStats, error) {
	var stats []BucketStats
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			st := BucketStats{Name: name}
			err := b.ForEach(func(k, v []byte) error {
				st.Count++
				st.Bytes += int64(len(k) + len(v))
				return nil
			})
			if err != nil {
				return err
			}
			stats = append(stats, st)
		}
		return nil
	})
	return stats, err
}

// ClearBucket deletes all entries in the named user-facing bucket.
func (s *Store) ClearBucket(name string) error {
	if !isUserBucket(name) {
		return fmt.Errorf("unknown bucket %q (valid: %s)", name, strings.Join(AllBuckets, ", "))
	}
	bname := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bname); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("clearing bucket %s: %w", name, err)
		}
		_, err := tx.CreateBucket(bname)
		return err
	})
}

// ClearAll deletes all entries from every user-facing bucket.
func (s *Store) ClearAll() error {
	for _, name := range AllBuckets {
		if err := s.ClearBucket(name); err != nil {
			return err
		}
	}
	return nil
}

// Compact rewrites the database into a fresh file, reclaiming pages freed by
// deletes. It returns the file size before and after.
func (s *Store) Compact() (before, after int64, err error) {
	path := s.db.Path()
	if fi, err := os.Stat(path); err == nil {
		before = fi.Size()
	}

	tmp := path + ".compact"
	_ = os.Remove(tmp)
	dst, err := openDB(tmp)
	if err != nil {
		return before, 0, err
	}
	if err := bolt.Compact(dst, s.db, 1<<20); err != nil {
		dst.Close()
		_ = os.Remove(tmp)
		return before, 0, fmt.Errorf("compacting: %w", err)
	}
	if err := dst.Close(); err != nil {
		return before, 0, err
	}
	if err := s.db.Close(); err != nil {
		return before, 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return before, 0, fmt.Errorf("replacing db: %w", err)
	}
	s.db, err = openDB(path)
	if err != nil {
		return before, 0, err
	}
	if fi, err := os.Stat(path); err == nil {
		after = fi.Size()
	}
	return before, after, nil
}

func isUserBucket(name string) bool {
	for _, b := range AllBuckets {
		if b == name {
			return true
		}
	}
	return false
}
