// Package store caches quantized swatches in SQLite, keyed by image content
// hash and extraction options.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite" // Register the sqlite driver

	"github.com/jmylchreest/vibrance/internal/colour"
	"github.com/jmylchreest/vibrance/internal/swatch"
)

// DatabaseName is the file name of the cache database.
const DatabaseName = "palettes.db"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultDir returns the default cache directory.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Fallback to home directory if cache dir not available.
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "vibrance"), nil
	}
	return filepath.Join(cacheDir, "vibrance"), nil
}

// Store is a SQLite-backed swatch cache. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	path   string
	logger hclog.Logger
}

// Entry describes one cached palette.
type Entry struct {
	Key        string    `json:"key"`
	Source     string    `json:"source"`
	Swatches   int       `json:"swatches"`
	CreatedAt  time.Time `json:"created_at"`
	AccessedAt time.Time `json:"accessed_at"`
}

// swatchRecord is the JSON form of a cached swatch.
type swatchRecord struct {
	RGB        string `json:"rgb"`
	Population int    `json:"population"`
}

// Open opens (creating if needed) the cache database in dir and applies
// migrations.
func Open(ctx context.Context, dir string, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("store")

	dbPath := filepath.Join(dir, DatabaseName)
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := database.ExecContext(ctx, pragma); err != nil {
			database.Close()
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", pragma, err)
		}
	}

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := RunMigrations(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	logger.Debug("opened palette cache", "path", dbPath)
	return &Store{db: database, path: dbPath, logger: logger}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached swatches for key.
func (s *Store) Get(ctx context.Context, key string) ([]*swatch.Swatch, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT swatches FROM palettes WHERE key = ?", key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query palette %s: %w", key, err)
	}

	swatches, err := decodeSwatches(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode palette %s: %w", key, err)
	}

	if _, err := s.db.ExecContext(ctx, "UPDATE palettes SET accessed_at = ? WHERE key = ?", now(), key); err != nil {
		s.logger.Warn("failed to update access time", "key", key, "error", err)
	}

	return swatches, true, nil
}

// Put stores swatches under key, replacing any existing entry.
func (s *Store) Put(ctx context.Context, key, source string, swatches []*swatch.Swatch) error {
	payload, err := encodeSwatches(swatches)
	if err != nil {
		return fmt.Errorf("encode palette %s: %w", key, err)
	}

	ts := now()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO palettes(key, source, swatches, swatch_count, created_at, accessed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			source = excluded.source,
			swatches = excluded.swatches,
			swatch_count = excluded.swatch_count,
			accessed_at = excluded.accessed_at
	`, key, source, payload, len(swatches), ts, ts); err != nil {
		return fmt.Errorf("store palette %s: %w", key, err)
	}

	s.logger.Trace("stored palette", "key", key, "swatches", len(swatches))
	return nil
}

// List returns every cached entry, most recently used first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, source, swatch_count, created_at, accessed_at
		FROM palettes
		ORDER BY accessed_at DESC, key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list palettes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created, accessed string
		if err := rows.Scan(&e.Key, &e.Source, &e.Swatches, &created, &accessed); err != nil {
			return nil, fmt.Errorf("scan palette: %w", err)
		}
		e.CreatedAt, _ = time.Parse(timeLayout, created)
		e.AccessedAt, _ = time.Parse(timeLayout, accessed)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list palettes: %w", err)
	}

	return entries, nil
}

// Clear removes every cached entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM palettes")
	if err != nil {
		return 0, fmt.Errorf("clear palettes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear palettes: %w", err)
	}
	s.logger.Debug("cleared palette cache", "removed", n)
	return n, nil
}

// Prune removes entries not accessed since before and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM palettes WHERE accessed_at < ?", before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune palettes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune palettes: %w", err)
	}
	s.logger.Debug("pruned palette cache", "removed", n, "before", before)
	return n, nil
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func encodeSwatches(swatches []*swatch.Swatch) (string, error) {
	records := make([]swatchRecord, 0, len(swatches))
	for _, s := range swatches {
		records = append(records, swatchRecord{RGB: s.RGB().Hex(), Population: s.Population()})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeSwatches(payload string) ([]*swatch.Swatch, error) {
	var records []swatchRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, err
	}

	swatches := make([]*swatch.Swatch, 0, len(records))
	for _, r := range records {
		rgb, err := colour.ParseHex(r.RGB)
		if err != nil {
			return nil, err
		}
		swatches = append(swatches, swatch.New(rgb, r.Population))
	}
	return swatches, nil
}
