package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS extraction_cache (
	key         TEXT PRIMARY KEY,
	payload     BLOB NOT NULL,
	created_at  INTEGER NOT NULL,
	accessed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS extraction_cache_accessed_at ON extraction_cache (accessed_at);
`

// SQLiteStore keeps entries in a single SQLite table with LRU eviction.
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
	logger     *slog.Logger
	now        func() time.Time
}

func NewSQLiteStore(ctx context.Context, path string, maxEntries int, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}
	// a single writer keeps SQLITE_BUSY out of the picture
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite cache schema: %w", err)
	}
	logger.Debug("sqlite cache ready", "path", path, "max_entries", maxEntries)
	return &SQLiteStore{db: db, maxEntries: maxEntries, logger: logger, now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM extraction_cache WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE extraction_cache SET accessed_at = ? WHERE key = ?`, s.now().UnixNano(), key); err != nil {
		s.logger.Debug("sqlite cache touch failed", "key", key, "error", err)
	}
	return payload, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, payload []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	now := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO extraction_cache (key, payload, created_at, accessed_at) VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, accessed_at = excluded.accessed_at`,
		key, payload, now, now)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	if s.maxEntries > 0 {
		res, err := s.db.ExecContext(ctx, `
DELETE FROM extraction_cache WHERE key NOT IN (
	SELECT key FROM extraction_cache ORDER BY accessed_at DESC LIMIT ?
)`, s.maxEntries)
		if err != nil {
			s.logger.Warn("sqlite cache eviction failed", "error", err)
			return nil
		}
		if n, _ := res.RowsAffected(); n > 0 {
			s.logger.Debug("sqlite cache entries evicted", "count", n)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
