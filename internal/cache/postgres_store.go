package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS extraction_cache (
	key         TEXT PRIMARY KEY,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	accessed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS extraction_cache_accessed_at ON extraction_cache (accessed_at)`

// pgxConn is the subset of *pgxpool.Pool the store needs; pgxmock satisfies it.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore shares the cache between processes. Writes are upserts, so
// concurrent writers of one key resolve as last-writer-wins.
type PostgresStore struct {
	conn       pgxConn
	maxEntries int
	logger     *slog.Logger
}

// PostgresConfig mirrors the pool settings used across the codebase.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// OpenPostgresStore connects, then creates the table if needed.
func OpenPostgresStore(ctx context.Context, cfg PostgresConfig, maxEntries int, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse cache dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "finstatement-extractor"

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect cache database: %w", err)
	}

	s := newPostgresStore(pool, maxEntries, logger)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("postgres cache ready", "max_entries", maxEntries)
	return s, nil
}

func newPostgresStore(conn pgxConn, maxEntries int, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{conn: conn, maxEntries: maxEntries, logger: logger}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create cache schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	var payload []byte
	err := s.conn.QueryRow(ctx, `SELECT payload FROM extraction_cache WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if _, err := s.conn.Exec(ctx, `UPDATE extraction_cache SET accessed_at = now() WHERE key = $1`, key); err != nil {
		s.logger.Debug("postgres cache touch failed", "key", key, "error", err)
	}
	return payload, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, payload []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	_, err := s.conn.Exec(ctx, `
INSERT INTO extraction_cache (key, payload) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, accessed_at = now()`, key, payload)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	if s.maxEntries > 0 {
		tag, err := s.conn.Exec(ctx, `
DELETE FROM extraction_cache WHERE key IN (
	SELECT key FROM extraction_cache ORDER BY accessed_at DESC OFFSET $1
)`, s.maxEntries)
		if err != nil {
			s.logger.Warn("postgres cache eviction failed", "error", err)
			return nil
		}
		if n := tag.RowsAffected(); n > 0 {
			s.logger.Debug("postgres cache entries evicted", "count", n)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.conn.Close()
	return nil
}
