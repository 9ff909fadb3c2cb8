package cache

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/internal/common"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// Open builds the Store named by cfg.Backend. BackendNone returns a nil
// Store, which Cache treats as always-miss.
func Open(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		s, err := NewFileStore(cfg.Dir, cfg.MaxEntries, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.Dir, "cache.db")
		}
		s, err := NewSQLiteStore(ctx, path, cfg.MaxEntries, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, common.NewAppError(common.CodeCacheUnavailable, "postgres cache requires CACHE_DB_URL", common.ErrCacheUnavailable)
		}
		s, err := OpenPostgresStore(ctx, PostgresConfig{DSN: cfg.DSN, MaxConns: 4}, cfg.MaxEntries, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendNone:
		return nil, nil
	default:
		return nil, common.NewAppError(common.CodeCacheUnavailable, fmt.Sprintf("unknown cache backend %q", cfg.Backend), common.ErrCacheUnavailable)
	}
}
