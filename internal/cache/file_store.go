package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore keeps one flat JSON file per key. When maxEntries > 0 the least
// recently used files (by mtime, refreshed on read) are evicted after writes.
type FileStore struct {
	dir        string
	maxEntries int
	logger     *slog.Logger
	now        func() time.Time

	evictMu sync.Mutex
}

func NewFileStore(dir string, maxEntries int, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &FileStore{dir: dir, maxEntries: maxEntries, logger: logger, now: time.Now}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	p := s.path(key)
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	t := s.now()
	if err := os.Chtimes(p, t, t); err != nil {
		s.logger.Debug("cache touch failed", "key", key, "error", err)
	}
	return b, true, nil
}

// Put writes atomically: temp file in the same directory, then rename.
func (s *FileStore) Put(ctx context.Context, key string, payload []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("rename cache file: %w", err)
	}
	t := s.now()
	_ = os.Chtimes(s.path(key), t, t)

	if s.maxEntries > 0 {
		s.evict()
	}
	return nil
}

func (s *FileStore) evict() {
	s.evictMu.Lock()
	defer s.evictMu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("cache eviction scan failed", "dir", s.dir, "error", err)
		return
	}
	type item struct {
		name string
		mod  time.Time
	}
	var items []item
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, item{name: e.Name(), mod: info.ModTime()})
	}
	if len(items) <= s.maxEntries {
		return
	}
	sort.Slice(items, func(i, j int) bool { return items[i].mod.Before(items[j].mod) })
	for _, it := range items[:len(items)-s.maxEntries] {
		if err := os.Remove(filepath.Join(s.dir, it.name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cache eviction failed", "file", it.name, "error", err)
			continue
		}
		s.logger.Debug("cache entry evicted", "file", it.name)
	}
}

func (s *FileStore) Close() error { return nil }
