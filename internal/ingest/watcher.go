package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
)

type WatchConfig struct {
	Roots      []string // watched recursively
	SkipHidden bool
	// Debounce coalesces the burst of write events a copy produces.
	Debounce time.Duration
}

// Watch reports extractable files created, written or renamed under the
// roots until ctx ends. Both channels are closed on return.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() {
				return nil
			}
			if cfg.SkipHidden && path != root && isHidden(path) {
				return filepath.SkipDir
			}
			return w.Add(path)
		})
	}
	for _, r := range cfg.Roots {
		if err := addDir(r); err != nil {
			logger.Error("failed to add root directory", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		var (
			mu      sync.Mutex
			pending = map[string]struct{}{}
			timers  sync.WaitGroup
			timer   *time.Timer
		)
		defer func() {
			if timer != nil && timer.Stop() {
				timers.Done()
			}
			timers.Wait()
			_ = w.Close()
			close(evCh)
			close(errCh)
		}()

		flush := func() {
			mu.Lock()
			defer mu.Unlock()
			for p := range pending {
				select {
				case evCh <- p:
				case <-ctx.Done():
					return
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
						if err := addDir(e.Name); err != nil {
							logger.Warn("failed to watch new directory", "path", e.Name, "error", err)
						}
						continue
					}
				}
				if !constants.IsAllowedExt(filepath.Ext(e.Name)) || (cfg.SkipHidden && isHidden(e.Name)) {
					continue
				}
				if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) && !e.Has(fsnotify.Rename) {
					continue
				}
				mu.Lock()
				pending[e.Name] = struct{}{}
				mu.Unlock()
				if cfg.Debounce <= 0 {
					flush()
					continue
				}
				if timer != nil && timer.Stop() {
					timers.Done()
				}
				timers.Add(1)
				timer = time.AfterFunc(cfg.Debounce, func() {
					defer timers.Done()
					flush()
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
