// Package ingest discovers PDFs to extract: a one-shot directory scan and a
// watcher that reports files as they appear.
package ingest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
)

type ScanOptions struct {
	Recursive  bool
	SkipHidden bool
}

type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// Scan lists extractable files under root in lexical order. Unreadable
// entries are counted and skipped.
func Scan(root string, opts ScanOptions) ([]string, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var files []string
	var stats DirStats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failed++
			return nil
		}
		if path == root {
			return nil
		}
		if opts.SkipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if constants.IsAllowedExt(filepath.Ext(path)) {
			stats.Matched++
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	sort.Strings(files)
	return files, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
