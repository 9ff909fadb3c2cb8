package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"b.pdf", "a.PDF", "notes.txt", ".hidden.pdf", "sub/c.pdf", ".cache/d.pdf"} {
		touch(t, filepath.Join(dir, p))
	}

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{"flat", ScanOptions{}, []string{".hidden.pdf", "a.PDF", "b.pdf"}},
		{"flat skip hidden", ScanOptions{SkipHidden: true}, []string{"a.PDF", "b.pdf"}},
		{"recursive skip hidden", ScanOptions{Recursive: true, SkipHidden: true}, []string{"a.PDF", "b.pdf", "sub/c.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats, err := Scan(dir, tt.opts)
			require.NoError(t, err)
			want := make([]string, len(tt.want))
			for i, p := range tt.want {
				want[i] = filepath.Join(dir, filepath.FromSlash(p))
			}
			assert.Equal(t, want, got)
			assert.Equal(t, uint32(len(want)), stats.Matched)
		})
	}
}

func TestScan_Errors(t *testing.T) {
	_, _, err := Scan(" ", ScanOptions{})
	assert.Error(t, err)
	_, _, err = Scan(filepath.Join(t.TempDir(), "missing"), ScanOptions{})
	assert.Error(t, err)
}

func TestWatch_ReportsNewPDFs(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := Watch(ctx, WatchConfig{Roots: []string{dir}, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	touch(t, filepath.Join(dir, "ignored.txt"))
	touch(t, filepath.Join(dir, "q1.pdf"))

	select {
	case got := <-events:
		assert.Equal(t, filepath.Join(dir, "q1.pdf"), got)
	case <-time.After(3 * time.Second):
		t.Fatal("no event for new pdf")
	}

	cancel()
	for range events {
	}
}

func TestWatch_NoRoots(t *testing.T) {
	_, _, err := Watch(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}
