package cache

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T, maxEntries int) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "cache.db"), maxEntries, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t, 0)

	_, ok, err := s.Get(ctx, key(1))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, key(1), []byte(`{"v":1}`)))
	require.NoError(t, s.Put(ctx, key(1), []byte(`{"v":2}`)))
	got, ok, err := s.Get(ctx, key(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, string(got))
}

func TestSQLiteStore_Eviction(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t, 2)
	clock := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	require.NoError(t, s.Put(ctx, key(1), []byte(`1`)))
	require.NoError(t, s.Put(ctx, key(2), []byte(`2`)))
	_, _, err := s.Get(ctx, key(1))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, key(3), []byte(`3`)))

	_, ok, _ := s.Get(ctx, key(2))
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, key(1))
	assert.True(t, ok)
}

func TestSQLiteStore_ConcurrentKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, s.Put(ctx, key(n), []byte{'0' + byte(n)}))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		got, ok, err := s.Get(ctx, key(i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte{'0' + byte(i)}, got)
	}
}
