package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/finstatement-extractor/constants"
	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/metrics"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	putErr error
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memStore) Put(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = payload
	return nil
}

func (m *memStore) Close() error { return nil }

func sampleResult() entity.ExtractionResult {
	return entity.ExtractionResult{
		YearHeaders: []string{"Mar 2024", "Mar 2023"},
		Rows: []entity.RawRow{
			entity.NewRow("Revenue from operations", []entity.Value{entity.Number(1200), entity.Number(-45.5)}, 0, constants.SectionRevenue, false),
			entity.NewRow("Expenses", []entity.Value{entity.Null(), entity.Null()}, 0, constants.SectionExpense, true),
		},
		UnitLabel: "₹ in Crores",
		Method:    string(constants.MethodTextLayer),
		Pages:     3,
	}
}

func TestCache_PutGet(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	c := New(newMemStore(), nil, m)
	ctx := context.Background()

	_, ok := c.Get(ctx, key(1))
	assert.False(t, ok)

	want := sampleResult()
	c.Put(ctx, key(1), want)
	got, ok := c.Get(ctx, key(1))
	require.True(t, ok)
	assert.True(t, got.CacheHit)
	got.CacheHit = false
	assert.Equal(t, want, got)

	assert.Equal(t, 1.0, cacheEvents(t, reg, "hit"))
	assert.Equal(t, 1.0, cacheEvents(t, reg, "miss"))
	assert.Equal(t, 1.0, cacheEvents(t, reg, "write"))
}

func cacheEvents(t *testing.T, reg *prometheus.Registry, event string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "finextract_cache_events_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "event" && l.GetValue() == event {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestCache_SkipsEmptyAndFailedResults(t *testing.T) {
	store := newMemStore()
	c := New(store, nil, nil)
	c.Put(context.Background(), key(1), entity.ExtractionResult{})
	c.Put(context.Background(), key(2), entity.Failed("no extractable financial data"))
	assert.Empty(t, store.data)
}

func TestCache_StoreErrorsDegradeToMiss(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("disk gone")
	store.putErr = errors.New("disk gone")
	c := New(store, nil, nil)

	c.Put(context.Background(), key(1), sampleResult())
	_, ok := c.Get(context.Background(), key(1))
	assert.False(t, ok)
}

func TestCache_InvalidEntryIsMiss(t *testing.T) {
	store := newMemStore()
	store.data[key(1)] = []byte(`{"year_headers": "nope", "rows": [], "unit_label": ""}`)
	store.data[key(2)] = []byte(`not json`)
	store.data[key(3)] = []byte(`{"year_headers": [], "rows": [{"label": "x", "values": [{}]}], "unit_label": ""}`)
	c := New(store, nil, nil)

	for _, k := range []string{key(1), key(2), key(3)} {
		_, ok := c.Get(context.Background(), k)
		assert.False(t, ok, k)
	}
}

func TestCache_NilStore(t *testing.T) {
	c := New(nil, nil, nil)
	c.Put(context.Background(), key(1), sampleResult())
	_, ok := c.Get(context.Background(), key(1))
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}

func TestValidateEntry(t *testing.T) {
	assert.NoError(t, ValidateEntry([]byte(`{"year_headers":["2024"],"rows":[{"label":"Revenue","values":[1,null,"n/a"]}],"unit_label":""}`)))
	assert.Error(t, ValidateEntry([]byte(`{"rows":[]}`)))
	assert.Error(t, ValidateEntry([]byte(`{"year_headers":[],"rows":[{"label":"","values":[]}],"unit_label":""}`)))
}
