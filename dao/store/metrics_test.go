package store

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewMetrics_DuplicateName verifies that registering two metric sets for
// the same store name on one registry fails.
func TestNewMetrics_DuplicateName(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	_, err := NewMetrics(reg, "users")
	require.NoError(t, err)

	_, err = NewMetrics(reg, "users")
	require.Error(t, err)

	_, err = NewMetrics(reg, "orders")
	require.NoError(t, err, "distinct store names must coexist")
}

// TestMetrics_NilSafe verifies that a nil *Metrics records nothing and never panics.
func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics

	require.NotPanics(t, func() {
		m.recordPut()
		m.recordRemove()
		m.recordClear()
		m.recordEvictions(3)
		m.recordFind(true)
		m.recordSelect(10, false, time.Millisecond)
	})
}

// TestMapStore_Metrics verifies that store operations update their counters.
func TestMapStore_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	metrics, err := NewMetrics(reg, "records")
	require.NoError(t, err)

	store := NewMapStore(testRecordKey, &MapConfig{
		ShardCount: 2,
		Logger:     discardLogger(),
		Metrics:    metrics,
	})

	seedSequential(t, store, 3)

	_, _ = store.Find(1)
	_, _ = store.Find(404)
	store.Remove(testRecord{ID: 2})

	selectAll(t, store, Query[testRecord]{})

	failing := FuncSink[testRecord]{
		PutFunc: func(_ testRecord, fc *FlowControl) {
			fc.Fail(errors.New("rejected"))
		},
	}
	store.Select(t.Context(), failing, Query[testRecord]{})

	store.RemoveAll(Query[testRecord]{})

	assert.InDelta(t, 3, testutil.ToFloat64(metrics.puts), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.removes), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.clears), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.finds.WithLabelValues(resultHit)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.finds.WithLabelValues(resultMiss)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.selects.WithLabelValues(outcomeEOF)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.selects.WithLabelValues(outcomeError)), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.scanned), 0, "2 records plus 1 before the failure")

	assert.Equal(t, 2, testutil.CollectAndCount(metrics.selects))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.selectDuration))
}

// TestMapStore_Select_PanickingEOF verifies that a terminal sink panicking in
// EOF, with and without an order stage, stays inside Select and is counted as
// a failed query.
func TestMapStore_Select_PanickingEOF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query Query[testRecord]
	}{
		{name: "streaming", query: Query[testRecord]{}},
		{name: "ordered", query: Query[testRecord]{Order: byID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			metrics, err := NewMetrics(prometheus.NewRegistry(), "records")
			require.NoError(t, err)

			store := NewMapStore(testRecordKey, &MapConfig{
				ShardCount: 2,
				Logger:     discardLogger(),
				Metrics:    metrics,
			})
			seedSequential(t, store, 3)

			terminal := &scriptedSink{
				onEOF: func() {
					panic("eof exploded")
				},
			}

			require.NotPanics(t, func() {
				store.Select(t.Context(), terminal, tt.query)
			})

			assert.Len(t, terminal.puts, 3)
			assert.Equal(t, 1, terminal.terminalCalls())
			assert.Empty(t, terminal.errs)
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.selects.WithLabelValues(outcomeError)), 0)
			assert.InDelta(t, 0, testutil.ToFloat64(metrics.selects.WithLabelValues(outcomeEOF)), 0)
		})
	}
}
