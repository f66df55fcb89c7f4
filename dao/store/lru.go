package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultLRUMaxSize is the bound used when LRUConfig.MaxSize is left at zero.
const DefaultLRUMaxSize = 100

type (
	// LRUConfig holds LRUStore configuration.
	LRUConfig struct {
		// MaxSize is the number of most recently put records kept.
		// Zero selects DefaultLRUMaxSize; negative values are rejected.
		MaxSize int64

		// Logger receives eviction diagnostics. Defaults to slog.Default().
		Logger *slog.Logger

		// Metrics, when set, counts evictions.
		Metrics *Metrics
	}

	// LRUStore bounds the size of another Store by evicting the records that
	// were put least recently. Find does not refresh recency: only Put does.
	//
	// Recency is kept in a separate tracking MapStore and eviction is itself a
	// query over it: after every Put the tracking entries are ordered newest
	// first and everything past MaxSize is removed from both stores.
	//
	// Writes (Put, Remove, RemoveAll) are serialized so the two stores never
	// disagree and an eviction pass never races a Put of the key it removes.
	// Reads go straight to the wrapped store.
	LRUStore[K comparable, V any] struct {
		delegate Store[K, V]
		keyOf    KeyFunc[K, V]
		tracking *MapStore[K, lruEntry[K]]
		maxSize  int64
		logger   *slog.Logger
		metrics  *Metrics

		// mu guards writes to delegate and tracking.
		mu sync.Mutex
		// clock hands out strictly increasing put stamps. Guarded by mu.
		clock uint64
	}

	// lruEntry links a key to the stamp of its most recent Put.
	lruEntry[K comparable] struct {
		Key   K
		Stamp uint64
	}
)

// Compile-time interface assertion.
var _ Store[string, any] = (*LRUStore[string, any])(nil)

// GetMaxSize returns the configured bound or DefaultLRUMaxSize.
func (cfg *LRUConfig) GetMaxSize() int64 {
	if cfg == nil || cfg.MaxSize == 0 {
		return DefaultLRUMaxSize
	}

	return cfg.MaxSize
}

// GetLogger returns the configured logger or slog.Default().
func (cfg *LRUConfig) GetLogger() *slog.Logger {
	if cfg == nil || cfg.Logger == nil {
		return slog.Default()
	}

	return cfg.Logger
}

// GetMetrics returns the configured metrics, which may be nil.
func (cfg *LRUConfig) GetMetrics() *Metrics {
	if cfg == nil {
		return nil
	}

	return cfg.Metrics
}

// NewLRUStore wraps delegate so it never holds more than cfg.MaxSize records
// put through the returned store. keyOf must derive the same key delegate does.
// A nil delegate or keyOf panics, like NewMapStore.
func NewLRUStore[K comparable, V any](delegate Store[K, V], keyOf KeyFunc[K, V], cfg *LRUConfig) (*LRUStore[K, V], error) {
	if delegate == nil || keyOf == nil {
		panic("store: NewLRUStore requires a delegate Store and a KeyFunc")
	}

	maxSize := cfg.GetMaxSize()
	if maxSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLRUSize, maxSize)
	}

	logger := cfg.GetLogger()

	return &LRUStore[K, V]{
		delegate: delegate,
		keyOf:    keyOf,
		tracking: NewMapStore(func(e lruEntry[K]) K { return e.Key }, &MapConfig{Logger: logger}),
		maxSize:  maxSize,
		logger:   logger,
		metrics:  cfg.GetMetrics(),
	}, nil
}

// Put stores record as the most recently used one and evicts the oldest
// records beyond the size bound.
func (s *LRUStore[K, V]) Put(record V) V {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.delegate.Put(record)

	s.clock++
	s.tracking.Put(lruEntry[K]{
		Key:   s.keyOf(record),
		Stamp: s.clock,
	})

	s.evict()

	return result
}

// Remove deletes record from the wrapped store and forgets its recency.
func (s *LRUStore[K, V]) Remove(record V) V {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.delegate.Remove(record)

	s.tracking.Remove(lruEntry[K]{Key: s.keyOf(record)})

	return result
}

// Find looks key up in the wrapped store without touching its recency.
func (s *LRUStore[K, V]) Find(key K) (V, bool) {
	return s.delegate.Find(key)
}

// Select runs q against the wrapped store.
func (s *LRUStore[K, V]) Select(ctx context.Context, sink Sink[V], q Query[V]) Sink[V] {
	return s.delegate.Select(ctx, sink, q)
}

// RemoveAll clears the wrapped store and every recency entry.
// Like MapStore.RemoveAll it ignores q.
func (s *LRUStore[K, V]) RemoveAll(q Query[V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delegate.RemoveAll(q)
	s.tracking.RemoveAll(Query[lruEntry[K]]{})
}

// Size returns the size of the wrapped store.
func (s *LRUStore[K, V]) Size() int {
	return s.delegate.Size()
}

// evict removes every record older than the maxSize most recent ones.
// The caller must hold s.mu.
func (s *LRUStore[K, V]) evict() {
	var evicted int

	s.tracking.Select(context.Background(), FuncSink[lruEntry[K]]{
		PutFunc: func(entry lruEntry[K], _ *FlowControl) {
			s.tracking.Remove(entry)

			if record, ok := s.delegate.Find(entry.Key); ok {
				s.delegate.Remove(record)
			}

			evicted++
		},
	}, Query[lruEntry[K]]{
		Order: Reverse(OrderBy(func(e lruEntry[K]) uint64 { return e.Stamp })),
		Skip:  s.maxSize,
	})

	if evicted > 0 {
		s.metrics.recordEvictions(evicted)
		s.logger.Debug("store: evicted least recently put records",
			"evicted", evicted,
			"max_size", s.maxSize,
		)
	}
}
