package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MapStore is a sharded, in-memory Store.
//
// It is safe for concurrent use. Put, Remove and Find lock only the shard
// owning the key, so they are atomic per key. Select copies one shard at a
// time under its read lock and delivers the copy without holding any lock:
// writes landing in shards the query has not reached yet may be observed,
// writes to shards it already copied are not, and a record removed after its
// shard was copied may still be delivered. In other words a query is weakly
// consistent across the store and never a point-in-time snapshot.
//
// The shard table is created lazily on first use. RemoveAll drops the table
// and the next operation lazily creates a fresh, empty one.
type MapStore[K comparable, V any] struct {
	keyOf      KeyFunc[K, V]
	hashFn     shardHashFunc[K]
	shardCount int
	logger     *slog.Logger
	metrics    *Metrics

	// table is nil until first use and after RemoveAll.
	table atomic.Pointer[shardTable[K, V]]
	// initMu serializes lazy table creation.
	initMu sync.Mutex
}

// testDataFactoryBarrier is a test hook invoked the moment a goroutine enters
// the table-initialization critical section. It lets tests hold concurrent
// first-touch callers inside the race window (nil in non-test builds).
//
//nolint:gochecknoglobals // this is a test hook.
var (
	testDataFactoryBarrier   func()
	testDataFactoryBarrierMu sync.RWMutex
)

// Compile-time interface assertion.
var _ Store[string, any] = (*MapStore[string, any])(nil)

// NewMapStore creates an empty MapStore keyed by keyOf.
//
// A nil keyOf is a programming error and panics immediately rather than
// during the first operation. A nil cfg selects the defaults.
func NewMapStore[K comparable, V any](keyOf KeyFunc[K, V], cfg *MapConfig) *MapStore[K, V] {
	if keyOf == nil {
		panic("store: NewMapStore requires a non-nil KeyFunc")
	}

	return &MapStore[K, V]{
		keyOf:      keyOf,
		hashFn:     newShardHashFunc[K](),
		shardCount: cfg.GetShardCount(),
		logger:     cfg.GetLogger(),
		metrics:    cfg.GetMetrics(),
	}
}

// Put stores record under its key, replacing any previous record with that key.
func (s *MapStore[K, V]) Put(record V) V {
	key := s.keyOf(record)
	shard := s.data().shardFor(s.hashFn, key)

	shard.mu.Lock()
	shard.records[key] = record
	shard.mu.Unlock()

	s.metrics.recordPut()

	return record
}

// Remove deletes the record stored under record's key. It is not an error if
// the key does not exist.
func (s *MapStore[K, V]) Remove(record V) V {
	key := s.keyOf(record)
	shard := s.data().shardFor(s.hashFn, key)

	shard.mu.Lock()
	delete(shard.records, key)
	shard.mu.Unlock()

	s.metrics.recordRemove()

	return record
}

// Find returns the record stored under key and whether it exists.
func (s *MapStore[K, V]) Find(key K) (V, bool) {
	shard := s.data().shardFor(s.hashFn, key)

	shard.mu.RLock()
	record, ok := shard.records[key]
	shard.mu.RUnlock()

	s.metrics.recordFind(ok)

	return record, ok
}

// RemoveAll atomically replaces the store's contents with an empty store.
//
// Surprise: q is NOT applied. Whatever predicate, order, skip or limit it
// carries, every record is removed. Callers that need a selective delete
// must Select the records and Remove them one by one. A non-empty q is
// logged as a warning so the discrepancy shows up in diagnostics.
func (s *MapStore[K, V]) RemoveAll(q Query[V]) {
	if !q.IsZero() {
		s.logger.Warn("store: RemoveAll ignores its query and clears every record",
			"skip", q.Skip,
			"limit", q.Limit,
			"has_predicate", q.Where != nil,
			"has_order", q.Order != nil,
		)
	}

	s.table.Store(nil)
	s.metrics.recordClear()
}

// Size returns the number of records currently stored.
func (s *MapStore[K, V]) Size() int {
	return s.data().size()
}

// Select pushes the records matching q into sink and finalizes it.
//
// A nil sink is replaced by a fresh *ListSink[V], which is returned so the
// caller can read the results. The query stops before the next record as
// soon as its FlowControl is stopped or failed, or ctx is done; a done ctx
// counts as a failure carrying ctx.Err(). A panic raised while a record is
// being consumed is recovered and reported as an ErrSinkPanic failure.
//
// Exactly one of EOF or Error reaches sink, and never any record after it.
// A panic raised by that terminal call is recovered too. The sink has
// already been finalized by then, so it is only counted and logged as a
// failed query.
func (s *MapStore[K, V]) Select(ctx context.Context, sink Sink[V], q Query[V]) Sink[V] {
	if sink == nil {
		sink = NewListSink[V]()
	}

	var (
		head    = decorateSink(sink, q)
		fc      = NewFlowControl()
		started = time.Now()
		scanned = s.drive(ctx, head, fc)
	)

	finalize(head, fc)

	// The order stage may still fail while replaying on EOF, so read the
	// outcome only after finalization.
	err := fc.Err()
	s.metrics.recordSelect(scanned, err != nil, time.Since(started))

	if err != nil {
		s.logger.Debug("store: query failed",
			"query_id", fc.ID(),
			"scanned", scanned,
			"error", err,
		)
	}

	return sink
}

// drive feeds every record of the store into head until the flow control is
// done or ctx is cancelled. It returns how many records were pushed.
func (s *MapStore[K, V]) drive(ctx context.Context, head Sink[V], fc *FlowControl) int64 {
	var (
		table   = s.data()
		buffer  []V
		scanned int64
	)

	for _, shard := range table.shards {
		if halted(ctx, fc) {
			return scanned
		}

		buffer = shard.appendRecords(buffer[:0])

		for _, record := range buffer {
			if halted(ctx, fc) {
				return scanned
			}

			deliver(head, record, fc)
			scanned++
		}

		// Drop references so delivered records can be collected early.
		clear(buffer)
	}

	return scanned
}

// halted reports whether the driving loop must stop, folding a done ctx
// into the flow control as a failure.
func halted(ctx context.Context, fc *FlowControl) bool {
	if fc.Done() {
		return true
	}

	if err := ctx.Err(); err != nil {
		fc.Fail(err)
		return true
	}

	return false
}

// data returns the shard table, creating it on first use.
func (s *MapStore[K, V]) data() *shardTable[K, V] {
	if table := s.table.Load(); table != nil {
		return table
	}

	return s.dataFactory()
}

// dataFactory creates the shard table exactly once per empty period:
// concurrent first-touch callers serialize on initMu and all but the first
// find the table already published.
func (s *MapStore[K, V]) dataFactory() *shardTable[K, V] {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if table := s.table.Load(); table != nil {
		return table
	}

	// Test hook: production code sees nil and skips this entirely.
	testDataFactoryBarrierMu.RLock()

	barrier := testDataFactoryBarrier

	testDataFactoryBarrierMu.RUnlock()

	if barrier != nil {
		barrier()
	}

	table := newShardTable[K, V](s.shardCount)
	s.table.Store(table)

	return table
}
