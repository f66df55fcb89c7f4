package store

import "context"

type (
	// KeyFunc derives the unique key of a record.
	// It must be pure and return the same key for the lifetime of the record.
	KeyFunc[K comparable, V any] func(record V) K

	// Store defines the operations of a record store.
	//
	// General notes:
	//
	//   - Keys are derived from records by the store's KeyFunc; callers never
	//     pass keys on writes.
	//   - There is at most one live record per key (last write wins).
	//   - All methods are safe for concurrent use.
	//
	// Error semantics:
	//
	//   - Lookups and removals of missing keys are not errors.
	//   - Query-time failures never cross the Select boundary: they are reported
	//     to the sink through its Error method.
	Store[K comparable, V any] interface {
		// Put stores record under its key, replacing any previous record with
		// the same key, and returns record unchanged.
		Put(record V) V

		// Remove deletes the record stored under record's key, if any, and
		// returns record unchanged. Removing a missing key is a no-op.
		Remove(record V) V

		// Find returns the record stored under key and whether it exists.
		Find(key K) (V, bool)

		// Select pushes the records matching q into sink and returns sink.
		// A nil sink is replaced with a fresh *ListSink[V], which is returned.
		// Exactly one of sink.EOF or sink.Error is called before Select returns.
		Select(ctx context.Context, sink Sink[V], q Query[V]) Sink[V]

		// RemoveAll removes every record from the store.
		//
		// The query is accepted for signature compatibility with Select but is
		// not applied: the store is always cleared completely, even when q's
		// predicate matches nothing.
		RemoveAll(q Query[V])

		// Size returns the number of records currently stored.
		Size() int
	}
)
