package store

import "cmp"

type (
	// Predicate reports whether a record matches a query.
	// It must not mutate the store it is evaluated against.
	Predicate[V any] func(record V) bool

	// Comparator orders two records: negative when a sorts before b,
	// zero when they are equivalent, positive otherwise.
	// It must define a total order for the duration of a single query.
	Comparator[V any] func(a, b V) int

	// Query describes which records a Select delivers and in what order.
	// The zero value selects every record in store iteration order.
	Query[V any] struct {
		// Where keeps only the records it returns true for. Nil matches all.
		Where Predicate[V]

		// Order sorts the matching records. Nil keeps store iteration order,
		// which is unspecified, and keeps the pipeline fully streaming.
		Order Comparator[V]

		// Skip drops the first Skip matching (and ordered) records; <= 0 skips none.
		Skip int64

		// Limit caps how many records are delivered; <= 0 means "no limit".
		Limit int64
	}
)

// IsZero reports whether q selects everything with no ordering or paging.
func (q Query[V]) IsZero() bool {
	return q.Where == nil && q.Order == nil && q.Skip <= 0 && q.Limit <= 0
}

// OrderBy returns a Comparator that sorts records ascending by field.
func OrderBy[V any, F cmp.Ordered](field func(V) F) Comparator[V] {
	return func(a, b V) int {
		return cmp.Compare(field(a), field(b))
	}
}

// Reverse returns a Comparator that inverts c.
func Reverse[V any](c Comparator[V]) Comparator[V] {
	return func(a, b V) int {
		return c(b, a)
	}
}
