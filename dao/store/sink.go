package store

type (
	// Sink is a push consumer of query results.
	//
	// Lifecycle: Put is called zero or more times, then exactly one of EOF or
	// Error. Put is never called after EOF or Error. A sink may call fc.Stop()
	// or fc.Fail() from Put to end the query early.
	Sink[V any] interface {
		// Put receives the next record of the result.
		Put(record V, fc *FlowControl)

		// EOF signals that the result is complete.
		EOF()

		// Error signals that the query failed with err. No EOF follows.
		Error(err error)
	}

	// ListSink accumulates delivered records in delivery order.
	// It is the default sink of Select.
	ListSink[V any] struct {
		records  []V
		err      error
		finished bool
	}

	// CountSink counts delivered records without retaining them.
	CountSink[V any] struct {
		count    int64
		err      error
		finished bool
	}

	// FuncSink adapts plain functions to the Sink interface.
	// Nil fields are treated as no-ops.
	FuncSink[V any] struct {
		PutFunc   func(record V, fc *FlowControl)
		EOFFunc   func()
		ErrorFunc func(err error)
	}
)

// Compile-time interface assertions.
var (
	_ Sink[any] = (*ListSink[any])(nil)
	_ Sink[any] = (*CountSink[any])(nil)
	_ Sink[any] = FuncSink[any]{}
)

// NewListSink returns an empty ListSink.
func NewListSink[V any]() *ListSink[V] {
	return &ListSink[V]{}
}

// Put appends record.
func (s *ListSink[V]) Put(record V, _ *FlowControl) {
	s.records = append(s.records, record)
}

// EOF marks the sink finished.
func (s *ListSink[V]) EOF() {
	s.finished = true
}

// Error marks the sink finished with err.
func (s *ListSink[V]) Error(err error) {
	s.err = err
	s.finished = true
}

// Records returns the accumulated records. The slice is owned by the sink.
func (s *ListSink[V]) Records() []V {
	return s.records
}

// Err returns the error the query failed with, if any.
func (s *ListSink[V]) Err() error {
	return s.err
}

// Finished reports whether EOF or Error has been called.
func (s *ListSink[V]) Finished() bool {
	return s.finished
}

// NewCountSink returns a CountSink at zero.
func NewCountSink[V any]() *CountSink[V] {
	return &CountSink[V]{}
}

// Put counts record.
func (s *CountSink[V]) Put(_ V, _ *FlowControl) {
	s.count++
}

// EOF marks the sink finished.
func (s *CountSink[V]) EOF() {
	s.finished = true
}

// Error marks the sink finished with err.
func (s *CountSink[V]) Error(err error) {
	s.err = err
	s.finished = true
}

// Count returns the number of records received.
func (s *CountSink[V]) Count() int64 {
	return s.count
}

// Err returns the error the query failed with, if any.
func (s *CountSink[V]) Err() error {
	return s.err
}

// Finished reports whether EOF or Error has been called.
func (s *CountSink[V]) Finished() bool {
	return s.finished
}

// Put calls PutFunc.
func (s FuncSink[V]) Put(record V, fc *FlowControl) {
	if s.PutFunc != nil {
		s.PutFunc(record, fc)
	}
}

// EOF calls EOFFunc.
func (s FuncSink[V]) EOF() {
	if s.EOFFunc != nil {
		s.EOFFunc()
	}
}

// Error calls ErrorFunc.
func (s FuncSink[V]) Error(err error) {
	if s.ErrorFunc != nil {
		s.ErrorFunc(err)
	}
}
