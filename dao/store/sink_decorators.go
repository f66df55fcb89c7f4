package store

import (
	"fmt"
	"slices"
)

type (
	// predicateSink forwards only the records its predicate matches.
	predicateSink[V any] struct {
		inner     Sink[V]
		predicate Predicate[V]
	}

	// orderSink buffers every record and replays them sorted on EOF.
	// Global ordering needs the whole filtered set before the first record
	// can be positioned, so nothing reaches the inner sink before EOF.
	orderSink[V any] struct {
		inner      Sink[V]
		comparator Comparator[V]
		buffer     []V
		fc         *FlowControl
	}

	// skipSink drops the first n records that reach it.
	skipSink[V any] struct {
		inner   Sink[V]
		skip    int64
		skipped int64
	}

	// limitSink forwards at most limit records, then stops the query.
	limitSink[V any] struct {
		inner     Sink[V]
		limit     int64
		forwarded int64
	}
)

// decorateSink wraps terminal with the stages q asks for.
//
// Records flow store -> predicate -> order -> skip -> limit -> terminal:
// unmatched records never reach ordering or paging, and skip/limit always
// page over the final (sorted, when ordered) sequence. Stages q does not use
// are left out, so an unordered query stays fully streaming.
func decorateSink[V any](terminal Sink[V], q Query[V]) Sink[V] {
	sink := terminal

	if q.Limit > 0 {
		sink = &limitSink[V]{inner: sink, limit: q.Limit}
	}

	if q.Skip > 0 {
		sink = &skipSink[V]{inner: sink, skip: q.Skip}
	}

	if q.Order != nil {
		sink = &orderSink[V]{inner: sink, comparator: q.Order}
	}

	if q.Where != nil {
		sink = &predicateSink[V]{inner: sink, predicate: q.Where}
	}

	return sink
}

// deliver hands record to sink, turning a panic raised by the sink (or by a
// predicate it evaluates) into a flow control failure.
func deliver[V any](sink Sink[V], record V, fc *FlowControl) {
	defer func() {
		if r := recover(); r != nil {
			fc.Fail(fmt.Errorf("%w: %v", ErrSinkPanic, r))
		}
	}()

	sink.Put(record, fc)
}

// finalize ends the query with Error when fc has failed and with EOF otherwise.
// A panic raised while finalizing is recorded on fc as an ErrSinkPanic
// failure; no second terminal call is made.
func finalize[V any](sink Sink[V], fc *FlowControl) {
	defer func() {
		if r := recover(); r != nil {
			fc.Fail(fmt.Errorf("%w: %v", ErrSinkPanic, r))
		}
	}()

	if err := fc.Err(); err != nil {
		sink.Error(err)
		return
	}

	sink.EOF()
}

// Put forwards record when it matches.
func (s *predicateSink[V]) Put(record V, fc *FlowControl) {
	if s.predicate(record) {
		s.inner.Put(record, fc)
	}
}

// EOF forwards EOF.
func (s *predicateSink[V]) EOF() {
	s.inner.EOF()
}

// Error forwards err.
func (s *predicateSink[V]) Error(err error) {
	s.inner.Error(err)
}

// Put buffers record.
func (s *orderSink[V]) Put(record V, fc *FlowControl) {
	s.fc = fc
	s.buffer = append(s.buffer, record)
}

// EOF sorts the buffer and replays it into the inner sink, then finalizes it.
// Replay stops as soon as the flow control is done; a failure raised during
// sorting or replay finalizes the inner sink with Error instead of EOF.
func (s *orderSink[V]) EOF() {
	buffer := s.buffer
	s.buffer = nil

	if err := s.sort(buffer); err != nil {
		s.inner.Error(err)
		return
	}

	fc := s.fc
	if fc == nil {
		// Nothing was buffered, so there is nothing to replay.
		s.inner.EOF()
		return
	}

	for _, record := range buffer {
		if fc.Done() {
			break
		}

		deliver(s.inner, record, fc)
	}

	if err := fc.Err(); err != nil {
		s.inner.Error(err)
		return
	}

	s.inner.EOF()
}

// Error discards the buffer without replaying it and forwards err.
func (s *orderSink[V]) Error(err error) {
	s.buffer = nil
	s.inner.Error(err)
}

// sort stable-sorts buffer, reporting a comparator panic as an error.
func (s *orderSink[V]) sort(buffer []V) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrComparatorPanic, r)
		}
	}()

	slices.SortStableFunc(buffer, s.comparator)

	return nil
}

// Put drops the record while still skipping, forwards it afterwards.
func (s *skipSink[V]) Put(record V, fc *FlowControl) {
	if s.skipped < s.skip {
		s.skipped++
		return
	}

	s.inner.Put(record, fc)
}

// EOF forwards EOF.
func (s *skipSink[V]) EOF() {
	s.inner.EOF()
}

// Error forwards err.
func (s *skipSink[V]) Error(err error) {
	s.inner.Error(err)
}

// Put forwards record until the limit is reached and stops the query once it is.
func (s *limitSink[V]) Put(record V, fc *FlowControl) {
	if s.forwarded >= s.limit {
		fc.Stop()
		return
	}

	s.forwarded++
	s.inner.Put(record, fc)

	if s.forwarded >= s.limit {
		fc.Stop()
	}
}

// EOF forwards EOF.
func (s *limitSink[V]) EOF() {
	s.inner.EOF()
}

// Error forwards err.
func (s *limitSink[V]) Error(err error) {
	s.inner.Error(err)
}
