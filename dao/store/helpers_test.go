package store

import (
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// testRecord is the record type used across store tests.
type testRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// testRecordKey derives the key of a testRecord.
func testRecordKey(r testRecord) int {
	return r.ID
}

// byID orders testRecords ascending by ID.
//
//nolint:gochecknoglobals // shared test comparator.
var byID = OrderBy(func(r testRecord) int { return r.ID })

// discardLogger returns a logger that drops every record.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore creates a MapStore of testRecords with the given shard count.
func newTestStore(shardCount int) *MapStore[int, testRecord] {
	return NewMapStore(testRecordKey, &MapConfig{
		ShardCount: shardCount,
		Logger:     discardLogger(),
	})
}

// seedTestStore puts records into store.
func seedTestStore(tb testing.TB, store Store[int, testRecord], records ...testRecord) {
	tb.Helper()

	for _, record := range records {
		store.Put(record)
	}

	require.Equal(tb, len(records), store.Size(), "seed records must have distinct keys")
}

// seedSequential puts records with IDs 1..count.
func seedSequential(tb testing.TB, store Store[int, testRecord], count int) {
	tb.Helper()

	for i := 1; i <= count; i++ {
		store.Put(testRecord{ID: i, Name: "record"})
	}
}

// recordIDs returns the IDs of records in order.
func recordIDs(records []testRecord) []int {
	ids := make([]int, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}

	return ids
}

// sortedIDs returns the IDs of records sorted ascending.
func sortedIDs(records []testRecord) []int {
	ids := recordIDs(records)
	slices.Sort(ids)

	return ids
}

// selectAll runs q against store into a fresh ListSink and returns it.
func selectAll(tb testing.TB, store Store[int, testRecord], q Query[testRecord]) *ListSink[testRecord] {
	tb.Helper()

	sink := NewListSink[testRecord]()
	store.Select(tb.Context(), sink, q)

	require.True(tb, sink.Finished(), "Select must finalize the sink")

	return sink
}

// scriptedSink records the full call sequence it receives.
type scriptedSink struct {
	puts   []testRecord
	eofs   int
	errs   []error
	onPut  func(record testRecord, fc *FlowControl)
	onEOF  func()
	events []string
}

func (s *scriptedSink) Put(record testRecord, fc *FlowControl) {
	s.puts = append(s.puts, record)
	s.events = append(s.events, "put")

	if s.onPut != nil {
		s.onPut(record, fc)
	}
}

func (s *scriptedSink) EOF() {
	s.eofs++
	s.events = append(s.events, "eof")

	if s.onEOF != nil {
		s.onEOF()
	}
}

func (s *scriptedSink) Error(err error) {
	s.errs = append(s.errs, err)
	s.events = append(s.events, "error")
}

// terminalCalls returns how many of EOF and Error the sink received.
func (s *scriptedSink) terminalCalls() int {
	return s.eofs + len(s.errs)
}
