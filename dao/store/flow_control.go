package store

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// FlowControl is the per-query cooperative cancellation signal shared between
// the driving loop and every sink of the decorator chain.
//
// Both states are one-way: once stopped a FlowControl stays stopped, and once
// an error is recorded it is never replaced or cleared (first writer wins).
// Neither state interrupts a sink that is already running; the driving loop
// only observes them before delivering the next record.
type FlowControl struct {
	stopped atomic.Bool

	// id is assigned on the first ID call.
	idOnce sync.Once
	id     string

	// errOnce guards the first-writer-wins error assignment.
	errOnce sync.Once
	err     atomic.Pointer[error]
}

// NewFlowControl returns a fresh FlowControl for a single query execution.
func NewFlowControl() *FlowControl {
	return &FlowControl{}
}

// ID returns the identifier of the query this FlowControl belongs to.
// It is only meant for correlating log lines, so it is generated on first
// use and queries that never log do not pay for it.
func (fc *FlowControl) ID() string {
	fc.idOnce.Do(func() {
		fc.id = uuid.NewString()
	})

	return fc.id
}

// Stop asks the driving loop not to deliver any more records.
// Stopping is not an error: the sink is still finalized with EOF.
func (fc *FlowControl) Stop() {
	fc.stopped.Store(true)
}

// IsStopped reports whether Stop has been called.
func (fc *FlowControl) IsStopped() bool {
	return fc.stopped.Load()
}

// Fail records err as the query's failure and reports whether it was the
// first one recorded. Nil errors are ignored. Later calls never overwrite
// the first error.
func (fc *FlowControl) Fail(err error) bool {
	if err == nil {
		return false
	}

	var won bool

	fc.errOnce.Do(func() {
		fc.err.Store(&err)
		won = true
	})

	return won
}

// Err returns the first error recorded by Fail, or nil.
func (fc *FlowControl) Err() error {
	if p := fc.err.Load(); p != nil {
		return *p
	}

	return nil
}

// Done reports whether the query must not deliver further records,
// either because it was stopped or because it failed.
func (fc *FlowControl) Done() bool {
	return fc.IsStopped() || fc.err.Load() != nil
}
