package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFlowControl_Initial verifies that a fresh FlowControl is neither stopped
// nor failed and carries a non-empty ID.
func TestFlowControl_Initial(t *testing.T) {
	t.Parallel()

	fc := NewFlowControl()

	assert.False(t, fc.IsStopped())
	assert.False(t, fc.Done())
	require.NoError(t, fc.Err())
	assert.NotEmpty(t, fc.ID())
	assert.NotEqual(t, fc.ID(), NewFlowControl().ID(), "each query must get its own ID")
}

// TestFlowControl_ID_Lazy verifies that the ID is only generated when asked
// for and stays the same afterwards, including under concurrent callers.
func TestFlowControl_ID_Lazy(t *testing.T) {
	t.Parallel()

	fc := NewFlowControl()
	fc.Stop()
	fc.Fail(errors.New("failed"))

	assert.Empty(t, fc.id, "no ID before the first ID call")

	var (
		wg  sync.WaitGroup
		ids = make([]string, 8)
	)

	for i := range ids {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ids[i] = fc.ID()
		}()
	}

	wg.Wait()

	require.NotEmpty(t, ids[0])

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

// TestFlowControl_Stop verifies that Stop is one-way and does not record an error.
func TestFlowControl_Stop(t *testing.T) {
	t.Parallel()

	fc := NewFlowControl()
	fc.Stop()
	fc.Stop()

	assert.True(t, fc.IsStopped())
	assert.True(t, fc.Done())
	require.NoError(t, fc.Err(), "stopping is not a failure")
}

// TestFlowControl_Fail_FirstErrorWins validates:
//  1. the first non-nil error is kept and reported as the winner;
//  2. later errors never overwrite it;
//  3. nil errors are ignored and do not mark the query done.
func TestFlowControl_Fail_FirstErrorWins(t *testing.T) {
	t.Parallel()

	var (
		fc     = NewFlowControl()
		first  = errors.New("first")
		second = errors.New("second")
	)

	assert.False(t, fc.Fail(nil), "nil must be ignored")
	assert.False(t, fc.Done())

	assert.True(t, fc.Fail(first))
	assert.False(t, fc.Fail(second))

	require.ErrorIs(t, fc.Err(), first)
	assert.NotErrorIs(t, fc.Err(), second)
	assert.True(t, fc.Done())
	assert.False(t, fc.IsStopped(), "failing does not set the stop flag")
}

// TestFlowControl_Fail_Concurrent races many Fail calls and checks that
// exactly one wins and its error is the one reported.
func TestFlowControl_Fail_Concurrent(t *testing.T) {
	t.Parallel()

	const goroutines = 64

	var (
		fc      = NewFlowControl()
		wg      sync.WaitGroup
		winners = make(chan error, goroutines)
	)

	for i := range goroutines {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := errors.New("worker failure")
			if i%2 == 0 {
				fc.Stop()
			}

			if fc.Fail(err) {
				winners <- err
			}
		}()
	}

	wg.Wait()
	close(winners)

	var won []error
	for err := range winners {
		won = append(won, err)
	}

	require.Len(t, won, 1, "exactly one Fail call must win")
	assert.Same(t, won[0], fc.Err())
}
