package parallel_test

import (
	"errors"
	"testing"

	parallel "github.com/pbatard/base-parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDone_ShouldReturnDoneStatusWithoutError(t *testing.T) {
	t.Parallel()
	// Arrange
	// Act
	r := parallel.Done()

	// Assert
	assert.Equal(t, parallel.StatusDone, r.Status)
	assert.NoError(t, r.Err)
	assert.Zero(t, r.Elapsed)
}

func TestFail_ShouldCarryError(t *testing.T) {
	t.Parallel()
	// Arrange
	errBoom := errors.New("boom")

	// Act
	r := parallel.Fail(errBoom)

	// Assert
	assert.Equal(t, parallel.StatusFail, r.Status)
	assert.Same(t, errBoom, r.Err)
}

func TestCancelled_ShouldReturnCancelledStatus(t *testing.T) {
	t.Parallel()
	// Arrange
	// Act
	r := parallel.Cancelled()

	// Assert
	assert.Equal(t, parallel.StatusCancelled, r.Status)
	assert.NoError(t, r.Err)
}

func TestProcessorFunc_ShouldDelegateToFunction(t *testing.T) {
	t.Parallel()
	// Arrange
	var gotItem uint32
	var gotCancelled bool
	f := parallel.ProcessorFunc(func(item uint32, cancelled func() bool) parallel.ProcessResult {
		gotItem = item
		gotCancelled = cancelled()
		return parallel.Done()
	})

	// Act
	r := f.Process(42, func() bool { return true })

	// Assert
	require.Equal(t, parallel.StatusDone, r.Status)
	assert.Equal(t, uint32(42), gotItem)
	assert.True(t, gotCancelled)
}
