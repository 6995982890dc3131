package parallel_test

import (
	"testing"

	parallel "github.com/pbatard/base-parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanAffinities_WhenFourProcessorsNoSpare_ShouldAssignDistinctSingletons(t *testing.T) {
	t.Parallel()
	// Arrange
	available := parallel.ProcessorMask(0x0f)

	// Act
	n, plan, err := parallel.PlanAffinities(available, 0)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Len(t, plan, 4)
	assert.Equal(t, parallel.ProcessorMask(0x01), plan[0])
	assert.Equal(t, parallel.ProcessorMask(0x02), plan[1])
	assert.Equal(t, parallel.ProcessorMask(0x04), plan[2])
	assert.Equal(t, parallel.ProcessorMask(0x08), plan[3])
}

func TestPlanAffinities_WhenSparseMask_ShouldPeelLowestBitsFirst(t *testing.T) {
	t.Parallel()
	// Arrange: processors 1, 4 and 6 available
	available := parallel.ProcessorMask(0x52)

	// Act
	n, plan, err := parallel.PlanAffinities(available, 0)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 3, n)
	assert.Equal(t, parallel.ProcessorMask(0x02), plan[0])
	assert.Equal(t, parallel.ProcessorMask(0x10), plan[1])
	assert.Equal(t, parallel.ProcessorMask(0x40), plan[2])
}

func TestPlanAffinities_WhenSpareConfigured_ShouldReduceWorkerCount(t *testing.T) {
	t.Parallel()
	// Arrange
	available := parallel.ProcessorMask(0x0f)

	// Act & Assert: every spare below the processor count leaves count-spare workers
	for spare := 0; spare < available.Count(); spare++ {
		n, plan, err := parallel.PlanAffinities(available, spare)
		require.NoError(t, err, "spare=%d", spare)
		require.Equal(t, available.Count()-spare, n, "spare=%d", spare)
		require.Len(t, plan, n, "spare=%d", spare)
	}
}

func TestPlanAffinities_ShouldProduceDisjointSubsetOfAvailable(t *testing.T) {
	t.Parallel()
	// Arrange
	available := parallel.ProcessorMask(0xb6)

	// Act
	_, plan, err := parallel.PlanAffinities(available, 1)

	// Assert: union is a subset of available and no two workers share a bit
	require.NoError(t, err)
	var union parallel.ProcessorMask
	for i, m := range plan {
		assert.Equal(t, 1, m.Count(), "plan[%d] should be a singleton", i)
		assert.Zero(t, union&m, "plan[%d] overlaps an earlier assignment", i)
		union |= m
	}
	assert.Zero(t, union&^available)
}

func TestPlanAffinities_WhenSpareEqualsAvailable_ShouldFailWithErrNoProcessors(t *testing.T) {
	t.Parallel()
	// Arrange
	available := parallel.ProcessorMask(0x03)

	// Act
	n, plan, err := parallel.PlanAffinities(available, 2)

	// Assert
	require.ErrorIs(t, err, parallel.ErrNoProcessors)
	require.Zero(t, n)
	require.Nil(t, plan)
}

func TestPlanAffinities_WhenSpareExceedsAvailable_ShouldFailWithErrNoProcessors(t *testing.T) {
	t.Parallel()
	// Arrange
	available := parallel.ProcessorMask(0x01)

	// Act
	_, _, err := parallel.PlanAffinities(available, 8)

	// Assert
	require.ErrorIs(t, err, parallel.ErrNoProcessors)
}

func TestPlanAffinities_WhenNegativeSpare_ShouldGiveSurplusWorkersNoConstraint(t *testing.T) {
	t.Parallel()
	// Arrange: two processors, four workers
	available := parallel.ProcessorMask(0x03)

	// Act
	n, plan, err := parallel.PlanAffinities(available, -2)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 4, n)
	assert.Equal(t, parallel.ProcessorMask(0x01), plan[0])
	assert.Equal(t, parallel.ProcessorMask(0x02), plan[1])
	assert.Zero(t, plan[2])
	assert.Zero(t, plan[3])
}

func TestProcessorMask_CountAndHas(t *testing.T) {
	t.Parallel()
	// Arrange
	m := parallel.ProcessorMask(0x15)

	// Act & Assert
	assert.Equal(t, 3, m.Count())
	assert.True(t, m.Has(0))
	assert.False(t, m.Has(1))
	assert.True(t, m.Has(2))
	assert.True(t, m.Has(4))
	assert.False(t, m.Has(-1))
	assert.False(t, m.Has(64))
}

func TestProcessorMask_String_ShouldRenderHex(t *testing.T) {
	t.Parallel()
	// Arrange
	m := parallel.ProcessorMask(0x0f)

	// Act & Assert
	assert.Equal(t, "0x0f", m.String())
}

func TestDetectProcessors_ShouldReturnNonEmptyMask(t *testing.T) {
	t.Parallel()
	// Act
	mask, err := parallel.DetectProcessors()

	// Assert
	require.NoError(t, err)
	require.NotZero(t, mask)
	require.GreaterOrEqual(t, mask.Count(), 1)
}
