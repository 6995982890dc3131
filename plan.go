package parallel

import (
	"fmt"
	"math/bits"

	"github.com/pbatard/base-parallel/internal/affinity"
)

// ProcessorMask is a bit-set of logical processors. Bit i set means logical
// CPU i is part of the set. Only the first 64 logical processors are
// representable; larger systems are truncated to their first 64 CPUs.
type ProcessorMask uint64

// Count returns the number of processors in the set.
func (m ProcessorMask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// Has reports whether logical CPU i is in the set.
func (m ProcessorMask) Has(i int) bool {
	if i < 0 || i > 63 {
		return false
	}
	return m&(1<<uint(i)) != 0
}

// String renders the mask as a hex bit-set, e.g. "0x0f".
func (m ProcessorMask) String() string {
	return fmt.Sprintf("%#04x", uint64(m))
}

// DetectProcessors reads the set of logical processors available to the
// calling process. The mask is meant to be obtained once at startup; it is
// not re-read during a run.
func DetectProcessors() (ProcessorMask, error) {
	mask, err := affinity.Available()
	if err != nil {
		return 0, fmt.Errorf("detect processors: %w", err)
	}
	return ProcessorMask(mask), nil
}

// PlanAffinities partitions the available processor set 1:1 across worker
// slots. The worker count is the size of the set minus spare; if that is not
// at least one, PlanAffinities fails with ErrNoProcessors. Each worker gets a
// singleton mask peeled from the lowest set bit upward, so index 0 is bound
// to the lowest-numbered processor. Workers beyond the set size (reachable
// only with a negative spare) get the zero mask, meaning no constraint.
//
// The function is pure: it reads nothing and mutates nothing outside its
// return values.
func PlanAffinities(available ProcessorMask, spare int) (int, []ProcessorMask, error) {
	n := available.Count() - spare
	if n <= 0 {
		return 0, nil, fmt.Errorf("%d processors available, %d spare: %w", available.Count(), spare, ErrNoProcessors)
	}

	plan := make([]ProcessorMask, n)
	remaining := uint64(available)
	for i := 0; i < n && remaining != 0; i++ {
		low := remaining & -remaining
		plan[i] = ProcessorMask(low)
		remaining ^= low
	}
	return n, plan, nil
}
