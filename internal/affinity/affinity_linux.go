//go:build linux

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// availablePlatform reads the process affinity mask via sched_getaffinity.
func availablePlatform() (uint64, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0, fmt.Errorf("affinity: sched_getaffinity: %w", err)
	}
	var mask uint64
	for i := 0; i < 64; i++ {
		if set.IsSet(i) {
			mask |= 1 << uint(i)
		}
	}
	return mask, nil
}

// pinPlatform pins the calling thread via sched_setaffinity (pid 0 means the
// calling thread, not the process).
func pinPlatform(mask uint64) error {
	var set unix.CPUSet
	for i := 0; i < 64; i++ {
		if mask&(1<<uint(i)) != 0 {
			set.Set(i)
		}
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity(%#x): %w", mask, err)
	}
	return nil
}
