//go:build !linux && !windows

package affinity

import (
	"errors"
	"runtime"
)

// availablePlatform approximates the available set from the CPU count; there
// is no portable affinity query outside Linux and Windows.
func availablePlatform() (uint64, error) {
	n := runtime.NumCPU()
	if n > 64 {
		n = 64
	}
	if n == 64 {
		return ^uint64(0), nil
	}
	return (uint64(1) << uint(n)) - 1, nil
}

// pinPlatform reports that thread pinning is unsupported; callers treat the
// pin as best-effort and continue unpinned.
func pinPlatform(mask uint64) error {
	return errors.New("affinity: not supported on this platform")
}
