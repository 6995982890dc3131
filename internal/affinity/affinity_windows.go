//go:build windows

package affinity

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// availablePlatform reads the process affinity mask via
// GetProcessAffinityMask.
func availablePlatform() (uint64, error) {
	var process, system uintptr
	if err := windows.GetProcessAffinityMask(windows.CurrentProcess(), &process, &system); err != nil {
		return 0, fmt.Errorf("affinity: GetProcessAffinityMask: %w", err)
	}
	return uint64(process), nil
}

// pinPlatform pins the calling thread via SetThreadAffinityMask, which is
// not wrapped by x/sys/windows and is called through kernel32 directly.
func pinPlatform(mask uint64) error {
	ret, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), uintptr(mask))
	if ret == 0 {
		return fmt.Errorf("affinity: SetThreadAffinityMask(%#x): %w", mask, err)
	}
	return nil
}
