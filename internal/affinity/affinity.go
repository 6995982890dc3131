// Package affinity is the platform-neutral API for querying the logical
// processors available to the process and pinning the calling OS thread to a
// subset of them. Platform implementations live in separate files
// (affinity_linux.go, affinity_windows.go, affinity_stub.go) guarded by
// build tags.
package affinity

// Available returns a bit-set of the logical processors the process may run
// on. Bit i set means logical CPU i is available. Processors beyond the
// first 64 are ignored.
func Available() (uint64, error) {
	return availablePlatform()
}

// Pin restricts the calling OS thread to the processors in mask. The caller
// must have locked the goroutine to its OS thread (runtime.LockOSThread)
// for the pin to be meaningful. A zero mask is rejected by the platform.
func Pin(mask uint64) error {
	return pinPlatform(mask)
}
