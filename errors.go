package parallel

import "errors"

// Sentinel errors for dispatcher operations. Use errors.Is to check the error type:
//
//	_, err := parallel.NewDispatcher(proc, parallel.WithSpareThreads(64))
//	if errors.Is(err, parallel.ErrNoProcessors) { ... }
//
//	err = d.Run(ctx)
//	if errors.Is(err, parallel.ErrProtocolTimeout) { ... }
//	if errors.Is(err, parallel.ErrForcedTermination) { ... }
var (
	// ErrNoProcessors is returned when planning leaves no logical processor
	// for any worker (spare threads >= available processors, or the available
	// set could not be read).
	ErrNoProcessors = errors.New("no usable processors")

	// ErrNotPlanned is returned by Run when the dispatcher has no affinity
	// plan, i.e. it was not built via NewDispatcher.
	ErrNotPlanned = errors.New("affinity plan missing")

	// ErrProtocolTimeout is returned when a bounded wait in the ready/assign
	// handshake exceeds its budget: the dispatcher saw no ready worker, or a
	// worker saw no assignment, within the wait timeout. It indicates a stuck
	// or dead peer and is never retried.
	ErrProtocolTimeout = errors.New("handshake wait timed out")

	// ErrForcedTermination is returned when shutdown could not join every
	// worker within the wait timeout and abandoned the stragglers. Resources
	// held by an abandoned worker are not reclaimed.
	ErrForcedTermination = errors.New("worker did not terminate")
)
