package parallel

import "time"

// ProcessStatus is the result of a Process call. It tells the worker whether
// the item was processed, failed, or was cut short by cancellation.
type ProcessStatus string

const (
	// StatusDone means the item was processed successfully.
	StatusDone ProcessStatus = "done"
	// StatusFail means the processor encountered an error. Err is set for logging.
	StatusFail ProcessStatus = "fail"
	// StatusCancelled means the processor observed the cancellation capability
	// and aborted early. Not a failure: the worker continues as usual.
	StatusCancelled ProcessStatus = "cancelled"
)

// ProcessResult is returned by Processor.Process. Regardless of status the
// worker loops back to readiness; the result only feeds logs and metrics.
type ProcessResult struct {
	// Status indicates the outcome of this Process invocation.
	Status ProcessStatus
	// Err is set when Status is StatusFail; it is logged by the worker. Optional.
	Err error
	// Elapsed is optionally set by the processor to report how long the item
	// took; when zero the worker measures the call itself.
	Elapsed time.Duration
}

// Done returns a ProcessResult for an item that was processed successfully.
func Done() ProcessResult {
	return ProcessResult{Status: StatusDone}
}

// Fail returns a ProcessResult for an item the processor could not handle.
// err is stored for logging.
func Fail(err error) ProcessResult {
	return ProcessResult{Status: StatusFail, Err: err}
}

// Cancelled returns a ProcessResult for an item abandoned because the
// cancellation capability reported true.
func Cancelled() ProcessResult {
	return ProcessResult{Status: StatusCancelled}
}

// Processor is the interface for the work performed per dispatched item. The
// engine is agnostic to what Process computes: item is the opaque work unit
// (the round number, never zero), and cancelled is a read-only capability the
// processor should poll at a bounded interval so it can abort early.
// Process is called from a worker goroutine locked to an OS thread.
type Processor interface {
	// Process performs one unit of work. Return Done, Fail, or Cancelled; the
	// worker then signals readiness for the next item.
	Process(item uint32, cancelled func() bool) ProcessResult
}

// ProcessorFunc adapts an ordinary function to the Processor interface.
type ProcessorFunc func(item uint32, cancelled func() bool) ProcessResult

// Process calls f.
func (f ProcessorFunc) Process(item uint32, cancelled func() bool) ProcessResult {
	return f(item, cancelled)
}
