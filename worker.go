package parallel

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/pbatard/base-parallel/internal/affinity"
)

// slot is the per-worker record owned by the dispatcher. The worker only
// touches its own slot: it loads the item, consumes the assign signal, and
// writes err before closing done. The item field is written by the
// dispatcher only after the worker's readiness token has been received for
// the current round, so at most one item is ever in flight per slot; the
// atomic covers the one sanctioned overlap, shutdown's sentinel overwrite.
type slot struct {
	index    int
	affinity ProcessorMask
	item     atomic.Uint32
	// assign has capacity one and carries the "item is ready" signal. The
	// dispatcher sends on it at most once per readiness token, so a dispatch
	// send never blocks; shutdown sends non-blocking so a pending signal is
	// simply reused for the sentinel.
	assign chan struct{}
	// done is closed by the worker goroutine on exit, after err is set.
	done chan struct{}
	err  error
}

func newSlot(index int, affinity ProcessorMask) *slot {
	return &slot{
		index:    index,
		affinity: affinity,
		assign:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// worker runs the request/serve loop for one slot. States: on start it pins
// itself and signals readiness; it then alternates between awaiting an
// assignment (bounded) and processing the item, until it receives the zero
// sentinel or times out.
type worker struct {
	slot      *slot
	proc      Processor
	ready     chan<- int
	wait      time.Duration
	cancelled func() bool
	log       *slog.Logger
	metrics   *metricsRecorder
}

// run is the worker goroutine body. It locks the goroutine to its OS thread
// for the lifetime of the loop so the affinity pin holds.
func (w *worker) run() {
	defer close(w.slot.done)
	defer w.metrics.Record(w.metrics.lifecycleEvent(w.slot.index, "exited"))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w.pin()
	w.metrics.Record(w.metrics.lifecycleEvent(w.slot.index, "started"))

	for {
		// Declare readiness. The fan-in channel holds one token per worker,
		// so this never blocks.
		w.ready <- w.slot.index

		select {
		case <-w.slot.assign:
		case <-time.After(w.wait):
			w.slot.err = fmt.Errorf("worker %d: no assignment within %s: %w", w.slot.index, w.wait, ErrProtocolTimeout)
			w.log.Error("assignment wait timed out", "timeout", w.wait.String())
			return
		}

		item := w.slot.item.Load()
		if item == 0 {
			w.log.Info("worker exiting")
			return
		}

		w.log.Debug("item received", "item", item)
		w.process(item)
	}
}

// pin applies the planned affinity. Failure to pin is logged, not fatal; a
// zero mask means no constraint.
func (w *worker) pin() {
	if w.slot.affinity == 0 {
		return
	}
	if err := affinity.Pin(uint64(w.slot.affinity)); err != nil {
		w.log.Warn("could not pin worker", "affinity", w.slot.affinity.String(), "error", err)
		return
	}
	w.log.Debug("worker pinned", "affinity", w.slot.affinity.String())
}

// process invokes the injected processor for one item, recovering panics so
// a faulty processor cannot take down the pool.
func (w *worker) process(item uint32) {
	start := time.Now()
	result := w.invoke(item)
	if result.Elapsed == 0 {
		result.Elapsed = time.Since(start)
	}

	if result.Status == StatusFail && result.Err != nil {
		w.log.Error("processing failed", "item", item, "error", result.Err)
	}
	w.metrics.Record(w.metrics.processEvent(w.slot.index, item, result))
}

// invoke is run from process() with a recover so a panicking processor is
// reported as a failed item.
func (w *worker) invoke(item uint32) (result ProcessResult) {
	defer func() {
		if v := recover(); v != nil {
			result = Fail(panicToError(v))
		}
	}()
	return w.proc.Process(item, w.cancelled)
}

// panicToError converts a recovered panic value to an error for logging.
func panicToError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
