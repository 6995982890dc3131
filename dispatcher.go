package parallel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Dispatcher owns the worker pool for one run. NewDispatcher computes the
// affinity plan up front (fail fast); Run spawns the workers, feeds each
// ready worker exactly one item per round, and always drives the pool through
// shutdown, whatever the exit path. A Dispatcher is single-use.
type Dispatcher struct {
	proc    Processor
	cfg     config
	log     *slog.Logger
	n       int
	plan    []ProcessorMask
	started atomic.Bool
	metrics metricsRecorder
}

// NewDispatcher plans the run: it reads the available processor set (unless
// WithProcessors overrides it), computes the worker count and the per-worker
// affinity masks, and returns a dispatcher ready to Run. Fails with
// ErrNoProcessors when planning leaves no worker.
func NewDispatcher(proc Processor, opts ...Option) (*Dispatcher, error) {
	if proc == nil {
		return nil, errors.New("parallel: nil processor")
	}
	cfg := applyOptions(opts...)

	available := cfg.processors
	if available == 0 {
		detected, err := DetectProcessors()
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrNoProcessors)
		}
		available = detected
	}

	n, plan, err := PlanAffinities(available, cfg.spareThreads)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		proc: proc,
		cfg:  cfg,
		log:  cfg.log,
		n:    n,
		plan: plan,
	}, nil
}

// WorkerCount returns the fixed number of workers for this run.
func (d *Dispatcher) WorkerCount() int {
	return d.n
}

// Plan returns a copy of the per-worker affinity masks, indexed by slot.
func (d *Dispatcher) Plan() []ProcessorMask {
	plan := make([]ProcessorMask, len(d.plan))
	copy(plan, d.plan)
	return plan
}

// Metrics returns a channel that receives metric events for this run. The
// channel is created on first call with the given bufferSize and closed when
// Run returns. Consumers must drain it or workers will block recording.
func (d *Dispatcher) Metrics(bufferSize int) <-chan MetricEvent {
	return d.metrics.Metrics(bufferSize)
}

// LastMetric returns the most recent metric event of the run.
func (d *Dispatcher) LastMetric() (MetricEvent, bool) {
	return d.metrics.LastMetric()
}

// Run executes the full lifecycle: spawn workers, dispatch rounds until the
// budget is exhausted or ctx is cancelled, then shut the pool down. ctx
// cancellation is the cooperative stop signal: it ends dispatch cleanly and
// is handed to processors as a read-only capability, but it never preempts an
// in-flight Process call.
//
// Run returns nil only if every worker was spawned, dispatch ended by budget
// or by cancellation alone, and every worker exited within the shutdown
// bound. Shutdown executes on every path.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.n == 0 || len(d.plan) == 0 {
		return ErrNotPlanned
	}
	if !d.started.CompareAndSwap(false, true) {
		return errors.New("parallel: dispatcher already run")
	}

	cancelled := func() bool { return ctx.Err() != nil }

	// One token per worker, so readiness sends never block.
	ready := make(chan int, d.n)
	slots := make([]*slot, d.n)

	d.log.Info("creating workers", "count", d.n)
	for i := range slots {
		slots[i] = newSlot(i, d.plan[i])
		w := &worker{
			slot:      slots[i],
			proc:      d.proc,
			ready:     ready,
			wait:      d.cfg.waitTimeout,
			cancelled: cancelled,
			log:       d.log.With("worker", i),
			metrics:   &d.metrics,
		}
		go w.run()
	}

	dispatchErr := d.dispatch(ctx, ready, slots)
	shutdownErr := d.shutdown(slots)
	d.metrics.CloseChannel()
	return errors.Join(dispatchErr, shutdownErr)
}

// dispatch feeds one round at a time to whichever worker becomes ready
// first. The tie-break among simultaneously ready workers is the runtime's
// channel selection order: non-deterministic, and deliberately not
// round-robin. Returns nil on budget exhaustion or cancellation; a wait
// exceeding its budget is ErrProtocolTimeout, since it means no live worker
// is left to take the round.
func (d *Dispatcher) dispatch(ctx context.Context, ready <-chan int, slots []*slot) error {
	for round := uint32(1); round <= d.cfg.maxRounds; round++ {
		// Checked before every wait so at most one round slips out after
		// cancellation (when the select finds a ready worker and a cancelled
		// context at the same time).
		if ctx.Err() != nil {
			d.log.Info("cancellation requested, dispatch stopped", "round", round)
			return nil
		}
		select {
		case i := <-ready:
			s := slots[i]
			s.item.Store(round)
			// The worker proved readiness for this round, so its previous
			// signal was consumed and the send cannot block.
			s.assign <- struct{}{}
			d.log.Debug("round dispatched", "round", round, "worker", i)
			d.metrics.Record(d.metrics.dispatchEvent(i, round))
		case <-ctx.Done():
			d.log.Info("cancellation requested, dispatch stopped", "round", round)
			return nil
		case <-time.After(d.cfg.waitTimeout):
			return fmt.Errorf("round %d: no worker became ready within %s: %w", round, d.cfg.waitTimeout, ErrProtocolTimeout)
		}
	}
	d.log.Info("all rounds dispatched", "rounds", d.cfg.maxRounds)
	return nil
}

// shutdown is executed on every exit path. It writes the zero sentinel into
// every slot, signals every assign channel, and waits jointly for the
// workers to exit. The grace interval lets the last dispatched item be
// observed before the sentinel overwrites it; an item still unobserved after
// the grace is lost. A worker that does not
// exit within the wait budget is abandoned: the goroutine cannot be killed,
// its resources are not reclaimed, and the failure is reported rather than
// masked. Tolerates nil slots from partially initialized runs.
func (d *Dispatcher) shutdown(slots []*slot) error {
	time.Sleep(d.cfg.shutdownGrace)

	for _, s := range slots {
		if s == nil {
			continue
		}
		s.item.Store(0)
		select {
		case s.assign <- struct{}{}:
		default:
			// A signal is already pending; the worker will consume it and
			// find the sentinel.
		}
	}

	deadline := time.NewTimer(d.cfg.waitTimeout)
	defer deadline.Stop()
	expired := false
	var abandoned int
	var errs []error

	for _, s := range slots {
		if s == nil {
			continue
		}
		if !expired {
			select {
			case <-s.done:
			case <-deadline.C:
				expired = true
			}
		}
		if expired {
			select {
			case <-s.done:
			default:
				abandoned++
				d.log.Error("worker did not terminate, abandoning", "worker", s.index, "timeout", d.cfg.waitTimeout.String())
				continue
			}
		}
		if s.err != nil {
			errs = append(errs, s.err)
		}
	}

	d.metrics.Record(d.metrics.shutdownEvent(abandoned))
	if abandoned > 0 {
		errs = append(errs, fmt.Errorf("%d of %d workers still running after %s: %w", abandoned, len(slots), d.cfg.waitTimeout, ErrForcedTermination))
	} else {
		d.log.Info("all workers terminated")
	}
	return errors.Join(errs...)
}
