package parallel

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
)

// Supervisor runs a Dispatcher to completion and maps its outcome to a
// process exit code. It ties cooperative cancellation to OS interrupts: the
// first interrupt cancels the run context (idempotent, never reset) and
// dispatch winds down cleanly; the interrupt handler itself never blocks and
// never touches dispatcher state.
type Supervisor struct {
	dispatcher *Dispatcher
	log        *slog.Logger
	signals    []os.Signal
}

// SupervisorOption configures a Supervisor at creation time.
type SupervisorOption func(*Supervisor)

// WithSignals sets the OS signals that trigger cancellation. The default is
// os.Interrupt and SIGTERM.
func WithSignals(signals ...os.Signal) SupervisorOption {
	return func(s *Supervisor) {
		if len(signals) > 0 {
			s.signals = signals
		}
	}
}

// WithSupervisorLogger sets the supervisor's logger. By default it shares the
// dispatcher's logger.
func WithSupervisorLogger(logger *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if logger != nil {
			s.log = logger
		}
	}
}

// NewSupervisor wraps the given dispatcher. The dispatcher must come from
// NewDispatcher, so its plan exists before any worker is spawned.
func NewSupervisor(d *Dispatcher, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		dispatcher: d,
		log:        d.log,
		signals:    []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the dispatcher and blocks until it finishes. The wait is
// intentionally unbounded: the dispatcher enforces its own internal bounds,
// so it always returns. Every failure (planning, protocol timeout, forced
// termination) collapses to exit code 1 here; a run cut short by
// cancellation alone is a clean stop, exit code 0.
func (s *Supervisor) Run(ctx context.Context) int {
	log := s.log.With("run", uuid.NewString())

	ctx, stop := signal.NotifyContext(ctx, s.signals...)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- s.dispatcher.Run(ctx)
	}()

	err := <-done
	if err != nil {
		log.Error("run failed", "error", err)
		return 1
	}
	log.Info("run completed")
	return 0
}
