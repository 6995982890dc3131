package parallel

import (
	"log/slog"
	"os"
	"time"
)

const (
	// defaultWaitTimeout bounds every handshake wait: the dispatcher's wait
	// for a ready worker, a worker's wait for an assignment, and the joint
	// wait for worker exit during shutdown.
	defaultWaitTimeout = 15 * time.Second
	// defaultMaxRounds is the number of work items dispatched per run when not set.
	defaultMaxRounds = 100
	// defaultShutdownGrace is how long shutdown waits before overwriting slot
	// items with the exit sentinel, so the last dispatched item can be
	// observed by its worker.
	defaultShutdownGrace = 250 * time.Millisecond
)

// defaultLogger is the logger used when no WithLogger option is provided. It
// writes JSON to os.Stdout.
var defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// config holds the settings for a dispatcher. It is populated via Option
// values passed to NewDispatcher.
type config struct {
	spareThreads  int
	waitTimeout   time.Duration
	maxRounds     uint32
	shutdownGrace time.Duration
	processors    ProcessorMask
	log           *slog.Logger
}

// Option configures a Dispatcher at creation time. Use WithSpareThreads,
// WithWaitTimeout, WithMaxRounds, WithShutdownGrace, WithProcessors, and
// WithLogger to set optional behavior; zero values apply defaults.
type Option func(*config)

// WithSpareThreads reserves n logical processors that get no worker. Use 0
// (default) to run one worker per available processor. Planning fails with
// ErrNoProcessors when the reserve leaves no processor for any worker.
func WithSpareThreads(n int) Option {
	return func(c *config) { c.spareThreads = n }
}

// WithWaitTimeout sets the budget for every bounded handshake wait. Use 0
// for the default (15 seconds). Exceeding the budget is a protocol failure,
// not a retry.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *config) { c.waitTimeout = d }
}

// WithMaxRounds sets how many work items are dispatched per run. Use 0 for
// the default (100).
func WithMaxRounds(n uint32) Option {
	return func(c *config) { c.maxRounds = n }
}

// WithShutdownGrace sets the interval shutdown allows for the last dispatched
// item to be observed before slots are overwritten with the exit sentinel.
// Use 0 for the default (250 milliseconds).
func WithShutdownGrace(d time.Duration) Option {
	return func(c *config) { c.shutdownGrace = d }
}

// WithProcessors overrides the detected processor set with an explicit mask.
// Without this option NewDispatcher queries the processors available to the
// process. Mainly for tests and deployments that pre-carve CPU sets.
func WithProcessors(mask ProcessorMask) Option {
	return func(c *config) { c.processors = mask }
}

// WithLogger sets the logger used by the dispatcher and its workers. Each
// worker gets a child logger with "worker" set to the slot index. If logger
// is nil, the default JSON logger (writing to os.Stdout) is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.log = logger
		}
	}
}

// applyOptions applies the given options and returns a config with defaults
// applied so that the timing fields are never zero. Downstream code can use
// config fields directly.
func applyOptions(opts ...Option) config {
	c := config{
		waitTimeout:   defaultWaitTimeout,
		maxRounds:     defaultMaxRounds,
		shutdownGrace: defaultShutdownGrace,
		log:           defaultLogger,
	}
	for _, opt := range opts {
		opt(&c)
	}
	// Normalize so 0 from options means "use default" (avoids conditionals elsewhere).
	if c.waitTimeout <= 0 {
		c.waitTimeout = defaultWaitTimeout
	}
	if c.maxRounds == 0 {
		c.maxRounds = defaultMaxRounds
	}
	if c.shutdownGrace <= 0 {
		c.shutdownGrace = defaultShutdownGrace
	}
	return c
}
