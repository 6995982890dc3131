package parallel

import (
	"sync"
	"time"
)

// MetricKind identifies the type of metric event.
type MetricKind string

const (
	// MetricKindLifecycle is emitted when a worker starts or exits.
	MetricKindLifecycle MetricKind = "lifecycle"
	// MetricKindDispatch is emitted when the dispatcher assigns a round to a worker.
	MetricKindDispatch MetricKind = "dispatch"
	// MetricKindProcess is emitted after each Process call.
	MetricKindProcess MetricKind = "process"
	// MetricKindShutdown is emitted once when shutdown completes.
	MetricKindShutdown MetricKind = "shutdown"
)

// MetricEvent is a single metrics event. Only the fields relevant to Kind are
// set. Use Kind to determine which payload to read.
type MetricEvent struct {
	Kind   MetricKind
	Worker int
	Time   time.Time

	// Lifecycle (MetricKindLifecycle): Event is "started" or "exited".
	LifecycleEvent string

	// Dispatch (MetricKindDispatch): Round assigned to Worker.
	Round uint32

	// Process (MetricKindProcess): Item, Status, Duration, Err.
	Item     uint32
	Status   ProcessStatus
	Duration time.Duration
	Err      string

	// Shutdown (MetricKindShutdown): Abandoned counts workers that had to be
	// left behind, Clean is true when every worker exited within the bound.
	Abandoned int
	Clean     bool
}

// metricsRecorder manages the lazy metrics channel and the last-event
// snapshot for a dispatcher. All methods are safe for concurrent use; the
// workers and the dispatch loop record through the same recorder.
type metricsRecorder struct {
	mu     sync.Mutex
	sendMu sync.RWMutex
	ch     chan MetricEvent
	last   *MetricEvent
}

// Record stores ev as the latest metric and, if the channel has been created,
// sends a copy on it. The snapshot mutex is not held during the channel send,
// so LastMetric is never blocked by a slow consumer. The send holds sendMu
// shared, which is what lets CloseChannel wait out in-flight sends from an
// abandoned worker instead of racing them.
func (m *metricsRecorder) Record(ev MetricEvent) {
	m.mu.Lock()
	evCopy := ev
	m.last = &evCopy
	m.mu.Unlock()

	m.sendMu.RLock()
	defer m.sendMu.RUnlock()
	if m.ch != nil {
		m.ch <- ev
	}
}

// CloseChannel closes the metrics channel (if it was created) and nils it so
// no further sends can occur. Called once from Run after shutdown.
func (m *metricsRecorder) CloseChannel() {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()
	if m.ch != nil {
		close(m.ch)
		m.ch = nil
	}
}

// Metrics returns a channel that receives metric events. The channel is
// created on first call with the given bufferSize and closed when the run
// ends. bufferSize is the capacity of the channel buffer; use 0 for an
// unbuffered channel. Consumers must drain the channel or workers will block
// on Record.
func (m *metricsRecorder) Metrics(bufferSize int) <-chan MetricEvent {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()
	if m.ch == nil {
		m.ch = make(chan MetricEvent, bufferSize)
	}
	return m.ch
}

// LastMetric returns the most recent metric event.
func (m *metricsRecorder) LastMetric() (MetricEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return MetricEvent{}, false
	}
	return *m.last, true
}

func (m *metricsRecorder) lifecycleEvent(workerIndex int, event string) MetricEvent {
	return MetricEvent{
		Kind:           MetricKindLifecycle,
		Worker:         workerIndex,
		Time:           time.Now(),
		LifecycleEvent: event,
	}
}

func (m *metricsRecorder) dispatchEvent(workerIndex int, round uint32) MetricEvent {
	return MetricEvent{
		Kind:   MetricKindDispatch,
		Worker: workerIndex,
		Time:   time.Now(),
		Round:  round,
	}
}

func (m *metricsRecorder) processEvent(workerIndex int, item uint32, result ProcessResult) MetricEvent {
	ev := MetricEvent{
		Kind:     MetricKindProcess,
		Worker:   workerIndex,
		Time:     time.Now(),
		Item:     item,
		Status:   result.Status,
		Duration: result.Elapsed,
	}
	if result.Err != nil {
		ev.Err = result.Err.Error()
	}
	return ev
}

func (m *metricsRecorder) shutdownEvent(abandoned int) MetricEvent {
	return MetricEvent{
		Kind:      MetricKindShutdown,
		Time:      time.Now(),
		Abandoned: abandoned,
		Clean:     abandoned == 0,
	}
}
