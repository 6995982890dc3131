package internal

import (
	"fmt"
	"sync/atomic"
	"time"

	parallel "github.com/pbatard/base-parallel"
)

// QuickProcessor returns a Processor that succeeds immediately and counts the
// items it has seen (for tests). seen may be nil.
func QuickProcessor(seen *atomic.Uint32) parallel.Processor {
	return parallel.ProcessorFunc(func(item uint32, cancelled func() bool) parallel.ProcessResult {
		if seen != nil {
			seen.Add(1)
		}
		return parallel.Done()
	})
}

// TickProcessor returns a Processor that simulates work by sleeping in ticks
// up to maxTicks, polling the cancellation capability between ticks.
func TickProcessor(tick time.Duration, maxTicks int) parallel.Processor {
	return parallel.ProcessorFunc(func(item uint32, cancelled func() bool) parallel.ProcessResult {
		for i := 0; i < maxTicks; i++ {
			if cancelled() {
				return parallel.Cancelled()
			}
			time.Sleep(tick)
		}
		return parallel.Done()
	})
}

// FailProcessor returns a Processor that fails every item with an error
// naming the item.
func FailProcessor() parallel.Processor {
	return parallel.ProcessorFunc(func(item uint32, cancelled func() bool) parallel.ProcessResult {
		return parallel.Fail(fmt.Errorf("item %d rejected", item))
	})
}

// PanicProcessor returns a Processor that panics on every call. Used to test
// panic containment in the worker.
func PanicProcessor() parallel.Processor {
	return parallel.ProcessorFunc(func(item uint32, cancelled func() bool) parallel.ProcessResult {
		panic(fmt.Sprintf("panic on item %d", item))
	})
}

// BlockingProcessor returns a Processor that blocks on the first call until
// release is closed, ignoring cancellation. Used to simulate a stuck worker;
// close release after the run so the goroutine can exit.
func BlockingProcessor(release <-chan struct{}) parallel.Processor {
	return parallel.ProcessorFunc(func(item uint32, cancelled func() bool) parallel.ProcessResult {
		<-release
		return parallel.Done()
	})
}
