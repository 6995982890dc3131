// Package parallel distributes discrete units of work across a fixed pool of
// workers pinned to distinct logical processors, coordinated by a single
// dispatcher with cooperative cancellation and guaranteed shutdown.
//
// # Overview
//
// The package exposes:
//   - Dispatcher: owns the worker pool; feeds each ready worker exactly one
//     work item per round and drives shutdown.
//   - Supervisor: runs the Dispatcher, ties cancellation to OS interrupts,
//     and maps the outcome to a process exit code.
//   - Processor: interface with Process(item, cancelled) returning a
//     ProcessResult (Done/Fail/Cancelled).
//   - PlanAffinities: partitions the available logical processors 1:1 across
//     worker slots.
//
// # Usage
//
// Create a dispatcher with a processor, wrap it in a supervisor, and run:
//
//	d, err := parallel.NewDispatcher(proc)
//	if err != nil { ... }
//	sup := parallel.NewSupervisor(d)
//	os.Exit(sup.Run(context.Background()))
//
// Workers run a request/serve loop: each signals readiness, blocks for an
// assignment, processes the item with access to a cancellation capability,
// and loops back to readiness. The dispatcher hands out round numbers
// 1..maxRounds to whichever worker becomes ready first; the zero item is the
// shutdown sentinel. All blocking waits inside the dispatcher and workers are
// bounded; a timeout on any of them is a protocol failure, never a silent
// retry. Shutdown executes on every exit path and releases every slot exactly
// once; a worker that fails to exit within the bound is abandoned and the
// failure reported.
package parallel
