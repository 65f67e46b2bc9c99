// Package scheduler implements a worker pool for executing async work with futures.
//
// The harness submits one work unit per scenario file. Inside a unit the
// checkpoints of the scenario run one after the other; only separate
// scenarios run in parallel, and only when more than one worker is
// configured.
//
// # Architecture Overview
//
//	┌──────────────────────────────────────────────────────────┐
//	│                        Scheduler                         │
//	│                                                          │
//	│   AddWork(fn) ──► work chan ──► pending queue            │
//	│                                     │                    │
//	│                                dispatch()                │
//	│                                     │                    │
//	│          ┌──────────────┬───────────┴──┬─────────────┐   │
//	│          │   worker 0   │   worker 1   │  worker N   │   │
//	│          └──────┬───────┴──────┬───────┴──────┬──────┘   │
//	│                 └──────── idle chan ──────────┘          │
//	└──────────────────────────────────────────────────────────┘
//
// # Work Execution Flow
//
//  1. AddWork wraps fn in a request with a buffered result channel and a
//     context derived from the scheduler context.
//  2. The event loop queues the request and hands it to an idle worker.
//  3. The worker runs fn, sends a models.Result on the channel and reports
//     itself idle. A panic in fn is recovered and reported as an error.
//  4. The caller reads the result from Future.C(). Future.Stop cancels the
//     context of that single request.
//
// # Shutdown
//
// Close cancels the scheduler context, fails every request still queued
// with context.Canceled and waits for running work to return. AddWork after
// Close returns a future already holding context.Canceled.
package scheduler
