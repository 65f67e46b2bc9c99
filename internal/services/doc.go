// Package services implements the layer between the CLI and HTTP handlers on
// one side and the checkpoint dispatcher and the store on the other.
//
// # Service Dependency Graph
//
//	CLI (run) ─────────► Runner ──► Dispatcher, Scheduler, Store
//	CLI (runs, export)
//	Handlers ──────────► Reports ─► Store
//
// # Runner
//
// Runner executes scenarios. Each scenario is submitted to the scheduler as
// one work unit; inside a unit the checkpoints and their sweep combinations
// run one after the other. With a single worker (the default) scenarios run
// in file order too.
//
//	Run(ctx, scenarios)
//	    ├── Plan()            → resolve every checkpoint, fail before any run
//	    ├── AddWork() × N     → one future per scenario
//	    │     └── RunSweep()  → per checkpoint, fresh fixture per combination
//	    │           ├── Store.Record()  → run + log in one transaction
//	    │           └── progress()      → serialized callback
//	    └── wait futures in order → RunResult with per scenario summaries
//
// A scenario timeout bounds the whole unit. Cancelling the context given to
// Run stops the running unit and fails the queued ones; runs already finished
// are still saved.
//
// Usage:
//
//	runner := services.NewRunnerService(dispatcher, sched, st).
//	    WithProgress(func(name string, o checkpoint.Outcome) { bar.Add(1) })
//	result, err := runner.Run(ctx, scenarios)
//	if !result.Summary.OK() { ... }
//
// # Reports
//
// Reports is a stateless facade over the run and log stores used by the HTTP
// API and the spreadsheet export. List returns one page of runs, most recent
// first, together with the total count of runs matching the filters.
//
//	result, err := reports.List(ctx, services.RunListParams{
//	    Scenarios: []string{"nightly"},
//	    Verdicts:  []models.Verdict{models.VerdictFail},
//	    Limit:     50,
//	})
package services
