// Package store persists checkpoint run records and their command logs in
// DuckDB.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────┐
//	│                 Store (facade)                  │
//	├────────────────────────┬────────────────────────┤
//	│        RunStore        │        LogStore        │
//	│           ▼            │           ▼            │
//	│          runs          │        run_log         │
//	└────────────────────────┴────────────────────────┘
//
// Tables are created by the migrations in internal/store/migrations/sql/:
//
//	┌────────────────────┬──────────────────────────────────────────────┐
//	│  Table             │  Purpose                                     │
//	├────────────────────┼──────────────────────────────────────────────┤
//	│  runs              │  One row per checkpoint run and combination  │
//	│  run_log           │  Ordered commands, assertions and notes      │
//	│  schema_migrations │  Migration version tracking                  │
//	└────────────────────┴──────────────────────────────────────────────┘
//
// # RunStore
//
// Save upserts on the run id, so a run can be stored when it starts and
// updated with its verdict once it finishes. Params are kept as a JSON object.
//
// List, Count and Summary take ListOption functions that modify a squirrel
// SelectBuilder:
//
//	runs, err := st.Runs().List(ctx,
//	    store.ByScenario("nightly"),
//	    store.ByVerdict(models.VerdictFail, models.VerdictError),
//	    store.WithDefaultSort(),
//	    store.WithLimit(50),
//	)
//
// Summary ignores paging and groups by verdict.
//
// # LogStore
//
// Entries are keyed by (run_id, seq) and listed in seq order.
//
// # Record
//
// Store.Record writes a run and its log in one transaction; a failed log
// insert leaves no run behind.
//
// # QueryInterceptor
//
// Every query goes through a QueryInterceptor which logs the statement and
// its arguments at debug level.
package store
