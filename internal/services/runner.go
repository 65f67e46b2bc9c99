package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/store"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/scenario"
	"github.com/kubev2v/virt-harness/pkg/scheduler"
)

// ProgressFunc sees every outcome as soon as it is known. Calls are
// serialized even when scenarios run on several workers.
type ProgressFunc func(scenario string, o checkpoint.Outcome)

type Runner struct {
	dispatcher *checkpoint.Dispatcher
	scheduler  *scheduler.Scheduler
	store      *store.Store
	progress   ProgressFunc
	mu         sync.Mutex
}

// NewRunnerService builds a runner. st may be nil, in which case outcomes are
// only returned.
func NewRunnerService(d *checkpoint.Dispatcher, s *scheduler.Scheduler, st *store.Store) *Runner {
	return &Runner{dispatcher: d, scheduler: s, store: st}
}

func (r *Runner) WithProgress(fn ProgressFunc) *Runner {
	r.progress = fn
	return r
}

type ScenarioResult struct {
	Scenario string
	Outcomes []checkpoint.Outcome
	Summary  models.RunSummary
	// Err is a harness fault that stopped the scenario early, or a failure
	// to persist one of its runs.
	Err error
}

type RunResult struct {
	Scenarios []ScenarioResult
	Summary   models.RunSummary
}

// Plan resolves every scenario and returns the total number of checkpoint
// runs. Nothing is run when one scenario names an unknown checkpoint.
func (r *Runner) Plan(scenarios []scenario.Scenario) (int, error) {
	total := 0
	for _, sc := range scenarios {
		names, err := sc.Resolve(r.dispatcher.Registry())
		if err != nil {
			return 0, err
		}
		total += len(names) * sc.Sweep.Size()
	}
	return total, nil
}

// Run submits one work unit per scenario and waits for all of them. Results
// keep the order of scenarios. Cancelling ctx stops running and queued units.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) (*RunResult, error) {
	if _, err := r.Plan(scenarios); err != nil {
		return nil, err
	}

	futures := make([]*models.Future[models.Result[any]], 0, len(scenarios))
	for _, sc := range scenarios {
		futures = append(futures, r.scheduler.AddWork(func(ctx context.Context) (any, error) {
			return r.runScenario(ctx, sc), nil
		}))
	}

	result := &RunResult{Scenarios: make([]ScenarioResult, 0, len(scenarios))}
	stopAll := context.AfterFunc(ctx, func() {
		for _, f := range futures {
			f.Stop()
		}
	})
	defer stopAll()

	for i, f := range futures {
		res := f.Wait(ctx)

		sr, ok := res.Data.(ScenarioResult)
		if !ok {
			sr = ScenarioResult{Scenario: scenarios[i].Name, Err: res.Err}
		}
		result.Scenarios = append(result.Scenarios, sr)
		result.Summary.Total += sr.Summary.Total
		result.Summary.Passed += sr.Summary.Passed
		result.Summary.Failed += sr.Summary.Failed
		result.Summary.Errors += sr.Summary.Errors
		result.Summary.Skip += sr.Summary.Skip
	}

	return result, ctx.Err()
}

func (r *Runner) runScenario(ctx context.Context, sc scenario.Scenario) ScenarioResult {
	log := zap.S().Named("runner").With("scenario", sc.Name)
	result := ScenarioResult{Scenario: sc.Name}

	if sc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sc.Timeout)
		defer cancel()
	}

	names, err := sc.Resolve(r.dispatcher.Registry())
	if err != nil {
		result.Err = err
		return result
	}

	log.Infow("scenario started", "checkpoints", names, "combinations", sc.Sweep.Size())
	for _, name := range names {
		_, err := r.dispatcher.RunSweep(ctx, name, sc.Params, sc.Sweep, func(o checkpoint.Outcome) {
			o.Record.Scenario = sc.Name
			result.Outcomes = append(result.Outcomes, o)
			result.Summary.Add(o.Record.Verdict)
			if err := r.persist(ctx, o); err != nil {
				log.Errorw("failed to save run", "run", o.Record.ID, "error", err)
				result.Err = multierr.Append(result.Err, err)
			}
			r.notify(sc.Name, o)
		})
		if err != nil {
			result.Err = multierr.Append(result.Err, fmt.Errorf("scenario %s stopped at %s: %w", sc.Name, name, err))
			break
		}
	}

	log.Infow("scenario finished", "total", result.Summary.Total, "passed", result.Summary.Passed,
		"failed", result.Summary.Failed, "errors", result.Summary.Errors, "skipped", result.Summary.Skip)
	return result
}

// persist saves the outcome even when the scenario was cancelled, so that
// the last runs stay visible.
func (r *Runner) persist(ctx context.Context, o checkpoint.Outcome) error {
	if r.store == nil {
		return nil
	}
	return r.store.Record(context.WithoutCancel(ctx), o.Record, o.Entries)
}

func (r *Runner) notify(name string, o checkpoint.Outcome) {
	if r.progress == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress(name, o)
}
