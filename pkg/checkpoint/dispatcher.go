package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/pkg/assert"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/prepare"
	"github.com/kubev2v/virt-harness/pkg/recorder"
)

// KeyTimeout bounds a single checkpoint run.
const KeyTimeout = "timeout"

type Dispatcher struct {
	registry *Registry
	env      *Env
}

func NewDispatcher(registry *Registry, env *Env) *Dispatcher {
	return &Dispatcher{registry: registry, env: env}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch resolves name and runs it once with p. An unknown name fails
// before anything is prepared or launched. The returned error is nil only
// for a pass.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, p params.Params, rec recorder.Recorder) (models.Verdict, error) {
	cp, err := d.registry.Resolve(name)
	if err != nil {
		return models.VerdictError, err
	}
	if rec == nil {
		rec = recorder.Nop{}
	}

	log := zap.S().Named(cp.Name)
	c := &Case{
		Name:   cp.Name,
		Params: cp.Params(p),
		Check:  assert.New(rec),
		Log:    log,
		Env:    d.env,
		rec:    rec,
		runner: d.env.runner(rec),
	}

	c.WorkDir, err = os.MkdirTemp(d.env.WorkDir, cp.Name+"-")
	if err != nil {
		return models.VerdictError, fmt.Errorf("failed to create work directory: %w", err)
	}

	err = d.run(ctx, cp, c)
	teardownErr := d.teardown(c)

	verdict := Classify(err)
	if teardownErr != nil {
		log.Errorw("teardown failed", "error", teardownErr)
		rec.Note("teardown failed: " + teardownErr.Error())
		if verdict == models.VerdictPass {
			verdict = models.VerdictError
		}
		err = multierr.Append(err, teardownErr)
	}

	log.Infow("checkpoint finished", "verdict", verdict, "error", err)
	return verdict, err
}

func (d *Dispatcher) run(ctx context.Context, cp Checkpoint, c *Case) (err error) {
	if timeout := c.Params.Duration(KeyTimeout, 0); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if cp.NeedsImage {
		preparer := prepare.NewPreparer(c.runner, d.env.Tools.QemuImg, c.GuestfishDialect(), d.env.Backend, c.SessionOptions()...)
		c.Image, err = preparer.Prepare(ctx, prepare.SpecFromParams(c.Params, c.WorkDir))
		if err != nil {
			return fmt.Errorf("failed to prepare image: %w", err)
		}
		c.Note("prepared %s image %s", c.Image.Format, c.Image.Path)
	}

	defer func() {
		if r := recover(); r != nil {
			c.Log.Errorw("checkpoint panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("checkpoint %s panicked: %v", cp.Name, r)
		}
	}()

	return cp.Run(ctx, c)
}

func (d *Dispatcher) teardown(c *Case) error {
	var err error
	if c.Image != nil {
		err = multierr.Append(err, c.Image.Cleanup())
	}
	if rmErr := os.RemoveAll(c.WorkDir); rmErr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to remove work directory: %w", rmErr))
	}
	return err
}

// Outcome is one recorded run.
type Outcome struct {
	Record  models.RunRecord
	Entries []models.LogEntry
	Err     error
}

// Run dispatches once with a fresh recorder and returns the run record.
func (d *Dispatcher) Run(ctx context.Context, name string, p params.Params) Outcome {
	log := recorder.NewLog(uuid.New())
	record := models.RunRecord{
		ID:         log.RunID(),
		Module:     d.registry.Module(name),
		Checkpoint: name,
		Params:     p.Map(),
		StartedAt:  time.Now(),
	}

	verdict, err := d.Dispatch(ctx, name, p, log)

	record.FinishedAt = time.Now()
	record.Verdict = verdict
	if err != nil {
		record.Reason = err.Error()
	}
	return Outcome{Record: record, Entries: log.Entries(), Err: err}
}

// RunSweep runs name once per combination of sweep over base, preparing a
// fresh fixture each time. progress, when set, sees every outcome as soon
// as it is known. An unknown name returns before any combination runs.
func (d *Dispatcher) RunSweep(ctx context.Context, name string, base params.Params, sweep Sweep, progress func(Outcome)) ([]Outcome, error) {
	if _, err := d.registry.Resolve(name); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, sweep.Size())
	for p := range sweep.Expand(base) {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		o := d.Run(ctx, name, p)
		outcomes = append(outcomes, o)
		if progress != nil {
			progress(o)
		}
	}
	return outcomes, nil
}

// IsSkip reports whether err came from Skip.
func IsSkip(err error) bool {
	return errors.Is(err, ErrSkip)
}
