package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/config"
	"github.com/kubev2v/virt-harness/internal/services"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/scenario"
	"github.com/kubev2v/virt-harness/pkg/scheduler"
)

type runOptions struct {
	name        string
	module      string
	checkpoints []string
	params      []string
	sweep       []string
	timeout     time.Duration
	noProgress  bool
}

func newRunCommand(cfg *config.Configuration) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run [scenario file or directory]...",
		Short: "Run scenario files or single checkpoints",
		Example: `  # every scenario of a directory
  virt-harness run scenarios/

  # one checkpoint over two image formats
  virt-harness run --checkpoint aug_clear --sweep image_format=raw,qcow2

  # a whole module expecting failures
  virt-harness run --module fs --param status_error=yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := opts.scenarios(args, cfg.Harness.ScenarioTimeout)
			if err != nil {
				return err
			}
			return runScenarios(cmd, cfg, scenarios, opts.noProgress)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.name, "name", "adhoc", "Scenario name of the runs given by --checkpoint or --module")
	fs.StringVar(&opts.module, "module", "", "Run every checkpoint of a test module")
	fs.StringSliceVar(&opts.checkpoints, "checkpoint", nil, "Checkpoint to run, may be repeated")
	fs.StringArrayVar(&opts.params, "param", nil, "Parameter as key=value, may be repeated")
	fs.StringArrayVar(&opts.sweep, "sweep", nil, "Swept parameter as key=v1,v2, may be repeated; the first varies slowest")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Timeout of the ad-hoc scenario (default: --scenario-timeout)")
	fs.BoolVar(&opts.noProgress, "no-progress", false, "Do not draw a progress bar")

	return cmd
}

// scenarios loads the files in args and adds the ad-hoc scenario built from
// flags.
func (o runOptions) scenarios(args []string, defaultTimeout time.Duration) ([]scenario.Scenario, error) {
	var out []scenario.Scenario
	for _, path := range args {
		loaded, err := scenario.Load(path)
		if err != nil {
			return nil, err
		}
		out = append(out, loaded...)
	}

	if o.module != "" || len(o.checkpoints) > 0 {
		p, err := parseParams(o.params)
		if err != nil {
			return nil, err
		}
		sweep, err := parseSweep(o.sweep)
		if err != nil {
			return nil, err
		}
		out = append(out, scenario.Scenario{
			Name:        o.name,
			Module:      o.module,
			Checkpoints: o.checkpoints,
			Params:      p,
			Sweep:       sweep,
			Timeout:     o.timeout,
			Source:      "command line",
		})
	} else if len(o.params) > 0 || len(o.sweep) > 0 {
		return nil, errors.New("--param and --sweep need --checkpoint or --module")
	}

	if len(out) == 0 {
		return nil, errors.New("nothing to run: give scenario files, --checkpoint or --module")
	}
	for i := range out {
		if out[i].Timeout == 0 {
			out[i].Timeout = defaultTimeout
		}
	}
	return out, nil
}

func runScenarios(cmd *cobra.Command, cfg *config.Configuration, scenarios []scenario.Scenario, noProgress bool) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(ctx) //nolint:errcheck

	env, err := a.env(ctx)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(cfg.Harness.NumWorkers)
	defer sched.Close()

	runner := services.NewRunnerService(checkpoint.NewDispatcher(a.registry, env), sched, a.store)
	total, err := runner.Plan(scenarios)
	if err != nil {
		return err
	}
	zap.S().Infow("starting runs", "scenarios", len(scenarios), "runs", total, "workers", cfg.Harness.NumWorkers)

	out := cmd.OutOrStdout()
	var bar *progressbar.ProgressBar
	if !noProgress {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("checkpoints"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	runner.WithProgress(func(name string, o checkpoint.Outcome) {
		if bar != nil {
			_ = bar.Clear()
		}
		printOutcome(out, name, o)
		if bar != nil {
			_ = bar.Add(1)
		}
	})

	result, err := runner.Run(ctx, scenarios)
	if bar != nil {
		_ = bar.Finish()
	}
	if result != nil {
		printSummary(out, result)
	}
	if err != nil {
		return err
	}

	for _, sr := range result.Scenarios {
		if sr.Err != nil {
			return fmt.Errorf("scenario %s: %w", sr.Scenario, sr.Err)
		}
	}
	if !result.Summary.OK() {
		return errRunFailed
	}
	return nil
}

func parseParams(values []string) (params.Params, error) {
	m := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return params.Params{}, fmt.Errorf("invalid --param %q: want key=value", v)
		}
		m[key] = value
	}
	return params.New(m), nil
}

func parseSweep(values []string) (checkpoint.Sweep, error) {
	var sweep checkpoint.Sweep
	seen := map[string]bool{}
	for _, v := range values {
		key, list, ok := strings.Cut(v, "=")
		if !ok || key == "" || list == "" {
			return nil, fmt.Errorf("invalid --sweep %q: want key=v1,v2", v)
		}
		if seen[key] {
			return nil, fmt.Errorf("invalid --sweep: %s given twice", key)
		}
		seen[key] = true
		sweep = append(sweep, checkpoint.Axis{Key: key, Values: strings.Split(list, ",")})
	}
	return sweep, nil
}
