// Package checkpoint resolves named checkpoints to test functions and runs
// them with prepared fixtures, a recorder and guaranteed teardown.
package checkpoint

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/params"
)

// Func is the body of a checkpoint. Returning an assertion error fails the
// run; any other error marks it as errored.
type Func func(ctx context.Context, c *Case) error

type Checkpoint struct {
	Name        string
	Description string
	// NeedsImage asks the dispatcher to prepare a disk image from the
	// image_* parameters before Run and to remove it afterwards.
	NeedsImage bool
	// Defaults are overlaid by the parameters of a run.
	Defaults map[string]string
	Run      Func
}

// Registry maps checkpoint names to checkpoints. It is filled once at start
// up by the suites; registering a name twice panics.
type Registry struct {
	mu          sync.RWMutex
	checkpoints map[string]Checkpoint
	modules     map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		checkpoints: make(map[string]Checkpoint),
		modules:     make(map[string]string),
	}
}

// Register adds the checkpoints of one test module.
func (r *Registry) Register(module string, cps ...Checkpoint) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cp := range cps {
		if cp.Name == "" || cp.Run == nil {
			panic(fmt.Sprintf("checkpoint: invalid checkpoint %q in module %s", cp.Name, module))
		}
		if prev, ok := r.modules[cp.Name]; ok {
			panic(fmt.Sprintf("checkpoint: %q registered twice (modules %s and %s)", cp.Name, prev, module))
		}
		r.checkpoints[cp.Name] = cp
		r.modules[cp.Name] = module
	}
	return r
}

// Resolve returns the checkpoint or UnknownCheckpointError.
func (r *Registry) Resolve(name string) (Checkpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp, ok := r.checkpoints[name]
	if !ok {
		return Checkpoint{}, srvErrors.NewUnknownCheckpointError(name, slices.Sorted(maps.Keys(r.checkpoints)))
	}
	return cp, nil
}

// Module returns the module a checkpoint was registered by.
func (r *Registry) Module(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modules[name]
}

// Names returns every checkpoint name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.checkpoints))
}

// List returns the checkpoints of module, or all of them when module is
// empty, sorted by name.
func (r *Registry) List(module string) []Checkpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Checkpoint
	for _, name := range slices.Sorted(maps.Keys(r.checkpoints)) {
		if module == "" || r.modules[name] == module {
			out = append(out, r.checkpoints[name])
		}
	}
	return out
}

// Params returns p on top of the checkpoint defaults.
func (c Checkpoint) Params(p params.Params) params.Params {
	if len(c.Defaults) == 0 {
		return p
	}
	return params.New(c.Defaults).Merge(p)
}
