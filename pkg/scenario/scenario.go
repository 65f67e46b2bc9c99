// Package scenario loads the YAML files describing what to run: one test
// module, the checkpoints to pick from it, base parameters and a parameter
// sweep.
//
//	name: fs-matrix
//	module: fs
//	checkpoints: [write_cat, touch_exists]
//	timeout: 20m
//	params:
//	  image_size: 200M
//	sweep:
//	  - key: image_format
//	    values: [raw, qcow2]
//	  - key: fs_type
//	    values: [ext4, xfs]
//
// A file may hold several documents separated by "---".
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/params"
)

// Scenario is one unit of work for the runner.
type Scenario struct {
	Name        string
	Module      string
	Checkpoints []string
	Params      params.Params
	Sweep       checkpoint.Sweep
	Timeout     time.Duration
	// Source is the file the scenario was read from.
	Source string
}

type document struct {
	Name        string            `yaml:"name"`
	Module      string            `yaml:"module"`
	Checkpoint  string            `yaml:"checkpoint"`
	Checkpoints []string          `yaml:"checkpoints"`
	Params      map[string]string `yaml:"params"`
	Sweep       []axis            `yaml:"sweep"`
	Timeout     Duration          `yaml:"timeout"`
	Repeat      int               `yaml:"repeat" default:"1"`
}

type axis struct {
	Key    string   `yaml:"key"`
	Values []string `yaml:"values"`
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultTimeout bounds a scenario without a timeout.
const DefaultTimeout = 30 * time.Minute

// Parse reads every document of r. source names the input in errors and
// provides the default scenario name.
func Parse(r io.Reader, source string) ([]Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []Scenario
	for i := 0; ; i++ {
		var doc document
		if err := defaults.Set(&doc); err != nil {
			return nil, err
		}
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", source, i+1, err)
		}

		s, err := doc.scenario(source, i)
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", source, i+1, err)
		}
		base := s.Name
		for n := 1; n <= doc.Repeat; n++ {
			if doc.Repeat > 1 {
				s.Name = fmt.Sprintf("%s#%d", base, n)
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func (d document) scenario(source string, index int) (Scenario, error) {
	name := d.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		if index > 0 {
			name = fmt.Sprintf("%s-%d", name, index+1)
		}
	}

	cps := slices.Clone(d.Checkpoints)
	if d.Checkpoint != "" {
		cps = append([]string{d.Checkpoint}, cps...)
	}
	if d.Module == "" && len(cps) == 0 {
		return Scenario{}, fmt.Errorf("scenario %s: module or checkpoint is required", name)
	}
	if d.Repeat < 1 {
		return Scenario{}, fmt.Errorf("scenario %s: repeat must be at least 1", name)
	}

	sweep := make(checkpoint.Sweep, 0, len(d.Sweep))
	seen := make(map[string]bool, len(d.Sweep))
	for _, a := range d.Sweep {
		if a.Key == "" {
			return Scenario{}, fmt.Errorf("scenario %s: sweep axis without key", name)
		}
		if seen[a.Key] {
			return Scenario{}, fmt.Errorf("scenario %s: sweep key %s given twice", name, a.Key)
		}
		seen[a.Key] = true
		sweep = append(sweep, checkpoint.Axis{Key: a.Key, Values: a.Values})
	}

	timeout := time.Duration(d.Timeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return Scenario{
		Name:        name,
		Module:      d.Module,
		Checkpoints: cps,
		Params:      params.New(d.Params),
		Sweep:       sweep,
		Timeout:     timeout,
		Source:      source,
	}, nil
}

// LoadFile reads the scenarios of one file.
func LoadFile(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Load reads path, which is a scenario file or a directory whose *.yaml and
// *.yml files are read in name order.
func Load(path string) ([]Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return LoadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []Scenario
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		scenarios, err := LoadFile(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, scenarios...)
	}
	return out, nil
}

// Resolve returns the checkpoint names to run: the listed ones, or every
// checkpoint of the module. Listed names must exist and, when a module is
// given, belong to it.
func (s Scenario) Resolve(r *checkpoint.Registry) ([]string, error) {
	if len(s.Checkpoints) == 0 {
		var names []string
		for _, cp := range r.List(s.Module) {
			names = append(names, cp.Name)
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("scenario %s: module %q has no checkpoints", s.Name, s.Module)
		}
		return names, nil
	}

	for _, name := range s.Checkpoints {
		if _, err := r.Resolve(name); err != nil {
			return nil, err
		}
		if s.Module != "" && r.Module(name) != s.Module {
			return nil, fmt.Errorf("scenario %s: checkpoint %s belongs to module %s, not %s", s.Name, name, r.Module(name), s.Module)
		}
	}
	return s.Checkpoints, nil
}

// Runs is the number of checkpoint runs the scenario expands to.
func (s Scenario) Runs(r *checkpoint.Registry) int {
	names, err := s.Resolve(r)
	if err != nil {
		return 0
	}
	return len(names) * s.Sweep.Size()
}
