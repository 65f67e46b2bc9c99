package checkpoint

import (
	"iter"

	"github.com/kubev2v/virt-harness/pkg/params"
)

// Axis is one swept parameter and the values it takes.
type Axis struct {
	Key    string
	Values []string
}

// Sweep is an ordered list of axes. The first axis varies slowest.
type Sweep []Axis

// Size is the number of combinations. Axes without values are ignored.
func (s Sweep) Size() int {
	n := 1
	for _, a := range s {
		if len(a.Values) > 0 {
			n *= len(a.Values)
		}
	}
	return n
}

// Expand yields base overlaid with every combination of axis values, in
// declaration order. An empty sweep yields base once.
func (s Sweep) Expand(base params.Params) iter.Seq[params.Params] {
	axes := make([]Axis, 0, len(s))
	for _, a := range s {
		if len(a.Values) > 0 {
			axes = append(axes, a)
		}
	}

	return func(yield func(params.Params) bool) {
		var walk func(i int, p params.Params) bool
		walk = func(i int, p params.Params) bool {
			if i == len(axes) {
				return yield(p)
			}
			for _, v := range axes[i].Values {
				if !walk(i+1, p.With(axes[i].Key, v)) {
					return false
				}
			}
			return true
		}
		walk(0, base)
	}
}
