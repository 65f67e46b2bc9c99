// Package suites wires every test module into one checkpoint registry.
package suites

import (
	"github.com/kubev2v/virt-harness/internal/suites/augeas"
	"github.com/kubev2v/virt-harness/internal/suites/fs"
	"github.com/kubev2v/virt-harness/internal/suites/v2v"
	"github.com/kubev2v/virt-harness/internal/suites/virsh"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
)

// Modules lists the registered test modules.
var Modules = []string{augeas.Module, fs.Module, virsh.Module, v2v.Module}

// Registry returns a registry holding every checkpoint of every module.
func Registry() *checkpoint.Registry {
	r := checkpoint.NewRegistry()
	augeas.Register(r)
	fs.Register(r)
	virsh.Register(r)
	v2v.Register(r)
	return r
}
