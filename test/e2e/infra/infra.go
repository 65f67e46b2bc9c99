package infra

import (
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
)

// InfraManager abstracts where the tools driven by the e2e tests come from.
// Host: the binaries installed on the machine running the tests.
// Fake: the scripted stand-ins of the unit tests, for a dry run of the suite.
type InfraManager interface {
	// Env returns the checkpoint environment the suites run in.
	Env() (*checkpoint.Env, error)
	// Available reports whether tool can be executed.
	Available(tool string) bool
	Cleanup() error
}

// Config holds what both managers share.
type Config struct {
	WorkDir  string
	Backend  string
	VirshURI string
	// KeepWorkDir leaves images and converted guests behind for debugging.
	KeepWorkDir bool
}

const (
	ToolGuestfish = "guestfish"
	ToolVirsh     = "virsh"
	ToolQemuImg   = "qemu-img"
	ToolV2V       = "virt-v2v"
	ToolNbdkit    = "nbdkit"
)
