// Package v2v runs virt-v2v conversions from a local disk and from a vSphere
// source, plus version probes of the conversion stack.
package v2v

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/vmware"
)

const Module = "v2v"

const (
	KeyDomain        = "main_vm"
	KeyOutputName    = "v2v_output_name"
	KeyExpectOutput  = "v2v_expect_output"
	KeyVersionRegex  = "version_regex"
	KeyPowerOff      = "v2v_power_off"
	KeyExtraArgs     = "v2v_options"
	poweredOn        = "poweredOn"
	defaultOutputDir = "v2v-out"
)

var defaults = map[string]string{
	params.KeyImageFormat:   "raw",
	params.KeyPartitionType: "mbr",
	params.KeyFSType:        "ext4",
	KeyOutputName:           "converted",
	KeyExpectOutput:         "Finishing off",
	KeyPowerOff:             "yes",
}

func Register(r *checkpoint.Registry) {
	r.Register(Module,
		checkpoint.Checkpoint{
			Name:        "convert_disk",
			Description: "virt-v2v -i disk converts the fixture to a local libvirt guest",
			NeedsImage:  true,
			Defaults:    defaults,
			Run:         convertDisk,
		},
		checkpoint.Checkpoint{
			Name:        "nbdkit_version",
			Description: "nbdkit --version prints a version",
			Defaults:    map[string]string{KeyVersionRegex: `^nbdkit \d+\.\d+\.\d+`},
			Run:         toolVersion(func(t checkpoint.Tools) string { return t.Nbdkit }, "nbdkit"),
		},
		checkpoint.Checkpoint{
			Name:        "v2v_version",
			Description: "virt-v2v --version prints a version",
			Defaults:    map[string]string{KeyVersionRegex: `^virt-v2v \d+\.\d+\.\d+`},
			Run:         toolVersion(func(t checkpoint.Tools) string { return t.V2V }, "virt-v2v"),
		},
		checkpoint.Checkpoint{
			Name:        "vsphere_source_off",
			Description: "a powered off vSphere guest converts with virt-v2v -ic vpx://",
			Defaults:    defaults,
			Run:         vsphereSourceOff,
		},
	)
}

func convertDisk(ctx context.Context, c *checkpoint.Case) error {
	out, err := outputDir(c)
	if err != nil {
		return err
	}
	name := c.Params.Get(KeyOutputName)

	args := []string{"-i", "disk", c.Image.Path, "-o", "local", "-os", out, "-on", name}
	return convert(ctx, c, append(args, c.Params.Strings(KeyExtraArgs)...), filepath.Join(out, name+"-sda"))
}

func vsphereSourceOff(ctx context.Context, c *checkpoint.Case) error {
	source := c.Env.Source
	if source == nil || c.Env.SourceURI == "" {
		return checkpoint.Skip("no vSphere source configured")
	}
	if err := c.Params.Require(KeyDomain); err != nil {
		return err
	}
	vm := c.Params.Get(KeyDomain)

	if err := source.ValidatePrivileges(ctx, vm, vmware.ConversionPrivileges); err != nil {
		return fmt.Errorf("conversion user cannot read %s: %w", vm, err)
	}

	state, err := source.PowerState(ctx, vm)
	if err != nil {
		return err
	}
	if state == poweredOn {
		if !c.Params.Bool(KeyPowerOff, false) {
			return checkpoint.Skip("source vm %s is powered on", vm)
		}
		if err := source.PowerOff(ctx, vm); err != nil {
			return err
		}
		c.Note("powered off source vm %s", vm)
	}

	out, err := outputDir(c)
	if err != nil {
		return err
	}
	args := []string{"-ic", c.Env.SourceURI, "-o", "local", "-os", out, vm}
	return convert(ctx, c, append(args, c.Params.Strings(KeyExtraArgs)...), filepath.Join(out, vm+"-sda"))
}

// convert runs virt-v2v and checks its exit status, its output and the
// converted disk.
func convert(ctx context.Context, c *checkpoint.Case, args []string, disk string) error {
	res, err := c.Run(ctx, binary(c.Env.Tools.V2V, "virt-v2v"), args...)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, c.ExpectFailure()); err != nil || res.Failed() {
		return err
	}
	if expected := c.Params.Get(KeyExpectOutput); expected != "" {
		if err := c.Check.OutputContains(res, expected, true); err != nil {
			return err
		}
	}

	res, err = c.Run(ctx, binary(c.Env.Tools.QemuImg, "qemu-img"), "info", disk)
	if err != nil {
		return err
	}
	return c.Check.ExitStatus(res, false)
}

func toolVersion(tool func(checkpoint.Tools) string, name string) checkpoint.Func {
	return func(ctx context.Context, c *checkpoint.Case) error {
		res, err := c.Run(ctx, binary(tool(c.Env.Tools), name), "--version")
		if err != nil {
			return err
		}
		if err := c.Check.ExitStatus(res, false); err != nil {
			return err
		}
		return c.Check.OutputMatches(res, c.Params.Get(KeyVersionRegex), true)
	}
}

func outputDir(c *checkpoint.Case) (string, error) {
	out := filepath.Join(c.WorkDir, defaultOutputDir)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return out, nil
}

func binary(path, def string) string {
	if path == "" {
		return def
	}
	return path
}
