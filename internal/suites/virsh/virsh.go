// Package virsh drives domain lifecycle commands through one-shot virsh
// calls and through the interactive virsh shell.
package virsh

import (
	"context"
	"fmt"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/session"
	"github.com/kubev2v/virt-harness/pkg/virsh"
)

const Module = "virsh"

const (
	KeyDomain        = "main_vm"
	KeyExpectedState = "expected_state"
	KeyStateTimeout  = "state_timeout"
	KeyVersionRegex  = "version_regex"
	KeyMemory        = "vm_memory_mib"
)

var defaults = map[string]string{
	KeyExpectedState: virsh.StateShutOff,
	KeyStateTimeout:  "60s",
	KeyVersionRegex:  `Using library: libvirt \d+\.\d+\.\d+`,
	KeyMemory:        "512",
}

func Register(r *checkpoint.Registry) {
	r.Register(Module,
		checkpoint.Checkpoint{
			Name:        "domstate",
			Description: "virsh domstate prints the expected state",
			Defaults:    defaults,
			Run:         domstate,
		},
		checkpoint.Checkpoint{
			Name:        "start_destroy",
			Description: "a shut off domain starts, runs and is destroyed",
			Defaults:    defaults,
			Run:         startDestroy,
		},
		checkpoint.Checkpoint{
			Name:        "version",
			Description: "virsh version reports the library version",
			Defaults:    defaults,
			Run:         version,
		},
		checkpoint.Checkpoint{
			Name:        "shell_domstate",
			Description: "the interactive shell answers domstate like the one-shot call",
			Defaults:    defaults,
			Run:         shellDomstate,
		},
		checkpoint.Checkpoint{
			Name:        "define_undefine",
			Description: "a domain defined from generated XML reports its disk and can be undefined",
			NeedsImage:  true,
			Defaults:    defaults,
			Run:         defineUndefine,
		},
	)
}

func domstate(ctx context.Context, c *checkpoint.Case) error {
	if err := c.Params.Require(KeyDomain); err != nil {
		return err
	}

	res, err := c.Virsh().Domstate(ctx, c.Params.Get(KeyDomain))
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, c.ExpectFailure()); err != nil || res.Failed() {
		return err
	}
	return c.Check.OutputEquals(trimmed(res), c.Params.Get(KeyExpectedState))
}

func startDestroy(ctx context.Context, c *checkpoint.Case) error {
	if err := c.Params.Require(KeyDomain); err != nil {
		return err
	}
	domain := c.Params.Get(KeyDomain)
	timeout := c.Params.Duration(KeyStateTimeout, 0)
	client := c.Virsh()

	res, err := client.Start(ctx, domain)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, c.ExpectFailure()); err != nil || res.Failed() {
		return err
	}
	// leave the domain as we found it whatever happens below
	defer func() {
		if state, err := client.State(ctx, domain); err == nil && state == virsh.StateRunning {
			_, _ = client.Destroy(ctx, domain)
		}
	}()

	if err := client.WaitForState(ctx, domain, virsh.StateRunning, timeout); err != nil {
		return err
	}
	c.Note("domain %s is running", domain)

	res, err = client.Destroy(ctx, domain)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}
	if err := c.Check.OutputContains(res, "destroyed", true); err != nil {
		return err
	}
	return client.WaitForState(ctx, domain, virsh.StateShutOff, timeout)
}

func version(ctx context.Context, c *checkpoint.Case) error {
	res, err := c.Virsh().Version(ctx)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}
	return c.Check.OutputMatches(res, c.Params.Get(KeyVersionRegex), true)
}

func shellDomstate(ctx context.Context, c *checkpoint.Case) error {
	if err := c.Params.Require(KeyDomain); err != nil {
		return err
	}
	domain := c.Params.Get(KeyDomain)
	dialect := session.Virsh(c.Env.Tools.Virsh, c.Env.Tools.VirshURI)

	return session.With(ctx, dialect, models.SessionConfig{}, func(s *session.Session) error {
		shell, err := s.Invoke(ctx, "domstate", domain)
		if err != nil {
			return err
		}
		if err := c.Check.ExitStatus(shell, c.ExpectFailure()); err != nil || shell.Failed() {
			return err
		}

		oneShot, err := c.Virsh().Domstate(ctx, domain)
		if err != nil {
			return err
		}
		return c.Check.OutputEquals(trimmed(shell), trimmed(oneShot).Stdout)
	}, c.SessionOptions()...)
}

func defineUndefine(ctx context.Context, c *checkpoint.Case) error {
	name := c.Params.String(KeyDomain, "vh-"+c.Name)
	xml, err := virsh.DomainXML(virsh.DomainSpec{
		Name:      name,
		MemoryMiB: uint(c.Params.Int(KeyMemory, 512)),
		VCPUs:     1,
		Disks:     []models.Drive{c.Image.Drive(false)},
	})
	if err != nil {
		return err
	}
	disks, err := virsh.DomainDisks(xml)
	if err != nil {
		return err
	}
	if len(disks) != 1 || disks[0].Path != c.Image.Path {
		return fmt.Errorf("generated domain XML lost the fixture disk: %v", disks)
	}

	client := c.Virsh()
	res, err := client.DefineXML(ctx, xml)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, c.ExpectFailure()); err != nil || res.Failed() {
		return err
	}
	undefined := false
	// never leave the domain defined, whichever check fails below
	defer func() {
		if undefined {
			return
		}
		if res, err := client.Undefine(context.WithoutCancel(ctx), name); err != nil || res.Failed() {
			c.Log.Warnw("failed to undefine domain", "domain", name, "error", err, "stderr", res.Stderr)
		}
	}()

	res, err = client.Domstate(ctx, name)
	if err != nil {
		return err
	}
	if err := c.Check.OutputEquals(trimmed(res), virsh.StateShutOff); err != nil {
		return err
	}

	res, err = client.Undefine(ctx, name)
	if err != nil {
		return err
	}
	undefined = !res.Failed()
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}

	res, err = client.Domstate(ctx, name)
	if err != nil {
		return err
	}
	return c.Check.ExitStatus(res, true)
}

// trimmed drops the blank line virsh prints after most answers.
func trimmed(res models.CommandResult) models.CommandResult {
	res.Stdout = virsh.TrimOutput(res.Stdout)
	return res
}
