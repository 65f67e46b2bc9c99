// Package vmware talks to vCenter for the conversion checkpoints that read
// from a vSphere source: it checks and changes the power state of the
// source VM and validates the privileges of the conversion user.
package vmware

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/types"
	"go.uber.org/zap"
)

// ConversionPrivileges are needed by virt-v2v -ic vpx:// on the source VM.
var ConversionPrivileges = []string{
	"System.View",
	"VirtualMachine.Provisioning.DiskRandomRead",
	"VirtualMachine.Provisioning.GetVmFiles",
	"VirtualMachine.State.CreateSnapshot",
	"VirtualMachine.State.RemoveSnapshot",
}

type VMManager struct {
	gc         *govmomi.Client
	username   string
	datacenter string
}

// NewVMManager logs into vCenter. datacenter may be empty when the inventory
// holds a single one.
func NewVMManager(ctx context.Context, endpoint, username, password, datacenter string, insecure bool) (*VMManager, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid vCenter url %q: %w", endpoint, err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/sdk"
	}
	if username != "" {
		u.User = url.UserPassword(username, password)
	}

	gc, err := govmomi.NewClient(ctx, u, insecure)
	if err != nil {
		return nil, fmt.Errorf("failed to login to %s: %w", u.Host, err)
	}

	if username == "" && u.User != nil {
		username = u.User.Username()
	}
	zap.S().Named("vmware").Infow("connected to vCenter", "host", u.Host, "user", username)

	return &VMManager{gc: gc, username: username, datacenter: datacenter}, nil
}

func (m *VMManager) Logout(ctx context.Context) error {
	return m.gc.Logout(ctx)
}

// FindVM resolves a VM by name or inventory path.
func (m *VMManager) FindVM(ctx context.Context, name string) (*object.VirtualMachine, error) {
	finder := find.NewFinder(m.gc.Client, true)

	var (
		dc  *object.Datacenter
		err error
	)
	if m.datacenter != "" {
		dc, err = finder.Datacenter(ctx, m.datacenter)
	} else {
		dc, err = finder.DefaultDatacenter(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find datacenter: %w", err)
	}
	finder.SetDatacenter(dc)

	vm, err := finder.VirtualMachine(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find vm %s: %w", name, err)
	}
	return vm, nil
}

// PowerState returns poweredOn, poweredOff or suspended.
func (m *VMManager) PowerState(ctx context.Context, name string) (string, error) {
	vm, err := m.FindVM(ctx, name)
	if err != nil {
		return "", err
	}
	state, err := vm.PowerState(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get power state of %s: %w", name, err)
	}
	return string(state), nil
}

// PowerOff is a no-op for a VM that is already off.
func (m *VMManager) PowerOff(ctx context.Context, name string) error {
	vm, err := m.FindVM(ctx, name)
	if err != nil {
		return err
	}
	state, err := vm.PowerState(ctx)
	if err != nil {
		return fmt.Errorf("failed to get power state of %s: %w", name, err)
	}
	if state == types.VirtualMachinePowerStatePoweredOff {
		return nil
	}

	zap.S().Named("vmware").Infow("powering off source vm", "vm", name)
	task, err := vm.PowerOff(ctx)
	if err != nil {
		return fmt.Errorf("failed to power off %s: %w", name, err)
	}
	return task.Wait(ctx)
}
