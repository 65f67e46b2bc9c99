package vmware

import (
	"context"
	"fmt"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/types"
)

// ValidateUserPrivilegesOnEntity checks whether the specified user has all the required privileges
// on a given vSphere entity (e.g., VM, folder, datacenter).
func ValidateUserPrivilegesOnEntity(
	ctx context.Context,
	client *vim25.Client,
	ref types.ManagedObjectReference,
	requiredPrivileges []string,
	username string,
) error {
	authManager := object.NewAuthorizationManager(client)

	results, err := authManager.FetchUserPrivilegeOnEntities(ctx, []types.ManagedObjectReference{ref}, username)
	if err != nil {
		return fmt.Errorf("failed to fetch user privileges: %w", err)
	}

	if len(results) == 0 {
		return fmt.Errorf("no privileges returned for user %s", username)
	}

	return missingPrivileges(username, results[0].Privileges, requiredPrivileges)
}

// ValidatePrivileges checks the conversion user against the named VM.
func (m *VMManager) ValidatePrivileges(ctx context.Context, name string, requiredPrivileges []string) error {
	vm, err := m.FindVM(ctx, name)
	if err != nil {
		return err
	}
	return ValidateUserPrivilegesOnEntity(ctx, m.gc.Client, vm.Reference(), requiredPrivileges, m.username)
}
