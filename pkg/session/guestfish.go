package session

import (
	"context"
	"strconv"

	"github.com/kubev2v/virt-harness/internal/models"
)

// Typed wrappers for guestfish commands. They only format arguments; the
// result is whatever the tool printed, success or not.

func (s *Session) AugInit(ctx context.Context, root string, flags int) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-init", root, strconv.Itoa(flags))
}

func (s *Session) AugClose(ctx context.Context) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-close")
}

func (s *Session) AugSet(ctx context.Context, path, value string) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-set", path, value)
}

func (s *Session) AugGet(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-get", path)
}

// AugClear sets the node at path to have no value.
func (s *Session) AugClear(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-clear", path)
}

// AugRm removes every node matching path and prints the count.
func (s *Session) AugRm(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-rm", path)
}

func (s *Session) AugMatch(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-match", path)
}

func (s *Session) AugSave(ctx context.Context) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-save")
}

// AugDefvar defines an augeas variable. An empty expr undefines it.
func (s *Session) AugDefvar(ctx context.Context, name, expr string) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-defvar", name, expr)
}

func (s *Session) AugInsert(ctx context.Context, path, label string, before bool) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-insert", path, label, strconv.FormatBool(before))
}

func (s *Session) AugMv(ctx context.Context, src, dest string) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-mv", src, dest)
}

func (s *Session) AugLs(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-ls", path)
}

func (s *Session) AugLabel(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "aug-label", path)
}

func (s *Session) Mount(ctx context.Context, device, mountpoint string) (models.CommandResult, error) {
	return s.Invoke(ctx, "mount", device, mountpoint)
}

func (s *Session) Umount(ctx context.Context, mountpoint string) (models.CommandResult, error) {
	return s.Invoke(ctx, "umount", mountpoint)
}

// PartDisk creates a single partition spanning the device. parttype is
// mbr/msdos, gpt, ...
func (s *Session) PartDisk(ctx context.Context, device, parttype string) (models.CommandResult, error) {
	return s.Invoke(ctx, "part-disk", device, parttype)
}

func (s *Session) Mkfs(ctx context.Context, fstype, device string) (models.CommandResult, error) {
	return s.Invoke(ctx, "mkfs", fstype, device)
}

func (s *Session) Write(ctx context.Context, path, content string) (models.CommandResult, error) {
	return s.Invoke(ctx, "write", path, content)
}

func (s *Session) Cat(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "cat", path)
}

func (s *Session) Touch(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "touch", path)
}

func (s *Session) Exists(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "exists", path)
}

// Alloc creates a preallocated image on the host side.
func (s *Session) Alloc(ctx context.Context, path, size string) (models.CommandResult, error) {
	return s.Invoke(ctx, "alloc", path, size)
}

func (s *Session) Sparse(ctx context.Context, path, size string) (models.CommandResult, error) {
	return s.Invoke(ctx, "sparse", path, size)
}

func (s *Session) Upload(ctx context.Context, local, remote string) (models.CommandResult, error) {
	return s.Invoke(ctx, "upload", local, remote)
}

func (s *Session) Download(ctx context.Context, remote, local string) (models.CommandResult, error) {
	return s.Invoke(ctx, "download", remote, local)
}

// Shutdown syncs and stops the appliance; the shell stays usable.
func (s *Session) Shutdown(ctx context.Context) (models.CommandResult, error) {
	return s.Invoke(ctx, "shutdown")
}

func (s *Session) ListFilesystems(ctx context.Context) (models.CommandResult, error) {
	return s.Invoke(ctx, "list-filesystems")
}

func (s *Session) MkdirP(ctx context.Context, path string) (models.CommandResult, error) {
	return s.Invoke(ctx, "mkdir-p", path)
}
