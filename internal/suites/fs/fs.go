// Package fs checks basic file I/O through guestfish on every combination of
// image format, partition table and filesystem.
package fs

import (
	"context"

	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/session"
)

const Module = "fs"

const (
	KeyFile    = "fs_file"
	KeyContent = "fs_content"
)

var defaults = map[string]string{
	params.KeyImageFormat:   "raw",
	params.KeyPartitionType: "mbr",
	params.KeyFSType:        "ext4",
	params.KeyMountPoint:    "/",
	KeyFile:                 "/test_file",
	KeyContent:              "hello guestfish",
}

func Register(r *checkpoint.Registry) {
	r.Register(Module,
		checkpoint.Checkpoint{
			Name:        "write_cat",
			Description: "a file written in the guest reads back unchanged",
			NeedsImage:  true,
			Defaults:    defaults,
			Run:         writeCat,
		},
		checkpoint.Checkpoint{
			Name:        "touch_exists",
			Description: "a touched file exists and an untouched one does not",
			NeedsImage:  true,
			Defaults:    defaults,
			Run:         touchExists,
		},
	)
}

func mounted(ctx context.Context, c *checkpoint.Case, fn func(s *session.Session) error) error {
	return c.Guestfish(ctx, func(s *session.Session) error {
		res, err := s.Mount(ctx, c.Image.Device, c.Params.Get(params.KeyMountPoint))
		if err != nil {
			return err
		}
		if err := c.Check.ExitStatus(res, false); err != nil {
			return err
		}
		return fn(s)
	})
}

func writeCat(ctx context.Context, c *checkpoint.Case) error {
	file, content := c.Params.Get(KeyFile), c.Params.Get(KeyContent)

	return mounted(ctx, c, func(s *session.Session) error {
		res, err := s.Write(ctx, file, content)
		if err != nil {
			return err
		}
		if err := c.Check.ExitStatus(res, c.ExpectFailure()); err != nil || res.Failed() {
			return err
		}

		res, err = s.Cat(ctx, file)
		if err != nil {
			return err
		}
		if err := c.Check.ExitStatus(res, false); err != nil {
			return err
		}
		return c.Check.OutputEquals(res, content)
	})
}

func touchExists(ctx context.Context, c *checkpoint.Case) error {
	file := c.Params.Get(KeyFile)

	return mounted(ctx, c, func(s *session.Session) error {
		res, err := s.Exists(ctx, file)
		if err != nil {
			return err
		}
		if err := c.Check.OutputEquals(res, "false"); err != nil {
			return err
		}

		res, err = s.Touch(ctx, file)
		if err != nil {
			return err
		}
		if err := c.Check.ExitStatus(res, false); err != nil {
			return err
		}

		res, err = s.Exists(ctx, file)
		if err != nil {
			return err
		}
		return c.Check.OutputEquals(res, "true")
	})
}
