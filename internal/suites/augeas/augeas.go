// Package augeas holds the guestfish aug-* checkpoints. Each one runs on a
// freshly prepared image with a minimal /etc/passwd, so lenses have a file
// to parse.
package augeas

import (
	"context"
	"fmt"
	"strings"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/session"
)

const Module = "augeas"

// Parameters read by the checkpoints on top of the fixture ones.
const (
	KeyRoot  = "aug_root"
	KeyFlags = "aug_flags"
	KeyPath  = "aug_path"
	KeyValue = "aug_value"
	KeyDest  = "aug_dest"
	KeyLabel = "aug_label"
	KeyMatch = "aug_match"
	KeyVar   = "aug_var"
)

const passwd = "root:x:0:0:root:/root:/bin/bash\n"

var defaults = map[string]string{
	"image_format":   "raw",
	"partition_type": "mbr",
	"fs_type":        "ext4",
	KeyRoot:          "/",
	KeyFlags:         "0",
	KeyPath:          "/files/etc/passwd/root/home",
	KeyValue:         "/root",
}

// body runs inside a guestfish session on the seeded fixture.
type body func(ctx context.Context, c *checkpoint.Case, s *session.Session) error

// Register adds the augeas checkpoints to r.
func Register(r *checkpoint.Registry) {
	r.Register(Module,
		cp("aug_init", "aug-init on a mounted guest succeeds unless status_error is set", augInit),
		cp("aug_set_get", "aug-set followed by aug-get returns the value", initialized(augSetGet)),
		cp("aug_clear", "aug-get fails once the node was cleared", initialized(augClear)),
		cp("aug_rm", "aug-rm removes the node and reports the count", initialized(augRm)),
		cp("aug_match", "aug-match lists the nodes set", initialized(augMatch)),
		cp("aug_defvar", "a variable defined with aug-defvar resolves in aug-get", initialized(augDefvar)),
		cp("aug_insert", "aug-insert adds a sibling label", initialized(augInsert)),
		cp("aug_mv", "aug-mv moves the value to the destination", initialized(augMv)),
		cp("aug_label", "aug-label prints the last path component", initialized(augLabel)),
		cp("aug_ls", "aug-ls lists the children of the parent node", initialized(augLs)),
		cp("aug_save", "aug-save after aug-set succeeds", initialized(augSave)),
	)
}

func cp(name, description string, fn body) checkpoint.Checkpoint {
	return checkpoint.Checkpoint{
		Name:        name,
		Description: description,
		NeedsImage:  true,
		Defaults:    defaults,
		Run: func(ctx context.Context, c *checkpoint.Case) error {
			return c.Guestfish(ctx, func(s *session.Session) error {
				if err := seed(ctx, c, s); err != nil {
					return err
				}
				return fn(ctx, c, s)
			})
		},
	}
}

// seed mounts the fixture and writes the files the lenses load.
func seed(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	if c.Image.Device == "" {
		return fmt.Errorf("image %s has no filesystem to mount", c.Image.Path)
	}
	steps := []func() (models.CommandResult, error){
		func() (models.CommandResult, error) { return s.Mount(ctx, c.Image.Device, "/") },
		func() (models.CommandResult, error) { return s.MkdirP(ctx, "/etc") },
		func() (models.CommandResult, error) { return s.Write(ctx, "/etc/passwd", passwd) },
	}
	for _, step := range steps {
		res, err := step()
		if err != nil {
			return err
		}
		if res.Failed() {
			return fmt.Errorf("failed to seed guest: %s", res)
		}
	}
	return nil
}

// initialized runs fn between aug-init and aug-close.
func initialized(fn body) body {
	return func(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
		res, err := s.AugInit(ctx, c.Params.Get(KeyRoot), c.Params.Int(KeyFlags, 0))
		if err != nil {
			return err
		}
		if res.Failed() {
			return fmt.Errorf("failed to initialize augeas: %s", res)
		}
		defer s.AugClose(ctx) //nolint:errcheck
		return fn(ctx, c, s)
	}
}

// set runs aug-set and requires it to succeed.
func set(ctx context.Context, c *checkpoint.Case, s *session.Session, path, value string) error {
	res, err := s.AugSet(ctx, path, value)
	if err != nil {
		return err
	}
	return c.Check.ExitStatus(res, false)
}

func augInit(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	res, err := s.AugInit(ctx, c.Params.Get(KeyRoot), c.Params.Int(KeyFlags, 0))
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, c.ExpectFailure()); err != nil {
		return err
	}
	if !res.Failed() {
		if _, err := s.AugClose(ctx); err != nil {
			return err
		}
	}
	return nil
}

func augSetGet(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	path, value := c.Params.Get(KeyPath), c.Params.Get(KeyValue)

	res, err := s.AugSet(ctx, path, value)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, c.ExpectFailure()); err != nil || res.Failed() {
		return err
	}

	res, err = s.AugGet(ctx, path)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}
	return c.Check.OutputEquals(res, value)
}

func augClear(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	path := c.Params.Get(KeyPath)
	if err := set(ctx, c, s, path, c.Params.Get(KeyValue)); err != nil {
		return err
	}

	res, err := s.AugClear(ctx, path)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}

	res, err = s.AugGet(ctx, path)
	if err != nil {
		return err
	}
	return c.Check.ExitStatus(res, true)
}

func augRm(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	path := c.Params.Get(KeyPath)
	if err := set(ctx, c, s, path, c.Params.Get(KeyValue)); err != nil {
		return err
	}

	res, err := s.AugRm(ctx, path)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}
	if err := c.Check.OutputEquals(res, "1"); err != nil {
		return err
	}

	res, err = s.AugMatch(ctx, path)
	if err != nil {
		return err
	}
	return c.Check.OutputContains(res, path, false)
}

func augMatch(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	path := c.Params.Get(KeyPath)
	if err := set(ctx, c, s, path, c.Params.Get(KeyValue)); err != nil {
		return err
	}

	expr := c.Params.String(KeyMatch, parent(path)+"/*")
	res, err := s.AugMatch(ctx, expr)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}
	return c.Check.OutputContains(res, path, true)
}

func augDefvar(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	path, value := c.Params.Get(KeyPath), c.Params.Get(KeyValue)
	if err := set(ctx, c, s, path, value); err != nil {
		return err
	}

	name := c.Params.String(KeyVar, "node")
	res, err := s.AugDefvar(ctx, name, path)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}
	if err := c.Check.OutputEquals(res, "1"); err != nil {
		return err
	}

	res, err = s.AugGet(ctx, "$"+name)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}
	return c.Check.OutputEquals(res, value)
}

func augInsert(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	path := c.Params.Get(KeyPath)
	if err := set(ctx, c, s, path, c.Params.Get(KeyValue)); err != nil {
		return err
	}

	label := c.Params.String(KeyLabel, "shell")
	res, err := s.AugInsert(ctx, path, label, true)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, c.ExpectFailure()); err != nil || res.Failed() {
		return err
	}

	res, err = s.AugMatch(ctx, parent(path)+"/*")
	if err != nil {
		return err
	}
	return c.Check.OutputContains(res, parent(path)+"/"+label, true)
}

func augMv(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	path, value := c.Params.Get(KeyPath), c.Params.Get(KeyValue)
	if err := set(ctx, c, s, path, value); err != nil {
		return err
	}

	dest := c.Params.String(KeyDest, parent(path)+"/moved")
	res, err := s.AugMv(ctx, path, dest)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}

	res, err = s.AugGet(ctx, dest)
	if err != nil {
		return err
	}
	if err := c.Check.OutputEquals(res, value); err != nil {
		return err
	}

	res, err = s.AugGet(ctx, path)
	if err != nil {
		return err
	}
	return c.Check.ExitStatus(res, true)
}

func augLabel(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	path := c.Params.Get(KeyPath)
	if err := set(ctx, c, s, path, c.Params.Get(KeyValue)); err != nil {
		return err
	}

	res, err := s.AugLabel(ctx, path)
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}
	return c.Check.OutputEquals(res, c.Params.String(KeyLabel, label(path)))
}

func augLs(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	path := c.Params.Get(KeyPath)
	if err := set(ctx, c, s, path, c.Params.Get(KeyValue)); err != nil {
		return err
	}

	res, err := s.AugLs(ctx, parent(path))
	if err != nil {
		return err
	}
	if err := c.Check.ExitStatus(res, false); err != nil {
		return err
	}
	return c.Check.OutputContains(res, path, true)
}

func augSave(ctx context.Context, c *checkpoint.Case, s *session.Session) error {
	if err := set(ctx, c, s, c.Params.Get(KeyPath), c.Params.Get(KeyValue)); err != nil {
		return err
	}

	res, err := s.AugSave(ctx)
	if err != nil {
		return err
	}
	return c.Check.ExitStatus(res, c.ExpectFailure())
}

func parent(path string) string {
	if i := strings.LastIndex(path, "/"); i > 0 {
		return path[:i]
	}
	return "/"
}

func label(path string) string {
	l := path[strings.LastIndex(path, "/")+1:]
	if i := strings.Index(l, "["); i >= 0 {
		l = l[:i]
	}
	return l
}
