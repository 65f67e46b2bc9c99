package checkpoint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/pkg/assert"
	"github.com/kubev2v/virt-harness/pkg/command"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/prepare"
	"github.com/kubev2v/virt-harness/pkg/recorder"
	"github.com/kubev2v/virt-harness/pkg/session"
	"github.com/kubev2v/virt-harness/pkg/virsh"
)

const KeyAttachMethod = "gf_attach_method"

// Case is what a checkpoint body gets: its parameters, the optional fixture
// and collaborators bound to the run recorder.
type Case struct {
	Name    string
	Params  params.Params
	Image   *prepare.Image
	WorkDir string
	Check   *assert.Comparator
	Log     *zap.SugaredLogger
	Env     *Env

	rec    recorder.Recorder
	runner command.Runner
}

func (c *Case) Recorder() recorder.Recorder {
	return c.rec
}

func (c *Case) Note(format string, args ...any) {
	c.rec.Note(fmt.Sprintf(format, args...))
}

// ExpectFailure reads status_error.
func (c *Case) ExpectFailure() bool {
	return c.Params.ExpectFailure()
}

// Run runs a one-shot command.
func (c *Case) Run(ctx context.Context, name string, args ...string) (models.CommandResult, error) {
	return c.runner.Run(ctx, name, args...)
}

func (c *Case) Virsh() *virsh.Client {
	return virsh.NewClient(c.runner, c.Env.Tools.Virsh, c.Env.Tools.VirshURI)
}

func (c *Case) GuestfishDialect() session.Dialect {
	return session.Guestfish(c.Env.Tools.Guestfish)
}

// SessionOptions bind sessions to the run recorder and timeout.
func (c *Case) SessionOptions() []session.Option {
	opts := []session.Option{session.WithRecorder(c.rec)}
	if c.Env.SessionTimeout > 0 {
		opts = append(opts, session.WithTimeout(c.Env.SessionTimeout))
	}
	return opts
}

// AddRefs are the gf_add_ref values SessionConfig accepts. Adding the
// drives of a libvirt domain ("domain") is not supported.
var AddRefs = []string{"disk"}

// SessionConfig adds the fixture image, read-only when gf_add_readonly is
// set.
func (c *Case) SessionConfig() (models.SessionConfig, error) {
	if ref := c.Params.Get(params.KeyAddRef); ref != "" && ref != "disk" {
		return models.SessionConfig{}, srvErrors.NewUnsupportedError(params.KeyAddRef, ref, AddRefs)
	}
	cfg := models.SessionConfig{
		Backend:      c.Env.Backend,
		AttachMethod: c.Params.Get(KeyAttachMethod),
	}
	if c.Image != nil {
		cfg.Drives = append(cfg.Drives, c.Image.Drive(c.Params.Bool(params.KeyAddReadonly, false)))
	}
	return cfg, nil
}

// Guestfish launches a guestfish session on the fixture, runs fn and closes
// the session on every path.
func (c *Case) Guestfish(ctx context.Context, fn func(s *session.Session) error) error {
	cfg, err := c.SessionConfig()
	if err != nil {
		return err
	}
	return session.With(ctx, c.GuestfishDialect(), cfg, fn, c.SessionOptions()...)
}

// Launch is Guestfish for bodies that assert on the launch result itself.
// The caller owns the session.
func (c *Case) Launch(ctx context.Context) (*session.Session, models.CommandResult, error) {
	cfg, err := c.SessionConfig()
	if err != nil {
		return nil, models.CommandResult{}, err
	}
	return session.Launch(ctx, c.GuestfishDialect(), cfg, c.SessionOptions()...)
}
