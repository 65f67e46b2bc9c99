package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/config"
	"github.com/kubev2v/virt-harness/internal/store"
	"github.com/kubev2v/virt-harness/internal/store/migrations"
	"github.com/kubev2v/virt-harness/internal/suites"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/vmware"
)

// app holds what every command shares: the run database and the registry.
type app struct {
	cfg      *config.Configuration
	db       *sql.DB
	store    *store.Store
	registry *checkpoint.Registry
	source   *vmware.VMManager
}

func newApp(ctx context.Context, cfg *config.Configuration) (*app, error) {
	if cfg.Harness.DataFolder != "" {
		if err := os.MkdirAll(cfg.Harness.DataFolder, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data folder: %w", err)
		}
	}

	db, err := store.NewDB(cfg.Harness.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate run database: %w", err)
	}

	return &app{
		cfg:      cfg,
		db:       db,
		store:    store.NewStore(db),
		registry: suites.Registry(),
	}, nil
}

// env builds the checkpoint environment. It logs into vCenter when one is
// configured.
func (a *app) env(ctx context.Context) (*checkpoint.Env, error) {
	workDir := a.cfg.Harness.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	env := &checkpoint.Env{
		Tools: checkpoint.Tools{
			Guestfish: a.cfg.Tools.Guestfish,
			Virsh:     a.cfg.Tools.Virsh,
			VirshURI:  a.cfg.Tools.VirshURI,
			QemuImg:   a.cfg.Tools.QemuImg,
			V2V:       a.cfg.Tools.V2V,
			Nbdkit:    a.cfg.Tools.Nbdkit,
		},
		Backend:        a.cfg.Libguestfs.Backend,
		WorkDir:        workDir,
		CommandTimeout: a.cfg.Harness.CommandTimeout,
		SessionTimeout: a.cfg.Harness.SessionTimeout,
		SourceURI:      a.cfg.VSphere.SourceURI,
	}

	if a.cfg.VSphere.Enabled() {
		v := a.cfg.VSphere
		m, err := vmware.NewVMManager(ctx, v.URL, v.Username, v.Password, v.Datacenter, v.Insecure)
		if err != nil {
			return nil, err
		}
		a.source = m
		env.Source = m
	}

	return env, nil
}

func (a *app) Close(ctx context.Context) error {
	var err error
	if a.source != nil {
		err = multierr.Append(err, a.source.Logout(ctx))
	}
	err = multierr.Append(err, a.store.Close())
	if err != nil {
		zap.S().Warnw("failed to close", "error", err)
	}
	return err
}
