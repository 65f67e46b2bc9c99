// Package prepare builds disk image fixtures: qemu-img creates the image,
// then a guestfish session partitions it and makes a filesystem.
package prepare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/pkg/command"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/session"
)

const DefaultSize = "100M"

var (
	Formats        = []string{"raw", "qcow2", "vmdk", "vdi", "vpc", "vhdx", "qed"}
	PartitionTypes = []string{"mbr", "msdos", "gpt"}
	FSTypes        = []string{"ext2", "ext3", "ext4", "xfs", "vfat", "btrfs", "ntfs"}
)

// Spec describes the fixture to build. An empty PartitionType puts the
// filesystem on the whole device; an empty FSType leaves the disk blank.
type Spec struct {
	Dir           string
	Name          string
	Format        string
	Size          string
	PartitionType string
	FSType        string
}

// SpecFromParams maps the image_* and *_type test parameters to a Spec.
func SpecFromParams(p params.Params, dir string) Spec {
	return Spec{
		Dir:           dir,
		Name:          p.Get(params.KeyImageName),
		Format:        p.String(params.KeyImageFormat, "raw"),
		Size:          p.String(params.KeyImageSize, DefaultSize),
		PartitionType: p.Get(params.KeyPartitionType),
		FSType:        p.Get(params.KeyFSType),
	}
}

// Validate rejects values no external tool is asked to handle.
func (s Spec) Validate() error {
	if !slices.Contains(Formats, s.Format) {
		return srvErrors.NewUnsupportedError("image format", s.Format, Formats)
	}
	if s.PartitionType != "" && !slices.Contains(PartitionTypes, s.PartitionType) {
		return srvErrors.NewUnsupportedError("partition type", s.PartitionType, PartitionTypes)
	}
	if s.FSType != "" && !slices.Contains(FSTypes, s.FSType) {
		return srvErrors.NewUnsupportedError("filesystem type", s.FSType, FSTypes)
	}
	if s.Dir == "" {
		return errors.New("image directory is required")
	}
	return nil
}

func (s Spec) path() string {
	name := s.Name
	if name == "" {
		name = "fixture-" + uuid.NewString()[:8]
	}
	if filepath.Ext(name) == "" {
		name += "." + s.Format
	}
	return filepath.Join(s.Dir, name)
}

// Image is a prepared fixture owned by one test.
type Image struct {
	Path   string
	Format string
	// Device holds the filesystem, empty when none was made.
	Device string
	Spec   Spec

	once sync.Once
	err  error
}

// Drive returns the image as a session drive.
func (i *Image) Drive(readonly bool) models.Drive {
	return models.Drive{Path: i.Path, Format: i.Format, Readonly: readonly}
}

// Cleanup removes the image file. Calling it again returns the first result.
func (i *Image) Cleanup() error {
	i.once.Do(func() {
		if err := os.Remove(i.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			i.err = fmt.Errorf("failed to remove image %s: %w", i.Path, err)
		}
	})
	return i.err
}

type Preparer struct {
	runner    command.Runner
	qemuImg   string
	guestfish session.Dialect
	backend   string
	opts      []session.Option
}

func NewPreparer(runner command.Runner, qemuImg string, guestfish session.Dialect, backend string, opts ...session.Option) *Preparer {
	if qemuImg == "" {
		qemuImg = "qemu-img"
	}
	return &Preparer{
		runner:    runner,
		qemuImg:   qemuImg,
		guestfish: guestfish,
		backend:   backend,
		opts:      opts,
	}
}

// Prepare validates spec and builds the image. On error nothing is left on
// disk.
func (p *Preparer) Prepare(ctx context.Context, spec Spec) (*Image, error) {
	if spec.Size == "" {
		spec.Size = DefaultSize
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	img := &Image{Path: spec.path(), Format: spec.Format, Spec: spec}
	log := zap.S().Named("preparer").With("image", img.Path)

	if _, err := os.Stat(img.Path); err == nil {
		return nil, fmt.Errorf("image %s already exists", img.Path)
	}

	if err := p.build(ctx, img); err != nil {
		log.Errorw("failed to prepare image", "error", err)
		return nil, multierr.Append(err, img.Cleanup())
	}

	log.Infow("image prepared", "format", spec.Format, "size", spec.Size, "partition_type", spec.PartitionType, "fs_type", spec.FSType)
	return img, nil
}

func (p *Preparer) build(ctx context.Context, img *Image) error {
	spec := img.Spec

	res, err := p.runner.Run(ctx, p.qemuImg, "create", "-f", spec.Format, img.Path, spec.Size)
	if err != nil {
		return err
	}
	if res.Failed() {
		return fmt.Errorf("failed to create image: %s", res)
	}

	if spec.PartitionType == "" && spec.FSType == "" {
		return nil
	}

	cfg := models.SessionConfig{
		Drives:  []models.Drive{img.Drive(false)},
		Backend: p.backend,
	}
	return session.With(ctx, p.guestfish, cfg, func(s *session.Session) error {
		device := "/dev/sda"
		if spec.PartitionType != "" {
			if err := succeeded(s.PartDisk(ctx, device, spec.PartitionType)); err != nil {
				return err
			}
			device = "/dev/sda1"
		}
		if spec.FSType != "" {
			if err := succeeded(s.Mkfs(ctx, spec.FSType, device)); err != nil {
				return err
			}
			img.Device = device
		}
		return nil
	}, p.opts...)
}

func succeeded(res models.CommandResult, err error) error {
	if err != nil {
		return err
	}
	if res.Failed() {
		return fmt.Errorf("failed to prepare image: %s", res)
	}
	return nil
}
