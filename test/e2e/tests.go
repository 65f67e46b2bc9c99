package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/suites"
	"github.com/kubev2v/virt-harness/internal/suites/virsh"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/recorder"
	"github.com/kubev2v/virt-harness/pkg/session"
	"github.com/kubev2v/virt-harness/test/e2e/infra"
)

var _ = Describe("virt-harness e2e", Ordered, func() {
	var (
		ctx context.Context
		env *checkpoint.Env
		d   *checkpoint.Dispatcher
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		env, err = infraManager.Env()
		Expect(err).NotTo(HaveOccurred())
		d = checkpoint.NewDispatcher(suites.Registry(), env)
	})

	requireTools := func(tools ...string) {
		for _, t := range tools {
			if !infraManager.Available(t) {
				Skip(t + " is not installed")
			}
		}
	}

	Context("guestfish session", func() {
		BeforeEach(func() {
			requireTools(infra.ToolGuestfish)
		})

		// Given a guestfish appliance launched on a blank disk
		// When augeas is initialized on / and a node is set
		// Then aug-get should print the value back
		It("should set and get an augeas node", func() {
			// Arrange
			disk := filepath.Join(env.WorkDir, "blank.img")
			Expect(os.WriteFile(disk, nil, 0o600)).To(Succeed())
			Expect(os.Truncate(disk, 64<<20)).To(Succeed())
			defer os.Remove(disk) //nolint:errcheck

			s, res, err := session.Launch(ctx, session.Guestfish(env.Tools.Guestfish), models.SessionConfig{
				Drives:  []models.Drive{{Path: disk, Format: "raw"}},
				Backend: env.Backend,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Failed()).To(BeFalse())
			defer s.Close()

			// Act
			initRes, err := s.AugInit(ctx, "/", 0)
			Expect(err).NotTo(HaveOccurred())
			setRes, err := s.AugSet(ctx, "/files/etc/passwd/root/home", "/root")
			Expect(err).NotTo(HaveOccurred())
			getRes, err := s.AugGet(ctx, "/files/etc/passwd/root/home")
			Expect(err).NotTo(HaveOccurred())

			// Assert
			Expect(initRes.ExitStatus).To(Equal(0), initRes.Stderr)
			Expect(setRes.ExitStatus).To(Equal(0), setRes.Stderr)
			Expect(getRes.ExitStatus).To(Equal(0), getRes.Stderr)
			Expect(getRes.Stdout).To(Equal("/root\n"))
		})
	})

	Context("augeas checkpoints", func() {
		BeforeEach(func() {
			requireTools(infra.ToolGuestfish, infra.ToolQemuImg)
		})

		DescribeTable("should pass on a prepared image",
			func(name string) {
				o := d.Run(ctx, name, params.New(nil))

				Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
			},
			Entry("aug_set_get", "aug_set_get"),
			Entry("aug_clear", "aug_clear"),
			Entry("aug_rm", "aug_rm"),
			Entry("aug_match", "aug_match"),
		)

		It("should pass aug_clear over both image formats", func() {
			sweep := checkpoint.Sweep{{Key: params.KeyImageFormat, Values: []string{"raw", "qcow2"}}}

			outcomes, err := d.RunSweep(ctx, "aug_clear", params.New(nil), sweep, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcomes).To(HaveLen(2))
			for _, o := range outcomes {
				Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
			}
		})
	})

	Context("dispatcher", func() {
		It("should reject an unknown checkpoint without running a command", func() {
			rec := recorder.NewLog(uuid.New())

			_, err := d.Dispatch(ctx, "no_such_checkpoint", params.New(nil), rec)

			Expect(srvErrors.IsUnknownCheckpointError(err)).To(BeTrue())
			Expect(rec.Entries()).To(BeEmpty())
		})

		It("should error on an unsupported filesystem before touching the work directory", func() {
			// Arrange
			before, err := os.ReadDir(env.WorkDir)
			Expect(err).NotTo(HaveOccurred())

			// Act
			o := d.Run(ctx, "write_cat", params.New(map[string]string{params.KeyFSType: "zfs"}))

			// Assert
			Expect(o.Record.Verdict).To(Equal(models.VerdictError))
			Expect(o.Record.Reason).To(ContainSubstring("zfs"))
			after, err := os.ReadDir(env.WorkDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(HaveLen(len(before)))
		})
	})

	Context("virsh", func() {
		BeforeEach(func() {
			requireTools(infra.ToolVirsh)
		})

		It("should report a version", func() {
			o := d.Run(ctx, "version", params.New(nil))

			Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
		})

		It("should start and destroy a domain", func() {
			domain := cfg.Domain
			if domain == "" {
				if cfg.InfraMode == "fake" {
					domain = "e2e-guest"
				} else {
					Skip("no -domain given")
				}
			}

			o := d.Run(ctx, "start_destroy", params.New(map[string]string{virsh.KeyDomain: domain}))

			Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
		})
	})

	Context("v2v", func() {
		It("should report the nbdkit version", func() {
			requireTools(infra.ToolNbdkit)

			o := d.Run(ctx, "nbdkit_version", params.New(nil))

			Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
		})

		It("should convert a prepared disk", func() {
			requireTools(infra.ToolV2V, infra.ToolGuestfish, infra.ToolQemuImg)

			o := d.Run(ctx, "convert_disk", params.New(nil))

			Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
		})
	})
})
