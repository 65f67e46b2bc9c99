package prepare_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/pkg/command"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/prepare"
	"github.com/kubev2v/virt-harness/pkg/session"
	"github.com/kubev2v/virt-harness/test"
)

var _ = Describe("Preparer", func() {
	var (
		ctx       context.Context
		toolsDir  string
		imagesDir string
		qemuImg   string
		guestfish session.Dialect
		p         *prepare.Preparer
	)

	BeforeEach(func() {
		ctx = context.Background()
		toolsDir = GinkgoT().TempDir()
		imagesDir = GinkgoT().TempDir()

		var err error
		qemuImg, err = test.FakeQemuImg(toolsDir)
		Expect(err).NotTo(HaveOccurred())
		gf, err := test.FakeGuestfish(toolsDir)
		Expect(err).NotTo(HaveOccurred())
		guestfish = session.Guestfish(gf)

		p = prepare.NewPreparer(command.NewExecRunner(10*time.Second), qemuImg, guestfish, "direct")
	})

	listImages := func() []string {
		entries, err := os.ReadDir(imagesDir)
		Expect(err).NotTo(HaveOccurred())
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return names
	}

	Context("Prepare", func() {
		// Given a supported format, partition and filesystem
		// When we prepare the image
		// Then the file should exist with the filesystem on the first partition
		It("should create a partitioned image", func() {
			img, err := p.Prepare(ctx, prepare.Spec{
				Dir:           imagesDir,
				Name:          "disk",
				Format:        "qcow2",
				PartitionType: "mbr",
				FSType:        "ext4",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(img.Path).To(Equal(filepath.Join(imagesDir, "disk.qcow2")))
			Expect(img.Device).To(Equal("/dev/sda1"))
			Expect(img.Path).To(BeAnExistingFile())

			Expect(img.Cleanup()).To(Succeed())
			Expect(img.Path).NotTo(BeAnExistingFile())
			Expect(img.Cleanup()).To(Succeed())
		})

		It("should put the filesystem on the whole disk without a partition type", func() {
			img, err := p.Prepare(ctx, prepare.Spec{Dir: imagesDir, Format: "raw", FSType: "xfs"})

			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(img.Cleanup)
			Expect(img.Device).To(Equal("/dev/sda"))
		})

		It("should leave a blank disk without partition and filesystem", func() {
			img, err := p.Prepare(ctx, prepare.Spec{Dir: imagesDir, Format: "raw", Size: "1M"})

			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(img.Cleanup)
			Expect(img.Device).To(BeEmpty())
			info, err := os.Stat(img.Path)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Size()).To(Equal(int64(1024 * 1024)))
		})

		// Given an unsupported filesystem type
		// When we prepare the image
		// Then it should fail before running any tool and leave nothing on disk
		It("should fail fast on an unsupported filesystem", func() {
			runner := test.NewMockRunner()
			p = prepare.NewPreparer(runner, qemuImg, guestfish, "direct")

			_, err := p.Prepare(ctx, prepare.Spec{Dir: imagesDir, Format: "raw", PartitionType: "mbr", FSType: "zfs"})

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsUnsupportedError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(`unsupported filesystem type "zfs"`))
			Expect(runner.Calls()).To(BeEmpty())
			Expect(listImages()).To(BeEmpty())
		})

		It("should reject an unsupported partition type", func() {
			_, err := p.Prepare(ctx, prepare.Spec{Dir: imagesDir, Format: "raw", PartitionType: "apm"})

			Expect(srvErrors.IsUnsupportedError(err)).To(BeTrue())
		})

		It("should reject an unsupported format", func() {
			_, err := p.Prepare(ctx, prepare.Spec{Dir: imagesDir, Format: "iso"})

			Expect(srvErrors.IsUnsupportedError(err)).To(BeTrue())
		})

		// Given a guestfish that cannot start
		// When we prepare a formatted image
		// Then the half-created image should be removed
		It("should remove the image when partitioning fails", func() {
			broken, err := test.FailingTool(toolsDir, "broken-guestfish", 1, "libguestfs: error: cannot find any suitable libguestfs supermin")
			Expect(err).NotTo(HaveOccurred())
			p = prepare.NewPreparer(command.NewExecRunner(10*time.Second), qemuImg, session.Guestfish(broken), "direct")

			_, err = p.Prepare(ctx, prepare.Spec{Dir: imagesDir, Format: "raw", PartitionType: "gpt", FSType: "ext4"})

			Expect(srvErrors.IsLaunchError(err)).To(BeTrue())
			Expect(listImages()).To(BeEmpty())
		})

		It("should return an error when qemu-img fails", func() {
			broken, err := test.FailingTool(toolsDir, "broken-qemu-img", 1, "qemu-img: Could not create: Permission denied")
			Expect(err).NotTo(HaveOccurred())
			p = prepare.NewPreparer(command.NewExecRunner(10*time.Second), broken, guestfish, "direct")

			_, err = p.Prepare(ctx, prepare.Spec{Dir: imagesDir, Format: "raw"})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Permission denied"))
			Expect(listImages()).To(BeEmpty())
		})

		It("should not overwrite an existing image", func() {
			existing := filepath.Join(imagesDir, "disk.raw")
			Expect(os.WriteFile(existing, []byte("keep"), 0o644)).To(Succeed())

			_, err := p.Prepare(ctx, prepare.Spec{Dir: imagesDir, Name: "disk", Format: "raw"})

			Expect(err).To(HaveOccurred())
			Expect(os.ReadFile(existing)).To(Equal([]byte("keep")))
		})
	})

	Context("SpecFromParams", func() {
		It("should map test parameters", func() {
			spec := prepare.SpecFromParams(params.New(map[string]string{
				"image_format":   "qcow2",
				"partition_type": "gpt",
				"fs_type":        "ext3",
				"image_name":     "fs_test",
			}), imagesDir)

			Expect(spec).To(Equal(prepare.Spec{
				Dir:           imagesDir,
				Name:          "fs_test",
				Format:        "qcow2",
				Size:          prepare.DefaultSize,
				PartitionType: "gpt",
				FSType:        "ext3",
			}))
		})

		It("should default to a raw image", func() {
			spec := prepare.SpecFromParams(params.New(nil), imagesDir)

			Expect(spec.Format).To(Equal("raw"))
			Expect(spec.Validate()).To(Succeed())
		})
	})
})
