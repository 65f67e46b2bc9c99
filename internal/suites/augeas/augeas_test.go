package augeas_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/suites/augeas"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/test"
)

var _ = Describe("augeas checkpoints", func() {
	var (
		ctx context.Context
		d   *checkpoint.Dispatcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		env, err := test.FakeEnv(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		registry := checkpoint.NewRegistry()
		augeas.Register(registry)
		d = checkpoint.NewDispatcher(registry, env)
	})

	It("should register every checkpoint under the module", func() {
		Expect(d.Registry().Names()).To(ConsistOf(
			"aug_init", "aug_set_get", "aug_clear", "aug_rm", "aug_match", "aug_defvar",
			"aug_insert", "aug_mv", "aug_label", "aug_ls", "aug_save",
		))
		Expect(d.Registry().List(augeas.Module)).To(HaveLen(11))
	})

	DescribeTable("should pass against a working guestfish",
		func(name string) {
			o := d.Run(ctx, name, params.New(nil))

			Expect(o.Err).NotTo(HaveOccurred())
			Expect(o.Record.Verdict).To(Equal(models.VerdictPass))
		},
		Entry("aug_init", "aug_init"),
		Entry("aug_set_get", "aug_set_get"),
		Entry("aug_clear", "aug_clear"),
		Entry("aug_rm", "aug_rm"),
		Entry("aug_match", "aug_match"),
		Entry("aug_defvar", "aug_defvar"),
		Entry("aug_insert", "aug_insert"),
		Entry("aug_mv", "aug_mv"),
		Entry("aug_label", "aug_label"),
		Entry("aug_ls", "aug_ls"),
		Entry("aug_save", "aug_save"),
	)

	// Given a launched session on a prepared image
	// When aug-set then aug-get run on the same path
	// Then the get should print the value and every step be logged
	It("should log the set and get round trip", func() {
		o := d.Run(ctx, "aug_set_get", params.New(map[string]string{
			augeas.KeyPath:  "/files/etc/passwd/root/shell",
			augeas.KeyValue: "/bin/zsh",
		}))

		Expect(o.Record.Verdict).To(Equal(models.VerdictPass))
		var commands []string
		for _, e := range o.Entries {
			if e.Kind == models.LogKindCommand {
				commands = append(commands, strings.SplitN(e.Text, "\n", 2)[0])
			}
		}
		Expect(commands).To(ContainElements(
			ContainSubstring("aug-init / 0"),
			ContainSubstring("aug-set /files/etc/passwd/root/shell /bin/zsh"),
			ContainSubstring("aug-get /files/etc/passwd/root/shell"),
		))
		Expect(o.Entries).To(ContainElement(And(
			HaveField("Kind", models.LogKindAssertion),
			HaveField("Passed", true),
			HaveField("Text", ContainSubstring("/bin/zsh")),
		)))
	})

	It("should fail when success was not expected", func() {
		o := d.Run(ctx, "aug_set_get", params.New(map[string]string{"status_error": "yes"}))

		Expect(o.Record.Verdict).To(Equal(models.VerdictFail))
		Expect(o.Record.Reason).To(ContainSubstring("expected failure"))
	})

	It("should error when the fixture has no filesystem", func() {
		o := d.Run(ctx, "aug_clear", params.New(map[string]string{"fs_type": "", "partition_type": ""}))

		Expect(o.Record.Verdict).To(Equal(models.VerdictError))
		Expect(o.Record.Reason).To(ContainSubstring("no filesystem"))
	})

	It("should sweep over image formats", func() {
		sweep := checkpoint.Sweep{{Key: params.KeyImageFormat, Values: []string{"raw", "qcow2", "vmdk"}}}

		outcomes, err := d.RunSweep(ctx, "aug_clear", params.New(nil), sweep, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(outcomes).To(HaveLen(3))
		for _, o := range outcomes {
			Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
		}
	})
})
