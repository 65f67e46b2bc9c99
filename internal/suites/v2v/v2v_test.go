package v2v_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/suites/v2v"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/test"
)

type fakeSource struct {
	state      string
	poweredOff []string
	privErr    error
}

func (f *fakeSource) PowerState(ctx context.Context, vm string) (string, error) {
	return f.state, nil
}

func (f *fakeSource) PowerOff(ctx context.Context, vm string) error {
	f.state = "poweredOff"
	f.poweredOff = append(f.poweredOff, vm)
	return nil
}

func (f *fakeSource) ValidatePrivileges(ctx context.Context, vm string, privileges []string) error {
	return f.privErr
}

var _ = Describe("v2v checkpoints", func() {
	var (
		ctx context.Context
		env *checkpoint.Env
		d   *checkpoint.Dispatcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		env, err = test.FakeEnv(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		registry := checkpoint.NewRegistry()
		v2v.Register(registry)
		d = checkpoint.NewDispatcher(registry, env)
	})

	It("should convert the fixture disk", func() {
		o := d.Run(ctx, "convert_disk", params.New(nil))

		Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
		Expect(o.Entries).To(ContainElement(And(
			HaveField("Kind", models.LogKindCommand),
			HaveField("Text", ContainSubstring("-o local")),
		)))
	})

	It("should fail when the expected output is missing", func() {
		o := d.Run(ctx, "convert_disk", params.New(map[string]string{v2v.KeyExpectOutput: "Converting Windows"}))

		Expect(o.Record.Verdict).To(Equal(models.VerdictFail))
	})

	DescribeTable("should report tool versions",
		func(name string) {
			o := d.Run(ctx, name, params.New(nil))

			Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
		},
		Entry("nbdkit", "nbdkit_version"),
		Entry("virt-v2v", "v2v_version"),
	)

	Context("with a vSphere source", func() {
		It("should skip without a source", func() {
			o := d.Run(ctx, "vsphere_source_off", params.New(map[string]string{v2v.KeyDomain: "vm1"}))

			Expect(o.Record.Verdict).To(Equal(models.VerdictSkip))
		})

		// Given a powered on source VM
		// When the checkpoint runs with power off allowed
		// Then the VM should be powered off before virt-v2v converts it
		It("should power off the source and convert it", func() {
			source := &fakeSource{state: "poweredOn"}
			env.Source = source
			env.SourceURI = "vpx://vcenter.example.com/DC0/host/H0?no_verify=1"

			o := d.Run(ctx, "vsphere_source_off", params.New(map[string]string{v2v.KeyDomain: "vm1"}))

			Expect(o.Record.Verdict).To(Equal(models.VerdictPass), o.Record.Reason)
			Expect(source.poweredOff).To(Equal([]string{"vm1"}))
			Expect(o.Entries).To(ContainElement(HaveField("Text", "powered off source vm vm1")))
		})

		It("should skip a running source when power off is not allowed", func() {
			source := &fakeSource{state: "poweredOn"}
			env.Source = source
			env.SourceURI = "vpx://vcenter.example.com/DC0/host/H0"

			o := d.Run(ctx, "vsphere_source_off", params.New(map[string]string{
				v2v.KeyDomain:   "vm1",
				v2v.KeyPowerOff: "no",
			}))

			Expect(o.Record.Verdict).To(Equal(models.VerdictSkip))
			Expect(source.poweredOff).To(BeEmpty())
		})

		It("should error when the user lacks privileges", func() {
			env.Source = &fakeSource{state: "poweredOff", privErr: errors.New("missing System.View")}
			env.SourceURI = "vpx://vcenter.example.com/DC0/host/H0"

			o := d.Run(ctx, "vsphere_source_off", params.New(map[string]string{v2v.KeyDomain: "vm1"}))

			Expect(o.Record.Verdict).To(Equal(models.VerdictError))
			Expect(o.Record.Reason).To(ContainSubstring("System.View"))
		})
	})
})
