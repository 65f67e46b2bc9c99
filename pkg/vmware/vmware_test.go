package vmware_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/vmware/govmomi/simulator"

	"github.com/kubev2v/virt-harness/pkg/vmware"
)

var _ = Describe("VMManager", func() {
	var (
		ctx context.Context
		m   *vmware.VMManager
	)

	BeforeEach(func() {
		ctx = context.Background()

		model := simulator.VPX()
		Expect(model.Create()).To(Succeed())
		server := model.Service.NewServer()
		DeferCleanup(model.Remove)
		DeferCleanup(server.Close)

		var err error
		m, err = vmware.NewVMManager(ctx, server.URL.String(), "", "", "", true)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = m.Logout(ctx) })
	})

	// Given a running source vm
	// When we power it off
	// Then its power state should be poweredOff
	It("should power off a running vm", func() {
		state, err := m.PowerState(ctx, "DC0_H0_VM0")
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(Equal("poweredOn"))

		Expect(m.PowerOff(ctx, "DC0_H0_VM0")).To(Succeed())

		state, err = m.PowerState(ctx, "DC0_H0_VM0")
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(Equal("poweredOff"))

		// already off
		Expect(m.PowerOff(ctx, "DC0_H0_VM0")).To(Succeed())
	})

	It("should fail for an unknown vm", func() {
		_, err := m.PowerState(ctx, "missing")

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("failed to find vm missing"))
	})

	It("should reject an invalid url", func() {
		_, err := vmware.NewVMManager(ctx, "://bad", "", "", "", true)

		Expect(err).To(HaveOccurred())
	})
})
