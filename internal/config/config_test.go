package config_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/internal/config"
)

var _ = Describe("Configuration", func() {
	It("should fill the defaults", func() {
		cfg := config.NewConfigurationWithOptionsAndDefaults()

		Expect(cfg.Server.HTTPPort).To(Equal(8000))
		Expect(cfg.Harness.NumWorkers).To(Equal(1))
		Expect(cfg.Harness.CommandTimeout).To(Equal(10 * time.Minute))
		Expect(cfg.Harness.ScenarioTimeout).To(Equal(30 * time.Minute))
		Expect(cfg.Tools.Guestfish).To(Equal("guestfish"))
		Expect(cfg.Tools.VirshURI).To(Equal("qemu:///system"))
		Expect(cfg.Libguestfs.Backend).To(Equal("direct"))
		Expect(cfg.LogLevel).To(Equal("info"))
		Expect(cfg.VSphere.Enabled()).To(BeFalse())
	})

	It("should apply options over the defaults", func() {
		cfg := config.NewConfigurationWithOptionsAndDefaults(
			config.WithHarness(*config.NewHarnessWithOptionsAndDefaults(
				config.WithNumWorkers(4),
				config.WithDataFolder("/var/lib/virt-harness"),
			)),
			config.WithLogLevel("debug"),
		)

		Expect(cfg.Harness.NumWorkers).To(Equal(4))
		Expect(cfg.Harness.SessionTimeout).To(Equal(5 * time.Minute))
		Expect(cfg.Harness.DatabasePath()).To(Equal("/var/lib/virt-harness/virt-harness.duckdb"))
		Expect(cfg.LogLevel).To(Equal("debug"))
	})

	It("should keep runs in memory without a data folder", func() {
		Expect(config.Harness{}.DatabasePath()).To(Equal(":memory:"))
	})

	It("should hide the vSphere password in the debug map", func() {
		v := config.NewVSphereWithOptionsAndDefaults(
			config.WithURL("https://vcenter.example.com/sdk"),
			config.WithUsername("administrator@vsphere.local"),
			config.WithPassword("secret"),
		)

		debug := v.DebugMap()
		Expect(v.Enabled()).To(BeTrue())
		Expect(debug["Username"]).To(Equal("administrator@vsphere.local"))
		Expect(debug["Password"]).NotTo(Equal("secret"))
	})
})
