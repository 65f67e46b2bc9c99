package suites_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/internal/suites"
)

var _ = Describe("Registry", func() {
	It("should register every module without name clashes", func() {
		r := suites.Registry()

		for _, module := range suites.Modules {
			Expect(r.List(module)).NotTo(BeEmpty(), module)
		}
		Expect(r.Names()).To(ContainElements("aug_clear", "write_cat", "domstate", "convert_disk"))
	})

	It("should describe every checkpoint", func() {
		for _, cp := range suites.Registry().List("") {
			Expect(cp.Description).NotTo(BeEmpty(), cp.Name)
		}
	})
})
