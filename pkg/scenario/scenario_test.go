package scenario_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/scenario"
)

const matrix = `
name: fs-matrix
module: fs
checkpoints: [write_cat]
timeout: 20m
params:
  image_size: 200M
  retries: 3
  gf_add_readonly: no
sweep:
  - key: image_format
    values: [raw, qcow2]
  - key: fs_type
    values: [ext4, xfs, vfat]
---
module: augeas
repeat: 2
`

func noop(context.Context, *checkpoint.Case) error { return nil }

var _ = Describe("Parse", func() {
	It("should read every document", func() {
		scenarios, err := scenario.Parse(strings.NewReader(matrix), "/etc/vh/nightly.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(scenarios).To(HaveLen(3))

		s := scenarios[0]
		Expect(s.Name).To(Equal("fs-matrix"))
		Expect(s.Module).To(Equal("fs"))
		Expect(s.Checkpoints).To(Equal([]string{"write_cat"}))
		Expect(s.Timeout).To(Equal(20 * time.Minute))
		Expect(s.Params.Get("image_size")).To(Equal("200M"))
		Expect(s.Params.Get("retries")).To(Equal("3"))
		Expect(s.Params.Bool("gf_add_readonly", true)).To(BeFalse())
		Expect(s.Sweep).To(HaveLen(2))
		Expect(s.Sweep[0].Key).To(Equal("image_format"))
		Expect(s.Sweep.Size()).To(Equal(6))

		Expect(scenarios[1].Name).To(Equal("nightly-2#1"))
		Expect(scenarios[2].Name).To(Equal("nightly-2#2"))
		Expect(scenarios[1].Timeout).To(Equal(scenario.DefaultTimeout))
		Expect(scenarios[1].Source).To(Equal("/etc/vh/nightly.yaml"))
	})

	It("should put a single checkpoint first", func() {
		scenarios, err := scenario.Parse(strings.NewReader("checkpoint: aug_clear\ncheckpoints: [aug_rm]\n"), "x.yaml")

		Expect(err).NotTo(HaveOccurred())
		Expect(scenarios[0].Checkpoints).To(Equal([]string{"aug_clear", "aug_rm"}))
	})

	DescribeTable("should reject",
		func(doc, reason string) {
			_, err := scenario.Parse(strings.NewReader(doc), "bad.yaml")

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(reason))
		},
		Entry("no module nor checkpoint", "name: empty\n", "module or checkpoint is required"),
		Entry("bad timeout", "module: fs\ntimeout: soon\n", "invalid duration"),
		Entry("unknown field", "module: fs\nchekpoint: x\n", "chekpoint"),
		Entry("duplicate sweep key", "module: fs\nsweep:\n- key: a\n  values: [1]\n- key: a\n  values: [2]\n", "given twice"),
		Entry("sweep without key", "module: fs\nsweep:\n- values: [1]\n", "without key"),
		Entry("zero repeat", "module: fs\nrepeat: 0\n", "repeat"),
	)
})

var _ = Describe("Load", func() {
	It("should read yaml files of a directory in order", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "b.yml"), []byte("module: virsh\n"), 0o600)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("module: fs\n"), 0o600)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600)).To(Succeed())

		scenarios, err := scenario.Load(dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(scenarios).To(HaveLen(2))
		Expect(scenarios[0].Name).To(Equal("a"))
		Expect(scenarios[1].Name).To(Equal("b"))
	})

	It("should fail on a missing path", func() {
		_, err := scenario.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Resolve", func() {
	var registry *checkpoint.Registry

	BeforeEach(func() {
		registry = checkpoint.NewRegistry().
			Register("fs", checkpoint.Checkpoint{Name: "write_cat", Run: noop}, checkpoint.Checkpoint{Name: "touch_exists", Run: noop}).
			Register("virsh", checkpoint.Checkpoint{Name: "domstate", Run: noop})
	})

	It("should expand a module to its checkpoints", func() {
		names, err := scenario.Scenario{Name: "s", Module: "fs"}.Resolve(registry)

		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(Equal([]string{"touch_exists", "write_cat"}))
	})

	It("should reject unknown checkpoints", func() {
		_, err := scenario.Scenario{Name: "s", Checkpoints: []string{"aug_nope"}}.Resolve(registry)

		Expect(srvErrors.IsUnknownCheckpointError(err)).To(BeTrue())
	})

	It("should reject a checkpoint of another module", func() {
		_, err := scenario.Scenario{Name: "s", Module: "fs", Checkpoints: []string{"domstate"}}.Resolve(registry)

		Expect(err).To(MatchError(ContainSubstring("belongs to module virsh")))
	})

	It("should count the runs", func() {
		s := scenario.Scenario{
			Name:   "s",
			Module: "fs",
			Sweep:  checkpoint.Sweep{{Key: "image_format", Values: []string{"raw", "qcow2", "vmdk"}}},
		}

		Expect(s.Runs(registry)).To(Equal(6))
	})
})
