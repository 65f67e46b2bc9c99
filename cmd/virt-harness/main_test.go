package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/kubev2v/virt-harness/api/v1"
	"github.com/kubev2v/virt-harness/test"
)

var _ = Describe("virt-harness", func() {
	var (
		ctx            context.Context
		dir            string
		stdout, stderr *bytes.Buffer
		toolFlags      []string
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}

		env, err := test.FakeEnv(dir)
		Expect(err).NotTo(HaveOccurred())
		toolFlags = []string{
			"--no-color",
			"--log-level", "error",
			"--guestfish", env.Tools.Guestfish,
			"--virsh", env.Tools.Virsh,
			"--virsh-uri", env.Tools.VirshURI,
			"--qemu-img", env.Tools.QemuImg,
			"--virt-v2v", env.Tools.V2V,
			"--nbdkit", env.Tools.Nbdkit,
			"--work-dir", env.WorkDir,
		}
	})

	exec := func(args ...string) int {
		return run(ctx, args, stdout, stderr)
	}

	Context("run", func() {
		It("should pass a single checkpoint and exit 0", func() {
			// Act
			code := exec(append([]string{"run", "--checkpoint", "write_cat", "--no-progress"}, toolFlags...)...)

			// Assert
			Expect(code).To(Equal(0), stderr.String())
			Expect(stdout.String()).To(ContainSubstring("PASS"))
			Expect(stdout.String()).To(ContainSubstring("adhoc/write_cat"))
		})

		It("should exit 1 when a checkpoint fails", func() {
			code := exec(append([]string{
				"run", "--checkpoint", "write_cat", "--no-progress",
				"--param", "fs_file=/missing/file",
			}, toolFlags...)...)

			Expect(code).To(Equal(1))
			Expect(stdout.String()).To(ContainSubstring("FAIL"))
		})

		It("should exit 2 and run nothing on an unknown checkpoint", func() {
			code := exec(append([]string{"run", "--checkpoint", "write_cat,no_such_checkpoint", "--no-progress"}, toolFlags...)...)

			Expect(code).To(Equal(2))
			Expect(stderr.String()).To(ContainSubstring("no_such_checkpoint"))
			Expect(stdout.String()).NotTo(ContainSubstring("PASS"))
		})

		It("should exit 2 when there is nothing to run", func() {
			code := exec(append([]string{"run"}, toolFlags...)...)

			Expect(code).To(Equal(2))
		})

		It("should exit 2 on a malformed parameter", func() {
			code := exec(append([]string{"run", "--checkpoint", "write_cat", "--param", "novalue"}, toolFlags...)...)

			Expect(code).To(Equal(2))
		})

		It("should run the scenarios of a file", func() {
			// Arrange
			file := filepath.Join(dir, "scenarios.yaml")
			Expect(os.WriteFile(file, []byte(`
name: fs-smoke
checkpoints: [write_cat, touch_exists]
`), 0o600)).To(Succeed())

			// Act
			code := exec(append([]string{"run", file, "--no-progress"}, toolFlags...)...)

			// Assert
			Expect(code).To(Equal(0), stderr.String())
			Expect(stdout.String()).To(ContainSubstring("fs-smoke/write_cat"))
			Expect(stdout.String()).To(ContainSubstring("fs-smoke/touch_exists"))
		})
	})

	Context("checkpoints", func() {
		It("should list every checkpoint", func() {
			code := exec("checkpoints")

			Expect(code).To(Equal(0))
			Expect(stdout.String()).To(ContainSubstring("NAME"))
			Expect(stdout.String()).To(ContainSubstring("write_cat"))
			Expect(stdout.String()).To(ContainSubstring("domstate"))
		})

		It("should filter by module", func() {
			code := exec("checkpoints", "--module", "virsh")

			Expect(code).To(Equal(0))
			Expect(stdout.String()).To(ContainSubstring("domstate"))
			Expect(stdout.String()).NotTo(ContainSubstring("write_cat"))
		})

		It("should reject an unknown module", func() {
			code := exec("checkpoints", "--module", "nope")

			Expect(code).To(Equal(2))
			Expect(stderr.String()).To(ContainSubstring("unknown module"))
		})
	})

	Context("runs", func() {
		// Given a data folder holding the runs of an earlier invocation
		// When runs is listed as json
		// Then the recorded run should be returned
		It("should list persisted runs", func() {
			data := filepath.Join(dir, "data")
			code := exec(append([]string{"run", "--checkpoint", "touch_exists", "--no-progress", "--data-folder", data}, toolFlags...)...)
			Expect(code).To(Equal(0), stderr.String())
			stdout.Reset()

			code = exec("runs", "--data-folder", data, "--output", "json", "--log-level", "error")

			Expect(code).To(Equal(0), stderr.String())
			var resp v1.RunListResponse
			Expect(json.Unmarshal(stdout.Bytes(), &resp)).To(Succeed())
			Expect(resp.Total).To(Equal(1))
			Expect(resp.Runs).To(HaveLen(1))
			Expect(resp.Runs[0].Checkpoint).To(Equal("touch_exists"))
			Expect(resp.Runs[0].Scenario).To(Equal("adhoc"))

			stdout.Reset()
			code = exec("runs", "log", resp.Runs[0].Id, "--data-folder", data, "--log-level", "error")

			Expect(code).To(Equal(0), stderr.String())
			Expect(stdout.String()).To(ContainSubstring("touch_exists"))
		})

		It("should reject an invalid output format", func() {
			code := exec("runs", "--output", "xml")

			Expect(code).To(Equal(2))
		})

		It("should reject an invalid run id", func() {
			code := exec("runs", "log", "not-a-uuid")

			Expect(code).To(Equal(2))
			Expect(stderr.String()).To(ContainSubstring("invalid run id"))
		})
	})

	Context("export", func() {
		It("should write a workbook", func() {
			out := filepath.Join(dir, "runs.xlsx")

			code := exec("export", "-o", out)

			Expect(code).To(Equal(0), stderr.String())
			info, err := os.Stat(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Size()).To(BeNumerically(">", 0))
		})
	})

	It("should print the version", func() {
		code := exec("version")

		Expect(code).To(Equal(0))
		Expect(stdout.String()).To(HavePrefix("virt-harness " + version))
	})
})
