package assert_test

import (
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/pkg/assert"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/recorder"
)

var _ = Describe("Comparator", func() {
	var (
		log *recorder.Log
		c   *assert.Comparator
		ok  models.CommandResult
		bad models.CommandResult
	)

	BeforeEach(func() {
		log = recorder.NewLog(uuid.New())
		c = assert.New(log)
		ok = models.CommandResult{Command: "aug-get /files/etc/passwd/root/home", Stdout: "/root\n"}
		bad = models.CommandResult{
			Command:    "aug-get /files/etc/passwd/root/shell",
			ExitStatus: 1,
			Stderr:     "libguestfs: error: aug_get: no matching node\n",
		}
	})

	Context("ExitStatus", func() {
		It("should pass a successful command when success is expected", func() {
			Expect(c.ExitStatus(ok, false)).To(Succeed())
		})

		It("should pass a failed command when failure is expected", func() {
			Expect(c.ExitStatus(bad, true)).To(Succeed())
		})

		// Given a failed command
		// When success was expected
		// Then the error should carry the exit status and the output
		It("should fail with UnexpectedExitStatus", func() {
			err := c.ExitStatus(bad, false)

			Expect(srvErrors.IsUnexpectedExitStatus(err)).To(BeTrue())
			Expect(srvErrors.IsTestFailure(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("exit status 1"))
			Expect(err.Error()).To(ContainSubstring("no matching node"))
		})

		It("should fail a successful command when failure is expected", func() {
			err := c.ExitStatus(ok, true)

			Expect(srvErrors.IsUnexpectedExitStatus(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("expected failure"))
		})
	})

	Context("OutputContains", func() {
		It("should find a substring in stdout", func() {
			Expect(c.OutputContains(ok, "root", true)).To(Succeed())
		})

		It("should find a substring in stderr", func() {
			Expect(c.OutputContains(bad, "no matching node", true)).To(Succeed())
		})

		It("should pass when an absent pattern is expected absent", func() {
			Expect(c.OutputContains(ok, "error", false)).To(Succeed())
		})

		// Given an output without the pattern
		// When we expect the pattern
		// Then OutputMismatch should carry pattern and actual text
		It("should fail with OutputMismatch", func() {
			err := c.OutputContains(ok, "/home/root", true)

			var mismatch *srvErrors.OutputMismatch
			Expect(err).To(BeAssignableToTypeOf(mismatch))
			mismatch = err.(*srvErrors.OutputMismatch)
			Expect(mismatch.Pattern).To(Equal("/home/root"))
			Expect(mismatch.Actual).To(Equal("/root\n"))
		})

		It("should fail when an unwanted pattern is present", func() {
			err := c.OutputContains(bad, "error", false)

			Expect(srvErrors.IsOutputMismatch(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("not contain"))
		})
	})

	Context("OutputMatches", func() {
		It("should match a regular expression", func() {
			res := models.CommandResult{Command: "nbdkit --version", Stdout: "nbdkit 1.36.1\n"}
			Expect(c.OutputMatches(res, `^nbdkit \d+\.\d+`, true)).To(Succeed())
		})

		It("should return a harness error for an invalid expression", func() {
			err := c.OutputMatches(ok, "(", true)

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsTestFailure(err)).To(BeFalse())
		})
	})

	Context("OutputEquals", func() {
		DescribeTable("should compare after trimming one trailing newline",
			func(stdout, expected string, equal bool) {
				res := models.CommandResult{Command: "cat /f", Stdout: stdout}
				err := c.OutputEquals(res, expected)
				if equal {
					Expect(err).NotTo(HaveOccurred())
				} else {
					Expect(srvErrors.IsOutputMismatch(err)).To(BeTrue())
				}
				// equivalent to exact comparison with the newline removed
				Expect(err == nil).To(Equal(assert.TrimNewline(stdout) == assert.TrimNewline(expected)))
			},
			Entry("trailing newline", "/root\n", "/root", true),
			Entry("both with newline", "/root\n", "/root\n", true),
			Entry("no newline", "/root", "/root", true),
			Entry("two newlines", "/root\n\n", "/root", false),
			Entry("different", "/root\n", "/home", false),
			Entry("empty", "\n", "", true),
			Entry("leading blank kept", " /root\n", "/root", false),
		)
	})

	It("should record every assertion", func() {
		_ = c.ExitStatus(ok, false)
		_ = c.OutputContains(ok, "nope", true)

		entries := log.Entries()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Kind).To(Equal(models.LogKindAssertion))
		Expect(entries[0].Passed).To(BeTrue())
		Expect(entries[1].Passed).To(BeFalse())
	})

	It("should read status_error", func() {
		Expect(assert.ExpectFailure(params.New(map[string]string{"status_error": "yes"}))).To(BeTrue())
		Expect(assert.ExpectFailure(params.New(nil))).To(BeFalse())
	})
})
