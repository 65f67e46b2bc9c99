package command_test

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/pkg/command"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/recorder"
	"github.com/kubev2v/virt-harness/test"
)

var _ = Describe("ExecRunner", func() {
	var (
		ctx context.Context
		r   *command.ExecRunner
	)

	BeforeEach(func() {
		ctx = context.Background()
		r = command.NewExecRunner(5 * time.Second)
	})

	It("should capture stdout, stderr and exit status", func() {
		res, err := r.Run(ctx, "sh", "-c", "echo out; echo err >&2; exit 4")

		Expect(err).NotTo(HaveOccurred())
		Expect(res.ExitStatus).To(Equal(4))
		Expect(res.Stdout).To(Equal("out\n"))
		Expect(res.Stderr).To(Equal("err\n"))
		Expect(res.Command).To(Equal(`sh -c 'echo out; echo err >&2; exit 4'`))
	})

	It("should return LaunchError when the binary is missing", func() {
		_, err := r.Run(ctx, filepath.Join(GinkgoT().TempDir(), "missing"))

		Expect(srvErrors.IsLaunchError(err)).To(BeTrue())
	})

	// Given a command outliving the runner timeout
	// When it runs
	// Then it should be killed and reported as a timeout fault
	It("should kill the command on timeout", func() {
		r = command.NewExecRunner(200 * time.Millisecond)
		start := time.Now()

		res, err := r.Run(ctx, "sleep", "30")

		Expect(time.Since(start)).To(BeNumerically("<", 10*time.Second))
		var fault *srvErrors.ProcessFault
		Expect(err).To(BeAssignableToTypeOf(fault))
		Expect(err.(*srvErrors.ProcessFault).TimedOut()).To(BeTrue())
		Expect(res.ExitStatus).To(Equal(-1))
	})

	It("should report a cancelled context as a fault", func() {
		cctx, cancel := context.WithCancel(ctx)
		time.AfterFunc(100*time.Millisecond, cancel)

		_, err := r.Run(cctx, "sleep", "30")

		Expect(srvErrors.IsProcessFault(err)).To(BeTrue())
		Expect(err.(*srvErrors.ProcessFault).TimedOut()).To(BeFalse())
	})

	It("should feed stdin", func() {
		res, err := r.RunWithPipe(ctx, strings.NewReader("hello\n"), "cat")

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stdout).To(Equal("hello\n"))
	})

	It("should record commands", func() {
		log := recorder.NewLog(uuid.New())

		_, err := r.WithRecorder(log).Run(ctx, "true")

		Expect(err).NotTo(HaveOccurred())
		Expect(log.Entries()).To(HaveLen(1))
	})

	It("should run fake tools", func() {
		bin, err := test.FakeNbdkit(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		res, err := r.Run(ctx, bin, "--version")

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stdout).To(HavePrefix("nbdkit 1."))
	})
})

var _ = DescribeTable("Join",
	func(args []string, expected string) {
		Expect(command.Join("virsh", args...)).To(Equal(expected))
	},
	Entry("plain", []string{"domstate", "vm1"}, "virsh domstate vm1"),
	Entry("blank", []string{"desc", "a b"}, "virsh desc 'a b'"),
	Entry("empty", []string{""}, "virsh ''"),
	Entry("single quote", []string{"it's"}, `virsh 'it'\''s'`),
)
