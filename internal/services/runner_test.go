package services_test

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/services"
	"github.com/kubev2v/virt-harness/internal/store"
	"github.com/kubev2v/virt-harness/internal/store/migrations"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/scenario"
	"github.com/kubev2v/virt-harness/pkg/scheduler"
	"github.com/kubev2v/virt-harness/test"
)

// demoRegistry holds checkpoints that need no external tool.
func demoRegistry() *checkpoint.Registry {
	return checkpoint.NewRegistry().Register("demo",
		checkpoint.Checkpoint{
			Name: "echo_ok",
			Run: func(ctx context.Context, c *checkpoint.Case) error {
				c.Note("value=%s", c.Params.Get("value"))
				return nil
			},
		},
		checkpoint.Checkpoint{
			Name: "echo_fail",
			Run: func(ctx context.Context, c *checkpoint.Case) error {
				return srvErrors.NewOutputMismatch("echo", "contains", "expected", "actual", true)
			},
		},
		checkpoint.Checkpoint{
			Name: "block",
			Run: func(ctx context.Context, c *checkpoint.Case) error {
				<-ctx.Done()
				return ctx.Err()
			},
		},
	)
}

var _ = Describe("Runner", func() {
	var (
		ctx     context.Context
		db      *sql.DB
		st      *store.Store
		sched   *scheduler.Scheduler
		runner  *services.Runner
		workDir string
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		st = store.NewStore(db)

		dir := GinkgoT().TempDir()
		env, err := test.FakeEnv(dir)
		Expect(err).NotTo(HaveOccurred())
		workDir = env.WorkDir

		sched = scheduler.NewScheduler(1)
		runner = services.NewRunnerService(checkpoint.NewDispatcher(demoRegistry(), env), sched, st)
	})

	AfterEach(func() {
		sched.Close()
		db.Close()
	})

	Context("Plan", func() {
		It("should count checkpoints times combinations", func() {
			total, err := runner.Plan([]scenario.Scenario{
				{Name: "a", Module: "demo", Sweep: checkpoint.Sweep{{Key: "value", Values: []string{"1", "2"}}}},
				{Name: "b", Checkpoints: []string{"echo_ok"}},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(3*2 + 1))
		})

		It("should reject an unknown checkpoint", func() {
			_, err := runner.Plan([]scenario.Scenario{{Name: "a", Checkpoints: []string{"nope"}}})

			Expect(srvErrors.IsUnknownCheckpointError(err)).To(BeTrue())
		})
	})

	Context("Run", func() {
		// Given a scenario sweeping one checkpoint over two values
		// When we run it
		// Then both runs should be returned, saved and reported in order
		It("should run, persist and report every combination", func() {
			// Arrange
			var (
				mu   sync.Mutex
				seen []string
			)
			runner.WithProgress(func(name string, o checkpoint.Outcome) {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, name+"/"+o.Record.Params["value"])
			})
			sc := scenario.Scenario{
				Name:        "nightly",
				Checkpoints: []string{"echo_ok"},
				Params:      params.New(map[string]string{"extra": "x"}),
				Sweep:       checkpoint.Sweep{{Key: "value", Values: []string{"a", "b"}}},
			}

			// Act
			result, err := runner.Run(ctx, []scenario.Scenario{sc})

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Summary).To(Equal(models.RunSummary{Total: 2, Passed: 2}))
			Expect(result.Scenarios).To(HaveLen(1))
			Expect(result.Scenarios[0].Err).NotTo(HaveOccurred())
			Expect(result.Scenarios[0].Outcomes[0].Record.Scenario).To(Equal("nightly"))
			Expect(seen).To(Equal([]string{"nightly/a", "nightly/b"}))

			runs, err := st.Runs().List(ctx, store.ByScenario("nightly"))
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))

			entries, err := st.Logs().List(ctx, result.Scenarios[0].Outcomes[1].Record.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Text).To(Equal("value=b"))
		})

		It("should keep the order of scenarios in the result", func() {
			result, err := runner.Run(ctx, []scenario.Scenario{
				{Name: "first", Checkpoints: []string{"echo_fail"}},
				{Name: "second", Checkpoints: []string{"echo_ok"}},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Scenarios[0].Scenario).To(Equal("first"))
			Expect(result.Scenarios[0].Summary.Failed).To(Equal(1))
			Expect(result.Scenarios[1].Summary.Passed).To(Equal(1))
			Expect(result.Summary.OK()).To(BeFalse())
		})

		// Given a scenario naming an unknown checkpoint
		// When we run it with a valid one
		// Then nothing should run or be saved
		It("should not run anything when a checkpoint is unknown", func() {
			_, err := runner.Run(ctx, []scenario.Scenario{
				{Name: "good", Checkpoints: []string{"echo_ok"}},
				{Name: "bad", Checkpoints: []string{"missing"}},
			})

			Expect(srvErrors.IsUnknownCheckpointError(err)).To(BeTrue())
			count, err := st.Runs().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
			files, err := os.ReadDir(workDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(BeEmpty())
		})

		It("should stop a scenario at its timeout and save the error run", func() {
			result, err := runner.Run(ctx, []scenario.Scenario{
				{Name: "slow", Checkpoints: []string{"block"}, Timeout: 200 * time.Millisecond},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Summary.Errors).To(Equal(1))
			count, err := st.Runs().Count(ctx, store.ByVerdict(models.VerdictError))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("should return when the caller cancels", func() {
			runCtx, cancel := context.WithCancel(ctx)
			go func() {
				time.Sleep(200 * time.Millisecond)
				cancel()
			}()

			done := make(chan struct{})
			var err error
			go func() {
				defer close(done)
				_, err = runner.Run(runCtx, []scenario.Scenario{
					{Name: "slow", Checkpoints: []string{"block"}},
					{Name: "queued", Checkpoints: []string{"echo_ok"}},
				})
			}()

			Eventually(done, 5*time.Second).Should(BeClosed())
			Expect(err).To(MatchError(context.Canceled))
			count, cerr := st.Runs().Count(ctx, store.ByScenario("queued"))
			Expect(cerr).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})
})
