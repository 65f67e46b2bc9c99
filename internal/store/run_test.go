package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/store"
	"github.com/kubev2v/virt-harness/internal/store/migrations"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
)

func newRun(scenario, checkpoint string, verdict models.Verdict, started time.Time) models.RunRecord {
	return models.RunRecord{
		ID:         uuid.New(),
		Scenario:   scenario,
		Module:     "augeas",
		Checkpoint: checkpoint,
		Params:     map[string]string{"image_format": "raw", "status_error": "no"},
		Verdict:    verdict,
		Reason:     string(verdict) + " reason",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
}

var _ = Describe("RunStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
		t0  time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("Get", func() {
		// Given an empty run store
		// When we get a run
		// Then it should return ResourceNotFoundError
		It("should return ResourceNotFoundError for an unknown run", func() {
			// Act
			_, err := s.Runs().Get(ctx, uuid.New())

			// Assert
			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		// Given a saved run
		// When we retrieve it by id
		// Then every field should round trip
		It("should return the saved run", func() {
			// Arrange
			run := newRun("nightly", "aug_clear", models.VerdictFail, t0)
			Expect(s.Runs().Save(ctx, run)).To(Succeed())

			// Act
			got, err := s.Runs().Get(ctx, run.ID)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(run.ID))
			Expect(got.Scenario).To(Equal("nightly"))
			Expect(got.Module).To(Equal("augeas"))
			Expect(got.Checkpoint).To(Equal("aug_clear"))
			Expect(got.Params).To(Equal(run.Params))
			Expect(got.Verdict).To(Equal(models.VerdictFail))
			Expect(got.Reason).To(Equal("fail reason"))
			Expect(got.StartedAt).To(BeTemporally("==", t0))
			Expect(got.Duration()).To(Equal(3 * time.Second))
		})
	})

	Context("Save", func() {
		It("should update the verdict of an existing run", func() {
			// Arrange
			run := newRun("nightly", "aug_clear", models.VerdictError, t0)
			Expect(s.Runs().Save(ctx, run)).To(Succeed())

			// Act
			run.Verdict = models.VerdictPass
			run.Reason = ""
			Expect(s.Runs().Save(ctx, run)).To(Succeed())

			// Assert
			got, err := s.Runs().Get(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Verdict).To(Equal(models.VerdictPass))
			Expect(got.Reason).To(BeEmpty())
			count, err := s.Runs().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("should store a run without params", func() {
			run := newRun("", "version", models.VerdictPass, t0)
			run.Params = nil
			Expect(s.Runs().Save(ctx, run)).To(Succeed())

			got, err := s.Runs().Get(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Params).To(BeEmpty())
		})
	})

	Context("List", func() {
		BeforeEach(func() {
			runs := []models.RunRecord{
				newRun("nightly", "aug_clear", models.VerdictPass, t0),
				newRun("nightly", "aug_rm", models.VerdictFail, t0.Add(time.Minute)),
				newRun("nightly", "aug_mv", models.VerdictError, t0.Add(2*time.Minute)),
				newRun("smoke", "aug_clear", models.VerdictPass, t0.Add(3*time.Minute)),
				newRun("smoke", "write_cat", models.VerdictSkip, t0.Add(4*time.Minute)),
			}
			runs[4].Module = "fs"
			for _, r := range runs {
				Expect(s.Runs().Save(ctx, r)).To(Succeed())
			}
		})

		It("should list the most recent first", func() {
			runs, err := s.Runs().List(ctx, store.WithDefaultSort())

			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(5))
			Expect(runs[0].Checkpoint).To(Equal("write_cat"))
			Expect(runs[4].Checkpoint).To(Equal("aug_clear"))
			Expect(runs[4].Scenario).To(Equal("nightly"))
		})

		It("should filter by scenario and verdict", func() {
			runs, err := s.Runs().List(ctx,
				store.ByScenario("nightly"),
				store.ByVerdict(models.VerdictFail, models.VerdictError),
				store.WithDefaultSort(),
			)

			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			Expect(runs[0].Checkpoint).To(Equal("aug_mv"))
			Expect(runs[1].Checkpoint).To(Equal("aug_rm"))
		})

		It("should filter by checkpoint and module", func() {
			byCheckpoint, err := s.Runs().Count(ctx, store.ByCheckpoint("aug_clear"))
			Expect(err).NotTo(HaveOccurred())
			Expect(byCheckpoint).To(Equal(2))

			byModule, err := s.Runs().Count(ctx, store.ByModule("fs"))
			Expect(err).NotTo(HaveOccurred())
			Expect(byModule).To(Equal(1))
		})

		It("should ignore empty filters", func() {
			count, err := s.Runs().Count(ctx, store.ByScenario(), store.ByVerdict())

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(5))
		})

		It("should page", func() {
			page, err := s.Runs().List(ctx, store.WithDefaultSort(), store.WithLimit(2), store.WithOffset(2))

			Expect(err).NotTo(HaveOccurred())
			Expect(page).To(HaveLen(2))
			Expect(page[0].Checkpoint).To(Equal("aug_mv"))
		})

		It("should summarize verdicts", func() {
			summary, err := s.Runs().Summary(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary).To(Equal(models.RunSummary{Total: 5, Passed: 2, Failed: 1, Errors: 1, Skip: 1}))
			Expect(summary.OK()).To(BeFalse())

			smoke, err := s.Runs().Summary(ctx, store.ByScenario("smoke"))
			Expect(err).NotTo(HaveOccurred())
			Expect(smoke.OK()).To(BeTrue())
		})
	})

	Context("Record", func() {
		// Given a finished run and its log
		// When we record them together
		// Then both the run and its entries should be readable in order
		It("should save the run and its log", func() {
			// Arrange
			run := newRun("nightly", "aug_set_get", models.VerdictPass, t0)
			entries := []models.LogEntry{
				{RunID: run.ID, Seq: 1, Kind: models.LogKindCommand, Text: "aug-init / 0", Passed: true, At: t0},
				{RunID: run.ID, Seq: 2, Kind: models.LogKindCommand, Text: "aug-get /files/etc/passwd/root/home", ExitStatus: 1, At: t0},
				{RunID: run.ID, Seq: 3, Kind: models.LogKindAssertion, Text: "should succeed", Passed: false, At: t0},
			}

			// Act
			err := s.Record(ctx, run, entries)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			got, err := s.Logs().List(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))
			Expect(got[1].ExitStatus).To(Equal(1))
			Expect(got[2].Kind).To(Equal(models.LogKindAssertion))
			Expect(got[2].Passed).To(BeFalse())
		})

		It("should roll back the run when the log cannot be saved", func() {
			run := newRun("nightly", "aug_rm", models.VerdictPass, t0)
			dup := models.LogEntry{RunID: run.ID, Seq: 1, Kind: models.LogKindNote, Text: "x", At: t0}

			err := s.Record(ctx, run, []models.LogEntry{dup, dup})

			Expect(err).To(HaveOccurred())
			_, err = s.Runs().Get(ctx, run.ID)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should delete a run with its log", func() {
			run := newRun("nightly", "aug_rm", models.VerdictPass, t0)
			Expect(s.Record(ctx, run, []models.LogEntry{{RunID: run.ID, Seq: 1, Kind: models.LogKindNote, Text: "x", At: t0}})).To(Succeed())

			Expect(s.Runs().Delete(ctx, run.ID)).To(Succeed())

			_, err := s.Runs().Get(ctx, run.ID)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
			entries, err := s.Logs().List(ctx, run.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		// Given many workers finishing at once
		// When they record their runs concurrently
		// Then every run should be stored
		It("should handle concurrent records", func() {
			const numGoroutines = 20
			var wg sync.WaitGroup
			errs := make(chan error, numGoroutines)

			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					run := newRun("parallel", fmt.Sprintf("cp_%d", idx), models.VerdictPass, t0)
					entry := models.LogEntry{RunID: run.ID, Seq: 1, Kind: models.LogKindNote, Text: "done", Passed: true, At: t0}
					if err := s.Record(ctx, run, []models.LogEntry{entry}); err != nil {
						errs <- fmt.Errorf("goroutine %d: %w", idx, err)
					}
				}(i)
			}
			wg.Wait()
			close(errs)

			var all []error
			for err := range errs {
				all = append(all, err)
			}
			Expect(all).To(BeEmpty())
			count, err := s.Runs().Count(ctx, store.ByScenario("parallel"))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(numGoroutines))
		})
	})
})
