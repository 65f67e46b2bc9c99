package services_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/services"
	"github.com/kubev2v/virt-harness/internal/store"
	"github.com/kubev2v/virt-harness/internal/store/migrations"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
)

var _ = Describe("Reports", func() {
	var (
		ctx     context.Context
		db      *sql.DB
		reports *services.Reports
		ids     []uuid.UUID
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		st := store.NewStore(db)
		reports = services.NewReportsService(st)

		t0 := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
		verdicts := []models.Verdict{models.VerdictPass, models.VerdictFail, models.VerdictPass, models.VerdictSkip}
		ids = nil
		for i, v := range verdicts {
			run := models.RunRecord{
				ID:         uuid.New(),
				Scenario:   "nightly",
				Module:     "fs",
				Checkpoint: "write_cat",
				Verdict:    v,
				StartedAt:  t0.Add(time.Duration(i) * time.Minute),
				FinishedAt: t0.Add(time.Duration(i)*time.Minute + time.Second),
			}
			ids = append(ids, run.ID)
			entry := models.LogEntry{RunID: run.ID, Seq: 1, Kind: models.LogKindCommand, Text: "cat /test_file", Passed: true, At: run.StartedAt}
			Expect(st.Record(ctx, run, []models.LogEntry{entry})).To(Succeed())
		}
	})

	AfterEach(func() {
		db.Close()
	})

	It("should return one page and the total", func() {
		result, err := reports.List(ctx, services.RunListParams{Limit: 2})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Total).To(Equal(4))
		Expect(result.Runs).To(HaveLen(2))
		Expect(result.Runs[0].ID).To(Equal(ids[3]))
	})

	It("should filter by verdict", func() {
		result, err := reports.List(ctx, services.RunListParams{Verdicts: []models.Verdict{models.VerdictPass}})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Total).To(Equal(2))
		Expect(result.Runs).To(HaveLen(2))
	})

	It("should return the log of a run", func() {
		entries, err := reports.Entries(ctx, ids[1])

		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Text).To(Equal("cat /test_file"))
	})

	It("should return not found for the log of an unknown run", func() {
		_, err := reports.Entries(ctx, uuid.New())

		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})

	It("should summarize", func() {
		summary, err := reports.Summary(ctx, services.RunListParams{Scenarios: []string{"nightly"}})

		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal(models.RunSummary{Total: 4, Passed: 2, Failed: 1, Skip: 1}))
	})
})
