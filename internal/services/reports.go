package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/store"
)

// Reports answers queries over recorded runs.
type Reports struct {
	store *store.Store
}

func NewReportsService(st *store.Store) *Reports {
	return &Reports{store: st}
}

type RunListParams struct {
	Scenarios   []string
	Modules     []string
	Checkpoints []string
	Verdicts    []models.Verdict
	Limit       uint64
	Offset      uint64
}

type RunListResult struct {
	Runs  []models.RunRecord
	Total int
}

func (s *Reports) List(ctx context.Context, params RunListParams) (*RunListResult, error) {
	opts := append(s.filters(params), store.WithDefaultSort())
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	runs, err := s.store.Runs().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// total ignores paging
	total, err := s.store.Runs().Count(ctx, s.filters(params)...)
	if err != nil {
		return nil, err
	}

	return &RunListResult{Runs: runs, Total: total}, nil
}

func (s *Reports) Get(ctx context.Context, id uuid.UUID) (*models.RunRecord, error) {
	return s.store.Runs().Get(ctx, id)
}

// Entries returns the log of a run. An unknown run is a ResourceNotFoundError
// rather than an empty log.
func (s *Reports) Entries(ctx context.Context, id uuid.UUID) ([]models.LogEntry, error) {
	if _, err := s.store.Runs().Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Logs().List(ctx, id)
}

func (s *Reports) Summary(ctx context.Context, params RunListParams) (models.RunSummary, error) {
	return s.store.Runs().Summary(ctx, s.filters(params)...)
}

func (s *Reports) filters(params RunListParams) []store.ListOption {
	var opts []store.ListOption

	if len(params.Scenarios) > 0 {
		opts = append(opts, store.ByScenario(params.Scenarios...))
	}
	if len(params.Modules) > 0 {
		opts = append(opts, store.ByModule(params.Modules...))
	}
	if len(params.Checkpoints) > 0 {
		opts = append(opts, store.ByCheckpoint(params.Checkpoints...))
	}
	if len(params.Verdicts) > 0 {
		opts = append(opts, store.ByVerdict(params.Verdicts...))
	}

	return opts
}
