package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/kubev2v/virt-harness/internal/models"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
)

type RunStore struct {
	db QueryInterceptor
}

func NewRunStore(db QueryInterceptor) *RunStore {
	return &RunStore{db: db}
}

// Save inserts the run or updates its verdict, reason and end time.
func (s *RunStore) Save(ctx context.Context, r models.RunRecord) error {
	p, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Errorf("failed to encode run params: %w", err)
	}
	if r.Params == nil {
		p = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, queryInsertRun,
		r.ID.String(), r.Scenario, r.Module, r.Checkpoint, string(p),
		string(r.Verdict), r.Reason, r.StartedAt.UTC(), r.FinishedAt.UTC(),
	)
	return err
}

func (s *RunStore) Get(ctx context.Context, id uuid.UUID) (*models.RunRecord, error) {
	query, args, err := sq.Select(runColumns...).From("runs").Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return nil, err
	}

	r, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewRunNotFoundError(id.String())
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RunStore) List(ctx context.Context, opts ...ListOption) ([]models.RunRecord, error) {
	builder := sq.Select(runColumns...).From("runs")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func (s *RunStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("runs")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// Summary counts verdicts of the runs matching opts. Paging options do not
// apply to it.
func (s *RunStore) Summary(ctx context.Context, opts ...ListOption) (models.RunSummary, error) {
	builder := sq.Select("verdict", "COUNT(*)").From("runs").GroupBy("verdict")
	for _, opt := range opts {
		builder = opt(builder)
	}

	var summary models.RunSummary
	query, args, err := builder.ToSql()
	if err != nil {
		return summary, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return summary, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			verdict string
			n       int
		)
		if err := rows.Scan(&verdict, &n); err != nil {
			return summary, err
		}
		summary.AddCount(models.Verdict(verdict), n)
	}
	return summary, rows.Err()
}

func (s *RunStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteRunLog, id.String()); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, queryDeleteRun, id.String())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.RunRecord, error) {
	var (
		r       models.RunRecord
		id      string
		params  string
		verdict string
	)
	err := row.Scan(&id, &r.Scenario, &r.Module, &r.Checkpoint, &params, &verdict, &r.Reason, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return nil, err
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
		return nil, fmt.Errorf("invalid params of run %s: %w", id, err)
	}
	r.Verdict = models.Verdict(verdict)
	return &r, nil
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByScenario(names ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(names) == 0 {
			return b
		}
		return b.Where(sq.Eq{"scenario": names})
	}
}

func ByModule(modules ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(modules) == 0 {
			return b
		}
		return b.Where(sq.Eq{"module": modules})
	}
}

func ByCheckpoint(names ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(names) == 0 {
			return b
		}
		return b.Where(sq.Eq{"checkpoint": names})
	}
}

func ByVerdict(verdicts ...models.Verdict) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(verdicts) == 0 {
			return b
		}
		values := make([]string, 0, len(verdicts))
		for _, v := range verdicts {
			values = append(values, string(v))
		}
		return b.Where(sq.Eq{"verdict": values})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

// WithDefaultSort lists the most recent runs first.
func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("started_at DESC", "id")
	}
}
