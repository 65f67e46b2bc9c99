package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kubev2v/virt-harness/internal/models"
)

// LogStore keeps the command and assertion log of every run.
type LogStore struct {
	db QueryInterceptor
}

func NewLogStore(db QueryInterceptor) *LogStore {
	return &LogStore{db: db}
}

func (s *LogStore) Append(ctx context.Context, entries ...models.LogEntry) error {
	for _, e := range entries {
		_, err := s.db.ExecContext(ctx, queryInsertLogEntry,
			e.RunID.String(), e.Seq, string(e.Kind), e.Text, e.ExitStatus, e.Passed, e.At.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to append log entry %d of run %s: %w", e.Seq, e.RunID, err)
		}
	}
	return nil
}

// List returns the entries of a run in the order they were recorded.
func (s *LogStore) List(ctx context.Context, runID uuid.UUID) ([]models.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryListLogEntries, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		var (
			e    models.LogEntry
			id   string
			kind string
		)
		if err := rows.Scan(&id, &e.Seq, &kind, &e.Text, &e.ExitStatus, &e.Passed, &e.At); err != nil {
			return nil, err
		}
		if e.RunID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		e.Kind = models.LogKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
