package store

import (
	"context"
	"database/sql"

	"github.com/kubev2v/virt-harness/internal/models"
)

// Store provides access to all storage repositories.
type Store struct {
	db   *sql.DB
	runs *RunStore
	logs *LogStore
}

func NewStore(db *sql.DB) *Store {
	qi := NewQueryInterceptor(db)
	return &Store{
		db:   db,
		runs: NewRunStore(qi),
		logs: NewLogStore(qi),
	}
}

func (s *Store) Runs() *RunStore {
	return s.runs
}

func (s *Store) Logs() *LogStore {
	return s.logs
}

// Record saves a finished run and its log in one transaction.
func (s *Store) Record(ctx context.Context, run models.RunRecord, entries []models.LogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	qi := NewQueryInterceptor(tx)
	if err := NewRunStore(qi).Save(ctx, run); err != nil {
		return err
	}
	if err := NewLogStore(qi).Append(ctx, entries...); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}
