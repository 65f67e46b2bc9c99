package store

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QueryInterceptor logs every statement at debug level before handing it to
// the database or transaction it wraps.
type QueryInterceptor struct {
	q   querier
	log *zap.SugaredLogger
}

func NewQueryInterceptor(q querier) QueryInterceptor {
	return QueryInterceptor{q: q, log: zap.S().Named("store")}
}

func (i QueryInterceptor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := i.q.ExecContext(ctx, query, args...)
	i.log.Debugw("exec", "query", query, "args", args, "duration", time.Since(start), "error", err)
	return res, err
}

func (i QueryInterceptor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := i.q.QueryContext(ctx, query, args...)
	i.log.Debugw("query", "query", query, "args", args, "duration", time.Since(start), "error", err)
	return rows, err
}

func (i QueryInterceptor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	i.log.Debugw("query row", "query", query, "args", args)
	return i.q.QueryRowContext(ctx, query, args...)
}
