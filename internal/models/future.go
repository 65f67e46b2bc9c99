package models

import (
	"context"
)

// Result is what a scheduled unit of work produced.
type Result[T any] struct {
	Data T
	Err  error
}

// Future delivers exactly one value on C once the work finished or was
// cancelled.
type Future[T any] struct {
	input  chan T
	cancel context.CancelFunc
}

func NewFuture[T any](input chan T, cancel context.CancelFunc) *Future[T] {
	return &Future[T]{
		input:  input,
		cancel: cancel,
	}
}

func (f *Future[T]) C() chan T {
	return f.input
}

// Stop cancels the work. A value is still delivered on C.
func (f *Future[T]) Stop() {
	f.cancel()
}

// Wait returns the value of the future. When ctx is done first the work is
// stopped and Wait returns whatever the cancelled work delivered.
func (f *Future[T]) Wait(ctx context.Context) T {
	select {
	case v := <-f.input:
		return v
	case <-ctx.Done():
		f.Stop()
		return <-f.input
	}
}
