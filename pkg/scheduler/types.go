package scheduler

import (
	"context"
)

// Work is one unit submitted to the pool. For the harness a unit is a whole
// scenario: its checkpoints run sequentially inside the function.
type Work[T any] func(ctx context.Context) (T, error)
