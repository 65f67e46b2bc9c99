package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/models"
)

type queue[T any] []T

func (q *queue[T]) Len() int { return len(*q) }

func (q *queue[T]) Pop() T {
	old := *q
	x := old[0]
	*q = old[1:]
	return x
}

func (q *queue[T]) Push(t T) {
	*q = append(*q, t)
}

type request struct {
	fn     Work[any]
	result chan models.Result[any]
	ctx    context.Context
}

type worker struct {
	id   int
	idle chan<- int
	wg   *sync.WaitGroup
}

func (w worker) run(r request) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Named("scheduler").Errorw("work panicked", "worker", w.id, "panic", rec)
			r.result <- models.Result[any]{Err: fmt.Errorf("worker panicked: %v", rec)}
		}
		w.idle <- w.id
		w.wg.Done()
	}()

	v, err := r.fn(r.ctx)
	r.result <- models.Result[any]{Data: v, Err: err}
}

// Scheduler runs work on a fixed number of workers, in submission order.
type Scheduler struct {
	workers    *queue[worker]
	pending    *queue[request]
	idle       chan int
	close      chan struct{}
	done       chan struct{}
	work       chan request
	mainCtx    context.Context
	mainCancel context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewScheduler(nbWorkers int) *Scheduler {
	if nbWorkers < 1 {
		nbWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		workers:    &queue[worker]{},
		pending:    &queue[request]{},
		idle:       make(chan int, nbWorkers),
		close:      make(chan struct{}),
		done:       make(chan struct{}),
		work:       make(chan request),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	for i := range nbWorkers {
		s.workers.Push(worker{id: i, idle: s.idle, wg: &s.wg})
	}
	go s.loop()
	return s
}

// AddWork queues w and returns a future for its result. Stopping the future
// cancels the context handed to w.
func (s *Scheduler) AddWork(w Work[any]) *models.Future[models.Result[any]] {
	c := make(chan models.Result[any], 1)
	ctx, cancel := context.WithCancel(s.mainCtx)

	select {
	case <-s.mainCtx.Done():
		// closing: nobody will pick the work up
		c <- models.Result[any]{Err: context.Canceled}
	case s.work <- request{fn: w, result: c, ctx: ctx}:
	}

	return models.NewFuture(c, cancel)
}

// Close cancels every queued and running work and waits for the workers.
func (s *Scheduler) Close() {
	s.once.Do(func() {
		s.mainCancel()
		s.close <- struct{}{}
		<-s.done
	})
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		select {
		case r := <-s.work:
			s.pending.Push(r)
			s.dispatch()
		case id := <-s.idle:
			s.workers.Push(worker{id: id, idle: s.idle, wg: &s.wg})
			s.dispatch()
		case <-s.close:
			s.drain()
			return
		}
	}
}

// drain fails queued requests and waits for running ones. Workers keep
// reporting idle while they finish, so idle is consumed until all are done.
func (s *Scheduler) drain() {
	for s.pending.Len() > 0 {
		r := s.pending.Pop()
		r.result <- models.Result[any]{Err: context.Canceled}
	}

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()
	for {
		select {
		case <-s.idle:
		case <-finished:
			return
		}
	}
}

// dispatch hands queued work to idle workers.
func (s *Scheduler) dispatch() {
	for s.workers.Len() > 0 && s.pending.Len() > 0 {
		r := s.pending.Pop()
		w := s.workers.Pop()
		s.wg.Add(1)
		go w.run(r)
	}
}
