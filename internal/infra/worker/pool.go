// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// Task is one unit of background work, typically an alert delivery.
type Task func(ctx context.Context) error

var (
	ErrQueueFull = errors.New("worker queue full")
	ErrStopped   = errors.New("worker pool stopped")
)

// Pool runs tasks on a fixed set of goroutines. Submit never blocks:
// a task that finds the queue full is refused and the caller chooses
// what to do about it.
type Pool struct {
	log   zerolog.Logger
	tasks chan Task
	size  int

	stopOnce sync.Once
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// NewPool sizes the queue at four tasks per worker; workers <= 0 uses
// one worker per CPU.
func NewPool(workers int, logger zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		log:     logger.With().Str("component", "WorkerPool").Logger(),
		tasks:   make(chan Task, workers*4),
		size:    workers,
		stopped: make(chan struct{}),
	}
}

// Start launches the workers. They exit when ctx is done or Stop is
// called, whichever comes first.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopped:
			return
		case task := <-p.tasks:
			if task == nil {
				continue
			}
			if err := task(ctx); err != nil {
				p.log.Warn().Err(err).Int("worker", id).Msg("task failed")
			}
		}
	}
}

// Stop signals the workers and waits for in-flight tasks to finish.
// Tasks still queued when Stop is called are abandoned.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.stopped) })
	p.wg.Wait()
}

// Submit enqueues a task without blocking.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.stopped:
		return ErrStopped
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}
