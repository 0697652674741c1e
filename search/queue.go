package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/jurorlink/core"
)

const defaultQueueWorkers = 2

// Queue runs searches in the background. Enqueue persists a queued job and
// returns its ID immediately; the job record tracks progress from there.
type Queue struct {
	orchestrator *Orchestrator
	pool         *ants.Pool
	logger       *slog.Logger

	mu       sync.Mutex
	wg       sync.WaitGroup
	released bool
}

// QueueOption configures a Queue.
type QueueOption func(*Queue) error

// WithWorkers sets the number of concurrent background searches.
// Default is 2.
func WithWorkers(n int) QueueOption {
	return func(q *Queue) error {
		if n < 1 {
			n = 1
		}
		if q.pool != nil {
			q.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		q.pool = pool
		return nil
	}
}

// WithQueueLogger sets a custom logger.
// Default is slog.Default().
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
		return nil
	}
}

// NewQueue creates a background search queue over an orchestrator.
func NewQueue(orchestrator *Orchestrator, opts ...QueueOption) (*Queue, error) {
	pool, err := ants.NewPool(defaultQueueWorkers)
	if err != nil {
		return nil, err
	}

	q := &Queue{
		orchestrator: orchestrator,
		pool:         pool,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(q); err != nil {
			q.pool.Release()
			return nil, err
		}
	}
	return q, nil
}

// Enqueue persists a queued search job and schedules it for execution.
// Returns the job ID; poll the job record for status and results.
func (q *Queue) Enqueue(ctx context.Context, jurorID string, query *core.SearchQuery) (string, error) {
	q.mu.Lock()
	if q.released {
		q.mu.Unlock()
		return "", ErrQueueReleased
	}

	job, err := q.orchestrator.CreateJob(ctx, jurorID, query)
	if err != nil {
		q.mu.Unlock()
		return "", err
	}

	q.wg.Add(1)
	q.mu.Unlock()

	err = q.pool.Submit(func() {
		defer q.wg.Done()
		// The enqueueing request's context is gone by the time the job
		// runs, so execution carries its own.
		if _, err := q.orchestrator.Execute(context.Background(), job); err != nil {
			q.logger.Error("background search failed",
				"jobID", job.Id,
				"jurorID", job.JurorID,
				"err", err)
		}
	})
	if err != nil {
		q.wg.Done()
		return "", err
	}
	return job.Id, nil
}

// Shutdown drains in-flight searches and releases the worker pool.
// The queue rejects new work once Shutdown has begun.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if q.released {
		q.mu.Unlock()
		return
	}
	q.released = true
	q.mu.Unlock()

	q.wg.Wait()
	q.pool.Release()
}
