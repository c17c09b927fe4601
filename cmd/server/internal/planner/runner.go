package planner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/planpilot/planpilot/cmd/server/internal/jobs"
	"github.com/planpilot/planpilot/cmd/server/internal/models"
	"github.com/planpilot/planpilot/pkg/metrics"
)

// ErrQueueFull is returned when the runner cannot accept more work.
var ErrQueueFull = errors.New("JOB_QUEUE_FULL")

// ErrRunnerClosed is returned when work is enqueued after shutdown began.
var ErrRunnerClosed = errors.New("JOB_RUNNER_CLOSED")

type work struct {
	jobID string
	kind  models.JobKind
	run   func(ctx context.Context) (any, error)
}

// Runner executes planning work on a fixed pool of background workers
// and records each job's single terminal transition. Jobs for different
// dates or goals run concurrently with no ordering between them.
type Runner struct {
	registry *jobs.Registry
	logger   *slog.Logger
	queue    chan work
	group    *errgroup.Group
	closed   chan struct{}
	stop     sync.Once
}

func NewRunner(registry *jobs.Registry, workers, queueSize int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	r := &Runner{
		registry: registry,
		logger:   logger,
		queue:    make(chan work, queueSize),
		closed:   make(chan struct{}),
	}
	r.group = &errgroup.Group{}
	for i := 0; i < workers; i++ {
		r.group.Go(r.worker)
	}
	return r
}

// Enqueue hands a job's work to the pool. The run function's result (or
// error) becomes the job's terminal state. Enqueue never blocks; a full
// queue is reported to the caller.
func (r *Runner) Enqueue(jobID string, kind models.JobKind, run func(ctx context.Context) (any, error)) error {
	select {
	case <-r.closed:
		return ErrRunnerClosed
	default:
	}
	select {
	case r.queue <- work{jobID: jobID, kind: kind, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for queued jobs to drain, up
// to the context deadline. Safe to call more than once.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.stop.Do(func() {
		close(r.closed)
		close(r.queue)
	})

	done := make(chan struct{})
	go func() {
		r.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) worker() error {
	for w := range r.queue {
		r.execute(w)
	}
	return nil
}

func (r *Runner) execute(w work) {
	started := time.Now()
	if err := r.registry.MarkProcessing(w.jobID); err != nil {
		// A terminal job at this point means a double-dispatch bug.
		r.logger.Error("job not runnable", "job_id", w.jobID, "error", err)
		return
	}

	result, err := w.run(context.Background())
	if err != nil {
		r.logger.Error("job failed",
			"job_id", w.jobID,
			"kind", w.kind,
			"duration", time.Since(started),
			"error", err)
		metrics.RecordJob(string(w.kind), "failed")
		if ferr := r.registry.Fail(w.jobID, err.Error()); ferr != nil {
			r.logger.Error("job already terminal on fail", "job_id", w.jobID, "error", ferr)
		}
		return
	}

	r.logger.Info("job completed",
		"job_id", w.jobID,
		"kind", w.kind,
		"duration", time.Since(started))
	metrics.RecordJob(string(w.kind), "completed")
	if cerr := r.registry.Complete(w.jobID, result); cerr != nil {
		r.logger.Error("job already terminal on complete", "job_id", w.jobID, "error", cerr)
	}
}
