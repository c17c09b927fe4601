package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planpilot/planpilot/cmd/server/internal/jobs"
	"github.com/planpilot/planpilot/cmd/server/internal/models"
)

func waitForTerminal(t *testing.T, registry *jobs.Registry, jobID string) models.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := registry.Get(jobID)
		require.NoError(t, err)
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return models.Job{}
}

func TestRunnerCompletesJob(t *testing.T) {
	registry := jobs.NewRegistry()
	r := NewRunner(registry, 2, 8, discardLogger())
	defer r.Shutdown(context.Background())

	job := registry.Create(models.JobKindDecompose)
	err := r.Enqueue(job.JobID, job.Kind, func(ctx context.Context) (any, error) {
		return "done", nil
	})
	require.NoError(t, err)

	final := waitForTerminal(t, registry, job.JobID)
	assert.Equal(t, models.JobStatusCompleted, final.Status)
	assert.Equal(t, "done", final.Result)
	assert.Empty(t, final.Error)
}

func TestRunnerFailsJob(t *testing.T) {
	registry := jobs.NewRegistry()
	r := NewRunner(registry, 1, 4, discardLogger())
	defer r.Shutdown(context.Background())

	job := registry.Create(models.JobKindSchedule)
	err := r.Enqueue(job.JobID, job.Kind, func(ctx context.Context) (any, error) {
		return nil, errors.New("oracle unreachable")
	})
	require.NoError(t, err)

	final := waitForTerminal(t, registry, job.JobID)
	assert.Equal(t, models.JobStatusFailed, final.Status)
	assert.Equal(t, "oracle unreachable", final.Error)
	assert.Nil(t, final.Result)
}

func TestRunnerQueueFull(t *testing.T) {
	registry := jobs.NewRegistry()
	r := NewRunner(registry, 1, 1, discardLogger())
	defer r.Shutdown(context.Background())

	block := make(chan struct{})
	slow := func(ctx context.Context) (any, error) {
		<-block
		return nil, nil
	}

	// First job occupies the worker, second fills the queue.
	j1 := registry.Create(models.JobKindSchedule)
	require.NoError(t, r.Enqueue(j1.JobID, j1.Kind, slow))
	j2 := registry.Create(models.JobKindSchedule)
	var enqueued bool
	for i := 0; i < 100; i++ {
		if err := r.Enqueue(j2.JobID, j2.Kind, slow); err == nil {
			enqueued = true
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, enqueued)

	j3 := registry.Create(models.JobKindSchedule)
	err := r.Enqueue(j3.JobID, j3.Kind, slow)
	assert.ErrorIs(t, err, ErrQueueFull)

	close(block)
}

func TestRunnerShutdownDrainsQueue(t *testing.T) {
	registry := jobs.NewRegistry()
	r := NewRunner(registry, 1, 8, discardLogger())

	var ids []string
	for i := 0; i < 5; i++ {
		job := registry.Create(models.JobKindDecompose)
		ids = append(ids, job.JobID)
		require.NoError(t, r.Enqueue(job.JobID, job.Kind, func(ctx context.Context) (any, error) {
			time.Sleep(time.Millisecond)
			return i, nil
		}))
	}

	require.NoError(t, r.Shutdown(context.Background()))

	for _, id := range ids {
		job, err := registry.Get(id)
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusCompleted, job.Status)
	}
}

func TestRunnerRejectsAfterShutdown(t *testing.T) {
	registry := jobs.NewRegistry()
	r := NewRunner(registry, 1, 4, discardLogger())
	require.NoError(t, r.Shutdown(context.Background()))

	job := registry.Create(models.JobKindSchedule)
	err := r.Enqueue(job.JobID, job.Kind, func(ctx context.Context) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrRunnerClosed)

	// Repeated shutdown is a no-op, not a double close.
	require.NoError(t, r.Shutdown(context.Background()))
}
