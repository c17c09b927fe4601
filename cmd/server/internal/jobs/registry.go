// Package jobs tracks asynchronous planning jobs and enforces their
// lifecycle contract: pending -> (processing) -> completed | failed, with
// at most one terminal transition.
package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
)

var (
	// ErrJobNotFound is returned for an unknown job identifier.
	ErrJobNotFound = errors.New("JOB_NOT_FOUND")
	// ErrJobTerminal is returned when a transition is attempted on a job
	// that already completed or failed. Hitting it indicates a
	// double-completion bug in the caller.
	ErrJobTerminal = errors.New("JOB_ALREADY_TERMINAL")
)

// Registry is a concurrency-safe job store. Reads return copies so a
// concurrent reader never observes a partially written result.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

// NewRegistry creates an empty job registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*models.Job)}
}

// Create registers a new pending job of the given kind and returns its
// snapshot.
func (r *Registry) Create(kind models.JobKind) models.Job {
	job := &models.Job{
		JobID:     uuid.NewString(),
		Kind:      kind,
		Status:    models.JobStatusPending,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.jobs[job.JobID] = job
	r.mu.Unlock()

	return *job
}

// Get returns a snapshot of the job with the given identifier.
func (r *Registry) Get(jobID string) (models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return models.Job{}, ErrJobNotFound
	}
	return *job, nil
}

// MarkProcessing moves a pending job to processing. The transition is
// optional: workers that finish without it go straight from pending to a
// terminal state.
func (r *Registry) MarkProcessing(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if job.Status.Terminal() {
		return ErrJobTerminal
	}
	job.Status = models.JobStatusProcessing
	return nil
}

// Complete records the job's result and moves it to completed. It fails
// with ErrJobTerminal if the job already reached a terminal state.
func (r *Registry) Complete(jobID string, result any) error {
	return r.finish(jobID, models.JobStatusCompleted, result, "")
}

// Fail records the job's error message and moves it to failed. It fails
// with ErrJobTerminal if the job already reached a terminal state.
func (r *Registry) Fail(jobID string, errMsg string) error {
	return r.finish(jobID, models.JobStatusFailed, nil, errMsg)
}

func (r *Registry) finish(jobID string, status models.JobStatus, result any, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if job.Status.Terminal() {
		return ErrJobTerminal
	}

	job.Status = status
	job.Result = result
	job.Error = errMsg
	return nil
}
