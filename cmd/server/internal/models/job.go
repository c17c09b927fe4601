package models

import "time"

// JobStatus is the lifecycle state of an asynchronous planning job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transition.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobKind identifies what a planning job produces.
type JobKind string

const (
	JobKindDecompose JobKind = "decompose"
	JobKindSchedule  JobKind = "schedule"
)

// Job is the handle to one asynchronous unit of oracle-backed work.
// Result holds []Task for decomposition jobs and a DayScheduleResponse
// for scheduling jobs; Error is set only on failure.
type Job struct {
	JobID     string    `json:"job_id"`
	Kind      JobKind   `json:"kind"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}
