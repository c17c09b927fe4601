package models

import "time"

// ScheduleItem is one allocated slot within a DaySchedule. StartTime and
// EndTime are wall-clock HH:MM strings on the schedule's date; Duration
// is derived from them, never supplied independently.
type ScheduleItem struct {
	TaskID    string   `json:"task_id"`
	TaskName  string   `json:"task_name"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Duration  float64  `json:"duration"`
	Priority  Priority `json:"priority"`
	Reason    string   `json:"reason"`
}

// DaySchedule is the materialized plan for one calendar date. TotalHours
// equals the sum of item durations. Fingerprint is the digest of the task
// set the schedule was computed from; it decides whether a cached plan is
// still valid.
type DaySchedule struct {
	ID              string         `json:"id"`
	Date            Date           `json:"date"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Items           []ScheduleItem `json:"schedule_items"`
	Suggestions     []string       `json:"suggestions"`
	TotalHours      float64        `json:"total_hours"`
	EfficiencyScore int            `json:"efficiency_score"`
	Fingerprint     string         `json:"task_fingerprint"`
}

// DayScheduleResponse is the day-plan envelope returned by reads and
// stored as the result of scheduling jobs.
type DayScheduleResponse struct {
	Date         string       `json:"date"`
	HasSchedule  bool         `json:"has_schedule"`
	Schedule     *DaySchedule `json:"schedule"`
	TasksChanged bool         `json:"tasks_changed"`
}

// SchedulePreviewTask is the trimmed task view in a schedule preview.
type SchedulePreviewTask struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Priority       Priority   `json:"priority"`
	EstimatedHours float64    `json:"estimated_hours"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

// SchedulePreview summarizes a date's candidate tasks before generation.
type SchedulePreview struct {
	Date                string                `json:"date"`
	TaskCount           int                   `json:"task_count"`
	TotalEstimatedHours float64               `json:"total_estimated_hours"`
	HighPriorityCount   int                   `json:"high_priority_count"`
	OverdueCount        int                   `json:"overdue_count"`
	Tasks               []SchedulePreviewTask `json:"tasks"`
}
