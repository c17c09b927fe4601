package models

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Priority is the urgency classification of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ValidPriority reports whether p is one of the three known priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task is a single unit of work.
//
// Completed and Status are kept consistent by the task service:
// Completed == true exactly when Status == TaskStatusCompleted.
// Tags is derived fresh from the other attributes on every read and is
// never treated as stored state.
type Task struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Completed      bool       `json:"completed"`
	Status         TaskStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ScheduledDate  *Date      `json:"scheduled_date,omitempty"`
	Priority       Priority   `json:"priority"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

// TaskCreate is the caller-supplied payload for creating a task.
type TaskCreate struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date"`
	ScheduledDate  *Date      `json:"scheduled_date"`
	Priority       Priority   `json:"priority"`
	EstimatedHours *float64   `json:"estimated_hours"`
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Name           *string     `json:"name"`
	Description    *string     `json:"description"`
	Completed      *bool       `json:"completed"`
	Status         *TaskStatus `json:"status"`
	DueDate        *time.Time  `json:"due_date"`
	ScheduledDate  *Date       `json:"scheduled_date"`
	Priority       *Priority   `json:"priority"`
	EstimatedHours *float64    `json:"estimated_hours"`
}

// TaskStats is the aggregate counters exposed by the stats endpoint.
type TaskStats struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	Pending    int            `json:"pending"`
	DueToday   int            `json:"due_today"`
	Overdue    int            `json:"overdue"`
	ByPriority map[string]int `json:"by_priority"`
	ByStatus   map[string]int `json:"by_status"`
	ByTags     map[string]int `json:"by_tags"`
}

// CalendarDay groups a day's tasks by why they land on that day.
type CalendarDay struct {
	Due       []Task `json:"due"`
	Scheduled []Task `json:"scheduled"`
}
