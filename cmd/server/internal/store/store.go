// Package store defines the keyed-store contracts the planning core is
// written against, plus concurrency-safe in-memory implementations.
// Semantics are last-write-wins; durability is an external concern.
package store

import "github.com/planpilot/planpilot/cmd/server/internal/models"

// TaskStore is the task storage contract. Implementations must be safe
// for concurrent use by the HTTP surface and background workers.
type TaskStore interface {
	Create(task models.Task) models.Task
	Get(taskID string) (models.Task, bool)
	List() []models.Task
	Update(taskID string, task models.Task) bool
	Delete(taskID string) bool

	// ForDate returns the incomplete tasks whose due date or scheduled
	// date falls on the given calendar date.
	ForDate(date models.Date) []models.Task
}

// ScheduleStore maps a calendar date key (YYYY-MM-DD) to the last
// computed day schedule. Exactly one schedule is retained per date.
type ScheduleStore interface {
	Put(dateKey string, schedule models.DaySchedule)
	Get(dateKey string) (models.DaySchedule, bool)
	Delete(dateKey string) bool
}
