// Package tags derives classification labels from task attributes.
//
// Derivation is a pure function of the task and a reference time: labels
// are never persisted, and the same task can legitimately carry different
// labels at different reference times (a task due today is overdue
// tomorrow). Callers must re-derive on every read that depends on the
// current classification.
package tags

import (
	"time"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
)

// Tag is a derived classification label.
type Tag string

const (
	TagToday     Tag = "today"
	TagTomorrow  Tag = "tomorrow"
	TagImportant Tag = "important"
	TagCompleted Tag = "completed"
	TagOverdue   Tag = "overdue"
)

// All lists every system tag in display order.
func All() []Tag {
	return []Tag{TagToday, TagTomorrow, TagImportant, TagCompleted, TagOverdue}
}

// Descriptions maps each system tag to its user-facing description.
func Descriptions() map[string]string {
	return map[string]string{
		string(TagToday):     "Tasks to finish today",
		string(TagTomorrow):  "Tasks due tomorrow",
		string(TagImportant): "High priority tasks",
		string(TagCompleted): "Finished tasks",
		string(TagOverdue):   "Tasks past their due date",
	}
}

// Derive computes the ordered label set for task at the given reference
// time. Precedence:
//
//  1. A completed task carries exactly {completed}; nothing else applies.
//  2. A due date before now's calendar date yields overdue; equal to it,
//     today; equal to tomorrow's, tomorrow. A task without a due date
//     falls into the today bucket.
//  3. Independently, high priority appends important.
func Derive(task models.Task, now time.Time) []Tag {
	if task.Completed {
		return []Tag{TagCompleted}
	}

	today := models.DateOf(now)
	tomorrow := today.AddDays(1)

	var derived []Tag
	if task.DueDate != nil {
		due := models.DateOf(*task.DueDate)
		switch {
		case due.Before(today):
			derived = append(derived, TagOverdue)
		case due.Equal(today):
			derived = append(derived, TagToday)
		case due.Equal(tomorrow):
			derived = append(derived, TagTomorrow)
		}
	} else {
		derived = append(derived, TagToday)
	}

	if task.Priority == models.PriorityHigh {
		derived = append(derived, TagImportant)
	}

	return derived
}

// Strings converts a label set to plain strings for JSON payloads.
func Strings(labels []Tag) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

// Has reports whether labels contains tag.
func Has(labels []Tag, tag Tag) bool {
	for _, l := range labels {
		if l == tag {
			return true
		}
	}
	return false
}
