package oracle

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
)

const decompositionSystemTemplate = `You are a pragmatic project planning assistant. The current time is %s (%s).

Break the user's goal into at most %d concrete, executable sub-tasks.

Rules:
- Each task name must start with an action verb (e.g. Complete, Write, Review, Prepare, Organize).
- Each description must be a concrete execution plan of at least 30 characters.
- Order tasks by execution sequence; earlier tasks come first.
- priority is one of: high, medium, low.
- estimated_hours is a number between 0.5 and 6.0.

Respond with a single JSON object and nothing else:
{
  "project_theme": "short theme for the goal",
  "tasks": [
    {"name": "...", "description": "...", "priority": "medium", "estimated_hours": 2.0}
  ]
}`

func decompositionPrompts(goal string, maxTasks int, now time.Time) (system, user string) {
	system = fmt.Sprintf(decompositionSystemTemplate,
		now.Format("2006-01-02 15:04"), now.Weekday(), maxTasks)
	user = fmt.Sprintf("Break down the following goal into sub-tasks: %s", goal)
	return system, user
}

const scheduleSystemTemplate = `You are a time management assistant planning %s (%s).

Arrange the given tasks into a realistic day schedule.

Rules:
- Schedule within working hours 09:00-21:00 and leave a lunch break around 12:00-13:30.
- Put high-priority and overdue tasks earlier in the day.
- Respect each task's estimated hours; insert short breaks between long blocks.
- Only reference task IDs from the provided list.

Respond with a single JSON object and nothing else:
{
  "schedule": [
    {"task_id": "...", "start_time": "09:00", "end_time": "10:30", "reason": "why this slot"}
  ],
  "suggestions": ["one or two short tips for the day"],
  "efficiency_score": 8
}`

// taskSnapshot is the subset of task state exposed to the oracle.
type taskSnapshot struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Priority       string   `json:"priority"`
	DueDate        string   `json:"due_date,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	IsOverdue      bool     `json:"is_overdue"`
}

func schedulePrompts(tasks []models.Task, date models.Date, now time.Time) (system, user string, err error) {
	snapshots := make([]taskSnapshot, 0, len(tasks))
	for _, t := range tasks {
		s := taskSnapshot{
			ID:             t.ID,
			Name:           t.Name,
			Description:    t.Description,
			Priority:       string(t.Priority),
			EstimatedHours: t.EstimatedHours,
		}
		if t.DueDate != nil {
			s.DueDate = t.DueDate.Format("2006-01-02")
			s.IsOverdue = t.DueDate.Before(now)
		}
		snapshots = append(snapshots, s)
	}
	payload, err := json.Marshal(snapshots)
	if err != nil {
		return "", "", fmt.Errorf("encode task snapshots: %w", err)
	}
	system = fmt.Sprintf(scheduleSystemTemplate, date.String(), date.Weekday())
	user = fmt.Sprintf("Plan a schedule for these tasks:\n%s", payload)
	return system, user, nil
}
