package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
	"github.com/planpilot/planpilot/cmd/server/internal/oracle"
	"github.com/planpilot/planpilot/cmd/server/internal/store"
)

const (
	minTaskCount = 1
	maxTaskCount = 10

	minDescriptionLen     = 30
	defaultEstimatedHours = 2.0
	minEstimatedHours     = 0.5
	maxEstimatedHours     = 6.0

	// Machine-generated due dates land at end of workday.
	dueHour = 18

	defaultTheme    = "Project Plan"
	descriptionPad  = "Outline the concrete execution steps and the expected outcome before starting."
	fallbackDetails = "Work through this part of the goal and record the result."
)

// actionVerbs is the vocabulary a task name must open with; names that
// don't are prefixed with "Complete".
var actionVerbs = []string{
	"Complete", "Write", "Review", "Prepare", "Organize", "Plan",
	"Research", "Draft", "Build", "Create", "Test", "Finish",
	"Schedule", "Contact", "Update", "Read", "Practice", "Fix",
	"Design", "Collect", "Summarize",
}

// DecompositionResult is the payload a decomposition job completes with.
type DecompositionResult struct {
	ProjectTheme string        `json:"project_theme"`
	Tasks        []models.Task `json:"tasks"`
}

// ClampTaskCount bounds a requested sub-task count to the supported range.
func ClampTaskCount(n int) int {
	if n < minTaskCount {
		return minTaskCount
	}
	if n > maxTaskCount {
		return maxTaskCount
	}
	return n
}

// Decomposer breaks a free-form goal into exactly N stored tasks by
// repairing whatever candidate list the oracle returns. Individual
// malformed candidates never abort the batch; missing slots are filled
// with fallback tasks. Only a total oracle failure is an error.
type Decomposer struct {
	tasks  store.TaskStore
	oracle Oracle
	logger *slog.Logger
	now    func() time.Time
}

func NewDecomposer(tasks store.TaskStore, o Oracle, logger *slog.Logger) *Decomposer {
	return &Decomposer{
		tasks:  tasks,
		oracle: o,
		logger: logger,
		now:    time.Now,
	}
}

// Decompose asks the oracle to split goal into count sub-tasks, repairs
// each candidate, and persists the result. The returned task list always
// has exactly ClampTaskCount(count) entries.
func (d *Decomposer) Decompose(ctx context.Context, goal string, count int) (*DecompositionResult, error) {
	count = ClampTaskCount(count)
	now := d.now()

	proposal, err := d.oracle.ProposeDecomposition(ctx, goal, count, now)
	if err != nil {
		return nil, fmt.Errorf("decompose goal: %w", err)
	}

	theme := strings.TrimSpace(proposal.ProjectTheme)
	if theme == "" {
		theme = defaultTheme
	}

	created := make([]models.Task, 0, count)
	for i := 0; i < count; i++ {
		var candidate oracle.CandidateTask
		if i < len(proposal.Tasks) {
			candidate = proposal.Tasks[i]
		} else {
			candidate.Description = fallbackDetails
		}
		task := d.buildTask(theme, candidate, i, now)
		created = append(created, d.tasks.Create(task))
	}

	d.logger.Info("decomposed goal into tasks",
		"theme", theme,
		"requested", count,
		"proposed", len(proposal.Tasks))

	return &DecompositionResult{ProjectTheme: theme, Tasks: created}, nil
}

// buildTask repairs one candidate into a persistable task. Every rule is
// total: any malformed field falls back to a defined default, so a fully
// empty candidate still yields a valid task.
func (d *Decomposer) buildTask(theme string, c oracle.CandidateTask, index int, now time.Time) models.Task {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = fmt.Sprintf("Subtask %d", index+1)
	}
	if !startsWithActionVerb(name) {
		name = "Complete " + name
	}

	description := strings.TrimSpace(c.Description)
	if len(description) < minDescriptionLen {
		description = strings.TrimSpace(description + " " + descriptionPad)
	}

	priority := models.Priority(strings.ToLower(strings.TrimSpace(c.Priority)))
	if !models.ValidPriority(priority) {
		priority = models.PriorityMedium
	}

	hours := defaultEstimatedHours
	if c.EstimatedHours.Valid {
		hours = clampHours(c.EstimatedHours.Value)
	}

	due := dueDateFor(priority, index, now)

	return models.Task{
		ID:             uuid.NewString(),
		Name:           fmt.Sprintf("%s Step%d: %s", theme, index+1, name),
		Description:    description,
		Status:         models.TaskStatusPending,
		CreatedAt:      now,
		DueDate:        &due,
		Priority:       priority,
		EstimatedHours: &hours,
	}
}

func startsWithActionVerb(name string) bool {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return false
	}
	first := strings.TrimRight(fields[0], ".,:;!")
	for _, verb := range actionVerbs {
		if strings.EqualFold(first, verb) {
			return true
		}
	}
	return false
}

func clampHours(h float64) float64 {
	if h < minEstimatedHours {
		return minEstimatedHours
	}
	if h > maxEstimatedHours {
		return maxEstimatedHours
	}
	return h
}

// dueDateFor spreads machine-generated due dates by position and urgency:
// the first slot and high-priority work land soonest, low-priority work
// spreads out furthest. The result is normalized to dueHour local time.
func dueDateFor(priority models.Priority, index int, now time.Time) time.Time {
	var offsetDays float64
	switch {
	case priority == models.PriorityHigh || index == 0:
		offsetDays = 1 + 0.5*float64(index)
	case priority == models.PriorityLow:
		offsetDays = 4 + 2*float64(index)
	default:
		offsetDays = 2 + 1.5*float64(index)
	}
	due := now.Add(time.Duration(offsetDays * 24 * float64(time.Hour)))
	return time.Date(due.Year(), due.Month(), due.Day(), dueHour, 0, 0, 0, due.Location())
}
