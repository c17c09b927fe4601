// Package services holds the synchronous business logic behind the HTTP
// surface: task CRUD, classification, and aggregate views.
package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
	"github.com/planpilot/planpilot/cmd/server/internal/store"
	"github.com/planpilot/planpilot/cmd/server/internal/tags"
)

var (
	ErrTaskNotFound    = errors.New("TASK_NOT_FOUND")
	ErrNameEmpty       = errors.New("NAME_EMPTY")
	ErrInvalidPriority = errors.New("INVALID_PRIORITY")
	ErrInvalidStatus   = errors.New("INVALID_STATUS")
)

// TaskService is the task CRUD and query surface. Tags on returned tasks
// are derived fresh from the current time on every read; they are never
// stored.
type TaskService interface {
	CreateTask(ctx context.Context, create *models.TaskCreate) (*models.Task, error)
	GetTask(ctx context.Context, taskID string) (*models.Task, error)
	ListTasks(ctx context.Context, completed *bool) ([]models.Task, error)
	UpdateTask(ctx context.Context, taskID string, update *models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID string) error

	TasksByTag(ctx context.Context, tag string) ([]models.Task, error)
	TasksByTags(ctx context.Context, wanted []string) ([]models.Task, error)
	Stats(ctx context.Context) (*models.TaskStats, error)
	Calendar(ctx context.Context, year int, month time.Month) (map[string]models.CalendarDay, error)
	SchedulePreview(ctx context.Context, date models.Date) (*models.SchedulePreview, error)
}

type taskService struct {
	store store.TaskStore
	now   func() time.Time
}

// NewTaskService creates a task service backed by the given store.
func NewTaskService(s store.TaskStore) TaskService {
	return &taskService{store: s, now: time.Now}
}

func (s *taskService) CreateTask(ctx context.Context, create *models.TaskCreate) (*models.Task, error) {
	if create.Name == "" {
		return nil, ErrNameEmpty
	}
	priority := create.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, ErrInvalidPriority
	}

	task := models.Task{
		ID:             uuid.NewString(),
		Name:           create.Name,
		Description:    create.Description,
		Status:         models.TaskStatusPending,
		CreatedAt:      s.now(),
		DueDate:        create.DueDate,
		ScheduledDate:  create.ScheduledDate,
		Priority:       priority,
		EstimatedHours: create.EstimatedHours,
	}
	created := s.store.Create(task)
	s.attachTags(&created)
	return &created, nil
}

func (s *taskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, ok := s.store.Get(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	s.attachTags(&task)
	return &task, nil
}

func (s *taskService) ListTasks(ctx context.Context, completed *bool) ([]models.Task, error) {
	all := s.store.List()
	tasks := make([]models.Task, 0, len(all))
	for _, task := range all {
		if completed != nil && task.Completed != *completed {
			continue
		}
		s.attachTags(&task)
		tasks = append(tasks, task)
	}
	sortByCreation(tasks)
	return tasks, nil
}

func (s *taskService) UpdateTask(ctx context.Context, taskID string, update *models.TaskUpdate) (*models.Task, error) {
	task, ok := s.store.Get(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}

	if update.Name != nil {
		if *update.Name == "" {
			return nil, ErrNameEmpty
		}
		task.Name = *update.Name
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Priority != nil {
		if !models.ValidPriority(*update.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *update.Priority
	}
	if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.ScheduledDate != nil {
		task.ScheduledDate = update.ScheduledDate
	}
	if update.EstimatedHours != nil {
		task.EstimatedHours = update.EstimatedHours
	}

	// Completed and Status move together; either field may drive the
	// other, with an explicit Status winning over an explicit Completed.
	if update.Completed != nil {
		task.Completed = *update.Completed
		if task.Completed {
			task.Status = models.TaskStatusCompleted
		} else if task.Status == models.TaskStatusCompleted {
			task.Status = models.TaskStatusPending
		}
	}
	if update.Status != nil {
		switch *update.Status {
		case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		default:
			return nil, ErrInvalidStatus
		}
		task.Status = *update.Status
		task.Completed = task.Status == models.TaskStatusCompleted
	}

	if !s.store.Update(taskID, task) {
		return nil, ErrTaskNotFound
	}
	s.attachTags(&task)
	return &task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, taskID string) error {
	if !s.store.Delete(taskID) {
		return ErrTaskNotFound
	}
	return nil
}

func (s *taskService) TasksByTag(ctx context.Context, tag string) ([]models.Task, error) {
	return s.TasksByTags(ctx, []string{tag})
}

// TasksByTags returns the tasks carrying every wanted tag.
func (s *taskService) TasksByTags(ctx context.Context, wanted []string) ([]models.Task, error) {
	now := s.now()
	var matched []models.Task
	for _, task := range s.store.List() {
		labels := tags.Strings(tags.Derive(task, now))
		if !containsAll(labels, wanted) {
			continue
		}
		task.Tags = labels
		matched = append(matched, task)
	}
	sortByCreation(matched)
	return matched, nil
}

func (s *taskService) Stats(ctx context.Context) (*models.TaskStats, error) {
	now := s.now()
	today := models.DateOf(now)

	stats := &models.TaskStats{
		ByPriority: map[string]int{},
		ByStatus:   map[string]int{},
		ByTags:     map[string]int{},
	}
	for _, task := range s.store.List() {
		stats.Total++
		if task.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
		stats.ByPriority[string(task.Priority)]++
		stats.ByStatus[string(task.Status)]++
		for _, label := range tags.Strings(tags.Derive(task, now)) {
			stats.ByTags[label]++
		}
		if task.DueDate != nil && !task.Completed {
			due := models.DateOf(*task.DueDate)
			if due.Equal(today) {
				stats.DueToday++
			} else if due.Before(today) {
				stats.Overdue++
			}
		}
	}
	return stats, nil
}

// Calendar buckets a month's tasks by the day they are due or scheduled.
// A task due and scheduled on the same day appears in both buckets.
func (s *taskService) Calendar(ctx context.Context, year int, month time.Month) (map[string]models.CalendarDay, error) {
	days := map[string]models.CalendarDay{}
	for _, task := range s.store.List() {
		s.attachTags(&task)
		if task.DueDate != nil {
			due := models.DateOf(*task.DueDate)
			if due.Year() == year && due.Month() == month {
				day := days[due.String()]
				day.Due = append(day.Due, task)
				days[due.String()] = day
			}
		}
		if task.ScheduledDate != nil {
			sched := *task.ScheduledDate
			if sched.Year() == year && sched.Month() == month {
				day := days[sched.String()]
				day.Scheduled = append(day.Scheduled, task)
				days[sched.String()] = day
			}
		}
	}
	return days, nil
}

// SchedulePreview summarizes the candidate task set for a date without
// generating anything.
func (s *taskService) SchedulePreview(ctx context.Context, date models.Date) (*models.SchedulePreview, error) {
	now := s.now()
	today := models.DateOf(now)

	preview := &models.SchedulePreview{
		Date:  date.String(),
		Tasks: []models.SchedulePreviewTask{},
	}
	for _, task := range s.store.ForDate(date) {
		hours := 2.0
		if task.EstimatedHours != nil {
			hours = *task.EstimatedHours
		}
		preview.TaskCount++
		preview.TotalEstimatedHours += hours
		if task.Priority == models.PriorityHigh {
			preview.HighPriorityCount++
		}
		if task.DueDate != nil && models.DateOf(*task.DueDate).Before(today) {
			preview.OverdueCount++
		}
		preview.Tasks = append(preview.Tasks, models.SchedulePreviewTask{
			ID:             task.ID,
			Name:           task.Name,
			Priority:       task.Priority,
			EstimatedHours: hours,
			DueDate:        task.DueDate,
			Tags:           tags.Strings(tags.Derive(task, now)),
		})
	}
	return preview, nil
}

func (s *taskService) attachTags(task *models.Task) {
	task.Tags = tags.Strings(tags.Derive(*task, s.now()))
}

func sortByCreation(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}

func containsAll(labels, wanted []string) bool {
	for _, w := range wanted {
		found := false
		for _, l := range labels {
			if l == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
