package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
	"github.com/planpilot/planpilot/cmd/server/internal/store"
)

func fixedNow() time.Time {
	return time.Date(2026, time.June, 15, 9, 0, 0, 0, time.UTC)
}

func newTestService() (*taskService, *store.MemoryTaskStore) {
	s := store.NewMemoryTaskStore()
	svc := NewTaskService(s).(*taskService)
	svc.now = fixedNow
	return svc, s
}

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestCreateTaskDefaults(t *testing.T) {
	svc, _ := newTestService()

	task, err := svc.CreateTask(context.Background(), &models.TaskCreate{Name: "Water plants"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.False(t, task.Completed)
	// No due date lands in the default bucket.
	assert.Equal(t, []string{"today"}, task.Tags)
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateTask(context.Background(), &models.TaskCreate{})
	assert.ErrorIs(t, err, ErrNameEmpty)

	_, err = svc.CreateTask(context.Background(), &models.TaskCreate{Name: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestUpdateTaskCompletionSync(t *testing.T) {
	svc, _ := newTestService()
	task, err := svc.CreateTask(context.Background(), &models.TaskCreate{Name: "Ship release"})
	require.NoError(t, err)

	// Completed flag drives status.
	updated, err := svc.UpdateTask(context.Background(), task.ID, &models.TaskUpdate{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, updated.Status)
	assert.True(t, updated.Completed)
	assert.Equal(t, []string{"completed"}, updated.Tags)

	// Status drives the flag back.
	status := models.TaskStatusInProgress
	updated, err = svc.UpdateTask(context.Background(), task.ID, &models.TaskUpdate{Status: &status})
	require.NoError(t, err)
	assert.False(t, updated.Completed)
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)

	// Un-completing falls back to pending.
	_, err = svc.UpdateTask(context.Background(), task.ID, &models.TaskUpdate{Completed: boolPtr(true)})
	require.NoError(t, err)
	updated, err = svc.UpdateTask(context.Background(), task.ID, &models.TaskUpdate{Completed: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, updated.Status)
}

func TestUpdateTaskValidation(t *testing.T) {
	svc, _ := newTestService()
	task, err := svc.CreateTask(context.Background(), &models.TaskCreate{Name: "Edit me"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(context.Background(), task.ID, &models.TaskUpdate{Name: strPtr("")})
	assert.ErrorIs(t, err, ErrNameEmpty)

	badStatus := models.TaskStatus("archived")
	_, err = svc.UpdateTask(context.Background(), task.ID, &models.TaskUpdate{Status: &badStatus})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateTask(context.Background(), "missing", &models.TaskUpdate{})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListTasksFilterAndOrder(t *testing.T) {
	svc, st := newTestService()
	base := fixedNow()
	st.Create(models.Task{ID: "b", Name: "Second", CreatedAt: base.Add(time.Minute)})
	st.Create(models.Task{ID: "a", Name: "First", CreatedAt: base})
	st.Create(models.Task{ID: "c", Name: "Done", CreatedAt: base.Add(2 * time.Minute), Completed: true, Status: models.TaskStatusCompleted})

	all, err := svc.ListTasks(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "First", all[0].Name)
	assert.Equal(t, "Second", all[1].Name)

	pending, err := svc.ListTasks(context.Background(), boolPtr(false))
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	done, err := svc.ListTasks(context.Background(), boolPtr(true))
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Done", done[0].Name)
}

func TestTasksByTag(t *testing.T) {
	svc, st := newTestService()
	now := fixedNow()
	yesterday := now.AddDate(0, 0, -1)
	st.Create(models.Task{ID: "late", Name: "Late", Priority: models.PriorityHigh, DueDate: &yesterday, CreatedAt: now})
	st.Create(models.Task{ID: "done", Name: "Done", Completed: true, CreatedAt: now})

	overdue, err := svc.TasksByTag(context.Background(), "overdue")
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].ID)
	assert.ElementsMatch(t, []string{"overdue", "important"}, overdue[0].Tags)

	both, err := svc.TasksByTags(context.Background(), []string{"overdue", "important"})
	require.NoError(t, err)
	assert.Len(t, both, 1)

	none, err := svc.TasksByTags(context.Background(), []string{"overdue", "completed"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStats(t *testing.T) {
	svc, st := newTestService()
	now := fixedNow()
	today := now.Add(2 * time.Hour)
	yesterday := now.AddDate(0, 0, -1)

	st.Create(models.Task{ID: "1", Name: "Due today", Priority: models.PriorityHigh, DueDate: &today, Status: models.TaskStatusPending})
	st.Create(models.Task{ID: "2", Name: "Overdue", Priority: models.PriorityMedium, DueDate: &yesterday, Status: models.TaskStatusInProgress})
	st.Create(models.Task{ID: "3", Name: "Done", Priority: models.PriorityLow, Completed: true, Status: models.TaskStatusCompleted, DueDate: &yesterday})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.DueToday)
	// Completed tasks never count as overdue.
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.ByPriority["high"])
	assert.Equal(t, 1, stats.ByStatus["in_progress"])
	assert.Equal(t, 1, stats.ByTags["completed"])
	assert.Equal(t, 1, stats.ByTags["important"])
}

func TestCalendar(t *testing.T) {
	svc, st := newTestService()
	due := time.Date(2026, time.June, 20, 18, 0, 0, 0, time.UTC)
	sched, err := models.ParseDate("2026-06-20")
	require.NoError(t, err)
	otherMonth := time.Date(2026, time.July, 1, 18, 0, 0, 0, time.UTC)

	st.Create(models.Task{ID: "1", Name: "Due and scheduled", DueDate: &due, ScheduledDate: &sched})
	st.Create(models.Task{ID: "2", Name: "Next month", DueDate: &otherMonth})

	days, err := svc.Calendar(context.Background(), 2026, time.June)
	require.NoError(t, err)
	require.Len(t, days, 1)

	day := days["2026-06-20"]
	assert.Len(t, day.Due, 1)
	assert.Len(t, day.Scheduled, 1)
}

func TestSchedulePreview(t *testing.T) {
	svc, st := newTestService()
	date, err := models.ParseDate("2026-06-15")
	require.NoError(t, err)
	due := time.Date(2026, time.June, 15, 18, 0, 0, 0, time.UTC)
	overdueDue := time.Date(2026, time.June, 10, 18, 0, 0, 0, time.UTC)

	st.Create(models.Task{ID: "1", Name: "Sized", DueDate: &due, Priority: models.PriorityHigh, EstimatedHours: floatPtr(1.5)})
	st.Create(models.Task{ID: "2", Name: "Unsized", ScheduledDate: &date, DueDate: &overdueDue, Priority: models.PriorityLow})
	st.Create(models.Task{ID: "3", Name: "Done", DueDate: &due, Completed: true, Status: models.TaskStatusCompleted})

	preview, err := svc.SchedulePreview(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, 2, preview.TaskCount)
	// Unsized tasks count as 2.0 hours.
	assert.Equal(t, 3.5, preview.TotalEstimatedHours)
	assert.Equal(t, 1, preview.HighPriorityCount)
	assert.Equal(t, 1, preview.OverdueCount)
	assert.Len(t, preview.Tasks, 2)
}

func TestDeleteTask(t *testing.T) {
	svc, _ := newTestService()
	task, err := svc.CreateTask(context.Background(), &models.TaskCreate{Name: "Remove me"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(context.Background(), task.ID))
	assert.ErrorIs(t, svc.DeleteTask(context.Background(), task.ID), ErrTaskNotFound)

	_, err = svc.GetTask(context.Background(), task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
