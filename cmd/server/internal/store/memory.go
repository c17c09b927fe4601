package store

import (
	"sync"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
)

// MemoryTaskStore is a mutex-guarded in-memory TaskStore.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

// NewMemoryTaskStore creates an empty in-memory task store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]models.Task)}
}

func (s *MemoryTaskStore) Create(task models.Task) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = cloneTask(task)
	return task
}

func (s *MemoryTaskStore) Get(taskID string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return models.Task{}, false
	}
	return cloneTask(task), true
}

func (s *MemoryTaskStore) List() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, cloneTask(task))
	}
	return out
}

func (s *MemoryTaskStore) Update(taskID string, task models.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		return false
	}
	s.tasks[taskID] = cloneTask(task)
	return true
}

func (s *MemoryTaskStore) Delete(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		return false
	}
	delete(s.tasks, taskID)
	return true
}

func (s *MemoryTaskStore) ForDate(date models.Date) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Task
	for _, task := range s.tasks {
		if task.Completed {
			continue
		}
		onDate := false
		if task.DueDate != nil && models.DateOf(*task.DueDate).Equal(date) {
			onDate = true
		}
		if task.ScheduledDate != nil && task.ScheduledDate.Equal(date) {
			onDate = true
		}
		if onDate {
			out = append(out, cloneTask(task))
		}
	}
	return out
}

// cloneTask copies pointer fields so callers cannot mutate stored state
// through a returned snapshot.
func cloneTask(task models.Task) models.Task {
	out := task
	if task.DueDate != nil {
		due := *task.DueDate
		out.DueDate = &due
	}
	if task.ScheduledDate != nil {
		sched := *task.ScheduledDate
		out.ScheduledDate = &sched
	}
	if task.EstimatedHours != nil {
		hours := *task.EstimatedHours
		out.EstimatedHours = &hours
	}
	if task.Tags != nil {
		out.Tags = append([]string(nil), task.Tags...)
	}
	return out
}

// MemoryScheduleStore is a mutex-guarded in-memory ScheduleStore.
type MemoryScheduleStore struct {
	mu        sync.RWMutex
	schedules map[string]models.DaySchedule
}

// NewMemoryScheduleStore creates an empty in-memory schedule store.
func NewMemoryScheduleStore() *MemoryScheduleStore {
	return &MemoryScheduleStore{schedules: make(map[string]models.DaySchedule)}
}

func (s *MemoryScheduleStore) Put(dateKey string, schedule models.DaySchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[dateKey] = cloneSchedule(schedule)
}

func (s *MemoryScheduleStore) Get(dateKey string) (models.DaySchedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedule, ok := s.schedules[dateKey]
	if !ok {
		return models.DaySchedule{}, false
	}
	return cloneSchedule(schedule), true
}

func (s *MemoryScheduleStore) Delete(dateKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[dateKey]; !ok {
		return false
	}
	delete(s.schedules, dateKey)
	return true
}

func cloneSchedule(schedule models.DaySchedule) models.DaySchedule {
	out := schedule
	out.Items = append([]models.ScheduleItem(nil), schedule.Items...)
	out.Suggestions = append([]string(nil), schedule.Suggestions...)
	return out
}
