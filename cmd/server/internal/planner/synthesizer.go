package planner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/planpilot/planpilot/cmd/server/internal/fingerprint"
	"github.com/planpilot/planpilot/cmd/server/internal/models"
	"github.com/planpilot/planpilot/cmd/server/internal/oracle"
	"github.com/planpilot/planpilot/cmd/server/internal/store"
	"github.com/planpilot/planpilot/pkg/metrics"
)

const (
	// emptyDayEfficiency is reported for a date with no candidate tasks.
	emptyDayEfficiency  = 10
	defaultEfficiency   = 8
	emptyDaySuggestion  = "No tasks are due today. Take the chance to rest or plan ahead."
	scheduleClockLayout = "15:04"
)

// Synthesizer turns a date's candidate task set into a validated,
// duration-accounted day schedule, reusing the stored schedule when the
// task-set fingerprint has not changed.
type Synthesizer struct {
	tasks     store.TaskStore
	schedules store.ScheduleStore
	oracle    Oracle
	logger    *slog.Logger
	now       func() time.Time
}

func NewSynthesizer(tasks store.TaskStore, schedules store.ScheduleStore, o Oracle, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		tasks:     tasks,
		schedules: schedules,
		oracle:    o,
		logger:    logger,
		now:       time.Now,
	}
}

// Synthesize builds or reuses the day schedule for date.
//
// When taskIDs is non-empty, it names the candidate set explicitly
// (completed and unknown IDs are dropped); otherwise the candidates are
// the incomplete tasks due or scheduled on date. Unless force is set, a
// stored schedule whose fingerprint matches the candidate set is returned
// as-is without consulting the oracle. An oracle or parse failure returns
// an error and leaves any stored schedule untouched.
func (s *Synthesizer) Synthesize(ctx context.Context, date models.Date, taskIDs []string, force bool) (*models.DayScheduleResponse, error) {
	now := s.now()
	candidates := s.resolveCandidates(date, taskIDs)

	if len(candidates) == 0 {
		schedule := s.trivialSchedule(date, now)
		s.schedules.Put(date.String(), schedule)
		s.logger.Info("synthesized empty-day schedule", "date", date.String())
		return &models.DayScheduleResponse{
			Date:        date.String(),
			HasSchedule: true,
			Schedule:    &schedule,
		}, nil
	}

	fp := fingerprint.Compute(candidates)

	if !force {
		if existing, ok := s.schedules.Get(date.String()); ok && existing.Fingerprint == fp {
			metrics.RecordScheduleCacheLookup("hit")
			s.logger.Info("reusing stored schedule, task set unchanged",
				"date", date.String(), "items", len(existing.Items))
			return &models.DayScheduleResponse{
				Date:        date.String(),
				HasSchedule: true,
				Schedule:    &existing,
			}, nil
		}
		metrics.RecordScheduleCacheLookup("miss")
	}

	proposal, err := s.oracle.ProposeDaySchedule(ctx, candidates, date, now)
	if err != nil {
		return nil, fmt.Errorf("day schedule for %s: %w", date.String(), err)
	}

	items, total := validateSlots(proposal.Slots, candidates)
	s.logger.Info("validated schedule proposal",
		"date", date.String(),
		"proposed", len(proposal.Slots),
		"retained", len(items),
		"total_hours", total)

	efficiency := proposal.EfficiencyScore
	if efficiency <= 0 {
		efficiency = defaultEfficiency
	}
	suggestions := proposal.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	schedule := models.DaySchedule{
		ID:              uuid.NewString(),
		Date:            date,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           items,
		Suggestions:     suggestions,
		TotalHours:      total,
		EfficiencyScore: efficiency,
		Fingerprint:     fp,
	}
	s.schedules.Put(date.String(), schedule)

	return &models.DayScheduleResponse{
		Date:        date.String(),
		HasSchedule: true,
		Schedule:    &schedule,
	}, nil
}

// TasksChangedSince reports whether the stored fingerprint still matches
// the current candidate set for the schedule's date. Used by reads to
// annotate a previously generated schedule.
func (s *Synthesizer) TasksChangedSince(schedule models.DaySchedule) bool {
	current := fingerprint.Compute(s.tasks.ForDate(schedule.Date))
	return current != schedule.Fingerprint
}

func (s *Synthesizer) resolveCandidates(date models.Date, taskIDs []string) []models.Task {
	if len(taskIDs) > 0 {
		candidates := make([]models.Task, 0, len(taskIDs))
		for _, id := range taskIDs {
			task, ok := s.tasks.Get(id)
			if !ok || task.Completed {
				continue
			}
			candidates = append(candidates, task)
		}
		return candidates
	}
	return s.tasks.ForDate(date)
}

func (s *Synthesizer) trivialSchedule(date models.Date, now time.Time) models.DaySchedule {
	return models.DaySchedule{
		ID:              uuid.NewString(),
		Date:            date,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           []models.ScheduleItem{},
		Suggestions:     []string{emptyDaySuggestion},
		TotalHours:      0,
		EfficiencyScore: emptyDayEfficiency,
		Fingerprint:     fingerprint.Compute(nil),
	}
}

// validateSlots keeps the well-formed entries of an oracle proposal:
// the referenced task must be in the candidate set and the wall-clock
// span must parse with a positive duration. Everything else is dropped.
func validateSlots(slots []oracle.SlotProposal, candidates []models.Task) ([]models.ScheduleItem, float64) {
	byID := make(map[string]models.Task, len(candidates))
	for _, t := range candidates {
		byID[t.ID] = t
	}

	items := make([]models.ScheduleItem, 0, len(slots))
	var total float64
	for _, slot := range slots {
		task, ok := byID[slot.TaskID]
		if !ok {
			continue
		}
		duration, ok := slotDuration(slot.StartTime, slot.EndTime)
		if !ok {
			continue
		}
		items = append(items, models.ScheduleItem{
			TaskID:    task.ID,
			TaskName:  task.Name,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Duration:  duration,
			Priority:  task.Priority,
			Reason:    slot.Reason,
		})
		total += duration
	}
	return items, math.Round(total*100) / 100
}

func slotDuration(start, end string) (float64, bool) {
	from, err := time.Parse(scheduleClockLayout, start)
	if err != nil {
		return 0, false
	}
	to, err := time.Parse(scheduleClockLayout, end)
	if err != nil {
		return 0, false
	}
	hours := to.Sub(from).Hours()
	if hours <= 0 {
		return 0, false
	}
	return math.Round(hours*100) / 100, true
}
