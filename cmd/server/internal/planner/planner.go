// Package planner contains the asynchronous planning core: goal
// decomposition, day-schedule synthesis, and the background runner that
// drives both behind job handles.
package planner

import (
	"context"
	"time"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
	"github.com/planpilot/planpilot/cmd/server/internal/oracle"
)

// Oracle is the planning oracle as the core consumes it. Both calls are
// single-attempt and timeout-bounded; the caller decides whether a
// failure fails the surrounding job.
type Oracle interface {
	ProposeDecomposition(ctx context.Context, goal string, maxTasks int, now time.Time) (*oracle.DecompositionProposal, error)
	ProposeDaySchedule(ctx context.Context, tasks []models.Task, date models.Date, now time.Time) (*oracle.ScheduleProposal, error)
}
