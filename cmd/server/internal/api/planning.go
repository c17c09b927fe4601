package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/planpilot/planpilot/cmd/server/internal/jobs"
	"github.com/planpilot/planpilot/cmd/server/internal/models"
	"github.com/planpilot/planpilot/cmd/server/internal/planner"
	"github.com/planpilot/planpilot/cmd/server/internal/services"
	"github.com/planpilot/planpilot/cmd/server/internal/store"
	"github.com/planpilot/planpilot/pkg/logger"
)

// PlanningDeps bundles what the asynchronous planning endpoints need.
type PlanningDeps struct {
	Jobs        *jobs.Registry
	Runner      *planner.Runner
	Decomposer  *planner.Decomposer
	Synthesizer *planner.Synthesizer
	Schedules   store.ScheduleStore
	Tasks       services.TaskService
}

// failEnqueuedJob records a queue rejection on a just-created job. A
// terminal job at this point is a double-completion bug, not a drop.
func failEnqueuedJob(registry *jobs.Registry, jobID string, cause error) {
	if err := registry.Fail(jobID, cause.Error()); err != nil {
		logger.L().Error("job already terminal on enqueue failure",
			"job_id", jobID, "error", err)
	}
}

type planTasksRequest struct {
	Goal      string `json:"goal" binding:"required"`
	TaskCount int    `json:"task_count"`
}

type scheduleDayRequest struct {
	Date    string   `json:"date" binding:"required"`
	TaskIDs []string `json:"task_ids"`
}

// HandlePlanTasksAsync POST /api/v1/ai/plan-tasks/async
// Enqueues a goal decomposition job and returns its handle immediately.
func HandlePlanTasksAsync(deps PlanningDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req planTasksRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestResponse(c, "invalid request: "+err.Error())
			return
		}
		count := planner.ClampTaskCount(req.TaskCount)

		job := deps.Jobs.Create(models.JobKindDecompose)
		err := deps.Runner.Enqueue(job.JobID, job.Kind, func(ctx context.Context) (any, error) {
			return deps.Decomposer.Decompose(ctx, req.Goal, count)
		})
		if err != nil {
			failEnqueuedJob(deps.Jobs, job.JobID, err)
			errorResponse(c, 503, "planning queue unavailable: "+err.Error())
			return
		}

		acceptedResponse(c, gin.H{
			"job_id": job.JobID,
			"status": job.Status,
		})
	}
}

// HandleScheduleDayAsync POST /api/v1/ai/schedule-day/async?force_regenerate=true
// Enqueues a day-schedule synthesis job.
func HandleScheduleDayAsync(deps PlanningDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req scheduleDayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestResponse(c, "invalid request: "+err.Error())
			return
		}
		date, err := models.ParseDate(req.Date)
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}
		force, _ := strconv.ParseBool(c.Query("force_regenerate"))

		job := deps.Jobs.Create(models.JobKindSchedule)
		err = deps.Runner.Enqueue(job.JobID, job.Kind, func(ctx context.Context) (any, error) {
			return deps.Synthesizer.Synthesize(ctx, date, req.TaskIDs, force)
		})
		if err != nil {
			failEnqueuedJob(deps.Jobs, job.JobID, err)
			errorResponse(c, 503, "planning queue unavailable: "+err.Error())
			return
		}

		acceptedResponse(c, gin.H{
			"job_id": job.JobID,
			"status": job.Status,
		})
	}
}

// HandleGetJob GET /api/v1/ai/jobs/:job_id
func HandleGetJob(deps PlanningDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := deps.Jobs.Get(c.Param("job_id"))
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				notFoundResponse(c, "job")
				return
			}
			internalErrorResponse(c, err)
			return
		}
		successResponse(c, job)
	}
}

// HandleGetSchedule GET /api/v1/ai/schedule/:date
// Returns the stored schedule for the date, annotated with whether the
// candidate task set has drifted since it was generated.
func HandleGetSchedule(deps PlanningDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, err := models.ParseDate(c.Param("date"))
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}

		stored, ok := deps.Schedules.Get(date.String())
		if !ok {
			successResponse(c, models.DayScheduleResponse{
				Date:        date.String(),
				HasSchedule: false,
			})
			return
		}

		successResponse(c, models.DayScheduleResponse{
			Date:         date.String(),
			HasSchedule:  true,
			Schedule:     &stored,
			TasksChanged: deps.Synthesizer.TasksChangedSince(stored),
		})
	}
}

// HandleDeleteSchedule DELETE /api/v1/ai/schedule/:date
func HandleDeleteSchedule(deps PlanningDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, err := models.ParseDate(c.Param("date"))
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}
		if !deps.Schedules.Delete(date.String()) {
			notFoundResponse(c, "schedule")
			return
		}
		successResponseWithMessage(c, "schedule deleted", gin.H{"date": date.String()})
	}
}

// HandleSchedulePreview GET /api/v1/ai/schedule-day/:date
// Summarizes the date's candidate tasks without generating a schedule.
func HandleSchedulePreview(deps PlanningDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, err := models.ParseDate(c.Param("date"))
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}

		preview, err := deps.Tasks.SchedulePreview(c.Request.Context(), date)
		if err != nil {
			internalErrorResponse(c, err)
			return
		}
		successResponse(c, preview)
	}
}
