package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planpilot/planpilot/cmd/server/internal/models"
	"github.com/planpilot/planpilot/cmd/server/internal/services"
	"github.com/planpilot/planpilot/cmd/server/internal/tags"
)

// taskErrorResponse maps service errors onto HTTP status codes.
func taskErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		notFoundResponse(c, "task")
	case errors.Is(err, services.ErrNameEmpty),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus):
		badRequestResponse(c, err.Error())
	default:
		internalErrorResponse(c, err)
	}
}

// HandleCreateTask POST /api/v1/tasks
func HandleCreateTask(taskService services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var create models.TaskCreate
		if err := c.ShouldBindJSON(&create); err != nil {
			badRequestResponse(c, "invalid task payload: "+err.Error())
			return
		}

		task, err := taskService.CreateTask(c.Request.Context(), &create)
		if err != nil {
			taskErrorResponse(c, err)
			return
		}
		c.JSON(201, task)
	}
}

// HandleListTasks GET /api/v1/tasks?completed=true|false
func HandleListTasks(taskService services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var completed *bool
		if raw := c.Query("completed"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				badRequestResponse(c, "invalid completed filter: "+raw)
				return
			}
			completed = &parsed
		}

		tasks, err := taskService.ListTasks(c.Request.Context(), completed)
		if err != nil {
			taskErrorResponse(c, err)
			return
		}
		successResponse(c, tasks)
	}
}

// HandleGetTask GET /api/v1/tasks/:task_id
func HandleGetTask(taskService services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		task, err := taskService.GetTask(c.Request.Context(), c.Param("task_id"))
		if err != nil {
			taskErrorResponse(c, err)
			return
		}
		successResponse(c, task)
	}
}

// HandleUpdateTask PUT /api/v1/tasks/:task_id
func HandleUpdateTask(taskService services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var update models.TaskUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			badRequestResponse(c, "invalid task payload: "+err.Error())
			return
		}

		task, err := taskService.UpdateTask(c.Request.Context(), c.Param("task_id"), &update)
		if err != nil {
			taskErrorResponse(c, err)
			return
		}
		successResponse(c, task)
	}
}

// HandleDeleteTask DELETE /api/v1/tasks/:task_id
func HandleDeleteTask(taskService services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := taskService.DeleteTask(c.Request.Context(), c.Param("task_id")); err != nil {
			taskErrorResponse(c, err)
			return
		}
		successResponseWithMessage(c, "task deleted", gin.H{"task_id": c.Param("task_id")})
	}
}

// HandleTasksByTag GET /api/v1/tasks/by-tag/:tag
func HandleTasksByTag(taskService services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks, err := taskService.TasksByTag(c.Request.Context(), c.Param("tag"))
		if err != nil {
			taskErrorResponse(c, err)
			return
		}
		successResponse(c, tasks)
	}
}

// HandleTasksByTags GET /api/v1/tasks/by-tags?tags=a,b
func HandleTasksByTags(taskService services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("tags")
		if raw == "" {
			badRequestResponse(c, "tags query parameter is required")
			return
		}
		var wanted []string
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				wanted = append(wanted, tag)
			}
		}

		tasks, err := taskService.TasksByTags(c.Request.Context(), wanted)
		if err != nil {
			taskErrorResponse(c, err)
			return
		}
		successResponse(c, tasks)
	}
}

// HandleStats GET /api/v1/stats
func HandleStats(taskService services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := taskService.Stats(c.Request.Context())
		if err != nil {
			taskErrorResponse(c, err)
			return
		}
		successResponse(c, stats)
	}
}

// HandleCalendar GET /api/v1/calendar/:year/:month
func HandleCalendar(taskService services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, err := strconv.Atoi(c.Param("year"))
		if err != nil || year < 1 {
			badRequestResponse(c, "invalid year: "+c.Param("year"))
			return
		}
		month, err := strconv.Atoi(c.Param("month"))
		if err != nil || month < 1 || month > 12 {
			badRequestResponse(c, "invalid month: "+c.Param("month"))
			return
		}

		days, err := taskService.Calendar(c.Request.Context(), year, time.Month(month))
		if err != nil {
			taskErrorResponse(c, err)
			return
		}
		successResponse(c, gin.H{
			"year":  year,
			"month": month,
			"days":  days,
		})
	}
}

// HandleTagCatalog GET /api/v1/tags
func HandleTagCatalog() gin.HandlerFunc {
	return func(c *gin.Context) {
		successResponse(c, gin.H{
			"tags":         tags.Strings(tags.All()),
			"descriptions": tags.Descriptions(),
		})
	}
}
