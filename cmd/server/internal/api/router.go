package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the full API surface under /api/v1.
func RegisterRoutes(r *gin.Engine, deps PlanningDeps) {
	v1 := r.Group("/api/v1")

	tasks := v1.Group("/tasks")
	{
		tasks.POST("", HandleCreateTask(deps.Tasks))
		tasks.GET("", HandleListTasks(deps.Tasks))
		tasks.GET("/by-tag/:tag", HandleTasksByTag(deps.Tasks))
		tasks.GET("/by-tags", HandleTasksByTags(deps.Tasks))
		tasks.GET("/:task_id", HandleGetTask(deps.Tasks))
		tasks.PUT("/:task_id", HandleUpdateTask(deps.Tasks))
		tasks.DELETE("/:task_id", HandleDeleteTask(deps.Tasks))
	}

	v1.GET("/calendar/:year/:month", HandleCalendar(deps.Tasks))
	v1.GET("/stats", HandleStats(deps.Tasks))
	v1.GET("/tags", HandleTagCatalog())

	ai := v1.Group("/ai")
	{
		ai.POST("/plan-tasks/async", HandlePlanTasksAsync(deps))
		ai.POST("/schedule-day/async", HandleScheduleDayAsync(deps))
		ai.GET("/schedule-day/:date", HandleSchedulePreview(deps))
		ai.GET("/jobs/:job_id", HandleGetJob(deps))
		ai.GET("/schedule/:date", HandleGetSchedule(deps))
		ai.DELETE("/schedule/:date", HandleDeleteSchedule(deps))
	}
}
