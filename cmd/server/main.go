package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planpilot/planpilot/cmd/server/internal/api"
	"github.com/planpilot/planpilot/cmd/server/internal/config"
	"github.com/planpilot/planpilot/cmd/server/internal/jobs"
	"github.com/planpilot/planpilot/cmd/server/internal/middleware"
	"github.com/planpilot/planpilot/cmd/server/internal/oracle"
	"github.com/planpilot/planpilot/cmd/server/internal/planner"
	"github.com/planpilot/planpilot/cmd/server/internal/services"
	"github.com/planpilot/planpilot/cmd/server/internal/store"
	"github.com/planpilot/planpilot/pkg/logger"
)

func main() {
	// Load configuration first so logging honors it.
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFormat := "dev"
	if cfg.Log.Format == "json" {
		logFormat = "prod"
	}
	logInstance, err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Environment: logFormat,
		WithSource:  !cfg.IsProduction(),
		File:        cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	appLogger := logInstance.With("component", "web-server")

	if err := config.ValidateConfig(cfg); err != nil {
		appLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	appLogger.Info("configuration loaded", "env", cfg.Server.Env, "port", cfg.Server.Port)
	if cfg.IsDevelopment() {
		fmt.Println(cfg.PrintConfig())
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Stores and job registry.
	taskStore := store.NewMemoryTaskStore()
	scheduleStore := store.NewMemoryScheduleStore()
	registry := jobs.NewRegistry()

	// Planning oracle client.
	oracleClient := oracle.NewClient(oracle.Config{
		BaseURL: cfg.Oracle.BaseURL,
		APIKey:  cfg.Oracle.APIKey,
		Model:   cfg.Oracle.Model,
		Timeout: time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second,
	}, logInstance.With("component", "oracle-client"))
	if cfg.Oracle.APIKey == "" {
		appLogger.Warn("oracle API key not set, planning jobs will fail until configured")
	}

	// Planning core.
	plannerLogger := logInstance.With("component", "planner")
	decomposer := planner.NewDecomposer(taskStore, oracleClient, plannerLogger)
	synthesizer := planner.NewSynthesizer(taskStore, scheduleStore, oracleClient, plannerLogger)
	runner := planner.NewRunner(registry, cfg.Worker.Count, cfg.Worker.QueueSize, logInstance.With("component", "job-runner"))
	appLogger.Info("planning services ready", "workers", cfg.Worker.Count, "queue_size", cfg.Worker.QueueSize)

	taskService := services.NewTaskService(taskStore)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	startTime := time.Now()
	r.GET("/health", healthCheckHandler(cfg, startTime))
	r.GET("/api/v1/health", healthCheckHandler(cfg, startTime))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api.RegisterRoutes(r, api.PlanningDeps{
		Jobs:        registry,
		Runner:      runner,
		Decomposer:  decomposer,
		Synthesizer: synthesizer,
		Schedules:   scheduleStore,
		Tasks:       taskService,
	})

	srv := &http.Server{
		Addr:    cfg.GetServerAddr(),
		Handler: r,
	}

	go func() {
		appLogger.Info("server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	appLogger.Info("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight planning jobs reach a terminal state before exit.
	if err := runner.Shutdown(ctx); err != nil {
		appLogger.Error("job runner drain timed out", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server shutdown complete")
}

func healthCheckHandler(cfg *config.Config, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"env":            cfg.Server.Env,
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		})
	}
}
