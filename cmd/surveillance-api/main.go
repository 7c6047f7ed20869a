package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/examena/surveillance-api/api/swagger"
	"github.com/examena/surveillance-api/internal/handler"
	"github.com/examena/surveillance-api/internal/middleware"
	"github.com/examena/surveillance-api/internal/repository"
	"github.com/examena/surveillance-api/internal/service"
	"github.com/examena/surveillance-api/pkg/cache"
	"github.com/examena/surveillance-api/pkg/config"
	"github.com/examena/surveillance-api/pkg/database"
	"github.com/examena/surveillance-api/pkg/logger"
	corsmiddleware "github.com/examena/surveillance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/examena/surveillance-api/pkg/middleware/requestid"
)

// @title Surveillance Planning API
// @version 1.0.0
// @description Exam surveillance assignment engine
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, roster caching disabled", "error", err)
		redisClient = nil
	}

	teacherRepo := repository.NewTeacherRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	examRepo := repository.NewExamRoomRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Rosters.CacheTTL, logr, cfg.Rosters.CacheEnabled && redisClient != nil)

	planningSvc := service.NewPlanningService(teacherRepo, gradeRepo, examRepo, preferenceRepo, assignmentRepo,
		cacheSvc, metricsSvc, nil, cfg.Solver, logr)
	editSvc := service.NewEditService(teacherRepo, gradeRepo, examRepo, assignmentRepo, cacheSvc, planningSvc.Locks(), logr)
	rosterSvc := service.NewRosterService(teacherRepo, gradeRepo, examRepo, assignmentRepo, cacheSvc, cfg.Solver.MinPerRoom, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, gradeRepo, preferenceRepo, assignmentRepo, logr)
	importSvc := service.NewImportService(teacherRepo, gradeRepo, examRepo, preferenceRepo, assignmentRepo, cfg.Imports.MaxRows, logr)
	exportSvc := service.NewExportService(rosterSvc, nil, nil, logr)

	planningHandler := handler.NewPlanningHandler(planningSvc)
	editHandler := handler.NewEditHandler(editSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	importHandler := handler.NewImportHandler(importSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/status", metricsHandler.Status)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/planning/solve", planningHandler.Solve)
		api.POST("/planning/reset", planningHandler.Reset)

		api.POST("/assignments", editHandler.Add)
		api.DELETE("/assignments", editHandler.Remove)

		api.GET("/rosters/teachers/:id", rosterHandler.TeacherRoster)
		api.GET("/rosters/session", rosterHandler.SessionRoster)
		api.GET("/rosters/sessions", rosterHandler.Sessions)
		api.GET("/rosters/workload", rosterHandler.Workload)

		api.GET("/teachers", teacherHandler.List)
		api.GET("/teachers/:id", teacherHandler.Get)
		api.PATCH("/teachers/:id/participation", teacherHandler.SetParticipation)
		api.GET("/teachers/:id/preferences", teacherHandler.Preferences)
		api.PUT("/teachers/:id/preferences", teacherHandler.ReplacePreferences)
		api.GET("/grades", teacherHandler.Grades)

		api.POST("/imports/teachers", importHandler.Teachers)
		api.POST("/imports/grades", importHandler.Grades)
		api.POST("/imports/exams", importHandler.ExamCalendar)
		api.POST("/imports/preferences", importHandler.Preferences)

		api.GET("/exports/teachers/:id", exportHandler.TeacherRoster)
		api.GET("/exports/session", exportHandler.SessionRoster)
		api.GET("/exports/workload", exportHandler.Workload)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
