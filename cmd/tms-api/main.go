package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/ruchikageeminda97/tms-api/api/swagger"
	"github.com/ruchikageeminda97/tms-api/internal/handler"
	"github.com/ruchikageeminda97/tms-api/internal/repository"
	"github.com/ruchikageeminda97/tms-api/internal/router"
	"github.com/ruchikageeminda97/tms-api/internal/service"
	"github.com/ruchikageeminda97/tms-api/pkg/cache"
	"github.com/ruchikageeminda97/tms-api/pkg/config"
	"github.com/ruchikageeminda97/tms-api/pkg/database"
	"github.com/ruchikageeminda97/tms-api/pkg/jobs"
	"github.com/ruchikageeminda97/tms-api/pkg/logger"
	"github.com/ruchikageeminda97/tms-api/pkg/storage"
)

// @title TMS API
// @version 1.0.0
// @description Tuition-center record management service
// @BasePath /api/v1
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, stats caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare report storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, paymentRepo, attendanceRepo, gradeRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, assignmentRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, classRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, subjectRepo, assignmentRepo, paymentRepo, attendanceRepo, gradeRepo, studentRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, teacherRepo, classRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, classRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, classRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, studentRepo, classRepo, subjectRepo, validate, logr)
	statsSvc := service.NewStatsService(statsRepo, classRepo, attendanceRepo, assignmentRepo, cacheRepo, metricsSvc, cfg.Stats, logr)
	maintenanceSvc := service.NewMaintenanceService(classRepo, paymentRepo, logr)
	reportSvc := service.NewReportService(paymentRepo, store, signer, logr)

	reportQueue := jobs.NewQueue("payment-reports", reportSvc.Process, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportSvc.BindQueue(reportQueue)

	queueCtx, cancelQueue := context.WithCancel(context.Background())
	defer cancelQueue()
	reportQueue.Start(queueCtx)
	defer reportQueue.Stop()

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Teachers:    handler.NewTeacherHandler(teacherSvc),
		Subjects:    handler.NewSubjectHandler(subjectSvc),
		Classes:     handler.NewClassHandler(classSvc),
		Assignments: handler.NewAssignmentHandler(assignmentSvc),
		Payments:    handler.NewPaymentHandler(paymentSvc),
		Attendance:  handler.NewAttendanceHandler(attendanceSvc),
		Grades:      handler.NewGradeHandler(gradeSvc),
		Stats:       handler.NewStatsHandler(statsSvc),
		Maintenance: handler.NewMaintenanceHandler(maintenanceSvc),
		Reports:     handler.NewReportHandler(reportSvc, store),
	}
	services := router.Services{
		Auth:    authSvc,
		Stats:   statsSvc,
		Metrics: metricsSvc,
	}

	engine := router.Setup(cfg, logr, handlers, services)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
}
