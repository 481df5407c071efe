package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ruchikageeminda97/tms-api/internal/handler"
	"github.com/ruchikageeminda97/tms-api/internal/middleware"
	"github.com/ruchikageeminda97/tms-api/internal/models"
	"github.com/ruchikageeminda97/tms-api/internal/service"
	"github.com/ruchikageeminda97/tms-api/pkg/config"
	"github.com/ruchikageeminda97/tms-api/pkg/logger"
	corsmiddleware "github.com/ruchikageeminda97/tms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ruchikageeminda97/tms-api/pkg/middleware/requestid"

	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler the router wires up.
type Handlers struct {
	Auth        *handler.AuthHandler
	Students    *handler.StudentHandler
	Teachers    *handler.TeacherHandler
	Subjects    *handler.SubjectHandler
	Classes     *handler.ClassHandler
	Assignments *handler.AssignmentHandler
	Payments    *handler.PaymentHandler
	Attendance  *handler.AttendanceHandler
	Grades      *handler.GradeHandler
	Stats       *handler.StatsHandler
	Maintenance *handler.MaintenanceHandler
	Reports     *handler.ReportHandler
}

// Services carries the cross-cutting services the router needs directly.
type Services struct {
	Auth    *service.AuthService
	Stats   *service.StatsService
	Metrics *service.MetricsService
}

// Setup builds the gin engine with the full route table and role matrix.
//
// Write access follows a static table: Teacher-role users share create and
// update rights on students, classes, payments, attendance and grades;
// teachers, subjects and assignments are admin-only; attendance and grades
// are the only collections teachers may also delete.
func Setup(cfg *config.Config, logr *zap.Logger, h Handlers, svc Services) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svc.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(svc.Metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public surface.
	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.GET("/stats/today-classes", h.Stats.TodayClasses)
	api.GET("/reports/download", h.Reports.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(svc.Auth))
	authed.Use(middleware.InvalidateStatsCache(svc.Stats))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	adminOrTeacher := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	authed.GET("/me", h.Auth.Me)

	authed.GET("/stats/counts", adminOrTeacher, h.Stats.Counts)
	authed.GET("/stats/today-income", adminOrTeacher, h.Stats.TodayIncome)

	students := authed.Group("/students")
	{
		students.GET("", h.Students.List)
		students.GET("/:id", h.Students.Get)
		students.POST("", adminOrTeacher, h.Students.Create)
		students.PUT("/:id", adminOrTeacher, h.Students.Update)
		students.DELETE("/:id", adminOnly, h.Students.Delete)
	}

	teachers := authed.Group("/teachers")
	{
		teachers.GET("", h.Teachers.List)
		teachers.GET("/:id", h.Teachers.Get)
		teachers.POST("", adminOnly, h.Teachers.Create)
		teachers.PUT("/:id", adminOnly, h.Teachers.Update)
		teachers.DELETE("/:id", adminOnly, h.Teachers.Delete)
	}

	subjects := authed.Group("/subjects")
	{
		subjects.GET("", h.Subjects.List)
		subjects.GET("/:id", h.Subjects.Get)
		subjects.POST("", adminOnly, h.Subjects.Create)
		subjects.PUT("/:id", adminOnly, h.Subjects.Update)
		subjects.DELETE("/:id", adminOnly, h.Subjects.Delete)
	}

	classes := authed.Group("/classes")
	{
		classes.GET("", h.Classes.List)
		classes.GET("/:id", h.Classes.Get)
		classes.GET("/:id/roster", h.Classes.Roster)
		classes.POST("", adminOrTeacher, h.Classes.Create)
		classes.PUT("/:id", adminOrTeacher, h.Classes.Update)
		classes.DELETE("/:id", adminOnly, h.Classes.Delete)
	}

	assignments := authed.Group("/teacher-assignments")
	{
		assignments.GET("", h.Assignments.List)
		assignments.GET("/:id", h.Assignments.Get)
		assignments.POST("", adminOnly, h.Assignments.Create)
		assignments.PUT("/:id", adminOnly, h.Assignments.Update)
		assignments.DELETE("/:id", adminOnly, h.Assignments.Delete)
	}

	payments := authed.Group("/payments")
	{
		payments.GET("", h.Payments.List)
		payments.GET("/:id", h.Payments.Get)
		payments.POST("", adminOrTeacher, h.Payments.Create)
		payments.PUT("/:id", adminOrTeacher, h.Payments.Update)
		payments.DELETE("/:id", adminOnly, h.Payments.Delete)
	}

	attendance := authed.Group("/attendance")
	{
		attendance.GET("", h.Attendance.List)
		attendance.GET("/:id", h.Attendance.Get)
		attendance.POST("", adminOrTeacher, h.Attendance.Create)
		attendance.PUT("/:id", adminOrTeacher, h.Attendance.Update)
		attendance.DELETE("/:id", adminOrTeacher, h.Attendance.Delete)
	}

	grades := authed.Group("/grades")
	{
		grades.GET("", h.Grades.List)
		grades.GET("/:id", h.Grades.Get)
		grades.POST("", adminOrTeacher, h.Grades.Create)
		grades.PUT("/:id", adminOrTeacher, h.Grades.Update)
		grades.DELETE("/:id", adminOrTeacher, h.Grades.Delete)
	}

	maintenance := authed.Group("/maintenance", adminOnly)
	{
		maintenance.POST("/clean-classes", h.Maintenance.CleanClasses)
		maintenance.POST("/clean-payments", h.Maintenance.CleanPayments)
		// GET kept for parity with legacy trigger endpoints.
		maintenance.GET("/clean-classes", h.Maintenance.CleanClasses)
		maintenance.GET("/clean-payments", h.Maintenance.CleanPayments)
	}

	reports := authed.Group("/reports", adminOrTeacher)
	{
		reports.POST("/payments", h.Reports.Request)
		reports.GET("/:id", h.Reports.Status)
	}

	return r
}
