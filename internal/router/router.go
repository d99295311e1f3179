package router

import (
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/config"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/handler"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/infra"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/middleware"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/service"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, erpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	erpRepo := repository.NewERPNotificationRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg, service.SystemClock)
	supplierSvc := service.NewSupplierService(supplierRepo, userRepo, appointmentRepo, dispatcher, cfg.Domain)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, supplierRepo, scheduleRepo, erpRepo, dispatcher, service.SystemClock)
	scheduleSvc := service.NewScheduleService(scheduleRepo, appointmentRepo, service.SystemClock)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	suppliersH := handler.NewSupplierHandler(supplierSvc)
	appointmentsH := handler.NewAppointmentHandler(appointmentSvc)
	scheduleH := handler.NewScheduleHandler(scheduleSvc)
	reportsH := handler.NewReportsHandler(appointmentRepo, cfg.PDFStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, erpCB))

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	// Auth
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.GET("/verify", jwtMW, authH.Verify)
	}

	// Supplier portal
	supplier := r.Group("/v1/supplier", jwtMW, middleware.RequireRole("supplier"))
	{
		supplier.GET("/appointments", appointmentsH.ListWeek)
		supplier.POST("/appointments", appointmentsH.Create)
		supplier.PUT("/appointments/:id", appointmentsH.Update)
		supplier.DELETE("/appointments/:id", appointmentsH.Delete)
		supplier.GET("/available-slots", scheduleH.AvailableSlots)
	}

	// Back office
	admin := r.Group("/v1/admin", jwtMW, middleware.RequireRole("admin"))
	{
		admin.POST("/suppliers", suppliersH.Create)
		admin.GET("/suppliers", suppliersH.List)
		admin.PUT("/suppliers/:id", suppliersH.Update)
		admin.DELETE("/suppliers/:id", suppliersH.Delete)

		admin.GET("/appointments", appointmentsH.ListWeekAdmin)
		admin.PUT("/appointments/:id", appointmentsH.Update)
		admin.DELETE("/appointments/:id", appointmentsH.Delete)
		admin.POST("/appointments/:id/check-in", appointmentsH.CheckIn)
		admin.POST("/appointments/:id/check-out", appointmentsH.CheckOut)

		admin.POST("/schedule-config", scheduleH.UpsertConfig)
		admin.GET("/schedule-config", scheduleH.ListConfigs)
		admin.DELETE("/schedule-config/:id", scheduleH.DeleteConfig)
		admin.POST("/default-schedule", scheduleH.UpsertDefault)
		admin.GET("/default-schedule", scheduleH.ListDefaults)
		admin.DELETE("/default-schedule/:id", scheduleH.DeleteDefault)
		admin.GET("/available-times", scheduleH.AvailableTimes)

		admin.GET("/dock-sheet", reportsH.DockSheet)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
