package app

import (
	"database/sql"

	"go-hrms/internal/attendance"
	"go-hrms/internal/dashboard"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/middleware"
	"go-hrms/internal/notification"
	"go-hrms/internal/shared/clock"
	"go-hrms/internal/shared/counter"
	"go-hrms/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	clk := clock.System()

	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	userService := user.NewService(db, userRepo, counterRepo, clk)
	attendanceService := attendance.NewServiceWithOutbox(db, attendanceRepo, userRepo, outboxRepo, clk)
	dashboardService := dashboard.NewService(attendanceService, rdb, clk)
	notificationService := notification.NewService(notificationRepo)

	// --- Handlers ---
	userHandler := user.NewHandler(userService)
	attendanceHandler := attendance.NewHandler(attendanceService, clk)
	dashboardHandler := dashboard.NewHandler(dashboardService)
	notificationHandler := notification.NewHandler(notificationService)

	// --- Routes ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(rate.Limit(20), 40))
	{
		user.RegisterRoutes(api, userHandler)
		attendance.RegisterRoutes(api, attendanceHandler, middleware.Idempotency(rdb))
		dashboard.RegisterRoutes(api, dashboardHandler)
		notification.RegisterRoutes(api, notificationHandler)
	}

	return nil
}
