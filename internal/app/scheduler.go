package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-hrms/internal/attendance"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/scheduler"
	"go-hrms/internal/shared/clock"
	"go-hrms/internal/shared/connection"
	"go-hrms/internal/user"

	"go.uber.org/zap"
)

// RunScheduler drives the daily leave backfill until interrupted. Backfilled
// leaves go through the same engine as manual ones, so they land in the
// outbox too.
func RunScheduler() error {
	logger := zap.L().Named("app.scheduler")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	clk := clock.System()

	userRepo := user.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	attendanceService := attendance.NewServiceWithOutbox(sqlDB, attendanceRepo, userRepo, outboxRepo, clk)

	leaveScheduler := scheduler.NewLeaveScheduler(
		userRepo,
		attendanceService,
		clk,
		24*time.Hour,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go leaveScheduler.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("scheduler shutting down")
	cancel()

	return nil
}
