package scheduler

import (
	"context"
	"time"

	"go-hrms/internal/attendance"
	"go-hrms/internal/events"
	"go-hrms/internal/shared/clock"
	"go-hrms/internal/user"

	"go.uber.org/zap"
)

// UserSource lists the directory the backfill walks over and resolves each
// user's roles for the eligibility check.
type UserSource interface {
	FindAll(ctx context.Context) ([]user.User, error)
	RolesOf(ctx context.Context, id string) ([]string, error)
}

// AttendanceEngine is the slice of the attendance service the scheduler
// drives: a per-date lookup and the leave mutation.
type AttendanceEngine interface {
	RecordForDate(ctx context.Context, userID string, date time.Time) (*attendance.AttendanceResponse, error)
	MarkLeave(ctx context.Context, userID string, date time.Time, source string) (bool, error)
}

// LeaveScheduler backfills leave for every past working day without an
// attendance record, from each user's registration date up to yesterday.
type LeaveScheduler struct {
	users    UserSource
	engine   AttendanceEngine
	clk      clock.Clock
	interval time.Duration
	logger   *zap.Logger
}

func NewLeaveScheduler(
	users UserSource,
	engine AttendanceEngine,
	clk clock.Clock,
	interval time.Duration,
	logger ...*zap.Logger,
) *LeaveScheduler {
	l := zap.L().Named("scheduler.leave")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("scheduler.leave")
	}
	if clk == nil {
		clk = clock.System()
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &LeaveScheduler{
		users:    users,
		engine:   engine,
		clk:      clk,
		interval: interval,
		logger:   l,
	}
}

// Run blocks: one cycle immediately, then one per interval, until the
// context is cancelled.
func (s *LeaveScheduler) Run(ctx context.Context) {
	s.logger.Info("leave scheduler started", zap.Duration("interval", s.interval))

	s.RunCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("leave scheduler stopped")
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle executes one backfill pass. Every failure is logged and skipped;
// a cycle never aborts the loop.
func (s *LeaveScheduler) RunCycle(ctx context.Context) {
	today := clock.Midnight(s.clk.Now())

	if isWeekend(today) {
		s.logger.Info("skipping cycle, today is a weekend",
			zap.String("date", today.Format("2006-01-02")),
		)
		return
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return
	}

	s.logger.Info("backfill cycle started", zap.Int("users", len(users)))

	for _, u := range users {
		if ctx.Err() != nil {
			return
		}
		if !u.Active() {
			continue
		}

		roles, err := s.users.RolesOf(ctx, u.ID.String())
		if err != nil {
			s.logger.Error("resolve roles failed",
				zap.String("user_id", u.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if !hasBackfillRole(roles) {
			continue
		}

		if u.RegistrationDate == nil {
			s.logger.Warn("user has no registration date, skipping",
				zap.String("user_id", u.ID.String()),
			)
			continue
		}

		s.backfillUser(ctx, u.ID.String(), clock.Midnight(*u.RegistrationDate), today)
	}

	s.logger.Info("backfill cycle finished")
}

// backfillUser walks working days from the registration date up to but
// excluding today and marks leave wherever no record exists.
func (s *LeaveScheduler) backfillUser(ctx context.Context, userID string, from, today time.Time) {
	for d := from; d.Before(today); d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}

		rec, err := s.engine.RecordForDate(ctx, userID, d)
		if err != nil {
			s.logger.Error("record lookup failed",
				zap.String("user_id", userID),
				zap.String("date", d.Format("2006-01-02")),
				zap.Error(err),
			)
			continue
		}
		if rec != nil {
			continue
		}

		ok, err := s.engine.MarkLeave(ctx, userID, d, events.LeaveSourceScheduler)
		if err != nil {
			s.logger.Error("backfill mark leave failed",
				zap.String("user_id", userID),
				zap.String("date", d.Format("2006-01-02")),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			s.logger.Warn("backfill mark leave rejected",
				zap.String("user_id", userID),
				zap.String("date", d.Format("2006-01-02")),
			)
			continue
		}

		s.logger.Info("leave backfilled",
			zap.String("user_id", userID),
			zap.String("date", d.Format("2006-01-02")),
		)
	}
}

func hasBackfillRole(roles []string) bool {
	for _, role := range roles {
		if role == user.RoleEmployee || role == user.RoleHR {
			return true
		}
	}
	return false
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
