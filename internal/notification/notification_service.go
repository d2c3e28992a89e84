package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-hrms/internal/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type NotificationResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Kind      string `json:"kind"`
	Source    string `json:"source,omitempty"`
	Date      string `json:"date,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	// RecordLeaveMarked is idempotent per attendance id; a redelivered event
	// is absorbed without error.
	RecordLeaveMarked(ctx context.Context, event events.LeaveMarkedEvent) error
	GetAllByUser(ctx context.Context, userID string) ([]NotificationResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) RecordLeaveMarked(ctx context.Context, event events.LeaveMarkedEvent) error {
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id in leave event: %w", err)
	}
	attendanceID, err := uuid.Parse(event.AttendanceID)
	if err != nil {
		return fmt.Errorf("invalid attendance id in leave event: %w", err)
	}
	date, err := time.Parse("2006-01-02", event.Date)
	if err != nil {
		return fmt.Errorf("invalid date in leave event: %w", err)
	}

	message := fmt.Sprintf("Leave marked for %s", event.Date)
	if event.Source == events.LeaveSourceScheduler {
		message = fmt.Sprintf("Leave auto-marked for %s (no attendance recorded)", event.Date)
	}

	n := &Notification{
		ID:           uuid.New(),
		UserID:       userID,
		AttendanceID: attendanceID,
		Kind:         KindLeaveMarked,
		Source:       event.Source,
		Date:         date,
		Message:      message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		if isDuplicateNotification(err) {
			s.logger.Warn("notification already recorded, skipping",
				zap.String("attendance_id", event.AttendanceID),
			)
			return nil
		}
		return err
	}

	s.logger.Info("leave notification recorded",
		zap.String("user_id", event.UserID),
		zap.String("date", event.Date),
		zap.String("source", event.Source),
	)
	return nil
}

func (s *service) GetAllByUser(ctx context.Context, userID string) ([]NotificationResponse, error) {
	rows, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := make([]NotificationResponse, len(rows))
	for i, n := range rows {
		resp[i] = NotificationResponse{
			ID:        n.ID.String(),
			UserID:    n.UserID.String(),
			Kind:      n.Kind,
			Source:    n.Source,
			Date:      n.Date.Format("2006-01-02"),
			Message:   n.Message,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

func isDuplicateNotification(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_notifications_attendance"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_notifications_attendance")
}
