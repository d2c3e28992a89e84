package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-hrms/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeNotificationRepo struct {
	createFn        func(ctx context.Context, n *Notification) error
	findAllByUserFn func(ctx context.Context, userID string) ([]Notification, error)
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *Notification) error {
	if f.createFn != nil {
		return f.createFn(ctx, n)
	}
	return nil
}

func (f *fakeNotificationRepo) FindAllByUser(ctx context.Context, userID string) ([]Notification, error) {
	if f.findAllByUserFn != nil {
		return f.findAllByUserFn(ctx, userID)
	}
	return nil, nil
}

func leaveEvent(source string) events.LeaveMarkedEvent {
	return events.LeaveMarkedEvent{
		EventType:    events.EventTypeLeaveMarked,
		AttendanceID: uuid.New().String(),
		UserID:       uuid.New().String(),
		Date:         "2025-03-07",
		Source:       source,
		OccurredAt:   time.Now().UTC(),
	}
}

func TestService_RecordLeaveMarked(t *testing.T) {
	var saved *Notification
	repo := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *Notification) error { saved = n; return nil },
	}
	svc := NewService(repo)

	event := leaveEvent(events.LeaveSourceScheduler)
	err := svc.RecordLeaveMarked(context.Background(), event)
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, KindLeaveMarked, saved.Kind)
	assert.Equal(t, event.UserID, saved.UserID.String())
	assert.Contains(t, saved.Message, "auto-marked")
	assert.Contains(t, saved.Message, "2025-03-07")
}

func TestService_RecordLeaveMarked_ManualMessage(t *testing.T) {
	var saved *Notification
	repo := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *Notification) error { saved = n; return nil },
	}
	svc := NewService(repo)

	err := svc.RecordLeaveMarked(context.Background(), leaveEvent(events.LeaveSourceManual))
	assert.NoError(t, err)
	assert.NotContains(t, saved.Message, "auto-marked")
}

func TestService_RecordLeaveMarked_DuplicateAbsorbed(t *testing.T) {
	repo := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *Notification) error {
			return errors.New(`ERROR: duplicate key value violates unique constraint "uq_notifications_attendance" (SQLSTATE 23505)`)
		},
	}
	svc := NewService(repo)

	err := svc.RecordLeaveMarked(context.Background(), leaveEvent(events.LeaveSourceScheduler))
	assert.NoError(t, err)
}

func TestService_RecordLeaveMarked_BadEvent(t *testing.T) {
	svc := NewService(&fakeNotificationRepo{})

	event := leaveEvent(events.LeaveSourceManual)
	event.UserID = "not-a-uuid"
	err := svc.RecordLeaveMarked(context.Background(), event)
	assert.Error(t, err)

	event = leaveEvent(events.LeaveSourceManual)
	event.Date = "07/03/2025"
	err = svc.RecordLeaveMarked(context.Background(), event)
	assert.Error(t, err)
}

func TestService_GetAllByUser(t *testing.T) {
	userID := uuid.New()
	repo := &fakeNotificationRepo{
		findAllByUserFn: func(ctx context.Context, uid string) ([]Notification, error) {
			return []Notification{{
				ID:      uuid.New(),
				UserID:  userID,
				Kind:    KindLeaveMarked,
				Date:    time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
				Message: "Leave marked for 2025-03-07",
			}}, nil
		},
	}
	svc := NewService(repo)

	resp, err := svc.GetAllByUser(context.Background(), userID.String())
	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, "2025-03-07", resp[0].Date)
}
