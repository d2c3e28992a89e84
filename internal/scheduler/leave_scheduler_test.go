package scheduler

import (
	"context"
	"testing"
	"time"

	"go-hrms/internal/attendance"
	"go-hrms/internal/events"
	"go-hrms/internal/shared/clock"
	"go-hrms/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeUserSource struct {
	users map[string][]string
	list  []user.User
}

func (f *fakeUserSource) FindAll(ctx context.Context) ([]user.User, error) {
	return f.list, nil
}

func (f *fakeUserSource) RolesOf(ctx context.Context, id string) ([]string, error) {
	return f.users[id], nil
}

type fakeEngine struct {
	existing map[string]bool
	marked   []string
}

func (f *fakeEngine) RecordForDate(ctx context.Context, userID string, date time.Time) (*attendance.AttendanceResponse, error) {
	key := userID + ":" + date.Format("2006-01-02")
	if f.existing[key] {
		return &attendance.AttendanceResponse{UserID: userID}, nil
	}
	return nil, nil
}

func (f *fakeEngine) MarkLeave(ctx context.Context, userID string, date time.Time, source string) (bool, error) {
	if source != events.LeaveSourceScheduler {
		return false, nil
	}
	key := userID + ":" + date.Format("2006-01-02")
	f.existing[key] = true
	f.marked = append(f.marked, key)
	return true, nil
}

func registeredUser(role string, registered time.Time) user.User {
	return user.User{
		ID:               uuid.New(),
		Role:             role,
		RegistrationDate: &registered,
	}
}

// Monday 2025-03-10.
var cycleNow = time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

func TestLeaveScheduler_BackfillsMissingWorkdays(t *testing.T) {
	u := registeredUser(user.RoleEmployee, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	source := &fakeUserSource{
		list:  []user.User{u},
		users: map[string][]string{u.ID.String(): {user.RoleEmployee}},
	}
	engine := &fakeEngine{existing: map[string]bool{
		// Thursday already has a record.
		u.ID.String() + ":2025-03-06": true,
	}}

	s := NewLeaveScheduler(source, engine, clock.Fixed(cycleNow), 24*time.Hour)
	s.RunCycle(context.Background())

	assert.Equal(t, []string{
		u.ID.String() + ":2025-03-05",
		u.ID.String() + ":2025-03-07",
	}, engine.marked)
}

func TestLeaveScheduler_CycleIsIdempotent(t *testing.T) {
	u := registeredUser(user.RoleHR, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	source := &fakeUserSource{
		list:  []user.User{u},
		users: map[string][]string{u.ID.String(): {user.RoleHR}},
	}
	engine := &fakeEngine{existing: map[string]bool{}}

	s := NewLeaveScheduler(source, engine, clock.Fixed(cycleNow), 24*time.Hour)
	s.RunCycle(context.Background())
	firstPass := len(engine.marked)

	s.RunCycle(context.Background())
	assert.Equal(t, firstPass, len(engine.marked))
	// Mon 3rd through Fri 7th.
	assert.Equal(t, 5, firstPass)
}

func TestLeaveScheduler_SkipsIneligibleUsers(t *testing.T) {
	admin := registeredUser(user.RoleAdmin, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	unregistered := user.User{ID: uuid.New(), Role: user.RoleEmployee}
	deletedFlag := true
	deleted := registeredUser(user.RoleEmployee, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	deleted.IsDeleted = &deletedFlag

	source := &fakeUserSource{
		list: []user.User{admin, unregistered, deleted},
		users: map[string][]string{
			admin.ID.String():        {user.RoleAdmin},
			unregistered.ID.String(): {user.RoleEmployee},
			deleted.ID.String():      {user.RoleEmployee},
		},
	}
	engine := &fakeEngine{existing: map[string]bool{}}

	s := NewLeaveScheduler(source, engine, clock.Fixed(cycleNow), 24*time.Hour)
	s.RunCycle(context.Background())

	assert.Empty(t, engine.marked)
}

func TestLeaveScheduler_SkipsWeekendCycle(t *testing.T) {
	u := registeredUser(user.RoleEmployee, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	source := &fakeUserSource{
		list:  []user.User{u},
		users: map[string][]string{u.ID.String(): {user.RoleEmployee}},
	}
	engine := &fakeEngine{existing: map[string]bool{}}

	// Saturday 2025-03-08.
	saturday := time.Date(2025, 3, 8, 6, 0, 0, 0, time.UTC)
	s := NewLeaveScheduler(source, engine, clock.Fixed(saturday), 24*time.Hour)
	s.RunCycle(context.Background())

	assert.Empty(t, engine.marked)
}

func TestLeaveScheduler_RunStopsOnCancel(t *testing.T) {
	source := &fakeUserSource{}
	engine := &fakeEngine{existing: map[string]bool{}}

	s := NewLeaveScheduler(source, engine, clock.Fixed(cycleNow), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
