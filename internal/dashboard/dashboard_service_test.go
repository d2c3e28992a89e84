package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-hrms/internal/attendance"
	"go-hrms/internal/shared/clock"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	presentFn func(ctx context.Context) ([]attendance.RosterEntry, error)
	absentFn  func(ctx context.Context) ([]attendance.RosterEntry, error)
	onLeaveFn func(ctx context.Context) (int64, error)
	calls     int
}

func (f *fakeSource) PresentToday(ctx context.Context) ([]attendance.RosterEntry, error) {
	f.calls++
	if f.presentFn != nil {
		return f.presentFn(ctx)
	}
	return nil, nil
}

func (f *fakeSource) AbsentToday(ctx context.Context) ([]attendance.RosterEntry, error) {
	if f.absentFn != nil {
		return f.absentFn(ctx)
	}
	return nil, nil
}

func (f *fakeSource) OnLeaveTodayCount(ctx context.Context) (int64, error) {
	if f.onLeaveFn != nil {
		return f.onLeaveFn(ctx)
	}
	return 0, nil
}

var statsNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestService_Stats_CacheMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	source := &fakeSource{
		presentFn: func(ctx context.Context) ([]attendance.RosterEntry, error) {
			return []attendance.RosterEntry{{UserID: "a"}, {UserID: "b"}}, nil
		},
		absentFn: func(ctx context.Context) ([]attendance.RosterEntry, error) {
			return []attendance.RosterEntry{{UserID: "c"}}, nil
		},
		onLeaveFn: func(ctx context.Context) (int64, error) { return 1, nil },
	}

	expected := StatsResponse{Date: "2025-03-10", Present: 2, Absent: 1, OnLeave: 1}
	payload, _ := json.Marshal(expected)

	key := statsKeyPrefix + "2025-03-10"
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, payload, cacheTTL).SetVal("OK")

	svc := NewService(source, rdb, clock.Fixed(statsNow))

	resp, err := svc.Stats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, expected, resp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Roster_CacheHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	cached := RosterResponse{
		Date:    "2025-03-10",
		Present: []attendance.RosterEntry{{UserID: "a", FullName: "Aulia"}},
		Absent:  []attendance.RosterEntry{},
	}
	payload, _ := json.Marshal(cached)

	key := rosterKeyPrefix + "2025-03-10"
	mock.ExpectGet(key).SetVal(string(payload))

	source := &fakeSource{}
	svc := NewService(source, rdb, clock.Fixed(statsNow))

	resp, err := svc.Roster(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, cached, resp)
	assert.Zero(t, source.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Roster_NilRedisFallsThrough(t *testing.T) {
	source := &fakeSource{
		presentFn: func(ctx context.Context) ([]attendance.RosterEntry, error) {
			return []attendance.RosterEntry{{UserID: "a"}}, nil
		},
	}

	svc := NewService(source, nil, clock.Fixed(statsNow))

	resp, err := svc.Roster(context.Background())
	assert.NoError(t, err)
	assert.Len(t, resp.Present, 1)
	assert.Equal(t, 1, source.calls)
}
