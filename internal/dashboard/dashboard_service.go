package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-hrms/internal/attendance"
	"go-hrms/internal/shared/clock"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	rosterKeyPrefix = "dashboard:roster:"
	statsKeyPrefix  = "dashboard:stats:"

	// The roster changes with every mark-in, so the cache only absorbs
	// bursts; it is not a source of truth.
	cacheTTL = time.Minute
)

// AttendanceSource is the slice of the attendance service the dashboard
// reads from.
type AttendanceSource interface {
	PresentToday(ctx context.Context) ([]attendance.RosterEntry, error)
	AbsentToday(ctx context.Context) ([]attendance.RosterEntry, error)
	OnLeaveTodayCount(ctx context.Context) (int64, error)
}

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	Roster(ctx context.Context) (RosterResponse, error)
	Stats(ctx context.Context) (StatsResponse, error)
}

type service struct {
	source AttendanceSource
	rdb    *redis.Client
	sf     *singleflight.Group
	clk    clock.Clock
	logger *zap.Logger
}

func NewService(source AttendanceSource, rdb *redis.Client, clk clock.Clock, logger ...*zap.Logger) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{
		source: source,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		clk:    clk,
		logger: l,
	}
}

func (s *service) Roster(ctx context.Context) (RosterResponse, error) {
	date := clock.Midnight(s.clk.Now()).Format("2006-01-02")
	cacheKey := rosterKeyPrefix + date

	if cached, ok := getCached[RosterResponse](ctx, s.rdb, cacheKey); ok {
		return cached, nil
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		present, err := s.source.PresentToday(ctx)
		if err != nil {
			return nil, err
		}
		absent, err := s.source.AbsentToday(ctx)
		if err != nil {
			return nil, err
		}

		resp := RosterResponse{
			Date:    date,
			Present: present,
			Absent:  absent,
		}
		s.setCached(ctx, cacheKey, resp)
		return resp, nil
	})
	if err != nil {
		return RosterResponse{}, err
	}
	return v.(RosterResponse), nil
}

func (s *service) Stats(ctx context.Context) (StatsResponse, error) {
	date := clock.Midnight(s.clk.Now()).Format("2006-01-02")
	cacheKey := statsKeyPrefix + date

	if cached, ok := getCached[StatsResponse](ctx, s.rdb, cacheKey); ok {
		return cached, nil
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		present, err := s.source.PresentToday(ctx)
		if err != nil {
			return nil, err
		}
		absent, err := s.source.AbsentToday(ctx)
		if err != nil {
			return nil, err
		}
		onLeave, err := s.source.OnLeaveTodayCount(ctx)
		if err != nil {
			return nil, err
		}

		resp := StatsResponse{
			Date:    date,
			Present: len(present),
			Absent:  len(absent),
			OnLeave: onLeave,
		}
		s.setCached(ctx, cacheKey, resp)
		return resp, nil
	})
	if err != nil {
		return StatsResponse{}, err
	}
	return v.(StatsResponse), nil
}

func getCached[T any](ctx context.Context, rdb *redis.Client, key string) (T, bool) {
	var zero T
	if rdb == nil {
		return zero, false
	}
	cached, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return zero, false
	}
	var resp T
	if err := json.Unmarshal([]byte(cached), &resp); err != nil {
		return zero, false
	}
	return resp, true
}

func (s *service) setCached(ctx context.Context, key string, value any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", fmt.Sprint(key)), zap.Error(err))
	}
}
