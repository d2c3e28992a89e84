package attendance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-hrms/internal/attendance"
	"go-hrms/internal/shared/clock"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var handlerNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeService struct {
	markInFn            func(ctx context.Context, userID string) (bool, error)
	markOutFn           func(ctx context.Context, userID string) (bool, error)
	markLeaveFn         func(ctx context.Context, userID string, date time.Time, source string) (bool, error)
	deleteFn            func(ctx context.Context, id string) (bool, error)
	getByIDFn           func(ctx context.Context, id string, includeUser bool) (attendance.AttendanceResponse, error)
	getAllGroupedFn     func(ctx context.Context) ([]attendance.UserAttendanceSummary, error)
	getAllByUserFn      func(ctx context.Context, userID string) ([]attendance.AttendanceResponse, error)
	getDailySummariesFn func(ctx context.Context, userID string) ([]attendance.DailySummaryResponse, error)
	leaveSummaryFn      func(ctx context.Context, userID string, year int) (attendance.LeaveSummaryResponse, error)
	shortLeaveFn        func(ctx context.Context, userID string, allotted int) (attendance.ShortLeaveSummaryResponse, error)
	absenceFn           func(ctx context.Context, userID string) (attendance.AbsenceSummaryResponse, error)
}

func (f *fakeService) MarkIn(ctx context.Context, userID string) (bool, error) {
	return f.markInFn(ctx, userID)
}
func (f *fakeService) MarkOut(ctx context.Context, userID string) (bool, error) {
	return f.markOutFn(ctx, userID)
}
func (f *fakeService) MarkLeave(ctx context.Context, userID string, date time.Time, source string) (bool, error) {
	return f.markLeaveFn(ctx, userID, date, source)
}
func (f *fakeService) Delete(ctx context.Context, id string) (bool, error) {
	return f.deleteFn(ctx, id)
}
func (f *fakeService) GetByID(ctx context.Context, id string, includeUser bool) (attendance.AttendanceResponse, error) {
	return f.getByIDFn(ctx, id, includeUser)
}
func (f *fakeService) GetAllGroupedByUser(ctx context.Context) ([]attendance.UserAttendanceSummary, error) {
	return f.getAllGroupedFn(ctx)
}
func (f *fakeService) GetAllByUser(ctx context.Context, userID string) ([]attendance.AttendanceResponse, error) {
	return f.getAllByUserFn(ctx, userID)
}
func (f *fakeService) GetDailySummaries(ctx context.Context, userID string) ([]attendance.DailySummaryResponse, error) {
	return f.getDailySummariesFn(ctx, userID)
}
func (f *fakeService) PresentToday(ctx context.Context) ([]attendance.RosterEntry, error) {
	return nil, nil
}
func (f *fakeService) AbsentToday(ctx context.Context) ([]attendance.RosterEntry, error) {
	return nil, nil
}
func (f *fakeService) OnLeaveTodayCount(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeService) RecordForDate(ctx context.Context, userID string, date time.Time) (*attendance.AttendanceResponse, error) {
	return nil, nil
}
func (f *fakeService) AbsenceThisMonth(ctx context.Context, userID string) (attendance.AbsenceSummaryResponse, error) {
	return f.absenceFn(ctx, userID)
}
func (f *fakeService) LeaveSummary(ctx context.Context, userID string, year int) (attendance.LeaveSummaryResponse, error) {
	return f.leaveSummaryFn(ctx, userID, year)
}
func (f *fakeService) ShortLeaveSummary(ctx context.Context, userID string, allotted int) (attendance.ShortLeaveSummaryResponse, error) {
	return f.shortLeaveFn(ctx, userID, allotted)
}

func TestHandler_MarkIn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New().String()

	svc := &fakeService{
		markInFn: func(ctx context.Context, uid string) (bool, error) {
			assert.Equal(t, userID, uid)
			return true, nil
		},
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/mark-in", nil)
	h.MarkIn(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"marked_in":true`)
}

func TestHandler_MarkIn_Rejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		markInFn: func(ctx context.Context, uid string) (bool, error) { return false, nil },
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", uuid.New().String())
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/mark-in", nil)
	h.MarkIn(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestHandler_MarkLeave_InvalidDate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		markLeaveFn: func(ctx context.Context, uid string, date time.Time, source string) (bool, error) {
			t.Fatal("service must not be called on invalid date")
			return false, nil
		},
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	body := `{"user_id":"` + uuid.New().String() + `","date":"07-03-2025"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/leave", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.MarkLeave(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestHandler_MarkLeave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New().String()

	svc := &fakeService{
		markLeaveFn: func(ctx context.Context, uid string, date time.Time, source string) (bool, error) {
			assert.Equal(t, userID, uid)
			assert.Equal(t, "2025-03-07", date.Format("2006-01-02"))
			assert.Equal(t, "manual", source)
			return true, nil
		},
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	body := `{"user_id":"` + userID + `","date":"2025-03-07"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/leave", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.MarkLeave(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"leave_marked":true`)
}

func TestHandler_Delete_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		deleteFn: func(ctx context.Context, id string) (bool, error) { return false, nil },
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/attendances/x", nil)
	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GetAll_Paginated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		getAllGroupedFn: func(ctx context.Context) ([]attendance.UserAttendanceSummary, error) {
			return []attendance.UserAttendanceSummary{
				{UserID: uuid.New().String(), FullName: "Aulia"},
				{UserID: uuid.New().String(), FullName: "Bimo"},
				{UserID: uuid.New().String(), FullName: "Citra"},
			}, nil
		},
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances?page=2&page_size=2", nil)
	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"meta"`)
	assert.Contains(t, w.Body.String(), "Citra")
	assert.NotContains(t, w.Body.String(), "Aulia")
}

func TestHandler_GetLeaves_YearParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New().String()

	svc := &fakeService{
		leaveSummaryFn: func(ctx context.Context, uid string, year int) (attendance.LeaveSummaryResponse, error) {
			assert.Equal(t, 2024, year)
			return attendance.LeaveSummaryResponse{UserID: uid, Year: year, AllottedLeaves: 12}, nil
		},
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "userId", Value: userID}}
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances/users/"+userID+"/leaves?year=2024", nil)
	h.GetLeaves(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"year":2024`)
}

func TestHandler_GetLeaves_DefaultYearFromClock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New().String()

	svc := &fakeService{
		leaveSummaryFn: func(ctx context.Context, uid string, year int) (attendance.LeaveSummaryResponse, error) {
			assert.Equal(t, handlerNow.Year(), year)
			return attendance.LeaveSummaryResponse{UserID: uid, Year: year, AllottedLeaves: 12}, nil
		},
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "userId", Value: userID}}
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances/users/"+userID+"/leaves", nil)
	h.GetLeaves(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"year":2025`)
}

func TestHandler_GetShortLeaves_DefaultAllotted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New().String()

	svc := &fakeService{
		shortLeaveFn: func(ctx context.Context, uid string, allotted int) (attendance.ShortLeaveSummaryResponse, error) {
			assert.Equal(t, 4, allotted)
			return attendance.ShortLeaveSummaryResponse{UserID: uid, AllottedPerMonth: allotted}, nil
		},
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "userId", Value: userID}}
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances/users/"+userID+"/short-leaves", nil)
	h.GetShortLeaves(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"allotted_per_month":4`)
}

func TestHandler_GetShortLeaves_InvalidAllotted(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		shortLeaveFn: func(ctx context.Context, uid string, allotted int) (attendance.ShortLeaveSummaryResponse, error) {
			t.Fatal("service must not be called on invalid allotted")
			return attendance.ShortLeaveSummaryResponse{}, nil
		},
	}
	h := attendance.NewHandler(svc, clock.Fixed(handlerNow))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "userId", Value: uuid.New().String()}}
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances/users/x/short-leaves?allotted=two", nil)
	h.GetShortLeaves(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
