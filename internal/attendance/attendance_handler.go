package attendance

import (
	"net/http"
	"strconv"
	"time"

	attendanceerrors "go-hrms/internal/attendance/errors"
	"go-hrms/internal/events"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/clock"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultAllottedShortLeaves is the per-month allotment applied when the
// query parameter is absent.
const defaultAllottedShortLeaves = "4"

type Handler struct {
	service Service
	clk     clock.Clock
	logger  *zap.Logger
}

func NewHandler(service Service, clk clock.Clock, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Handler{service: service, clk: clk, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// MarkIn opens today's attendance for the authenticated user.
func (h *Handler) MarkIn(c *gin.Context) {
	userID := c.GetString("user_id")
	h.logger.Debug("http mark in", zap.String("user_id", userID))

	ok, err := h.service.MarkIn(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !ok {
		h.writeServiceError(c, attendanceerrors.ErrMarkInRejected)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"marked_in": true}, nil)
}

func (h *Handler) MarkOut(c *gin.Context) {
	userID := c.GetString("user_id")
	h.logger.Debug("http mark out", zap.String("user_id", userID))

	ok, err := h.service.MarkOut(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !ok {
		h.writeServiceError(c, attendanceerrors.ErrMarkOutRejected)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"marked_out": true}, nil)
}

func (h *Handler) MarkLeave(c *gin.Context) {
	var req MarkLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.writeServiceError(c, attendanceerrors.ErrInvalidDate)
		return
	}

	ok, err := h.service.MarkLeave(c.Request.Context(), req.UserID, date, events.LeaveSourceManual)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !ok {
		h.writeServiceError(c, attendanceerrors.ErrLeaveRejected)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leave_marked": true, "date": req.Date}, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	ok, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !ok {
		h.writeServiceError(c, attendanceerrors.ErrAttendanceNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	includeUser := c.Query("include_user") == "true"
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"), includeUser)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// GetAll lists one summary row per user with attendance history, paginated.
func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAllGroupedByUser(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetAllByUser(c *gin.Context) {
	resp, err := h.service.GetAllByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetDailySummaries(c *gin.Context) {
	resp, err := h.service.GetDailySummaries(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAbsences(c *gin.Context) {
	resp, err := h.service.AbsenceThisMonth(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetLeaves(c *gin.Context) {
	year := h.clk.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeServiceError(c, attendanceerrors.ErrInvalidYear)
			return
		}
		year = parsed
	}

	resp, err := h.service.LeaveSummary(c.Request.Context(), c.Param("userId"), year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetShortLeaves(c *gin.Context) {
	allotted, err := strconv.Atoi(c.DefaultQuery("allotted", defaultAllottedShortLeaves))
	if err != nil {
		h.writeServiceError(c, attendanceerrors.ErrInvalidAllotted)
		return
	}

	resp, err := h.service.ShortLeaveSummary(c.Request.Context(), c.Param("userId"), allotted)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
