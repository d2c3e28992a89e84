package attendanceerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrMarkInRejected = apperror.New(
		apperror.CodeInvalidState,
		"Cannot mark in-time. The user may be deleted or the previous out-time is still open",
		http.StatusBadRequest,
	)

	ErrMarkOutRejected = apperror.New(
		apperror.CodeInvalidState,
		"Cannot mark out-time. The user may be deleted or in-time has not been marked",
		http.StatusBadRequest,
	)

	ErrLeaveRejected = apperror.New(
		apperror.CodeInvalidState,
		"Cannot mark leave. The user may be deleted or attendance is already recorded for this date",
		http.StatusBadRequest,
	)

	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user id",
		http.StatusBadRequest,
	)

	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid year",
		http.StatusBadRequest,
	)

	ErrInvalidAllotted = apperror.New(
		apperror.CodeInvalidInput,
		"Allotted short leaves must be a non-negative number",
		http.StatusBadRequest,
	)
)
