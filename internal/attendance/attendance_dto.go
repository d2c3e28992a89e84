package attendance

type MarkLeaveRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Date   string `json:"date" binding:"required"`
}

type AttendanceResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Date         string  `json:"date"`
	InTime       *string `json:"in_time,omitempty"`
	OutTime      *string `json:"out_time,omitempty"`
	WorkingHours *string `json:"working_hours,omitempty"`
	IsOnLeave    *bool   `json:"is_on_leave,omitempty"`
	FullName     string  `json:"full_name,omitempty"`
	EmployeeCode string  `json:"employee_code,omitempty"`
}

// UserAttendanceSummary is one row per user in the administrative listing.
type UserAttendanceSummary struct {
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name,omitempty"`
	EmployeeCode string `json:"employee_code,omitempty"`
}

// DailySummaryResponse aggregates all of one user's records for a date,
// summing working hours across every closed in/out pair.
type DailySummaryResponse struct {
	UserID            string `json:"user_id"`
	Date              string `json:"date"`
	TotalWorkingHours string `json:"total_working_hours"`
	FullName          string `json:"full_name,omitempty"`
	EmployeeCode      string `json:"employee_code,omitempty"`
}

// RosterEntry identifies a present or absent employee on the dashboard.
type RosterEntry struct {
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	EmployeeCode string `json:"employee_code,omitempty"`
	Date         string `json:"date,omitempty"`
}

type LeaveSummaryResponse struct {
	UserID          string   `json:"user_id"`
	Year            int      `json:"year"`
	LeavesTaken     int      `json:"leaves_taken"`
	LeaveDates      []string `json:"leave_dates"`
	AllottedLeaves  int      `json:"allotted_leaves"`
	RemainingLeaves int      `json:"remaining_leaves"`
	PaidLeaves      int      `json:"paid_leaves"`
}

type ShortLeaveSummaryResponse struct {
	UserID           string   `json:"user_id"`
	Month            string   `json:"month"`
	ShortLeavesTaken int      `json:"short_leaves_taken"`
	PaidShortLeaves  int      `json:"paid_short_leaves"`
	ShortLeaveDates  []string `json:"short_leave_dates"`
	AllottedPerMonth int      `json:"allotted_per_month"`
}

type AbsenceSummaryResponse struct {
	UserID      string   `json:"user_id"`
	AbsentDates []string `json:"absent_dates"`
	AbsentDays  int      `json:"absent_days"`
}
