package events

import "time"

const LeaveMarkedTopic = "hr.attendance.leave.marked.v1"

const EventTypeLeaveMarked = "attendance_leave_marked"

const (
	LeaveSourceManual    = "manual"
	LeaveSourceScheduler = "scheduler"
)

type LeaveMarkedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	AttendanceID string    `json:"attendance_id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`
	Source       string    `json:"source"`
	OccurredAt   time.Time `json:"occurred_at"`
}
