package events

import "time"

const AttendanceMarkedTopic = "hr.attendance.marked.v1"

const (
	EventTypeMarkedIn  = "attendance_marked_in"
	EventTypeMarkedOut = "attendance_marked_out"
)

type AttendanceMarkedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	AttendanceID string    `json:"attendance_id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`
	OccurredAt   time.Time `json:"occurred_at"`
}
