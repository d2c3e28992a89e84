package notification

import (
	"time"

	"github.com/google/uuid"
)

const KindLeaveMarked = "leave_marked"

// Notification is a per-user feed entry produced from attendance events.
// AttendanceID is unique so redelivered events insert at most one row.
type Notification struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	AttendanceID uuid.UUID `gorm:"column:attendance_id;type:uuid;not null;uniqueIndex:uq_notifications_attendance"`
	Kind         string    `gorm:"column:kind;not null"`
	Source       string    `gorm:"column:source"`
	Date         time.Time `gorm:"column:date;type:date"`
	Message      string    `gorm:"column:message;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
