package attendance

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord is one ledger row per user per calendar date. A row is
// either an attendance day (in/out times, derived working hours) or a leave
// day (is_on_leave set, all time fields null) — never both.
type AttendanceRecord struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index:idx_attendances_user_date"`
	Date         time.Time      `gorm:"column:date;type:date;not null;index:idx_attendances_user_date"`
	InTime       *time.Time     `gorm:"column:in_time;type:timestamptz"`
	OutTime      *time.Time     `gorm:"column:out_time;type:timestamptz"`
	WorkingHours *time.Duration `gorm:"column:working_hours;type:bigint"`
	IsOnLeave    *bool          `gorm:"column:is_on_leave"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
	User         *UserRef       `gorm:"foreignKey:UserID;references:ID"`
}

func (AttendanceRecord) TableName() string {
	return "attendances"
}

// Open reports an in-progress attendance day: clocked in, not yet out.
func (a AttendanceRecord) Open() bool {
	return a.InTime != nil && a.OutTime == nil
}

// HasAttendance reports whether any attendance time field is set, which
// makes the date mutually exclusive with leave marking.
func (a AttendanceRecord) HasAttendance() bool {
	return a.InTime != nil || a.OutTime != nil || a.WorkingHours != nil
}

// CountsAsLeave treats an unset leave flag the same as an explicit true.
// Historical rows predate the flag, so nil has always been counted as leave.
func (a AttendanceRecord) CountsAsLeave() bool {
	return a.IsOnLeave == nil || *a.IsOnLeave
}

// UserRef is the read-only slice of the users table the ledger joins against.
type UserRef struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	FullName     string    `gorm:"column:full_name"`
	EmployeeCode string    `gorm:"column:employee_code"`
	Role         string    `gorm:"column:role"`
	IsDeleted    *bool     `gorm:"column:is_deleted"`
}

func (UserRef) TableName() string {
	return "users"
}
