package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin    = "Admin"
	RoleHR       = "HR"
	RoleEmployee = "Employee"
)

type User struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName         string     `gorm:"column:full_name;type:varchar(150);not null"`
	Email            string     `gorm:"column:email;type:varchar(150);not null;uniqueIndex"`
	Phone            *string    `gorm:"column:phone;type:varchar(30)"`
	Role             string     `gorm:"column:role;type:varchar(20);not null;default:Employee"`
	EmployeeCode     string     `gorm:"column:employee_code;type:varchar(20);uniqueIndex"`
	Designation      *string    `gorm:"column:designation;type:varchar(100)"`
	RegistrationDate *time.Time `gorm:"column:registration_date;type:date"`
	IsDeleted        *bool      `gorm:"column:is_deleted"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Active reports whether the user may take part in attendance operations.
// A nil is_deleted is treated as not deleted, matching the soft-delete flag
// being added after the first rows existed.
func (u User) Active() bool {
	return u.IsDeleted == nil || !*u.IsDeleted
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleHR, RoleEmployee:
		return true
	default:
		return false
	}
}
