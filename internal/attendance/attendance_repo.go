package attendance

import (
	"context"
	"database/sql"
	"time"

	"go-hrms/internal/user"

	"gorm.io/gorm"
)

// IdentityRow carries user identity alongside ledger queries that group or
// filter by user.
type IdentityRow struct {
	UserID       string
	FullName     string
	EmployeeCode string
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *AttendanceRecord) error
	Update(ctx context.Context, a *AttendanceRecord) error
	DeleteByID(ctx context.Context, id string) (int64, error)
	FindByID(ctx context.Context, id string, includeUser bool) (*AttendanceRecord, error)
	FindOpenByUserAndDate(ctx context.Context, userID string, date time.Time) (*AttendanceRecord, error)
	FindAttendanceMarked(ctx context.Context, userID string, date time.Time) (*AttendanceRecord, error)
	FindLeaveMarked(ctx context.Context, userID string, date time.Time) (*AttendanceRecord, error)
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*AttendanceRecord, error)
	FindAllByUser(ctx context.Context, userID string, includeUser bool) ([]AttendanceRecord, error)
	FindAllInRange(ctx context.Context, userID string, from, to time.Time) ([]AttendanceRecord, error)
	FindLeaveDatesInYear(ctx context.Context, userID string, year int) ([]time.Time, error)
	FindUserSummaries(ctx context.Context) ([]IdentityRow, error)
	CountOnLeave(ctx context.Context, date time.Time) (int64, error)
	FindPresentUsers(ctx context.Context, date time.Time) ([]IdentityRow, error)
	FindAbsentUsers(ctx context.Context, date time.Time) ([]IdentityRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the session onto the caller's transaction so domain writes
// commit and roll back together with anything else on the same tx. Setting
// Context forces a statement clone; the base session's pool stays untouched.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	session := r.db.Session(&gorm.Session{Context: r.db.Statement.Context, NewDB: true})
	session.Statement.ConnPool = tx
	return &repository{db: session}
}

func (r *repository) Create(ctx context.Context, a *AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *AttendanceRecord) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// DeleteByID reports the number of rows removed so callers can distinguish
// "not found" without a prior read.
func (r *repository) DeleteByID(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&AttendanceRecord{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) FindByID(ctx context.Context, id string, includeUser bool) (*AttendanceRecord, error) {
	q := r.db.WithContext(ctx)
	if includeUser {
		q = q.Preload("User")
	}
	var a AttendanceRecord
	err := q.First(&a, "id = ?", id).Error
	return &a, err
}

// FindOpenByUserAndDate returns the record with in-time set and out-time
// still unset for the given date, if any.
func (r *repository) FindOpenByUserAndDate(ctx context.Context, userID string, date time.Time) (*AttendanceRecord, error) {
	var a AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date = ?", date.Format("2006-01-02")).
		Where("in_time IS NOT NULL").
		Where("out_time IS NULL").
		First(&a).Error
	return &a, err
}

// FindAttendanceMarked returns a record for the date carrying any attendance
// time field, which blocks leave marking.
func (r *repository) FindAttendanceMarked(ctx context.Context, userID string, date time.Time) (*AttendanceRecord, error) {
	var a AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date = ?", date.Format("2006-01-02")).
		Where("in_time IS NOT NULL OR out_time IS NOT NULL OR working_hours IS NOT NULL").
		First(&a).Error
	return &a, err
}

// FindLeaveMarked matches rows already flagged on-leave; an unset flag counts
// as leave as well.
func (r *repository) FindLeaveMarked(ctx context.Context, userID string, date time.Time) (*AttendanceRecord, error) {
	var a AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date = ?", date.Format("2006-01-02")).
		Where("is_on_leave IS TRUE OR is_on_leave IS NULL").
		First(&a).Error
	return &a, err
}

func (r *repository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*AttendanceRecord, error) {
	var a AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date = ?", date.Format("2006-01-02")).
		First(&a).Error
	return &a, err
}

func (r *repository) FindAllByUser(ctx context.Context, userID string, includeUser bool) ([]AttendanceRecord, error) {
	q := r.db.WithContext(ctx)
	if includeUser {
		q = q.Preload("User")
	}
	var rows []AttendanceRecord
	err := q.
		Where("user_id = ?", userID).
		Order("date DESC, in_time DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllInRange(ctx context.Context, userID string, from, to time.Time) ([]AttendanceRecord, error) {
	var rows []AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date >= ?", from.Format("2006-01-02")).
		Where("date <= ?", to.Format("2006-01-02")).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindLeaveDatesInYear(ctx context.Context, userID string, year int) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&AttendanceRecord{}).
		Where("user_id = ?", userID).
		Where("EXTRACT(YEAR FROM date) = ?", year).
		Where("is_on_leave IS TRUE OR is_on_leave IS NULL").
		Order("date ASC").
		Pluck("date", &dates).Error
	return dates, err
}

// FindUserSummaries returns one identity row per user appearing in the
// ledger, for the administrative grouped listing.
func (r *repository) FindUserSummaries(ctx context.Context) ([]IdentityRow, error) {
	var rows []IdentityRow
	err := r.db.WithContext(ctx).
		Table("attendances a").
		Select("a.user_id AS user_id, u.full_name AS full_name, u.employee_code AS employee_code").
		Joins("LEFT JOIN users u ON u.id = a.user_id").
		Group("a.user_id, u.full_name, u.employee_code").
		Order("u.full_name ASC").
		Scan(&rows).Error
	return rows, err
}

// CountOnLeave counts active Employee/HR users flagged on leave for the date.
func (r *repository) CountOnLeave(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("attendances a").
		Joins("JOIN users u ON u.id = a.user_id").
		Where("a.date = ?", date.Format("2006-01-02")).
		Where("a.is_on_leave IS TRUE OR a.is_on_leave IS NULL").
		Where("u.role IN ?", []string{user.RoleEmployee, user.RoleHR}).
		Where("u.is_deleted IS NOT TRUE").
		Count(&count).Error
	return count, err
}

// FindPresentUsers lists Employee/HR users, not soft-deleted, with an in-time
// on the given date.
func (r *repository) FindPresentUsers(ctx context.Context, date time.Time) ([]IdentityRow, error) {
	var rows []IdentityRow
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("DISTINCT u.id AS user_id, u.full_name AS full_name, u.employee_code AS employee_code").
		Joins("JOIN attendances a ON a.user_id = u.id").
		Where("a.date = ?", date.Format("2006-01-02")).
		Where("a.in_time IS NOT NULL").
		Where("u.role IN ?", []string{user.RoleEmployee, user.RoleHR}).
		Where("u.is_deleted IS NOT TRUE").
		Scan(&rows).Error
	return rows, err
}

// FindAbsentUsers lists Employee/HR users, not soft-deleted, with no in-time
// on the given date.
func (r *repository) FindAbsentUsers(ctx context.Context, date time.Time) ([]IdentityRow, error) {
	var rows []IdentityRow
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.id AS user_id, u.full_name AS full_name, u.employee_code AS employee_code").
		Where("u.role IN ?", []string{user.RoleEmployee, user.RoleHR}).
		Where("u.is_deleted IS NOT TRUE").
		Where(`u.id NOT IN (
			SELECT a.user_id FROM attendances a
			WHERE a.date = ? AND a.in_time IS NOT NULL
		)`, date.Format("2006-01-02")).
		Order("u.full_name ASC").
		Scan(&rows).Error
	return rows, err
}
