package user

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindActiveByID(ctx context.Context, id string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	RolesOf(ctx context.Context, id string) ([]string, error)
	SoftDelete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the session onto the caller's transaction so writes commit
// and roll back together with anything else on the same tx. Setting Context
// forces a statement clone; the base session's pool stays untouched.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	session := r.db.Session(&gorm.Session{Context: r.db.Statement.Context, NewDB: true})
	session.Statement.ConnPool = tx
	return &repository{db: session}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		First(&u, "id = ?", id).Error
	return &u, err
}

// FindActiveByID excludes soft-deleted users; a nil is_deleted counts as
// active.
func (r *repository) FindActiveByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("is_deleted IS NOT TRUE").
		First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) FindAll(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) RolesOf(ctx context.Context, id string) ([]string, error) {
	var role string
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Pluck("role", &role).Error
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, nil
	}
	return []string{role}, nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}
