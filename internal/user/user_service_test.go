package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-hrms/internal/shared/clock"
	usererrors "go-hrms/internal/user/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	withTxFn         func(tx *sql.Tx) Repository
	createFn         func(ctx context.Context, u *User) error
	findByIDFn       func(ctx context.Context, id string) (*User, error)
	findActiveByIDFn func(ctx context.Context, id string) (*User, error)
	findAllFn        func(ctx context.Context) ([]User, error)
	existsByEmailFn  func(ctx context.Context, email string) (bool, error)
	rolesOfFn        func(ctx context.Context, id string) ([]string, error)
	softDeleteFn     func(ctx context.Context, id string) error
}

func (f *fakeUserRepo) WithTx(tx *sql.Tx) Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindActiveByID(ctx context.Context, id string) (*User, error) {
	if f.findActiveByIDFn != nil {
		return f.findActiveByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindAll(ctx context.Context) ([]User, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if f.existsByEmailFn != nil {
		return f.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (f *fakeUserRepo) RolesOf(ctx context.Context, id string) ([]string, error) {
	if f.rolesOfFn != nil {
		return f.rolesOfFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeUserRepo) SoftDelete(ctx context.Context, id string) error {
	if f.softDeleteFn != nil {
		return f.softDeleteFn(ctx, id)
	}
	return nil
}

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

var registerNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestService_Register(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	var saved User
	repo := &fakeUserRepo{
		createFn: func(ctx context.Context, u *User) error { saved = *u; return nil },
	}

	svc := NewService(db, repo, &fakeCounter{}, clock.Fixed(registerNow))

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Register(context.Background(), RegisterUserRequest{
		FullName: "Rina Ayu",
		Email:    "rina@example.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, RoleEmployee, resp.Role)
	assert.Equal(t, "EMP-000001", resp.EmployeeCode)
	assert.Equal(t, "2025-03-10", resp.RegistrationDate)
	assert.NotNil(t, saved.RegistrationDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Register_EmailTaken(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeUserRepo{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) { return true, nil },
	}

	svc := NewService(db, repo, &fakeCounter{}, clock.Fixed(registerNow))

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Register(context.Background(), RegisterUserRequest{
		FullName: "Rina Ayu",
		Email:    "rina@example.com",
	})
	assert.ErrorIs(t, err, usererrors.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Register_InvalidRole(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeUserRepo{}, &fakeCounter{}, clock.Fixed(registerNow))

	_, err := svc.Register(context.Background(), RegisterUserRequest{
		FullName: "Rina Ayu",
		Email:    "rina@example.com",
		Role:     "Superuser",
	})
	assert.ErrorIs(t, err, usererrors.ErrInvalidRole)
}

func TestService_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	id := uuid.New()
	deleted := false
	repo := &fakeUserRepo{
		findByIDFn: func(ctx context.Context, uid string) (*User, error) {
			return &User{ID: id}, nil
		},
		softDeleteFn: func(ctx context.Context, uid string) error {
			deleted = true
			return nil
		},
	}

	svc := NewService(db, repo, &fakeCounter{}, clock.Fixed(registerNow))

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := svc.Delete(context.Background(), id.String())
	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Delete_AlreadyDeleted(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	isDeleted := true
	repo := &fakeUserRepo{
		findByIDFn: func(ctx context.Context, uid string) (*User, error) {
			return &User{ID: uuid.New(), IsDeleted: &isDeleted}, nil
		},
	}

	svc := NewService(db, repo, &fakeCounter{}, clock.Fixed(registerNow))

	mock.ExpectBegin()
	mock.ExpectRollback()
	err := svc.Delete(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, usererrors.ErrUserDeleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetByID_NotFound(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := NewService(db, &fakeUserRepo{}, &fakeCounter{}, clock.Fixed(registerNow))

	_, err := svc.GetByID(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, usererrors.ErrUserNotFound)

	_, err = svc.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, usererrors.ErrInvalidUserID)
}

func TestService_GetAll(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeUserRepo{
		findAllFn: func(ctx context.Context) ([]User, error) {
			return []User{
				{ID: uuid.New(), FullName: "Aulia", Role: RoleEmployee},
				{ID: uuid.New(), FullName: "Bimo", Role: RoleHR},
			}, nil
		},
	}

	svc := NewService(db, repo, &fakeCounter{}, clock.Fixed(registerNow))

	resp, err := svc.GetAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.False(t, resp[0].IsDeleted)
}

func TestService_GetAll_Error(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeUserRepo{
		findAllFn: func(ctx context.Context) ([]User, error) {
			return nil, errors.New("query failed")
		},
	}

	svc := NewService(db, repo, &fakeCounter{}, clock.Fixed(registerNow))

	_, err := svc.GetAll(context.Background())
	assert.Error(t, err)
}
