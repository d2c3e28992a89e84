package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-hrms/internal/shared/clock"
	"go-hrms/internal/shared/counter"
	usererrors "go-hrms/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterUserRequest) (UserResponse, error)
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	clk     clock.Clock
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counterRepo counter.Repository, clk clock.Clock, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{db: db, repo: repo, counter: counterRepo, clk: clk, logger: l}
}

func (s *service) Register(ctx context.Context, req RegisterUserRequest) (UserResponse, error) {
	s.logger.Debug("register user requested",
		zap.String("email", req.Email),
		zap.String("role", req.Role),
	)

	if req.Role == "" {
		req.Role = RoleEmployee
	}
	if !ValidRole(req.Role) {
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("register user begin tx failed", zap.Error(err))
		return UserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	taken, err := qtx.ExistsByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("register user email check failed", zap.Error(err))
		return UserResponse{}, err
	}
	if taken {
		return UserResponse{}, usererrors.ErrEmailTaken
	}

	if req.EmployeeCode == "" {
		nextVal, err := s.counter.GetNextValue(ctx, "employee_code")
		if err != nil {
			s.logger.Error("register user generate employee code failed", zap.Error(err))
			return UserResponse{}, err
		}
		req.EmployeeCode = fmt.Sprintf("EMP-%06d", nextVal)
	}

	registeredAt := clock.Midnight(s.clk.Now())
	u := &User{
		ID:               uuid.New(),
		FullName:         req.FullName,
		Email:            req.Email,
		Phone:            req.Phone,
		Role:             req.Role,
		EmployeeCode:     req.EmployeeCode,
		Designation:      req.Designation,
		RegistrationDate: &registeredAt,
	}

	if err := qtx.Create(ctx, u); err != nil {
		s.logger.Error("register user persist failed", zap.Error(err))
		return UserResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("register user commit failed", zap.Error(err))
		return UserResponse{}, err
	}

	s.logger.Info("register user success",
		zap.String("user_id", u.ID.String()),
		zap.String("employee_code", u.EmployeeCode),
	)
	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return usererrors.ErrInvalidUserID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	u, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return err
	}
	if !u.Active() {
		return usererrors.ErrUserDeleted
	}

	if err := qtx.SoftDelete(ctx, id); err != nil {
		s.logger.Error("soft delete user failed",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("soft delete user success", zap.String("user_id", id))
	return nil
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:           u.ID.String(),
		FullName:     u.FullName,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		EmployeeCode: u.EmployeeCode,
		Designation:  u.Designation,
		IsDeleted:    !u.Active(),
	}
	if u.RegistrationDate != nil {
		resp.RegistrationDate = u.RegistrationDate.Format("2006-01-02")
	}
	return resp
}
