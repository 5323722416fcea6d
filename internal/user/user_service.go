package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-hrportal/internal/shared/contextutil"
	"go-hrportal/internal/shared/counter"
	usererrors "go-hrportal/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultPassword = "ChangeMe123!"

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	SetManager(ctx context.Context, id string, req SetManagerRequest) (UserResponse, error)
	Deactivate(ctx context.Context, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counterRepo counter.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{db: db, repo: repo, counter: counterRepo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create user requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create user begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return UserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByEmail(ctx, req.Email); err == nil {
		return UserResponse{}, usererrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UserResponse{}, err
	}

	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		return UserResponse{}, usererrors.ErrInvalidDateFormat
	}

	var managerID *uuid.UUID
	if req.ManagerID != nil && *req.ManagerID != "" {
		parsed, err := uuid.Parse(*req.ManagerID)
		if err != nil {
			return UserResponse{}, usererrors.ErrInvalidManagerID
		}
		if _, err := qtx.FindByID(ctx, parsed.String()); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return UserResponse{}, usererrors.ErrManagerNotFound
			}
			return UserResponse{}, err
		}
		managerID = &parsed
	}

	password := req.Password
	if password == "" {
		password = defaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, err
	}

	nextVal, err := s.counter.GetNextValue(ctx, "employee_number")
	if err != nil {
		s.logger.Error("create user generate number failed", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		ID:             uuid.New(),
		EmployeeNumber: fmt.Sprintf("EMP-%05d", nextVal),
		FullName:       req.FullName,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Gender:         req.Gender,
		ManagerID:      managerID,
		IsActive:       true,
		HireDate:       hireDate,
	}

	if err := qtx.Create(ctx, u); err != nil {
		s.logger.Error("create user persist failed", zap.Error(err))
		return UserResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create user commit failed", zap.Error(err))
		return UserResponse{}, err
	}
	s.logger.Info("create user success",
		zap.String("user_id", u.ID.String()),
		zap.String("employee_number", u.EmployeeNumber),
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
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}

	u.FullName = req.FullName
	u.Gender = req.Gender

	if err := s.repo.Update(ctx, u); err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

// SetManager rejects assignments that would close a reporting loop: the
// target manager's chain must never pass through the user being updated.
func (s *service) SetManager(ctx context.Context, id string, req SetManagerRequest) (UserResponse, error) {
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

	if req.ManagerID == nil || *req.ManagerID == "" {
		u.ManagerID = nil
		u.Manager = nil
		if err := s.repo.Update(ctx, u); err != nil {
			return UserResponse{}, err
		}
		return mapToResponse(*u), nil
	}

	managerUUID, err := uuid.Parse(*req.ManagerID)
	if err != nil {
		return UserResponse{}, usererrors.ErrInvalidManagerID
	}
	if managerUUID == u.ID {
		return UserResponse{}, usererrors.ErrSelfManager
	}
	if _, err := s.repo.FindByID(ctx, managerUUID.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrManagerNotFound
		}
		return UserResponse{}, err
	}

	if err := s.checkManagerCycle(ctx, id, managerUUID.String()); err != nil {
		return UserResponse{}, err
	}

	u.ManagerID = &managerUUID
	u.Manager = nil
	if err := s.repo.Update(ctx, u); err != nil {
		return UserResponse{}, err
	}

	s.logger.Info("manager set",
		zap.String("user_id", id),
		zap.String("manager_id", managerUUID.String()),
	)
	return mapToResponse(*u), nil
}

func (s *service) checkManagerCycle(ctx context.Context, userID, managerID string) error {
	// Walk up from the candidate manager. Hitting the user means a loop;
	// the hop cap guards against pre-existing bad data.
	current := managerID
	for hops := 0; hops < 100; hops++ {
		if current == userID {
			return usererrors.ErrManagerCycle
		}
		next, err := s.repo.GetManagerID(ctx, current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		current = *next
	}
	return usererrors.ErrManagerCycle
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return err
	}

	u.IsActive = false
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.logger.Info("user deactivated", zap.String("user_id", id))
	return nil
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:             u.ID.String(),
		EmployeeNumber: u.EmployeeNumber,
		FullName:       u.FullName,
		Email:          u.Email,
		Gender:         u.Gender,
		IsActive:       u.IsActive,
		HireDate:       u.HireDate.Format("2006-01-02"),
	}
	if u.ManagerID != nil {
		v := u.ManagerID.String()
		resp.ManagerID = &v
	}
	if u.Manager != nil {
		resp.ManagerName = u.Manager.FullName
	}
	return resp
}
