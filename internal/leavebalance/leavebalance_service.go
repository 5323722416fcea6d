package leavebalance

import (
	"context"
	"database/sql"
	"errors"

	leavebalanceerrors "go-hrportal/internal/leavebalance/errors"
	"go-hrportal/internal/leavetype"
	"go-hrportal/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

//go:generate mockgen -source=leavebalance_service.go -destination=mock/leavebalance_service_mock.go -package=mock
type Service interface {
	InitializeForUser(ctx context.Context, userID string, year int) ([]BalanceResponse, error)
	ResetForNewYear(ctx context.Context, newYear int) (RolloverResponse, error)
	GetBalances(ctx context.Context, userID string, year int) ([]BalanceResponse, error)
	DeductDays(ctx context.Context, userID, leaveTypeID uuid.UUID, year int, days float64) error
	RestoreDays(ctx context.Context, userID, leaveTypeID uuid.UUID, year int, days float64) error
	HasSufficientBalance(ctx context.Context, userID, leaveTypeID uuid.UUID, year int, requested float64) (bool, error)
}

type service struct {
	db            *sql.DB
	repo          Repository
	userRepo      user.Repository
	leaveTypeRepo leavetype.Repository
	logger        *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	userRepo user.Repository,
	leaveTypeRepo leavetype.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	return &service{
		db:            db,
		repo:          repo,
		userRepo:      userRepo,
		leaveTypeRepo: leaveTypeRepo,
		logger:        l,
	}
}

// InitializeForUser creates one ledger row per active leave type. Rows
// that already exist are skipped, so re-running it is safe.
func (s *service) InitializeForUser(ctx context.Context, userID string, year int) ([]BalanceResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, leavebalanceerrors.ErrInvalidUserID
	}
	if year < 2000 || year > 2100 {
		return nil, leavebalanceerrors.ErrInvalidYear
	}

	types, err := s.leaveTypeRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	for _, lt := range types {
		b := &LeaveBalance{
			ID:            uuid.New(),
			UserID:        uid,
			LeaveTypeID:   lt.ID,
			Year:          year,
			TotalDays:     lt.DaysPerYear,
			UsedDays:      0,
			RemainingDays: lt.DaysPerYear,
		}
		if err := s.repo.Create(ctx, b); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
	}

	s.logger.Info("balances initialized",
		zap.String("user_id", userID),
		zap.Int("year", year),
	)

	return s.GetBalances(ctx, userID, year)
}

// ResetForNewYear opens next year's ledger for every active employee.
// Carry-over is capped by the leave type's policy and is zero when the
// type does not allow it.
func (s *service) ResetForNewYear(ctx context.Context, newYear int) (RolloverResponse, error) {
	if newYear < 2000 || newYear > 2100 {
		return RolloverResponse{}, leavebalanceerrors.ErrInvalidYear
	}

	users, err := s.userRepo.FindAllActive(ctx)
	if err != nil {
		return RolloverResponse{}, err
	}
	types, err := s.leaveTypeRepo.FindAllActive(ctx)
	if err != nil {
		return RolloverResponse{}, err
	}

	created := 0
	for _, u := range users {
		for _, lt := range types {
			carryOver := 0.0
			if lt.IsCarryOverAllowed {
				prev, err := s.repo.FindByUserTypeYear(ctx, u.ID, lt.ID, newYear-1)
				if err == nil && prev.RemainingDays > 0 {
					carryOver = prev.RemainingDays
					if carryOver > lt.MaxCarryOverDays {
						carryOver = lt.MaxCarryOverDays
					}
				} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return RolloverResponse{}, err
				}
			}

			b := &LeaveBalance{
				ID:              uuid.New(),
				UserID:          u.ID,
				LeaveTypeID:     lt.ID,
				Year:            newYear,
				TotalDays:       lt.DaysPerYear + carryOver,
				UsedDays:        0,
				RemainingDays:   lt.DaysPerYear + carryOver,
				CarriedOverDays: carryOver,
			}
			if err := s.repo.Create(ctx, b); err != nil {
				if isUniqueViolation(err) {
					continue
				}
				return RolloverResponse{}, err
			}
			created++
		}
	}

	s.logger.Info("yearly balance rollover finished",
		zap.Int("year", newYear),
		zap.Int("rows_created", created),
		zap.Int("users", len(users)),
	)

	return RolloverResponse{Year: newYear, RowsCreated: created, UsersCovered: len(users)}, nil
}

func (s *service) GetBalances(ctx context.Context, userID string, year int) ([]BalanceResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, leavebalanceerrors.ErrInvalidUserID
	}

	balances, err := s.repo.ListByUserYear(ctx, uid, year)
	if err != nil {
		return nil, err
	}

	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = mapToBalanceResponse(b)
	}
	return resp, nil
}

func (s *service) DeductDays(ctx context.Context, userID, leaveTypeID uuid.UUID, year int, days float64) error {
	return s.mutateBalance(ctx, userID, leaveTypeID, year, func(b *LeaveBalance) {
		b.Deduct(days)
	})
}

func (s *service) RestoreDays(ctx context.Context, userID, leaveTypeID uuid.UUID, year int, days float64) error {
	return s.mutateBalance(ctx, userID, leaveTypeID, year, func(b *LeaveBalance) {
		b.Restore(days)
	})
}

func (s *service) HasSufficientBalance(ctx context.Context, userID, leaveTypeID uuid.UUID, year int, requested float64) (bool, error) {
	b, err := s.repo.FindByUserTypeYear(ctx, userID, leaveTypeID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, leavebalanceerrors.ErrBalanceNotFound
		}
		return false, err
	}
	return b.HasSufficient(requested), nil
}

func (s *service) mutateBalance(ctx context.Context, userID, leaveTypeID uuid.UUID, year int, apply func(*LeaveBalance)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindByUserTypeYearForUpdate(ctx, userID, leaveTypeID, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
			return leavebalanceerrors.ErrBalanceNotFound
		}
		return err
	}

	apply(b)

	if err := qtx.Update(ctx, b); err != nil {
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func mapToBalanceResponse(b LeaveBalance) BalanceResponse {
	resp := BalanceResponse{
		ID:              b.ID.String(),
		UserID:          b.UserID.String(),
		LeaveTypeID:     b.LeaveTypeID.String(),
		Year:            b.Year,
		TotalDays:       b.TotalDays,
		UsedDays:        b.UsedDays,
		RemainingDays:   b.RemainingDays,
		CarriedOverDays: b.CarriedOverDays,
	}
	if b.LeaveType != nil {
		resp.LeaveTypeName = b.LeaveType.Name
	}
	return resp
}
