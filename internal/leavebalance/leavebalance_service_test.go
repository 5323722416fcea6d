package leavebalance_test

import (
	"context"
	"database/sql"
	"testing"

	"go-hrportal/internal/leavebalance"
	leavebalanceerrors "go-hrportal/internal/leavebalance/errors"
	"go-hrportal/internal/leavetype"
	"go-hrportal/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeBalanceRepository struct {
	withTxFn                      func(tx *sql.Tx) leavebalance.Repository
	createFn                      func(ctx context.Context, b *leavebalance.LeaveBalance) error
	updateFn                      func(ctx context.Context, b *leavebalance.LeaveBalance) error
	findByUserTypeYearFn          func(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error)
	findByUserTypeYearForUpdateFn func(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error)
	listByUserYearFn              func(ctx context.Context, userID uuid.UUID, year int) ([]leavebalance.LeaveBalance, error)
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) leavebalance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeBalanceRepository) Create(ctx context.Context, b *leavebalance.LeaveBalance) error {
	if f.createFn != nil {
		return f.createFn(ctx, b)
	}
	return nil
}

func (f *fakeBalanceRepository) Update(ctx context.Context, b *leavebalance.LeaveBalance) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, b)
	}
	return nil
}

func (f *fakeBalanceRepository) FindByUserTypeYear(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error) {
	if f.findByUserTypeYearFn != nil {
		return f.findByUserTypeYearFn(ctx, userID, leaveTypeID, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) FindByUserTypeYearForUpdate(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error) {
	if f.findByUserTypeYearForUpdateFn != nil {
		return f.findByUserTypeYearForUpdateFn(ctx, userID, leaveTypeID, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) ListByUserYear(ctx context.Context, userID uuid.UUID, year int) ([]leavebalance.LeaveBalance, error) {
	if f.listByUserYearFn != nil {
		return f.listByUserYearFn(ctx, userID, year)
	}
	return nil, nil
}

type fakeUserRepository struct {
	findAllActiveFn func(ctx context.Context) ([]user.User, error)
}

func (f *fakeUserRepository) WithTx(tx *sql.Tx) user.Repository              { return f }
func (f *fakeUserRepository) Create(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUserRepository) FindAll(ctx context.Context) ([]user.User, error) {
	return nil, nil
}
func (f *fakeUserRepository) FindAllActive(ctx context.Context) ([]user.User, error) {
	if f.findAllActiveFn != nil {
		return f.findAllActiveFn(ctx)
	}
	return nil, nil
}
func (f *fakeUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepository) GetManagerID(ctx context.Context, id string) (*string, error) {
	return nil, nil
}
func (f *fakeUserRepository) Update(ctx context.Context, u *user.User) error { return nil }

type fakeLeaveTypeRepository struct {
	findAllActiveFn func(ctx context.Context) ([]leavetype.LeaveType, error)
}

func (f *fakeLeaveTypeRepository) WithTx(tx *sql.Tx) leavetype.Repository { return f }
func (f *fakeLeaveTypeRepository) Create(ctx context.Context, lt *leavetype.LeaveType) error {
	return nil
}
func (f *fakeLeaveTypeRepository) FindAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	return nil, nil
}
func (f *fakeLeaveTypeRepository) FindAllActive(ctx context.Context) ([]leavetype.LeaveType, error) {
	if f.findAllActiveFn != nil {
		return f.findAllActiveFn(ctx)
	}
	return nil, nil
}
func (f *fakeLeaveTypeRepository) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeLeaveTypeRepository) FindByNameOrCode(ctx context.Context, name, code string) (*leavetype.LeaveType, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeLeaveTypeRepository) Update(ctx context.Context, lt *leavetype.LeaveType) error {
	return nil
}

type balanceServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  leavebalance.Service
	repo     *fakeBalanceRepository
	userRepo *fakeUserRepository
	typeRepo *fakeLeaveTypeRepository
}

func setupBalanceServiceTest(t *testing.T) *balanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeBalanceRepository{}
	userRepo := &fakeUserRepository{}
	typeRepo := &fakeLeaveTypeRepository{}
	svc := leavebalance.NewService(db, repo, userRepo, typeRepo)

	return &balanceServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		userRepo: userRepo,
		typeRepo: typeRepo,
	}
}

func TestLeaveBalance_RoundTrip(t *testing.T) {
	b := leavebalance.LeaveBalance{TotalDays: 15, UsedDays: 2, RemainingDays: 13}

	for _, d := range []float64{0, 0.5, 1, 5, 11} {
		before := b
		b.Deduct(d)
		assert.Equal(t, before.TotalDays-b.UsedDays, b.RemainingDays)
		b.Restore(d)
		assert.Equal(t, before.UsedDays, b.UsedDays)
		assert.Equal(t, before.RemainingDays, b.RemainingDays)
	}
}

func TestLeaveBalance_RestoreFloorsUsedAtZero(t *testing.T) {
	b := leavebalance.LeaveBalance{TotalDays: 15, UsedDays: 2, RemainingDays: 13}
	b.Restore(5)
	assert.Equal(t, 0.0, b.UsedDays)
	assert.Equal(t, 15.0, b.RemainingDays)
}

func TestLeaveBalance_DeductAllowsNegativeRemaining(t *testing.T) {
	b := leavebalance.LeaveBalance{TotalDays: 3, UsedDays: 0, RemainingDays: 3}
	b.Deduct(5)
	assert.Equal(t, 5.0, b.UsedDays)
	assert.Equal(t, -2.0, b.RemainingDays)
}

func TestBalanceService_InitializeForUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	vlID := uuid.New()
	slID := uuid.New()
	types := []leavetype.LeaveType{
		{ID: vlID, Name: "Vacation Leave", Code: "VL", DaysPerYear: 15, IsActive: true},
		{ID: slID, Name: "Sick Leave", Code: "SL", DaysPerYear: 10, IsActive: true},
	}

	t.Run("creates one row per active type", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.typeRepo.findAllActiveFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return types, nil
		}

		var created []leavebalance.LeaveBalance
		deps.repo.createFn = func(ctx context.Context, b *leavebalance.LeaveBalance) error {
			created = append(created, *b)
			return nil
		}

		_, err := deps.service.InitializeForUser(ctx, userID, 2026)

		assert.NoError(t, err)
		assert.Len(t, created, 2)
		assert.Equal(t, 15.0, created[0].TotalDays)
		assert.Equal(t, 0.0, created[0].UsedDays)
		assert.Equal(t, 15.0, created[0].RemainingDays)
	})

	t.Run("existing rows are skipped", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.typeRepo.findAllActiveFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return types, nil
		}

		calls := 0
		deps.repo.createFn = func(ctx context.Context, b *leavebalance.LeaveBalance) error {
			calls++
			return &pgconn.PgError{Code: "23505"}
		}

		_, err := deps.service.InitializeForUser(ctx, userID, 2026)

		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("negative invalid user id", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.InitializeForUser(ctx, "not-a-uuid", 2026)
		assert.ErrorIs(t, err, leavebalanceerrors.ErrInvalidUserID)
	})
}

func TestBalanceService_ResetForNewYear(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()

	t.Run("carry over capped by policy", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		vl := leavetype.LeaveType{
			ID:                 uuid.New(),
			Name:               "Vacation Leave",
			DaysPerYear:        15,
			IsCarryOverAllowed: true,
			MaxCarryOverDays:   5,
			IsActive:           true,
		}

		deps.userRepo.findAllActiveFn = func(ctx context.Context) ([]user.User, error) {
			return []user.User{{ID: uid, IsActive: true}}, nil
		}
		deps.typeRepo.findAllActiveFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return []leavetype.LeaveType{vl}, nil
		}
		deps.repo.findByUserTypeYearFn = func(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error) {
			assert.Equal(t, 2026, year)
			return &leavebalance.LeaveBalance{TotalDays: 15, UsedDays: 7.5, RemainingDays: 7.5}, nil
		}

		var created *leavebalance.LeaveBalance
		deps.repo.createFn = func(ctx context.Context, b *leavebalance.LeaveBalance) error {
			created = b
			return nil
		}

		resp, err := deps.service.ResetForNewYear(ctx, 2027)

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.RowsCreated)
		assert.NotNil(t, created)
		assert.Equal(t, 5.0, created.CarriedOverDays)
		assert.Equal(t, 20.0, created.TotalDays)
		assert.Equal(t, 20.0, created.RemainingDays)
	})

	t.Run("no carry over when type disallows it", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		sl := leavetype.LeaveType{
			ID:          uuid.New(),
			Name:        "Sick Leave",
			DaysPerYear: 10,
			IsActive:    true,
		}

		deps.userRepo.findAllActiveFn = func(ctx context.Context) ([]user.User, error) {
			return []user.User{{ID: uid, IsActive: true}}, nil
		}
		deps.typeRepo.findAllActiveFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return []leavetype.LeaveType{sl}, nil
		}
		deps.repo.findByUserTypeYearFn = func(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error) {
			t.Fatal("previous year must not be consulted when carry over is disallowed")
			return nil, nil
		}

		var created *leavebalance.LeaveBalance
		deps.repo.createFn = func(ctx context.Context, b *leavebalance.LeaveBalance) error {
			created = b
			return nil
		}

		_, err := deps.service.ResetForNewYear(ctx, 2027)

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, 0.0, created.CarriedOverDays)
		assert.Equal(t, 10.0, created.TotalDays)
	})

	t.Run("rerun is idempotent", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.userRepo.findAllActiveFn = func(ctx context.Context) ([]user.User, error) {
			return []user.User{{ID: uid}}, nil
		}
		deps.typeRepo.findAllActiveFn = func(ctx context.Context) ([]leavetype.LeaveType, error) {
			return []leavetype.LeaveType{{ID: uuid.New(), DaysPerYear: 15, IsActive: true}}, nil
		}
		deps.repo.createFn = func(ctx context.Context, b *leavebalance.LeaveBalance) error {
			return &pgconn.PgError{Code: "23505"}
		}

		resp, err := deps.service.ResetForNewYear(ctx, 2027)

		assert.NoError(t, err)
		assert.Equal(t, 0, resp.RowsCreated)
	})
}

func TestBalanceService_DeductAndRestore(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	typeID := uuid.New()

	t.Run("scenario approve then cancel returns balance to prior state", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		balance := &leavebalance.LeaveBalance{
			UserID:        uid,
			LeaveTypeID:   typeID,
			Year:          2026,
			TotalDays:     15,
			UsedDays:      0,
			RemainingDays: 15,
		}
		deps.repo.findByUserTypeYearForUpdateFn = func(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error) {
			return balance, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		err := deps.service.DeductDays(ctx, uid, typeID, 2026, 5)
		assert.NoError(t, err)
		assert.Equal(t, 5.0, balance.UsedDays)
		assert.Equal(t, 10.0, balance.RemainingDays)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		err = deps.service.RestoreDays(ctx, uid, typeID, 2026, 5)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, balance.UsedDays)
		assert.Equal(t, 15.0, balance.RemainingDays)

		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative missing balance row", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		err := deps.service.DeductDays(ctx, uid, typeID, 2026, 5)
		assert.ErrorIs(t, err, leavebalanceerrors.ErrBalanceNotFound)
	})
}

func TestBalanceService_HasSufficientBalance(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	typeID := uuid.New()

	deps := setupBalanceServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByUserTypeYearFn = func(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error) {
		return &leavebalance.LeaveBalance{TotalDays: 15, UsedDays: 12, RemainingDays: 3}, nil
	}

	ok, err := deps.service.HasSufficientBalance(ctx, uid, typeID, 2026, 3)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = deps.service.HasSufficientBalance(ctx, uid, typeID, 2026, 3.5)
	assert.NoError(t, err)
	assert.False(t, ok)
}
