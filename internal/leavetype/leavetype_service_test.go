package leavetype_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-hrportal/internal/leavetype"
	leavetypeerrors "go-hrportal/internal/leavetype/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeLeaveTypeRepository struct {
	createFn           func(ctx context.Context, lt *leavetype.LeaveType) error
	findAllFn          func(ctx context.Context) ([]leavetype.LeaveType, error)
	findByIDFn         func(ctx context.Context, id string) (*leavetype.LeaveType, error)
	findByNameOrCodeFn func(ctx context.Context, name, code string) (*leavetype.LeaveType, error)
	updateFn           func(ctx context.Context, lt *leavetype.LeaveType) error
}

func (f *fakeLeaveTypeRepository) WithTx(tx *sql.Tx) leavetype.Repository { return f }

func (f *fakeLeaveTypeRepository) Create(ctx context.Context, lt *leavetype.LeaveType) error {
	if f.createFn != nil {
		return f.createFn(ctx, lt)
	}
	return nil
}

func (f *fakeLeaveTypeRepository) FindAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveTypeRepository) FindAllActive(ctx context.Context) ([]leavetype.LeaveType, error) {
	return nil, nil
}

func (f *fakeLeaveTypeRepository) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveTypeRepository) FindByNameOrCode(ctx context.Context, name, code string) (*leavetype.LeaveType, error) {
	if f.findByNameOrCodeFn != nil {
		return f.findByNameOrCodeFn(ctx, name, code)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveTypeRepository) Update(ctx context.Context, lt *leavetype.LeaveType) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, lt)
	}
	return nil
}

func setupLeaveTypeServiceTest(t *testing.T, repo leavetype.Repository) (leavetype.Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return leavetype.NewService(db, repo, nil), mock
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func vacationType() leavetype.LeaveType {
	return leavetype.LeaveType{
		ID:          uuid.New(),
		Name:        "Vacation Leave",
		Code:        "VL",
		DaysPerYear: 15,
		IsPaid:      true,
		Color:       "#3788d8",
		IsActive:    true,
	}
}

func TestLeaveTypeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success with default color", func(t *testing.T) {
		var created *leavetype.LeaveType
		repo := &fakeLeaveTypeRepository{
			createFn: func(ctx context.Context, lt *leavetype.LeaveType) error {
				created = lt
				return nil
			},
		}
		svc, mock := setupLeaveTypeServiceTest(t, repo)
		expectTx(mock, true)

		resp, err := svc.Create(ctx, leavetype.CreateLeaveTypeRequest{
			Name:        "Sick Leave",
			Code:        "SL",
			DaysPerYear: 10,
			IsPaid:      true,
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, "#3788d8", created.Color)
		assert.True(t, created.IsActive)
		assert.Equal(t, "SL", resp.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative duplicate name or code", func(t *testing.T) {
		existing := vacationType()
		repo := &fakeLeaveTypeRepository{
			findByNameOrCodeFn: func(ctx context.Context, name, code string) (*leavetype.LeaveType, error) {
				return &existing, nil
			},
			createFn: func(ctx context.Context, lt *leavetype.LeaveType) error {
				t.Fatal("create must not be reached on conflict")
				return nil
			},
		}
		svc, mock := setupLeaveTypeServiceTest(t, repo)
		expectTx(mock, false)

		_, err := svc.Create(ctx, leavetype.CreateLeaveTypeRequest{
			Name:        "Vacation Leave",
			Code:        "VL",
			DaysPerYear: 15,
		})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNameTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative malformed color", func(t *testing.T) {
		svc, mock := setupLeaveTypeServiceTest(t, &fakeLeaveTypeRepository{})
		expectTx(mock, false)

		_, err := svc.Create(ctx, leavetype.CreateLeaveTypeRequest{
			Name:        "Sick Leave",
			Code:        "SL",
			DaysPerYear: 10,
			Color:       "blue",
		})

		assert.ErrorIs(t, err, leavetypeerrors.ErrInvalidColor)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeaveTypeService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the database", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		rdb, redis := redismock.NewClientMock()
		repo := &fakeLeaveTypeRepository{
			findAllFn: func(ctx context.Context) ([]leavetype.LeaveType, error) {
				t.Fatal("repository must not be consulted on a cache hit")
				return nil, nil
			},
		}
		svc := leavetype.NewService(db, repo, rdb)

		cached, _ := json.Marshal([]leavetype.LeaveTypeResponse{{Name: "Vacation Leave", Code: "VL"}})
		redis.ExpectGet(leavetype.LeaveTypeAllKey).SetVal(string(cached))

		resp, err := svc.GetAll(ctx)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "VL", resp[0].Code)
		assert.NoError(t, redis.ExpectationsWereMet())
	})

	t.Run("cache miss resolves and stores", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		rdb, redis := redismock.NewClientMock()
		lt := vacationType()
		repo := &fakeLeaveTypeRepository{
			findAllFn: func(ctx context.Context) ([]leavetype.LeaveType, error) {
				return []leavetype.LeaveType{lt}, nil
			},
		}
		svc := leavetype.NewService(db, repo, rdb)

		payload, _ := json.Marshal([]leavetype.LeaveTypeResponse{{
			ID:          lt.ID.String(),
			Name:        lt.Name,
			Code:        lt.Code,
			DaysPerYear: lt.DaysPerYear,
			IsPaid:      lt.IsPaid,
			Color:       lt.Color,
			IsActive:    lt.IsActive,
		}})
		redis.ExpectGet(leavetype.LeaveTypeAllKey).RedisNil()
		redis.ExpectSet(leavetype.LeaveTypeAllKey, payload, 30*time.Minute).SetVal("OK")

		resp, err := svc.GetAll(ctx)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, lt.ID.String(), resp[0].ID)
		assert.NoError(t, redis.ExpectationsWereMet())
	})
}

func TestLeaveTypeService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success deactivates the type", func(t *testing.T) {
		lt := vacationType()
		var updated *leavetype.LeaveType
		repo := &fakeLeaveTypeRepository{
			findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
				copied := lt
				return &copied, nil
			},
			updateFn: func(ctx context.Context, in *leavetype.LeaveType) error {
				updated = in
				return nil
			},
		}
		svc, mock := setupLeaveTypeServiceTest(t, repo)
		expectTx(mock, true)

		inactive := false
		resp, err := svc.Update(ctx, lt.ID.String(), leavetype.UpdateLeaveTypeRequest{
			Name:        lt.Name,
			DaysPerYear: lt.DaysPerYear,
			IsPaid:      lt.IsPaid,
			Color:       lt.Color,
			IsActive:    &inactive,
		})

		assert.NoError(t, err)
		assert.NotNil(t, updated)
		assert.False(t, updated.IsActive)
		assert.False(t, resp.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		svc, mock := setupLeaveTypeServiceTest(t, &fakeLeaveTypeRepository{})
		expectTx(mock, false)

		_, err := svc.Update(ctx, uuid.New().String(), leavetype.UpdateLeaveTypeRequest{
			Name:        "Vacation Leave",
			DaysPerYear: 15,
		})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeaveTypeService_GetByID(t *testing.T) {
	ctx := context.Background()

	lt := vacationType()
	repo := &fakeLeaveTypeRepository{
		findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
			if id == lt.ID.String() {
				copied := lt
				return &copied, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := setupLeaveTypeServiceTest(t, repo)

	resp, err := svc.GetByID(ctx, lt.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, "Vacation Leave", resp.Name)

	_, err = svc.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
}
