package user_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-hrportal/internal/user"
	usererrors "go-hrportal/internal/user/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepository struct {
	users map[string]*user.User

	createFn       func(ctx context.Context, u *user.User) error
	findByEmailFn  func(ctx context.Context, email string) (*user.User, error)
	updateFn       func(ctx context.Context, u *user.User) error
	getManagerIDFn func(ctx context.Context, id string) (*string, error)
}

func newFakeUserRepository(users ...*user.User) *fakeUserRepository {
	f := &fakeUserRepository{users: map[string]*user.User{}}
	for _, u := range users {
		f.users[u.ID.String()] = u
	}
	return f
}

func (f *fakeUserRepository) WithTx(tx *sql.Tx) user.Repository { return f }

func (f *fakeUserRepository) Create(ctx context.Context, u *user.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	f.users[u.ID.String()] = u
	return nil
}

func (f *fakeUserRepository) FindAll(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepository) FindAllActive(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		if u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) GetManagerID(ctx context.Context, id string) (*string, error) {
	if f.getManagerIDFn != nil {
		return f.getManagerIDFn(ctx, id)
	}
	u, ok := f.users[id]
	if !ok || u.ManagerID == nil {
		return nil, nil
	}
	v := u.ManagerID.String()
	return &v, nil
}

func (f *fakeUserRepository) Update(ctx context.Context, u *user.User) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, u)
	}
	copied := *u
	f.users[u.ID.String()] = &copied
	return nil
}

type fakeCounterRepository struct {
	next int64
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

func setupUserServiceTest(t *testing.T, repo user.Repository) (user.Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return user.NewService(db, repo, &fakeCounterRepository{}), mock
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func employee(name string) *user.User {
	return &user.User{
		ID:       uuid.New(),
		FullName: name,
		Email:    name + "@example.test",
		Gender:   "FEMALE",
		IsActive: true,
		HireDate: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success assigns employee number and hashes password", func(t *testing.T) {
		repo := newFakeUserRepository()
		svc, mock := setupUserServiceTest(t, repo)
		expectTx(mock, true)

		resp, err := svc.Create(ctx, user.CreateUserRequest{
			FullName: "Jane Reyes",
			Email:    "jane.reyes@example.test",
			Gender:   "FEMALE",
			HireDate: "2024-01-15",
			Password: "s3cret-pass",
		})

		assert.NoError(t, err)
		assert.Equal(t, "EMP-00001", resp.EmployeeNumber)
		assert.Equal(t, "2024-01-15", resp.HireDate)
		assert.True(t, resp.IsActive)

		stored := repo.users[resp.ID]
		assert.NotNil(t, stored)
		assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative email already taken", func(t *testing.T) {
		existing := employee("jane")
		repo := newFakeUserRepository(existing)
		svc, mock := setupUserServiceTest(t, repo)
		expectTx(mock, false)

		_, err := svc.Create(ctx, user.CreateUserRequest{
			FullName: "Another Jane",
			Email:    existing.Email,
			Gender:   "FEMALE",
			HireDate: "2024-01-15",
		})

		assert.ErrorIs(t, err, usererrors.ErrEmailTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative bad hire date", func(t *testing.T) {
		svc, mock := setupUserServiceTest(t, newFakeUserRepository())
		expectTx(mock, false)

		_, err := svc.Create(ctx, user.CreateUserRequest{
			FullName: "Jane Reyes",
			Email:    "jane@example.test",
			Gender:   "FEMALE",
			HireDate: "15-01-2024",
		})

		assert.ErrorIs(t, err, usererrors.ErrInvalidDateFormat)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative unknown manager", func(t *testing.T) {
		svc, mock := setupUserServiceTest(t, newFakeUserRepository())
		expectTx(mock, false)

		ghost := uuid.New().String()
		_, err := svc.Create(ctx, user.CreateUserRequest{
			FullName:  "Jane Reyes",
			Email:     "jane@example.test",
			Gender:    "FEMALE",
			HireDate:  "2024-01-15",
			ManagerID: &ghost,
		})

		assert.ErrorIs(t, err, usererrors.ErrManagerNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserService_SetManager(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		alice := employee("alice")
		bob := employee("bob")
		repo := newFakeUserRepository(alice, bob)
		svc, _ := setupUserServiceTest(t, repo)

		managerID := bob.ID.String()
		resp, err := svc.SetManager(ctx, alice.ID.String(), user.SetManagerRequest{ManagerID: &managerID})

		assert.NoError(t, err)
		assert.NotNil(t, resp.ManagerID)
		assert.Equal(t, managerID, *resp.ManagerID)
	})

	t.Run("clearing the manager", func(t *testing.T) {
		bob := employee("bob")
		alice := employee("alice")
		alice.ManagerID = &bob.ID
		repo := newFakeUserRepository(alice, bob)
		svc, _ := setupUserServiceTest(t, repo)

		resp, err := svc.SetManager(ctx, alice.ID.String(), user.SetManagerRequest{})
		assert.NoError(t, err)
		assert.Nil(t, resp.ManagerID)
	})

	t.Run("negative self manager", func(t *testing.T) {
		alice := employee("alice")
		repo := newFakeUserRepository(alice)
		svc, _ := setupUserServiceTest(t, repo)

		self := alice.ID.String()
		_, err := svc.SetManager(ctx, alice.ID.String(), user.SetManagerRequest{ManagerID: &self})
		assert.ErrorIs(t, err, usererrors.ErrSelfManager)
	})

	t.Run("negative two hop cycle", func(t *testing.T) {
		// bob already reports to alice; making alice report to bob
		// would close the loop.
		alice := employee("alice")
		bob := employee("bob")
		bob.ManagerID = &alice.ID
		repo := newFakeUserRepository(alice, bob)
		svc, _ := setupUserServiceTest(t, repo)

		managerID := bob.ID.String()
		_, err := svc.SetManager(ctx, alice.ID.String(), user.SetManagerRequest{ManagerID: &managerID})
		assert.ErrorIs(t, err, usererrors.ErrManagerCycle)
	})

	t.Run("negative deep cycle", func(t *testing.T) {
		// carol -> bob -> alice; alice -> carol closes a three hop loop
		alice := employee("alice")
		bob := employee("bob")
		carol := employee("carol")
		bob.ManagerID = &alice.ID
		carol.ManagerID = &bob.ID
		repo := newFakeUserRepository(alice, bob, carol)
		svc, _ := setupUserServiceTest(t, repo)

		managerID := carol.ID.String()
		_, err := svc.SetManager(ctx, alice.ID.String(), user.SetManagerRequest{ManagerID: &managerID})
		assert.ErrorIs(t, err, usererrors.ErrManagerCycle)
	})

	t.Run("long chain without a loop is fine", func(t *testing.T) {
		alice := employee("alice")
		bob := employee("bob")
		carol := employee("carol")
		dave := employee("dave")
		carol.ManagerID = &dave.ID
		bob.ManagerID = &carol.ID
		repo := newFakeUserRepository(alice, bob, carol, dave)
		svc, _ := setupUserServiceTest(t, repo)

		managerID := bob.ID.String()
		_, err := svc.SetManager(ctx, alice.ID.String(), user.SetManagerRequest{ManagerID: &managerID})
		assert.NoError(t, err)
	})

	t.Run("negative unknown user", func(t *testing.T) {
		svc, _ := setupUserServiceTest(t, newFakeUserRepository())

		managerID := uuid.New().String()
		_, err := svc.SetManager(ctx, uuid.New().String(), user.SetManagerRequest{ManagerID: &managerID})
		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})
}

func TestUserService_Deactivate(t *testing.T) {
	ctx := context.Background()

	alice := employee("alice")
	repo := newFakeUserRepository(alice)
	svc, _ := setupUserServiceTest(t, repo)

	assert.NoError(t, svc.Deactivate(ctx, alice.ID.String()))
	assert.False(t, repo.users[alice.ID.String()].IsActive)

	assert.ErrorIs(t, svc.Deactivate(ctx, uuid.New().String()), usererrors.ErrUserNotFound)
}
