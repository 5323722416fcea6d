package leavebalance

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leavebalance_repo.go -destination=mock/leavebalance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	Update(ctx context.Context, b *LeaveBalance) error
	FindByUserTypeYear(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*LeaveBalance, error)
	// FindByUserTypeYearForUpdate takes a row lock so concurrent
	// approvals serialize on the same balance row.
	FindByUserTypeYearForUpdate(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*LeaveBalance, error)
	ListByUserYear(ctx context.Context, userID uuid.UUID, year int) ([]LeaveBalance, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO leave_balances
				(id, user_id, leave_type_id, year, total_days, used_days, remaining_days, carried_over_days, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`,
			b.ID, b.UserID, b.LeaveTypeID, b.Year,
			b.TotalDays, b.UsedDays, b.RemainingDays, b.CarriedOverDays,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) Update(ctx context.Context, b *LeaveBalance) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			UPDATE leave_balances
			SET used_days = $1, remaining_days = $2, updated_at = NOW()
			WHERE id = $3`,
			b.UsedDays, b.RemainingDays, b.ID,
		)
		return err
	}
	return r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"used_days":      b.UsedDays,
			"remaining_days": b.RemainingDays,
		}).Error
}

func (r *repository) FindByUserTypeYear(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND leave_type_id = ? AND year = ?", userID, leaveTypeID, year).
		First(&b).Error
	return &b, err
}

func (r *repository) FindByUserTypeYearForUpdate(ctx context.Context, userID, leaveTypeID uuid.UUID, year int) (*LeaveBalance, error) {
	if r.tx != nil {
		var b LeaveBalance
		err := r.tx.QueryRowContext(ctx, `
			SELECT id, user_id, leave_type_id, year, total_days, used_days, remaining_days, carried_over_days
			FROM leave_balances
			WHERE user_id = $1 AND leave_type_id = $2 AND year = $3
			FOR UPDATE`,
			userID, leaveTypeID, year,
		).Scan(
			&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year,
			&b.TotalDays, &b.UsedDays, &b.RemainingDays, &b.CarriedOverDays,
		)
		if err != nil {
			return nil, err
		}
		return &b, nil
	}

	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND leave_type_id = ? AND year = ?", userID, leaveTypeID, year).
		First(&b).Error
	return &b, err
}

func (r *repository) ListByUserYear(ctx context.Context, userID uuid.UUID, year int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("user_id = ? AND year = ?", userID, year).
		Order("created_at ASC").
		Find(&balances).Error
	return balances, err
}
