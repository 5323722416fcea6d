package leaverequest

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leaverequest_repo.go -destination=mock/leaverequest_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	// FindByIDForUpdate takes a row lock so concurrent transitions of
	// the same request serialize on the status guard.
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	FindAllByUser(ctx context.Context, userID string) ([]LeaveRequest, error)
	FindAllByStatus(ctx context.Context, status string) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	Update(ctx context.Context, l *LeaveRequest) error
	HasOverlappingPeriod(ctx context.Context, userID string, startDate, endDate time.Time, excludeID *string) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO leave_requests
				(id, request_number, user_id, leave_type_id, start_date, end_date,
				 half_day_start, half_day_end, total_days, reason, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`,
			l.ID, l.RequestNumber, l.UserID, l.LeaveTypeID, l.StartDate, l.EndDate,
			l.HalfDayStart, l.HalfDayEnd, l.TotalDays, l.Reason, l.Status,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("LeaveType").
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	if r.tx != nil {
		var l LeaveRequest
		err := r.tx.QueryRowContext(ctx, `
			SELECT id, request_number, user_id, leave_type_id, start_date, end_date,
			       half_day_start, half_day_end, total_days, reason, status,
			       manager_approved_by, manager_approved_at, hr_approved_by, hr_approved_at,
			       rejection_reason, cancellation_reason, cancellation_requested_at,
			       cancelled_by, cancelled_at
			FROM leave_requests
			WHERE id = $1 AND deleted_at IS NULL
			FOR UPDATE`,
			id,
		).Scan(
			&l.ID, &l.RequestNumber, &l.UserID, &l.LeaveTypeID, &l.StartDate, &l.EndDate,
			&l.HalfDayStart, &l.HalfDayEnd, &l.TotalDays, &l.Reason, &l.Status,
			&l.ManagerApprovedBy, &l.ManagerApprovedAt, &l.HrApprovedBy, &l.HrApprovedAt,
			&l.RejectionReason, &l.CancellationReason, &l.CancellationRequestedAt,
			&l.CancelledBy, &l.CancelledAt,
		)
		if err != nil {
			return nil, err
		}
		return &l, nil
	}

	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindAllByUser(ctx context.Context, userID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAllByStatus(ctx context.Context, status string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("LeaveType").
		Where("status = ?", status).
		Order("start_date ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("LeaveType").
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			UPDATE leave_requests
			SET status = $1,
			    manager_approved_by = $2, manager_approved_at = $3,
			    hr_approved_by = $4, hr_approved_at = $5,
			    rejection_reason = $6,
			    cancellation_reason = $7, cancellation_requested_at = $8,
			    cancelled_by = $9, cancelled_at = $10,
			    updated_at = NOW()
			WHERE id = $11`,
			l.Status,
			l.ManagerApprovedBy, l.ManagerApprovedAt,
			l.HrApprovedBy, l.HrApprovedAt,
			l.RejectionReason,
			l.CancellationReason, l.CancellationRequestedAt,
			l.CancelledBy, l.CancelledAt,
			l.ID,
		)
		return err
	}
	return r.db.WithContext(ctx).Save(l).Error
}

// HasOverlappingPeriod counts open or approved requests touching the
// window. Cancelled and rejected requests do not block a new one.
func (r *repository) HasOverlappingPeriod(ctx context.Context, userID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("user_id = ?", userID).
		Where("status NOT IN ?", []string{StatusCancelled, StatusRejectedByManager, StatusRejectedByHr}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
