package calendar

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=calendar_repo.go -destination=mock/calendar_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateEntry(ctx context.Context, e *CalendarEntry) error
	DeleteEntryBySourceRef(ctx context.Context, source, sourceRef string) error
	FindEntriesInRange(ctx context.Context, start, end time.Time) ([]CalendarEntry, error)
	CreateHoliday(ctx context.Context, h *Holiday) error
	FindHolidaysInRange(ctx context.Context, start, end time.Time) ([]Holiday, error)
	FindAllHolidays(ctx context.Context) ([]Holiday, error)
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

func (r *repository) CreateEntry(ctx context.Context, e *CalendarEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) DeleteEntryBySourceRef(ctx context.Context, source, sourceRef string) error {
	return r.db.WithContext(ctx).
		Where("source = ?", source).
		Where("source_ref = ?", sourceRef).
		Delete(&CalendarEntry{}).Error
}

func (r *repository) FindEntriesInRange(ctx context.Context, start, end time.Time) ([]CalendarEntry, error) {
	var entries []CalendarEntry
	err := r.db.WithContext(ctx).
		Where("NOT (end_date < ? OR start_date > ?)", start, end).
		Order("start_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) CreateHoliday(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) FindHolidaysInRange(ctx context.Context, start, end time.Time) ([]Holiday, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start, end).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *repository) FindAllHolidays(ctx context.Context) ([]Holiday, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}
