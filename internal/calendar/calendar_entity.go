package calendar

import (
	"time"

	"github.com/google/uuid"
)

const (
	SourceLeave   = "LEAVE"
	SourceHoliday = "HOLIDAY"
)

// CalendarEntry is the materialized projection row. Leave entries are
// written by the lifecycle consumer, holiday entries through the HTTP
// API; neither is kept in sync with its source after creation.
type CalendarEntry struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Source string    `gorm:"type:varchar(10);not null;index:idx_calendar_entries_source"`

	// SourceRef ties a leave entry back to its request so a
	// cancellation can remove it. Unique per source so replayed
	// events create no duplicates.
	SourceRef string `gorm:"type:varchar(40);not null;uniqueIndex:uq_calendar_entries_source_ref"`

	Title     string    `gorm:"type:varchar(200);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_calendar_entries_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_calendar_entries_dates"`
	Color     string    `gorm:"type:varchar(7);not null;default:'#3788d8'"`

	UserID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Holiday struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(150);not null"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uq_holidays_date"`
	IsRecurring bool      `gorm:"not null;default:false"`
	Color       string    `gorm:"type:varchar(7);not null;default:'#d33838'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
