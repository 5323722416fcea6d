package leavebalance

import (
	"time"

	"go-hrportal/internal/leavetype"

	"github.com/google/uuid"
)

type LeaveBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balances_user_type_year"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balances_user_type_year"`
	Year        int       `gorm:"not null;uniqueIndex:uq_balances_user_type_year"`

	TotalDays       float64 `gorm:"type:decimal(4,1);not null"`
	UsedDays        float64 `gorm:"type:decimal(4,1);not null;default:0"`
	RemainingDays   float64 `gorm:"type:decimal(4,1);not null"`
	CarriedOverDays float64 `gorm:"type:decimal(4,1);not null;default:0"`

	LeaveType *leavetype.LeaveType `gorm:"foreignKey:LeaveTypeID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deduct books n days against the balance. Remaining is recomputed
// from total and used on every write rather than trusted.
func (b *LeaveBalance) Deduct(n float64) {
	b.UsedDays += n
	b.RemainingDays = b.TotalDays - b.UsedDays
}

// Restore releases n previously booked days, flooring used at zero.
func (b *LeaveBalance) Restore(n float64) {
	b.UsedDays -= n
	if b.UsedDays < 0 {
		b.UsedDays = 0
	}
	b.RemainingDays = b.TotalDays - b.UsedDays
}

func (b *LeaveBalance) HasSufficient(requested float64) bool {
	return b.RemainingDays >= requested
}
