package leavetype

import (
	"time"

	"github.com/google/uuid"
)

type LeaveType struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_leave_types_name"`
	Code string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_leave_types_code"`

	DaysPerYear float64 `gorm:"type:decimal(4,1);not null"`
	IsPaid      bool    `gorm:"not null;default:true"`

	RequiresMedicalCert  bool     `gorm:"not null;default:false"`
	MedicalCertThreshold *float64 `gorm:"type:decimal(4,1)"`

	IsCarryOverAllowed bool    `gorm:"not null;default:false"`
	MaxCarryOverDays   float64 `gorm:"type:decimal(4,1);not null;default:0"`

	// Restricts the type to one gender (e.g. maternity leave); empty
	// means no restriction.
	GenderRestriction string `gorm:"type:varchar(10)"`

	Color    string `gorm:"type:varchar(7);not null;default:'#3788d8'"`
	IsActive bool   `gorm:"not null;default:true;index:idx_leave_types_active"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
