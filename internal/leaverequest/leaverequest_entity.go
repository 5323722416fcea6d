package leaverequest

import (
	"time"

	"go-hrportal/internal/leavetype"
	"go-hrportal/internal/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPendingManager      = "PENDING_MANAGER"
	StatusPendingHr           = "PENDING_HR"
	StatusApproved            = "APPROVED"
	StatusRejectedByManager   = "REJECTED_BY_MANAGER"
	StatusRejectedByHr        = "REJECTED_BY_HR"
	StatusCancelled           = "CANCELLED"
	StatusPendingCancellation = "PENDING_CANCELLATION"
)

type LeaveRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_leave_requests_number"`

	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_user_dates"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate    time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	EndDate      time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	HalfDayStart bool      `gorm:"not null;default:false"`
	HalfDayEnd   bool      `gorm:"not null;default:false"`
	TotalDays    float64   `gorm:"type:decimal(4,1);not null"`
	Reason       string    `gorm:"type:text"`

	Status string `gorm:"type:varchar(25);not null;default:'PENDING_MANAGER';index:idx_leave_requests_status"`

	ManagerApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ManagerApprovedAt *time.Time
	HrApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	HrApprovedAt      *time.Time
	RejectionReason   *string `gorm:"type:text"`

	CancellationReason      *string `gorm:"type:text"`
	CancellationRequestedAt *time.Time
	CancelledBy             *uuid.UUID `gorm:"type:uuid"`
	CancelledAt             *time.Time

	User      *user.User           `gorm:"foreignKey:UserID"`
	LeaveType *leavetype.LeaveType `gorm:"foreignKey:LeaveTypeID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leave_requests_deleted_at"`
}

// RequiresMedicalCertificate reports whether the request needs a
// supporting document under the leave type's policy. A nil threshold
// means every request of the type needs one.
func (l *LeaveRequest) RequiresMedicalCertificate() bool {
	if l.LeaveType == nil || !l.LeaveType.RequiresMedicalCert {
		return false
	}
	if l.LeaveType.MedicalCertThreshold == nil {
		return true
	}
	return l.TotalDays > *l.LeaveType.MedicalCertThreshold
}
