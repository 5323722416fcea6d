package leaverequest

type CreateLeaveRequestRequest struct {
	LeaveTypeID  string `json:"leave_type_id" binding:"required,uuid"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
	HalfDayStart bool   `json:"half_day_start"`
	HalfDayEnd   bool   `json:"half_day_end"`
	Reason       string `json:"reason" binding:"required"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CancellationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type LeaveRequestResponse struct {
	ID            string `json:"id"`
	RequestNumber string `json:"request_number"`

	UserID        string `json:"user_id"`
	UserName      string `json:"user_name,omitempty"`
	LeaveTypeID   string `json:"leave_type_id"`
	LeaveTypeName string `json:"leave_type_name,omitempty"`

	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	HalfDayStart bool    `json:"half_day_start"`
	HalfDayEnd   bool    `json:"half_day_end"`
	TotalDays    float64 `json:"total_days"`
	Reason       string  `json:"reason"`

	Status string `json:"status"`

	ManagerApprovedBy *string `json:"manager_approved_by,omitempty"`
	ManagerApprovedAt *string `json:"manager_approved_at,omitempty"`
	HrApprovedBy      *string `json:"hr_approved_by,omitempty"`
	HrApprovedAt      *string `json:"hr_approved_at,omitempty"`
	RejectionReason   *string `json:"rejection_reason,omitempty"`

	CancellationReason *string `json:"cancellation_reason,omitempty"`
	CancelledAt        *string `json:"cancelled_at,omitempty"`

	RequiresMedicalCertificate bool `json:"requires_medical_certificate"`
}
