package leavetype

type CreateLeaveTypeRequest struct {
	Name                 string   `json:"name" binding:"required"`
	Code                 string   `json:"code" binding:"required"`
	DaysPerYear          float64  `json:"days_per_year" binding:"required,gt=0"`
	IsPaid               bool     `json:"is_paid"`
	RequiresMedicalCert  bool     `json:"requires_medical_cert"`
	MedicalCertThreshold *float64 `json:"medical_cert_threshold"`
	IsCarryOverAllowed   bool     `json:"is_carry_over_allowed"`
	MaxCarryOverDays     float64  `json:"max_carry_over_days"`
	GenderRestriction    string   `json:"gender_restriction" binding:"omitempty,oneof=MALE FEMALE"`
	Color                string   `json:"color"`
}

type UpdateLeaveTypeRequest struct {
	Name                 string   `json:"name" binding:"required"`
	DaysPerYear          float64  `json:"days_per_year" binding:"required,gt=0"`
	IsPaid               bool     `json:"is_paid"`
	RequiresMedicalCert  bool     `json:"requires_medical_cert"`
	MedicalCertThreshold *float64 `json:"medical_cert_threshold"`
	IsCarryOverAllowed   bool     `json:"is_carry_over_allowed"`
	MaxCarryOverDays     float64  `json:"max_carry_over_days"`
	GenderRestriction    string   `json:"gender_restriction" binding:"omitempty,oneof=MALE FEMALE"`
	Color                string   `json:"color"`
	IsActive             *bool    `json:"is_active"`
}

type LeaveTypeResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Code                 string   `json:"code"`
	DaysPerYear          float64  `json:"days_per_year"`
	IsPaid               bool     `json:"is_paid"`
	RequiresMedicalCert  bool     `json:"requires_medical_cert"`
	MedicalCertThreshold *float64 `json:"medical_cert_threshold,omitempty"`
	IsCarryOverAllowed   bool     `json:"is_carry_over_allowed"`
	MaxCarryOverDays     float64  `json:"max_carry_over_days"`
	GenderRestriction    string   `json:"gender_restriction,omitempty"`
	Color                string   `json:"color"`
	IsActive             bool     `json:"is_active"`
}
