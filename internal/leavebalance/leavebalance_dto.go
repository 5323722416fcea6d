package leavebalance

type InitializeBalancesRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Year   int    `json:"year" binding:"required,min=2000,max=2100"`
}

type RolloverRequest struct {
	Year int `json:"year" binding:"required,min=2000,max=2100"`
}

type RolloverResponse struct {
	Year         int `json:"year"`
	RowsCreated  int `json:"rows_created"`
	UsersCovered int `json:"users_covered"`
}

type BalanceResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	LeaveTypeID     string  `json:"leave_type_id"`
	LeaveTypeName   string  `json:"leave_type_name,omitempty"`
	Year            int     `json:"year"`
	TotalDays       float64 `json:"total_days"`
	UsedDays        float64 `json:"used_days"`
	RemainingDays   float64 `json:"remaining_days"`
	CarriedOverDays float64 `json:"carried_over_days"`
}
