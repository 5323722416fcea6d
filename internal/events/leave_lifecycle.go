package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	EventTypeLeaveApproved  = "leave_approved"
	EventTypeLeaveCancelled = "leave_cancelled"
)

type LeaveApprovedEvent struct {
	EventType      string    `json:"event_type"`
	LeaveRequestID string    `json:"leave_request_id"`
	RequestNumber  string    `json:"request_number"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	LeaveTypeID    string    `json:"leave_type_id"`
	LeaveTypeName  string    `json:"leave_type_name"`
	Color          string    `json:"color"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	TotalDays      float64   `json:"total_days"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type LeaveCancelledEvent struct {
	EventType      string    `json:"event_type"`
	LeaveRequestID string    `json:"leave_request_id"`
	UserID         string    `json:"user_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}
