package events

import "time"

const LeaveRequestDecidedTopic = "leave.request.decided.v1"

type LeaveRequestDecidedEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	LeaveID       string    `json:"leave_id"`
	EmployeeID    string    `json:"employee_id"`
	Status        string    `json:"status"`
	DaysRequested int       `json:"days_requested"`
	ReviewedBy    string    `json:"reviewed_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}
