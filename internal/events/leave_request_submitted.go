package events

import "time"

const LeaveRequestSubmittedTopic = "leave.request.submitted.v1"

type LeaveRequestSubmittedEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	LeaveID       string    `json:"leave_id"`
	EmployeeID    string    `json:"employee_id"`
	LeaveType     string    `json:"leave_type"`
	DaysRequested int       `json:"days_requested"`
	OccurredAt    time.Time `json:"occurred_at"`
}
