package domain

import "time"

// TaskStatus enumerates vendor task states. COMPLETED is terminal.
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "OPEN"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// VendorTask tracks work handed to an external vendor for a ticket.
// Completing the task resolves its ticket.
type VendorTask struct {
	ID          string
	TenantID    string
	TicketID    string
	VendorName  string
	Status      TaskStatus
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
