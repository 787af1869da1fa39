package events

import (
	"encoding/json"
	"time"
)

// Event type tags recorded on outbox rows and used as bus topics.
const (
	TypeTicketCreated  = "ticket.created"
	TypeTicketTriaged  = "ticket.triaged"
	TypeTicketAssigned = "ticket.assigned"
	TypeTicketResolved = "ticket.resolved"
)

// Envelope is the value delivered to the bus for one outbox row.
// PublishedAt is stamped at publish time, not at row creation.
type Envelope struct {
	EventID       string          `json:"eventId"`
	TenantID      string          `json:"tenantId"`
	CorrelationID string          `json:"correlationId"`
	EventType     string          `json:"eventType"`
	AggregateID   string          `json:"aggregateId"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"publishedAt"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID      string `json:"ticketId"`
	TenantID      string `json:"tenantId"`
	CorrelationID string `json:"correlationId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Message       string `json:"message"`
	Priority      int    `json:"priority"`
	Status        string `json:"status"`
}

// TicketTriagedPayload payload. Emitted by both the manager-approval and
// the auto-execution path; AutoExecuted distinguishes them.
type TicketTriagedPayload struct {
	TicketID      string  `json:"ticketId"`
	TenantID      string  `json:"tenantId"`
	CorrelationID string  `json:"correlationId"`
	ProposalID    string  `json:"proposalId"`
	Category      string  `json:"category,omitempty"`
	Priority      *int    `json:"priority"`
	Confidence    float64 `json:"confidence"`
	DecidedBy     string  `json:"decidedBy"`
	AutoExecuted  bool    `json:"autoExecuted"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketID      string  `json:"ticketId"`
	TenantID      string  `json:"tenantId"`
	CorrelationID string  `json:"correlationId"`
	ProposalID    *string `json:"proposalId,omitempty"`
	VendorName    string  `json:"vendorName"`
	VendorTaskID  string  `json:"vendorTaskId"`
	AssignedBy    string  `json:"assignedBy"`
	Notes         *string `json:"notes"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	TicketID        string    `json:"ticketId"`
	TenantID        string    `json:"tenantId"`
	CorrelationID   string    `json:"correlationId"`
	VendorTaskID    string    `json:"vendorTaskId"`
	VendorName      string    `json:"vendorName"`
	ResolutionNotes *string   `json:"resolutionNotes"`
	ResolvedAt      time.Time `json:"resolvedAt"`
}
