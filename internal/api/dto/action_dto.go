package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CreateProposalsRequest is the AI worker's submission payload.
type CreateProposalsRequest struct {
	TenantID  string          `json:"tenantId"`
	TicketID  string          `json:"ticketId"`
	Proposals []ProposalInput `json:"proposals"`
}

// ProposalInput describes one proposed action.
type ProposalInput struct {
	ActionType domain.ActionType `json:"actionType"`
	Confidence float64           `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
	Payload    json.RawMessage   `json:"payload"`
}

// ApproveActionRequest payload.
type ApproveActionRequest struct {
	TenantID        string `json:"tenantId"`
	DecidedByUserID string `json:"decidedByUserId"`
}

// RejectActionRequest payload.
type RejectActionRequest struct {
	TenantID        string  `json:"tenantId"`
	DecidedByUserID string  `json:"decidedByUserId"`
	RejectionReason *string `json:"rejectionReason"`
}

// ProposalResponse represents a proposal in listings.
type ProposalResponse struct {
	ID              string                `json:"id"`
	TicketID        string                `json:"ticketId"`
	ActionType      domain.ActionType     `json:"actionType"`
	Confidence      float64               `json:"confidence"`
	Reasoning       string                `json:"reasoning"`
	Payload         json.RawMessage       `json:"payload"`
	Status          domain.ProposalStatus `json:"status"`
	DecidedAt       *time.Time            `json:"decidedAt"`
	ExecutedAt      *time.Time            `json:"executedAt"`
	RejectionReason *string               `json:"rejectionReason"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// ClaimEventRequest payload for the idempotent claim ledger.
type ClaimEventRequest struct {
	TenantID     string `json:"tenantId"`
	EventID      string `json:"eventId"`
	ConsumerName string `json:"consumerName"`
}

// AuditEntryResponse represents one audit trail row.
type AuditEntryResponse struct {
	ID        string         `json:"id"`
	TicketID  string         `json:"ticketId"`
	ActorID   string         `json:"actorId"`
	Action    string         `json:"action"`
	Changes   map[string]any `json:"changes"`
	CreatedAt time.Time      `json:"createdAt"`
}
