package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TenantID      string `json:"tenantId"`
	UnitID        string `json:"unitId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Message       string `json:"message"`
	Priority      *int   `json:"priority"`
	CorrelationID string `json:"correlationId"`
}

// AssignTicketRequest payload for manual vendor assignment.
type AssignTicketRequest struct {
	TenantID         string  `json:"tenantId"`
	VendorName       string  `json:"vendorName"`
	Notes            *string `json:"notes"`
	AssignedByUserID string  `json:"assignedByUserId"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string              `json:"id"`
	CorrelationID string              `json:"correlationId"`
	UnitID        string              `json:"unitId"`
	Title         string              `json:"title"`
	Status        domain.TicketStatus `json:"status"`
	Priority      int                 `json:"priority"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// TicketDetailResponse provides full ticket info with its thread.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	Messages    []MessageResponse `json:"messages"`
}

// MessageResponse represents a thread message.
type MessageResponse struct {
	ID         string            `json:"id"`
	SenderType domain.SenderType `json:"senderType"`
	Content    string            `json:"content"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// VendorTaskResponse represents a vendor task.
type VendorTaskResponse struct {
	ID          string            `json:"id"`
	TicketID    string            `json:"ticketId"`
	VendorName  string            `json:"vendorName"`
	Status      domain.TaskStatus `json:"status"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// CompleteTaskRequest payload.
type CompleteTaskRequest struct {
	TenantID        string  `json:"tenantId"`
	ResolutionNotes *string `json:"resolutionNotes"`
}
