package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// SystemActorID tags mutations performed by the service itself.
const SystemActorID = "system"

// DefaultAssignerID is recorded when a manual assignment omits the actor.
const DefaultAssignerID = "manager"

// TicketService coordinates the ticket side of the workflow: creation and
// manual vendor assignment, plus the read surface.
type TicketService struct {
	store repository.Store
}

// NewTicketService constructs the service.
func NewTicketService(store repository.Store) *TicketService {
	return &TicketService{store: store}
}

// TicketCreateInput describes a resident submission.
type TicketCreateInput struct {
	TenantID      string
	Title         string
	Description   string
	Message       string
	Priority      *int
	UnitID        string
	CorrelationID string
}

// VendorAssignInput describes a manual vendor assignment.
type VendorAssignInput struct {
	TenantID   string
	VendorName string
	Notes      *string
	AssignerID string
}

// AssignResult reports the outcome of a vendor assignment.
type AssignResult struct {
	TicketID     string
	Status       domain.TicketStatus
	VendorTaskID string
	VendorName   string
}

// Create persists a new ticket together with its initial message, outbox
// event, and audit row in one transaction.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if input.TenantID == "" {
		return nil, apperrors.NewValidationError("tenantId required", nil)
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	message := strings.TrimSpace(input.Message)
	if title == "" || description == "" || message == "" {
		return nil, apperrors.NewValidationError("title, description, message required", nil)
	}
	priority := 0
	if input.Priority != nil {
		priority = *input.Priority
	}
	if priority < domain.MinPriority || priority > domain.MaxPriority {
		return nil, apperrors.NewValidationError("priority out of range", map[string]any{
			"priority": priority,
		})
	}
	correlationID := input.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	ticket := &domain.Ticket{
		ID:            uuid.NewString(),
		TenantID:      input.TenantID,
		CorrelationID: correlationID,
		UnitID:        input.UnitID,
		Title:         title,
		Description:   description,
		Status:        domain.TicketStatusNew,
		Priority:      priority,
	}

	err := s.store.InTenantTx(ctx, input.TenantID, func(r repository.Repositories) error {
		if err := r.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		if err := r.Messages().Create(ctx, &domain.Message{
			ID:         uuid.NewString(),
			TenantID:   input.TenantID,
			TicketID:   ticket.ID,
			SenderType: domain.SenderTypeUser,
			Content:    message,
		}); err != nil {
			return err
		}
		if err := appendOutbox(ctx, r, ticket, events.TypeTicketCreated, events.TicketCreatedPayload{
			TicketID:      ticket.ID,
			TenantID:      input.TenantID,
			CorrelationID: correlationID,
			Title:         title,
			Description:   description,
			Message:       message,
			Priority:      priority,
			Status:        string(domain.TicketStatusNew),
		}); err != nil {
			return err
		}
		return appendAudit(ctx, r, input.TenantID, ticket.ID, SystemActorID, "ticket.created", map[string]any{
			"status": map[string]any{"from": nil, "to": domain.TicketStatusNew},
		})
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Assign is the manual vendor-assignment path. It shares the assignment
// routine with proposal approval, so the two stay behaviorally identical.
func (s *TicketService) Assign(ctx context.Context, ticketID string, input VendorAssignInput) (*AssignResult, error) {
	if strings.TrimSpace(input.VendorName) == "" {
		return nil, apperrors.NewValidationError("vendorName required", nil)
	}
	assignerID := input.AssignerID
	if assignerID == "" {
		assignerID = DefaultAssignerID
	}
	description := "Manually assigned vendor task"
	if input.Notes != nil && strings.TrimSpace(*input.Notes) != "" {
		description = *input.Notes
	}

	var result AssignResult
	err := s.store.InTenantTx(ctx, input.TenantID, func(r repository.Repositories) error {
		ticket, err := r.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		previousStatus := ticket.Status

		task, err := assignVendor(ctx, r, ticket, vendorAssignment{
			VendorName:  input.VendorName,
			Description: description,
			ActorID:     assignerID,
			Notes:       input.Notes,
		})
		if err != nil {
			return err
		}

		if err := appendAudit(ctx, r, input.TenantID, ticketID, assignerID, "ticket.assigned", map[string]any{
			"previousStatus": previousStatus,
			"newStatus":      domain.TicketStatusAssigned,
			"vendorName":     input.VendorName,
			"vendorTaskId":   task.ID,
		}); err != nil {
			return err
		}

		result = AssignResult{
			TicketID:     ticketID,
			Status:       domain.TicketStatusAssigned,
			VendorTaskID: task.ID,
			VendorName:   input.VendorName,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// List returns a tenant's most recent tickets.
func (s *TicketService) List(ctx context.Context, tenantID string, limit int) ([]domain.Ticket, error) {
	return s.store.Tenant(tenantID).Tickets().ListRecent(ctx, limit)
}

// Get fetches a ticket with its message thread.
func (s *TicketService) Get(ctx context.Context, tenantID, ticketID string) (*domain.Ticket, []domain.Message, error) {
	r := s.store.Tenant(tenantID)
	ticket, err := r.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, err
	}
	msgs, err := r.Messages().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}

// Proposals returns all proposals filed against a ticket.
func (s *TicketService) Proposals(ctx context.Context, tenantID, ticketID string) ([]domain.Proposal, error) {
	r := s.store.Tenant(tenantID)
	if _, err := r.Tickets().GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return r.Proposals().ListByTicket(ctx, ticketID)
}
