package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// triageDecision identifies who applied a triage and whether it bypassed
// manager approval.
type triageDecision struct {
	ActorID      string
	AutoExecuted bool
}

// applyTriage is the single triage-application routine, invoked from both
// the manager-approval and the auto-execution path so the two can never
// diverge. The ticket must still be NEW.
func applyTriage(ctx context.Context, r repository.Repositories, ticket *domain.Ticket, proposal *domain.Proposal, payload *domain.TriagePayload, decision triageDecision) error {
	if !domain.CanTransition(ticket.Status, domain.TicketStatusTriaged) {
		return apperrors.NewInvalidState("cannot apply triage: ticket is not NEW", map[string]any{
			"ticket_id": ticket.ID,
			"status":    ticket.Status,
		})
	}

	ticket.Status = domain.TicketStatusTriaged
	if payload.Priority != nil {
		ticket.Priority = *payload.Priority
	}
	if err := r.Tickets().Update(ctx, ticket); err != nil {
		return err
	}

	return appendOutbox(ctx, r, ticket, events.TypeTicketTriaged, events.TicketTriagedPayload{
		TicketID:      ticket.ID,
		TenantID:      ticket.TenantID,
		CorrelationID: ticket.CorrelationID,
		ProposalID:    proposal.ID,
		Category:      payload.Category,
		Priority:      payload.Priority,
		Confidence:    proposal.Confidence,
		DecidedBy:     decision.ActorID,
		AutoExecuted:  decision.AutoExecuted,
	})
}

// vendorAssignment parameterizes the shared vendor-assignment routine for
// the proposal-driven and manual paths.
type vendorAssignment struct {
	VendorName  string
	Description string
	ActorID     string
	Notes       *string
	ProposalID  *string
}

// assignVendor moves the ticket to ASSIGNED, opens a vendor task, and
// records the ticket.assigned event. Both assignment paths run through
// here, so the transition check cannot be bypassed by either.
func assignVendor(ctx context.Context, r repository.Repositories, ticket *domain.Ticket, assignment vendorAssignment) (*domain.VendorTask, error) {
	if !domain.CanTransition(ticket.Status, domain.TicketStatusAssigned) {
		return nil, apperrors.NewInvalidState("ticket cannot be assigned in current status", map[string]any{
			"ticket_id": ticket.ID,
			"status":    ticket.Status,
		})
	}
	ticket.Status = domain.TicketStatusAssigned
	if err := r.Tickets().Update(ctx, ticket); err != nil {
		return nil, err
	}

	task := &domain.VendorTask{
		ID:          uuid.NewString(),
		TenantID:    ticket.TenantID,
		TicketID:    ticket.ID,
		VendorName:  assignment.VendorName,
		Status:      domain.TaskStatusOpen,
		Description: assignment.Description,
	}
	if err := r.VendorTasks().Create(ctx, task); err != nil {
		return nil, err
	}

	if err := appendOutbox(ctx, r, ticket, events.TypeTicketAssigned, events.TicketAssignedPayload{
		TicketID:      ticket.ID,
		TenantID:      ticket.TenantID,
		CorrelationID: ticket.CorrelationID,
		ProposalID:    assignment.ProposalID,
		VendorName:    assignment.VendorName,
		VendorTaskID:  task.ID,
		AssignedBy:    assignment.ActorID,
		Notes:         assignment.Notes,
	}); err != nil {
		return nil, err
	}
	return task, nil
}

// appendOutbox records an event in the transaction of the state change it
// describes, carrying the ticket's correlation id.
func appendOutbox(ctx context.Context, r repository.Repositories, ticket *domain.Ticket, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Outbox().Append(ctx, &domain.OutboxEvent{
		ID:            uuid.NewString(),
		TenantID:      ticket.TenantID,
		CorrelationID: ticket.CorrelationID,
		EventType:     eventType,
		AggregateID:   ticket.ID,
		Payload:       raw,
	})
}

// appendAudit records the audit row for one domain mutation.
func appendAudit(ctx context.Context, r repository.Repositories, tenantID, ticketID, actorID, action string, changes map[string]any) error {
	return r.Audit().Append(ctx, &domain.AuditLog{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		TicketID: ticketID,
		ActorID:  actorID,
		Action:   action,
		Changes:  changes,
	})
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
