package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// AIWorkerActorID tags mutations performed by the AI worker.
const AIWorkerActorID = "ai-worker"

// ActionService handles AI action proposals: creation with the
// auto-execution policy, and manager approval or rejection.
type ActionService struct {
	store repository.Store
}

// NewActionService constructs the service.
func NewActionService(store repository.Store) *ActionService {
	return &ActionService{store: store}
}

// ProposalInput describes one proposal submitted by the AI worker.
type ProposalInput struct {
	ActionType domain.ActionType
	Confidence float64
	Reasoning  string
	Payload    json.RawMessage
}

// ProposalResult reports one created proposal.
type ProposalResult struct {
	ID           string
	Status       domain.ProposalStatus
	AutoExecuted bool
}

// ApprovalResult reports the outcome of a proposal approval.
type ApprovalResult struct {
	ProposalID   string
	Status       domain.ProposalStatus
	TicketStatus domain.TicketStatus
	VendorTaskID *string
	ExecutedAt   time.Time
}

// RejectionResult reports the outcome of a proposal rejection.
type RejectionResult struct {
	ProposalID      string
	Status          domain.ProposalStatus
	DecidedAt       time.Time
	RejectionReason *string
}

// CreateProposals files AI proposals against a ticket. A triage proposal
// with confidence at or above the threshold is executed in the same
// transaction that creates it, skipping the PROPOSED waiting state.
func (s *ActionService) CreateProposals(ctx context.Context, tenantID, ticketID string, inputs []ProposalInput) ([]ProposalResult, error) {
	results := make([]ProposalResult, 0, len(inputs))
	for _, input := range inputs {
		if input.Confidence < 0 || input.Confidence > 1 {
			return nil, apperrors.NewValidationError("confidence out of range", map[string]any{
				"confidence": input.Confidence,
			})
		}
		payload, err := domain.DecodeProposalPayload(input.ActionType, input.Payload)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		if len(input.Payload) == 0 {
			// The payload column is NOT NULL; an omitted payload is stored
			// as the empty object it decodes to.
			input.Payload = json.RawMessage(`{}`)
		}
		autoExecute := domain.ShouldAutoExecute(input.ActionType, input.Confidence)

		proposal := &domain.Proposal{
			ID:         uuid.NewString(),
			TenantID:   tenantID,
			TicketID:   ticketID,
			ActionType: input.ActionType,
			Confidence: input.Confidence,
			Reasoning:  input.Reasoning,
			Payload:    input.Payload,
			Status:     domain.ProposalStatusProposed,
		}

		err = s.store.InTenantTx(ctx, tenantID, func(r repository.Repositories) error {
			ticket, err := r.Tickets().GetByID(ctx, ticketID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
				}
				return err
			}

			if autoExecute {
				now := nowUTC()
				proposal.Status = domain.ProposalStatusExecuted
				proposal.DecidedAt = &now
				proposal.ExecutedAt = &now
			}
			if err := r.Proposals().Create(ctx, proposal); err != nil {
				return err
			}
			if !autoExecute {
				return nil
			}

			if err := applyTriage(ctx, r, ticket, proposal, payload.Triage, triageDecision{
				ActorID:      AIWorkerActorID,
				AutoExecuted: true,
			}); err != nil {
				return err
			}
			return appendAudit(ctx, r, tenantID, ticketID, AIWorkerActorID, "ticket.triaged", map[string]any{
				"status":       map[string]any{"to": domain.TicketStatusTriaged},
				"priority":     map[string]any{"to": payload.Triage.Priority},
				"proposalId":   proposal.ID,
				"autoExecuted": true,
			})
		})
		if err != nil {
			return nil, err
		}

		results = append(results, ProposalResult{
			ID:           proposal.ID,
			Status:       proposal.Status,
			AutoExecuted: autoExecute,
		})
	}
	return results, nil
}

// Approve executes a PROPOSED proposal on behalf of a manager. The
// proposal update, ticket transition, task creation, outbox event, and
// audit row commit as one unit.
func (s *ActionService) Approve(ctx context.Context, proposalID, tenantID, deciderID string) (*ApprovalResult, error) {
	var result ApprovalResult
	err := s.store.InTenantTx(ctx, tenantID, func(r repository.Repositories) error {
		proposal, err := r.Proposals().GetByID(ctx, proposalID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("proposal", map[string]any{"proposal_id": proposalID})
			}
			return err
		}
		if proposal.Status != domain.ProposalStatusProposed {
			return apperrors.NewInvalidState("proposal already decided", map[string]any{
				"proposal_id": proposalID,
				"status":      proposal.Status,
			})
		}
		payload, err := domain.DecodeProposalPayload(proposal.ActionType, proposal.Payload)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		ticket, err := r.Tickets().GetByID(ctx, proposal.TicketID)
		if err != nil {
			return err
		}

		now := nowUTC()
		previousStatus := proposal.Status
		proposal.Status = domain.ProposalStatusExecuted
		proposal.DecidedAt = &now
		proposal.ExecutedAt = &now
		if err := r.Proposals().Update(ctx, proposal); err != nil {
			return err
		}

		var vendorTaskID *string
		switch proposal.ActionType {
		case domain.ActionApplyTriage:
			if err := applyTriage(ctx, r, ticket, proposal, payload.Triage, triageDecision{
				ActorID: deciderID,
			}); err != nil {
				return err
			}
		case domain.ActionAssignVendorTask:
			vendorName := payload.VendorAssignment.VendorName
			if vendorName == "" {
				vendorName = "Unassigned"
			}
			description := "Vendor task created from proposal"
			var notes *string
			if payload.VendorAssignment.Notes != "" {
				description = payload.VendorAssignment.Notes
				notes = &payload.VendorAssignment.Notes
			}
			task, err := assignVendor(ctx, r, ticket, vendorAssignment{
				VendorName:  vendorName,
				Description: description,
				ActorID:     deciderID,
				Notes:       notes,
				ProposalID:  &proposal.ID,
			})
			if err != nil {
				return err
			}
			vendorTaskID = &task.ID
		}

		if err := appendAudit(ctx, r, tenantID, proposal.TicketID, deciderID, "proposal.approved", map[string]any{
			"proposalId":     proposalID,
			"actionType":     proposal.ActionType,
			"previousStatus": previousStatus,
			"newStatus":      domain.ProposalStatusExecuted,
			"ticketStatus":   ticket.Status,
			"vendorTaskId":   vendorTaskID,
		}); err != nil {
			return err
		}

		result = ApprovalResult{
			ProposalID:   proposalID,
			Status:       domain.ProposalStatusExecuted,
			TicketStatus: ticket.Status,
			VendorTaskID: vendorTaskID,
			ExecutedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Reject declines a PROPOSED proposal. Rejection writes an audit row but
// no outbox event: it is not a domain event observed downstream.
func (s *ActionService) Reject(ctx context.Context, proposalID, tenantID, deciderID string, reason *string) (*RejectionResult, error) {
	var result RejectionResult
	err := s.store.InTenantTx(ctx, tenantID, func(r repository.Repositories) error {
		proposal, err := r.Proposals().GetByID(ctx, proposalID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("proposal", map[string]any{"proposal_id": proposalID})
			}
			return err
		}
		if proposal.Status != domain.ProposalStatusProposed {
			return apperrors.NewInvalidState("proposal already decided", map[string]any{
				"proposal_id": proposalID,
				"status":      proposal.Status,
			})
		}

		now := nowUTC()
		previousStatus := proposal.Status
		proposal.Status = domain.ProposalStatusRejected
		proposal.DecidedAt = &now
		proposal.RejectionReason = reason
		if err := r.Proposals().Update(ctx, proposal); err != nil {
			return err
		}

		if err := appendAudit(ctx, r, tenantID, proposal.TicketID, deciderID, "proposal.rejected", map[string]any{
			"proposalId":      proposalID,
			"actionType":      proposal.ActionType,
			"previousStatus":  previousStatus,
			"newStatus":       domain.ProposalStatusRejected,
			"rejectionReason": reason,
		}); err != nil {
			return err
		}

		result = RejectionResult{
			ProposalID:      proposalID,
			Status:          domain.ProposalStatusRejected,
			DecidedAt:       now,
			RejectionReason: reason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
