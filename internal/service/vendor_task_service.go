package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// VendorTaskService handles vendor task completion and listing.
type VendorTaskService struct {
	store repository.Store
}

// NewVendorTaskService constructs the service.
func NewVendorTaskService(store repository.Store) *VendorTaskService {
	return &VendorTaskService{store: store}
}

// CompletionResult reports the outcome of a task completion.
type CompletionResult struct {
	TaskID       string
	Status       domain.TaskStatus
	TicketID     string
	TicketStatus domain.TicketStatus
	VendorName   string
}

// Complete marks a vendor task COMPLETED and resolves its ticket.
// Double-completion is rejected, not silently ignored.
func (s *VendorTaskService) Complete(ctx context.Context, taskID, tenantID string, resolutionNotes *string) (*CompletionResult, error) {
	var result CompletionResult
	err := s.store.InTenantTx(ctx, tenantID, func(r repository.Repositories) error {
		task, err := r.VendorTasks().GetByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("vendor task", map[string]any{"task_id": taskID})
			}
			return err
		}
		if task.Status == domain.TaskStatusCompleted {
			return apperrors.NewInvalidState("task already completed", map[string]any{
				"task_id": taskID,
			})
		}
		ticket, err := r.Tickets().GetByID(ctx, task.TicketID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(ticket.Status, domain.TicketStatusResolved) {
			return apperrors.NewInvalidState("ticket cannot be resolved in current status", map[string]any{
				"ticket_id": ticket.ID,
				"status":    ticket.Status,
			})
		}

		now := nowUTC()
		previousStatus := task.Status
		task.Status = domain.TaskStatusCompleted
		if resolutionNotes != nil && *resolutionNotes != "" {
			task.Description = task.Description + "\n\nResolution: " + *resolutionNotes
		}
		if err := r.VendorTasks().Update(ctx, task); err != nil {
			return err
		}

		ticket.Status = domain.TicketStatusResolved
		if err := r.Tickets().Update(ctx, ticket); err != nil {
			return err
		}

		if err := appendOutbox(ctx, r, ticket, events.TypeTicketResolved, events.TicketResolvedPayload{
			TicketID:        ticket.ID,
			TenantID:        tenantID,
			CorrelationID:   ticket.CorrelationID,
			VendorTaskID:    taskID,
			VendorName:      task.VendorName,
			ResolutionNotes: resolutionNotes,
			ResolvedAt:      now,
		}); err != nil {
			return err
		}

		if err := appendAudit(ctx, r, tenantID, ticket.ID, task.VendorName, "task.completed", map[string]any{
			"vendorTaskId":    taskID,
			"previousStatus":  previousStatus,
			"newStatus":       domain.TaskStatusCompleted,
			"ticketStatus":    domain.TicketStatusResolved,
			"resolutionNotes": resolutionNotes,
		}); err != nil {
			return err
		}

		result = CompletionResult{
			TaskID:       taskID,
			Status:       domain.TaskStatusCompleted,
			TicketID:     ticket.ID,
			TicketStatus: domain.TicketStatusResolved,
			VendorName:   task.VendorName,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByTicket returns a ticket's vendor tasks, newest first.
func (s *VendorTaskService) ListByTicket(ctx context.Context, tenantID, ticketID string) ([]domain.VendorTask, error) {
	return s.store.Tenant(tenantID).VendorTasks().ListByTicket(ctx, ticketID)
}
