package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// ActionsHandler manages AI action proposal endpoints.
type ActionsHandler struct {
	actions *service.ActionService
}

// NewActionsHandler constructs handler.
func NewActionsHandler(actions *service.ActionService) *ActionsHandler {
	return &ActionsHandler{actions: actions}
}

// Create POST /actions.
func (h *ActionsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProposalsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" || req.TicketID == "" || len(req.Proposals) == 0 {
		return apperrors.NewValidationError("tenantId, ticketId, proposals required", nil)
	}
	inputs := make([]service.ProposalInput, 0, len(req.Proposals))
	for _, p := range req.Proposals {
		inputs = append(inputs, service.ProposalInput{
			ActionType: p.ActionType,
			Confidence: p.Confidence,
			Reasoning:  p.Reasoning,
			Payload:    p.Payload,
		})
	}
	results, err := h.actions.CreateProposals(c.UserContext(), req.TenantID, req.TicketID, inputs)
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(results))
	for _, r := range results {
		items = append(items, fiber.Map{
			"id":           r.ID,
			"status":       r.Status,
			"autoExecuted": r.AutoExecuted,
		})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"proposals": items})
}

// Approve POST /actions/:id/approve.
func (h *ActionsHandler) Approve(c *fiber.Ctx) error {
	var req dto.ApproveActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" || req.DecidedByUserID == "" {
		return apperrors.NewValidationError("tenantId, decidedByUserId required", nil)
	}
	result, err := h.actions.Approve(c.UserContext(), c.Params("id"), req.TenantID, req.DecidedByUserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":           result.ProposalID,
		"status":       result.Status,
		"ticketStatus": result.TicketStatus,
		"vendorTaskId": result.VendorTaskID,
		"executedAt":   result.ExecutedAt,
	}})
}

// Reject POST /actions/:id/reject.
func (h *ActionsHandler) Reject(c *fiber.Ctx) error {
	var req dto.RejectActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" || req.DecidedByUserID == "" {
		return apperrors.NewValidationError("tenantId, decidedByUserId required", nil)
	}
	result, err := h.actions.Reject(c.UserContext(), c.Params("id"), req.TenantID, req.DecidedByUserID, req.RejectionReason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":              result.ProposalID,
		"status":          result.Status,
		"decidedAt":       result.DecidedAt,
		"rejectionReason": result.RejectionReason,
	}})
}
