package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// VendorTasksHandler manages vendor task endpoints.
type VendorTasksHandler struct {
	tasks *service.VendorTaskService
}

// NewVendorTasksHandler constructs handler.
func NewVendorTasksHandler(tasks *service.VendorTaskService) *VendorTasksHandler {
	return &VendorTasksHandler{tasks: tasks}
}

// Complete POST /vendor-tasks/:id/complete.
func (h *VendorTasksHandler) Complete(c *fiber.Ctx) error {
	var req dto.CompleteTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" {
		return apperrors.NewValidationError("tenantId required", nil)
	}
	result, err := h.tasks.Complete(c.UserContext(), c.Params("id"), req.TenantID, req.ResolutionNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":           result.TaskID,
		"status":       result.Status,
		"ticketId":     result.TicketID,
		"ticketStatus": result.TicketStatus,
		"vendorName":   result.VendorName,
	}})
}
