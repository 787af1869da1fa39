package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	tasks   *service.VendorTaskService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, tasks *service.VendorTaskService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, tasks: tasks}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.Create(c.UserContext(), service.TicketCreateInput{
		TenantID:      req.TenantID,
		Title:         req.Title,
		Description:   req.Description,
		Message:       req.Message,
		Priority:      req.Priority,
		UnitID:        req.UnitID,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// List GET /tickets?tenantId=.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tenantID := c.Query("tenantId")
	if tenantID == "" {
		return apperrors.NewValidationError("tenantId required", nil)
	}
	tickets, err := h.tickets.List(c.UserContext(), tenantID, c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id?tenantId=.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	tenantID := c.Query("tenantId")
	if tenantID == "" {
		return apperrors.NewValidationError("tenantId required", nil)
	}
	ticket, msgs, err := h.tickets.Get(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return err
	}
	detail := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket),
		Description:   ticket.Description,
		Messages:      make([]dto.MessageResponse, 0, len(msgs)),
	}
	for _, msg := range msgs {
		detail.Messages = append(detail.Messages, dto.MessageResponse{
			ID:         msg.ID,
			SenderType: msg.SenderType,
			Content:    msg.Content,
			CreatedAt:  msg.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": detail})
}

// Actions GET /tickets/:id/actions?tenantId=.
func (h *TicketsHandler) Actions(c *fiber.Ctx) error {
	tenantID := c.Query("tenantId")
	if tenantID == "" {
		return apperrors.NewValidationError("tenantId required", nil)
	}
	proposals, err := h.tickets.Proposals(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		items = append(items, proposalResponse(p))
	}
	return c.JSON(fiber.Map{"ticketId": c.Params("id"), "proposals": items})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" {
		return apperrors.NewValidationError("tenantId required", nil)
	}
	result, err := h.tickets.Assign(c.UserContext(), c.Params("id"), service.VendorAssignInput{
		TenantID:   req.TenantID,
		VendorName: req.VendorName,
		Notes:      req.Notes,
		AssignerID: req.AssignedByUserID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticketId":     result.TicketID,
		"status":       result.Status,
		"vendorTaskId": result.VendorTaskID,
		"vendorName":   result.VendorName,
	}})
}

// VendorTasks GET /tickets/:id/vendor-tasks?tenantId=.
func (h *TicketsHandler) VendorTasks(c *fiber.Ctx) error {
	tenantID := c.Query("tenantId")
	if tenantID == "" {
		return apperrors.NewValidationError("tenantId required", nil)
	}
	tasks, err := h.tasks.ListByTicket(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.VendorTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, dto.VendorTaskResponse{
			ID:          task.ID,
			TicketID:    task.TicketID,
			VendorName:  task.VendorName,
			Status:      task.Status,
			Description: task.Description,
			CreatedAt:   task.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            ticket.ID,
		CorrelationID: ticket.CorrelationID,
		UnitID:        ticket.UnitID,
		Title:         ticket.Title,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

func proposalResponse(p domain.Proposal) dto.ProposalResponse {
	return dto.ProposalResponse{
		ID:              p.ID,
		TicketID:        p.TicketID,
		ActionType:      p.ActionType,
		Confidence:      p.Confidence,
		Reasoning:       p.Reasoning,
		Payload:         p.Payload,
		Status:          p.Status,
		DecidedAt:       p.DecidedAt,
		ExecutedAt:      p.ExecutedAt,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
	}
}
