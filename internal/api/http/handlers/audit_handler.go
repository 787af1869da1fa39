package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// AuditHandler exposes the read-only audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Recent GET /audit?tenantId=&limit=.
func (h *AuditHandler) Recent(c *fiber.Ctx) error {
	tenantID := c.Query("tenantId")
	if tenantID == "" {
		return apperrors.NewValidationError("tenantId required", nil)
	}
	entries, err := h.audit.Recent(c.UserContext(), tenantID, c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:        entry.ID,
			TicketID:  entry.TicketID,
			ActorID:   entry.ActorID,
			Action:    entry.Action,
			Changes:   entry.Changes,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /audit/stats?tenantId=.
func (h *AuditHandler) Stats(c *fiber.Ctx) error {
	tenantID := c.Query("tenantId")
	if tenantID == "" {
		return apperrors.NewValidationError("tenantId required", nil)
	}
	stats, err := h.audit.Stats(c.UserContext(), tenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
