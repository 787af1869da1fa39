package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// EventsHandler lets bus consumers claim events through the idempotency
// ledger before acting on a delivery.
type EventsHandler struct {
	claims repository.ClaimLedger
}

// NewEventsHandler constructs handler.
func NewEventsHandler(claims repository.ClaimLedger) *EventsHandler {
	return &EventsHandler{claims: claims}
}

// Claim POST /events/claim. A duplicate claim returns claimed=false with
// a 200; it is the expected outcome for a redelivery, not an error.
func (h *EventsHandler) Claim(c *fiber.Ctx) error {
	var req dto.ClaimEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" || req.EventID == "" || req.ConsumerName == "" {
		return apperrors.NewValidationError("tenantId, eventId, consumerName required", nil)
	}
	claimed, err := h.claims.Claim(c.UserContext(), req.TenantID, req.EventID, req.ConsumerName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"claimed": claimed})
}
