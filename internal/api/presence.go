package api

import (
	"crewdesk/internal/hierarchy"
	"crewdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type heartbeatRequest struct {
	Status string `json:"status" validate:"omitempty,presence_status"`
}

// Heartbeat refreshes the caller's presence. Missing status means online; the
// key expiring in Redis is what makes someone offline.
func (h *Handler) Heartbeat(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)

	var req heartbeatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	status := hierarchy.Status(req.Status)
	if status == "" {
		status = hierarchy.StatusOnline
	}

	if err := h.presence.Heartbeat(c.Context(), accountID, status); err != nil {
		h.logger.Error("Failed to record heartbeat", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
