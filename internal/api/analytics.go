package api

import (
	"crewdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) AnalyticsOverview(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	overview, err := h.analytics.Overview(c.Context(), organisationID, accountID)
	if err != nil {
		h.logger.Error("Failed to compute analytics overview", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(overview)
}
