package api

import (
	"errors"

	"crewdesk/internal/database"
	"crewdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) ListNotifications(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)

	unread, err := h.notifier.Unread(c.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to list notifications", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"notifications": unread})
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)

	notificationID, err := uuid.Parse(c.Params("notificationID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	// Scoping the update to the caller's own notifications makes someone
	// else's notification indistinguishable from a missing one.
	if err := h.notifier.MarkAsRead(c.Context(), notificationID, accountID); err != nil {
		if errors.Is(err, database.ErrNotificationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Notification not found",
			})
		}
		h.logger.Error("Failed to mark notification as read", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
