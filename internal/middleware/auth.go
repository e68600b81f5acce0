package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

func AuthenticatedSession(sessionStore *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := sessionStore.Get(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Session error")
		}

		rawAccountID, ok := session.Get("account_id").(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}
		accountID, err := uuid.Parse(rawAccountID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		c.Locals("account_id", accountID)

		return c.Next()
	}
}

// AccountID returns the authenticated account set by AuthenticatedSession.
func AccountID(c *fiber.Ctx) (uuid.UUID, bool) {
	accountID, ok := c.Locals("account_id").(uuid.UUID)
	return accountID, ok
}
