package middleware

import (
	"log/slog"

	"crewdesk/internal/openfga"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// OrganisationAccess resolves the :organisationID path parameter and runs the
// coarse membership check. The fine-grained slicing of what a member sees
// inside the organisation happens in the managers, not here.
func OrganisationAccess(authz *openfga.AuthorizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		organisationID, err := uuid.Parse(c.Params("organisationID"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid organisation ID",
			})
		}

		accountID, ok := AccountID(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		allowed, err := authz.CanAccessOrganisation(c.Context(), accountID, organisationID)
		if err != nil {
			slog.Error("Failed to check organisation access", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "No access to this organisation",
			})
		}

		c.Locals("organisation_id", organisationID)

		return c.Next()
	}
}

// OrganisationID returns the organisation resolved by OrganisationAccess.
func OrganisationID(c *fiber.Ctx) (uuid.UUID, bool) {
	organisationID, ok := c.Locals("organisation_id").(uuid.UUID)
	return organisationID, ok
}
