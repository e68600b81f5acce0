package api

import (
	"encoding/json"

	"crewdesk/internal/middleware"
	"crewdesk/internal/organisation"

	"github.com/gofiber/fiber/v2"
	stripesdk "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

type checkoutRequest struct {
	Plan       string `json:"plan" validate:"required,oneof=free pro"`
	SuccessURL string `json:"success_url" validate:"required,url"`
	CancelURL  string `json:"cancel_url" validate:"required,url"`
}

func (h *Handler) CreateCheckoutSession(c *fiber.Ctx) error {
	organisationID, _ := middleware.OrganisationID(c)

	var req checkoutRequest
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

	plan, err := organisation.ParseSubscriptionPlan(req.Plan)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown plan",
		})
	}

	sessionURL, err := h.organisations.CreateCheckoutSession(c.Context(), organisation.CreateCheckoutSessionParams{
		OrganisationID: organisationID,
		Plan:           plan,
		SuccessURL:     req.SuccessURL,
		CancelURL:      req.CancelURL,
	})
	if err != nil {
		h.logger.Error("Failed to create checkout session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"url": sessionURL})
}

type changePlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=free pro"`
}

func (h *Handler) ChangePlan(c *fiber.Ctx) error {
	organisationID, _ := middleware.OrganisationID(c)

	var req changePlanRequest
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

	plan, err := organisation.ParseSubscriptionPlan(req.Plan)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown plan",
		})
	}

	if err := h.organisations.ChangeSubscription(c.Context(), organisation.ChangeSubscriptionParam{
		OrganisationID: organisationID,
		NewPlan:        plan,
	}); err != nil {
		h.logger.Error("Failed to change subscription plan", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StripeWebhook keeps organisation plans in sync with Stripe. Unhandled event
// types are acknowledged so Stripe stops retrying them.
func (h *Handler) StripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	var event stripesdk.Event
	if h.webhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, c.Get("Stripe-Signature"), h.webhookSecret)
		if err != nil {
			h.logger.Warn("Rejected Stripe webhook with bad signature", "error", err)
			return c.SendStatus(fiber.StatusBadRequest)
		}
		event = verified
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	switch event.Type {
	case "customer.subscription.updated", "customer.subscription.deleted":
		var subscription stripesdk.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			h.logger.Error("Failed to decode Stripe subscription event", "error", err)
			return c.SendStatus(fiber.StatusBadRequest)
		}
		if err := h.organisations.SyncOrganisationSubscription(c.Context(), subscription.ID); err != nil {
			h.logger.Error("Failed to sync organisation subscription", "subscription_id", subscription.ID, "error", err)
			return c.SendStatus(fiber.StatusInternalServerError)
		}
	default:
		h.logger.Info("Ignoring Stripe webhook event", "type", event.Type)
	}

	return c.SendStatus(fiber.StatusOK)
}
