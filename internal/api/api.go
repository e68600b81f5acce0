// Package api exposes the JSON surface. Handlers stay thin: parse, validate,
// call the manager, translate its errors to status codes.
package api

import (
	"log/slog"

	"crewdesk/internal/analytics"
	"crewdesk/internal/calendar"
	"crewdesk/internal/database"
	"crewdesk/internal/middleware"
	"crewdesk/internal/notifications"
	"crewdesk/internal/openfga"
	"crewdesk/internal/organisation"
	"crewdesk/internal/presence"
	"crewdesk/internal/task"
	"crewdesk/internal/team"
	"crewdesk/internal/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

type Handler struct {
	store         *session.Store
	db            *database.Database
	logger        *slog.Logger
	validator     *validator.Validator
	teamManager   *team.Manager
	taskManager   *task.Manager
	calendar      *calendar.Manager
	analytics     *analytics.Manager
	organisations *organisation.Manager
	notifier      *notifications.Manager
	presence      *presence.Tracker
	webhookSecret string
}

type HandlerParams struct {
	Store         *session.Store
	DB            *database.Database
	Logger        *slog.Logger
	Validator     *validator.Validator
	TeamManager   *team.Manager
	TaskManager   *task.Manager
	Calendar      *calendar.Manager
	Analytics     *analytics.Manager
	Organisations *organisation.Manager
	Notifier      *notifications.Manager
	Presence      *presence.Tracker
	WebhookSecret string
}

func NewHandler(params HandlerParams) Handler {
	return Handler{
		store:         params.Store,
		db:            params.DB,
		logger:        params.Logger,
		validator:     params.Validator,
		teamManager:   params.TeamManager,
		taskManager:   params.TaskManager,
		calendar:      params.Calendar,
		analytics:     params.Analytics,
		organisations: params.Organisations,
		notifier:      params.Notifier,
		presence:      params.Presence,
		webhookSecret: params.WebhookSecret,
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App, authz *openfga.AuthorizationService) {
	app.Get("/health", h.Healthy)
	app.Post("/webhooks/stripe", h.StripeWebhook)

	authenticated := app.Group("/api", middleware.AuthenticatedSession(h.store))
	authenticated.Get("/notifications", h.ListNotifications)
	authenticated.Post("/notifications/:notificationID/read", h.MarkNotificationRead)
	authenticated.Post("/presence/heartbeat", h.Heartbeat)

	org := authenticated.Group("/organisations/:organisationID", middleware.OrganisationAccess(authz))
	org.Get("/team", h.ListTeam)
	org.Get("/team/chart", h.OrgChart)
	org.Post("/team/invites", h.InviteMember)
	org.Patch("/team/:memberID", h.UpdateMember)
	org.Delete("/team/:memberID", h.RemoveMember)

	org.Get("/board", h.GetBoard)
	org.Post("/tasks", h.CreateTask)
	org.Patch("/tasks/:taskID", h.UpdateTask)
	org.Post("/tasks/:taskID/move", h.MoveTask)
	org.Post("/tasks/:taskID/assignee", h.ReassignTask)
	org.Delete("/tasks/:taskID", h.DeleteTask)

	org.Get("/calendar", h.ListEvents)
	org.Post("/calendar", h.CreateEvent)
	org.Delete("/calendar/:eventID", h.DeleteEvent)

	org.Get("/analytics/overview", h.AnalyticsOverview)

	org.Post("/billing/checkout", h.CreateCheckoutSession)
	org.Post("/billing/change-plan", h.ChangePlan)
}
