package api

import (
	"errors"
	"time"

	"crewdesk/internal/calendar"
	"crewdesk/internal/database"
	"crewdesk/internal/middleware"
	"crewdesk/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type eventResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	AllDay       bool       `json:"all_day"`
	Location     string     `json:"location"`
	Status       string     `json:"status"`
	AssigneeID   *uuid.UUID `json:"assignee_account_id,omitempty"`
	AssigneeName string     `json:"assignee_name"`
}

func toEventResponse(e calendar.Event) eventResponse {
	resp := eventResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		AllDay:       e.AllDay,
		Location:     e.Location,
		Status:       string(e.Status),
		AssigneeName: e.AssigneeName,
	}
	if e.AssigneeAccountID.IsSet {
		id := e.AssigneeAccountID.Val
		resp.AssigneeID = &id
	}
	return resp
}

func (h *Handler) ListEvents(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	params := calendar.ListEventsParam{
		OrganisationID:  organisationID,
		ViewerAccountID: accountID,
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid from timestamp, expected RFC3339",
			})
		}
		params.From = util.Some(t)
	}
	if until := c.Query("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid until timestamp, expected RFC3339",
			})
		}
		params.Until = util.Some(t)
	}

	events, err := h.calendar.Events(c.Context(), params)
	if err != nil {
		h.logger.Error("Failed to list calendar events", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	response := make([]eventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, toEventResponse(event))
	}
	return c.JSON(fiber.Map{"events": response})
}

type createEventRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	Description      string `json:"description" validate:"max=5000"`
	StartTime        string `json:"start_time" validate:"required"`
	EndTime          string `json:"end_time" validate:"required"`
	AllDay           bool   `json:"all_day"`
	Location         string `json:"location" validate:"max=200"`
	AssigneeMemberID string `json:"assignee_member_id" validate:"omitempty,uuid4"`
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	var req createEventRequest
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

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid start time, expected RFC3339",
		})
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid end time, expected RFC3339",
		})
	}
	if !endTime.After(startTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "End time must be after start time",
		})
	}

	params := calendar.CreateEventParam{
		OrganisationID: organisationID,
		Title:          req.Title,
		Description:    req.Description,
		StartTime:      startTime,
		EndTime:        endTime,
		AllDay:         req.AllDay,
		Location:       req.Location,
		ActorAccountID: accountID,
	}
	if req.AssigneeMemberID != "" {
		id, err := uuid.Parse(req.AssigneeMemberID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid assignee member ID",
			})
		}
		params.AssigneeMemberID = util.Some(id)
	}

	event, err := h.calendar.CreateEvent(c.Context(), params)
	if err != nil {
		if errors.Is(err, calendar.ErrAssigneeNotEligible) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Assignee is not in your team",
			})
		}
		h.logger.Error("Failed to create calendar event", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toEventResponse(event))
}

func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	eventID, err := uuid.Parse(c.Params("eventID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	if err := h.calendar.DeleteEvent(c.Context(), calendar.DeleteEventParam{
		OrganisationID: organisationID,
		EventID:        eventID,
		ActorAccountID: accountID,
	}); err != nil {
		if errors.Is(err, database.ErrCalendarEventNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Event not found",
			})
		}
		h.logger.Error("Failed to delete calendar event", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
