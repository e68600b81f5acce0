package api

import (
	"errors"
	"time"

	"crewdesk/internal/database"
	"crewdesk/internal/middleware"
	"crewdesk/internal/task"
	"crewdesk/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type taskResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Column       string     `json:"column"`
	AssigneeID   *uuid.UUID `json:"assignee_account_id,omitempty"`
	AssigneeName string     `json:"assignee_name"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

func toTaskResponse(t task.Task) taskResponse {
	resp := taskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Column:       string(t.Column),
		AssigneeName: t.AssigneeName,
	}
	if t.AssigneeAccountID.IsSet {
		id := t.AssigneeAccountID.Val
		resp.AssigneeID = &id
	}
	if t.DueDate.IsSet {
		due := t.DueDate.Val
		resp.DueDate = &due
	}
	return resp
}

func toTaskResponses(tasks []task.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func (h *Handler) GetBoard(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	board, err := h.taskManager.Board(c.Context(), organisationID, accountID)
	if err != nil {
		h.logger.Error("Failed to load board", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"todo":        toTaskResponses(board.Todo),
		"in_progress": toTaskResponses(board.InProgress),
		"done":        toTaskResponses(board.Done),
	})
}

type createTaskRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	Description      string `json:"description" validate:"max=5000"`
	Column           string `json:"column" validate:"omitempty,board_column"`
	AssigneeMemberID string `json:"assignee_member_id" validate:"omitempty,uuid4"`
	DueDate          string `json:"due_date" validate:"omitempty"`
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	var req createTaskRequest
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

	params := task.CreateTaskParam{
		OrganisationID: organisationID,
		Title:          req.Title,
		Description:    req.Description,
		Column:         database.TaskColumn(req.Column),
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
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid due date, expected RFC3339",
			})
		}
		params.DueDate = util.Some(due)
	}

	created, err := h.taskManager.CreateTask(c.Context(), params)
	if err != nil {
		if errors.Is(err, task.ErrAssigneeNotEligible) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Assignee is not in your team",
			})
		}
		h.logger.Error("Failed to create task", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(created))
}

type updateTaskRequest struct {
	Title       string `json:"title" validate:"omitempty,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	DueDate     string `json:"due_date" validate:"omitempty"`
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	taskID, err := uuid.Parse(c.Params("taskID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task ID",
		})
	}

	var req updateTaskRequest
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

	params := task.UpdateTaskParam{
		OrganisationID: organisationID,
		TaskID:         taskID,
		ActorAccountID: accountID,
	}
	if req.Title != "" {
		params.Title = util.Some(req.Title)
	}
	if req.Description != "" {
		params.Description = util.Some(req.Description)
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid due date, expected RFC3339",
			})
		}
		params.DueDate = util.Some(due)
	}

	if err := h.taskManager.UpdateTask(c.Context(), params); err != nil {
		return h.taskError(c, err, "Failed to update task")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type moveTaskRequest struct {
	Column string `json:"column" validate:"required,board_column"`
}

func (h *Handler) MoveTask(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	taskID, err := uuid.Parse(c.Params("taskID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task ID",
		})
	}

	var req moveTaskRequest
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

	if err := h.taskManager.MoveTask(c.Context(), task.MoveTaskParam{
		OrganisationID: organisationID,
		TaskID:         taskID,
		Column:         database.TaskColumn(req.Column),
		ActorAccountID: accountID,
	}); err != nil {
		return h.taskError(c, err, "Failed to move task")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type reassignTaskRequest struct {
	AssigneeMemberID string `json:"assignee_member_id" validate:"required,uuid4"`
}

func (h *Handler) ReassignTask(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	taskID, err := uuid.Parse(c.Params("taskID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task ID",
		})
	}

	var req reassignTaskRequest
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
	assigneeMemberID, err := uuid.Parse(req.AssigneeMemberID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid assignee member ID",
		})
	}

	if err := h.taskManager.ReassignTask(c.Context(), task.ReassignTaskParam{
		OrganisationID:   organisationID,
		TaskID:           taskID,
		AssigneeMemberID: assigneeMemberID,
		ActorAccountID:   accountID,
	}); err != nil {
		return h.taskError(c, err, "Failed to reassign task")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	taskID, err := uuid.Parse(c.Params("taskID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task ID",
		})
	}

	if err := h.taskManager.DeleteTask(c.Context(), task.DeleteTaskParam{
		OrganisationID: organisationID,
		TaskID:         taskID,
		ActorAccountID: accountID,
	}); err != nil {
		return h.taskError(c, err, "Failed to delete task")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) taskError(c *fiber.Ctx, err error, logMessage string) error {
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
	case errors.Is(err, task.ErrAssigneeNotEligible):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Assignee is not in your team",
		})
	}
	h.logger.Error(logMessage, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
