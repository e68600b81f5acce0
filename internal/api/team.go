package api

import (
	"errors"

	"crewdesk/internal/database"
	"crewdesk/internal/hierarchy"
	"crewdesk/internal/middleware"
	"crewdesk/internal/team"
	"crewdesk/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type memberResponse struct {
	ID        uuid.UUID  `json:"id"`
	AccountID *uuid.UUID `json:"account_id,omitempty"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	ManagerID *uuid.UUID `json:"manager_id,omitempty"`
}

func toMemberResponse(m hierarchy.Member) memberResponse {
	resp := memberResponse{
		ID:     m.ID,
		Name:   m.Name,
		Role:   m.Role,
		Status: string(m.Status),
	}
	if m.AccountID.IsSet {
		id := m.AccountID.Val
		resp.AccountID = &id
	}
	if managerID, ok := m.Manager.ID(); ok {
		id := managerID
		resp.ManagerID = &id
	}
	return resp
}

func (h *Handler) ListTeam(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	members, err := h.teamManager.VisibleMembers(c.Context(), organisationID, accountID)
	if err != nil {
		h.logger.Error("Failed to list team", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	response := make([]memberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, toMemberResponse(member))
	}
	return c.JSON(fiber.Map{"members": response})
}

type chartNodeResponse struct {
	Member  memberResponse      `json:"member"`
	Reports []chartNodeResponse `json:"reports"`
}

func toChartResponse(nodes []hierarchy.Node) []chartNodeResponse {
	out := make([]chartNodeResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, chartNodeResponse{
			Member:  toMemberResponse(node.Member),
			Reports: toChartResponse(node.Reports),
		})
	}
	return out
}

func (h *Handler) OrgChart(c *fiber.Ctx) error {
	organisationID, _ := middleware.OrganisationID(c)

	chart, err := h.teamManager.OrgChart(c.Context(), organisationID)
	if err != nil {
		h.logger.Error("Failed to build org chart", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"chart": toChartResponse(chart)})
}

type inviteMemberRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"omitempty,role_label,max=60"`
	ManagerID string `json:"manager_id" validate:"omitempty,uuid4"`
}

func (h *Handler) InviteMember(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	var req inviteMemberRequest
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

	managerID := util.None[uuid.UUID]()
	if req.ManagerID != "" {
		id, err := uuid.Parse(req.ManagerID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid manager ID",
			})
		}
		managerID = util.Some(id)
	}

	member, err := h.teamManager.InviteMember(c.Context(), team.InviteMemberParam{
		OrganisationID: organisationID,
		Name:           req.Name,
		Email:          req.Email,
		Role:           req.Role,
		ManagerID:      managerID,
		ActorAccountID: accountID,
	})
	if err != nil {
		switch {
		case errors.Is(err, team.ErrManagerNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Manager is not in this organisation",
			})
		case errors.Is(err, team.ErrRoleReserved):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "That role label is reserved",
			})
		}
		h.logger.Error("Failed to invite member", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"member_id": member.ID})
}

type updateMemberRequest struct {
	Name      string `json:"name" validate:"omitempty,max=120"`
	Role      string `json:"role" validate:"omitempty,role_label,max=60"`
	ManagerID string `json:"manager_id" validate:"omitempty,uuid4"`
}

func (h *Handler) UpdateMember(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	memberID, err := uuid.Parse(c.Params("memberID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid member ID",
		})
	}

	var req updateMemberRequest
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

	params := team.UpdateMemberParam{
		OrganisationID: organisationID,
		MemberID:       memberID,
		ActorAccountID: accountID,
	}
	if req.Name != "" {
		params.Name = util.Some(req.Name)
	}
	if req.Role != "" {
		params.Role = util.Some(req.Role)
	}
	if req.ManagerID != "" {
		id, err := uuid.Parse(req.ManagerID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid manager ID",
			})
		}
		params.ManagerID = util.Some(id)
	}

	if err := h.teamManager.UpdateMember(c.Context(), params); err != nil {
		switch {
		case errors.Is(err, database.ErrMemberNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Member not found",
			})
		case errors.Is(err, team.ErrStructuralConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "That manager change would create a reporting cycle",
			})
		case errors.Is(err, team.ErrManagerNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Manager is not in this organisation",
			})
		case errors.Is(err, team.ErrRootReserved):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "The owner seat cannot be moved",
			})
		case errors.Is(err, team.ErrRoleReserved):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "That role label is reserved",
			})
		}
		h.logger.Error("Failed to update member", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	accountID, _ := middleware.AccountID(c)
	organisationID, _ := middleware.OrganisationID(c)

	memberID, err := uuid.Parse(c.Params("memberID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid member ID",
		})
	}

	if err := h.teamManager.RemoveMember(c.Context(), team.RemoveMemberParam{
		OrganisationID: organisationID,
		MemberID:       memberID,
		ActorAccountID: accountID,
	}); err != nil {
		switch {
		case errors.Is(err, database.ErrMemberNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Member not found",
			})
		case errors.Is(err, team.ErrOwnerHasReports):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "The owner seat cannot be removed while it has reports",
			})
		}
		h.logger.Error("Failed to remove member", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
