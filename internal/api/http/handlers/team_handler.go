package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/service"
)

// TeamHandler exposes team management.
type TeamHandler struct {
	team      *service.TeamService
	validator *AppValidator
}

// NewTeamHandler constructs handler.
func NewTeamHandler(team *service.TeamService, v *AppValidator) *TeamHandler {
	return &TeamHandler{team: team, validator: v}
}

// List GET /api/team.
func (h *TeamHandler) List(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	members, err := h.team.ListMembers(c.UserContext(), id.Company())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewTeamMemberResponses(members))
}

// Add POST /api/team.
func (h *TeamHandler) Add(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.AddMemberRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	member, err := h.team.AddMember(c.UserContext(), id, service.AddMemberInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewTeamMemberResponse(member))
}

// ChangeRole PATCH /api/team/:id/role.
func (h *TeamHandler) ChangeRole(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	member, err := h.team.ChangeRole(c.UserContext(), id, resourceID, req.Role)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewTeamMemberResponse(member))
}

// Remove DELETE /api/team/:id.
func (h *TeamHandler) Remove(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.team.RemoveMember(c.UserContext(), id, resourceID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
