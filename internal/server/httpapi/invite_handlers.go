package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nick102030/Jolvre-BE/internal/server/models"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

func (s *Server) createGroup(c *fiber.Ctx) error {
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	id, err := s.invites.CreateGroup(c.UserContext(), currentUserID(c), req.Name)
	if err != nil {
		return s.serviceError(c, err)
	}

	return dataResponse(c, fiber.StatusCreated, fiber.Map{"group_id": id})
}

type createInviteRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) createInvite(c *fiber.Ctx) error {
	var req createInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	id, err := s.invites.Invite(c.UserContext(), currentUserID(c), req.UserID, c.Params("groupId"))
	if err != nil {
		return s.serviceError(c, err)
	}

	return dataResponse(c, fiber.StatusCreated, fiber.Map{"invite_id": id})
}

type respondInviteRequest struct {
	Decision string `json:"decision"`
}

func (s *Server) respondInvite(c *fiber.Ctx) error {
	var req respondInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	var state string
	switch req.Decision {
	case "accept":
		state = models.InviteStateAccepted
	case "decline":
		state = models.InviteStateDeclined
	default:
		return errorResponse(c, fiber.StatusBadRequest, "decision must be accept or decline")
	}

	if err := s.invites.Respond(c.UserContext(), currentUserID(c), c.Params("inviteId"), state); err != nil {
		return s.serviceError(c, err)
	}

	return dataResponse(c, fiber.StatusOK, fiber.Map{"invite_id": c.Params("inviteId"), "state": state})
}

func (s *Server) listInvites(c *fiber.Ctx) error {
	list, err := s.invites.ListInvites(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.serviceError(c, err)
	}
	return dataResponse(c, fiber.StatusOK, list)
}

func (s *Server) listMembers(c *fiber.Ctx) error {
	members, err := s.invites.Members(c.UserContext(), c.Params("groupId"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return dataResponse(c, fiber.StatusOK, fiber.Map{"members": members})
}
