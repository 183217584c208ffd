package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nick102030/Jolvre-BE/internal/common"
)

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

func dataResponse(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// serviceError maps a service error onto an HTTP status and envelope. Internal
// details are logged, not leaked: only sentinel-classified messages go out.
func (s *Server) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return errorResponse(c, fiber.StatusUnauthorized, "invalid token")
	case errors.Is(err, common.ErrorForbidden):
		return errorResponse(c, fiber.StatusForbidden, "operation not allowed")
	case errors.Is(err, common.ErrorNotFound):
		return errorResponse(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorConflict), errors.Is(err, common.ErrVersionConflict):
		return errorResponse(c, fiber.StatusConflict, "conflicting concurrent change")
	case errors.Is(err, common.ErrorUpload), errors.Is(err, common.ErrorStorage):
		s.logger.Error(c.UserContext(), "object storage failure", "error", err.Error())
		return errorResponse(c, fiber.StatusBadGateway, "object storage unavailable")
	default:
		s.logger.Error(c.UserContext(), "internal error", "error", err.Error())
		return errorResponse(c, fiber.StatusInternalServerError, "internal error")
	}
}
