package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nick102030/Jolvre-BE/internal/server/auth"
)

const localsUserID = "userID"

// bearerAuth verifies the Authorization bearer token and stores the
// authenticated user id in the request locals.
func (s *Server) bearerAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return errorResponse(c, fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := auth.GetUserIDFromToken(token, s.secretKey)
		if err != nil {
			return errorResponse(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(localsUserID, userID)
		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsUserID).(string)
	return id
}
