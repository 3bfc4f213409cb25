package middleware

import (
	"fmt"

	"github.com/authorizerdev/authorizer-go"
	"github.com/gofiber/fiber/v2"
	"github.com/caseworks/licensure-materials/internal/services"
	"github.com/caseworks/licensure-materials/internal/utils"
)

// AuthApplicant validates that the request carries a valid applicant session
func AuthApplicant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, []string{"user"}, "materials.authorization.applicant")
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, roles []string, errorType string) error {
	// Get session cookie
	session := c.Cookies("cookie_session")
	if session == "" {
		return utils.ErrorResponse(c, "Authorizer cookie \"cookie_session\" not found",
			fiber.StatusForbidden, errorType)
	}

	// Validate session
	data, err := services.ValidateSession(session, roles)
	if err != nil {
		return utils.ErrorResponse(c, fmt.Sprintf("Invalid session: %v", err),
			fiber.StatusForbidden, errorType)
	}

	// Set user data in context
	if user, ok := data["user"]; ok {
		c.Locals("user", user)
		if u, ok := user.(*authorizer.User); ok && u != nil {
			c.Locals("userID", u.ID)
		}
	}
	if c.Locals("userID") == nil {
		return utils.ErrorResponse(c, "Session has no user identity",
			fiber.StatusForbidden, errorType)
	}

	return c.Next()
}
