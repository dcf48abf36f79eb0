package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/krishkalaria12/pixelmind/auth"
	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/logging"
	"github.com/krishkalaria12/pixelmind/models"
)

const userKey = "user"

// UserLookup resolves the Clerk user id of a session to the local user.
type UserLookup interface {
	GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error)
}

// AuthMiddleware requires a valid Clerk session, taken from the bearer token
// or the session cookie, and stores the matching user in the context.
func AuthMiddleware(sessions auth.SessionVerifier, users UserLookup, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, err := auth.TokenFromRequest(c.Get(fiber.HeaderAuthorization), c.Cookies(auth.SessionCookie))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "You are not authorized!",
				"data":    nil,
			})
		}

		clerkID, err := sessions.Verify(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid token",
				"data":    nil,
			})
		}

		user, err := users.GetUserByClerkID(c.UserContext(), clerkID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				// the user.created webhook has not been processed yet
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"status":  "error",
					"message": "User not found",
					"data":    nil,
				})
			}
			log.Error(c.UserContext(), "resolve session user", "clerk_id", clerkID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Failed to load user",
				"data":    nil,
			})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userKey).(*models.User)
	if !ok || user == nil {
		return nil, common.ErrUnauthenticated
	}
	return user, nil
}
