package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/retailadmin/internal/utils"
)

const staffContextKey = "currentStaff"

// AuthMiddleware validates staff JWTs and stores the staff identity in context.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		staff, err := utils.ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(staffContextKey, staff)
		return c.Next()
	}
}

// GetCurrentStaff extracts the authenticated staff member from context.
func GetCurrentStaff(c *fiber.Ctx) (utils.Staff, bool) {
	staff, ok := c.Locals(staffContextKey).(utils.Staff)
	return staff, ok
}

// ActorName is the name recorded on ledger entries made by the current staff.
func ActorName(c *fiber.Ctx) string {
	staff, ok := GetCurrentStaff(c)
	if !ok {
		return ""
	}
	if staff.Name != "" {
		return staff.Name
	}
	return staff.ID.String()
}
