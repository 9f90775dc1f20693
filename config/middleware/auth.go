package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"hrms-backend/models"
	"hrms-backend/pkg/token"
	"hrms-backend/repository"
)

const userLookupTimeout = 5 * time.Second

// AuthMiddleware validates the bearer JWT, reloads the account it names and stores *models.Claims
// built from the stored user in c.Locals("user"). Deleted accounts get 401 and deactivated ones 403,
// so role changes and revocations apply to tokens that were already issued.
func AuthMiddleware(tokens *token.Manager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authorization header is required"})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authorization header format must be Bearer <token>"})
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
		}

		ctx, cancel := context.WithTimeout(c.Context(), userLookupTimeout)
		defer cancel()

		user, err := users.FindUserByID(ctx, claims.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Account no longer exists"})
		}
		if err != nil {
			return err
		}
		if !user.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Account is deactivated"})
		}

		c.Locals("user", &models.Claims{
			UserID:     user.ID,
			Email:      user.Email,
			Role:       user.Role,
			EmployeeID: user.EmployeeID,
		})
		return c.Next()
	}
}

// RequireRoles rejects authenticated users whose role is not listed. It must run after AuthMiddleware.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*models.Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authenticated"})
		}
		if !claims.HasRole(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Insufficient permissions"})
		}
		return c.Next()
	}
}
