package middleware

import (
	"errors"
	"strings"

	"health-service-api/internal/config"
	"health-service-api/internal/core/domain"
	"health-service-api/internal/pkg/jwt"
	"health-service-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the bearer access token. Access tokens travel
// only in the Authorization header; the cookie carries the refresh token
// and is accepted nowhere else.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Extract bearer token
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c, "Access token required")
		}
		accessToken := strings.TrimPrefix(authHeader, "Bearer ")

		// 2. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 3. Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("userRole", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// DoctorOnly middleware allows only the doctor role
func DoctorOnly() fiber.Handler {
	return RoleMiddleware(string(domain.RoleDoctor))
}

// PharmacistOnly middleware allows only the pharmacist role
func PharmacistOnly() fiber.Handler {
	return RoleMiddleware(string(domain.RolePharmacist))
}
