package handlers

import (
	"errors"
	"strconv"

	"health-service-api/internal/core/domain"
	"health-service-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the admin verification link. The link is opened from
// an email client, so responses are small HTML pages rather than JSON.
type AdminHandler struct {
	authService *services.AuthService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *services.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

const verifySuccessHTML = `<!DOCTYPE html>
<html>
<head><title>Account Verified</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>&#9989; Account Verified</h1>
<p>The user can now log in.</p>
</body>
</html>`

const verifyFailureHTML = `<!DOCTYPE html>
<html>
<head><title>Verification Failed</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>&#10060; Verification Failed</h1>
<p>This verification link is invalid or has expired.</p>
</body>
</html>`

// VerifyUser handles the one-time verification link from the admin email
// @Summary Verify a registered user
// @Description Consume the one-time admin verification token
// @Tags Admin
// @Produce html
// @Param userId path int true "User ID"
// @Param token path string true "Verification token"
// @Success 200 {string} string "HTML page"
// @Failure 400 {string} string "HTML page"
// @Router /admin/verify/{userId}/{token} [get]
func (h *AdminHandler) VerifyUser(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	userID, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(verifyFailureHTML)
	}

	if err := h.authService.AdminVerify(c.Context(), uint(userID), c.Params("token")); err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpiredToken) {
			return c.Status(fiber.StatusBadRequest).SendString(verifyFailureHTML)
		}
		return c.Status(fiber.StatusInternalServerError).SendString(verifyFailureHTML)
	}

	return c.SendString(verifySuccessHTML)
}
