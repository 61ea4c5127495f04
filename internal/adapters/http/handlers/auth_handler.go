package handlers

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"health-service-api/internal/config"
	"health-service-api/internal/core/domain"
	"health-service-api/internal/core/services"
	"health-service-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	LicenseNumber string `json:"license_number"`
	Role          string `json:"role"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MFARequest represents the TOTP challenge request body
type MFARequest struct {
	MFAToken string `json:"mfa_token"`
	Code     string `json:"code"`
}

// Register handles user registration
// @Summary Register new user
// @Description Register a doctor or pharmacist, pending admin verification
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.Email == "" {
		return response.UnprocessableEntity(c, "Email is required")
	}
	if req.Password == "" {
		return response.UnprocessableEntity(c, "Password is required")
	}
	if req.LicenseNumber == "" {
		return response.UnprocessableEntity(c, "License number is required")
	}
	if req.Role == "" {
		return response.UnprocessableEntity(c, "Role is required")
	}

	input := &services.RegisterInput{
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Password:      req.Password,
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
		Role:          strings.TrimSpace(req.Role),
	}

	result, err := h.authService.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, domain.ErrDuplicateLicense):
			return response.Conflict(c, "License number already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.UnprocessableEntity(c, "Role must be doctor or pharmacist, license number must be 6 digits, password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to register user")
		}
	}

	return response.Created(c, "Registered, awaiting admin verification", fiber.Map{
		"user":        result.User,
		"otpauth_url": result.OTPAuthURL,
		"qr_code":     base64.StdEncoding.EncodeToString(result.QRCodePNG),
	})
}

// Login handles the password step of the login flow
// @Summary Login (password step)
// @Description Verify credentials and open an MFA challenge
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.UnprocessableEntity(c, "Email and password are required")
	}

	input := &services.LoginInput{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	}

	mfaToken, err := h.authService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, domain.ErrNotVerified):
			return response.Forbidden(c, "Account pending admin verification")
		case errors.Is(err, domain.ErrMfaSetupIncomplete):
			return response.Forbidden(c, "MFA setup incomplete")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	return response.Success(c, "MFA code required", fiber.Map{
		"mfa_token": mfaToken,
	})
}

// LoginMFA handles the TOTP step of the login flow
// @Summary Login (MFA step)
// @Description Verify the TOTP code and issue tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body MFARequest true "MFA challenge"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login/mfa [post]
func (h *AuthHandler) LoginMFA(c *fiber.Ctx) error {
	var req MFARequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MFAToken == "" || req.Code == "" {
		return response.UnprocessableEntity(c, "MFA token and code are required")
	}

	result, err := h.authService.VerifyMFA(c.Context(), req.MFAToken, strings.TrimSpace(req.Code))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidOrExpiredSession):
			return response.Unauthorized(c, "Session invalid or expired, please login again")
		case errors.Is(err, domain.ErrInvalidTOTP):
			return response.Unauthorized(c, "Invalid authentication code")
		default:
			return response.InternalServerError(c, "Failed to verify code")
		}
	}

	h.setRefreshCookie(c, result.RefreshToken)

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Rotate the refresh token and issue a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpiredToken) {
			h.clearRefreshCookie(c)
			return response.Forbidden(c, "Refresh token invalid or expired, please login again")
		}
		return response.InternalServerError(c, "Failed to refresh token")
	}

	h.setRefreshCookie(c, result.RefreshToken)

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the refresh token and clear the cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken != "" {
		_ = h.authService.Logout(c.Context(), refreshToken)
	}

	h.clearRefreshCookie(c)

	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll handles logout from all devices
// @Summary Logout from all devices
// @Description Revoke all refresh tokens for the user
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.LogoutAll(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}

	h.clearRefreshCookie(c)

	return response.Success(c, "Logged out from all devices", nil)
}

// Me returns the current user info
// @Summary Get current user
// @Description Get the currently authenticated user's information
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.GetUserByID(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// MFAQRCode re-renders the authenticator provisioning QR for the current
// user (device change)
// @Summary Get MFA provisioning QR code
// @Description Returns the otpauth QR code as a PNG image
// @Tags Auth
// @Produce png
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 401 {object} response.Response
// @Router /auth/mfa/qr [get]
func (h *AuthHandler) MFAQRCode(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	png, err := h.authService.MFAProvisioning(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to render QR code")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// setRefreshCookie sets the refresh token cookie. The access token travels
// in the response body only, never in a cookie.
func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearRefreshCookie clears the refresh token cookie
func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
