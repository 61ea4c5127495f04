package handlers

import (
	"health-service-api/internal/core/services"
	"health-service-api/internal/pkg/pagination"
	"health-service-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles the pharmacist directory endpoints doctors use when
// assigning prescriptions
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListPharmacists handles listing verified pharmacists
// @Summary List pharmacists
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Records per page"
// @Success 200 {object} response.Response
// @Router /pharmacists [get]
func (h *UserHandler) ListPharmacists(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	pharmacists, meta, err := h.userService.ListPharmacists(c.Context(), params)
	if err != nil {
		return response.InternalServerError(c, "Failed to list pharmacists")
	}

	return response.Success(c, "Pharmacists retrieved successfully", fiber.Map{
		"pharmacists": pharmacists,
		"pagination":  meta,
	})
}

// GetPharmacist handles fetching one pharmacist
// @Summary Get pharmacist by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pharmacist ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pharmacists/{id} [get]
func (h *UserHandler) GetPharmacist(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid pharmacist ID")
	}

	pharmacist, err := h.userService.GetPharmacist(c.Context(), id)
	if err != nil {
		return recordError(c, err, "pharmacist")
	}

	return response.Success(c, "Pharmacist retrieved successfully", fiber.Map{
		"pharmacist": pharmacist,
	})
}
