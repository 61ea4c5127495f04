package handlers

import (
	"health-service-api/internal/core/services"
	"health-service-api/internal/pkg/pagination"
	"health-service-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PrescriptionHandler handles prescription endpoints
type PrescriptionHandler struct {
	prescriptionService *services.PrescriptionService
}

// NewPrescriptionHandler creates a new prescription handler
func NewPrescriptionHandler(prescriptionService *services.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptionService: prescriptionService}
}

// StatusRequest represents a prescription status change request body
type StatusRequest struct {
	Status string `json:"status"`
}

// Create handles prescription creation
// @Summary Create prescription
// @Tags Prescriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PrescriptionInput true "Prescription data"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /prescriptions [post]
func (h *PrescriptionHandler) Create(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.PrescriptionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	prescription, err := h.prescriptionService.CreatePrescription(c.Context(), userID, &input)
	if err != nil {
		return recordError(c, err, "prescription")
	}

	return response.Created(c, "Prescription created successfully", fiber.Map{
		"prescription": prescription,
	})
}

// Get handles fetching one prescription
// @Summary Get prescription by ID
// @Tags Prescriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Prescription ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions/{id} [get]
func (h *PrescriptionHandler) Get(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid prescription ID")
	}

	prescription, err := h.prescriptionService.GetPrescription(c.Context(), userID, role, id)
	if err != nil {
		return recordError(c, err, "prescription")
	}

	return response.Success(c, "Prescription retrieved successfully", fiber.Map{
		"prescription": prescription,
	})
}

// List handles listing prescriptions visible to the caller
// @Summary List prescriptions
// @Tags Prescriptions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Records per page"
// @Success 200 {object} response.Response
// @Router /prescriptions [get]
func (h *PrescriptionHandler) List(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	prescriptions, meta, err := h.prescriptionService.ListPrescriptions(c.Context(), userID, role, params)
	if err != nil {
		return recordError(c, err, "prescription")
	}

	return response.Success(c, "Prescriptions retrieved successfully", fiber.Map{
		"prescriptions": prescriptions,
		"pagination":    meta,
	})
}

// Update handles prescription content updates
// @Summary Update prescription
// @Tags Prescriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Prescription ID"
// @Param body body services.PrescriptionInput true "Prescription data"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions/{id} [put]
func (h *PrescriptionHandler) Update(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid prescription ID")
	}

	var input services.PrescriptionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	prescription, err := h.prescriptionService.UpdatePrescription(c.Context(), userID, id, &input)
	if err != nil {
		return recordError(c, err, "prescription")
	}

	return response.Success(c, "Prescription updated successfully", fiber.Map{
		"prescription": prescription,
	})
}

// UpdateStatus handles prescription status transitions
// @Summary Update prescription status
// @Tags Prescriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Prescription ID"
// @Param body body StatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions/{id}/status [patch]
func (h *PrescriptionHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid prescription ID")
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	prescription, err := h.prescriptionService.UpdateStatus(c.Context(), userID, role, id, req.Status)
	if err != nil {
		return recordError(c, err, "prescription")
	}

	return response.Success(c, "Prescription status updated", fiber.Map{
		"prescription": prescription,
	})
}

// Delete handles prescription deletion
// @Summary Delete prescription
// @Tags Prescriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Prescription ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions/{id} [delete]
func (h *PrescriptionHandler) Delete(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid prescription ID")
	}

	if err := h.prescriptionService.DeletePrescription(c.Context(), userID, id); err != nil {
		return recordError(c, err, "prescription")
	}

	return response.Success(c, "Prescription deleted successfully", nil)
}
