package handlers

import (
	"health-service-api/internal/core/services"
	"health-service-api/internal/pkg/pagination"
	"health-service-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MedicationHandler handles the pharmacist medication catalog endpoints
type MedicationHandler struct {
	medicationService *services.MedicationService
}

// NewMedicationHandler creates a new medication handler
func NewMedicationHandler(medicationService *services.MedicationService) *MedicationHandler {
	return &MedicationHandler{medicationService: medicationService}
}

// Create handles medication creation
// @Summary Create medication
// @Tags Medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.MedicationInput true "Medication data"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /medications [post]
func (h *MedicationHandler) Create(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.MedicationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	medication, err := h.medicationService.CreateMedication(c.Context(), userID, &input)
	if err != nil {
		return recordError(c, err, "medication")
	}

	return response.Created(c, "Medication created successfully", fiber.Map{
		"medication": medication,
	})
}

// Get handles fetching one medication
// @Summary Get medication by ID
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Medication ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /medications/{id} [get]
func (h *MedicationHandler) Get(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid medication ID")
	}

	medication, err := h.medicationService.GetMedication(c.Context(), userID, id)
	if err != nil {
		return recordError(c, err, "medication")
	}

	return response.Success(c, "Medication retrieved successfully", fiber.Map{
		"medication": medication,
	})
}

// List handles listing the caller's medications
// @Summary List medications
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Records per page"
// @Success 200 {object} response.Response
// @Router /medications [get]
func (h *MedicationHandler) List(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	medications, meta, err := h.medicationService.ListMedications(c.Context(), userID, params)
	if err != nil {
		return recordError(c, err, "medication")
	}

	return response.Success(c, "Medications retrieved successfully", fiber.Map{
		"medications": medications,
		"pagination":  meta,
	})
}

// Update handles medication updates
// @Summary Update medication
// @Tags Medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Medication ID"
// @Param body body services.MedicationInput true "Medication data"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /medications/{id} [put]
func (h *MedicationHandler) Update(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid medication ID")
	}

	var input services.MedicationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	medication, err := h.medicationService.UpdateMedication(c.Context(), userID, id, &input)
	if err != nil {
		return recordError(c, err, "medication")
	}

	return response.Success(c, "Medication updated successfully", fiber.Map{
		"medication": medication,
	})
}

// Delete handles medication deletion
// @Summary Delete medication
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Medication ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /medications/{id} [delete]
func (h *MedicationHandler) Delete(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid medication ID")
	}

	if err := h.medicationService.DeleteMedication(c.Context(), userID, id); err != nil {
		return recordError(c, err, "medication")
	}

	return response.Success(c, "Medication deleted successfully", nil)
}
