package handlers

import (
	"errors"
	"strconv"
	"time"

	"health-service-api/internal/core/domain"
	"health-service-api/internal/core/services"
	"health-service-api/internal/pkg/pagination"
	"health-service-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// dateOnly is the wire format for date_of_birth
const dateOnly = "2006-01-02"

// currentUser pulls the authenticated identity out of the request context
func currentUser(c *fiber.Ctx) (uint, string, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return 0, "", false
	}
	role, ok := c.Locals("userRole").(string)
	if !ok {
		return 0, "", false
	}
	return userID, role, true
}

// parseIDParam parses the :id path parameter
func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// recordError maps service-layer record errors onto HTTP responses
func recordError(c *fiber.Ctx, err error, resource string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, resource+" not found")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You do not have access to this "+resource)
	case errors.Is(err, domain.ErrInvalidInput):
		return response.UnprocessableEntity(c, "Invalid "+resource+" data")
	default:
		return response.InternalServerError(c, "Failed to process "+resource)
	}
}

// PatientHandler handles patient record endpoints
type PatientHandler struct {
	patientService *services.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService *services.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// PatientRequest represents patient create/update request body
type PatientRequest struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	DateOfBirth      string `json:"date_of_birth"`
	PhoneNumber      string `json:"phone_number"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	MedicalHistory   string `json:"medical_history"`
	EmergencyContact string `json:"emergency_contact"`
}

func (r *PatientRequest) toInput() (*services.PatientInput, error) {
	dob, err := time.Parse(dateOnly, r.DateOfBirth)
	if err != nil {
		return nil, err
	}
	return &services.PatientInput{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		DateOfBirth:      dob,
		PhoneNumber:      r.PhoneNumber,
		Email:            r.Email,
		Address:          r.Address,
		MedicalHistory:   r.MedicalHistory,
		EmergencyContact: r.EmergencyContact,
	}, nil
}

// Create handles patient creation
// @Summary Create patient
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PatientRequest true "Patient data"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /patients [post]
func (h *PatientHandler) Create(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req PatientRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return response.UnprocessableEntity(c, "date_of_birth must be YYYY-MM-DD")
	}

	patient, err := h.patientService.CreatePatient(c.Context(), userID, input)
	if err != nil {
		return recordError(c, err, "patient")
	}

	return response.Created(c, "Patient created successfully", fiber.Map{
		"patient": patient,
	})
}

// Get handles fetching one patient
// @Summary Get patient by ID
// @Tags Patients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [get]
func (h *PatientHandler) Get(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid patient ID")
	}

	patient, err := h.patientService.GetPatient(c.Context(), userID, role, id)
	if err != nil {
		return recordError(c, err, "patient")
	}

	return response.Success(c, "Patient retrieved successfully", fiber.Map{
		"patient": patient,
	})
}

// List handles listing patients visible to the caller
// @Summary List patients
// @Tags Patients
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Records per page"
// @Success 200 {object} response.Response
// @Router /patients [get]
func (h *PatientHandler) List(c *fiber.Ctx) error {
	userID, role, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	patients, meta, err := h.patientService.ListPatients(c.Context(), userID, role, params)
	if err != nil {
		return recordError(c, err, "patient")
	}

	return response.Success(c, "Patients retrieved successfully", fiber.Map{
		"patients":   patients,
		"pagination": meta,
	})
}

// Update handles patient updates
// @Summary Update patient
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Param body body PatientRequest true "Patient data"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [put]
func (h *PatientHandler) Update(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid patient ID")
	}

	var req PatientRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return response.UnprocessableEntity(c, "date_of_birth must be YYYY-MM-DD")
	}

	patient, err := h.patientService.UpdatePatient(c.Context(), userID, id, input)
	if err != nil {
		return recordError(c, err, "patient")
	}

	return response.Success(c, "Patient updated successfully", fiber.Map{
		"patient": patient,
	})
}

// Delete handles patient deletion
// @Summary Delete patient
// @Tags Patients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [delete]
func (h *PatientHandler) Delete(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid patient ID")
	}

	if err := h.patientService.DeletePatient(c.Context(), userID, id); err != nil {
		return recordError(c, err, "patient")
	}

	return response.Success(c, "Patient deleted successfully", nil)
}
