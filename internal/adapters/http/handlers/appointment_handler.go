package handlers

import (
	"time"

	"health-service-api/internal/core/services"
	"health-service-api/internal/pkg/pagination"
	"health-service-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AppointmentHandler handles appointment endpoints
type AppointmentHandler struct {
	appointmentService *services.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointmentService *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// AppointmentRequest represents appointment create/update request body
type AppointmentRequest struct {
	PatientID uint   `json:"patient_id"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

func (r *AppointmentRequest) toInput() (*services.AppointmentInput, error) {
	var date time.Time
	if r.Date != "" {
		var err error
		date, err = time.Parse(time.RFC3339, r.Date)
		if err != nil {
			return nil, err
		}
	}
	return &services.AppointmentInput{
		PatientID: r.PatientID,
		Date:      date,
		Status:    r.Status,
		Notes:     r.Notes,
	}, nil
}

// Create handles appointment creation
// @Summary Create appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AppointmentRequest true "Appointment data"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req AppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return response.UnprocessableEntity(c, "date must be RFC3339")
	}

	appointment, err := h.appointmentService.CreateAppointment(c.Context(), userID, input)
	if err != nil {
		return recordError(c, err, "appointment")
	}

	return response.Created(c, "Appointment created successfully", fiber.Map{
		"appointment": appointment,
	})
}

// Get handles fetching one appointment
// @Summary Get appointment by ID
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid appointment ID")
	}

	appointment, err := h.appointmentService.GetAppointment(c.Context(), userID, id)
	if err != nil {
		return recordError(c, err, "appointment")
	}

	return response.Success(c, "Appointment retrieved successfully", fiber.Map{
		"appointment": appointment,
	})
}

// List handles listing the caller's appointments
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Records per page"
// @Success 200 {object} response.Response
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	appointments, meta, err := h.appointmentService.ListAppointments(c.Context(), userID, params)
	if err != nil {
		return recordError(c, err, "appointment")
	}

	return response.Success(c, "Appointments retrieved successfully", fiber.Map{
		"appointments": appointments,
		"pagination":   meta,
	})
}

// Update handles appointment updates
// @Summary Update appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param body body AppointmentRequest true "Appointment data"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid appointment ID")
	}

	var req AppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return response.UnprocessableEntity(c, "date must be RFC3339")
	}

	appointment, err := h.appointmentService.UpdateAppointment(c.Context(), userID, id, input)
	if err != nil {
		return recordError(c, err, "appointment")
	}

	return response.Success(c, "Appointment updated successfully", fiber.Map{
		"appointment": appointment,
	})
}

// Delete handles appointment deletion
// @Summary Delete appointment
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid appointment ID")
	}

	if err := h.appointmentService.DeleteAppointment(c.Context(), userID, id); err != nil {
		return recordError(c, err, "appointment")
	}

	return response.Success(c, "Appointment deleted successfully", nil)
}
