package services

import (
	"context"
	"errors"
	"log"
	"time"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/adapters/persistence/repositories"
	"health-service-api/internal/core/domain"
	"health-service-api/internal/pkg/pagination"

	"gorm.io/gorm"
)

// AppointmentService handles doctor-owned appointments
type AppointmentService struct {
	appointmentRepo repositories.AppointmentRepository
	patientRepo     repositories.PatientRepository
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	appointmentRepo repositories.AppointmentRepository,
	patientRepo repositories.PatientRepository,
) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
	}
}

// AppointmentInput represents appointment create/update input
type AppointmentInput struct {
	PatientID uint      `json:"patient_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
}

// CreateAppointment schedules an appointment for one of the doctor's own
// patients
func (s *AppointmentService) CreateAppointment(ctx context.Context, doctorID uint, input *AppointmentInput) (*models.Appointment, error) {
	if input.Date.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	patient, err := s.patientRepo.GetByID(ctx, input.PatientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if patient.DoctorID != doctorID {
		return nil, domain.ErrForbidden
	}

	appointment := &models.Appointment{
		DoctorID:  doctorID,
		PatientID: input.PatientID,
		Date:      input.Date,
		Status:    domain.AppointmentScheduled,
		Notes:     input.Notes,
	}

	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	log.Printf("✅ Appointment created: ID %d by doctor %d", appointment.ID, doctorID)
	return appointment, nil
}

// GetAppointment returns an appointment owned by the calling doctor
func (s *AppointmentService) GetAppointment(ctx context.Context, doctorID, id uint) (*models.Appointment, error) {
	return s.getOwned(ctx, doctorID, id)
}

// ListAppointments lists the calling doctor's appointments ordered by date
func (s *AppointmentService) ListAppointments(ctx context.Context, doctorID uint, params *pagination.Params) ([]*models.Appointment, *pagination.Meta, error) {
	appointments, total, err := s.appointmentRepo.ListByDoctor(ctx, doctorID, params.Offset, params.Limit)
	if err != nil {
		return nil, nil, err
	}
	return appointments, pagination.NewMeta(params, total), nil
}

// UpdateAppointment updates an appointment owned by the calling doctor
func (s *AppointmentService) UpdateAppointment(ctx context.Context, doctorID, id uint, input *AppointmentInput) (*models.Appointment, error) {
	appointment, err := s.getOwned(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}

	if !input.Date.IsZero() {
		appointment.Date = input.Date
	}
	if input.Status != "" {
		switch input.Status {
		case domain.AppointmentScheduled, domain.AppointmentCompleted, domain.AppointmentCancelled:
			appointment.Status = input.Status
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	appointment.Notes = input.Notes

	if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, err
	}

	log.Printf("✅ Appointment updated: ID %d", appointment.ID)
	return appointment, nil
}

// DeleteAppointment deletes an appointment owned by the calling doctor
func (s *AppointmentService) DeleteAppointment(ctx context.Context, doctorID, id uint) error {
	if _, err := s.getOwned(ctx, doctorID, id); err != nil {
		return err
	}

	if err := s.appointmentRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Appointment deleted: ID %d", id)
	return nil
}

func (s *AppointmentService) getOwned(ctx context.Context, doctorID, id uint) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if appointment.DoctorID != doctorID {
		return nil, domain.ErrForbidden
	}
	return appointment, nil
}
