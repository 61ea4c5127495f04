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

// PatientService handles patient record operations. Authorization lives
// here, above the encrypting repository: a doctor sees only patients they
// created, a pharmacist only patients with a prescription assigned to them.
type PatientService struct {
	patientRepo repositories.PatientRepository
}

// NewPatientService creates a new patient service
func NewPatientService(patientRepo repositories.PatientRepository) *PatientService {
	return &PatientService{patientRepo: patientRepo}
}

// PatientInput represents patient create/update input
type PatientInput struct {
	FirstName        string    `json:"first_name" validate:"required"`
	LastName         string    `json:"last_name" validate:"required"`
	DateOfBirth      time.Time `json:"date_of_birth" validate:"required"`
	PhoneNumber      string    `json:"phone_number"`
	Email            string    `json:"email"`
	Address          string    `json:"address"`
	MedicalHistory   string    `json:"medical_history"`
	EmergencyContact string    `json:"emergency_contact"`
}

// CreatePatient creates a patient owned by the calling doctor
func (s *PatientService) CreatePatient(ctx context.Context, doctorID uint, input *PatientInput) (*models.Patient, error) {
	if input.FirstName == "" || input.LastName == "" || input.DateOfBirth.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	patient := &models.Patient{
		DoctorID:         doctorID,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		DateOfBirth:      input.DateOfBirth,
		PhoneNumber:      input.PhoneNumber,
		Email:            input.Email,
		Address:          input.Address,
		MedicalHistory:   input.MedicalHistory,
		EmergencyContact: input.EmergencyContact,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}

	log.Printf("✅ Patient created: ID %d by doctor %d", patient.ID, doctorID)
	return patient, nil
}

// GetPatient returns a patient the caller is allowed to see
func (s *PatientService) GetPatient(ctx context.Context, userID uint, role string, id uint) (*models.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if !s.canAccess(patient, userID, role) {
		return nil, domain.ErrForbidden
	}
	return patient, nil
}

// ListPatients lists patients visible to the caller
func (s *PatientService) ListPatients(ctx context.Context, userID uint, role string, params *pagination.Params) ([]*models.Patient, *pagination.Meta, error) {
	var (
		patients []*models.Patient
		total    int64
		err      error
	)

	switch role {
	case string(domain.RoleDoctor):
		patients, total, err = s.patientRepo.ListByDoctor(ctx, userID, params.Offset, params.Limit)
	case string(domain.RolePharmacist):
		patients, total, err = s.patientRepo.ListByPharmacist(ctx, userID, params.Offset, params.Limit)
	default:
		return nil, nil, domain.ErrForbidden
	}
	if err != nil {
		return nil, nil, err
	}

	return patients, pagination.NewMeta(params, total), nil
}

// UpdatePatient updates a patient owned by the calling doctor
func (s *PatientService) UpdatePatient(ctx context.Context, doctorID, id uint, input *PatientInput) (*models.Patient, error) {
	patient, err := s.getOwned(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}

	patient.FirstName = input.FirstName
	patient.LastName = input.LastName
	patient.DateOfBirth = input.DateOfBirth
	patient.PhoneNumber = input.PhoneNumber
	patient.Email = input.Email
	patient.Address = input.Address
	patient.MedicalHistory = input.MedicalHistory
	patient.EmergencyContact = input.EmergencyContact

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, err
	}

	log.Printf("✅ Patient updated: ID %d", patient.ID)
	return patient, nil
}

// DeletePatient deletes a patient owned by the calling doctor
func (s *PatientService) DeletePatient(ctx context.Context, doctorID, id uint) error {
	if _, err := s.getOwned(ctx, doctorID, id); err != nil {
		return err
	}

	if err := s.patientRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Patient deleted: ID %d", id)
	return nil
}

// getOwned fetches a patient and checks doctor ownership. Missing and
// unowned are reported as distinct errors.
func (s *PatientService) getOwned(ctx context.Context, doctorID, id uint) (*models.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if patient.DoctorID != doctorID {
		return nil, domain.ErrForbidden
	}
	return patient, nil
}

func (s *PatientService) canAccess(patient *models.Patient, userID uint, role string) bool {
	switch role {
	case string(domain.RoleDoctor):
		return patient.DoctorID == userID
	case string(domain.RolePharmacist):
		for _, p := range patient.Prescriptions {
			if p.PharmacistID == userID {
				return true
			}
		}
	}
	return false
}
