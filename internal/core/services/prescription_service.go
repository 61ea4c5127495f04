package services

import (
	"context"
	"errors"
	"log"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/adapters/persistence/repositories"
	"health-service-api/internal/core/domain"
	"health-service-api/internal/pkg/pagination"

	"gorm.io/gorm"
)

// PrescriptionService handles prescription operations. Doctors write
// prescriptions for their own patients and assign a pharmacist; the
// assigned pharmacist reads them and moves the status forward.
type PrescriptionService struct {
	prescriptionRepo repositories.PrescriptionRepository
	patientRepo      repositories.PatientRepository
	userRepo         repositories.UserRepository
}

// NewPrescriptionService creates a new prescription service
func NewPrescriptionService(
	prescriptionRepo repositories.PrescriptionRepository,
	patientRepo repositories.PatientRepository,
	userRepo repositories.UserRepository,
) *PrescriptionService {
	return &PrescriptionService{
		prescriptionRepo: prescriptionRepo,
		patientRepo:      patientRepo,
		userRepo:         userRepo,
	}
}

// PrescriptionItemInput represents one medication line
type PrescriptionItemInput struct {
	Name      string `json:"name" validate:"required"`
	Dosage    string `json:"dosage" validate:"required"`
	Frequency string `json:"frequency" validate:"required"`
	Duration  string `json:"duration" validate:"required"`
	Form      string `json:"form" validate:"required"`
	Notes     string `json:"notes"`
}

// PrescriptionInput represents prescription create/update input
type PrescriptionInput struct {
	PatientID    uint                    `json:"patient_id" validate:"required"`
	PharmacistID uint                    `json:"pharmacist_id" validate:"required"`
	Diagnosis    string                  `json:"diagnosis" validate:"required"`
	Notes        string                  `json:"notes"`
	PharmacyName string                  `json:"pharmacy_name" validate:"required"`
	Medications  []PrescriptionItemInput `json:"medications" validate:"required,min=1"`
}

// CreatePrescription creates a prescription for one of the doctor's own
// patients, assigned to a verified pharmacist
func (s *PrescriptionService) CreatePrescription(ctx context.Context, doctorID uint, input *PrescriptionInput) (*models.Prescription, error) {
	if input.Diagnosis == "" || input.PharmacyName == "" || len(input.Medications) == 0 {
		return nil, domain.ErrInvalidInput
	}

	// 1. The patient must exist and belong to the prescribing doctor
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

	// 2. The assignee must be a pharmacist
	pharmacist, err := s.userRepo.GetByID(ctx, input.PharmacistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidInput
		}
		return nil, err
	}
	if pharmacist.Role != string(domain.RolePharmacist) {
		return nil, domain.ErrInvalidInput
	}

	// 3. Create with items
	prescription := &models.Prescription{
		DoctorID:     doctorID,
		PharmacistID: input.PharmacistID,
		PatientID:    input.PatientID,
		Diagnosis:    input.Diagnosis,
		Notes:        input.Notes,
		PharmacyName: input.PharmacyName,
		Status:       domain.PrescriptionPending,
		Items:        itemsFromInput(input.Medications),
	}

	if err := s.prescriptionRepo.Create(ctx, prescription); err != nil {
		return nil, err
	}

	log.Printf("✅ Prescription created: ID %d by doctor %d", prescription.ID, doctorID)
	return prescription, nil
}

// GetPrescription returns a prescription visible to the caller
func (s *PrescriptionService) GetPrescription(ctx context.Context, userID uint, role string, id uint) (*models.Prescription, error) {
	prescription, err := s.prescriptionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if !canAccessPrescription(prescription, userID, role) {
		return nil, domain.ErrForbidden
	}
	return prescription, nil
}

// ListPrescriptions lists prescriptions visible to the caller
func (s *PrescriptionService) ListPrescriptions(ctx context.Context, userID uint, role string, params *pagination.Params) ([]*models.Prescription, *pagination.Meta, error) {
	var (
		prescriptions []*models.Prescription
		total         int64
		err           error
	)

	switch role {
	case string(domain.RoleDoctor):
		prescriptions, total, err = s.prescriptionRepo.ListByDoctor(ctx, userID, params.Offset, params.Limit)
	case string(domain.RolePharmacist):
		prescriptions, total, err = s.prescriptionRepo.ListByPharmacist(ctx, userID, params.Offset, params.Limit)
	default:
		return nil, nil, domain.ErrForbidden
	}
	if err != nil {
		return nil, nil, err
	}

	return prescriptions, pagination.NewMeta(params, total), nil
}

// UpdatePrescription replaces the content of a pending prescription owned
// by the calling doctor
func (s *PrescriptionService) UpdatePrescription(ctx context.Context, doctorID, id uint, input *PrescriptionInput) (*models.Prescription, error) {
	if input.Diagnosis == "" || input.PharmacyName == "" || len(input.Medications) == 0 {
		return nil, domain.ErrInvalidInput
	}

	prescription, err := s.prescriptionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if prescription.DoctorID != doctorID {
		return nil, domain.ErrForbidden
	}
	// Once the pharmacy has picked it up the content is frozen
	if prescription.Status != domain.PrescriptionPending {
		return nil, domain.ErrInvalidInput
	}

	prescription.Diagnosis = input.Diagnosis
	prescription.Notes = input.Notes
	prescription.PharmacyName = input.PharmacyName
	prescription.Items = itemsFromInput(input.Medications)

	if err := s.prescriptionRepo.Update(ctx, prescription); err != nil {
		return nil, err
	}

	log.Printf("✅ Prescription updated: ID %d", prescription.ID)
	return prescription, nil
}

// UpdateStatus moves the prescription along its lifecycle. The assigned
// pharmacist advances it, the owning doctor may only cancel.
func (s *PrescriptionService) UpdateStatus(ctx context.Context, userID uint, role string, id uint, status string) (*models.Prescription, error) {
	if !domain.ValidPrescriptionStatus(status) {
		return nil, domain.ErrInvalidInput
	}

	prescription, err := s.prescriptionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	switch role {
	case string(domain.RolePharmacist):
		if prescription.PharmacistID != userID {
			return nil, domain.ErrForbidden
		}
	case string(domain.RoleDoctor):
		if prescription.DoctorID != userID {
			return nil, domain.ErrForbidden
		}
		if status != domain.PrescriptionCancelled {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, domain.ErrForbidden
	}

	// Terminal states stay terminal
	if prescription.Status == domain.PrescriptionCompleted || prescription.Status == domain.PrescriptionCancelled {
		return nil, domain.ErrInvalidInput
	}

	if err := s.prescriptionRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	prescription.Status = status

	log.Printf("✅ Prescription %d status changed to %s", id, status)
	return prescription, nil
}

// DeletePrescription deletes a pending prescription owned by the calling
// doctor
func (s *PrescriptionService) DeletePrescription(ctx context.Context, doctorID, id uint) error {
	prescription, err := s.prescriptionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if prescription.DoctorID != doctorID {
		return domain.ErrForbidden
	}

	if err := s.prescriptionRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Prescription deleted: ID %d", id)
	return nil
}

func canAccessPrescription(p *models.Prescription, userID uint, role string) bool {
	switch role {
	case string(domain.RoleDoctor):
		return p.DoctorID == userID
	case string(domain.RolePharmacist):
		return p.PharmacistID == userID
	}
	return false
}

func itemsFromInput(inputs []PrescriptionItemInput) []models.PrescriptionItem {
	items := make([]models.PrescriptionItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.PrescriptionItem{
			Name:      in.Name,
			Dosage:    in.Dosage,
			Frequency: in.Frequency,
			Duration:  in.Duration,
			Form:      in.Form,
			Notes:     in.Notes,
		})
	}
	return items
}
