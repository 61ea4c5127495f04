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

// MedicationService handles the pharmacist-owned medication catalog
type MedicationService struct {
	medicationRepo repositories.MedicationRepository
}

// NewMedicationService creates a new medication service
func NewMedicationService(medicationRepo repositories.MedicationRepository) *MedicationService {
	return &MedicationService{medicationRepo: medicationRepo}
}

// MedicationInput represents medication create/update input
type MedicationInput struct {
	Name     string `json:"name" validate:"required"`
	Form     string `json:"form" validate:"required"`
	Strength string `json:"strength"`
}

// CreateMedication creates a medication owned by the calling pharmacist
func (s *MedicationService) CreateMedication(ctx context.Context, pharmacistID uint, input *MedicationInput) (*models.Medication, error) {
	if input.Name == "" || input.Form == "" {
		return nil, domain.ErrInvalidInput
	}

	medication := &models.Medication{
		PharmacistID: pharmacistID,
		Name:         input.Name,
		Form:         input.Form,
		Strength:     input.Strength,
	}

	if err := s.medicationRepo.Create(ctx, medication); err != nil {
		return nil, err
	}

	log.Printf("✅ Medication created: ID %d by pharmacist %d", medication.ID, pharmacistID)
	return medication, nil
}

// GetMedication returns a medication owned by the calling pharmacist
func (s *MedicationService) GetMedication(ctx context.Context, pharmacistID, id uint) (*models.Medication, error) {
	return s.getOwned(ctx, pharmacistID, id)
}

// ListMedications lists the calling pharmacist's medications
func (s *MedicationService) ListMedications(ctx context.Context, pharmacistID uint, params *pagination.Params) ([]*models.Medication, *pagination.Meta, error) {
	medications, total, err := s.medicationRepo.ListByPharmacist(ctx, pharmacistID, params.Offset, params.Limit)
	if err != nil {
		return nil, nil, err
	}
	return medications, pagination.NewMeta(params, total), nil
}

// UpdateMedication updates a medication owned by the calling pharmacist
func (s *MedicationService) UpdateMedication(ctx context.Context, pharmacistID, id uint, input *MedicationInput) (*models.Medication, error) {
	if input.Name == "" || input.Form == "" {
		return nil, domain.ErrInvalidInput
	}

	medication, err := s.getOwned(ctx, pharmacistID, id)
	if err != nil {
		return nil, err
	}

	medication.Name = input.Name
	medication.Form = input.Form
	medication.Strength = input.Strength

	if err := s.medicationRepo.Update(ctx, medication); err != nil {
		return nil, err
	}

	log.Printf("✅ Medication updated: ID %d", medication.ID)
	return medication, nil
}

// DeleteMedication deletes a medication owned by the calling pharmacist
func (s *MedicationService) DeleteMedication(ctx context.Context, pharmacistID, id uint) error {
	if _, err := s.getOwned(ctx, pharmacistID, id); err != nil {
		return err
	}

	if err := s.medicationRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Medication deleted: ID %d", id)
	return nil
}

func (s *MedicationService) getOwned(ctx context.Context, pharmacistID, id uint) (*models.Medication, error) {
	medication, err := s.medicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if medication.PharmacistID != pharmacistID {
		return nil, domain.ErrForbidden
	}
	return medication, nil
}
