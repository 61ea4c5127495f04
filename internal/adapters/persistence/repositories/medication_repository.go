package repositories

import (
	"context"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/pkg/fieldcrypt"

	"gorm.io/gorm"
)

// medicationRepository implements MedicationRepository with the field
// encryption boundary for catalog entries
type medicationRepository struct {
	db     *gorm.DB
	cipher *fieldcrypt.Cipher
}

// NewMedicationRepository creates a new medication repository
func NewMedicationRepository(db *gorm.DB, cipher *fieldcrypt.Cipher) MedicationRepository {
	return &medicationRepository{db: db, cipher: cipher}
}

func (r *medicationRepository) sealMedication(m *models.Medication) {
	m.Name = r.cipher.Encrypt(m.Name)
	m.Form = r.cipher.Encrypt(m.Form)
	m.Strength = r.cipher.Encrypt(m.Strength)
}

func (r *medicationRepository) openMedication(m *models.Medication) {
	m.Name = r.cipher.Decrypt(m.Name)
	m.Form = r.cipher.Decrypt(m.Form)
	m.Strength = r.cipher.Decrypt(m.Strength)
}

// Create creates a new medication
func (r *medicationRepository) Create(ctx context.Context, medication *models.Medication) error {
	r.sealMedication(medication)
	err := r.db.WithContext(ctx).Create(medication).Error
	r.openMedication(medication)
	return err
}

// GetByID gets a medication by ID
func (r *medicationRepository) GetByID(ctx context.Context, id uint) (*models.Medication, error) {
	var medication models.Medication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&medication).Error
	if err != nil {
		return nil, err
	}
	r.openMedication(&medication)
	return &medication, nil
}

// Update updates a medication
func (r *medicationRepository) Update(ctx context.Context, medication *models.Medication) error {
	r.sealMedication(medication)
	err := r.db.WithContext(ctx).Save(medication).Error
	r.openMedication(medication)
	return err
}

// Delete soft deletes a medication
func (r *medicationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Medication{}, id).Error
}

// ListByPharmacist lists medications owned by a pharmacist
func (r *medicationRepository) ListByPharmacist(ctx context.Context, pharmacistID uint, offset, limit int) ([]*models.Medication, int64, error) {
	var medications []*models.Medication
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Medication{}).Where("pharmacist_id = ?", pharmacistID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Find(&medications).Error; err != nil {
		return nil, 0, err
	}

	for _, m := range medications {
		r.openMedication(m)
	}
	return medications, total, nil
}
