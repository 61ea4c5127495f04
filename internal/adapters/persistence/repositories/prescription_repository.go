package repositories

import (
	"context"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/pkg/fieldcrypt"

	"gorm.io/gorm"
)

// prescriptionRepository implements PrescriptionRepository with the field
// encryption boundary for prescriptions and their medication lines
type prescriptionRepository struct {
	db     *gorm.DB
	cipher *fieldcrypt.Cipher
}

// NewPrescriptionRepository creates a new prescription repository
func NewPrescriptionRepository(db *gorm.DB, cipher *fieldcrypt.Cipher) PrescriptionRepository {
	return &prescriptionRepository{db: db, cipher: cipher}
}

// sealPrescription and openPrescription are package level so the patient
// repository can open prescriptions it preloads as associations.
func sealPrescription(cipher *fieldcrypt.Cipher, p *models.Prescription) {
	p.Diagnosis = cipher.Encrypt(p.Diagnosis)
	p.Notes = cipher.Encrypt(p.Notes)
	p.PharmacyName = cipher.Encrypt(p.PharmacyName)
	for i := range p.Items {
		item := &p.Items[i]
		item.Name = cipher.Encrypt(item.Name)
		item.Dosage = cipher.Encrypt(item.Dosage)
		item.Frequency = cipher.Encrypt(item.Frequency)
		item.Duration = cipher.Encrypt(item.Duration)
		item.Form = cipher.Encrypt(item.Form)
		item.Notes = cipher.Encrypt(item.Notes)
	}
}

func openPrescription(cipher *fieldcrypt.Cipher, p *models.Prescription) {
	p.Diagnosis = cipher.Decrypt(p.Diagnosis)
	p.Notes = cipher.Decrypt(p.Notes)
	p.PharmacyName = cipher.Decrypt(p.PharmacyName)
	for i := range p.Items {
		item := &p.Items[i]
		item.Name = cipher.Decrypt(item.Name)
		item.Dosage = cipher.Decrypt(item.Dosage)
		item.Frequency = cipher.Decrypt(item.Frequency)
		item.Duration = cipher.Decrypt(item.Duration)
		item.Form = cipher.Decrypt(item.Form)
		item.Notes = cipher.Decrypt(item.Notes)
	}
}

// Create creates a new prescription with its medication lines
func (r *prescriptionRepository) Create(ctx context.Context, prescription *models.Prescription) error {
	sealPrescription(r.cipher, prescription)
	err := r.db.WithContext(ctx).Create(prescription).Error
	openPrescription(r.cipher, prescription)
	return err
}

// GetByID gets a prescription by ID with its medication lines
func (r *prescriptionRepository) GetByID(ctx context.Context, id uint) (*models.Prescription, error) {
	var prescription models.Prescription
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&prescription).Error
	if err != nil {
		return nil, err
	}
	openPrescription(r.cipher, &prescription)
	return &prescription, nil
}

// Update updates a prescription, replacing its medication lines
func (r *prescriptionRepository) Update(ctx context.Context, prescription *models.Prescription) error {
	sealPrescription(r.cipher, prescription)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prescription_id = ?", prescription.ID).Delete(&models.PrescriptionItem{}).Error; err != nil {
			return err
		}
		for i := range prescription.Items {
			prescription.Items[i].ID = 0
			prescription.Items[i].PrescriptionID = prescription.ID
		}
		return tx.Save(prescription).Error
	})
	openPrescription(r.cipher, prescription)
	return err
}

// UpdateStatus updates only the status column
func (r *prescriptionRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Prescription{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete soft deletes a prescription
func (r *prescriptionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Prescription{}, id).Error
}

// ListByDoctor lists prescriptions written by a doctor
func (r *prescriptionRepository) ListByDoctor(ctx context.Context, doctorID uint, offset, limit int) ([]*models.Prescription, int64, error) {
	return r.list(ctx, "doctor_id = ?", doctorID, offset, limit)
}

// ListByPharmacist lists prescriptions assigned to a pharmacist
func (r *prescriptionRepository) ListByPharmacist(ctx context.Context, pharmacistID uint, offset, limit int) ([]*models.Prescription, int64, error) {
	return r.list(ctx, "pharmacist_id = ?", pharmacistID, offset, limit)
}

func (r *prescriptionRepository) list(ctx context.Context, cond string, ownerID uint, offset, limit int) ([]*models.Prescription, int64, error) {
	var prescriptions []*models.Prescription
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Prescription{}).Where(cond, ownerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Items").Offset(offset).Limit(limit).Find(&prescriptions).Error; err != nil {
		return nil, 0, err
	}

	for _, p := range prescriptions {
		openPrescription(r.cipher, p)
	}
	return prescriptions, total, nil
}
