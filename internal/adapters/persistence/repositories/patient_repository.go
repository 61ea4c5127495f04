package repositories

import (
	"context"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/pkg/fieldcrypt"

	"gorm.io/gorm"
)

// patientRepository implements PatientRepository. It is the encryption
// boundary for patient data: envelopes exist only between here and the
// database.
type patientRepository struct {
	db     *gorm.DB
	cipher *fieldcrypt.Cipher
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB, cipher *fieldcrypt.Cipher) PatientRepository {
	return &patientRepository{db: db, cipher: cipher}
}

// sealPatient encrypts sensitive fields in place before a write
func (r *patientRepository) sealPatient(p *models.Patient) {
	p.FirstName = r.cipher.Encrypt(p.FirstName)
	p.LastName = r.cipher.Encrypt(p.LastName)
	p.PhoneNumber = r.cipher.Encrypt(p.PhoneNumber)
	p.Email = r.cipher.Encrypt(p.Email)
	p.Address = r.cipher.Encrypt(p.Address)
	p.MedicalHistory = r.cipher.Encrypt(p.MedicalHistory)
	p.EmergencyContact = r.cipher.Encrypt(p.EmergencyContact)
}

// openPatient decrypts sensitive fields in place after a read. A tampered
// or undecryptable envelope resolves to an empty field, never an error.
func (r *patientRepository) openPatient(p *models.Patient) {
	p.FirstName = r.cipher.Decrypt(p.FirstName)
	p.LastName = r.cipher.Decrypt(p.LastName)
	p.PhoneNumber = r.cipher.Decrypt(p.PhoneNumber)
	p.Email = r.cipher.Decrypt(p.Email)
	p.Address = r.cipher.Decrypt(p.Address)
	p.MedicalHistory = r.cipher.Decrypt(p.MedicalHistory)
	p.EmergencyContact = r.cipher.Decrypt(p.EmergencyContact)
}

// Create creates a new patient
func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) error {
	r.sealPatient(patient)
	err := r.db.WithContext(ctx).Create(patient).Error
	// hand plaintext back to the caller either way
	r.openPatient(patient)
	return err
}

// GetByID gets a patient by ID with prescriptions and appointments.
// Preloaded associations cross the encryption boundary too, so their
// fields are opened here alongside the patient's own.
func (r *patientRepository) GetByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Preload("Prescriptions.Items").
		Preload("Appointments").
		Where("id = ?", id).
		First(&patient).Error
	if err != nil {
		return nil, err
	}
	r.openPatient(&patient)
	for i := range patient.Prescriptions {
		openPrescription(r.cipher, &patient.Prescriptions[i])
	}
	for i := range patient.Appointments {
		patient.Appointments[i].Notes = r.cipher.Decrypt(patient.Appointments[i].Notes)
	}
	return &patient, nil
}

// Update updates a patient
func (r *patientRepository) Update(ctx context.Context, patient *models.Patient) error {
	r.sealPatient(patient)
	err := r.db.WithContext(ctx).Save(patient).Error
	r.openPatient(patient)
	return err
}

// Delete soft deletes a patient
func (r *patientRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Patient{}, id).Error
}

// ListByDoctor lists patients created by a doctor
func (r *patientRepository) ListByDoctor(ctx context.Context, doctorID uint, offset, limit int) ([]*models.Patient, int64, error) {
	var patients []*models.Patient
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Patient{}).Where("doctor_id = ?", doctorID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Find(&patients).Error; err != nil {
		return nil, 0, err
	}

	for _, p := range patients {
		r.openPatient(p)
	}
	return patients, total, nil
}

// ListByPharmacist lists patients that have at least one prescription
// assigned to the pharmacist
func (r *patientRepository) ListByPharmacist(ctx context.Context, pharmacistID uint, offset, limit int) ([]*models.Patient, int64, error) {
	var patients []*models.Patient
	var total int64

	sub := r.db.Model(&models.Prescription{}).
		Select("patient_id").
		Where("pharmacist_id = ?", pharmacistID)

	query := r.db.WithContext(ctx).Model(&models.Patient{}).Where("id IN (?)", sub)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Find(&patients).Error; err != nil {
		return nil, 0, err
	}

	for _, p := range patients {
		r.openPatient(p)
	}
	return patients, total, nil
}
