package repositories

import (
	"context"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/pkg/fieldcrypt"

	"gorm.io/gorm"
)

// appointmentRepository implements AppointmentRepository. Only the notes
// field is sensitive enough to ride in an envelope.
type appointmentRepository struct {
	db     *gorm.DB
	cipher *fieldcrypt.Cipher
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB, cipher *fieldcrypt.Cipher) AppointmentRepository {
	return &appointmentRepository{db: db, cipher: cipher}
}

// Create creates a new appointment
func (r *appointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	appointment.Notes = r.cipher.Encrypt(appointment.Notes)
	err := r.db.WithContext(ctx).Create(appointment).Error
	appointment.Notes = r.cipher.Decrypt(appointment.Notes)
	return err
}

// GetByID gets an appointment by ID
func (r *appointmentRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error
	if err != nil {
		return nil, err
	}
	appointment.Notes = r.cipher.Decrypt(appointment.Notes)
	return &appointment, nil
}

// Update updates an appointment
func (r *appointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	appointment.Notes = r.cipher.Encrypt(appointment.Notes)
	err := r.db.WithContext(ctx).Save(appointment).Error
	appointment.Notes = r.cipher.Decrypt(appointment.Notes)
	return err
}

// Delete soft deletes an appointment
func (r *appointmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Appointment{}, id).Error
}

// ListByDoctor lists appointments created by a doctor
func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uint, offset, limit int) ([]*models.Appointment, int64, error) {
	var appointments []*models.Appointment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("doctor_id = ?", doctorID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Order("date ASC").Find(&appointments).Error; err != nil {
		return nil, 0, err
	}

	for _, a := range appointments {
		a.Notes = r.cipher.Decrypt(a.Notes)
	}
	return appointments, total, nil
}
