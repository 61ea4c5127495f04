package repositories

import (
	"context"
	"time"

	"health-service-api/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListLicenseHashes(ctx context.Context) ([]string, error)
	ListByRole(ctx context.Context, role string, offset, limit int) ([]*models.User, int64, error)
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PatientRepository defines patient repository interface.
// Implementations own the field encryption boundary: callers pass and
// receive plaintext, envelopes exist only at rest.
type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id uint) (*models.Patient, error)
	Update(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id uint) error
	ListByDoctor(ctx context.Context, doctorID uint, offset, limit int) ([]*models.Patient, int64, error)
	ListByPharmacist(ctx context.Context, pharmacistID uint, offset, limit int) ([]*models.Patient, int64, error)
}

// PrescriptionRepository defines prescription repository interface
type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *models.Prescription) error
	GetByID(ctx context.Context, id uint) (*models.Prescription, error)
	Update(ctx context.Context, prescription *models.Prescription) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
	ListByDoctor(ctx context.Context, doctorID uint, offset, limit int) ([]*models.Prescription, int64, error)
	ListByPharmacist(ctx context.Context, pharmacistID uint, offset, limit int) ([]*models.Prescription, int64, error)
}

// MedicationRepository defines medication repository interface
type MedicationRepository interface {
	Create(ctx context.Context, medication *models.Medication) error
	GetByID(ctx context.Context, id uint) (*models.Medication, error)
	Update(ctx context.Context, medication *models.Medication) error
	Delete(ctx context.Context, id uint) error
	ListByPharmacist(ctx context.Context, pharmacistID uint, offset, limit int) ([]*models.Medication, int64, error)
}

// AppointmentRepository defines appointment repository interface
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	Update(ctx context.Context, appointment *models.Appointment) error
	Delete(ctx context.Context, id uint) error
	ListByDoctor(ctx context.Context, doctorID uint, offset, limit int) ([]*models.Appointment, int64, error)
}
