package repositories

import (
	"context"
	"testing"
	"time"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/pkg/fieldcrypt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testEncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Patient{},
		&models.Prescription{},
		&models.PrescriptionItem{},
		&models.Appointment{},
	))
	return db
}

func newTestCipher(t *testing.T) *fieldcrypt.Cipher {
	t.Helper()
	cipher, err := fieldcrypt.New(testEncryptionKey)
	require.NoError(t, err)
	return cipher
}

// Reading a patient must decrypt the preloaded prescriptions and
// appointments too, not just the patient's own columns.
func TestPatientRepository_GetByID_OpensAssociations(t *testing.T) {
	db := newTestDB(t)
	cipher := newTestCipher(t)
	ctx := context.Background()

	patients := NewPatientRepository(db, cipher)
	prescriptions := NewPrescriptionRepository(db, cipher)
	appointments := NewAppointmentRepository(db, cipher)

	patient := &models.Patient{
		DoctorID:       1,
		FirstName:      "Somchai",
		LastName:       "Jaidee",
		DateOfBirth:    time.Date(1980, 5, 12, 0, 0, 0, 0, time.UTC),
		MedicalHistory: "allergic to penicillin",
	}
	require.NoError(t, patients.Create(ctx, patient))

	prescription := &models.Prescription{
		DoctorID:     1,
		PharmacistID: 2,
		PatientID:    patient.ID,
		Diagnosis:    "hypertension",
		Notes:        "recheck blood pressure in two weeks",
		PharmacyName: "Central Pharmacy",
		Status:       "Pending",
		Items: []models.PrescriptionItem{
			{Name: "Amlodipine", Dosage: "5mg", Frequency: "once daily", Duration: "30 days", Form: "tablet"},
		},
	}
	require.NoError(t, prescriptions.Create(ctx, prescription))

	appointment := &models.Appointment{
		DoctorID:  1,
		PatientID: patient.ID,
		Date:      time.Now().Add(48 * time.Hour),
		Status:    "Scheduled",
		Notes:     "fasting blood test",
	}
	require.NoError(t, appointments.Create(ctx, appointment))

	got, err := patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)

	assert.Equal(t, "Somchai", got.FirstName)
	assert.Equal(t, "allergic to penicillin", got.MedicalHistory)

	require.Len(t, got.Prescriptions, 1)
	assert.Equal(t, "hypertension", got.Prescriptions[0].Diagnosis)
	assert.Equal(t, "recheck blood pressure in two weeks", got.Prescriptions[0].Notes)
	assert.Equal(t, "Central Pharmacy", got.Prescriptions[0].PharmacyName)

	require.Len(t, got.Prescriptions[0].Items, 1)
	assert.Equal(t, "Amlodipine", got.Prescriptions[0].Items[0].Name)
	assert.Equal(t, "5mg", got.Prescriptions[0].Items[0].Dosage)

	require.Len(t, got.Appointments, 1)
	assert.Equal(t, "fasting blood test", got.Appointments[0].Notes)
}

// The columns themselves must hold envelopes, never plaintext.
func TestPatientRepository_EncryptsAtRest(t *testing.T) {
	db := newTestDB(t)
	cipher := newTestCipher(t)
	ctx := context.Background()

	patients := NewPatientRepository(db, cipher)
	prescriptions := NewPrescriptionRepository(db, cipher)

	patient := &models.Patient{
		DoctorID:    1,
		FirstName:   "Somchai",
		LastName:    "Jaidee",
		DateOfBirth: time.Date(1980, 5, 12, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, patients.Create(ctx, patient))
	// Create hands plaintext back to the caller
	assert.Equal(t, "Somchai", patient.FirstName)

	prescription := &models.Prescription{
		DoctorID:     1,
		PharmacistID: 2,
		PatientID:    patient.ID,
		Diagnosis:    "hypertension",
		PharmacyName: "Central Pharmacy",
		Status:       "Pending",
	}
	require.NoError(t, prescriptions.Create(ctx, prescription))

	var storedFirstName, storedDiagnosis string
	require.NoError(t, db.Raw("SELECT first_name FROM patients WHERE id = ?", patient.ID).Scan(&storedFirstName).Error)
	require.NoError(t, db.Raw("SELECT diagnosis FROM prescriptions WHERE id = ?", prescription.ID).Scan(&storedDiagnosis).Error)

	assert.NotEqual(t, "Somchai", storedFirstName)
	assert.Contains(t, storedFirstName, `"encryptData"`)
	assert.NotEqual(t, "hypertension", storedDiagnosis)
	assert.Contains(t, storedDiagnosis, `"encryptData"`)

	assert.Equal(t, "Somchai", cipher.Decrypt(storedFirstName))
	assert.Equal(t, "hypertension", cipher.Decrypt(storedDiagnosis))
}
