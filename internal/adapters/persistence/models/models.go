package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth Tables
// ============================================================

// User represents users table. LicenseNumber is stored bcrypt-hashed, so it
// carries no unique index: uniqueness is enforced by re-hash-and-compare at
// registration time.
type User struct {
	ID                       uint           `gorm:"primaryKey" json:"id"`
	Email                    string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password                 string         `gorm:"size:255;not null" json:"-"`
	LicenseNumber            string         `gorm:"size:255;not null" json:"-"`
	Role                     string         `gorm:"size:20;not null" json:"role"`
	IsVerified               bool           `gorm:"default:false" json:"is_verified"`
	VerificationToken        *string        `gorm:"size:64;index" json:"-"`
	VerificationTokenExpires *time.Time     `json:"-"`
	MFASecret                string         `gorm:"size:128" json:"-"`
	MFAEnabled               bool           `gorm:"default:false" json:"mfa_enabled"`
	CreatedAt                time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt                gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	MFAEnabled bool      `json:"mfa_enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		MFAEnabled: u.MFAEnabled,
		CreatedAt:  u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Record Tables
// ============================================================
//
// Sensitive columns are TEXT and hold the {iv,authTag,encryptData} envelope
// at rest. The repositories encrypt on the way in and decrypt on the way
// out, so everything above the repository boundary sees plaintext.

// Patient represents patients table
type Patient struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	DoctorID         uint           `gorm:"index;not null" json:"doctor_id"`
	FirstName        string         `gorm:"type:text;not null" json:"first_name"`
	LastName         string         `gorm:"type:text;not null" json:"last_name"`
	DateOfBirth      time.Time      `gorm:"type:date;not null" json:"date_of_birth"`
	PhoneNumber      string         `gorm:"type:text" json:"phone_number"`
	Email            string         `gorm:"type:text" json:"email"`
	Address          string         `gorm:"type:text" json:"address"`
	MedicalHistory   string         `gorm:"type:text" json:"medical_history"`
	EmergencyContact string         `gorm:"type:text" json:"emergency_contact"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Doctor        *User          `gorm:"foreignKey:DoctorID" json:"-"`
	Prescriptions []Prescription `gorm:"foreignKey:PatientID" json:"prescriptions,omitempty"`
	Appointments  []Appointment  `gorm:"foreignKey:PatientID" json:"appointments,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// Prescription represents prescriptions table
type Prescription struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	DoctorID     uint           `gorm:"index;not null" json:"doctor_id"`
	PharmacistID uint           `gorm:"index;not null" json:"pharmacist_id"`
	PatientID    uint           `gorm:"index;not null" json:"patient_id"`
	Diagnosis    string         `gorm:"type:text;not null" json:"diagnosis"`
	Notes        string         `gorm:"type:text" json:"notes"`
	PharmacyName string         `gorm:"type:text;not null" json:"pharmacy_name"`
	Status       string         `gorm:"size:20;not null;default:'Pending'" json:"status"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Doctor     *User              `gorm:"foreignKey:DoctorID" json:"-"`
	Pharmacist *User              `gorm:"foreignKey:PharmacistID" json:"-"`
	Patient    *Patient           `gorm:"foreignKey:PatientID" json:"-"`
	Items      []PrescriptionItem `gorm:"foreignKey:PrescriptionID" json:"medications"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

// PrescriptionItem represents a single medication line on a prescription
type PrescriptionItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PrescriptionID uint      `gorm:"index;not null" json:"prescription_id"`
	Name           string    `gorm:"type:text;not null" json:"name"`
	Dosage         string    `gorm:"type:text;not null" json:"dosage"`
	Frequency      string    `gorm:"type:text;not null" json:"frequency"`
	Duration       string    `gorm:"type:text;not null" json:"duration"`
	Form           string    `gorm:"type:text;not null" json:"form"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PrescriptionItem) TableName() string {
	return "prescription_items"
}

// Medication represents medications table (pharmacist-owned catalog)
type Medication struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	PharmacistID uint           `gorm:"index;not null" json:"pharmacist_id"`
	Name         string         `gorm:"type:text;not null" json:"name"`
	Form         string         `gorm:"type:text;not null" json:"form"`
	Strength     string         `gorm:"type:text" json:"strength"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Pharmacist *User `gorm:"foreignKey:PharmacistID" json:"-"`
}

func (Medication) TableName() string {
	return "medications"
}

// Appointment represents appointments table
type Appointment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	DoctorID  uint           `gorm:"index;not null" json:"doctor_id"`
	PatientID uint           `gorm:"index;not null" json:"patient_id"`
	Date      time.Time      `gorm:"not null" json:"date"`
	Status    string         `gorm:"size:20;not null;default:'Scheduled'" json:"status"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Doctor  *User    `gorm:"foreignKey:DoctorID" json:"-"`
	Patient *Patient `gorm:"foreignKey:PatientID" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Patient{},
		&Prescription{},
		&PrescriptionItem{},
		&Medication{},
		&Appointment{},
	)
}
