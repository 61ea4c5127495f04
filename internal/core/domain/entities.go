package domain

// Role represents a user role in the system
type Role string

const (
	RoleDoctor     Role = "doctor"
	RolePharmacist Role = "pharmacist"
)

// ValidRole reports whether the given string is a known role
func ValidRole(role string) bool {
	switch Role(role) {
	case RoleDoctor, RolePharmacist:
		return true
	}
	return false
}

// Prescription statuses
const (
	PrescriptionPending   = "Pending"
	PrescriptionProcessed = "Processed"
	PrescriptionCompleted = "Completed"
	PrescriptionCancelled = "Cancelled"
)

// ValidPrescriptionStatus reports whether the given status is known
func ValidPrescriptionStatus(status string) bool {
	switch status {
	case PrescriptionPending, PrescriptionProcessed, PrescriptionCompleted, PrescriptionCancelled:
		return true
	}
	return false
}

// Appointment statuses
const (
	AppointmentScheduled = "Scheduled"
	AppointmentCompleted = "Completed"
	AppointmentCancelled = "Cancelled"
)
