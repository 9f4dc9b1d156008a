package scheduling

import (
	"hospital-app-server/internal/models"
)

// Actor identifies the caller of a core operation. ProfileID is the doctor
// or patient profile id for those roles and empty for admins.
type Actor struct {
	UserID    string
	ProfileID string
	Role      models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsDoctor reports whether the actor is the doctor with the given profile id.
func (a Actor) IsDoctor(doctorID string) bool {
	return a.Role == models.RoleDoctor && a.ProfileID != "" && a.ProfileID == doctorID
}

// IsPatient reports whether the actor is the patient with the given profile id.
func (a Actor) IsPatient(patientID string) bool {
	return a.Role == models.RolePatient && a.ProfileID != "" && a.ProfileID == patientID
}
