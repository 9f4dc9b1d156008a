package scheduling

import (
	"context"
	"time"

	"hospital-app-server/internal/models"
)

// AppointmentFilter narrows ListAppointments. Zero fields are ignored.
type AppointmentFilter struct {
	DoctorID  string
	PatientID string
	FromDate  *time.Time
	Statuses  []models.AppointmentStatus
	// WithTreatment keeps only appointments that have a Treatment row.
	WithTreatment bool
	// NewestFirst orders by date descending instead of ascending.
	NewestFirst bool
}

// Repository is the persistence the core needs. Lookups of missing rows
// return an error wrapping ErrNotFound.
type Repository interface {
	GetDoctor(ctx context.Context, id string) (*models.Doctor, error)
	GetPatient(ctx context.Context, id string) (*models.Patient, error)
	SaveDoctorAvailability(ctx context.Context, doctorID string, raw []byte) error

	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	// FindBookedAtSlot returns the Booked appointment occupying exactly
	// (doctor, date, start) or nil.
	FindBookedAtSlot(ctx context.Context, doctorID string, date time.Time, timeStart string) (*models.Appointment, error)
	// FindBookedForPatientOnDate returns a Booked appointment of the patient
	// with the doctor on date, or nil.
	FindBookedForPatientOnDate(ctx context.Context, doctorID, patientID string, date time.Time) (*models.Appointment, error)
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error
	// ListAppointments preloads the doctor (user and department), the
	// patient user and the treatment, ordered by date and start time.
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)

	GetTreatmentByAppointment(ctx context.Context, appointmentID string) (*models.Treatment, error)
	SaveTreatment(ctx context.Context, treatment *models.Treatment) error

	// DeleteDoctorCascade removes the doctor's appointments and their
	// treatments, then the doctor profile and its user, in one transaction.
	DeleteDoctorCascade(ctx context.Context, doctorID string) error
	// DeletePatientCascade is DeleteDoctorCascade for a patient.
	DeletePatientCascade(ctx context.Context, patientID string) error
}

// SlotLocker serializes bookings that compete for the same key.
type SlotLocker interface {
	TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, lockValue string) error
}
