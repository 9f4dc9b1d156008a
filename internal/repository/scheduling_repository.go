package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/scheduling"
)

// SchedulingRepository implements scheduling.Repository on gorm.
type SchedulingRepository struct {
	DB *gorm.DB
}

// NewSchedulingRepository creates a new SchedulingRepository.
func NewSchedulingRepository(db *gorm.DB) *SchedulingRepository {
	return &SchedulingRepository{DB: db}
}

var _ scheduling.Repository = (*SchedulingRepository)(nil)

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, scheduling.ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", what, id, err)
}

func (r *SchedulingRepository) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.DB.WithContext(ctx).Preload("User").Preload("Department").First(&doctor, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "doctor", id)
	}
	return &doctor, nil
}

func (r *SchedulingRepository) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	err := r.DB.WithContext(ctx).Preload("User").First(&patient, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "patient", id)
	}
	return &patient, nil
}

func (r *SchedulingRepository) SaveDoctorAvailability(ctx context.Context, doctorID string, raw []byte) error {
	res := r.DB.WithContext(ctx).Model(&models.Doctor{}).
		Where("id = ?", doctorID).
		Update("availability", datatypes.JSON(raw))
	if res.Error != nil {
		return fmt.Errorf("save availability of doctor %s: %w", doctorID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("doctor %s: %w", doctorID, scheduling.ErrNotFound)
	}
	return nil
}

func (r *SchedulingRepository) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.DB.WithContext(ctx).First(&appt, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "appointment", id)
	}
	return &appt, nil
}

// firstOrNil runs q and maps "no row" to (nil, nil).
func firstOrNil(q *gorm.DB) (*models.Appointment, error) {
	var appt models.Appointment
	err := q.First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *SchedulingRepository) FindBookedAtSlot(ctx context.Context, doctorID string, date time.Time, timeStart string) (*models.Appointment, error) {
	appt, err := firstOrNil(r.DB.WithContext(ctx).Where(
		"doctor_id = ? AND date = ? AND time_start = ? AND status = ?",
		doctorID, date, timeStart, models.StatusBooked,
	))
	if err != nil {
		return nil, fmt.Errorf("check doctor slot: %w", err)
	}
	return appt, nil
}

func (r *SchedulingRepository) FindBookedForPatientOnDate(ctx context.Context, doctorID, patientID string, date time.Time) (*models.Appointment, error) {
	appt, err := firstOrNil(r.DB.WithContext(ctx).Where(
		"doctor_id = ? AND patient_id = ? AND date = ? AND status = ?",
		doctorID, patientID, date, models.StatusBooked,
	))
	if err != nil {
		return nil, fmt.Errorf("check patient bookings: %w", err)
	}
	return appt, nil
}

func (r *SchedulingRepository) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	if err := r.DB.WithContext(ctx).Create(appt).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func (r *SchedulingRepository) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update appointment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("appointment %s: %w", id, scheduling.ErrNotFound)
	}
	return nil
}

func (r *SchedulingRepository) ListAppointments(ctx context.Context, filter scheduling.AppointmentFilter) ([]models.Appointment, error) {
	query := r.DB.WithContext(ctx).
		Preload("Doctor.User").
		Preload("Doctor.Department").
		Preload("Patient.User").
		Preload("Treatment")

	if filter.DoctorID != "" {
		query = query.Where("appointments.doctor_id = ?", filter.DoctorID)
	}
	if filter.PatientID != "" {
		query = query.Where("appointments.patient_id = ?", filter.PatientID)
	}
	if filter.FromDate != nil {
		query = query.Where("appointments.date >= ?", *filter.FromDate)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("appointments.status IN ?", filter.Statuses)
	}
	if filter.WithTreatment {
		query = query.Where("EXISTS (SELECT 1 FROM treatments WHERE treatments.appointment_id = appointments.id)")
	}
	if filter.NewestFirst {
		query = query.Order("appointments.date desc").Order("appointments.time_start desc")
	} else {
		query = query.Order("appointments.date asc").Order("appointments.time_start asc")
	}

	var appts []models.Appointment
	if err := query.Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (r *SchedulingRepository) GetTreatmentByAppointment(ctx context.Context, appointmentID string) (*models.Treatment, error) {
	var treatment models.Treatment
	err := r.DB.WithContext(ctx).First(&treatment, "appointment_id = ?", appointmentID).Error
	if err != nil {
		return nil, notFound(err, "treatment for appointment", appointmentID)
	}
	return &treatment, nil
}

func (r *SchedulingRepository) SaveTreatment(ctx context.Context, treatment *models.Treatment) error {
	if err := r.DB.WithContext(ctx).Save(treatment).Error; err != nil {
		return fmt.Errorf("save treatment: %w", err)
	}
	return nil
}

func (r *SchedulingRepository) DeleteDoctorCascade(ctx context.Context, doctorID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doctor models.Doctor
		if err := tx.First(&doctor, "id = ?", doctorID).Error; err != nil {
			return notFound(err, "doctor", doctorID)
		}
		if err := deleteAppointments(tx, "doctor_id = ?", doctorID); err != nil {
			return err
		}
		if err := tx.Delete(&models.Doctor{}, "id = ?", doctorID).Error; err != nil {
			return fmt.Errorf("delete doctor %s: %w", doctorID, err)
		}
		return deleteUser(tx, doctor.UserID)
	})
}

func (r *SchedulingRepository) DeletePatientCascade(ctx context.Context, patientID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		if err := tx.First(&patient, "id = ?", patientID).Error; err != nil {
			return notFound(err, "patient", patientID)
		}
		if err := deleteAppointments(tx, "patient_id = ?", patientID); err != nil {
			return err
		}
		if err := tx.Delete(&models.Patient{}, "id = ?", patientID).Error; err != nil {
			return fmt.Errorf("delete patient %s: %w", patientID, err)
		}
		return deleteUser(tx, patient.UserID)
	})
}

// deleteAppointments removes the matching appointments and their treatments.
func deleteAppointments(tx *gorm.DB, where string, arg string) error {
	ids := tx.Model(&models.Appointment{}).Select("id").Where(where, arg)
	if err := tx.Where("appointment_id IN (?)", ids).Delete(&models.Treatment{}).Error; err != nil {
		return fmt.Errorf("delete treatments: %w", err)
	}
	if err := tx.Where(where, arg).Delete(&models.Appointment{}).Error; err != nil {
		return fmt.Errorf("delete appointments: %w", err)
	}
	return nil
}

func deleteUser(tx *gorm.DB, userID string) error {
	if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}
	if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	return nil
}
