package scheduling

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"hospital-app-server/internal/models"
)

// TreatmentInput is what a doctor submits for a visit.
type TreatmentInput struct {
	Diagnosis    string
	Prescription string
	VisitType    string
	TestsDone    string
	Medicines    string
}

// VisitRecord is one decoded entry of a patient's treatment history.
type VisitRecord struct {
	AppointmentID string                   `json:"appointmentId"`
	Date          string                   `json:"date"`
	TimeStart     string                   `json:"timeStart"`
	TimeEnd       string                   `json:"timeEnd"`
	Status        models.AppointmentStatus `json:"status"`
	DoctorID      string                   `json:"doctorId"`
	DoctorName    string                   `json:"doctorName"`
	Department    string                   `json:"department,omitempty"`
	Diagnosis     string                   `json:"diagnosis"`
	Prescription  string                   `json:"prescription"`
	VisitNotes
}

// RecordTreatment creates or overwrites the single treatment of an
// appointment. All fields are replaced; nothing is merged.
func (s *Service) RecordTreatment(ctx context.Context, actor Actor, appointmentID string, in TreatmentInput) (*models.Treatment, error) {
	appt, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsDoctor(appt.DoctorID) {
		return nil, fmt.Errorf("record treatment for appointment %s: %w", appointmentID, ErrUnauthorized)
	}

	treatment, err := s.repo.GetTreatmentByAppointment(ctx, appt.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		treatment = &models.Treatment{AppointmentID: appt.ID}
	case err != nil:
		return nil, err
	}

	treatment.Diagnosis = in.Diagnosis
	treatment.Prescription = in.Prescription
	treatment.Notes = EncodeNotes(in.VisitType, in.TestsDone, in.Medicines)

	if err := s.repo.SaveTreatment(ctx, treatment); err != nil {
		return nil, err
	}

	s.log.Info("treatment recorded",
		zap.String("appointment_id", appt.ID),
		zap.String("treatment_id", treatment.ID),
		zap.String("doctor_id", appt.DoctorID),
	)
	return treatment, nil
}

// GetHistory returns the decoded treatment history of a patient, oldest
// first. Admins see every doctor, optionally filtered by doctorID; doctors
// see only their own visits with the patient; patients see only their own
// history.
func (s *Service) GetHistory(ctx context.Context, actor Actor, patientID, doctorID string) ([]VisitRecord, error) {
	switch {
	case actor.IsAdmin():
	case actor.Role == models.RoleDoctor && actor.ProfileID != "":
		doctorID = actor.ProfileID
	case actor.IsPatient(patientID):
	default:
		return nil, fmt.Errorf("history of patient %s: %w", patientID, ErrUnauthorized)
	}

	if _, err := s.repo.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	appts, err := s.repo.ListAppointments(ctx, AppointmentFilter{
		PatientID:     patientID,
		DoctorID:      doctorID,
		WithTreatment: true,
	})
	if err != nil {
		return nil, err
	}

	history := make([]VisitRecord, 0, len(appts))
	for _, a := range appts {
		if a.Treatment == nil {
			continue
		}
		history = append(history, VisitRecord{
			AppointmentID: a.ID,
			Date:          a.DateString(),
			TimeStart:     a.TimeStart,
			TimeEnd:       a.TimeEnd,
			Status:        a.Status,
			DoctorID:      a.DoctorID,
			DoctorName:    a.Doctor.User.Name,
			Department:    a.Doctor.DepartmentName(),
			Diagnosis:     a.Treatment.Diagnosis,
			Prescription:  a.Treatment.Prescription,
			VisitNotes:    DecodeNotes(a.Treatment.Notes),
		})
	}
	return history, nil
}
