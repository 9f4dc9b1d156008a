package scheduling

import (
	"context"
	"fmt"
	"time"

	"hospital-app-server/internal/models"
)

// BookingView is what a patient sees before booking a doctor.
type BookingView struct {
	DoctorID     string       `json:"doctorId"`
	Dates        []string     `json:"dates"`
	Availability Availability `json:"availability"`
	// BookedSlots are the doctor's Booked (date, start) pairs as
	// "YYYY-MM-DD|HH:MM"; PatientBookedSlots is the subset held by the
	// requesting patient.
	BookedSlots        []string `json:"bookedSlots"`
	PatientBookedSlots []string `json:"patientBookedSlots"`
}

// SlotKey formats a (date, start) pair the way BookingView reports it.
func SlotKey(date time.Time, timeStart string) string {
	return fmt.Sprintf("%s|%s", date.Format(DateLayout), timeStart)
}

// BookingView combines the doctor's rolling availability with the slots
// already taken.
func (s *Service) BookingView(ctx context.Context, actor Actor, doctorID string, today time.Time) (*BookingView, error) {
	doctor, err := s.repo.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.ListAppointments(ctx, AppointmentFilter{
		DoctorID: doctorID,
		Statuses: []models.AppointmentStatus{models.StatusBooked},
	})
	if err != nil {
		return nil, err
	}

	view := &BookingView{
		DoctorID:           doctor.ID,
		Dates:              Next7Days(today),
		Availability:       DecodeAvailability(doctor.Availability),
		BookedSlots:        []string{},
		PatientBookedSlots: []string{},
	}
	for _, a := range booked {
		key := SlotKey(a.Date, a.TimeStart)
		view.BookedSlots = append(view.BookedSlots, key)
		if actor.IsPatient(a.PatientID) {
			view.PatientBookedSlots = append(view.PatientBookedSlots, key)
		}
	}
	return view, nil
}
