package scheduling

import (
	"context"
	"fmt"
	"time"

	"hospital-app-server/internal/models"
)

// ConflictKind is the outcome of a slot check.
type ConflictKind int

const (
	ConflictNone ConflictKind = iota
	// ConflictDoctorSlot: the doctor already has a Booked appointment with
	// the same date and start time.
	ConflictDoctorSlot
	// ConflictPatientOwn: the patient already has a Booked appointment with
	// this doctor on the same date.
	ConflictPatientOwn
	// ConflictOverlap is only reported when overlap checking is enabled.
	ConflictOverlap
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictNone:
		return "none"
	case ConflictDoctorSlot:
		return "doctor_slot"
	case ConflictPatientOwn:
		return "patient_own"
	case ConflictOverlap:
		return "overlap"
	default:
		return fmt.Sprintf("conflict(%d)", int(k))
	}
}

// CheckConflict decides whether patientID may book (doctorID, date,
// timeStart). Slots match on exact start time only; end times are never
// compared, so offset ranges such as 09:00-10:00 and 09:30-10:30 do not
// conflict.
func (s *Service) CheckConflict(ctx context.Context, patientID, doctorID string, date time.Time, timeStart string) (ConflictKind, error) {
	date = DateOf(date)

	taken, err := s.repo.FindBookedAtSlot(ctx, doctorID, date, timeStart)
	if err != nil {
		return ConflictNone, err
	}
	if taken != nil {
		return ConflictDoctorSlot, nil
	}

	own, err := s.repo.FindBookedForPatientOnDate(ctx, doctorID, patientID, date)
	if err != nil {
		return ConflictNone, err
	}
	if own != nil {
		return ConflictPatientOwn, nil
	}

	return ConflictNone, nil
}

// CheckOverlap is the stricter range check: it reports ConflictOverlap when
// [timeStart, timeEnd) intersects any Booked appointment of the doctor on
// date. Book consults it only when the service is built WithOverlapCheck.
func (s *Service) CheckOverlap(ctx context.Context, doctorID string, date time.Time, timeStart, timeEnd string) (ConflictKind, error) {
	date = DateOf(date)
	booked, err := s.repo.ListAppointments(ctx, AppointmentFilter{
		DoctorID: doctorID,
		FromDate: &date,
		Statuses: []models.AppointmentStatus{models.StatusBooked},
	})
	if err != nil {
		return ConflictNone, err
	}

	start, end := clockMinutes(timeStart), clockMinutes(timeEnd)
	for _, appt := range booked {
		if !DateOf(appt.Date).Equal(date) {
			continue
		}
		otherStart, otherEnd := clockMinutes(appt.TimeStart), clockMinutes(appt.TimeEnd)
		if start < otherEnd && otherStart < end {
			return ConflictOverlap, nil
		}
	}
	return ConflictNone, nil
}
