package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hospital-app-server/internal/models"
)

// Service owns availability, booking, the appointment lifecycle and
// treatment history. Every operation takes the acting user explicitly.
type Service struct {
	repo         Repository
	log          *zap.Logger
	locker       SlotLocker
	lockTTL      time.Duration
	lockWait     time.Duration
	lockRetry    time.Duration
	overlapCheck bool
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSlotLocker serializes check-and-insert per (doctor, date) through
// locker. Without it two concurrent requests can both pass the conflict
// check for the same slot.
func WithSlotLocker(locker SlotLocker, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// WithLockWait bounds how long Book retries a held booking lock before
// giving up with ErrBookingBusy, polling every retry.
func WithLockWait(wait, retry time.Duration) Option {
	return func(s *Service) {
		s.lockWait = wait
		s.lockRetry = retry
	}
}

// WithOverlapCheck makes Book also refuse time ranges that overlap an
// existing Booked appointment of the doctor.
func WithOverlapCheck() Option {
	return func(s *Service) {
		s.overlapCheck = true
	}
}

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		repo:    repo,
		log:     log,
		lockTTL:   10 * time.Second,
		lockWait:  2 * time.Second,
		lockRetry: 50 * time.Millisecond,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date.
func (s *Service) Today() time.Time {
	return DateOf(s.now())
}

// -- Availability --

// GetAvailability returns the doctor's stored pattern, or an empty pattern
// when none was saved or the stored value cannot be decoded.
func (s *Service) GetAvailability(ctx context.Context, doctorID string) (Availability, error) {
	doctor, err := s.repo.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return DecodeAvailability(doctor.Availability), nil
}

// SetAvailability replaces the doctor's whole pattern.
func (s *Service) SetAvailability(ctx context.Context, actor Actor, doctorID string, pattern Availability) (Availability, error) {
	if !actor.IsDoctor(doctorID) && !actor.IsAdmin() {
		return nil, fmt.Errorf("set availability of doctor %s: %w", doctorID, ErrUnauthorized)
	}
	if _, err := s.repo.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	normalized := NormalizeAvailability(pattern)
	raw, err := EncodeAvailability(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode availability: %w", err)
	}
	if err := s.repo.SaveDoctorAvailability(ctx, doctorID, raw); err != nil {
		return nil, err
	}

	s.log.Info("availability saved", zap.String("doctor_id", doctorID))
	return normalized, nil
}

// -- Booking --

// BookingRequest carries the raw booking form values.
type BookingRequest struct {
	DoctorID  string
	Date      string
	TimeStart string
	TimeEnd   string
}

// Book creates a Booked appointment for the acting patient. It returns
// ErrMalformedInput for unparseable input, ErrNotFound for an unknown doctor
// or patient, a *SlotConflictError when the slot is refused, and
// ErrBookingBusy when the booking lock stays held for the whole wait.
func (s *Service) Book(ctx context.Context, actor Actor, req BookingRequest) (*models.Appointment, error) {
	if actor.Role != models.RolePatient || actor.ProfileID == "" {
		return nil, fmt.Errorf("book appointment: %w", ErrUnauthorized)
	}
	if req.DoctorID == "" || req.Date == "" || req.TimeStart == "" || req.TimeEnd == "" {
		return nil, malformed("doctor, date, start and end time are required")
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	timeStart, err := ParseClock(req.TimeStart)
	if err != nil {
		return nil, err
	}
	timeEnd, err := ParseClock(req.TimeEnd)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetDoctor(ctx, req.DoctorID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPatient(ctx, actor.ProfileID); err != nil {
		return nil, err
	}

	if s.locker != nil {
		key := fmt.Sprintf("booking:%s:%s", req.DoctorID, date.Format(DateLayout))
		lockValue, err := s.acquireLock(ctx, key)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := s.locker.Unlock(ctx, key, lockValue); err != nil {
				s.log.Warn("release booking lock", zap.String("key", key), zap.Error(err))
			}
		}()
	}

	kind, err := s.CheckConflict(ctx, actor.ProfileID, req.DoctorID, date, timeStart)
	if err != nil {
		return nil, err
	}
	if kind == ConflictNone && s.overlapCheck {
		if kind, err = s.CheckOverlap(ctx, req.DoctorID, date, timeStart, timeEnd); err != nil {
			return nil, err
		}
	}
	if kind != ConflictNone {
		s.log.Info("booking refused",
			zap.String("doctor_id", req.DoctorID),
			zap.String("patient_id", actor.ProfileID),
			zap.String("date", req.Date),
			zap.String("time_start", timeStart),
			zap.Stringer("conflict", kind),
		)
		return nil, &SlotConflictError{Kind: kind}
	}

	appt := &models.Appointment{
		PatientID: actor.ProfileID,
		DoctorID:  req.DoctorID,
		Date:      date,
		TimeStart: timeStart,
		TimeEnd:   timeEnd,
		Status:    models.StatusBooked,
	}
	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}

	s.log.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("doctor_id", appt.DoctorID),
		zap.String("patient_id", appt.PatientID),
		zap.String("date", appt.DateString()),
		zap.String("time_start", appt.TimeStart),
	)
	return appt, nil
}

// acquireLock polls TryLock until it succeeds, the wait runs out or ctx is
// done. The lock covers a whole (doctor, date), so a held lock says nothing
// about the requested slot and must not be reported as a conflict.
func (s *Service) acquireLock(ctx context.Context, key string) (string, error) {
	deadline := time.Now().Add(s.lockWait)
	for {
		acquired, lockValue, err := s.locker.TryLock(ctx, key, s.lockTTL)
		if err != nil {
			return "", fmt.Errorf("acquire booking lock: %w", err)
		}
		if acquired {
			return lockValue, nil
		}
		if !time.Now().Before(deadline) {
			s.log.Warn("booking lock busy", zap.String("key", key), zap.Duration("waited", s.lockWait))
			return "", fmt.Errorf("booking lock %s: %w", key, ErrBookingBusy)
		}

		timer := time.NewTimer(s.lockRetry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("acquire booking lock: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// -- Lifecycle --

// GetAppointment returns an appointment visible to the actor: its patient,
// its doctor or an admin.
func (s *Service) GetAppointment(ctx context.Context, actor Actor, appointmentID string) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.IsDoctor(appt.DoctorID) && !actor.IsPatient(appt.PatientID) {
		return nil, fmt.Errorf("view appointment %s: %w", appointmentID, ErrUnauthorized)
	}
	return appt, nil
}

// MarkCompleted sets the appointment to Completed. Only the appointment's
// doctor may do so; the status is assigned from any state and repeating the
// call changes nothing.
func (s *Service) MarkCompleted(ctx context.Context, actor Actor, appointmentID string) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsDoctor(appt.DoctorID) {
		return nil, fmt.Errorf("complete appointment %s: %w", appointmentID, ErrUnauthorized)
	}
	if appt.Status == models.StatusCompleted {
		return appt, nil
	}

	if err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, models.StatusCompleted); err != nil {
		return nil, err
	}
	appt.Status = models.StatusCompleted

	s.log.Info("appointment completed", zap.String("appointment_id", appt.ID), zap.String("doctor_id", appt.DoctorID))
	return appt, nil
}

// Cancel moves a Booked appointment to Cancelled. Patients and doctors may
// cancel only their own appointments; admins may cancel any. Cancelling a
// Cancelled appointment is a no-op, cancelling a Completed one fails with
// ErrInvalidTransition.
func (s *Service) Cancel(ctx context.Context, actor Actor, appointmentID string) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.IsDoctor(appt.DoctorID) && !actor.IsPatient(appt.PatientID) {
		return nil, fmt.Errorf("cancel appointment %s: %w", appointmentID, ErrUnauthorized)
	}

	switch appt.Status {
	case models.StatusCancelled:
		return appt, nil
	case models.StatusCompleted:
		return nil, fmt.Errorf("cancel appointment %s in state %s: %w", appointmentID, appt.Status, ErrInvalidTransition)
	}

	if err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, models.StatusCancelled); err != nil {
		return nil, err
	}
	appt.Status = models.StatusCancelled

	s.log.Info("appointment cancelled",
		zap.String("appointment_id", appt.ID),
		zap.String("actor_id", actor.UserID),
		zap.String("actor_role", string(actor.Role)),
	)
	return appt, nil
}

// DeleteDoctor removes a doctor together with all of their appointments and
// the treatments recorded on them.
func (s *Service) DeleteDoctor(ctx context.Context, actor Actor, doctorID string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("delete doctor %s: %w", doctorID, ErrUnauthorized)
	}
	if _, err := s.repo.GetDoctor(ctx, doctorID); err != nil {
		return err
	}
	if err := s.repo.DeleteDoctorCascade(ctx, doctorID); err != nil {
		return err
	}
	s.log.Info("doctor deleted", zap.String("doctor_id", doctorID), zap.String("actor_id", actor.UserID))
	return nil
}

// DeletePatient removes a patient together with all of their appointments
// and the treatments recorded on them.
func (s *Service) DeletePatient(ctx context.Context, actor Actor, patientID string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("delete patient %s: %w", patientID, ErrUnauthorized)
	}
	if _, err := s.repo.GetPatient(ctx, patientID); err != nil {
		return err
	}
	if err := s.repo.DeletePatientCascade(ctx, patientID); err != nil {
		return err
	}
	s.log.Info("patient deleted", zap.String("patient_id", patientID), zap.String("actor_id", actor.UserID))
	return nil
}

// -- Listings --

var bookedOnly = []models.AppointmentStatus{models.StatusBooked}

// ListUpcomingForDoctor returns the doctor's Booked appointments on or
// after from.
func (s *Service) ListUpcomingForDoctor(ctx context.Context, doctorID string, from time.Time) ([]models.Appointment, error) {
	from = DateOf(from)
	return s.repo.ListAppointments(ctx, AppointmentFilter{DoctorID: doctorID, FromDate: &from, Statuses: bookedOnly})
}

// ListUpcomingForPatient returns the patient's Booked appointments on or
// after from.
func (s *Service) ListUpcomingForPatient(ctx context.Context, patientID string, from time.Time) ([]models.Appointment, error) {
	from = DateOf(from)
	return s.repo.ListAppointments(ctx, AppointmentFilter{PatientID: patientID, FromDate: &from, Statuses: bookedOnly})
}

// ListUpcoming returns every Booked appointment on or after from.
func (s *Service) ListUpcoming(ctx context.Context, from time.Time) ([]models.Appointment, error) {
	from = DateOf(from)
	return s.repo.ListAppointments(ctx, AppointmentFilter{FromDate: &from, Statuses: bookedOnly})
}

// ListCompletedForPatient returns the patient's Completed appointments,
// newest first.
func (s *Service) ListCompletedForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return s.repo.ListAppointments(ctx, AppointmentFilter{
		PatientID:   patientID,
		Statuses:    []models.AppointmentStatus{models.StatusCompleted},
		NewestFirst: true,
	})
}
