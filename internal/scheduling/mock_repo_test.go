package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"hospital-app-server/internal/models"
)

// -- Mock Repository --

type mockRepo struct {
	mu           sync.Mutex
	users        map[string]*models.User
	doctors      map[string]*models.Doctor
	patients     map[string]*models.Patient
	appointments map[string]*models.Appointment
	treatments   map[string]*models.Treatment // by appointment id
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:        make(map[string]*models.User),
		doctors:      make(map[string]*models.Doctor),
		patients:     make(map[string]*models.Patient),
		appointments: make(map[string]*models.Appointment),
		treatments:   make(map[string]*models.Treatment),
	}
}

func (m *mockRepo) addDoctor(name string) *models.Doctor {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &models.User{Name: name, Email: name + "@example.com", Role: models.RoleDoctor}
	user.ID = uuid.NewString()
	m.users[user.ID] = user
	doctor := &models.Doctor{UserID: user.ID, Specialization: "General"}
	doctor.ID = uuid.NewString()
	m.doctors[doctor.ID] = doctor
	return doctor
}

func (m *mockRepo) addPatient(name string) *models.Patient {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &models.User{Name: name, Email: name + "@example.com", Role: models.RolePatient}
	user.ID = uuid.NewString()
	m.users[user.ID] = user
	patient := &models.Patient{UserID: user.ID}
	patient.ID = uuid.NewString()
	m.patients[patient.ID] = patient
	return patient
}

func (m *mockRepo) appointmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.appointments)
}

func (m *mockRepo) GetDoctor(_ context.Context, id string) (*models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, fmt.Errorf("doctor %s: %w", id, ErrNotFound)
	}
	cp := *d
	cp.User = *m.users[d.UserID]
	return &cp, nil
}

func (m *mockRepo) GetPatient(_ context.Context, id string) (*models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	cp := *p
	cp.User = *m.users[p.UserID]
	return &cp, nil
}

func (m *mockRepo) SaveDoctorAvailability(_ context.Context, doctorID string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[doctorID]
	if !ok {
		return fmt.Errorf("doctor %s: %w", doctorID, ErrNotFound)
	}
	d.Availability = datatypes.JSON(raw)
	return nil
}

func (m *mockRepo) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) FindBookedAtSlot(_ context.Context, doctorID string, date time.Time, timeStart string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.TimeStart == timeStart && a.Status == models.StatusBooked {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) FindBookedForPatientOnDate(_ context.Context, doctorID, patientID string, date time.Time) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.PatientID == patientID && a.Date.Equal(date) && a.Status == models.StatusBooked {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) CreateAppointment(_ context.Context, appt *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt.ID = uuid.NewString()
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	cp := *appt
	m.appointments[appt.ID] = &cp
	return nil
}

func (m *mockRepo) UpdateAppointmentStatus(_ context.Context, id string, status models.AppointmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	a.Status = status
	return nil
}

func (m *mockRepo) ListAppointments(_ context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Appointment
	for _, a := range m.appointments {
		if f.DoctorID != "" && a.DoctorID != f.DoctorID {
			continue
		}
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		if f.FromDate != nil && a.Date.Before(*f.FromDate) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, a.Status) {
			continue
		}
		treatment := m.treatments[a.ID]
		if f.WithTreatment && treatment == nil {
			continue
		}

		cp := *a
		if d, ok := m.doctors[a.DoctorID]; ok {
			cp.Doctor = *d
			cp.Doctor.User = *m.users[d.UserID]
		}
		if p, ok := m.patients[a.PatientID]; ok {
			cp.Patient = *p
			cp.Patient.User = *m.users[p.UserID]
		}
		if treatment != nil {
			t := *treatment
			cp.Treatment = &t
		}
		out = append(out, cp)
	}

	sort.Slice(out, func(i, j int) bool {
		ki, kj := SlotKey(out[i].Date, out[i].TimeStart), SlotKey(out[j].Date, out[j].TimeStart)
		if f.NewestFirst {
			return ki > kj
		}
		return ki < kj
	})
	return out, nil
}

func (m *mockRepo) GetTreatmentByAppointment(_ context.Context, appointmentID string) (*models.Treatment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.treatments[appointmentID]
	if !ok {
		return nil, fmt.Errorf("treatment for appointment %s: %w", appointmentID, ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) SaveTreatment(_ context.Context, treatment *models.Treatment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if treatment.ID == "" {
		treatment.ID = uuid.NewString()
	}
	cp := *treatment
	m.treatments[treatment.AppointmentID] = &cp
	return nil
}

func (m *mockRepo) DeleteDoctorCascade(_ context.Context, doctorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[doctorID]
	if !ok {
		return fmt.Errorf("doctor %s: %w", doctorID, ErrNotFound)
	}
	for id, a := range m.appointments {
		if a.DoctorID == doctorID {
			delete(m.treatments, id)
			delete(m.appointments, id)
		}
	}
	delete(m.doctors, doctorID)
	delete(m.users, d.UserID)
	return nil
}

func (m *mockRepo) DeletePatientCascade(_ context.Context, patientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[patientID]
	if !ok {
		return fmt.Errorf("patient %s: %w", patientID, ErrNotFound)
	}
	for id, a := range m.appointments {
		if a.PatientID == patientID {
			delete(m.treatments, id)
			delete(m.appointments, id)
		}
	}
	delete(m.patients, patientID)
	delete(m.users, p.UserID)
	return nil
}

func containsStatus(statuses []models.AppointmentStatus, s models.AppointmentStatus) bool {
	for _, want := range statuses {
		if want == s {
			return true
		}
	}
	return false
}

// -- Mock Locker --

type mockLocker struct {
	mu     sync.Mutex
	held   map[string]string
	busy   map[string]bool
	locks  int
	unlock int
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]string), busy: make(map[string]bool)}
}

func (l *mockLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy[key] {
		return false, "", nil
	}
	if _, ok := l.held[key]; ok {
		return false, "", nil
	}
	token := uuid.NewString()
	l.held[key] = token
	l.locks++
	return true, token, nil
}

func (l *mockLocker) setBusy(key string, busy bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.busy[key] = busy
}

func (l *mockLocker) Unlock(_ context.Context, key, lockValue string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == lockValue {
		delete(l.held, key)
		l.unlock++
	}
	return nil
}

// -- Helpers --

var testToday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestService(opts ...Option) (*Service, *mockRepo) {
	repo := newMockRepo()
	opts = append([]Option{WithClock(func() time.Time { return testToday.Add(10 * time.Hour) })}, opts...)
	return NewService(repo, nil, opts...), repo
}

func patientActor(p *models.Patient) Actor {
	return Actor{UserID: p.UserID, ProfileID: p.ID, Role: models.RolePatient}
}

func doctorActor(d *models.Doctor) Actor {
	return Actor{UserID: d.UserID, ProfileID: d.ID, Role: models.RoleDoctor}
}

var adminActor = Actor{UserID: "admin-user", Role: models.RoleAdmin}
