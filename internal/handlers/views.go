package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/scheduling"
	"hospital-app-server/internal/utils"
)

// DoctorView is the public shape of a doctor profile.
type DoctorView struct {
	ID             string                  `json:"id"`
	UserID         string                  `json:"userId"`
	Name           string                  `json:"name"`
	Email          string                  `json:"email"`
	Specialization string                  `json:"specialization"`
	DepartmentID   string                  `json:"departmentId,omitempty"`
	Department     string                  `json:"department,omitempty"`
	Availability   scheduling.Availability `json:"availability"`
}

func newDoctorView(d *models.Doctor) DoctorView {
	view := DoctorView{
		ID:             d.ID,
		UserID:         d.UserID,
		Name:           d.User.Name,
		Email:          d.User.Email,
		Specialization: d.Specialization,
		Department:     d.DepartmentName(),
		Availability:   scheduling.DecodeAvailability(d.Availability),
	}
	if d.DepartmentID != nil {
		view.DepartmentID = *d.DepartmentID
	}
	return view
}

// PatientView is the public shape of a patient profile.
type PatientView struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	DOB     string `json:"dob,omitempty"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

func newPatientView(p *models.Patient) PatientView {
	view := PatientView{
		ID:      p.ID,
		UserID:  p.UserID,
		Name:    p.User.Name,
		Email:   p.User.Email,
		Contact: p.Contact,
		Address: p.Address,
	}
	if p.DOB != nil {
		view.DOB = p.DOB.Format(scheduling.DateLayout)
	}
	return view
}

// TreatmentView is a treatment with its notes decoded.
type TreatmentView struct {
	ID           string `json:"id"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	scheduling.VisitNotes
}

func newTreatmentView(t *models.Treatment) TreatmentView {
	return TreatmentView{
		ID:           t.ID,
		Diagnosis:    t.Diagnosis,
		Prescription: t.Prescription,
		VisitNotes:   scheduling.DecodeNotes(t.Notes),
	}
}

// AppointmentView is an appointment with the names of both parties.
type AppointmentView struct {
	ID          string                   `json:"id"`
	Date        string                   `json:"date"`
	TimeStart   string                   `json:"timeStart"`
	TimeEnd     string                   `json:"timeEnd"`
	Status      models.AppointmentStatus `json:"status"`
	DoctorID    string                   `json:"doctorId"`
	DoctorName  string                   `json:"doctorName,omitempty"`
	Department  string                   `json:"department,omitempty"`
	PatientID   string                   `json:"patientId"`
	PatientName string                   `json:"patientName,omitempty"`
	Treatment   *TreatmentView           `json:"treatment,omitempty"`
}

func newAppointmentView(a *models.Appointment) AppointmentView {
	view := AppointmentView{
		ID:          a.ID,
		Date:        a.DateString(),
		TimeStart:   a.TimeStart,
		TimeEnd:     a.TimeEnd,
		Status:      a.Status,
		DoctorID:    a.DoctorID,
		DoctorName:  a.Doctor.User.Name,
		Department:  a.Doctor.DepartmentName(),
		PatientID:   a.PatientID,
		PatientName: a.Patient.User.Name,
	}
	if a.Treatment != nil {
		t := newTreatmentView(a.Treatment)
		view.Treatment = &t
	}
	return view
}

func newAppointmentViews(appts []models.Appointment) []AppointmentView {
	views := make([]AppointmentView, 0, len(appts))
	for i := range appts {
		views = append(views, newAppointmentView(&appts[i]))
	}
	return views
}

// requireActor returns the authenticated actor or answers 401.
func requireActor(c *gin.Context) (scheduling.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
	}
	return actor, ok
}
