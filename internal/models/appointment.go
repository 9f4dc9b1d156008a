package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "Booked"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Appointment is a patient's booking of a doctor slot. Date is a calendar
// date stored as UTC midnight; TimeStart and TimeEnd are "HH:MM".
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;not null;index" json:"patientId"`
	DoctorID  string            `gorm:"size:36;not null;index:idx_appointment_slot" json:"doctorId"`
	Date      time.Time         `gorm:"type:date;not null;index:idx_appointment_slot" json:"date"`
	TimeStart string            `gorm:"size:5;not null;index:idx_appointment_slot" json:"timeStart"`
	TimeEnd   string            `gorm:"size:5;not null" json:"timeEnd"`
	Status    AppointmentStatus `gorm:"size:30;default:'Booked'" json:"status"`

	// Relations
	Patient   Patient    `gorm:"foreignKey:PatientID" json:"-"`
	Doctor    Doctor     `gorm:"foreignKey:DoctorID" json:"-"`
	Treatment *Treatment `gorm:"foreignKey:AppointmentID" json:"treatment,omitempty"`
}

// DateString formats the appointment date as YYYY-MM-DD.
func (a *Appointment) DateString() string {
	return a.Date.Format("2006-01-02")
}
