package models

// Treatment is the doctor's record of a visit. Notes packs the visit type,
// tests and medicines into one text column.
type Treatment struct {
	BaseModel
	AppointmentID string `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	Diagnosis     string `gorm:"type:text" json:"diagnosis"`
	Prescription  string `gorm:"type:text" json:"prescription"`
	Notes         string `gorm:"type:text" json:"notes"`
}
