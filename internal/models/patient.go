package models

import (
	"time"
)

// Patient is the patient profile attached to a User with RolePatient.
type Patient struct {
	BaseModel
	UserID  string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DOB     *time.Time `gorm:"type:date" json:"dob,omitempty"`
	Contact string     `gorm:"size:100" json:"contact"`
	Address string     `gorm:"size:255" json:"address"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}
