package models

import (
	"gorm.io/datatypes"
)

// Doctor is the doctor profile attached to a User with RoleDoctor.
type Doctor struct {
	BaseModel
	UserID         string  `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DepartmentID   *string `gorm:"size:36;index" json:"departmentId,omitempty"`
	Specialization string  `gorm:"size:200" json:"specialization"`

	// Availability is NULL until the doctor saves a schedule, then an object
	// keyed day_1..day_7. It is always replaced as a whole.
	Availability datatypes.JSON `json:"-"`

	User       User        `gorm:"foreignKey:UserID" json:"user"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

// DepartmentName returns the department name or "" when unassigned.
func (d *Doctor) DepartmentName() string {
	if d.Department == nil {
		return ""
	}
	return d.Department.Name
}
