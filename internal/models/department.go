package models

// Department groups doctors, e.g. "Cardiology".
type Department struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}
