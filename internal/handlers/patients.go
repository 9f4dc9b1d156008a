package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/scheduling"
	"hospital-app-server/internal/utils"
)

// PatientHandler serves the patient's own profile.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// UpdatePatientProfileRequest holds the editable patient fields. Omitted
// fields keep their value.
type UpdatePatientProfileRequest struct {
	Contact *string `json:"contact"`
	Address *string `json:"address"`
	DOB     *string `json:"dob"`
}

// UpdatePatientProfile edits the signed-in patient's contact details.
func (h *PatientHandler) UpdatePatientProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req UpdatePatientProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.Preload("User").First(&patient, "id = ?", actor.ProfileID).Error; err != nil {
		utils.NotFound(c, "Patient profile not found")
		return
	}

	if req.Contact != nil {
		patient.Contact = *req.Contact
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.DOB != nil {
		if *req.DOB == "" {
			patient.DOB = nil
		} else {
			dob, err := scheduling.ParseDate(*req.DOB)
			if err != nil {
				utils.BadRequest(c, err.Error())
				return
			}
			patient.DOB = &dob
		}
	}

	updates := map[string]interface{}{
		"contact": patient.Contact,
		"address": patient.Address,
		"dob":     patient.DOB,
	}
	if err := h.DB.Model(&models.Patient{}).Where("id = ?", patient.ID).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", newPatientView(&patient))
}
