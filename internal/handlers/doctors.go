package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/scheduling"
	"hospital-app-server/internal/utils"
)

// DoctorHandler serves doctor lookups and availability.
type DoctorHandler struct {
	DB      *gorm.DB
	Service *scheduling.Service
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, service *scheduling.Service) *DoctorHandler {
	return &DoctorHandler{DB: db, Service: service}
}

// SearchDoctors lists doctors whose name, specialization or department
// contains ?q=. An empty query lists every doctor.
func (h *DoctorHandler) SearchDoctors(c *gin.Context) {
	doctors, err := searchDoctors(h.DB, c.Query("q"), true)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.Success(c, "Doctors fetched successfully", newDoctorViews(doctors))
}

// GetDoctor returns one doctor with their weekly availability.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.Preload("User").Preload("Department").First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Doctor fetched successfully", newDoctorView(&doctor))
}

// GetBookingView returns the next seven dates, the doctor's pattern and the
// slots already taken.
func (h *DoctorHandler) GetBookingView(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	view, err := h.Service.BookingView(c.Request.Context(), actor, c.Param("id"), h.Service.Today())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Availability fetched successfully", view)
}

// AvailabilityResponse pairs the stored pattern with the dates it maps to.
type AvailabilityResponse struct {
	Dates        []string                `json:"dates"`
	Availability scheduling.Availability `json:"availability"`
}

// GetMyAvailability returns the signed-in doctor's pattern.
func (h *DoctorHandler) GetMyAvailability(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	availability, err := h.Service.GetAvailability(c.Request.Context(), actor.ProfileID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Availability fetched successfully", AvailabilityResponse{
		Dates:        scheduling.Next7Days(h.Service.Today()),
		Availability: availability,
	})
}

// UpdateMyAvailability replaces the signed-in doctor's pattern. The body is
// an object keyed day_1..day_7 with morning and evening labels; missing days
// are stored as unavailable.
func (h *DoctorHandler) UpdateMyAvailability(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var pattern scheduling.Availability
	if err := c.ShouldBindJSON(&pattern); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	saved, err := h.Service.SetAvailability(c.Request.Context(), actor, actor.ProfileID, pattern)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Availability updated successfully", AvailabilityResponse{
		Dates:        scheduling.Next7Days(h.Service.Today()),
		Availability: saved,
	})
}

// GetDoctorPatients lists the patients who have at least one appointment
// with the signed-in doctor.
func (h *DoctorHandler) GetDoctorPatients(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	seen := h.DB.Model(&models.Appointment{}).Select("patient_id").Where("doctor_id = ?", actor.ProfileID)
	var patients []models.Patient
	err := h.DB.Model(&models.Patient{}).
		Joins("JOIN users ON users.id = patients.user_id").
		Where("patients.id IN (?)", seen).
		Preload("User").
		Order("users.name asc").
		Find(&patients).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", newPatientViews(patients))
}

func newDoctorViews(doctors []models.Doctor) []DoctorView {
	views := make([]DoctorView, 0, len(doctors))
	for i := range doctors {
		views = append(views, newDoctorView(&doctors[i]))
	}
	return views
}

// searchDoctors matches query against the doctor's name and, when
// broad is set, their specialization and department name.
func searchDoctors(db *gorm.DB, query string, broad bool) ([]models.Doctor, error) {
	q := db.Model(&models.Doctor{}).
		Joins("JOIN users ON users.id = doctors.user_id").
		Joins("LEFT JOIN departments ON departments.id = doctors.department_id").
		Preload("User").
		Preload("Department").
		Order("users.name asc")

	if query != "" {
		like := "%" + query + "%"
		if broad {
			q = q.Where("users.name LIKE ? OR doctors.specialization LIKE ? OR departments.name LIKE ?", like, like, like)
		} else {
			q = q.Where("users.name LIKE ?", like)
		}
	}

	var doctors []models.Doctor
	if err := q.Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}
