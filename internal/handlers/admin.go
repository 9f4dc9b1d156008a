package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/scheduling"
	"hospital-app-server/internal/utils"
)

// AdminHandler handles the administrator's management requests.
type AdminHandler struct {
	DB      *gorm.DB
	Service *scheduling.Service
	Log     *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB, service *scheduling.Service, log *zap.Logger) *AdminHandler {
	return &AdminHandler{DB: db, Service: service, Log: log}
}

// DashboardResponse summarizes the hospital for the admin dashboard.
type DashboardResponse struct {
	TotalDoctors  int               `json:"totalDoctors"`
	TotalPatients int               `json:"totalPatients"`
	Doctors       []DoctorView      `json:"doctors"`
	Patients      []PatientView     `json:"patients"`
	Upcoming      []AppointmentView `json:"upcoming"`
}

// Dashboard lists every doctor and patient and all upcoming appointments.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	doctors, err := searchDoctors(h.DB, "", false)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	patients, err := searchPatients(h.DB, "")
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	upcoming, err := h.Service.ListUpcoming(c.Request.Context(), h.Service.Today())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Dashboard fetched successfully", DashboardResponse{
		TotalDoctors:  len(doctors),
		TotalPatients: len(patients),
		Doctors:       newDoctorViews(doctors),
		Patients:      newPatientViews(patients),
		Upcoming:      newAppointmentViews(upcoming),
	})
}

// SearchResponse holds the doctors and patients matching a name query.
type SearchResponse struct {
	Query    string        `json:"query"`
	Doctors  []DoctorView  `json:"doctors"`
	Patients []PatientView `json:"patients"`
}

// Search finds doctors and patients whose name contains ?query=.
func (h *AdminHandler) Search(c *gin.Context) {
	query := c.Query("query")

	doctors, err := searchDoctors(h.DB, query, false)
	if err != nil {
		utils.InternalServerError(c, "Failed to search doctors: "+err.Error())
		return
	}
	patients, err := searchPatients(h.DB, query)
	if err != nil {
		utils.InternalServerError(c, "Failed to search patients: "+err.Error())
		return
	}

	utils.Success(c, "Search completed", SearchResponse{
		Query:    query,
		Doctors:  newDoctorViews(doctors),
		Patients: newPatientViews(patients),
	})
}

// CreateDepartmentRequest represents the request body for a new department.
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateDepartment adds a department with a unique name.
func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var count int64
	if err := h.DB.Model(&models.Department{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if count > 0 {
		utils.BadRequest(c, "Department already exists")
		return
	}

	dept := models.Department{Name: req.Name, Description: req.Description}
	if err := h.DB.Create(&dept).Error; err != nil {
		utils.InternalServerError(c, "Failed to create department: "+err.Error())
		return
	}

	utils.Created(c, "Department created successfully", dept)
}

// ListDepartments returns every department by name.
func (h *AdminHandler) ListDepartments(c *gin.Context) {
	var depts []models.Department
	if err := h.DB.Order("name asc").Find(&depts).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch departments: "+err.Error())
		return
	}
	utils.Success(c, "Departments fetched successfully", depts)
}

// CreateDoctorRequest represents the request body for creating a doctor account.
type CreateDoctorRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	Specialization string `json:"specialization"`
	DepartmentID   string `json:"departmentId"`
}

// CreateDoctor creates a doctor account together with its doctor profile.
func (h *AdminHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	taken, err := emailTaken(h.DB, req.Email)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if taken {
		utils.BadRequest(c, "User with this email already exists")
		return
	}

	deptID, ok := h.resolveDepartment(c, req.DepartmentID)
	if !ok {
		return
	}

	user := models.User{Name: req.Name, Email: req.Email, Role: models.RoleDoctor}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	doctor := models.Doctor{Specialization: req.Specialization, DepartmentID: deptID}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		doctor.UserID = user.ID
		return tx.Create(&doctor).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create doctor: "+err.Error())
		return
	}

	h.Log.Info("doctor created", zap.String("doctor_id", doctor.ID), zap.String("user_id", user.ID))
	if err := h.DB.Preload("User").Preload("Department").First(&doctor, "id = ?", doctor.ID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	utils.Created(c, "Doctor created successfully", newDoctorView(&doctor))
}

// UpdateDoctorRequest holds the editable doctor fields. An empty
// departmentId unassigns the department; omitted fields keep their value.
type UpdateDoctorRequest struct {
	Name           *string `json:"name"`
	Specialization *string `json:"specialization"`
	DepartmentID   *string `json:"departmentId"`
}

// UpdateDoctor edits a doctor's name, specialization or department.
func (h *AdminHandler) UpdateDoctor(c *gin.Context) {
	var req UpdateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	updates := map[string]interface{}{}
	if req.Specialization != nil {
		updates["specialization"] = *req.Specialization
	}
	if req.DepartmentID != nil {
		deptID, ok := h.resolveDepartment(c, *req.DepartmentID)
		if !ok {
			return
		}
		updates["department_id"] = deptID
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Doctor{}).Where("id = ?", doctor.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Name != nil && *req.Name != "" {
			if err := tx.Model(&models.User{}).Where("id = ?", doctor.UserID).Update("name", *req.Name).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}

	if err := h.DB.Preload("User").Preload("Department").First(&doctor, "id = ?", doctor.ID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	utils.Success(c, "Doctor updated successfully", newDoctorView(&doctor))
}

// DeleteDoctor removes a doctor, their account and all their appointments.
func (h *AdminHandler) DeleteDoctor(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteDoctor(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor deleted successfully", nil)
}

// DeletePatient removes a patient, their account and all their appointments.
func (h *AdminHandler) DeletePatient(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.Service.DeletePatient(c.Request.Context(), actor, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Patient deleted successfully", nil)
}

// resolveDepartment maps an optional department id to the column value,
// answering 400 when the department does not exist.
func (h *AdminHandler) resolveDepartment(c *gin.Context, id string) (*string, bool) {
	if id == "" {
		return nil, true
	}
	var count int64
	if err := h.DB.Model(&models.Department{}).Where("id = ?", id).Count(&count).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return nil, false
	}
	if count == 0 {
		utils.BadRequest(c, "Department not found")
		return nil, false
	}
	return &id, true
}

func newPatientViews(patients []models.Patient) []PatientView {
	views := make([]PatientView, 0, len(patients))
	for i := range patients {
		views = append(views, newPatientView(&patients[i]))
	}
	return views
}

func searchPatients(db *gorm.DB, query string) ([]models.Patient, error) {
	q := db.Model(&models.Patient{}).
		Joins("JOIN users ON users.id = patients.user_id").
		Preload("User").
		Order("users.name asc")
	if query != "" {
		q = q.Where("users.name LIKE ?", "%"+query+"%")
	}

	var patients []models.Patient
	if err := q.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}
