package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/scheduling"
	"hospital-app-server/internal/utils"
)

// AppointmentHandler handles booking, the appointment lifecycle and
// treatment records.
type AppointmentHandler struct {
	Service *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(service *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{Service: service}
}

// CreateAppointmentRequest is a patient's booking of a doctor slot.
type CreateAppointmentRequest struct {
	DoctorID  string `json:"doctorId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	TimeStart string `json:"timeStart" binding:"required"`
	TimeEnd   string `json:"timeEnd" binding:"required"`
}

// CreateAppointment books a slot for the signed-in patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Service.Book(c.Request.Context(), actor, scheduling.BookingRequest{
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		TimeStart: req.TimeStart,
		TimeEnd:   req.TimeEnd,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", newAppointmentView(appt))
}

// GetAppointmentByID returns one appointment to its patient, its doctor or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	appt, err := h.Service.GetAppointment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointment fetched successfully", newAppointmentView(appt))
}

// CancelAppointment cancels a Booked appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	appt, err := h.Service.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled", newAppointmentView(appt))
}

// CompleteAppointment marks the doctor's appointment as Completed.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	appt, err := h.Service.MarkCompleted(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointment marked as completed", newAppointmentView(appt))
}

// TreatmentRequest is the doctor's record of a visit.
type TreatmentRequest struct {
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	VisitType    string `json:"visitType"`
	TestsDone    string `json:"testsDone"`
	Medicines    string `json:"medicines"`
}

// RecordTreatment creates or overwrites the treatment of an appointment.
func (h *AppointmentHandler) RecordTreatment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req TreatmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	treatment, err := h.Service.RecordTreatment(c.Request.Context(), actor, c.Param("id"), scheduling.TreatmentInput{
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		VisitType:    req.VisitType,
		TestsDone:    req.TestsDone,
		Medicines:    req.Medicines,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Treatment saved", newTreatmentView(treatment))
}

// GetDoctorAppointments lists the signed-in doctor's upcoming appointments.
func (h *AppointmentHandler) GetDoctorAppointments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	appts, err := h.Service.ListUpcomingForDoctor(c.Request.Context(), actor.ProfileID, h.Service.Today())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", newAppointmentViews(appts))
}

// GetPatientAppointments lists the signed-in patient's upcoming appointments.
func (h *AppointmentHandler) GetPatientAppointments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	appts, err := h.Service.ListUpcomingForPatient(c.Request.Context(), actor.ProfileID, h.Service.Today())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", newAppointmentViews(appts))
}

// GetPatientCompleted lists the signed-in patient's completed appointments,
// newest first.
func (h *AppointmentHandler) GetPatientCompleted(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	appts, err := h.Service.ListCompletedForPatient(c.Request.Context(), actor.ProfileID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "History fetched successfully", newAppointmentViews(appts))
}

// GetPatientVisits returns the signed-in patient's decoded treatment history.
func (h *AppointmentHandler) GetPatientVisits(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	history, err := h.Service.GetHistory(c.Request.Context(), actor, actor.ProfileID, "")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Visit history fetched successfully", history)
}

// GetPatientHistory returns a patient's treatment history. Doctors only see
// their own visits; admins may narrow by ?doctorId=.
func (h *AppointmentHandler) GetPatientHistory(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	history, err := h.Service.GetHistory(c.Request.Context(), actor, c.Param("id"), c.Query("doctorId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Patient history fetched successfully", history)
}
