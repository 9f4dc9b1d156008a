package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hospital-app-server/internal/config"
	"hospital-app-server/internal/handlers"
	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/scheduling"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, service *scheduling.Service, log *zap.Logger) {
	authHandler := handlers.NewAuthHandler(db, cfg, log)
	doctorHandler := handlers.NewDoctorHandler(db, service)
	patientHandler := handlers.NewPatientHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(service)
	adminHandler := handlers.NewAdminHandler(db, service, log)

	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.SearchDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctor)
			doctorRoutes.GET("/:id/availability", doctorHandler.GetBookingView)
		}

		// The signed-in doctor's own workspace.
		doctorSelf := private.Group("/doctor")
		doctorSelf.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
		{
			doctorSelf.GET("/availability", doctorHandler.GetMyAvailability)
			doctorSelf.PUT("/availability", doctorHandler.UpdateMyAvailability)
			doctorSelf.GET("/appointments", appointmentHandler.GetDoctorAppointments)
			doctorSelf.GET("/patients", doctorHandler.GetDoctorPatients)
			doctorSelf.GET("/patients/:id/history", appointmentHandler.GetPatientHistory)
		}

		patientSelf := private.Group("/patient")
		patientSelf.Use(middleware.RoleAuthMiddleware(models.RolePatient))
		{
			patientSelf.GET("/appointments", appointmentHandler.GetPatientAppointments)
			patientSelf.GET("/history", appointmentHandler.GetPatientCompleted)
			patientSelf.GET("/visits", appointmentHandler.GetPatientVisits)
			patientSelf.PUT("/profile", patientHandler.UpdatePatientProfile)
		}

		// Ownership checks live in the scheduling service.
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.CompleteAppointment)
			appointmentRoutes.PUT("/:id/treatment", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.RecordTreatment)
		}

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.GET("/dashboard", adminHandler.Dashboard)
			adminRoutes.GET("/search", adminHandler.Search)
			adminRoutes.POST("/departments", adminHandler.CreateDepartment)
			adminRoutes.GET("/departments", adminHandler.ListDepartments)
			adminRoutes.POST("/doctors", adminHandler.CreateDoctor)
			adminRoutes.PUT("/doctors/:id", adminHandler.UpdateDoctor)
			adminRoutes.DELETE("/doctors/:id", adminHandler.DeleteDoctor)
			adminRoutes.DELETE("/patients/:id", adminHandler.DeletePatient)
			adminRoutes.GET("/patients/:id/history", appointmentHandler.GetPatientHistory)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
