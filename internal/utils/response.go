package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/scheduling"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status   int         `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Conflict string      `json:"conflict,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// Conflict sends a 409 Conflict error response.
func Conflict(c *gin.Context, errorMessage string) {
	Error(c, http.StatusConflict, errorMessage)
}

// TooManyRequests sends a 429 Too Many Requests error response.
func TooManyRequests(c *gin.Context, errorMessage string) {
	Error(c, http.StatusTooManyRequests, errorMessage)
}

// ServiceUnavailable sends a 503 Service Unavailable error response.
func ServiceUnavailable(c *gin.Context, errorMessage string) {
	Error(c, http.StatusServiceUnavailable, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}

// conflictMessages are shown to patients when a booking is refused.
var conflictMessages = map[scheduling.ConflictKind]string{
	scheduling.ConflictDoctorSlot: "This slot is already booked. Please choose another time.",
	scheduling.ConflictPatientOwn: "You already have an appointment with this doctor on that day.",
	scheduling.ConflictOverlap:    "This time overlaps another appointment of the doctor.",
}

// RespondError translates core errors into the matching HTTP response.
// It returns the status code it sent.
func RespondError(c *gin.Context, err error) int {
	switch {
	case errors.Is(err, scheduling.ErrSlotConflict):
		kind := scheduling.ConflictKindOf(err)
		c.JSON(http.StatusConflict, ResponseData{
			Status:   http.StatusConflict,
			Message:  "An error occurred",
			Error:    conflictMessages[kind],
			Conflict: kind.String(),
		})
		return http.StatusConflict
	case errors.Is(err, scheduling.ErrNotFound):
		NotFound(c, err.Error())
		return http.StatusNotFound
	case errors.Is(err, scheduling.ErrUnauthorized):
		Forbidden(c, err.Error())
		return http.StatusForbidden
	case errors.Is(err, scheduling.ErrMalformedInput):
		BadRequest(c, err.Error())
		return http.StatusBadRequest
	case errors.Is(err, scheduling.ErrInvalidTransition):
		Conflict(c, err.Error())
		return http.StatusConflict
	case errors.Is(err, scheduling.ErrBookingBusy):
		c.Header("Retry-After", "1")
		ServiceUnavailable(c, "Another booking for this doctor and day is in progress. Please try again.")
		return http.StatusServiceUnavailable
	default:
		InternalServerError(c, err.Error())
		return http.StatusInternalServerError
	}
}
