package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-app-server/internal/scheduling"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name     string
		err      error
		status   int
		conflict string
	}{
		{"not found", fmt.Errorf("doctor x: %w", scheduling.ErrNotFound), http.StatusNotFound, ""},
		{"unauthorized", fmt.Errorf("cancel: %w", scheduling.ErrUnauthorized), http.StatusForbidden, ""},
		{"malformed", fmt.Errorf("%w: bad date", scheduling.ErrMalformedInput), http.StatusBadRequest, ""},
		{"transition", fmt.Errorf("cancel: %w", scheduling.ErrInvalidTransition), http.StatusConflict, ""},
		{"doctor slot", &scheduling.SlotConflictError{Kind: scheduling.ConflictDoctorSlot}, http.StatusConflict, "doctor_slot"},
		{"patient own", &scheduling.SlotConflictError{Kind: scheduling.ConflictPatientOwn}, http.StatusConflict, "patient_own"},
		{"overlap", &scheduling.SlotConflictError{Kind: scheduling.ConflictOverlap}, http.StatusConflict, "overlap"},
		{"busy", fmt.Errorf("lock: %w", scheduling.ErrBookingBusy), http.StatusServiceUnavailable, ""},
		{"other", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			assert.Equal(t, tc.status, RespondError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)

			var body ResponseData
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, tc.conflict, body.Conflict)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRespondError_BookingBusyAsksForRetry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondError(c, fmt.Errorf("lock: %w", scheduling.ErrBookingBusy))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.NotContains(t, rec.Body.String(), "already booked")
}

func TestBindAndValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type payload struct {
		Email string `json:"email" binding:"required,email"`
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var p payload
	assert.False(t, BindAndValidate(c, &p))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@example.com"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	assert.True(t, BindAndValidate(c, &p))
	assert.Equal(t, "a@example.com", p.Email)
}
