package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/scheduling"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedDoctor(t *testing.T, db *gorm.DB, name string, dept *models.Department) *models.Doctor {
	t.Helper()
	user := models.User{Name: name, Email: name + "@example.com", Role: models.RoleDoctor}
	require.NoError(t, user.SetPassword("secret1"))
	require.NoError(t, db.Create(&user).Error)
	doctor := models.Doctor{UserID: user.ID, Specialization: "Diagnostics"}
	if dept != nil {
		doctor.DepartmentID = &dept.ID
	}
	require.NoError(t, db.Create(&doctor).Error)
	return &doctor
}

func seedPatient(t *testing.T, db *gorm.DB, name string) *models.Patient {
	t.Helper()
	user := models.User{Name: name, Email: name + "@example.com", Role: models.RolePatient}
	require.NoError(t, user.SetPassword("secret1"))
	require.NoError(t, db.Create(&user).Error)
	patient := models.Patient{UserID: user.ID}
	require.NoError(t, db.Create(&patient).Error)
	return &patient
}

func date(s string) time.Time {
	d, err := scheduling.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedAppointment(t *testing.T, repo *SchedulingRepository, p *models.Patient, d *models.Doctor, day, start string, status models.AppointmentStatus) *models.Appointment {
	t.Helper()
	appt := &models.Appointment{
		PatientID: p.ID,
		DoctorID:  d.ID,
		Date:      date(day),
		TimeStart: start,
		TimeEnd:   start,
		Status:    status,
	}
	require.NoError(t, repo.CreateAppointment(context.Background(), appt))
	return appt
}

func TestGetDoctorAndPatient(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchedulingRepository(db)
	ctx := context.Background()

	dept := models.Department{Name: "Cardiology"}
	require.NoError(t, db.Create(&dept).Error)
	d := seedDoctor(t, db, "house", &dept)
	p := seedPatient(t, db, "alice")

	gotDoctor, err := repo.GetDoctor(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "house", gotDoctor.User.Name)
	assert.Equal(t, "Cardiology", gotDoctor.DepartmentName())

	gotPatient, err := repo.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", gotPatient.User.Name)

	_, err = repo.GetDoctor(ctx, "missing")
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
	_, err = repo.GetPatient(ctx, "missing")
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestSaveDoctorAvailability(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchedulingRepository(db)
	ctx := context.Background()
	d := seedDoctor(t, db, "house", nil)

	raw, err := scheduling.EncodeAvailability(scheduling.Availability{"day_1": {Morning: "09:00-12:00"}})
	require.NoError(t, err)
	require.NoError(t, repo.SaveDoctorAvailability(ctx, d.ID, raw))

	got, err := repo.GetDoctor(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00-12:00", scheduling.DecodeAvailability(got.Availability)["day_1"].Morning)

	err = repo.SaveDoctorAvailability(ctx, "missing", raw)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestSlotLookups(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchedulingRepository(db)
	ctx := context.Background()
	d := seedDoctor(t, db, "house", nil)
	alice := seedPatient(t, db, "alice")
	bob := seedPatient(t, db, "bob")

	booked := seedAppointment(t, repo, alice, d, "2024-01-02", "09:00", models.StatusBooked)
	seedAppointment(t, repo, bob, d, "2024-01-02", "10:00", models.StatusCancelled)

	got, err := repo.FindBookedAtSlot(ctx, d.ID, date("2024-01-02"), "09:00")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, booked.ID, got.ID)

	got, err = repo.FindBookedAtSlot(ctx, d.ID, date("2024-01-02"), "10:00")
	require.NoError(t, err)
	assert.Nil(t, got, "cancelled appointments free the slot")

	got, err = repo.FindBookedAtSlot(ctx, d.ID, date("2024-01-03"), "09:00")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.FindBookedForPatientOnDate(ctx, d.ID, alice.ID, date("2024-01-02"))
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = repo.FindBookedForPatientOnDate(ctx, d.ID, bob.ID, date("2024-01-02"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateAppointmentStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchedulingRepository(db)
	ctx := context.Background()
	d := seedDoctor(t, db, "house", nil)
	p := seedPatient(t, db, "alice")
	appt := seedAppointment(t, repo, p, d, "2024-01-02", "09:00", models.StatusBooked)

	require.NoError(t, repo.UpdateAppointmentStatus(ctx, appt.ID, models.StatusCancelled))
	got, err := repo.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, "2024-01-02", got.DateString())

	err = repo.UpdateAppointmentStatus(ctx, "missing", models.StatusCancelled)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestListAppointments(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchedulingRepository(db)
	ctx := context.Background()
	house := seedDoctor(t, db, "house", nil)
	wilson := seedDoctor(t, db, "wilson", nil)
	p := seedPatient(t, db, "alice")

	late := seedAppointment(t, repo, p, house, "2024-01-05", "09:00", models.StatusBooked)
	early := seedAppointment(t, repo, p, house, "2024-01-02", "17:00", models.StatusBooked)
	morning := seedAppointment(t, repo, p, wilson, "2024-01-02", "09:00", models.StatusCompleted)
	seedAppointment(t, repo, p, house, "2023-12-20", "09:00", models.StatusBooked)

	require.NoError(t, repo.SaveTreatment(ctx, &models.Treatment{AppointmentID: morning.ID, Diagnosis: "Flu"}))

	from := date("2024-01-01")
	upcoming, err := repo.ListAppointments(ctx, scheduling.AppointmentFilter{
		DoctorID: house.ID,
		FromDate: &from,
		Statuses: []models.AppointmentStatus{models.StatusBooked},
	})
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, early.ID, upcoming[0].ID)
	assert.Equal(t, late.ID, upcoming[1].ID)
	assert.Equal(t, "house", upcoming[0].Doctor.User.Name)
	assert.Equal(t, "alice", upcoming[0].Patient.User.Name)

	all, err := repo.ListAppointments(ctx, scheduling.AppointmentFilter{PatientID: p.ID, FromDate: &from})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, morning.ID, all[0].ID)
	assert.Equal(t, early.ID, all[1].ID)

	newest, err := repo.ListAppointments(ctx, scheduling.AppointmentFilter{PatientID: p.ID, NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, newest, 4)
	assert.Equal(t, late.ID, newest[0].ID)

	treated, err := repo.ListAppointments(ctx, scheduling.AppointmentFilter{PatientID: p.ID, WithTreatment: true})
	require.NoError(t, err)
	require.Len(t, treated, 1)
	require.NotNil(t, treated[0].Treatment)
	assert.Equal(t, "Flu", treated[0].Treatment.Diagnosis)
}

func TestTreatmentUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchedulingRepository(db)
	ctx := context.Background()
	d := seedDoctor(t, db, "house", nil)
	p := seedPatient(t, db, "alice")
	appt := seedAppointment(t, repo, p, d, "2024-01-02", "09:00", models.StatusBooked)

	_, err := repo.GetTreatmentByAppointment(ctx, appt.ID)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)

	treatment := &models.Treatment{AppointmentID: appt.ID, Diagnosis: "Flu"}
	require.NoError(t, repo.SaveTreatment(ctx, treatment))

	treatment.Diagnosis = "Cold"
	require.NoError(t, repo.SaveTreatment(ctx, treatment))

	var count int64
	require.NoError(t, db.Model(&models.Treatment{}).Where("appointment_id = ?", appt.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.GetTreatmentByAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cold", got.Diagnosis)
}

func TestDeleteDoctorCascade(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchedulingRepository(db)
	ctx := context.Background()
	house := seedDoctor(t, db, "house", nil)
	wilson := seedDoctor(t, db, "wilson", nil)
	p := seedPatient(t, db, "alice")

	gone := seedAppointment(t, repo, p, house, "2024-01-02", "09:00", models.StatusCompleted)
	require.NoError(t, repo.SaveTreatment(ctx, &models.Treatment{AppointmentID: gone.ID, Diagnosis: "Flu"}))
	require.NoError(t, db.Create(&models.RefreshToken{UserID: house.UserID, Token: "t", ExpiresAt: time.Now().Add(time.Hour)}).Error)
	stays := seedAppointment(t, repo, p, wilson, "2024-01-02", "09:00", models.StatusBooked)

	require.NoError(t, repo.DeleteDoctorCascade(ctx, house.ID))

	assertCount(t, db, &models.Doctor{}, "id = ?", house.ID, 0)
	assertCount(t, db, &models.User{}, "id = ?", house.UserID, 0)
	assertCount(t, db, &models.RefreshToken{}, "user_id = ?", house.UserID, 0)
	assertCount(t, db, &models.Appointment{}, "id = ?", gone.ID, 0)
	assertCount(t, db, &models.Treatment{}, "appointment_id = ?", gone.ID, 0)
	assertCount(t, db, &models.Appointment{}, "id = ?", stays.ID, 1)
	assertCount(t, db, &models.Patient{}, "id = ?", p.ID, 1)

	err := repo.DeleteDoctorCascade(ctx, house.ID)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestDeletePatientCascade(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchedulingRepository(db)
	ctx := context.Background()
	d := seedDoctor(t, db, "house", nil)
	alice := seedPatient(t, db, "alice")
	bob := seedPatient(t, db, "bob")

	gone := seedAppointment(t, repo, alice, d, "2024-01-02", "09:00", models.StatusCompleted)
	require.NoError(t, repo.SaveTreatment(ctx, &models.Treatment{AppointmentID: gone.ID}))
	stays := seedAppointment(t, repo, bob, d, "2024-01-02", "10:00", models.StatusBooked)

	require.NoError(t, repo.DeletePatientCascade(ctx, alice.ID))

	assertCount(t, db, &models.Patient{}, "id = ?", alice.ID, 0)
	assertCount(t, db, &models.User{}, "id = ?", alice.UserID, 0)
	assertCount(t, db, &models.Appointment{}, "id = ?", gone.ID, 0)
	assertCount(t, db, &models.Treatment{}, "appointment_id = ?", gone.ID, 0)
	assertCount(t, db, &models.Appointment{}, "id = ?", stays.ID, 1)
	assertCount(t, db, &models.Doctor{}, "id = ?", d.ID, 1)
}

func TestServiceOnGormRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchedulingRepository(db)
	svc := scheduling.NewService(repo, nil)
	ctx := context.Background()
	d := seedDoctor(t, db, "house", nil)
	alice := seedPatient(t, db, "alice")
	bob := seedPatient(t, db, "bob")

	asPatient := func(p *models.Patient) scheduling.Actor {
		return scheduling.Actor{UserID: p.UserID, ProfileID: p.ID, Role: models.RolePatient}
	}
	req := scheduling.BookingRequest{DoctorID: d.ID, Date: "2024-01-02", TimeStart: "9:00", TimeEnd: "10:00"}

	appt, err := svc.Book(ctx, asPatient(alice), req)
	require.NoError(t, err)

	_, err = svc.Book(ctx, asPatient(bob), req)
	assert.Equal(t, scheduling.ConflictDoctorSlot, scheduling.ConflictKindOf(err))

	req.TimeStart = "11:00"
	_, err = svc.Book(ctx, asPatient(alice), req)
	assert.Equal(t, scheduling.ConflictPatientOwn, scheduling.ConflictKindOf(err))

	_, err = svc.Cancel(ctx, asPatient(alice), appt.ID)
	require.NoError(t, err)

	req.TimeStart = "09:00"
	_, err = svc.Book(ctx, asPatient(bob), req)
	assert.NoError(t, err)
}

func assertCount(t *testing.T, db *gorm.DB, model interface{}, where string, arg string, want int64) {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(where, arg).Count(&count).Error)
	assert.Equal(t, want, count, "%T where %s", model, where)
}
