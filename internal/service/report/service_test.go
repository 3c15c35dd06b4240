package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository/memory"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

func seedAppointment(t *testing.T, store *memory.Store, doctorID uuid.UUID, at time.Time, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	appt := &model.Appointment{
		Base:      model.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		PatientID: uuid.New(),
		DoctorID:  doctorID,
		StartTime: at,
		Status:    status,
		Source:    model.SourceFrontdesk,
	}
	entry := &model.StatusHistoryEntry{
		ID:            uuid.New(),
		AppointmentID: appt.ID,
		NewStatus:     model.AppointmentStatusBooked,
		ChangedAt:     time.Now(),
	}
	require.NoError(t, store.Appointments().Create(context.Background(), appt, entry, nil))
	return appt
}

func TestDashboardMetrics(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	doctor := &model.Doctor{FullName: "Dr. Nisha Patel", Department: "ENT", IsActive: true}
	require.NoError(t, store.Doctors().Create(ctx, doctor))

	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	completed := seedAppointment(t, store, doctor.ID, day.Add(9*time.Hour), model.AppointmentStatusCompleted)
	seedAppointment(t, store, doctor.ID, day.Add(10*time.Hour), model.AppointmentStatusCancelled)
	seedAppointment(t, store, doctor.ID, day.Add(11*time.Hour), model.AppointmentStatusNoShow)
	seedAppointment(t, store, doctor.ID, day.Add(12*time.Hour), model.AppointmentStatusBooked)

	require.NoError(t, store.Payments().Create(ctx, &model.Payment{
		AppointmentID: completed.ID,
		Amount:        500,
		Status:        model.PaymentStatusSuccess,
	}))

	svc := NewService(store.Reports(), store.Payments())
	metrics, err := svc.DashboardMetrics(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 4, metrics.TotalAppointments)
	assert.Equal(t, 1, metrics.CompletedAppointments)
	assert.Equal(t, 1, metrics.CancelledAppointments)
	assert.Equal(t, 1, metrics.NoShowCount)
	assert.Equal(t, float64(500), metrics.TotalRevenue)
}

func TestDashboardMetricsRejectsInvertedRange(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Reports(), store.Payments())

	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	_, err := svc.DashboardMetrics(context.Background(), day, day)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestPaymentForAppointment(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	doctor := &model.Doctor{FullName: "Dr. Nisha Patel", Department: "ENT", IsActive: true}
	require.NoError(t, store.Doctors().Create(ctx, doctor))

	appt := seedAppointment(t, store, doctor.ID, time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC), model.AppointmentStatusCompleted)
	require.NoError(t, store.Payments().Create(ctx, &model.Payment{
		AppointmentID: appt.ID,
		Amount:        750,
		Status:        model.PaymentStatusSuccess,
	}))

	svc := NewService(store.Reports(), store.Payments())

	payment, err := svc.PaymentForAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(750), payment.Amount)

	_, err = svc.PaymentForAppointment(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestDailyReportGroupsByDoctor(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := &model.Doctor{FullName: "Dr. Anand Bose", Department: "Medicine", IsActive: true}
	second := &model.Doctor{FullName: "Dr. Zara Khan", Department: "Pediatrics", IsActive: true}
	require.NoError(t, store.Doctors().Create(ctx, first))
	require.NoError(t, store.Doctors().Create(ctx, second))

	day := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	seedAppointment(t, store, first.ID, day.Add(9*time.Hour), model.AppointmentStatusCompleted)
	seedAppointment(t, store, first.ID, day.Add(10*time.Hour), model.AppointmentStatusBooked)
	// Out of range, must not count.
	seedAppointment(t, store, second.ID, day.AddDate(0, 0, 1), model.AppointmentStatusCompleted)

	svc := NewService(store.Reports(), store.Payments())
	reports, err := svc.DailyReport(ctx, day)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "Dr. Anand Bose", reports[0].DoctorName)
	assert.Equal(t, 2, reports[0].Total)
	assert.Equal(t, 1, reports[0].Completed)
	assert.Equal(t, 0, reports[1].Total)
}
