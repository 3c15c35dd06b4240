package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository/memory"
	"github.com/careloop/hms-api/internal/service/availability"
	apperrors "github.com/careloop/hms-api/pkg/errors"
	"github.com/careloop/hms-api/pkg/locker"
	"github.com/careloop/hms-api/pkg/logger"
)

type fixture struct {
	store   *memory.Store
	svc     *Service
	doctor  *model.Doctor
	patient *model.Patient
}

// newFixture seeds one active doctor with a Monday 09:00-10:00 window
// capped at two patients.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	ctx := context.Background()

	doctor := &model.Doctor{FullName: "Dr. Vikram Shah", Department: "Cardiology", IsActive: true}
	require.NoError(t, store.Doctors().Create(ctx, doctor))

	patient := &model.Patient{FullName: "Ravi Kumar", MobileNumber: "9876543210", Gender: model.GenderMale}
	require.NoError(t, store.Patients().Create(ctx, patient))

	require.NoError(t, store.Schedules().CreateSlot(ctx, &model.WeeklySlot{
		DoctorID:    doctor.ID,
		Weekday:     1,
		StartTime:   "09:00",
		EndTime:     "10:00",
		MaxPatients: 2,
		IsActive:    true,
	}))

	resolver := availability.NewService(store.Schedules(), store.Appointments(), store.Doctors())
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := NewService(store.Appointments(), resolver, locker.NewLocalLocker(), log)

	return &fixture{store: store, svc: svc, doctor: doctor, patient: patient}
}

// nextMonday returns the next future Monday at the given clock time.
func nextMonday(hour, minute int) time.Time {
	d := time.Now().AddDate(0, 0, 1)
	for model.WeekdayOf(d) != model.WeekdayMonday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

func (f *fixture) book(t *testing.T, patientID uuid.UUID, at time.Time) *model.Appointment {
	t.Helper()
	appt, err := f.svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patientID,
		DoctorID:  f.doctor.ID,
		StartTime: at,
		Source:    model.SourceFrontdesk,
	})
	require.NoError(t, err)
	return appt
}

func TestBook(t *testing.T) {
	f := newFixture(t)
	nine := nextMonday(9, 0)

	appt := f.book(t, f.patient.ID, nine)

	assert.Equal(t, model.AppointmentStatusBooked, appt.Status)
	assert.True(t, appt.StartTime.Equal(nine))

	history, err := f.svc.ListHistory(context.Background(), appt.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].OldStatus)
	assert.Equal(t, model.AppointmentStatusBooked, history[0].NewStatus)

	events, err := f.store.Outbox().GetPendingWithLock(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentBooked, events[0].EventType)
}

func TestBookExhaustsCapacity(t *testing.T) {
	f := newFixture(t)
	nine := nextMonday(9, 0)

	f.book(t, f.patient.ID, nine)
	f.book(t, uuid.New(), nine)

	_, err := f.svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: uuid.New(),
		DoctorID:  f.doctor.ID,
		StartTime: nine,
		Source:    model.SourceWhatsapp,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindCapacity))
}

func TestBookOutsideAnyWindow(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: nextMonday(14, 0),
		Source:    model.SourceFrontdesk,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindCapacity))
}

func TestBookDuplicateRejected(t *testing.T) {
	f := newFixture(t)
	nine := nextMonday(9, 0)

	f.book(t, f.patient.ID, nine)

	_, err := f.svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: nine,
		Source:    model.SourcePhoneCall,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}

func TestCancelFreesCapacityForRebooking(t *testing.T) {
	f := newFixture(t)
	nine := nextMonday(9, 0)

	f.book(t, f.patient.ID, nine)
	second := f.book(t, uuid.New(), nine)

	_, err := f.svc.UpdateStatus(context.Background(), second.ID, model.AppointmentStatusCancelled, "patient request", "frontdesk")
	require.NoError(t, err)

	// The freed point accepts a new patient again.
	f.book(t, uuid.New(), nine)
}

func TestUpdateStatusTerminalStates(t *testing.T) {
	f := newFixture(t)
	nine := nextMonday(9, 0)
	appt := f.book(t, f.patient.ID, nine)

	updated, err := f.svc.UpdateStatus(context.Background(), appt.ID, model.AppointmentStatusCompleted, "", "dr.shah")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)

	// Terminal appointments reject further transitions.
	_, err = f.svc.UpdateStatus(context.Background(), appt.ID, model.AppointmentStatusNoShow, "", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))
}

func TestUpdateStatusRejectsRescheduledTarget(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, f.patient.ID, nextMonday(9, 0))

	_, err := f.svc.UpdateStatus(context.Background(), appt.ID, model.AppointmentStatusRescheduled, "moved", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, f.patient.ID, nextMonday(9, 0))

	_, err := f.svc.UpdateStatus(context.Background(), appt.ID, model.AppointmentStatusCancelled, "", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestUpdateStatusUnknownAppointment(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), model.AppointmentStatusCompleted, "", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	nine := nextMonday(9, 0)
	nineThirty := nextMonday(9, 30)

	appt := f.book(t, f.patient.ID, nine)

	result, err := f.svc.Reschedule(context.Background(), appt.ID, nineThirty, "doctor unavailable", "frontdesk")
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusRescheduled, result.Old.Status)
	require.NotNil(t, result.Old.RescheduleReason)
	assert.Equal(t, "doctor unavailable", *result.Old.RescheduleReason)

	assert.Equal(t, model.AppointmentStatusBooked, result.New.Status)
	assert.True(t, result.New.StartTime.Equal(nineThirty))
	require.NotNil(t, result.New.ParentAppointmentID)
	assert.Equal(t, appt.ID, *result.New.ParentAppointmentID)

	oldHistory, err := f.svc.ListHistory(context.Background(), appt.ID)
	require.NoError(t, err)
	require.Len(t, oldHistory, 2)
	assert.Equal(t, model.AppointmentStatusRescheduled, oldHistory[1].NewStatus)

	newHistory, err := f.svc.ListHistory(context.Background(), result.New.ID)
	require.NoError(t, err)
	require.Len(t, newHistory, 1)
	assert.Nil(t, newHistory[0].OldStatus)
}

func TestRescheduleRequiresReason(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, f.patient.ID, nextMonday(9, 0))

	_, err := f.svc.Reschedule(context.Background(), appt.ID, nextMonday(9, 30), "", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestRescheduleRejectsNonBooked(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, f.patient.ID, nextMonday(9, 0))

	_, err := f.svc.UpdateStatus(context.Background(), appt.ID, model.AppointmentStatusCancelled, "patient request", "")
	require.NoError(t, err)

	_, err = f.svc.Reschedule(context.Background(), appt.ID, nextMonday(9, 30), "try again", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))
}

func TestRescheduleIntoFullPointRejected(t *testing.T) {
	f := newFixture(t)
	nine := nextMonday(9, 0)
	nineThirty := nextMonday(9, 30)

	appt := f.book(t, f.patient.ID, nine)
	f.book(t, uuid.New(), nineThirty)
	f.book(t, uuid.New(), nineThirty)

	_, err := f.svc.Reschedule(context.Background(), appt.ID, nineThirty, "patient request", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindCapacity))
}

func TestScheduleFollowup(t *testing.T) {
	f := newFixture(t)
	nine := nextMonday(9, 0)
	origin := f.book(t, f.patient.ID, nine)

	followup, err := f.svc.ScheduleFollowup(context.Background(), origin.ID, &model.FollowupRequest{
		DoctorID:  f.doctor.ID,
		StartTime: nextMonday(9, 30),
	})
	require.NoError(t, err)

	assert.Equal(t, origin.PatientID, followup.PatientID)
	assert.Equal(t, model.SourceOther, followup.Source)
	require.NotNil(t, followup.FollowupOfAppointmentID)
	assert.Equal(t, origin.ID, *followup.FollowupOfAppointmentID)

	// The origin keeps its own status.
	reloaded, err := f.svc.Get(context.Background(), origin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusBooked, reloaded.Status)
}

func TestHistoryReplayMatchesStoredStatus(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, f.patient.ID, nextMonday(9, 0))

	_, err := f.svc.UpdateStatus(context.Background(), appt.ID, model.AppointmentStatusNoShow, "did not arrive", "frontdesk")
	require.NoError(t, err)

	history, err := f.svc.ListHistory(context.Background(), appt.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	var replayed model.AppointmentStatus
	for _, entry := range history {
		if entry.OldStatus != nil {
			assert.Equal(t, replayed, *entry.OldStatus)
		}
		replayed = entry.NewStatus
	}

	stored, err := f.svc.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Status, replayed)
}

func TestBookTruncatesToMinute(t *testing.T) {
	f := newFixture(t)
	ragged := nextMonday(9, 0).Add(30 * time.Second)

	appt := f.book(t, f.patient.ID, ragged)
	assert.True(t, appt.StartTime.Equal(nextMonday(9, 0)))
}
