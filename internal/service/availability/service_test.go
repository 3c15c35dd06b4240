package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository/memory"
)

type fixture struct {
	store  *memory.Store
	svc    *Service
	doctor *model.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	doctor := &model.Doctor{FullName: "Dr. Meera Iyer", Department: "Dermatology", IsActive: true}
	require.NoError(t, store.Doctors().Create(context.Background(), doctor))

	return &fixture{
		store:  store,
		svc:    NewService(store.Schedules(), store.Appointments(), store.Doctors()),
		doctor: doctor,
	}
}

func (f *fixture) addSlot(t *testing.T, weekday int, start, end string, maxPatients int) {
	t.Helper()
	require.NoError(t, f.store.Schedules().CreateSlot(context.Background(), &model.WeeklySlot{
		DoctorID:    f.doctor.ID,
		Weekday:     weekday,
		StartTime:   start,
		EndTime:     end,
		MaxPatients: maxPatients,
		IsActive:    true,
	}))
}

func (f *fixture) bookAt(t *testing.T, at time.Time, status model.AppointmentStatus) {
	t.Helper()
	appt := &model.Appointment{
		Base:      model.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		PatientID: uuid.New(),
		DoctorID:  f.doctor.ID,
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
	require.NoError(t, f.store.Appointments().Create(context.Background(), appt, entry, nil))
}

// nextDate returns a future calendar date falling on the given 1..7 weekday.
func nextDate(weekday int) time.Time {
	d := time.Now().AddDate(0, 0, 1)
	for model.WeekdayOf(d) != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func at(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

func TestExpandsSlotAtHalfHourGranularity(t *testing.T) {
	f := newFixture(t)
	f.addSlot(t, 1, "09:00", "12:00", 10)

	monday := nextDate(1)
	points, err := f.svc.ListAvailability(context.Background(), f.doctor.ID, monday)
	require.NoError(t, err)

	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}
	require.Len(t, points, len(want))
	for i, p := range points {
		assert.Equal(t, want[i], p.Time.Format("15:04"))
		assert.Equal(t, 10, p.Remaining)
		assert.False(t, p.Unlimited)
	}
}

func TestUnavailabilityExceptionWins(t *testing.T) {
	f := newFixture(t)
	f.addSlot(t, 1, "09:00", "12:00", 10)

	monday := nextDate(1)
	require.NoError(t, f.store.Schedules().UpsertException(context.Background(), &model.DateException{
		DoctorID:    f.doctor.ID,
		Date:        monday,
		IsAvailable: false,
		Reason:      "public holiday",
	}))

	points, err := f.svc.ListAvailability(context.Background(), f.doctor.ID, monday)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestAvailabilityExceptionDoesNotSynthesizeSlots(t *testing.T) {
	f := newFixture(t)
	// No recurring slots at all.

	monday := nextDate(1)
	require.NoError(t, f.store.Schedules().UpsertException(context.Background(), &model.DateException{
		DoctorID:    f.doctor.ID,
		Date:        monday,
		IsAvailable: true,
	}))

	points, err := f.svc.ListAvailability(context.Background(), f.doctor.ID, monday)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestOverlappingSlotsUnion(t *testing.T) {
	f := newFixture(t)
	f.addSlot(t, 3, "09:00", "11:00", 2)
	f.addSlot(t, 3, "10:00", "12:00", 5)

	wednesday := nextDate(3)
	points, err := f.svc.ListAvailability(context.Background(), f.doctor.ID, wednesday)
	require.NoError(t, err)

	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}
	require.Len(t, points, len(want))
	for i, p := range points {
		assert.Equal(t, want[i], p.Time.Format("15:04"))
	}

	// Overlap region carries the larger capacity.
	assert.Equal(t, 2, points[0].Remaining)
	assert.Equal(t, 5, points[2].Remaining)
}

func TestInactiveSlotExcluded(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Schedules().CreateSlot(context.Background(), &model.WeeklySlot{
		DoctorID:    f.doctor.ID,
		Weekday:     1,
		StartTime:   "09:00",
		EndTime:     "10:00",
		MaxPatients: 3,
		IsActive:    false,
	}))

	points, err := f.svc.ListAvailability(context.Background(), f.doctor.ID, nextDate(1))
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestCapacityDecrementsAndExhausts(t *testing.T) {
	f := newFixture(t)
	f.addSlot(t, 1, "09:00", "10:00", 2)

	monday := nextDate(1)
	nine := at(monday, 9, 0)

	f.bookAt(t, nine, model.AppointmentStatusBooked)

	points, err := f.svc.ListAvailability(context.Background(), f.doctor.ID, monday)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].Remaining)

	// Completed appointments still occupy capacity; cancelled ones do not.
	f.bookAt(t, nine, model.AppointmentStatusCompleted)
	f.bookAt(t, nine, model.AppointmentStatusCancelled)

	points, err = f.svc.ListAvailability(context.Background(), f.doctor.ID, monday)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "09:30", points[0].Time.Format("15:04"))
}

func TestUnlimitedSlotNeverExhausts(t *testing.T) {
	f := newFixture(t)
	f.addSlot(t, 2, "09:00", "09:30", 0)

	tuesday := nextDate(2)
	nine := at(tuesday, 9, 0)
	for i := 0; i < 25; i++ {
		f.bookAt(t, nine, model.AppointmentStatusBooked)
	}

	points, err := f.svc.ListAvailability(context.Background(), f.doctor.ID, tuesday)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].Unlimited)
}

func TestInactiveDoctorHasNoAvailability(t *testing.T) {
	f := newFixture(t)
	f.addSlot(t, 1, "09:00", "12:00", 10)

	f.doctor.IsActive = false
	require.NoError(t, f.store.Doctors().Update(context.Background(), f.doctor))
	f.svc.InvalidateDoctor(f.doctor.ID)

	points, err := f.svc.ListAvailability(context.Background(), f.doctor.ID, nextDate(1))
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestWeekdayMapping(t *testing.T) {
	// 2026-09-06 is a Sunday, 2026-09-07 a Monday.
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 7, model.WeekdayOf(sunday))
	assert.Equal(t, 1, model.WeekdayOf(monday))
}
