package schedule

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

func newTestService(t *testing.T) (*Service, *model.Doctor) {
	t.Helper()

	store := memory.NewStore()
	svc := NewService(store.Schedules(), store.Doctors())

	doctor := &model.Doctor{FullName: "Dr. Asha Rao", Department: "Cardiology", IsActive: true}
	require.NoError(t, store.Doctors().Create(context.Background(), doctor))

	return svc, doctor
}

func TestAddSlot(t *testing.T) {
	svc, doctor := newTestService(t)
	ctx := context.Background()

	slot, err := svc.AddSlot(ctx, &model.CreateSlotRequest{
		DoctorID:    doctor.ID,
		Weekday:     1,
		StartTime:   "09:00",
		EndTime:     "12:00",
		MaxPatients: 10,
	})
	require.NoError(t, err)
	assert.True(t, slot.IsActive)
	assert.Equal(t, 10, slot.MaxPatients)

	slots, err := svc.ListSlots(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestAddSlotRejectsInvertedTimes(t *testing.T) {
	svc, doctor := newTestService(t)

	_, err := svc.AddSlot(context.Background(), &model.CreateSlotRequest{
		DoctorID:  doctor.ID,
		Weekday:   1,
		StartTime: "12:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.AddSlot(context.Background(), &model.CreateSlotRequest{
		DoctorID:  doctor.ID,
		Weekday:   1,
		StartTime: "09:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestAddSlotRejectsBadWeekday(t *testing.T) {
	svc, doctor := newTestService(t)

	_, err := svc.AddSlot(context.Background(), &model.CreateSlotRequest{
		DoctorID:  doctor.ID,
		Weekday:   8,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestUpdateSlotUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	newStart := "10:00"
	_, err := svc.UpdateSlot(context.Background(), uuid.New(), &model.UpdateSlotRequest{StartTime: &newStart})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestDeleteVersusDeactivate(t *testing.T) {
	svc, doctor := newTestService(t)
	ctx := context.Background()

	slot, err := svc.AddSlot(ctx, &model.CreateSlotRequest{
		DoctorID: doctor.ID, Weekday: 2, StartTime: "09:00", EndTime: "11:00", MaxPatients: 5,
	})
	require.NoError(t, err)

	// Deactivation keeps the slot on record.
	toggled, err := svc.SetSlotActive(ctx, slot.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	slots, err := svc.ListSlots(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.False(t, slots[0].IsActive)

	// Deletion removes it entirely.
	require.NoError(t, svc.DeleteSlot(ctx, slot.ID))
	slots, err = svc.ListSlots(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAddExceptionRejectsPastDate(t *testing.T) {
	svc, doctor := newTestService(t)

	_, err := svc.AddException(context.Background(), &model.CreateExceptionRequest{
		DoctorID:    doctor.ID,
		Date:        "2020-01-01",
		IsAvailable: false,
		Reason:      "holiday",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestAddExceptionLastWriteWins(t *testing.T) {
	svc, doctor := newTestService(t)
	ctx := context.Background()

	date := time.Now().AddDate(0, 0, 14).Format("2006-01-02")

	_, err := svc.AddException(ctx, &model.CreateExceptionRequest{
		DoctorID: doctor.ID, Date: date, IsAvailable: false, Reason: "conference",
	})
	require.NoError(t, err)

	_, err = svc.AddException(ctx, &model.CreateExceptionRequest{
		DoctorID: doctor.ID, Date: date, IsAvailable: true, Reason: "conference cancelled",
	})
	require.NoError(t, err)

	excs, err := svc.ListExceptions(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, excs, 1)
	assert.True(t, excs[0].IsAvailable)
	assert.Equal(t, "conference cancelled", excs[0].Reason)
}
