package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

type ScheduleRepository struct {
	store *Store
}

func (r *ScheduleRepository) CreateSlot(_ context.Context, slot *model.WeeklySlot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	slot.ID = uuid.New()
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt
	r.store.slots[slot.ID] = copySlot(slot)
	return nil
}

func (r *ScheduleRepository) GetSlot(_ context.Context, id uuid.UUID) (*model.WeeklySlot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	slot, ok := r.store.slots[id]
	if !ok {
		return nil, apperrors.NotFound("slot")
	}
	return copySlot(slot), nil
}

func (r *ScheduleRepository) UpdateSlot(_ context.Context, slot *model.WeeklySlot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.slots[slot.ID]; !ok {
		return apperrors.NotFound("slot")
	}
	slot.UpdatedAt = time.Now()
	r.store.slots[slot.ID] = copySlot(slot)
	return nil
}

func (r *ScheduleRepository) DeleteSlot(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.slots[id]; !ok {
		return apperrors.NotFound("slot")
	}
	delete(r.store.slots, id)
	return nil
}

func (r *ScheduleRepository) ListSlots(_ context.Context, doctorID uuid.UUID) ([]*model.WeeklySlot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var slots []*model.WeeklySlot
	for _, s := range r.store.slots {
		if s.DoctorID == doctorID {
			slots = append(slots, copySlot(s))
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Weekday != slots[j].Weekday {
			return slots[i].Weekday < slots[j].Weekday
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots, nil
}

func (r *ScheduleRepository) ListActiveSlotsForWeekday(_ context.Context, doctorID uuid.UUID, weekday int) ([]*model.WeeklySlot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var slots []*model.WeeklySlot
	for _, s := range r.store.slots {
		if s.DoctorID == doctorID && s.Weekday == weekday && s.IsActive {
			slots = append(slots, copySlot(s))
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	return slots, nil
}

func (r *ScheduleRepository) UpsertException(_ context.Context, exc *model.DateException) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Last write wins for the same (doctor, date).
	for id, existing := range r.store.exceptions {
		if existing.DoctorID == exc.DoctorID && sameDate(existing.Date, exc.Date) {
			delete(r.store.exceptions, id)
		}
	}

	exc.ID = uuid.New()
	exc.CreatedAt = time.Now()
	exc.UpdatedAt = exc.CreatedAt
	r.store.exceptions[exc.ID] = copyException(exc)
	return nil
}

func (r *ScheduleRepository) GetException(_ context.Context, doctorID uuid.UUID, date time.Time) (*model.DateException, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, exc := range r.store.exceptions {
		if exc.DoctorID == doctorID && sameDate(exc.Date, date) {
			return copyException(exc), nil
		}
	}
	return nil, apperrors.NotFound("exception")
}

func (r *ScheduleRepository) ListExceptions(_ context.Context, doctorID uuid.UUID) ([]*model.DateException, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var excs []*model.DateException
	for _, exc := range r.store.exceptions {
		if exc.DoctorID == doctorID {
			excs = append(excs, copyException(exc))
		}
	}
	sort.Slice(excs, func(i, j int) bool { return excs[i].Date.Before(excs[j].Date) })
	return excs, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
