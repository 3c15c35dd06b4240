package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

type AppointmentRepository struct {
	store *Store
}

func (r *AppointmentRepository) Create(_ context.Context, appt *model.Appointment, entry *model.StatusHistoryEntry, event *model.OutboxEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.appointments[appt.ID] = copyAppointment(appt)
	r.store.history[appt.ID] = append(r.store.history[appt.ID], copyEntry(entry))
	r.insertOutboxLocked(event)
	return nil
}

func (r *AppointmentRepository) UpdateStatus(_ context.Context, appt *model.Appointment, entry *model.StatusHistoryEntry, event *model.OutboxEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.appointments[appt.ID]; !ok {
		return apperrors.NotFound("appointment")
	}
	r.store.appointments[appt.ID] = copyAppointment(appt)
	r.store.history[appt.ID] = append(r.store.history[appt.ID], copyEntry(entry))
	r.insertOutboxLocked(event)
	return nil
}

func (r *AppointmentRepository) Reschedule(_ context.Context, old *model.Appointment, oldEntry *model.StatusHistoryEntry, replacement *model.Appointment, newEntry *model.StatusHistoryEntry, event *model.OutboxEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.appointments[old.ID]; !ok {
		return apperrors.NotFound("appointment")
	}
	r.store.appointments[old.ID] = copyAppointment(old)
	r.store.appointments[replacement.ID] = copyAppointment(replacement)
	r.store.history[old.ID] = append(r.store.history[old.ID], copyEntry(oldEntry))
	r.store.history[replacement.ID] = append(r.store.history[replacement.ID], copyEntry(newEntry))
	r.insertOutboxLocked(event)
	return nil
}

func (r *AppointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	appt, ok := r.store.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment")
	}
	return copyAppointment(appt), nil
}

func (r *AppointmentRepository) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var appointments []*model.Appointment
	for _, a := range r.store.appointments {
		if filters != nil {
			if filters.DoctorID != uuid.Nil && a.DoctorID != filters.DoctorID {
				continue
			}
			if filters.PatientID != uuid.Nil && a.PatientID != filters.PatientID {
				continue
			}
			if filters.Status != "" && a.Status != filters.Status {
				continue
			}
			if !filters.StartDate.IsZero() && a.StartTime.Before(filters.StartDate) {
				continue
			}
			if !filters.EndDate.IsZero() && !a.StartTime.Before(filters.EndDate) {
				continue
			}
		}
		appointments = append(appointments, copyAppointment(a))
	}
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].StartTime.Before(appointments[j].StartTime)
	})
	return appointments, nil
}

func (r *AppointmentRepository) CountAtTime(_ context.Context, doctorID uuid.UUID, at time.Time, statuses []model.AppointmentStatus) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, a := range r.store.appointments {
		if a.DoctorID != doctorID || !a.StartTime.Equal(at) {
			continue
		}
		for _, status := range statuses {
			if a.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *AppointmentRepository) ExistsBooked(_ context.Context, patientID, doctorID uuid.UUID, at time.Time) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.appointments {
		if a.PatientID == patientID && a.DoctorID == doctorID &&
			a.StartTime.Equal(at) && a.Status == model.AppointmentStatusBooked {
			return true, nil
		}
	}
	return false, nil
}

func (r *AppointmentRepository) ListHistory(_ context.Context, appointmentID uuid.UUID) ([]*model.StatusHistoryEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := make([]*model.StatusHistoryEntry, 0, len(r.store.history[appointmentID]))
	for _, e := range r.store.history[appointmentID] {
		entries = append(entries, copyEntry(e))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ChangedAt.Before(entries[j].ChangedAt)
	})
	return entries, nil
}

func (r *AppointmentRepository) insertOutboxLocked(event *model.OutboxEvent) {
	if event == nil {
		return
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.Status = model.OutboxStatusPending
	c := *event
	r.store.outbox[event.ID] = &c
}
