package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
)

// All repository interfaces in one file
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		List(ctx context.Context, activeOnly bool) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	ScheduleRepository interface {
		CreateSlot(ctx context.Context, slot *model.WeeklySlot) error
		GetSlot(ctx context.Context, id uuid.UUID) (*model.WeeklySlot, error)
		UpdateSlot(ctx context.Context, slot *model.WeeklySlot) error
		DeleteSlot(ctx context.Context, id uuid.UUID) error
		ListSlots(ctx context.Context, doctorID uuid.UUID) ([]*model.WeeklySlot, error)
		ListActiveSlotsForWeekday(ctx context.Context, doctorID uuid.UUID, weekday int) ([]*model.WeeklySlot, error)
		// UpsertException keeps at most one exception per (doctor, date);
		// a second write for the same date replaces the first.
		UpsertException(ctx context.Context, exc *model.DateException) error
		GetException(ctx context.Context, doctorID uuid.UUID, date time.Time) (*model.DateException, error)
		ListExceptions(ctx context.Context, doctorID uuid.UUID) ([]*model.DateException, error)
	}

	// AppointmentRepository persists appointments together with their audit
	// trail. The composite methods are transactional: the appointment rows,
	// the history entries and the outbox event land together or not at all.
	AppointmentRepository interface {
		Create(ctx context.Context, appt *model.Appointment, entry *model.StatusHistoryEntry, event *model.OutboxEvent) error
		UpdateStatus(ctx context.Context, appt *model.Appointment, entry *model.StatusHistoryEntry, event *model.OutboxEvent) error
		Reschedule(ctx context.Context, old *model.Appointment, oldEntry *model.StatusHistoryEntry, replacement *model.Appointment, newEntry *model.StatusHistoryEntry, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// CountAtTime counts appointments occupying the exact (doctor, datetime)
		// with status in the given set.
		CountAtTime(ctx context.Context, doctorID uuid.UUID, at time.Time, statuses []model.AppointmentStatus) (int, error)
		ExistsBooked(ctx context.Context, patientID, doctorID uuid.UUID, at time.Time) (bool, error)
		ListHistory(ctx context.Context, appointmentID uuid.UUID) ([]*model.StatusHistoryEntry, error)
	}

	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error)
	}

	ReportRepository interface {
		DashboardMetrics(ctx context.Context, from, to time.Time) (*model.DashboardMetrics, error)
		DailyReport(ctx context.Context, date time.Time) ([]*model.DailyReport, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
