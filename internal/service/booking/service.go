package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository"
	apperrors "github.com/careloop/hms-api/pkg/errors"
	"github.com/careloop/hms-api/pkg/locker"
	"github.com/careloop/hms-api/pkg/logger"
)

// Resolver is the slice of the availability service the ledger depends on.
type Resolver interface {
	RemainingAt(ctx context.Context, doctorID uuid.UUID, at time.Time) (int, bool, error)
}

// Service is the booking ledger. It owns appointments and their status
// history and only reads schedule state through the resolver.
type Service struct {
	repo     repository.AppointmentRepository
	resolver Resolver
	locker   locker.Locker
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(repo repository.AppointmentRepository, resolver Resolver, lk locker.Locker, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		locker:   lk,
		logger:   log,
		now:      time.Now,
	}
}

// Book reserves a time point for a patient. The capacity check and the insert
// run under a per (doctor, datetime) lock so two concurrent requests cannot
// both observe free capacity.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	return s.createBooked(ctx, req.PatientID, req.DoctorID, req.StartTime, req.Source, req.Notes, nil, nil, "")
}

// ScheduleFollowup books a new appointment linked back to its origin.
// The origin's status is untouched.
func (s *Service) ScheduleFollowup(ctx context.Context, sourceID uuid.UUID, req *model.FollowupRequest) (*model.Appointment, error) {
	source, err := s.repo.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	src := req.Source
	if src == "" {
		src = model.SourceOther
	}
	return s.createBooked(ctx, source.PatientID, req.DoctorID, req.StartTime, src, req.Notes, nil, &sourceID, "")
}

// UpdateStatus moves a BOOKED appointment to a terminal state. RESCHEDULED is
// reserved for Reschedule, which pairs the transition with a replacement.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus model.AppointmentStatus, reason, actor string) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch newStatus {
	case model.AppointmentStatusCompleted, model.AppointmentStatusCancelled, model.AppointmentStatusNoShow:
	default:
		return nil, apperrors.InvalidTransition(fmt.Sprintf("cannot transition to %s directly", newStatus))
	}
	if appt.Status != model.AppointmentStatusBooked {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("appointment is %s, only BOOKED appointments can change status", appt.Status))
	}
	if newStatus == model.AppointmentStatusCancelled && reason == "" {
		return nil, apperrors.Validation("cancellation requires a reason")
	}

	oldStatus := appt.Status
	appt.Status = newStatus
	appt.UpdatedAt = s.now()
	if newStatus == model.AppointmentStatusCancelled {
		appt.CancellationReason = &reason
	}

	entry := s.historyEntry(appt.ID, &oldStatus, newStatus, reason, actor)
	event := s.outboxEvent(appt, eventTypeFor(newStatus), reason)

	if err := s.repo.UpdateStatus(ctx, appt, entry, event); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	return appt, nil
}

// Reschedule closes out a BOOKED appointment and books a replacement at the
// new time. Both records and their history entries are written atomically.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newStart time.Time, reason, actor string) (*model.RescheduleResult, error) {
	if reason == "" {
		return nil, apperrors.Validation("reschedule requires a reason")
	}

	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentStatusBooked {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("appointment is %s, only BOOKED appointments can be rescheduled", appt.Status))
	}

	newStart = newStart.Truncate(time.Minute)
	var result *model.RescheduleResult

	err = s.withBookingLock(ctx, appt.DoctorID, newStart, func(lockCtx context.Context) error {
		if err := s.checkCapacity(lockCtx, appt.PatientID, appt.DoctorID, newStart); err != nil {
			return err
		}

		now := s.now()
		oldStatus := appt.Status
		appt.Status = model.AppointmentStatusRescheduled
		appt.RescheduleReason = &reason
		appt.UpdatedAt = now

		replacement := &model.Appointment{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			PatientID:           appt.PatientID,
			DoctorID:            appt.DoctorID,
			StartTime:           newStart,
			Status:              model.AppointmentStatusBooked,
			Source:              appt.Source,
			Notes:               appt.Notes,
			ParentAppointmentID: &appt.ID,
		}

		oldEntry := s.historyEntry(appt.ID, &oldStatus, model.AppointmentStatusRescheduled, reason, actor)
		newEntry := s.historyEntry(replacement.ID, nil, model.AppointmentStatusBooked, reason, actor)
		event := s.outboxEvent(replacement, model.EventAppointmentRescheduled, reason)

		if err := s.repo.Reschedule(lockCtx, appt, oldEntry, replacement, newEntry, event); err != nil {
			return fmt.Errorf("failed to reschedule: %w", err)
		}

		result = &model.RescheduleResult{Old: appt, New: replacement}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

// ListHistory returns the chronological audit trail for one appointment.
func (s *Service) ListHistory(ctx context.Context, id uuid.UUID) ([]*model.StatusHistoryEntry, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, id)
}

func (s *Service) createBooked(ctx context.Context, patientID, doctorID uuid.UUID, start time.Time, source model.AppointmentSource, notes string, parentID, followupOfID *uuid.UUID, reason string) (*model.Appointment, error) {
	if start.IsZero() {
		return nil, apperrors.Validation("start time is required")
	}
	start = start.Truncate(time.Minute)

	var created *model.Appointment

	err := s.withBookingLock(ctx, doctorID, start, func(lockCtx context.Context) error {
		if err := s.checkCapacity(lockCtx, patientID, doctorID, start); err != nil {
			return err
		}

		now := s.now()
		appt := &model.Appointment{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			PatientID:               patientID,
			DoctorID:                doctorID,
			StartTime:               start,
			Status:                  model.AppointmentStatusBooked,
			Source:                  source,
			Notes:                   notes,
			ParentAppointmentID:     parentID,
			FollowupOfAppointmentID: followupOfID,
		}

		entry := s.historyEntry(appt.ID, nil, model.AppointmentStatusBooked, reason, "")
		event := s.outboxEvent(appt, model.EventAppointmentBooked, reason)

		if err := s.repo.Create(lockCtx, appt, entry, event); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// checkCapacity runs inside the booking lock.
func (s *Service) checkCapacity(ctx context.Context, patientID, doctorID uuid.UUID, at time.Time) error {
	duplicate, err := s.repo.ExistsBooked(ctx, patientID, doctorID, at)
	if err != nil {
		return apperrors.Transient("failed to check existing bookings", err)
	}
	if duplicate {
		return apperrors.Conflict("patient already has a booking with this doctor at this time")
	}

	remaining, unlimited, err := s.resolver.RemainingAt(ctx, doctorID, at)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.Transient("failed to resolve availability", err)
	}
	if !unlimited && remaining <= 0 {
		return apperrors.Capacity("no remaining capacity at the requested time")
	}
	return nil
}

func (s *Service) withBookingLock(ctx context.Context, doctorID uuid.UUID, at time.Time, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("booking:%s:%s", doctorID, at.UTC().Format(time.RFC3339))
	err := s.locker.WithLock(ctx, key, fn)
	if errors.Is(err, locker.ErrLockNotAcquired) {
		return apperrors.Transient("booking slot is busy, retry shortly", err)
	}
	return err
}

func (s *Service) historyEntry(appointmentID uuid.UUID, old *model.AppointmentStatus, newStatus model.AppointmentStatus, reason, actor string) *model.StatusHistoryEntry {
	return &model.StatusHistoryEntry{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		OldStatus:     old,
		NewStatus:     newStatus,
		Reason:        reason,
		Actor:         actor,
		ChangedAt:     s.now(),
	}
}

func (s *Service) outboxEvent(appt *model.Appointment, eventType, reason string) *model.OutboxEvent {
	payload, err := json.Marshal(model.AppointmentEventPayload{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		StartTime:     appt.StartTime,
		Status:        appt.Status,
		Reason:        reason,
	})
	if err != nil {
		s.logger.Error(err, "failed to marshal outbox payload", "appointment_id", appt.ID.String())
		return nil
	}
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: s.now(),
	}
}

func eventTypeFor(status model.AppointmentStatus) string {
	switch status {
	case model.AppointmentStatusCompleted:
		return model.EventAppointmentCompleted
	case model.AppointmentStatusCancelled:
		return model.EventAppointmentCancelled
	case model.AppointmentStatusNoShow:
		return model.EventAppointmentNoShow
	default:
		return model.EventAppointmentBooked
	}
}
