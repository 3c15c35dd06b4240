package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

type PaymentRepository struct {
	store *Store
}

func (r *PaymentRepository) Create(_ context.Context, payment *model.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	c := *payment
	r.store.payments[payment.ID] = &c
	return nil
}

func (r *PaymentRepository) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.payments {
		if p.AppointmentID == appointmentID {
			c := *p
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("payment")
}

type ReportRepository struct {
	store *Store
}

func (r *ReportRepository) DashboardMetrics(_ context.Context, from, to time.Time) (*model.DashboardMetrics, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	metrics := &model.DashboardMetrics{}
	inRange := make(map[uuid.UUID]bool)
	for _, a := range r.store.appointments {
		if a.StartTime.Before(from) || !a.StartTime.Before(to) {
			continue
		}
		inRange[a.ID] = true
		metrics.TotalAppointments++
		switch a.Status {
		case model.AppointmentStatusCompleted:
			metrics.CompletedAppointments++
		case model.AppointmentStatusCancelled:
			metrics.CancelledAppointments++
		case model.AppointmentStatusNoShow:
			metrics.NoShowCount++
		}
	}
	for _, p := range r.store.payments {
		if !inRange[p.AppointmentID] {
			continue
		}
		switch p.Status {
		case model.PaymentStatusPending:
			metrics.PendingPayments++
		case model.PaymentStatusSuccess:
			metrics.TotalRevenue += p.Amount
		}
	}
	return metrics, nil
}

func (r *ReportRepository) DailyReport(_ context.Context, date time.Time) ([]*model.DailyReport, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	byDoctor := make(map[uuid.UUID]*model.DailyReport)
	for _, d := range r.store.doctors {
		byDoctor[d.ID] = &model.DailyReport{
			Date:       dayStart,
			DoctorID:   d.ID,
			DoctorName: d.FullName,
		}
	}

	for _, a := range r.store.appointments {
		if a.StartTime.Before(dayStart) || !a.StartTime.Before(dayEnd) {
			continue
		}
		report, ok := byDoctor[a.DoctorID]
		if !ok {
			continue
		}
		report.Total++
		switch a.Status {
		case model.AppointmentStatusCompleted:
			report.Completed++
		case model.AppointmentStatusCancelled:
			report.Cancelled++
		case model.AppointmentStatusNoShow:
			report.NoShow++
		}
		for _, p := range r.store.payments {
			if p.AppointmentID == a.ID && p.Status == model.PaymentStatusSuccess {
				report.Revenue += p.Amount
			}
		}
	}

	reports := make([]*model.DailyReport, 0, len(byDoctor))
	for _, report := range byDoctor {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].DoctorName < reports[j].DoctorName })
	return reports, nil
}

type OutboxRepository struct {
	store *Store
}

func (r *OutboxRepository) Create(_ context.Context, event *model.OutboxEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.Status = model.OutboxStatusPending
	c := *event
	r.store.outbox[event.ID] = &c
	return nil
}

func (r *OutboxRepository) GetPendingWithLock(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []*model.OutboxEvent
	for _, e := range r.store.outbox {
		if e.Status == model.OutboxStatusPending {
			c := *e
			events = append(events, &c)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *OutboxRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.outbox[id]
	if !ok {
		return apperrors.NotFound("outbox event")
	}
	event.Status = status
	event.Error = errMsg
	now := time.Now()
	event.ProcessedAt = &now
	if status == model.OutboxStatusFailed {
		event.RetryCount++
	}
	return nil
}

func (r *OutboxRepository) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for id, e := range r.store.outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.store.outbox, id)
			deleted++
		}
	}
	return deleted, nil
}
