package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository"
	"github.com/careloop/hms-api/pkg/email"
	"github.com/careloop/hms-api/pkg/logger"
	"github.com/careloop/hms-api/pkg/messaging"
	"github.com/careloop/hms-api/pkg/metrics"
)

// ReminderWorker consumes booking events off the broker and emails patients
// who have an address on file. Patients without one are skipped silently;
// the front desk reaches them over the phone instead.
type ReminderWorker struct {
	broker      messaging.Broker
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	sender      email.Sender
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

func NewReminderWorker(
	broker messaging.Broker,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	sender email.Sender,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ReminderWorker {
	return &ReminderWorker{
		broker:      broker,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		sender:      sender,
		logger:      logger,
		metrics:     metrics,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) error {
	channels := []string{
		model.EventAppointmentBooked,
		model.EventAppointmentRescheduled,
		model.EventAppointmentCancelled,
	}

	for _, channel := range channels {
		msgs, err := w.broker.Subscribe(ctx, channel)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		go w.consume(ctx, channel, msgs)
	}

	w.logger.Info("Reminder worker started")
	<-ctx.Done()
	return nil
}

func (w *ReminderWorker) consume(ctx context.Context, channel string, msgs <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := w.handle(ctx, channel, msg); err != nil {
				w.metrics.RemindersFailed.Inc()
				w.logger.Error(err, "Failed to handle booking event", "channel", channel)
			}
		}
	}
}

func (w *ReminderWorker) handle(ctx context.Context, channel string, msg []byte) error {
	// The broker wraps the outbox payload in a JSON string.
	var raw json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		raw = msg
	}

	var payload model.AppointmentEventPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to decode event payload: %w", err)
	}

	patient, err := w.patientRepo.Get(ctx, payload.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient: %w", err)
	}
	if patient.Email == "" {
		return nil
	}

	doctor, err := w.doctorRepo.Get(ctx, payload.DoctorID)
	if err != nil {
		return fmt.Errorf("failed to load doctor: %w", err)
	}

	subject, body := w.compose(channel, patient.FullName, doctor.FullName, payload)
	if subject == "" {
		return nil
	}

	if err := w.sender.Send(patient.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	w.metrics.RemindersSent.Inc()
	return nil
}

func (w *ReminderWorker) compose(channel, patientName, doctorName string, payload model.AppointmentEventPayload) (string, string) {
	when := payload.StartTime.Format("Mon, 2 Jan 2006 at 15:04")

	switch channel {
	case model.EventAppointmentBooked:
		return "Appointment confirmed",
			fmt.Sprintf("Dear %s,\n\nYour appointment with %s is confirmed for %s.\n", patientName, doctorName, when)
	case model.EventAppointmentRescheduled:
		return "Appointment rescheduled",
			fmt.Sprintf("Dear %s,\n\nYour appointment with %s has been moved to %s.\n", patientName, doctorName, when)
	case model.EventAppointmentCancelled:
		return "Appointment cancelled",
			fmt.Sprintf("Dear %s,\n\nYour appointment with %s scheduled for %s has been cancelled.\n", patientName, doctorName, when)
	default:
		return "", ""
	}
}
