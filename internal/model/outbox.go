package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Outbox event types emitted by the booking ledger.
const (
	EventAppointmentBooked      = "appointment.booked"
	EventAppointmentCompleted   = "appointment.completed"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentNoShow      = "appointment.no_show"
	EventAppointmentRescheduled = "appointment.rescheduled"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and later published by the worker.
type OutboxEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	EventType   string          `db:"event_type" json:"event_type"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Status      OutboxStatus    `db:"status" json:"status"`
	Error       *string         `db:"error" json:"error,omitempty"`
	RetryCount  int             `db:"retry_count" json:"retry_count"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// AppointmentEventPayload is the wire shape of appointment outbox events.
type AppointmentEventPayload struct {
	AppointmentID uuid.UUID         `json:"appointment_id"`
	PatientID     uuid.UUID         `json:"patient_id"`
	DoctorID      uuid.UUID         `json:"doctor_id"`
	StartTime     time.Time         `json:"start_time"`
	Status        AppointmentStatus `json:"status"`
	Reason        string            `json:"reason,omitempty"`
}
