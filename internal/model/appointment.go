package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked      AppointmentStatus = "BOOKED"
	AppointmentStatusCompleted   AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled   AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow      AppointmentStatus = "NO_SHOW"
	AppointmentStatusRescheduled AppointmentStatus = "RESCHEDULED"
)

type AppointmentSource string

const (
	SourceWhatsapp  AppointmentSource = "WHATSAPP"
	SourceFrontdesk AppointmentSource = "FRONTDESK"
	SourcePhoneCall AppointmentSource = "PHONE_CALL"
	SourceOther     AppointmentSource = "OTHER"
)

// Appointment records are never physically deleted; cancellation is a status.
type Appointment struct {
	Base
	PatientID               uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID                uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	SlotID                  *uuid.UUID        `db:"slot_id" json:"slot_id,omitempty"`
	StartTime               time.Time         `db:"start_time" json:"start_time"`
	Status                  AppointmentStatus `db:"status" json:"status"`
	Source                  AppointmentSource `db:"source" json:"source"`
	Notes                   string            `db:"notes" json:"notes,omitempty"`
	CancellationReason      *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	RescheduleReason        *string           `db:"reschedule_reason" json:"reschedule_reason,omitempty"`
	ParentAppointmentID     *uuid.UUID        `db:"parent_appointment_id" json:"parent_appointment_id,omitempty"`
	FollowupOfAppointmentID *uuid.UUID        `db:"followup_of_appointment_id" json:"followup_of_appointment_id,omitempty"`
}

// StatusHistoryEntry is an append-only audit record of one status transition.
// OldStatus is nil for the initial booking entry. Replaying a chronological
// sequence of entries reconstructs the appointment's stored status.
type StatusHistoryEntry struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	AppointmentID uuid.UUID          `db:"appointment_id" json:"appointment_id"`
	OldStatus     *AppointmentStatus `db:"old_status" json:"old_status,omitempty"`
	NewStatus     AppointmentStatus  `db:"new_status" json:"new_status"`
	Reason        string             `db:"reason" json:"reason,omitempty"`
	Actor         string             `db:"actor" json:"actor,omitempty"`
	ChangedAt     time.Time          `db:"changed_at" json:"changed_at"`
}

type BookAppointmentRequest struct {
	PatientID uuid.UUID         `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID         `json:"doctor_id" binding:"required"`
	StartTime time.Time         `json:"start_time" binding:"required"`
	Source    AppointmentSource `json:"source" binding:"required,oneof=WHATSAPP FRONTDESK PHONE_CALL OTHER"`
	Notes     string            `json:"notes" binding:"max=1000"`
}

type UpdateStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=COMPLETED CANCELLED NO_SHOW"`
	Reason string            `json:"reason" binding:"max=500"`
	Actor  string            `json:"actor" binding:"max=100"`
}

type RescheduleRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	Reason    string    `json:"reason" binding:"required,max=500"`
	Actor     string    `json:"actor" binding:"max=100"`
}

type FollowupRequest struct {
	DoctorID  uuid.UUID         `json:"doctor_id" binding:"required"`
	StartTime time.Time         `json:"start_time" binding:"required"`
	Source    AppointmentSource `json:"source" binding:"omitempty,oneof=WHATSAPP FRONTDESK PHONE_CALL OTHER"`
	Notes     string            `json:"notes" binding:"max=1000"`
}

// RescheduleResult pairs the closed-out appointment with its replacement.
type RescheduleResult struct {
	Old *Appointment `json:"old"`
	New *Appointment `json:"new"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}
