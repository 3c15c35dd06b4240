package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/careloop/hms-api/internal/model"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

const appointmentColumns = `
	id, patient_id, doctor_id, slot_id, start_time, status, source, notes,
	cancellation_reason, reschedule_reason, parent_appointment_id,
	followup_of_appointment_id, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment, entry *model.StatusHistoryEntry, event *model.OutboxEvent) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertAppointment(ctx, tx, appt); err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, entry); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, event)
	})
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, appt *model.Appointment, entry *model.StatusHistoryEntry, event *model.OutboxEvent) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := updateAppointment(ctx, tx, appt); err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, entry); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, event)
	})
}

func (r *appointmentRepository) Reschedule(ctx context.Context, old *model.Appointment, oldEntry *model.StatusHistoryEntry, replacement *model.Appointment, newEntry *model.StatusHistoryEntry, event *model.OutboxEvent) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := updateAppointment(ctx, tx, old); err != nil {
			return err
		}
		if err := insertAppointment(ctx, tx, replacement); err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, oldEntry); err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, newEntry); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, event)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.DoctorID != uuid.Nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, filters.DoctorID)
			argCount++
		}
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND start_time >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND start_time < $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountAtTime(ctx context.Context, doctorID uuid.UUID, at time.Time, statuses []model.AppointmentStatus) (int, error) {
	query, args, err := sqlx.In(`
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = ? AND start_time = ? AND status IN (?)
	`, doctorID, at, statuses)
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	err = r.db.GetContext(ctx, &count, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) ExistsBooked(ctx context.Context, patientID, doctorID uuid.UUID, at time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE patient_id = $1 AND doctor_id = $2 AND start_time = $3
			AND status = $4
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, patientID, doctorID, at, model.AppointmentStatusBooked)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate booking: %w", err)
	}
	return exists, nil
}

func (r *appointmentRepository) ListHistory(ctx context.Context, appointmentID uuid.UUID) ([]*model.StatusHistoryEntry, error) {
	query := `
		SELECT id, appointment_id, old_status, new_status, reason, actor, changed_at
		FROM appointment_status_history
		WHERE appointment_id = $1
		ORDER BY changed_at ASC
	`
	var entries []*model.StatusHistoryEntry
	err := r.db.SelectContext(ctx, &entries, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

func (r *appointmentRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertAppointment(ctx context.Context, tx *sqlx.Tx, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := tx.ExecContext(ctx, query,
		appt.ID,
		appt.PatientID,
		appt.DoctorID,
		appt.SlotID,
		appt.StartTime,
		appt.Status,
		appt.Source,
		appt.Notes,
		appt.CancellationReason,
		appt.RescheduleReason,
		appt.ParentAppointmentID,
		appt.FollowupOfAppointmentID,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

func updateAppointment(ctx context.Context, tx *sqlx.Tx, appt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, notes = $2, cancellation_reason = $3,
			reschedule_reason = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := tx.ExecContext(ctx, query,
		appt.Status,
		appt.Notes,
		appt.CancellationReason,
		appt.RescheduleReason,
		appt.UpdatedAt,
		appt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment")
	}
	return nil
}

func insertHistory(ctx context.Context, tx *sqlx.Tx, entry *model.StatusHistoryEntry) error {
	query := `
		INSERT INTO appointment_status_history (
			id, appointment_id, old_status, new_status, reason, actor, changed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		entry.ID,
		entry.AppointmentID,
		entry.OldStatus,
		entry.NewStatus,
		entry.Reason,
		entry.Actor,
		entry.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

func insertOutbox(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	if event == nil {
		return nil
	}
	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.RetryCount,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}
