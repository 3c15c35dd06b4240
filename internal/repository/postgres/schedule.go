package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

func (r *scheduleRepository) CreateSlot(ctx context.Context, slot *model.WeeklySlot) error {
	query := `
		INSERT INTO weekly_slots (
			id, doctor_id, weekday, start_time, end_time, max_patients,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	slot.ID = uuid.New()
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.DoctorID,
		slot.Weekday,
		slot.StartTime,
		slot.EndTime,
		slot.MaxPatients,
		slot.IsActive,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *scheduleRepository) GetSlot(ctx context.Context, id uuid.UUID) (*model.WeeklySlot, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, end_time, max_patients,
			   is_active, created_at, updated_at
		FROM weekly_slots
		WHERE id = $1
	`
	var slot model.WeeklySlot
	err := r.db.GetContext(ctx, &slot, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("slot")
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

func (r *scheduleRepository) UpdateSlot(ctx context.Context, slot *model.WeeklySlot) error {
	query := `
		UPDATE weekly_slots
		SET weekday = $1, start_time = $2, end_time = $3, max_patients = $4,
			is_active = $5, updated_at = $6
		WHERE id = $7
	`
	slot.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		slot.Weekday,
		slot.StartTime,
		slot.EndTime,
		slot.MaxPatients,
		slot.IsActive,
		slot.UpdatedAt,
		slot.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("slot")
	}

	return nil
}

func (r *scheduleRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM weekly_slots WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("slot")
	}

	return nil
}

func (r *scheduleRepository) ListSlots(ctx context.Context, doctorID uuid.UUID) ([]*model.WeeklySlot, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, end_time, max_patients,
			   is_active, created_at, updated_at
		FROM weekly_slots
		WHERE doctor_id = $1
		ORDER BY weekday ASC, start_time ASC
	`
	var slots []*model.WeeklySlot
	err := r.db.SelectContext(ctx, &slots, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

func (r *scheduleRepository) ListActiveSlotsForWeekday(ctx context.Context, doctorID uuid.UUID, weekday int) ([]*model.WeeklySlot, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, end_time, max_patients,
			   is_active, created_at, updated_at
		FROM weekly_slots
		WHERE doctor_id = $1 AND weekday = $2 AND is_active = true
		ORDER BY start_time ASC
	`
	var slots []*model.WeeklySlot
	err := r.db.SelectContext(ctx, &slots, query, doctorID, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to list active slots: %w", err)
	}
	return slots, nil
}

func (r *scheduleRepository) UpsertException(ctx context.Context, exc *model.DateException) error {
	// Unique index on (doctor_id, date): last write wins.
	query := `
		INSERT INTO date_exceptions (
			id, doctor_id, date, is_available, reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (doctor_id, date) DO UPDATE
		SET is_available = EXCLUDED.is_available,
			reason = EXCLUDED.reason,
			updated_at = EXCLUDED.updated_at
	`
	exc.ID = uuid.New()
	exc.CreatedAt = time.Now()
	exc.UpdatedAt = exc.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		exc.ID,
		exc.DoctorID,
		exc.Date,
		exc.IsAvailable,
		exc.Reason,
		exc.CreatedAt,
		exc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert exception: %w", err)
	}
	return nil
}

func (r *scheduleRepository) GetException(ctx context.Context, doctorID uuid.UUID, date time.Time) (*model.DateException, error) {
	query := `
		SELECT id, doctor_id, date, is_available, reason, created_at, updated_at
		FROM date_exceptions
		WHERE doctor_id = $1 AND date = $2
	`
	var exc model.DateException
	err := r.db.GetContext(ctx, &exc, query, doctorID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("exception")
		}
		return nil, fmt.Errorf("failed to get exception: %w", err)
	}
	return &exc, nil
}

func (r *scheduleRepository) ListExceptions(ctx context.Context, doctorID uuid.UUID) ([]*model.DateException, error) {
	query := `
		SELECT id, doctor_id, date, is_available, reason, created_at, updated_at
		FROM date_exceptions
		WHERE doctor_id = $1
		ORDER BY date ASC
	`
	var excs []*model.DateException
	err := r.db.SelectContext(ctx, &excs, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	return excs, nil
}
