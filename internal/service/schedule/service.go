package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

// Service owns the lifecycle of weekly slots and date exceptions.
type Service struct {
	repo       repository.ScheduleRepository
	doctorRepo repository.DoctorRepository
	now        func() time.Time
}

func NewService(repo repository.ScheduleRepository, doctorRepo repository.DoctorRepository) *Service {
	return &Service{
		repo:       repo,
		doctorRepo: doctorRepo,
		now:        time.Now,
	}
}

func (s *Service) AddSlot(ctx context.Context, req *model.CreateSlotRequest) (*model.WeeklySlot, error) {
	if err := validateSlotTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if req.Weekday < model.WeekdayMonday || req.Weekday > model.WeekdaySunday {
		return nil, apperrors.Validationf("weekday must be between 1 and 7, got %d", req.Weekday)
	}
	if req.MaxPatients < 0 {
		return nil, apperrors.Validation("max_patients must not be negative")
	}

	if _, err := s.doctorRepo.Get(ctx, req.DoctorID); err != nil {
		return nil, err
	}

	slot := &model.WeeklySlot{
		DoctorID:    req.DoctorID,
		Weekday:     req.Weekday,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxPatients: req.MaxPatients,
		IsActive:    true,
	}
	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}
	return slot, nil
}

func (s *Service) UpdateSlot(ctx context.Context, slotID uuid.UUID, req *model.UpdateSlotRequest) (*model.WeeklySlot, error) {
	slot, err := s.repo.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if req.Weekday != nil {
		if *req.Weekday < model.WeekdayMonday || *req.Weekday > model.WeekdaySunday {
			return nil, apperrors.Validationf("weekday must be between 1 and 7, got %d", *req.Weekday)
		}
		slot.Weekday = *req.Weekday
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if err := validateSlotTimes(slot.StartTime, slot.EndTime); err != nil {
		return nil, err
	}
	if req.MaxPatients != nil {
		if *req.MaxPatients < 0 {
			return nil, apperrors.Validation("max_patients must not be negative")
		}
		slot.MaxPatients = *req.MaxPatients
	}
	if req.IsActive != nil {
		slot.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to update slot: %w", err)
	}
	return slot, nil
}

// DeleteSlot removes a slot permanently. Use SetSlotActive to hide a slot
// from future resolution without losing it.
func (s *Service) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	return s.repo.DeleteSlot(ctx, slotID)
}

func (s *Service) SetSlotActive(ctx context.Context, slotID uuid.UUID, active bool) (*model.WeeklySlot, error) {
	slot, err := s.repo.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	slot.IsActive = active
	if err := s.repo.UpdateSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to toggle slot: %w", err)
	}
	return slot, nil
}

func (s *Service) AddException(ctx context.Context, req *model.CreateExceptionRequest) (*model.DateException, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperrors.Validationf("invalid date %q, want YYYY-MM-DD", req.Date)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return nil, apperrors.Validation("exception date must not be in the past")
	}

	if _, err := s.doctorRepo.Get(ctx, req.DoctorID); err != nil {
		return nil, err
	}

	exc := &model.DateException{
		DoctorID:    req.DoctorID,
		Date:        date,
		IsAvailable: req.IsAvailable,
		Reason:      req.Reason,
	}
	if err := s.repo.UpsertException(ctx, exc); err != nil {
		return nil, fmt.Errorf("failed to save exception: %w", err)
	}
	return exc, nil
}

func (s *Service) ListSlots(ctx context.Context, doctorID uuid.UUID) ([]*model.WeeklySlot, error) {
	return s.repo.ListSlots(ctx, doctorID)
}

func (s *Service) ListExceptions(ctx context.Context, doctorID uuid.UUID) ([]*model.DateException, error) {
	return s.repo.ListExceptions(ctx, doctorID)
}

func validateSlotTimes(start, end string) error {
	startMin, err := model.MinuteOfDay(start)
	if err != nil {
		return apperrors.Validation(err.Error())
	}
	endMin, err := model.MinuteOfDay(end)
	if err != nil {
		return apperrors.Validation(err.Error())
	}
	if startMin >= endMin {
		return apperrors.Validationf("start time %s must be before end time %s", start, end)
	}
	return nil
}
