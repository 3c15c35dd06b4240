package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository"
)

// Invalidator drops cached roster entries after an edit.
type Invalidator interface {
	InvalidateDoctor(doctorID uuid.UUID)
}

type Service struct {
	repo        repository.DoctorRepository
	invalidator Invalidator
}

func NewService(repo repository.DoctorRepository, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{
		FullName:        req.FullName,
		Department:      req.Department,
		Specialty:       req.Specialty,
		ConsultationFee: req.ConsultationFee,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.repo.Get(ctx, id)
}

// Update applies roster edits. Only the consultation fee and active flag are
// mutable; doctors referenced by appointments are deactivated, never removed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateDoctor(id)
	}
	return doctor, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*model.Doctor, error) {
	return s.repo.List(ctx, activeOnly)
}
