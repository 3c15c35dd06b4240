package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if req.FullName == "" || req.MobileNumber == "" {
		return nil, apperrors.Validation("full name and mobile number are required")
	}

	gender := req.Gender
	if gender == "" {
		gender = model.GenderUnknown
	}

	patient := &model.Patient{
		FullName:      req.FullName,
		MobileNumber:  req.MobileNumber,
		WhatsappOptIn: req.WhatsappOptIn,
		DateOfBirth:   req.DateOfBirth,
		Gender:        gender,
		Email:         req.Email,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

// Search matches patients by name or mobile number. Queries shorter than
// three characters return nothing, matching the front-desk lookup behavior.
func (s *Service) Search(ctx context.Context, query string) ([]*model.Patient, error) {
	if len(query) < 3 {
		return []*model.Patient{}, nil
	}
	return s.repo.List(ctx, &model.PatientFilters{Search: query})
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return s.repo.List(ctx, filters)
}
