package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

// Service computes dashboard and daily analytics. It reads appointments and
// payments only; it never writes.
type Service struct {
	repo     repository.ReportRepository
	payments repository.PaymentRepository
}

func NewService(repo repository.ReportRepository, payments repository.PaymentRepository) *Service {
	return &Service{repo: repo, payments: payments}
}

func (s *Service) DashboardMetrics(ctx context.Context, from, to time.Time) (*model.DashboardMetrics, error) {
	if !to.After(from) {
		return nil, apperrors.Validation("report range end must be after start")
	}
	return s.repo.DashboardMetrics(ctx, from, to)
}

func (s *Service) DailyReport(ctx context.Context, date time.Time) ([]*model.DailyReport, error) {
	return s.repo.DailyReport(ctx, date)
}

// PaymentForAppointment returns the payment attached to an appointment, if any.
func (s *Service) PaymentForAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	return s.payments.GetByAppointment(ctx, appointmentID)
}
