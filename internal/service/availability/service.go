package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/careloop/hms-api/internal/model"
	"github.com/careloop/hms-api/internal/repository"
	apperrors "github.com/careloop/hms-api/pkg/errors"
)

// SlotGranularity is the spacing between bookable time points within a slot.
const SlotGranularity = 30 * time.Minute

// Occupying statuses consume capacity; cancelled and rescheduled
// appointments free their time point again.
var occupyingStatuses = []model.AppointmentStatus{
	model.AppointmentStatusBooked,
	model.AppointmentStatusCompleted,
}

// Service computes the effective bookable time points for a (doctor, date).
// It is a pure read over schedule and appointment state.
type Service struct {
	scheduleRepo    repository.ScheduleRepository
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	doctorCache     *cache.Cache
}

func NewService(scheduleRepo repository.ScheduleRepository, appointmentRepo repository.AppointmentRepository, doctorRepo repository.DoctorRepository) *Service {
	return &Service{
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		doctorCache:     cache.New(5*time.Minute, 10*time.Minute),
	}
}

// ListAvailability returns the ordered open time points for the doctor on the
// given calendar date, with remaining capacity per point. Fully booked points
// are omitted unless the covering slot is unlimited.
func (s *Service) ListAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.TimePoint, error) {
	doctor, err := s.getDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return []*model.TimePoint{}, nil
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	// An unavailability exception wins over every recurring slot.
	// An availability exception only neutralizes a holiday; it does not
	// synthesize windows of its own.
	exc, err := s.scheduleRepo.GetException(ctx, doctorID, day)
	if err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, fmt.Errorf("failed to look up exception: %w", err)
	}
	if exc != nil && !exc.IsAvailable {
		return []*model.TimePoint{}, nil
	}

	slots, err := s.scheduleRepo.ListActiveSlotsForWeekday(ctx, doctorID, model.WeekdayOf(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	points, err := expandSlots(slots, day)
	if err != nil {
		return nil, err
	}

	result := make([]*model.TimePoint, 0, len(points))
	for _, p := range points {
		taken, err := s.appointmentRepo.CountAtTime(ctx, doctorID, p.Time, occupyingStatuses)
		if err != nil {
			return nil, fmt.Errorf("failed to count bookings: %w", err)
		}
		if p.Unlimited {
			p.Remaining = 0
			result = append(result, p)
			continue
		}
		remaining := p.Remaining - taken
		if remaining <= 0 {
			continue
		}
		p.Remaining = remaining
		result = append(result, p)
	}
	return result, nil
}

// RemainingAt reports capacity for one exact datetime, used by the booking
// ledger inside its critical section. Returns the remaining count and
// whether the point is unlimited; a point outside any open window reports
// zero remaining.
func (s *Service) RemainingAt(ctx context.Context, doctorID uuid.UUID, at time.Time) (int, bool, error) {
	points, err := s.ListAvailability(ctx, doctorID, at)
	if err != nil {
		return 0, false, err
	}
	for _, p := range points {
		if p.Time.Equal(at) {
			return p.Remaining, p.Unlimited, nil
		}
	}
	return 0, false, nil
}

// expandSlots turns recurring windows into concrete time points for the date,
// deduplicating overlaps. When overlapping slots disagree on capacity the
// larger wins, with unlimited beating any finite count.
func expandSlots(slots []*model.WeeklySlot, date time.Time) ([]*model.TimePoint, error) {
	type pointCap struct {
		remaining int
		unlimited bool
	}
	byMinute := make(map[int]pointCap)

	for _, slot := range slots {
		startMin, err := model.MinuteOfDay(slot.StartTime)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", slot.ID, err)
		}
		endMin, err := model.MinuteOfDay(slot.EndTime)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", slot.ID, err)
		}

		step := int(SlotGranularity / time.Minute)
		for m := startMin; m < endMin; m += step {
			existing, ok := byMinute[m]
			cur := pointCap{remaining: slot.MaxPatients, unlimited: slot.MaxPatients == 0}
			if !ok {
				byMinute[m] = cur
				continue
			}
			if existing.unlimited {
				continue
			}
			if cur.unlimited || cur.remaining > existing.remaining {
				byMinute[m] = cur
			}
		}
	}

	minutes := make([]int, 0, len(byMinute))
	for m := range byMinute {
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)

	points := make([]*model.TimePoint, 0, len(minutes))
	for _, m := range minutes {
		capacity := byMinute[m]
		points = append(points, &model.TimePoint{
			Time:      time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, date.Location()),
			Remaining: capacity.remaining,
			Unlimited: capacity.unlimited,
		})
	}
	return points, nil
}

func (s *Service) getDoctor(ctx context.Context, doctorID uuid.UUID) (*model.Doctor, error) {
	if cached, ok := s.doctorCache.Get(doctorID.String()); ok {
		return cached.(*model.Doctor), nil
	}
	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	s.doctorCache.Set(doctorID.String(), doctor, cache.DefaultExpiration)
	return doctor, nil
}

// InvalidateDoctor drops a cached roster entry after a roster edit.
func (s *Service) InvalidateDoctor(doctorID uuid.UUID) {
	s.doctorCache.Delete(doctorID.String())
}
