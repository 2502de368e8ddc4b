package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/classgrid/classgrid-api/internal/models"
	appErrors "github.com/classgrid/classgrid-api/pkg/errors"
)

type teacherAvailabilityLister interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAvailability, error)
}

// AvailabilityService serves the read-side lookups the scheduling UI needs:
// the weekly slot grid and per-teacher availability windows.
type AvailabilityService struct {
	timeSlots    timeSlotLister
	availability teacherAvailabilityLister
	logger       *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService instance.
func NewAvailabilityService(timeSlots timeSlotLister, availability teacherAvailabilityLister, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{timeSlots: timeSlots, availability: availability, logger: logger}
}

// TimeSlots returns the full weekly grid.
func (s *AvailabilityService) TimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.timeSlots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	return slots, nil
}

// TeacherAvailability returns one teacher's declared windows. An unknown
// teacher simply has no windows.
func (s *AvailabilityService) TeacherAvailability(ctx context.Context, teacherID string) ([]models.TeacherAvailability, error) {
	windows, err := s.availability.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher availability")
	}
	return windows, nil
}
