package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/repository"
	"github.com/iliyamo/roomescape/internal/telemetry"
)

// TimeService manages bookable time slots.
type TimeService struct {
	times  TimeRepository
	themes ThemeRepository
}

func NewTimeService(times TimeRepository, themes ThemeRepository) *TimeService {
	return &TimeService{times: times, themes: themes}
}

// List returns every time slot ordered by start time.
func (s *TimeService) List(ctx context.Context) ([]model.ReservationTime, error) {
	return s.times.List(ctx)
}

// Create adds a slot starting at startAt's hour and minute.
func (s *TimeService) Create(ctx context.Context, startAt time.Time) (model.ReservationTime, error) {
	t, err := s.times.Create(ctx, startAt)
	if errors.Is(err, repository.ErrDuplicate) {
		return model.ReservationTime{}, ErrDuplicateTime
	}
	return t, err
}

// Delete removes a slot that no reservation uses.
func (s *TimeService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "TimeService.Delete", attribute.Int64("time.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err := s.times.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTimeNotFound
		}
		return err
	}
	used, err := s.times.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ErrTimeInUse
	}
	// A reservation inserted after the check is caught by the foreign key.
	err = s.times.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrReferenced):
		return ErrTimeInUse
	case errors.Is(err, repository.ErrNotFound):
		return ErrTimeNotFound
	}
	return err
}

// Available lists every slot flagged with whether it is booked for the given
// date and theme.
func (s *TimeService) Available(ctx context.Context, date time.Time, themeID int64) ([]model.AvailableTime, error) {
	if _, err := s.themes.FindByID(ctx, themeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrThemeNotFound
		}
		return nil, err
	}
	return s.times.ListAvailable(ctx, date, themeID)
}
