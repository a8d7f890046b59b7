package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/queue"
	"github.com/iliyamo/roomescape/internal/repository"
	"github.com/iliyamo/roomescape/internal/telemetry"
)

// CreateReservation is the input of ReservationService.Create.
type CreateReservation struct {
	Name    string
	Date    time.Time
	TimeID  int64
	ThemeID int64

	// Member is the logged-in member, if any. Their name is used when
	// Name is blank.
	Member *model.LoginMember
}

// ReservationService books and cancels reservations.
type ReservationService struct {
	reservations ReservationRepository
	times        TimeRepository
	themes       ThemeRepository
	events       EventPublisher
	now          Clock
	loc          *time.Location
}

func NewReservationService(
	reservations ReservationRepository,
	times TimeRepository,
	themes ThemeRepository,
	events EventPublisher,
	now Clock,
	loc *time.Location,
) *ReservationService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReservationService{
		reservations: reservations,
		times:        times,
		themes:       themes,
		events:       events,
		now:          orNow(now),
		loc:          loc,
	}
}

// List returns every reservation ordered by date and start time.
func (s *ReservationService) List(ctx context.Context) ([]model.Reservation, error) {
	return s.reservations.List(ctx)
}

// Create books a theme at a date and time slot. The slot must start after
// now and must not already be booked for the theme.
func (s *ReservationService) Create(ctx context.Context, in CreateReservation) (r model.Reservation, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ReservationService.Create",
		attribute.Int64("time.id", in.TimeID),
		attribute.Int64("theme.id", in.ThemeID),
		attribute.String("date", in.Date.Format(model.DateLayout)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	name := strings.TrimSpace(in.Name)
	if name == "" && in.Member != nil {
		name = in.Member.Name
	}
	if name == "" {
		return model.Reservation{}, ErrNameRequired
	}

	slot, err := s.times.FindByID(ctx, in.TimeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, ErrTimeNotFound
		}
		return model.Reservation{}, err
	}
	theme, err := s.themes.FindByID(ctx, in.ThemeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, ErrThemeNotFound
		}
		return model.Reservation{}, err
	}

	y, m, d := in.Date.Date()
	r = model.Reservation{
		Name:  name,
		Date:  time.Date(y, m, d, 0, 0, 0, 0, s.loc),
		Time:  slot,
		Theme: theme,
	}
	now := s.now()
	if r.IsBeforeDay(now) {
		return model.Reservation{}, ErrPastDate
	}
	if r.IsPast(now) {
		return model.Reservation{}, ErrPastTime
	}

	taken, err := s.reservations.Exists(ctx, r.Date, slot.ID, theme.ID)
	if err != nil {
		return model.Reservation{}, err
	}
	if taken {
		return model.Reservation{}, ErrDuplicateReservation
	}
	if err := s.reservations.Create(ctx, &r); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return model.Reservation{}, ErrDuplicateReservation
		case errors.Is(err, repository.ErrMissingReference):
			// time slot or theme deleted since it was looked up
			return model.Reservation{}, ErrTimeNotFound
		}
		return model.Reservation{}, err
	}
	r.CreatedAt = now

	s.publish(ctx, queue.EventReservationCreated, r, in.Member)
	return r, nil
}

// Delete cancels a reservation. member may be nil.
func (s *ReservationService) Delete(ctx context.Context, id int64, member *model.LoginMember) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "ReservationService.Delete", attribute.Int64("reservation.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	if err := s.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	s.publish(ctx, queue.EventReservationCanceled, r, member)
	return nil
}

// publish never fails the caller; broker trouble is only logged.
func (s *ReservationService) publish(ctx context.Context, typ queue.EventType, r model.Reservation, member *model.LoginMember) {
	var memberID int64
	if member != nil {
		memberID = member.ID
	}
	ev := queue.NewReservationEvent(typ, r, memberID, s.now())
	if err := s.events.Publish(ctx, ev); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("event", string(typ)).
			Int64("reservation_id", r.ID).
			Msg("publish reservation event failed")
	}
}
