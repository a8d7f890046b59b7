// Package service holds the business rules of the reservation system. Each
// service depends on small repository interfaces declared here and returns
// the sentinel errors below, which handlers translate into HTTP statuses.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/queue"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("no logged-in member")
	ErrDuplicateEmail     = errors.New("email already registered")

	ErrTimeNotFound  = errors.New("time slot not found")
	ErrDuplicateTime = errors.New("time slot already exists")
	ErrTimeInUse     = errors.New("time slot is referenced by a reservation")

	ErrThemeNotFound  = errors.New("theme not found")
	ErrDuplicateTheme = errors.New("theme already exists")
	ErrThemeInUse     = errors.New("theme is referenced by a reservation")

	ErrReservationNotFound  = errors.New("reservation not found")
	ErrDuplicateReservation = errors.New("reservation already exists for this date, time and theme")
	ErrPastDate             = errors.New("reservation date is in the past")
	ErrPastTime             = errors.New("reservation time has already passed")
	ErrNameRequired         = errors.New("reservation name is required")
)

// MemberRepository is the member storage used by MemberService.
type MemberRepository interface {
	Create(ctx context.Context, m *model.Member) error
	FindByEmail(ctx context.Context, email string) (model.Member, error)
	FindByID(ctx context.Context, id int64) (model.Member, error)
	List(ctx context.Context) ([]model.Member, error)
}

// TimeRepository is the reservation_time storage.
type TimeRepository interface {
	List(ctx context.Context) ([]model.ReservationTime, error)
	FindByID(ctx context.Context, id int64) (model.ReservationTime, error)
	Create(ctx context.Context, startAt time.Time) (model.ReservationTime, error)
	Delete(ctx context.Context, id int64) error
	IsReferenced(ctx context.Context, id int64) (bool, error)
	ListAvailable(ctx context.Context, date time.Time, themeID int64) ([]model.AvailableTime, error)
}

// ThemeRepository is the theme storage.
type ThemeRepository interface {
	List(ctx context.Context) ([]model.Theme, error)
	FindByID(ctx context.Context, id int64) (model.Theme, error)
	Create(ctx context.Context, th *model.Theme) error
	Delete(ctx context.Context, id int64) error
	IsReferenced(ctx context.Context, id int64) (bool, error)
	Popular(ctx context.Context, from, to time.Time, limit int) ([]model.PopularTheme, error)
}

// ReservationRepository is the reservation storage.
type ReservationRepository interface {
	List(ctx context.Context) ([]model.Reservation, error)
	FindByID(ctx context.Context, id int64) (model.Reservation, error)
	Exists(ctx context.Context, date time.Time, timeID, themeID int64) (bool, error)
	Create(ctx context.Context, r *model.Reservation) error
	Delete(ctx context.Context, id int64) error
}

// EventPublisher delivers reservation events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Clock supplies the current time; tests pin it.
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
