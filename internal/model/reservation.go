package model

import "time"

// DateLayout is the wire format of a reservation date.
const DateLayout = "2006-01-02"

// Reservation books a theme at a date and time slot under a member's name
// (`reservation` table). Time and Theme are populated from joins when read.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – name of the person the booking is for.
//	Date      – booking date, midnight in the service's location.
//	Time      – linked time slot (reservation.time_id).
//	Theme     – linked theme (reservation.theme_id).
//	CreatedAt – creation timestamp.
type Reservation struct {
	ID        int64
	Name      string
	Date      time.Time
	Time      ReservationTime
	Theme     Theme
	CreatedAt time.Time
}

// StartsAt returns the instant the reservation begins.
func (r Reservation) StartsAt() time.Time {
	return r.Time.On(r.Date)
}

// IsPast reports whether the reservation starts at or before now. A date
// earlier than today's date is always past.
func (r Reservation) IsPast(now time.Time) bool {
	return !r.StartsAt().After(now.In(r.Date.Location()))
}

// IsBeforeDay reports whether the reservation date is before now's date.
func (r Reservation) IsBeforeDay(now time.Time) bool {
	now = now.In(r.Date.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, r.Date.Location())
	return day.Before(today)
}
