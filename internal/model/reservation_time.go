package model

import "time"

// ClockLayout is the wire format of a time slot's start time.
const ClockLayout = "15:04"

// ReservationTime is a bookable time-of-day slot shared across themes and
// dates (`reservation_time` table). StartAt only carries hour and minute; its
// date part is the zero date.
type ReservationTime struct {
	ID      int64     // reservation_time.id
	StartAt time.Time // reservation_time.start_at
}

// ParseClock parses an "HH:mm" (or "HH:mm:ss" as returned by MySQL TIME
// columns) string into a StartAt value.
func ParseClock(s string) (time.Time, error) {
	if t, err := time.Parse(ClockLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", s)
}

// Clock formats StartAt as "HH:mm".
func (t ReservationTime) Clock() string {
	return t.StartAt.Format(ClockLayout)
}

// On returns the instant this slot starts on the given date, in the date's
// location.
func (t ReservationTime) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.StartAt.Hour(), t.StartAt.Minute(), 0, 0, date.Location())
}

// AvailableTime is a time slot flagged with whether it is already booked for
// a particular date and theme.
type AvailableTime struct {
	ReservationTime
	AlreadyBooked bool
}
