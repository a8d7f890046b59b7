// Package queue carries reservation events over RabbitMQ: the API publishes
// one event per created or canceled reservation and the worker consumes them
// into an append-only event log.
package queue

import (
	"errors"
	"time"

	"github.com/iliyamo/roomescape/internal/model"
)

// DefaultQueue is the durable queue reservation events are routed to.
const DefaultQueue = "reservation.events"

// EventType names what happened to a reservation.
type EventType string

const (
	EventReservationCreated  EventType = "reservation.created"
	EventReservationCanceled EventType = "reservation.canceled"
)

// ReservationEvent is the JSON payload published for every reservation
// change. It carries enough for consumers to log or notify without querying
// the database.
type ReservationEvent struct {
	Type          EventType `json:"type"`
	ReservationID int64     `json:"reservationId"`
	Name          string    `json:"name"`
	Date          string    `json:"date"`
	TimeID        int64     `json:"timeId"`
	StartAt       string    `json:"startAt"`
	ThemeID       int64     `json:"themeId"`
	ThemeName     string    `json:"themeName"`
	MemberID      int64     `json:"memberId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewReservationEvent builds the event for r. memberID is zero for
// anonymous requests.
func NewReservationEvent(typ EventType, r model.Reservation, memberID int64, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          typ,
		ReservationID: r.ID,
		Name:          r.Name,
		Date:          r.Date.Format(model.DateLayout),
		TimeID:        r.Time.ID,
		StartAt:       r.Time.Clock(),
		ThemeID:       r.Theme.ID,
		ThemeName:     r.Theme.Name,
		MemberID:      memberID,
		OccurredAt:    at.UTC(),
	}
}

var errMalformedEvent = errors.New("malformed reservation event")

// Validate rejects payloads that cannot describe a reservation change.
func (e ReservationEvent) Validate() error {
	switch e.Type {
	case EventReservationCreated, EventReservationCanceled:
	default:
		return errMalformedEvent
	}
	if e.ReservationID <= 0 {
		return errMalformedEvent
	}
	return nil
}
