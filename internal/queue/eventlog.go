package queue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// EventLog appends each reservation event as one JSON line to a file.
type EventLog struct {
	mu  sync.Mutex
	f   *os.File
	out zerolog.Logger
}

// OpenEventLog creates dir if needed and opens dir/reservation.log for
// appending.
func OpenEventLog(dir string) (*EventLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "reservation.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return &EventLog{f: f, out: zerolog.New(f).With().Timestamp().Logger()}, nil
}

// Handle writes ev. It satisfies Handler.
func (l *EventLog) Handle(_ context.Context, ev ReservationEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := "reservation created"
	if ev.Type == EventReservationCanceled {
		msg = "reservation canceled"
	}
	l.out.Info().
		Str("type", string(ev.Type)).
		Int64("reservation_id", ev.ReservationID).
		Str("name", ev.Name).
		Str("date", ev.Date).
		Str("start_at", ev.StartAt).
		Int64("theme_id", ev.ThemeID).
		Str("theme", ev.ThemeName).
		Int64("member_id", ev.MemberID).
		Time("occurred_at", ev.OccurredAt).
		Msg(msg)
	return nil
}

// Close closes the underlying file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
