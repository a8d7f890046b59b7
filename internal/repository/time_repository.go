package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/roomescape/internal/model"
)

// TimeRepo reads and writes the reservation_time table.
type TimeRepo struct{ db *sql.DB }

func NewTimeRepo(db *sql.DB) *TimeRepo { return &TimeRepo{db: db} }

// sqlTimeLayout is how start_at is sent to and read from the TIME column.
const sqlTimeLayout = "15:04:05"

// List returns every time slot ordered by start time.
func (r *TimeRepo) List(ctx context.Context) ([]model.ReservationTime, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, start_at FROM reservation_time ORDER BY start_at")
	if err != nil {
		return nil, mapError("list times", err)
	}
	defer rows.Close()

	times := []model.ReservationTime{}
	for rows.Next() {
		t, err := scanTime(rows)
		if err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// FindByID fetches a time slot by id.
func (r *TimeRepo) FindByID(ctx context.Context, id int64) (model.ReservationTime, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, start_at FROM reservation_time WHERE id = ?", id)
	t, err := scanTime(row)
	if err != nil {
		return model.ReservationTime{}, mapError("find time", err)
	}
	return t, nil
}

// Create inserts a time slot starting at the hour and minute of startAt.
// An existing slot with the same start time yields ErrDuplicate.
func (r *TimeRepo) Create(ctx context.Context, startAt time.Time) (model.ReservationTime, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reservation_time (start_at) VALUES (?)", startAt.Format(sqlTimeLayout))
	if err != nil {
		return model.ReservationTime{}, mapError("insert time", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ReservationTime{}, err
	}
	return model.ReservationTime{ID: id, StartAt: startAt}, nil
}

// Delete removes a time slot. ErrNotFound if it does not exist, ErrReferenced
// if a reservation still points at it.
func (r *TimeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservation_time WHERE id = ?", id)
	if err != nil {
		return mapError("delete time", err)
	}
	return requireAffected(res)
}

// IsReferenced reports whether any reservation uses the time slot.
func (r *TimeRepo) IsReferenced(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM reservation WHERE time_id = ?)", id).Scan(&exists)
	if err != nil {
		return false, mapError("time referenced", err)
	}
	return exists, nil
}

// ListAvailable returns every time slot flagged with whether it is already
// booked for the given date and theme.
func (r *TimeRepo) ListAvailable(ctx context.Context, date time.Time, themeID int64) ([]model.AvailableTime, error) {
	const q = `
SELECT t.id, t.start_at,
       CASE WHEN r.id IS NULL THEN FALSE ELSE TRUE END AS already_booked
FROM reservation_time t
LEFT JOIN reservation r
       ON r.time_id = t.id AND r.date = ? AND r.theme_id = ?
ORDER BY t.start_at`
	rows, err := r.db.QueryContext(ctx, q, date.Format(model.DateLayout), themeID)
	if err != nil {
		return nil, mapError("list available times", err)
	}
	defer rows.Close()

	out := []model.AvailableTime{}
	for rows.Next() {
		var (
			a     model.AvailableTime
			start string
		)
		if err := rows.Scan(&a.ID, &start, &a.AlreadyBooked); err != nil {
			return nil, mapError("scan available time", err)
		}
		if a.StartAt, err = model.ParseClock(start); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanTime(s rowScanner) (model.ReservationTime, error) {
	var (
		t     model.ReservationTime
		start string
	)
	if err := s.Scan(&t.ID, &start); err != nil {
		return t, err
	}
	parsed, err := model.ParseClock(start)
	if err != nil {
		return t, err
	}
	t.StartAt = parsed
	return t, nil
}
