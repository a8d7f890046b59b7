package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/roomescape/internal/model"
)

// ReservationRepo reads and writes the reservation table. Reads join the
// linked time slot and theme so callers receive complete records.
type ReservationRepo struct{ db *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationSelect = `
SELECT r.id, r.name, r.date, r.created_at,
       t.id, t.start_at,
       th.id, th.name, th.description, th.thumbnail
FROM reservation r
JOIN reservation_time t ON t.id = r.time_id
JOIN theme th ON th.id = r.theme_id`

// List returns every reservation ordered by date then start time.
func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, reservationSelect+" ORDER BY r.date, t.start_at, r.id")
	if err != nil {
		return nil, mapError("list reservations", err)
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, mapError("scan reservation", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// FindByID fetches one reservation.
func (r *ReservationRepo) FindByID(ctx context.Context, id int64) (model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, reservationSelect+" WHERE r.id = ?", id))
	if err != nil {
		return model.Reservation{}, mapError("find reservation", err)
	}
	return res, nil
}

// Exists reports whether the (date, time, theme) slot is already booked.
func (r *ReservationRepo) Exists(ctx context.Context, date time.Time, timeID, themeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM reservation WHERE date = ? AND time_id = ? AND theme_id = ?)",
		date.Format(model.DateLayout), timeID, themeID).Scan(&exists)
	if err != nil {
		return false, mapError("reservation exists", err)
	}
	return exists, nil
}

// Create inserts res and sets its ID. The unique (date, time_id, theme_id)
// index turns a concurrent double booking into ErrDuplicate.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO reservation (name, date, time_id, theme_id) VALUES (?, ?, ?, ?)",
		res.Name, res.Date.Format(model.DateLayout), res.Time.ID, res.Theme.ID)
	if err != nil {
		return mapError("insert reservation", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

// Delete removes a reservation, ErrNotFound if it does not exist.
func (r *ReservationRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM reservation WHERE id = ?", id)
	if err != nil {
		return mapError("delete reservation", err)
	}
	return requireAffected(result)
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		res   model.Reservation
		start string
	)
	err := s.Scan(&res.ID, &res.Name, &res.Date, &res.CreatedAt,
		&res.Time.ID, &start,
		&res.Theme.ID, &res.Theme.Name, &res.Theme.Description, &res.Theme.Thumbnail)
	if err != nil {
		return res, err
	}
	res.Time.StartAt, err = model.ParseClock(start)
	return res, err
}
