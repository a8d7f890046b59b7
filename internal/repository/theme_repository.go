package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/roomescape/internal/model"
)

// ThemeRepo reads and writes the theme table.
type ThemeRepo struct{ db *sql.DB }

func NewThemeRepo(db *sql.DB) *ThemeRepo { return &ThemeRepo{db: db} }

// List returns every theme ordered by id.
func (r *ThemeRepo) List(ctx context.Context) ([]model.Theme, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description, thumbnail FROM theme ORDER BY id")
	if err != nil {
		return nil, mapError("list themes", err)
	}
	defer rows.Close()

	themes := []model.Theme{}
	for rows.Next() {
		var th model.Theme
		if err := rows.Scan(&th.ID, &th.Name, &th.Description, &th.Thumbnail); err != nil {
			return nil, mapError("scan theme", err)
		}
		themes = append(themes, th)
	}
	return themes, rows.Err()
}

// FindByID fetches a theme by id.
func (r *ThemeRepo) FindByID(ctx context.Context, id int64) (model.Theme, error) {
	var th model.Theme
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, thumbnail FROM theme WHERE id = ?", id).
		Scan(&th.ID, &th.Name, &th.Description, &th.Thumbnail)
	if err != nil {
		return model.Theme{}, mapError("find theme", err)
	}
	return th, nil
}

// Create inserts th and sets its ID. A taken name yields ErrDuplicate.
func (r *ThemeRepo) Create(ctx context.Context, th *model.Theme) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO theme (name, description, thumbnail) VALUES (?, ?, ?)",
		th.Name, th.Description, th.Thumbnail)
	if err != nil {
		return mapError("insert theme", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	th.ID = id
	return nil
}

// Delete removes a theme. ErrNotFound if it does not exist, ErrReferenced if
// a reservation still points at it.
func (r *ThemeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM theme WHERE id = ?", id)
	if err != nil {
		return mapError("delete theme", err)
	}
	return requireAffected(res)
}

// IsReferenced reports whether any reservation uses the theme.
func (r *ThemeRepo) IsReferenced(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM reservation WHERE theme_id = ?)", id).Scan(&exists)
	if err != nil {
		return false, mapError("theme referenced", err)
	}
	return exists, nil
}

// Popular ranks themes by how many reservations fall on dates in [from, to],
// most booked first. Themes without reservations in the window are omitted.
func (r *ThemeRepo) Popular(ctx context.Context, from, to time.Time, limit int) ([]model.PopularTheme, error) {
	const q = `
SELECT th.id, th.name, th.description, th.thumbnail, COUNT(r.id) AS cnt
FROM reservation r
JOIN theme th ON th.id = r.theme_id
WHERE r.date BETWEEN ? AND ?
GROUP BY th.id, th.name, th.description, th.thumbnail
ORDER BY cnt DESC, th.id
LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q,
		from.Format(model.DateLayout), to.Format(model.DateLayout), limit)
	if err != nil {
		return nil, mapError("popular themes", err)
	}
	defer rows.Close()

	out := []model.PopularTheme{}
	for rows.Next() {
		var p model.PopularTheme
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Thumbnail, &p.ReservationCount); err != nil {
			return nil, mapError("scan popular theme", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
