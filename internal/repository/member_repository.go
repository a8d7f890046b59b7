package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/roomescape/internal/model"
)

// MemberRepo reads and writes the member table.
type MemberRepo struct{ db *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

const memberColumns = "id, name, email, password, role, created_at"

// Create inserts m and sets its ID. The email is normalized to lower case.
// A taken email yields ErrDuplicate.
func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	m.Email = normalizeEmail(m.Email)
	if m.Role == "" {
		m.Role = model.RoleUser
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO member (name, email, password, role) VALUES (?, ?, ?, ?)",
		m.Name, m.Email, m.PasswordHash, string(m.Role))
	if err != nil {
		return mapError("insert member", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// FindByEmail fetches a member by normalized email.
func (r *MemberRepo) FindByEmail(ctx context.Context, email string) (model.Member, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM member WHERE email = ? LIMIT 1", normalizeEmail(email))
	m, err := scanMember(row)
	return m, mapError("find member by email", err)
}

// FindByID fetches a member by id.
func (r *MemberRepo) FindByID(ctx context.Context, id int64) (model.Member, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM member WHERE id = ? LIMIT 1", id)
	m, err := scanMember(row)
	return m, mapError("find member by id", err)
}

// List returns all members ordered by id.
func (r *MemberRepo) List(ctx context.Context) ([]model.Member, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+memberColumns+" FROM member ORDER BY id")
	if err != nil {
		return nil, mapError("list members", err)
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, mapError("scan member", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(s rowScanner) (model.Member, error) {
	var (
		m    model.Member
		role string
	)
	err := s.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &role, &m.CreatedAt)
	m.Role = model.Role(role)
	return m, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
