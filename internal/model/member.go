package model

import "time"

// Role is the authorization level of a member.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Member represents a registered user as stored in the `member` table.
//
// Fields:
//
//	ID           – primary key identifier.
//	Name         – display name, also used as the default reservation name.
//	Email        – unique login identifier.
//	PasswordHash – bcrypt hash of the password.
//	Role         – USER or ADMIN.
//	CreatedAt    – timestamp of creation.
type Member struct {
	ID           int64     // member.id
	Name         string    // member.name
	Email        string    // member.email
	PasswordHash string    // member.password
	Role         Role      // member.role
	CreatedAt    time.Time // member.created_at
}

// LoginMember is the identity resolved from a request's token cookie.
type LoginMember struct {
	ID   int64
	Name string
	Role Role
}

// IsAdmin reports whether the member may manage times and themes.
func (m LoginMember) IsAdmin() bool {
	return m.Role == RoleAdmin
}
