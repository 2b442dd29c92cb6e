package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// Role controls what a user may administer
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RolePlayer Role = "PLAYER"
)

// PlayerType distinguishes regular team members from invited guests.
// Only team players contribute to the piggy bank and appear in statistics.
type PlayerType string

const (
	PlayerTypeTeam  PlayerType = "TEAM"
	PlayerTypeGuest PlayerType = "GUEST"
)

// User represents an account that can host and play sessions
type User struct {
	ID         UserID
	Email      string
	Name       string
	Role       Role
	PlayerType PlayerType
	IsActive   bool
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credentials extends User with authentication data
// Stored separately so password hashes never travel with session state
type Credentials struct {
	UserID       UserID
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
