// Package model defines the data structures used throughout the application.
package model

import "time"

// Role controls what a user may do beyond their own records.
// ADMIN may mutate or delete any movie; USER only their own.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a registered account.
//
// PasswordHash is the bcrypt hash of the password — never the password itself,
// and never serialized to JSON (`json:"-"`). Authentication lives in the auth
// service; everything else only reads ID, Username and Role.
//
// WHY Email string (not *string)?
// An empty string is a perfectly good "not set" value and is safe to display.
// We reserve pointers for fields where zero and absent genuinely differ
// (see Movie.Rating).
//
// Username is UNIQUE in the database and doubles as the public handle used by
// the follow endpoints (/api/users/follow/{username}).
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds administrative privilege.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
