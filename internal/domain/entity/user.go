// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. It is created once on registration and is
// never updated or deleted by the credential flows.
type User struct {
	ID           uuid.UUID `json:"id"`         // Stable, unique identifier assigned by the user store.
	Email        string    `json:"email"`      // Unique login identifier.
	Username     string    `json:"username"`   // Display name chosen at registration.
	PasswordHash string    `json:"-"`          // One-way hash of the password. Never the plaintext.
	CreatedAt    time.Time `json:"created_at"` // Timestamp of when the account was registered.
	UpdatedAt    time.Time `json:"updated_at"` // Timestamp of the last modification, set by the store.
}

// PublicUser is the subset of a User that is safe to hand to callers.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Public projects the user onto its public view. The returned value is a fresh
// copy with no reference back to the record, so the hash cannot leak through it.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID.String(),
		Email:    u.Email,
		Username: u.Username,
	}
}
