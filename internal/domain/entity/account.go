package entity

import (
	"time"
)

// Account is the aggregate root for the registration domain.
// Passwords are stored as bcrypt hashes in PasswordHash; verification tokens
// are stored only as SHA-256 hex digests in TokenHash.
type Account struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Region       string
	Status       Status
	IsVerified   bool

	// TokenHash and TokenExpiresAt are set and cleared together. Both are
	// empty once the outstanding token has been consumed.
	TokenHash      string
	TokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingToken reports whether a verification token is outstanding.
func (a *Account) HasPendingToken() bool {
	return a.TokenHash != "" && a.TokenExpiresAt != nil
}
