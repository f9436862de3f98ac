package repository

import (
	"errors"
	"time"

	"github.com/cropshield/cropshield-api/internal/domain/entity"
)

// ErrNotFound is returned by lookups that match no account.
var ErrNotFound = errors.New("account not found")

// ErrDuplicate is returned by Create when a unique column (email, username,
// token hash) collides. Callers that pre-checked existence still need to
// handle it: two concurrent creates can both pass the check.
var ErrDuplicate = errors.New("account already exists")

// AccountRepository defines the interface for account persistence.
//
// ConsumeToken must be a single conditional update (token hash matches and
// the token is unexpired) so that two concurrent consumers of the same token
// resolve to exactly one winner.
type AccountRepository interface {
	Create(a *entity.Account) error
	GetByID(id string) (*entity.Account, error)
	GetByEmail(email string) (*entity.Account, error)
	GetByTokenHash(hash string) (*entity.Account, error)
	ExistsByEmailOrUsername(email, username string) (bool, error)

	// ConsumeToken atomically advances status, sets is_verified, and clears
	// the token columns for the account holding the given unexpired token
	// hash. Returns false when no row matched (unknown, already consumed,
	// or expired in the meantime).
	ConsumeToken(hash string, status entity.Status, now time.Time) (bool, error)

	// UpdateToken overwrites the outstanding token, invalidating the
	// previous one even if unexpired.
	UpdateToken(id, hash string, expiresAt time.Time) error

	// UpdateStatus sets the lifecycle status. When the target status is a
	// verified one it also sets is_verified and clears any outstanding
	// token, mirroring ConsumeToken's postcondition.
	UpdateStatus(id string, status entity.Status) error

	UpdatePassword(id, passwordHash string) error
	ListByStatus(status entity.Status) ([]*entity.Account, error)
	ListByRole(role entity.Role) ([]*entity.Account, error)
}
