package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cropshield/cropshield-api/internal/domain/entity"
	"github.com/cropshield/cropshield-api/internal/domain/repository"
)

const accountColumns = `id, name, username, email, password_hash, role, region, status, is_verified, verification_token, token_expires_at, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(a *entity.Account) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, name, username, email, password_hash, role, region, status, is_verified, verification_token, token_expires_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8, $9, NULLIF($10, ''), $11)
		RETURNING created_at, updated_at
	`, a.ID, a.Name, a.Username, a.Email, a.PasswordHash, a.Role, a.Region, a.Status, a.IsVerified, a.TokenHash, a.TokenExpiresAt)

	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(id string) (*entity.Account, error) {
	return r.getOne(`WHERE id = $1`, id)
}

func (r *AccountRepository) GetByEmail(email string) (*entity.Account, error) {
	return r.getOne(`WHERE email = $1`, email)
}

func (r *AccountRepository) GetByTokenHash(hash string) (*entity.Account, error) {
	return r.getOne(`WHERE verification_token = $1`, hash)
}

func (r *AccountRepository) getOne(where string, arg any) (*entity.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts `+where, arg)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) ExistsByEmailOrUsername(email, username string) (bool, error) {
	ctx := context.Background()
	var exists bool
	// Empty usernames are stored as NULL, so they never collide.
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts
			WHERE email = $1 OR ($2 <> '' AND username = $2)
		)
	`, email, username).Scan(&exists)
	return exists, err
}

// ConsumeToken is the single conditional update that makes token
// consumption race-free: the WHERE clause re-checks the hash and expiry, so
// of two concurrent calls only one sees an affected row.
func (r *AccountRepository) ConsumeToken(hash string, status entity.Status, now time.Time) (bool, error) {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET status = $2, is_verified = TRUE, verification_token = NULL, token_expires_at = NULL, updated_at = $3
		WHERE verification_token = $1 AND token_expires_at > $3 AND status <> 'REJECTED'
	`, hash, status, now)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *AccountRepository) UpdateToken(id, hash string, expiresAt time.Time) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET verification_token = $2, token_expires_at = $3, updated_at = now()
		WHERE id = $1
	`, id, hash, expiresAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) UpdateStatus(id string, status entity.Status) error {
	ctx := context.Background()
	verified := status == entity.StatusActive || status == entity.StatusApproved
	// Verified and terminal statuses both kill the outstanding token, so a
	// stale email link cannot move the account afterwards.
	clearToken := verified || status == entity.StatusRejected
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET status = $2,
		    is_verified = is_verified OR $3,
		    verification_token = CASE WHEN $4 THEN NULL ELSE verification_token END,
		    token_expires_at   = CASE WHEN $4 THEN NULL ELSE token_expires_at END,
		    updated_at = now()
		WHERE id = $1
	`, id, status, verified, clearToken)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(id, passwordHash string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) ListByStatus(status entity.Status) ([]*entity.Account, error) {
	return r.list(`WHERE status = $1 ORDER BY created_at`, string(status))
}

func (r *AccountRepository) ListByRole(role entity.Role) ([]*entity.Account, error) {
	return r.list(`WHERE role = $1 ORDER BY created_at`, string(role))
}

func (r *AccountRepository) list(where string, arg any) ([]*entity.Account, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts `+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	var username, region, tokenHash sql.NullString
	var tokenExpires sql.NullTime
	if err := row.Scan(&a.ID, &a.Name, &username, &a.Email, &a.PasswordHash, &a.Role, &region,
		&a.Status, &a.IsVerified, &tokenHash, &tokenExpires, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Username = username.String
	a.Region = region.String
	a.TokenHash = tokenHash.String
	if tokenExpires.Valid {
		t := tokenExpires.Time
		a.TokenExpiresAt = &t
	}
	return a, nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
