package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cropshield/cropshield-api/internal/domain/entity"
	repo "github.com/cropshield/cropshield-api/internal/domain/repository"
	"github.com/cropshield/cropshield-api/pkg/helpers"
)

// bcrypt hash of an arbitrary string, compared against when the email is
// unknown so the miss costs the same as a real password check.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// LoginService is the eligibility gate in front of session issuance. Each
// denial reason is a distinct error so callers can discriminate causes.
type LoginService struct {
	Repo   repo.AccountRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewLoginService(r repo.AccountRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *LoginService {
	return &LoginService{Repo: r, JWT: jwt, Logger: logger}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *entity.Account
}

// Login validates credentials and the account's lifecycle state, then issues
// a signed session token. Unknown email and wrong password both collapse
// into ErrInvalidCredentials so the caller cannot enumerate accounts.
func (s *LoginService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}
	acct, err := s.Repo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repo.ErrNotFound) {
		helpers.CompareHashAndPassword(dummyPasswordHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(acct.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	switch {
	case acct.Role == entity.RoleFieldExpert && acct.Status == entity.StatusPendingApproval:
		return nil, ErrPendingApproval
	case acct.Status == entity.StatusRejected:
		return nil, ErrRejected
	case !acct.IsVerified || !acct.Status.CanLogin():
		return nil, ErrEmailUnverified
	}

	token, exp, err := s.JWT.GenerateSessionToken(acct.ID, string(acct.Role), acct.Username, acct.Region)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", acct.ID).Error("generate session token failed")
		}
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, Account: acct}, nil
}

// GetAccount returns the account for an authenticated session.
func (s *LoginService) GetAccount(ctx context.Context, id string) (*entity.Account, error) {
	acct, err := s.Repo.GetByID(id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// Admins lists admin accounts (shown to experts for escalation contacts).
func (s *LoginService) Admins(ctx context.Context) ([]*entity.Account, error) {
	return s.Repo.ListByRole(entity.RoleAdmin)
}
