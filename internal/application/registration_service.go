package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cropshield/cropshield-api/internal/domain/entity"
	repo "github.com/cropshield/cropshield-api/internal/domain/repository"
	"github.com/cropshield/cropshield-api/pkg/helpers"
)

// RegistrationService owns the account lifecycle: token issuance at
// registration, verification/approval, cooldown-gated resend, and admin
// rejection.
type RegistrationService struct {
	Repo     repo.AccountRepository
	Notifier Notifier
	Logger   *logrus.Logger
	Policy   ResendPolicy

	// Link targets; the raw token is appended as a query parameter.
	VerifyURL  string
	ApproveURL string
	AdminEmail string
}

func NewRegistrationService(r repo.AccountRepository, n Notifier, logger *logrus.Logger, policy ResendPolicy, verifyURL, approveURL, adminEmail string) *RegistrationService {
	return &RegistrationService{
		Repo:       r,
		Notifier:   n,
		Logger:     logger,
		Policy:     policy,
		VerifyURL:  verifyURL,
		ApproveURL: approveURL,
		AdminEmail: adminEmail,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Region   string
	Username string
}

type RegisterResult struct {
	AccountID string
	Role      entity.Role
	Message   string
}

// Register creates an account in its initial status with a fresh token and
// fires the verification (or admin-approval) email. Notification failure is
// logged and swallowed: the account and token persist so the user can fall
// back to Resend.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.Name == "" && in.Username != "" {
		in.Name = in.Username
	}
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, ErrValidation
	}
	role, ok := entity.ParseRole(in.Role)
	if !ok {
		return nil, ErrValidation
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	exists, err := s.Repo.ExistsByEmailOrUsername(email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	pwHash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	rawToken, err := helpers.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.Policy.Lifetime)
	acct := &entity.Account{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Username:       username,
		Email:          email,
		PasswordHash:   pwHash,
		Role:           role,
		Region:         in.Region,
		Status:         role.InitialStatus(),
		IsVerified:     false,
		TokenHash:      helpers.HashToken(rawToken),
		TokenExpiresAt: &expiresAt,
	}
	if err := s.Repo.Create(acct); err != nil {
		// The existence pre-check races with concurrent registrations; the
		// unique constraint is the authority.
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.notifyToken(ctx, acct, rawToken)

	msg := "Verification email sent. Please check your inbox to activate your account."
	if role == entity.RoleFieldExpert {
		msg = "Approval request sent to Admin. You will be notified via email once approved."
	}
	return &RegisterResult{AccountID: acct.ID, Role: role, Message: msg}, nil
}

// VerifyOrApprove consumes a token and advances the account. adminAction
// distinguishes the admin approve click from the farmer verify click; both
// ride the same outstanding token.
//
// The consume is a single conditional update, so of two concurrent calls
// with the same token exactly one wins and the other sees ErrInvalidToken.
func (s *RegistrationService) VerifyOrApprove(ctx context.Context, rawToken string, adminAction bool) (*entity.Account, error) {
	if rawToken == "" {
		return nil, ErrValidation
	}
	hash := helpers.HashToken(rawToken)

	acct, err := s.Repo.GetByTokenHash(hash)
	if errors.Is(err, repo.ErrNotFound) {
		// Consumed tokens are cleared, so "already used" and "never
		// existed" are indistinguishable here. That kills replay.
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if acct.Status == entity.StatusRejected {
		// Rejection clears the token columns, so this only triggers if a
		// stale row slipped through; the link is dead either way.
		return nil, ErrInvalidToken
	}

	now := time.Now().UTC()
	if acct.TokenExpiresAt == nil || now.After(*acct.TokenExpiresAt) {
		// Account stays pending; a Resend recovers from this.
		return nil, ErrExpiredToken
	}
	if acct.Role == entity.RoleFieldExpert && !adminAction {
		return nil, ErrRequiresApproval
	}

	target := acct.Role.VerifiedStatus()
	ok, err := s.Repo.ConsumeToken(hash, target, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with a concurrent consume, or the token expired
		// between the read and the update.
		return nil, ErrInvalidToken
	}

	acct.Status = target
	acct.IsVerified = true
	acct.TokenHash = ""
	acct.TokenExpiresAt = nil

	if acct.Role == entity.RoleFieldExpert {
		s.notifyApproved(ctx, acct)
	}
	return acct, nil
}

// Resend reissues the verification token for a not-yet-verified account,
// subject to the cooldown policy. The previous token is invalidated even if
// it has not expired.
func (s *RegistrationService) Resend(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrValidation
	}
	acct, err := s.Repo.GetByEmail(email)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if acct.Status == entity.StatusRejected {
		return ErrRejected
	}
	if acct.IsVerified {
		return ErrAlreadyVerified
	}

	now := time.Now().UTC()
	if d := s.Policy.CanResend(acct.TokenExpiresAt, now); !d.Allowed {
		return &RateLimitError{RetryAfter: d.RetryAfter}
	}

	rawToken, err := helpers.GenerateToken()
	if err != nil {
		return err
	}
	expiresAt := now.Add(s.Policy.Lifetime)
	if err := s.Repo.UpdateToken(acct.ID, helpers.HashToken(rawToken), expiresAt); err != nil {
		return err
	}

	acct.TokenExpiresAt = &expiresAt
	s.notifyToken(ctx, acct, rawToken)
	return nil
}

// ApproveFieldExpert is the authenticated-admin path that approves without
// the email token. Any outstanding token is cleared in the same update.
func (s *RegistrationService) ApproveFieldExpert(ctx context.Context, accountID string) error {
	acct, err := s.Repo.GetByID(accountID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if acct.Role != entity.RoleFieldExpert {
		return ErrValidation
	}
	if acct.Status == entity.StatusRejected {
		return ErrRejected
	}
	if acct.Status == entity.StatusApproved {
		return ErrAlreadyVerified
	}
	if err := s.Repo.UpdateStatus(acct.ID, entity.StatusApproved); err != nil {
		return err
	}
	s.notifyApproved(ctx, acct)
	return nil
}

// RejectFieldExpert marks the account REJECTED. Terminal: there is no
// transition out of REJECTED.
func (s *RegistrationService) RejectFieldExpert(ctx context.Context, accountID string) error {
	_, err := s.Repo.GetByID(accountID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return s.Repo.UpdateStatus(accountID, entity.StatusRejected)
}

// PendingExperts lists Field Expert accounts awaiting approval.
func (s *RegistrationService) PendingExperts(ctx context.Context) ([]*entity.Account, error) {
	return s.Repo.ListByStatus(entity.StatusPendingApproval)
}

func (s *RegistrationService) notifyToken(ctx context.Context, acct *entity.Account, rawToken string) {
	if s.Notifier == nil {
		return
	}
	var err error
	if acct.Role == entity.RoleFieldExpert {
		link := s.ApproveURL + "?token=" + rawToken
		err = s.Notifier.SendApprovalRequest(ctx, s.AdminEmail, ExpertDetails{
			Name:   acct.Name,
			Email:  acct.Email,
			Region: acct.Region,
		}, link)
	} else {
		link := s.VerifyURL + "?token=" + rawToken
		err = s.Notifier.SendVerification(ctx, acct.Email, link, acct.Name)
	}
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"account_id": acct.ID,
			"email":      acct.Email,
		}).Warn("notification failed; account and token persist, resend available")
	}
}

func (s *RegistrationService) notifyApproved(ctx context.Context, acct *entity.Account) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendApprovalConfirmation(ctx, acct.Email, acct.Name); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", acct.ID).Warn("approval confirmation failed")
	}
}
