package application

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cropshield/cropshield-api/internal/domain/entity"
	repo "github.com/cropshield/cropshield-api/internal/domain/repository"
)

// memRepo is an in-memory AccountRepository with the same conditional-update
// semantics as the Postgres implementation, safe for concurrent use.
type memRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
}

func newMemRepo() *memRepo {
	return &memRepo{accounts: map[string]*entity.Account{}}
}

func clone(a *entity.Account) *entity.Account {
	cp := *a
	if a.TokenExpiresAt != nil {
		t := *a.TokenExpiresAt
		cp.TokenExpiresAt = &t
	}
	return &cp
}

func (r *memRepo) Create(a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.accounts {
		if b.Email == a.Email || (a.Username != "" && b.Username == a.Username) {
			return repo.ErrDuplicate
		}
	}
	r.accounts[a.ID] = clone(a)
	return nil
}

func (r *memRepo) GetByID(id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		return clone(a), nil
	}
	return nil, repo.ErrNotFound
}

func (r *memRepo) GetByEmail(email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memRepo) GetByTokenHash(hash string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.TokenHash != "" && a.TokenHash == hash {
			return clone(a), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memRepo) ExistsByEmailOrUsername(email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email || (username != "" && a.Username == username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ConsumeToken(hash string, status entity.Status, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.TokenHash == hash && a.TokenExpiresAt != nil && a.TokenExpiresAt.After(now) && a.Status != entity.StatusRejected {
			a.Status = status
			a.IsVerified = true
			a.TokenHash = ""
			a.TokenExpiresAt = nil
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) UpdateToken(id, hash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return repo.ErrNotFound
	}
	a.TokenHash = hash
	t := expiresAt
	a.TokenExpiresAt = &t
	return nil
}

func (r *memRepo) UpdateStatus(id string, status entity.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return repo.ErrNotFound
	}
	a.Status = status
	if status.CanLogin() {
		a.IsVerified = true
	}
	if status.CanLogin() || status == entity.StatusRejected {
		a.TokenHash = ""
		a.TokenExpiresAt = nil
	}
	return nil
}

func (r *memRepo) UpdatePassword(id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return repo.ErrNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (r *memRepo) ListByStatus(status entity.Status) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Account
	for _, a := range r.accounts {
		if a.Status == status {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (r *memRepo) ListByRole(role entity.Role) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Account
	for _, a := range r.accounts {
		if a.Role == role {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

var _ repo.AccountRepository = (*memRepo)(nil)

type sentMail struct {
	To     string
	Link   string
	Name   string
	Expert ExpertDetails
}

// recNotifier records every notification for assertions.
type recNotifier struct {
	mu            sync.Mutex
	verifications []sentMail
	approvalReqs  []sentMail
	confirmations []sentMail
	resets        []sentMail
}

func (n *recNotifier) SendVerification(_ context.Context, email, link, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verifications = append(n.verifications, sentMail{To: email, Link: link, Name: name})
	return nil
}

func (n *recNotifier) SendApprovalRequest(_ context.Context, adminEmail string, expert ExpertDetails, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approvalReqs = append(n.approvalReqs, sentMail{To: adminEmail, Link: link, Expert: expert})
	return nil
}

func (n *recNotifier) SendApprovalConfirmation(_ context.Context, email, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, sentMail{To: email, Name: name})
	return nil
}

func (n *recNotifier) SendPasswordReset(_ context.Context, email, name, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, sentMail{To: email, Name: name, Link: link})
	return nil
}

func (n *recNotifier) lastLink() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.verifications) > 0 {
		return n.verifications[len(n.verifications)-1].Link
	}
	if len(n.approvalReqs) > 0 {
		return n.approvalReqs[len(n.approvalReqs)-1].Link
	}
	return ""
}

var _ Notifier = (*recNotifier)(nil)

// tokenFromLink pulls the raw token out of a verification link.
func tokenFromLink(link string) string {
	_, after, ok := strings.Cut(link, "token=")
	if !ok {
		return ""
	}
	return after
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestService() (*RegistrationService, *memRepo, *recNotifier) {
	store := newMemRepo()
	notif := &recNotifier{}
	svc := NewRegistrationService(
		store,
		notif,
		quietLogger(),
		ResendPolicy{Lifetime: 24 * time.Hour, Grace: 2 * time.Minute},
		"https://api.test/verify-email",
		"https://api.test/approve-expert-email",
		"admin@test.local",
	)
	return svc, store, notif
}
