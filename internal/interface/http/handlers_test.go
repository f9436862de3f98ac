package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cropshield/cropshield-api/internal/application"
	"github.com/cropshield/cropshield-api/internal/domain/entity"
	repo "github.com/cropshield/cropshield-api/internal/domain/repository"
	"github.com/cropshield/cropshield-api/internal/interface/middleware"
	"github.com/cropshield/cropshield-api/pkg/helpers"
	"github.com/cropshield/cropshield-api/pkg/validation"
)

var setupOnce sync.Once

// stubRepo is a minimal in-memory AccountRepository for handler tests.
type stubRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
}

func newStubRepo() *stubRepo {
	return &stubRepo{accounts: map[string]*entity.Account{}}
}

func (r *stubRepo) Create(a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.accounts {
		if b.Email == a.Email || (a.Username != "" && b.Username == a.Username) {
			return repo.ErrDuplicate
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *stubRepo) GetByID(id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (r *stubRepo) GetByEmail(email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *stubRepo) GetByTokenHash(hash string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.TokenHash != "" && a.TokenHash == hash {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *stubRepo) ExistsByEmailOrUsername(email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email || (username != "" && a.Username == username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRepo) ConsumeToken(hash string, status entity.Status, now time.Time) (bool, error) {
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

func (r *stubRepo) UpdateToken(id, hash string, expiresAt time.Time) error {
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

func (r *stubRepo) UpdateStatus(id string, status entity.Status) error {
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

func (r *stubRepo) UpdatePassword(id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return repo.ErrNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (r *stubRepo) ListByStatus(status entity.Status) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Account
	for _, a := range r.accounts {
		if a.Status == status {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubRepo) ListByRole(role entity.Role) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Account
	for _, a := range r.accounts {
		if a.Role == role {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ repo.AccountRepository = (*stubRepo)(nil)

// linkNotifier remembers the last link so tests can follow it.
type linkNotifier struct {
	mu       sync.Mutex
	lastLink string
}

func (n *linkNotifier) remember(link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastLink = link
}

func (n *linkNotifier) Link() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastLink
}

func (n *linkNotifier) SendVerification(_ context.Context, _, link, _ string) error {
	n.remember(link)
	return nil
}

func (n *linkNotifier) SendApprovalRequest(_ context.Context, _ string, _ application.ExpertDetails, link string) error {
	n.remember(link)
	return nil
}

func (n *linkNotifier) SendApprovalConfirmation(context.Context, string, string) error { return nil }

func (n *linkNotifier) SendPasswordReset(_ context.Context, _, _, link string) error {
	n.remember(link)
	return nil
}

var _ application.Notifier = (*linkNotifier)(nil)

type testEnv struct {
	engine *gin.Engine
	store  *stubRepo
	notif  *linkNotifier
	jwt    *helpers.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := newStubRepo()
	notif := &linkNotifier{}
	jwt := helpers.NewJWTManager("test-secret", time.Hour)

	regSvc := application.NewRegistrationService(
		store, notif, logger,
		application.ResendPolicy{Lifetime: 24 * time.Hour, Grace: 2 * time.Minute},
		"https://api.test/verify-email",
		"https://api.test/approve-expert-email",
		"admin@test.local",
	)
	loginSvc := application.NewLoginService(store, jwt, logger)

	regH := NewRegistrationHandler(regSvc, logger)
	acctH := NewAccountHandler(loginSvc, store, notif, nil, logger, "https://app.test/reset-password")
	adminH := NewAdminHandler(regSvc, logger)

	e := gin.New()
	api := e.Group("/api")

	// nil Redis client: the limiter must pass requests through untouched.
	api.POST("/register", middleware.RateLimit(nil, 5, time.Minute, middleware.KeyByIPAndPath()), regH.Register)
	api.POST("/resend-verification-email", regH.Resend)
	api.GET("/verify-email", regH.VerifyEmail)
	api.GET("/approve-expert-email", regH.ApproveExpertEmail)
	api.POST("/login", acctH.DoLogin)
	api.POST("/forgot-password", acctH.ForgotPassword)

	auth := api.Group("")
	auth.Use(middleware.Auth(jwt))
	auth.GET("/profile", acctH.GetProfile)
	auth.GET("/admins", acctH.ListAdmins)

	admin := api.Group("")
	admin.Use(middleware.Auth(jwt), middleware.RequireRole(entity.RoleAdmin))
	admin.GET("/pending-experts", adminH.PendingExperts)
	admin.POST("/approve-field-expert", adminH.ApproveExpert)
	admin.POST("/reject-field-expert", adminH.RejectExpert)

	return &testEnv{engine: e, store: store, notif: notif, jwt: jwt}
}

func (env *testEnv) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func (env *testEnv) register(t *testing.T, email, role string) string {
	t.Helper()
	w := env.do(http.MethodPost, "/api/register", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
		"role":     role,
		"region":   "Punjab",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
	var env2 struct {
		Data struct {
			AccountID string `json:"account_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env2); err != nil {
		t.Fatalf("bad register response: %v", err)
	}
	return env2.Data.AccountID
}

func (env *testEnv) lastToken() string {
	link := env.notif.Link()
	_, after, _ := strings.Cut(link, "token=")
	return after
}
