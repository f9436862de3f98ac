package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cropshield/cropshield-api/internal/application"
	repo "github.com/cropshield/cropshield-api/internal/domain/repository"
	"github.com/cropshield/cropshield-api/internal/interface/middleware"
	"github.com/cropshield/cropshield-api/pkg/helpers"
	"github.com/cropshield/cropshield-api/pkg/response"
	"github.com/cropshield/cropshield-api/pkg/validation"
)

const resetTokenTTL = 30 * time.Minute

func keyResetToken(hash string) string { return "pwd:reset:token:" + hash }

type AccountHandler struct {
	Login    *application.LoginService
	Repo     repo.AccountRepository
	Notifier application.Notifier
	RDB      *redis.Client
	Logger   *logrus.Logger

	// ResetURL is where the reset email points; the raw token rides along
	// as a query parameter.
	ResetURL string
}

func NewAccountHandler(login *application.LoginService, r repo.AccountRepository, n application.Notifier, rdb *redis.Client, logger *logrus.Logger, resetURL string) *AccountHandler {
	return &AccountHandler{Login: login, Repo: r, Notifier: n, RDB: rdb, Logger: logger, ResetURL: resetURL}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// DoLogin POST /api/login
func (h *AccountHandler) DoLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Login.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}

	acct := res.Account
	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"user": gin.H{
			"id":       acct.ID,
			"name":     acct.Name,
			"username": acct.Username,
			"email":    acct.Email,
			"role":     acct.Role,
			"region":   acct.Region,
			"status":   acct.Status,
		},
	}, "login successful")
}

// GetProfile GET /api/profile (auth required)
func (h *AccountHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxAccountIDKey)
	acct, err := h.Login.GetAccount(c.Request.Context(), uid)
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":       acct.ID,
		"name":     acct.Name,
		"username": acct.Username,
		"email":    acct.Email,
		"role":     acct.Role,
		"region":   acct.Region,
		"status":   acct.Status,
	}, "profile")
}

// ListAdmins GET /api/admins (auth required)
func (h *AccountHandler) ListAdmins(c *gin.Context) {
	admins, err := h.Login.Admins(c.Request.Context())
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	out := make([]gin.H, 0, len(admins))
	for _, a := range admins {
		out = append(out, gin.H{"id": a.ID, "name": a.Name, "email": a.Email})
	}
	response.Success(c, http.StatusOK, gin.H{"admins": out}, "admins")
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword POST /api/forgot-password
// Always answers 200 to avoid account enumeration.
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	acct, err := h.Repo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err == nil && h.RDB != nil {
		raw, tokenErr := helpers.GenerateToken()
		if tokenErr != nil {
			response.Error[any](c, http.StatusInternalServerError, "INTERNAL", "token generation failed", nil)
			return
		}
		h.RDB.Set(c.Request.Context(), keyResetToken(helpers.HashToken(raw)), acct.ID, resetTokenTTL)
		link := h.ResetURL + "?token=" + raw
		if h.Notifier != nil {
			if nErr := h.Notifier.SendPasswordReset(c.Request.Context(), acct.Email, acct.Name, link); nErr != nil && h.Logger != nil {
				h.Logger.WithError(nErr).WithField("email", acct.Email).Warn("reset email failed")
			}
		}
	} else if !errors.Is(err, repo.ErrNotFound) && err != nil && h.Logger != nil {
		h.Logger.WithError(err).Error("forgot password lookup failed")
	}

	response.Success[any](c, http.StatusOK, nil, "If the email exists, a reset link has been sent.")
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// ResetPassword POST /api/reset-password
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}
	if h.RDB == nil {
		response.Error[any](c, http.StatusInternalServerError, "INTERNAL", "reset unavailable", nil)
		return
	}

	key := keyResetToken(helpers.HashToken(req.Token))
	uid, err := h.RDB.Get(c.Request.Context(), key).Result()
	if err != nil || uid == "" {
		response.Error[any](c, http.StatusBadRequest, "INVALID_TOKEN", "invalid or expired token", nil)
		return
	}
	hash, err := helpers.HashPassword(req.NewPassword)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "INTERNAL", "hash fail", nil)
		return
	}
	if err := h.Repo.UpdatePassword(uid, hash); err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	h.RDB.Del(c.Request.Context(), key)
	response.Success[any](c, http.StatusOK, nil, "password updated")
}
