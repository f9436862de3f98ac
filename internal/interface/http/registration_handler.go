package handlers

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cropshield/cropshield-api/internal/application"
	"github.com/cropshield/cropshield-api/internal/domain/entity"
	"github.com/cropshield/cropshield-api/pkg/response"
	"github.com/cropshield/cropshield-api/pkg/validation"
)

type RegistrationHandler struct {
	Svc    *application.RegistrationService
	Logger *logrus.Logger
}

func NewRegistrationHandler(svc *application.RegistrationService, logger *logrus.Logger) *RegistrationHandler {
	return &RegistrationHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"required,oneof=Farmer 'Field Expert' Admin"`
	Region   string `json:"region"`
	Username string `json:"username"`
}

// Register POST /api/register
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Region:   req.Region,
		Username: req.Username,
	})
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"account_id": res.AccountID}, res.Message)
}

// VerifyEmail GET /api/verify-email?token=...
// Browser-facing: responds with a small HTML page, not JSON.
func (h *RegistrationHandler) VerifyEmail(c *gin.Context) {
	h.consumeToken(c, false)
}

// ApproveExpertEmail GET /api/approve-expert-email?token=...
// The admin-link variant of VerifyEmail for Field Expert accounts.
func (h *RegistrationHandler) ApproveExpertEmail(c *gin.Context) {
	h.consumeToken(c, true)
}

func (h *RegistrationHandler) consumeToken(c *gin.Context, adminAction bool) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		htmlError(c, http.StatusBadRequest, "Token missing")
		return
	}

	acct, err := h.Svc.VerifyOrApprove(c.Request.Context(), token, adminAction)
	switch {
	case err == nil:
	case errors.Is(err, application.ErrExpiredToken):
		htmlError(c, http.StatusBadRequest, "Link expired")
		return
	case errors.Is(err, application.ErrRequiresApproval):
		htmlError(c, http.StatusBadRequest, "Field Expert accounts require Admin approval. Please wait for an admin to click the link.")
		return
	case errors.Is(err, application.ErrInvalidToken), errors.Is(err, application.ErrValidation):
		htmlError(c, http.StatusBadRequest, "Invalid or expired link")
		return
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("verification failed")
		}
		htmlError(c, http.StatusInternalServerError, "Server error during verification")
		return
	}

	title := "Email Verified Successfully!"
	if acct.Role == entity.RoleFieldExpert {
		title = "Expert Account Approved!"
	}
	htmlSuccess(c, title, fmt.Sprintf("The account for %s is now %s. You can now login.",
		html.EscapeString(acct.Name), strings.ToLower(string(acct.Status))))
}

type resendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Resend POST /api/resend-verification-email
func (h *RegistrationHandler) Resend(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.Resend(c.Request.Context(), req.Email); err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Verification link resent.")
}

func htmlSuccess(c *gin.Context, title, detail string) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(`
		<div style="text-align: center; margin-top: 50px; font-family: 'Segoe UI', Arial, sans-serif;">
			<h1 style="color: #1a7f37;">&#9989; %s</h1>
			<p style="color: #4b5563; font-size: 16px;">%s</p>
		</div>`, title, detail)))
}

func htmlError(c *gin.Context, status int, msg string) {
	c.Data(status, "text/html; charset=utf-8",
		[]byte(fmt.Sprintf(`<h1 style="color: red; text-align: center;">%s</h1>`, msg)))
}
