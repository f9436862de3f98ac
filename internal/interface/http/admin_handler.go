package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cropshield/cropshield-api/internal/application"
	"github.com/cropshield/cropshield-api/pkg/response"
	"github.com/cropshield/cropshield-api/pkg/validation"
)

// AdminHandler serves the authenticated-admin paths of the approval flow:
// listing pending experts and approving/rejecting without the email token.
type AdminHandler struct {
	Svc    *application.RegistrationService
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.RegistrationService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

// PendingExperts GET /api/pending-experts
func (h *AdminHandler) PendingExperts(c *gin.Context) {
	experts, err := h.Svc.PendingExperts(c.Request.Context())
	if err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	out := make([]gin.H, 0, len(experts))
	for _, e := range experts {
		out = append(out, gin.H{
			"id":         e.ID,
			"name":       e.Name,
			"email":      e.Email,
			"region":     e.Region,
			"created_at": e.CreatedAt,
		})
	}
	response.Success(c, http.StatusOK, gin.H{"experts": out}, "pending field experts")
}

type expertActionRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

// ApproveExpert POST /api/approve-field-expert
func (h *AdminHandler) ApproveExpert(c *gin.Context) {
	var req expertActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ApproveFieldExpert(c.Request.Context(), req.AccountID); err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "field expert approved")
}

// RejectExpert POST /api/reject-field-expert
func (h *AdminHandler) RejectExpert(c *gin.Context) {
	var req expertActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RejectFieldExpert(c.Request.Context(), req.AccountID); err != nil {
		writeDomainError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "field expert rejected")
}
