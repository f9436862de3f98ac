package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cropshield/cropshield-api/internal/application"
	"github.com/cropshield/cropshield-api/pkg/response"
)

// writeDomainError maps an application error onto an HTTP status and the
// standard error envelope. Anything outside the domain taxonomy is a 500
// with a generic message; the detail goes to the log only.
func writeDomainError(c *gin.Context, logger *logrus.Logger, err error) {
	var rl *application.RateLimitError
	status := http.StatusInternalServerError
	msg := err.Error()

	switch {
	case errors.Is(err, application.ErrValidation),
		errors.Is(err, application.ErrConflict),
		errors.Is(err, application.ErrInvalidToken),
		errors.Is(err, application.ErrExpiredToken),
		errors.Is(err, application.ErrAlreadyVerified),
		errors.Is(err, application.ErrRequiresApproval):
		status = http.StatusBadRequest
	case errors.Is(err, application.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, application.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, application.ErrPendingApproval),
		errors.Is(err, application.ErrRejected),
		errors.Is(err, application.ErrEmailUnverified):
		status = http.StatusForbidden
	case errors.As(err, &rl):
		status = http.StatusTooManyRequests
		c.Header("Retry-After", strconv.Itoa(rl.RetryAfterSeconds()))
	default:
		if logger != nil {
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("unexpected error")
		}
		msg = "internal server error"
	}

	response.Error[any](c, status, application.ErrorCode(err), msg, nil)
}
