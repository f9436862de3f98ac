package application

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors for the registration and login flows. Each maps to a stable
// code via ErrorCode so API clients can discriminate causes without matching
// message text.
var (
	ErrValidation         = errors.New("all fields are required")
	ErrConflict           = errors.New("email or username already exists")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid or already used token")
	ErrExpiredToken       = errors.New("verification link expired")
	ErrAlreadyVerified    = errors.New("account is already active")
	ErrRequiresApproval   = errors.New("field expert accounts require admin approval")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPendingApproval    = errors.New("account is pending admin approval")
	ErrRejected           = errors.New("account request was rejected")
	ErrEmailUnverified    = errors.New("email address is not verified")
)

// RateLimitError is returned when a resend is requested inside the cooldown
// window. RetryAfter is how long the caller has to wait.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("please wait %d seconds", int(e.RetryAfter.Seconds()+0.999))
}

// RetryAfterSeconds rounds the wait up to whole seconds for the Retry-After
// header and response body.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter.Seconds())
	if e.RetryAfter > time.Duration(secs)*time.Second {
		secs++
	}
	return secs
}

// ErrorCode returns the stable machine-readable code for a domain error.
// Unknown errors map to INTERNAL and should be surfaced as a 500.
func ErrorCode(err error) string {
	var rl *RateLimitError
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidToken):
		return "INVALID_TOKEN"
	case errors.Is(err, ErrExpiredToken):
		return "EXPIRED_TOKEN"
	case errors.Is(err, ErrAlreadyVerified):
		return "ALREADY_VERIFIED"
	case errors.Is(err, ErrRequiresApproval):
		return "REQUIRES_ADMIN_APPROVAL"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrPendingApproval):
		return "PENDING_APPROVAL"
	case errors.Is(err, ErrRejected):
		return "REJECTED"
	case errors.Is(err, ErrEmailUnverified):
		return "EMAIL_UNVERIFIED"
	case errors.As(err, &rl):
		return "RATE_LIMITED"
	default:
		return "INTERNAL"
	}
}
