package application

import "time"

// ResendPolicy computes the cooldown between verification-token reissues.
//
// Tokens live for Lifetime; a fresh token may be requested once Grace has
// passed since issuance. The issue time is recovered from the stored expiry
// (issuedAt = expiresAt - Lifetime), so the same Lifetime must be used at
// registration and resend for the arithmetic to hold.
type ResendPolicy struct {
	Lifetime time.Duration
	Grace    time.Duration
}

type ResendDecision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// CanResend decides whether a new token may be issued now. A nil expiry
// means no token is outstanding and resending is always allowed.
func (p ResendPolicy) CanResend(tokenExpiresAt *time.Time, now time.Time) ResendDecision {
	if tokenExpiresAt == nil {
		return ResendDecision{Allowed: true}
	}
	issuedAt := tokenExpiresAt.Add(-p.Lifetime)
	readyAt := issuedAt.Add(p.Grace)
	if now.Before(readyAt) {
		return ResendDecision{RetryAfter: readyAt.Sub(now)}
	}
	return ResendDecision{Allowed: true}
}
