package application

import "context"

// ExpertDetails is what the admin sees in an approval-request email.
type ExpertDetails struct {
	Name   string
	Email  string
	Region string
}

// Notifier delivers account emails. All calls are best-effort: the state
// machine logs failures and moves on, because the persisted account and
// token are the source of truth and Resend exists to recover from a lost
// email.
type Notifier interface {
	SendVerification(ctx context.Context, email, link, name string) error
	SendApprovalRequest(ctx context.Context, adminEmail string, expert ExpertDetails, link string) error
	SendApprovalConfirmation(ctx context.Context, email, name string) error
	SendPasswordReset(ctx context.Context, email, name, link string) error
}
