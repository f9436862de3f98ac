package queue

import (
	"context"
	"time"

	"github.com/cropshield/cropshield-api/internal/application"
	"github.com/cropshield/cropshield-api/pkg/helpers"
	"github.com/cropshield/cropshield-api/pkg/mailer"
)

// publish never blocks the account-mutation path for long.
const publishTimeout = 3 * time.Second

// EmailNotifier implements application.Notifier by enqueueing EmailJobs on
// RabbitMQ. Delivery happens in cmd/email_worker; a queue outage surfaces
// here as an error the caller logs and ignores.
type EmailNotifier struct {
	Pub     *helpers.RabbitPublisher
	Enabled bool
}

func NewEmailNotifier(pub *helpers.RabbitPublisher, enabled bool) *EmailNotifier {
	return &EmailNotifier{Pub: pub, Enabled: enabled}
}

func (n *EmailNotifier) SendVerification(ctx context.Context, email, link, name string) error {
	return n.publish(ctx, mailer.EmailJob{
		To:       email,
		Template: mailer.TemplateVerifyEmail,
		Data: map[string]any{
			"Name": name,
			"Link": link,
		},
	})
}

func (n *EmailNotifier) SendApprovalRequest(ctx context.Context, adminEmail string, expert application.ExpertDetails, link string) error {
	return n.publish(ctx, mailer.EmailJob{
		To:       adminEmail,
		Template: mailer.TemplateApprovalRequest,
		Data: map[string]any{
			"Name":   expert.Name,
			"Email":  expert.Email,
			"Region": expert.Region,
			"Link":   link,
		},
	})
}

func (n *EmailNotifier) SendApprovalConfirmation(ctx context.Context, email, name string) error {
	return n.publish(ctx, mailer.EmailJob{
		To:       email,
		Template: mailer.TemplateApprovalConfirmed,
		Data: map[string]any{
			"Name": name,
		},
	})
}

func (n *EmailNotifier) SendPasswordReset(ctx context.Context, email, name, link string) error {
	return n.publish(ctx, mailer.EmailJob{
		To:       email,
		Template: mailer.TemplateResetPassword,
		Data: map[string]any{
			"Name": name,
			"Link": link,
		},
	})
}

func (n *EmailNotifier) publish(ctx context.Context, job mailer.EmailJob) error {
	if !n.Enabled || n.Pub == nil {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return n.Pub.PublishJSON(c, job)
}

var _ application.Notifier = (*EmailNotifier)(nil)
