package mailer

// Template names understood by the email worker.
const (
	TemplateVerifyEmail       = "verify_email"
	TemplateApprovalRequest   = "approval_request"
	TemplateApprovalConfirmed = "approval_confirmed"
	TemplateResetPassword     = "reset_password"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or raw Subject+Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
