package mail

import (
	"log/slog"

	"github.com/pawme/pawme-backend/internal/config"
)

// NewMailer picks the delivery backend for the current environment: Resend in
// production, SMTP everywhere else.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.Env == "production" {
		slog.Info("using resend mail delivery")
		return NewResendMailer(cfg.ResendAPIKey, cfg.SenderEmail)
	}
	slog.Info("using smtp mail delivery", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SenderEmail)
}
