package mail

import (
	"context"
	"errors"
)

// Sentinel provider errors that get distinct operator-facing messages.
var (
	ErrMissingAPIKey     = errors.New("email provider API key is not configured")
	ErrDomainNotVerified = errors.New("sender domain is not verified with the email provider")
)

// Mailer sends a single HTML email. Implementations are best-effort; callers
// decide whether a failure is fatal.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}
