package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendMailer delivers through the Resend API. Used in production.
type ResendMailer struct {
	client *resend.Client
	from   string
	apiKey string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		apiKey: apiKey,
	}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.apiKey == "" {
		return ErrMissingAPIKey
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		if strings.Contains(err.Error(), "domain is not verified") {
			return fmt.Errorf("%w: %s", ErrDomainNotVerified, err.Error())
		}
		return fmt.Errorf("resend delivery failed: %w", err)
	}
	return nil
}
