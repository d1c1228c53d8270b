package mailer

import (
	"context"

	"github.com/resend/resend-go/v2"
)

// ResendNotifier delivers mail through the Resend HTTP API.
type ResendNotifier struct {
	client *resend.Client
	from   string
}

func NewResendNotifier(apiKey, from string) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (n *ResendNotifier) Name() string { return "resend" }

func (n *ResendNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}
	_, err := n.client.Emails.SendWithContext(ctx, params)
	return err
}
