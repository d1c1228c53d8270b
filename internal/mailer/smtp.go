package mailer

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPNotifier delivers mail through a plain SMTP relay with STARTTLS.
// Used as the fallback channel when the primary API channel is down.
type SMTPNotifier struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPNotifier(host string, port int, user, pass, from string) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, user: user, pass: pass, from: from}
}

func (n *SMTPNotifier) Name() string { return "smtp" }

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(n.host,
		gomail.WithPort(n.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(n.user),
		gomail.WithPassword(n.pass),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
