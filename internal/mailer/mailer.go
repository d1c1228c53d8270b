package mailer

import (
	"context"
	"log/slog"
	"time"

	"github.com/noveos/backend/internal/config"
)

// Notifier is a single outbound email channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Mailer dispatches notifications asynchronously over an ordered chain of
// channels. Delivery is best-effort: the first channel that accepts the
// message wins, and if every channel fails the error is logged and dropped.
// Callers never see a delivery failure.
type Mailer struct {
	channels []Notifier
	notifyTo string
	timeout  time.Duration
}

func New(cfg *config.Config) *Mailer {
	var channels []Notifier
	if cfg.ResendAPIKey != "" {
		channels = append(channels, NewResendNotifier(cfg.ResendAPIKey, cfg.MailFrom))
	}
	if cfg.SMTPUser != "" && cfg.SMTPPass != "" {
		channels = append(channels, NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom))
	}
	return &Mailer{
		channels: channels,
		notifyTo: cfg.NotifyTo,
		timeout:  15 * time.Second,
	}
}

// NewWithChannels builds a Mailer over an explicit channel chain.
func NewWithChannels(notifyTo string, channels ...Notifier) *Mailer {
	return &Mailer{channels: channels, notifyTo: notifyTo, timeout: 15 * time.Second}
}

// Dispatch queues a message for background delivery and returns immediately.
func (m *Mailer) Dispatch(to, subject, htmlBody string) {
	go m.deliver(to, subject, htmlBody)
}

// NotifyOperator sends to the configured operator address.
func (m *Mailer) NotifyOperator(subject, htmlBody string) {
	m.Dispatch(m.notifyTo, subject, htmlBody)
}

func (m *Mailer) deliver(to, subject, htmlBody string) {
	if len(m.channels) == 0 {
		slog.Info("mail skipped, no channel configured", "to", to, "subject", subject)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	for _, ch := range m.channels {
		err := ch.Send(ctx, to, subject, htmlBody)
		if err == nil {
			slog.Info("mail sent", "channel", ch.Name(), "to", to, "subject", subject)
			return
		}
		slog.Warn("mail channel failed", "channel", ch.Name(), "to", to, "error", err)
	}

	slog.Error("mail delivery failed on all channels", "to", to, "subject", subject)
}
