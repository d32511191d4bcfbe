package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
)

// JobType identifies mail jobs on the background queue.
const JobType = "mail.send"

var ErrNoRecipient = errors.New("message has no recipient")

// Message is a single outbound e-mail.
type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To.Address) == "" {
		return ErrNoRecipient
	}
	if m.Text == "" && m.HTML == "" {
		return fmt.Errorf("message to %s has no content", m.To.Address)
	}
	return nil
}

// Sender delivers a message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the provider named in cfg. SendGrid without an API key falls back to the console.
func New(cfg config.MailConfig, logger *zap.Logger) Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	from := mail.Address{Name: cfg.FromName, Address: cfg.FromAddress}
	if cfg.Provider == config.MailProviderSendGrid {
		if cfg.SendGridAPIKey != "" {
			return NewSendGridSender(cfg.SendGridAPIKey, from)
		}
		logger.Warn("sendgrid selected without api key, using console mailer")
	}
	return NewConsoleSender(from, logger)
}

// QueueHandler adapts a Sender to the jobs queue. Payload must be a Message.
func QueueHandler(sender Sender) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(Message)
		if !ok {
			return fmt.Errorf("mail job %s: unexpected payload %T", job.ID, job.Payload)
		}
		return sender.Send(ctx, msg)
	}
}
