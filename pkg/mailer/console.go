package mailer

import (
	"context"
	"net/mail"
	"sync"

	"go.uber.org/zap"
)

// ConsoleSender writes messages to the log instead of delivering them.
type ConsoleSender struct {
	from   mail.Address
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

func NewConsoleSender(from mail.Address, logger *zap.Logger) *ConsoleSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleSender{from: from, logger: logger}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.logger.Info("mail",
		zap.String("from", s.from.String()),
		zap.String("to", msg.To.String()),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of every message accepted so far.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
