package mailer

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
)

func parentMessage() Message {
	return Message{
		To:      mail.Address{Name: "Maria Lopez", Address: "maria@example.com"},
		Subject: "Registration Approved",
		Text:    "The registration for Ana Lopez has been approved.",
	}
}

func TestNewSelectsProvider(t *testing.T) {
	_, ok := New(config.MailConfig{Provider: config.MailProviderSendGrid, SendGridAPIKey: "key"}, nil).(*SendGridSender)
	assert.True(t, ok)

	_, ok = New(config.MailConfig{Provider: config.MailProviderSendGrid}, zap.NewNop()).(*ConsoleSender)
	assert.True(t, ok)

	_, ok = New(config.MailConfig{Provider: config.MailProviderConsole}, nil).(*ConsoleSender)
	assert.True(t, ok)
}

func TestConsoleSenderRecordsMessages(t *testing.T) {
	s := NewConsoleSender(mail.Address{Address: "no-reply@school.local"}, nil)
	require.NoError(t, s.Send(context.Background(), parentMessage()))
	require.ErrorIs(t, s.Send(context.Background(), Message{Text: "x"}), ErrNoRecipient)

	sent := s.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "maria@example.com", sent[0].To.Address)
}

func TestSendGridSenderStatusHandling(t *testing.T) {
	s := NewSendGridSender("key", mail.Address{Name: "School", Address: "no-reply@school.local"})

	var captured rest.Request
	s.api = func(req rest.Request) (*rest.Response, error) {
		captured = req
		return &rest.Response{StatusCode: http.StatusAccepted}, nil
	}
	require.NoError(t, s.Send(context.Background(), parentMessage()))
	assert.Equal(t, rest.Method(http.MethodPost), captured.Method)
	assert.Contains(t, string(captured.Body), "maria@example.com")

	s.api = func(rest.Request) (*rest.Response, error) {
		return &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}, nil
	}
	require.Error(t, s.Send(context.Background(), parentMessage()))

	s.api = func(rest.Request) (*rest.Response, error) { return nil, errors.New("dial") }
	require.Error(t, s.Send(context.Background(), parentMessage()))
}

func TestQueueHandlerRejectsUnknownPayload(t *testing.T) {
	s := NewConsoleSender(mail.Address{}, nil)
	h := QueueHandler(s)
	require.Error(t, h(context.Background(), jobs.Job{ID: "1", Payload: "nope"}))
	require.NoError(t, h(context.Background(), jobs.Job{ID: "2", Payload: parentMessage()}))
	assert.Len(t, s.Sent(), 1)
}
