// Package mailer delivers plain-text notification emails through Amazon SES or an
// SMTP relay.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Message is a single outbound notification email
type Message struct {
	To      string `json:"to" validate:"required,email"`
	From    string `json:"from" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

// Mailer submits messages to an outbound email transport
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// Transport names accepted by New
const (
	TransportSES  = "ses"
	TransportSMTP = "smtp"
)

// Config holds configuration for all transports
type Config struct {
	Transport string
	Region    string
	SMTP      SMTPConfig
}

var validate = validator.New()

// Validate checks the message before it is handed to a transport
func (m *Message) Validate() error {
	if m == nil {
		return fmt.Errorf("message cannot be nil")
	}
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	return nil
}

// New creates the mailer selected by config.Transport
func New(ctx context.Context, config *Config, logger *logrus.Logger) (Mailer, error) {
	if config == nil {
		return nil, fmt.Errorf("mailer config is required")
	}

	switch strings.ToLower(config.Transport) {
	case TransportSES, "":
		client, err := NewSESClient(ctx, config.Region)
		if err != nil {
			return nil, err
		}
		return NewSESMailer(client, logger), nil
	case TransportSMTP:
		return NewSMTPMailer(&config.SMTP, logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail transport: %s", config.Transport)
	}
}
