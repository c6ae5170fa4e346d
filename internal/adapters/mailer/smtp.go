package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"
)

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends messages through an SMTP relay, useful against a local catcher
type SMTPMailer struct {
	config   *SMTPConfig
	sendMail sendMailFunc
	logger   *logrus.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config *SMTPConfig, logger *logrus.Logger) *SMTPMailer {
	if logger == nil {
		logger = logrus.New()
	}
	return &SMTPMailer{
		config:   config,
		sendMail: smtp.SendMail,
		logger:   logger,
	}
}

// Send implements Mailer.Send
func (s *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if s.config == nil || s.config.Host == "" {
		return fmt.Errorf("SMTP configuration not set")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := fmt.Sprintf("From: %s\r\n", msg.From)
	body += fmt.Sprintf("To: %s\r\n", msg.To)
	body += fmt.Sprintf("Subject: %s\r\n", msg.Subject)
	body += "MIME-Version: 1.0\r\n"
	body += "Content-Type: text/plain; charset=UTF-8\r\n"
	body += "\r\n"
	body += msg.Text

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := s.sendMail(addr, auth, msg.From, []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"relay": addr,
		"to":    msg.To,
	}).Debug("SMTP relay accepted message")
	return nil
}
