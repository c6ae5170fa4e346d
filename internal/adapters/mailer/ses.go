package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"
)

// SESAPI is the subset of the SES v2 client used by SESMailer
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends messages through Amazon SES
type SESMailer struct {
	client SESAPI
	logger *logrus.Logger
}

// NewSESClient builds an SES v2 client for region using the default credential chain
func NewSESClient(ctx context.Context, region string) (*sesv2.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sesv2.NewFromConfig(awsCfg), nil
}

// NewSESMailer creates a mailer on top of an SES client
func NewSESMailer(client SESAPI, logger *logrus.Logger) *SESMailer {
	if logger == nil {
		logger = logrus.New()
	}
	return &SESMailer{
		client: client,
		logger: logger,
	}
}

// Send implements Mailer.Send
func (s *SESMailer) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Text)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"message_id": aws.ToString(out.MessageId),
		"to":         msg.To,
	}).Debug("SES accepted message")
	return nil
}
