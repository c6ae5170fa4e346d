package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"demographics-api/internal/adapters/mailer"
)

// Messages reported by the stream handler
const (
	EmptyStreamMessage  = "Something went wildly wrong here, no event or record stream present."
	DefaultSubject      = "DynamoDB Table Updated"
	processedMessageFmt = "Successfully processed %d records."
)

// changeNotifier implements the ChangeNotifier interface
type changeNotifier struct {
	mailer mailer.Mailer
	config NotifierConfig
	logger *logrus.Logger
}

// NewChangeNotifier creates a new change notifier
func NewChangeNotifier(m mailer.Mailer, config *NotifierConfig, logger *logrus.Logger) ChangeNotifier {
	if logger == nil {
		logger = logrus.New()
	}

	cfg := NotifierConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.TableName == "" {
		cfg.TableName = "demographics"
	}

	return &changeNotifier{
		mailer: m,
		config: cfg,
		logger: logger,
	}
}

// HandleStream processes a batch of stream records
func (n *changeNotifier) HandleStream(ctx context.Context, event events.DynamoDBEvent) string {
	if event.Records == nil {
		n.logger.Error(EmptyStreamMessage)
		return EmptyStreamMessage
	}

	for _, record := range event.Records {
		entry := n.logger.WithFields(logrus.Fields{
			"event_id":   record.EventID,
			"event_name": record.EventName,
			"change":     snapshot(record.Change),
		})
		entry.Info("Stream record received")

		msg, ok := n.messageFor(record.EventName)
		if !ok {
			entry.Debug("Stream record ignored")
			continue
		}

		if err := n.mailer.Send(ctx, msg); err != nil {
			entry.WithError(err).Error("Unable to send notification")
			continue
		}
		entry.WithField("to", msg.To).Info("Notification sent")
	}

	return fmt.Sprintf(processedMessageFmt, len(event.Records))
}

// messageFor builds the notification for a stream event name
func (n *changeNotifier) messageFor(eventName string) (*mailer.Message, bool) {
	var text string
	switch events.DynamoDBOperationType(eventName) {
	case events.DynamoDBOperationTypeInsert:
		text = fmt.Sprintf("The DynamoDB table %q has just received a new record.", n.config.TableName)
	case events.DynamoDBOperationTypeModify:
		text = fmt.Sprintf("The DynamoDB table %q has just been updated.", n.config.TableName)
	default:
		return nil, false
	}

	return &mailer.Message{
		To:      n.config.To,
		From:    n.config.From,
		Subject: n.config.Subject,
		Text:    text,
	}, true
}

func snapshot(change events.DynamoDBStreamRecord) string {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Sprintf("%+v", change)
	}
	return string(data)
}
