package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demographics-api/internal/adapters/mailer"
)

// recordingMailer captures every message it is asked to send
type recordingMailer struct {
	sent    []*mailer.Message
	failOn  int
	attempt int
}

func (r *recordingMailer) Send(ctx context.Context, msg *mailer.Message) error {
	r.attempt++
	if r.failOn == r.attempt {
		return errors.New("smtp: connection refused")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func newTestNotifier(m mailer.Mailer) ChangeNotifier {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewChangeNotifier(m, &NotifierConfig{
		To:   "ops@example.com",
		From: "alerts@example.com",
	}, logger)
}

func streamRecord(eventName string) events.DynamoDBEventRecord {
	return events.DynamoDBEventRecord{
		EventID:   "evt-" + eventName,
		EventName: eventName,
		Change: events.DynamoDBStreamRecord{
			Keys: map[string]events.DynamoDBAttributeValue{
				"zip_code":         events.NewNumberAttribute("10001"),
				"num_participants": events.NewNumberAttribute("5"),
			},
		},
	}
}

func TestHandleStream_EmptyBatch(t *testing.T) {
	m := &recordingMailer{}
	notifier := newTestNotifier(m)

	result := notifier.HandleStream(context.Background(), events.DynamoDBEvent{})
	assert.Equal(t, "Something went wildly wrong here, no event or record stream present.", result)
	assert.Empty(t, m.sent)
}

func TestHandleStream_EmptyRecordList(t *testing.T) {
	m := &recordingMailer{}
	notifier := newTestNotifier(m)

	var event events.DynamoDBEvent
	require.NoError(t, json.Unmarshal([]byte(`{"Records": []}`), &event))

	result := notifier.HandleStream(context.Background(), event)
	assert.Equal(t, "Successfully processed 0 records.", result)
	assert.Empty(t, m.sent)
}

func TestHandleStream_Insert(t *testing.T) {
	m := &recordingMailer{}
	notifier := newTestNotifier(m)

	result := notifier.HandleStream(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{streamRecord("INSERT")},
	})

	assert.Equal(t, "Successfully processed 1 records.", result)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "DynamoDB Table Updated", m.sent[0].Subject)
	assert.Equal(t, `The DynamoDB table "demographics" has just received a new record.`, m.sent[0].Text)
	assert.Equal(t, "ops@example.com", m.sent[0].To)
	assert.Equal(t, "alerts@example.com", m.sent[0].From)
}

func TestHandleStream_MixedBatch(t *testing.T) {
	m := &recordingMailer{}
	notifier := newTestNotifier(m)

	result := notifier.HandleStream(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{
			streamRecord("MODIFY"),
			streamRecord("REMOVE"),
			streamRecord("INSERT"),
		},
	})

	assert.Equal(t, "Successfully processed 3 records.", result)
	require.Len(t, m.sent, 2)
	assert.Equal(t, `The DynamoDB table "demographics" has just been updated.`, m.sent[0].Text)
	assert.Equal(t, `The DynamoDB table "demographics" has just received a new record.`, m.sent[1].Text)
}

func TestHandleStream_SendFailureDoesNotStopBatch(t *testing.T) {
	m := &recordingMailer{failOn: 1}
	notifier := newTestNotifier(m)

	result := notifier.HandleStream(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{
			streamRecord("INSERT"),
			streamRecord("INSERT"),
		},
	})

	assert.Equal(t, "Successfully processed 2 records.", result)
	assert.Equal(t, 2, m.attempt)
	assert.Len(t, m.sent, 1)
}

func TestNewChangeNotifier_Defaults(t *testing.T) {
	m := &recordingMailer{}
	notifier := NewChangeNotifier(m, nil, nil).(*changeNotifier)

	assert.Equal(t, "DynamoDB Table Updated", notifier.config.Subject)
	assert.Equal(t, "demographics", notifier.config.TableName)

	_, ok := notifier.messageFor("REMOVE")
	assert.False(t, ok)
}
