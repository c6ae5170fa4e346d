package services

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
)

// ChangeNotifier turns table change streams into notification emails
type ChangeNotifier interface {
	// HandleStream sends one notification per INSERT or MODIFY record, in order,
	// and returns a summary of the batch. Send failures are logged, never returned.
	HandleStream(ctx context.Context, event events.DynamoDBEvent) string
}

// NotifierConfig holds the addressing of change notifications
type NotifierConfig struct {
	To        string
	From      string
	Subject   string
	TableName string
}
