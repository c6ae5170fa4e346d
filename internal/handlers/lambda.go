package handlers

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"

	"demographics-api/pkg/lambda"
	"demographics-api/pkg/server"
)

// ContainerSource provides the warm container of a Lambda function
type ContainerSource interface {
	GetContainer(ctx context.Context) (*server.Container, error)
}

// NewLambdaHandler returns the Lambda handler serving table. Container failures are
// reported as an error payload; the returned error is always nil.
func NewLambdaHandler(source ContainerSource, table RouteTable) lambda.HandlerFunc {
	return func(ctx context.Context, event *lambda.Event) (interface{}, error) {
		container, err := source.GetContainer(ctx)
		if err != nil {
			return errorPayload(err), nil
		}
		return NewDispatcher(container.Repository, table, container.Logger).Handle(ctx, event)
	}
}

// NewStreamHandler returns the Lambda handler for table change streams.
// A payload that is not a stream event is handled as a missing stream.
func NewStreamHandler(source ContainerSource) func(ctx context.Context, payload json.RawMessage) (string, error) {
	return func(ctx context.Context, payload json.RawMessage) (string, error) {
		container, err := source.GetContainer(ctx)
		if err != nil {
			return "Unable to initialize notifier: " + err.Error(), nil
		}

		var event events.DynamoDBEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			container.Logger.WithError(err).Warn("Undecodable stream event")
			event = events.DynamoDBEvent{}
		}
		return container.Notifier.HandleStream(ctx, event), nil
	}
}
