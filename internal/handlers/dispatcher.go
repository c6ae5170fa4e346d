package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"demographics-api/internal/repositories"
	"demographics-api/pkg/lambda"
)

// NoEventMessage is returned when an invocation carries no event
const NoEventMessage = "No event detected"

// Operation performs the repository call selected by a route
type Operation func(ctx context.Context, repo repositories.DemographicsRepository, event *lambda.Event) (interface{}, error)

// Route binds an event method to an operation
type Route struct {
	Method string
	// Accepts reports whether the event carries the fields the operation needs.
	// A nil Accepts admits every event.
	Accepts func(event *lambda.Event) bool
	// Rejection renders the message returned when Accepts fails
	Rejection func(event *lambda.Event) string
	Operation Operation
}

// RouteTable is the set of routes served by one handler
type RouteTable struct {
	Name   string
	Routes []Route
	// Fallback renders the message returned for methods without a route
	Fallback func(event *lambda.Event) string
}

// Dispatcher turns demographics events into repository calls
type Dispatcher struct {
	repo   repositories.DemographicsRepository
	table  RouteTable
	logger *logrus.Logger
}

// NewDispatcher creates a dispatcher serving table
func NewDispatcher(repo repositories.DemographicsRepository, table RouteTable, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Dispatcher{
		repo:   repo,
		table:  table,
		logger: logger,
	}
}

// Handle is the Lambda handler. The returned error is always nil.
func (d *Dispatcher) Handle(ctx context.Context, event *lambda.Event) (interface{}, error) {
	return d.Dispatch(ctx, event).Response()
}

// Dispatch routes event and reports the outcome
func (d *Dispatcher) Dispatch(ctx context.Context, event *lambda.Event) lambda.Outcome {
	entry := d.logger.WithFields(logrus.Fields{
		"handler":       d.table.Name,
		"invocation_id": lambda.InvocationID(ctx),
	})

	if event == nil {
		entry.Warn(NoEventMessage)
		return lambda.Fail(errNoEvent, NoEventMessage)
	}
	entry = entry.WithField("method", event.Method)

	route, ok := d.match(event.Method)
	if !ok {
		message := d.table.Fallback(event)
		entry.WithField("reason", message).Warn("Event rejected")
		return lambda.Fail(errUnroutable, message)
	}

	if route.Accepts != nil && !route.Accepts(event) {
		message := route.Rejection(event)
		entry.WithField("reason", message).Warn("Event rejected")
		return lambda.Fail(errUnroutable, message)
	}

	result, err := route.Operation(ctx, d.repo, event)
	if err != nil {
		entry.WithError(err).Error("Operation failed")
		return lambda.Fail(err, errorPayload(err))
	}

	entry.Debug("Operation succeeded")
	return lambda.Ok(result)
}

func (d *Dispatcher) match(method string) (Route, bool) {
	for _, route := range d.table.Routes {
		if route.Method == method {
			return route, true
		}
	}
	return Route{}, false
}
