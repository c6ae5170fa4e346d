package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
)

// Event is the request document accepted by the demographics handlers.
// Key fields stay untyped: callers send strings or numbers.
type Event struct {
	Method           string                 `json:"method"`
	ZipCode          interface{}            `json:"zipCode,omitempty"`
	ZipCodeField     interface{}            `json:"zip_code,omitempty"`
	NumParticipants  interface{}            `json:"num_participants,omitempty"`
	AdditionalFields map[string]interface{} `json:"additional_fields,omitempty"`
}

// UnmarshalJSON decodes an event without rejecting unexpected field types.
// A non-string method is kept in its display form so that no route matches it,
// a non-object additional_fields is treated as absent and a document that is
// not an object decodes to an empty event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*e = Event{}
	fields, ok := doc.(map[string]interface{})
	if !ok {
		return nil
	}

	switch method := fields["method"].(type) {
	case nil:
	case string:
		e.Method = method
	default:
		e.Method = DisplayValue(method)
	}
	e.ZipCode = fields["zipCode"]
	e.ZipCodeField = fields["zip_code"]
	e.NumParticipants = fields["num_participants"]
	if extra, ok := fields["additional_fields"].(map[string]interface{}); ok {
		e.AdditionalFields = extra
	}
	return nil
}

// ErrorPayload is returned to the caller when the table engine fails
type ErrorPayload struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

// Outcome is the result of one invocation: a payload and, for failures, the cause.
// Handlers never surface the cause as a transport error.
type Outcome struct {
	Payload interface{}
	Cause   error
}

// Ok creates a successful outcome
func Ok(payload interface{}) Outcome {
	return Outcome{Payload: payload}
}

// Fail creates a failed outcome reporting payload to the caller
func Fail(cause error, payload interface{}) Outcome {
	return Outcome{Payload: payload, Cause: cause}
}

// Failed reports whether the outcome carries a failure
func (o Outcome) Failed() bool {
	return o.Cause != nil
}

// Response converts the outcome into a Lambda handler result
func (o Outcome) Response() (interface{}, error) {
	return o.Payload, nil
}

// HandlerFunc is the signature of the demographics Lambda handlers
type HandlerFunc func(ctx context.Context, event *Event) (interface{}, error)

// DisplayValue renders an event value for caller-facing messages.
// Absent values render as "undefined".
func DisplayValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return "undefined"
	case string:
		if value == "" {
			return "undefined"
		}
		return value
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Sprint(value)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	default:
		return fmt.Sprint(value)
	}
}

// InvocationID returns the Lambda request id, or a fresh uuid outside Lambda
func InvocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.New().String()
}
