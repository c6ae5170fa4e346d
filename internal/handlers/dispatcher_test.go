package handlers

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demographics-api/internal/adapters/storage"
	"demographics-api/internal/models"
	"demographics-api/internal/repositories"
	"demographics-api/pkg/lambda"
)

// spyRepository records the calls made by the dispatcher
type spyRepository struct {
	repositories.DemographicsRepository
	calls       []string
	lastZip     interface{}
	lastN       interface{}
	lastFields  map[string]interface{}
	failWith    error
	getAllValue []models.Record
}

func (s *spyRepository) CreateDemographics(ctx context.Context, zipCode, numParticipants interface{}, extra map[string]interface{}) (models.Record, error) {
	s.calls = append(s.calls, "create")
	s.lastZip, s.lastN, s.lastFields = zipCode, numParticipants, extra
	if s.failWith != nil {
		return nil, s.failWith
	}
	return models.Record{}, nil
}

func (s *spyRepository) GetDemographicsByZipCode(ctx context.Context, zipCode interface{}) ([]models.Record, error) {
	s.calls = append(s.calls, "get_by_zip_code")
	s.lastZip = zipCode
	return []models.Record{}, s.failWith
}

func (s *spyRepository) GetAllDemographics(ctx context.Context) ([]models.Record, error) {
	s.calls = append(s.calls, "get_all")
	return s.getAllValue, s.failWith
}

func (s *spyRepository) UpdateDemographics(ctx context.Context, zipCode interface{}, newValues map[string]interface{}) (models.Record, error) {
	s.calls = append(s.calls, "update")
	s.lastZip, s.lastFields = zipCode, newValues
	return models.Record{}, s.failWith
}

func (s *spyRepository) DeleteDemographicsByZipCode(ctx context.Context, zipCode interface{}) error {
	s.calls = append(s.calls, "delete")
	s.lastZip = zipCode
	return s.failWith
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func dispatch(t *testing.T, repo repositories.DemographicsRepository, table RouteTable, event *lambda.Event) interface{} {
	t.Helper()
	payload, err := NewDispatcher(repo, table, quietLogger()).Handle(context.Background(), event)
	require.NoError(t, err)
	return payload
}

func TestMasterGet(t *testing.T) {
	t.Run("with zipCode queries the partition", func(t *testing.T) {
		spy := &spyRepository{}
		dispatch(t, spy, MasterRoutes(), &lambda.Event{Method: "GET", ZipCode: "10001"})
		assert.Equal(t, []string{"get_by_zip_code"}, spy.calls)
		assert.Equal(t, "10001", spy.lastZip)
	})

	t.Run("without zipCode scans the table", func(t *testing.T) {
		spy := &spyRepository{getAllValue: []models.Record{{"zip_code": int64(1)}}}
		payload := dispatch(t, spy, MasterRoutes(), &lambda.Event{Method: "GET"})
		assert.Equal(t, []string{"get_all"}, spy.calls)
		assert.Equal(t, spy.getAllValue, payload)
	})
}

func TestMasterPost(t *testing.T) {
	t.Run("merges num_participants into additional fields", func(t *testing.T) {
		spy := &spyRepository{}
		dispatch(t, spy, MasterRoutes(), &lambda.Event{
			Method:           "POST",
			ZipCodeField:     "10001",
			NumParticipants:  float64(7),
			AdditionalFields: map[string]interface{}{"count_male": 4, "junk_field": "x"},
		})

		assert.Equal(t, []string{"update"}, spy.calls)
		assert.Equal(t, "10001", spy.lastZip)
		assert.Equal(t, map[string]interface{}{"count_male": 4, "num_participants": float64(7)}, spy.lastFields)
	})

	t.Run("absent additional fields", func(t *testing.T) {
		spy := &spyRepository{}
		dispatch(t, spy, MasterRoutes(), &lambda.Event{Method: "POST", ZipCodeField: 10001, NumParticipants: 3})
		assert.Equal(t, map[string]interface{}{"num_participants": 3}, spy.lastFields)
	})

	t.Run("missing fields", func(t *testing.T) {
		spy := &spyRepository{}
		payload := dispatch(t, spy, MasterRoutes(), &lambda.Event{Method: "POST", ZipCodeField: "10001"})
		assert.Equal(t, InvalidUpdateMessage, payload)
		assert.Empty(t, spy.calls)
	})
}

func TestMasterPut(t *testing.T) {
	t.Run("missing fields returns creation message", func(t *testing.T) {
		spy := &spyRepository{}
		payload := dispatch(t, spy, MasterRoutes(), &lambda.Event{Method: "PUT"})
		assert.Equal(t, "Invalid creation request. Please specify at least zip_code and num_participants.", payload)
		assert.Empty(t, spy.calls)
	})

	t.Run("strips junk_field", func(t *testing.T) {
		spy := &spyRepository{}
		dispatch(t, spy, MasterRoutes(), &lambda.Event{
			Method:           "PUT",
			ZipCodeField:     "10001",
			NumParticipants:  "5",
			AdditionalFields: map[string]interface{}{"junk_field": 1, "count_female": 2},
		})
		assert.Equal(t, []string{"create"}, spy.calls)
		assert.Equal(t, "5", spy.lastN)
		assert.Equal(t, map[string]interface{}{"count_female": 2}, spy.lastFields)
	})
}

func TestMasterDeleteAndFallback(t *testing.T) {
	spy := &spyRepository{}
	payload := dispatch(t, spy, MasterRoutes(), &lambda.Event{Method: "DELETE", ZipCodeField: "10001"})
	assert.Equal(t, map[string]interface{}{}, payload)
	assert.Equal(t, []string{"delete"}, spy.calls)

	tests := []struct {
		name  string
		event *lambda.Event
	}{
		{"delete without zip_code", &lambda.Event{Method: "DELETE", ZipCode: "10001"}},
		{"unknown method", &lambda.Event{Method: "PATCH"}},
		{"missing method", &lambda.Event{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyRepository{}
			payload := dispatch(t, spy, MasterRoutes(), tt.event)
			assert.Equal(t, IncompatibleMessage, payload)
			assert.Empty(t, spy.calls)
		})
	}
}

func TestNilEvent(t *testing.T) {
	for _, table := range []RouteTable{MasterRoutes(), ListRoutes(), GetRoutes(), PutRoutes(), DeleteRoutes()} {
		t.Run(table.Name, func(t *testing.T) {
			spy := &spyRepository{}
			payload := dispatch(t, spy, table, nil)
			assert.Equal(t, "No event detected", payload)
			assert.Empty(t, spy.calls)
		})
	}
}

func TestNarrowRouteMessages(t *testing.T) {
	tests := []struct {
		name     string
		table    RouteTable
		event    *lambda.Event
		expected string
	}{
		{"list with POST", ListRoutes(), &lambda.Event{Method: "POST"}, "Invalid event method provided: POST"},
		{"list without method", ListRoutes(), &lambda.Event{}, "Invalid event method provided: undefined"},
		{"get without zipCode", GetRoutes(), &lambda.Event{Method: "GET"}, "Invalid event method or zipCode provided: GET|undefined."},
		{"get with PUT", GetRoutes(), &lambda.Event{Method: "PUT", ZipCode: float64(10001)}, "Invalid event method or zipCode provided: PUT|10001."},
		{"put with GET", PutRoutes(), &lambda.Event{Method: "GET"}, "Invalid event method provided: GET"},
		{"put missing fields", PutRoutes(), &lambda.Event{Method: "PUT", ZipCodeField: "10001"}, InvalidCreationMessage},
		{"delete without zip_code", DeleteRoutes(), &lambda.Event{Method: "DELETE"}, "Invalid event method or zip_code provided: DELETE|undefined."},
		{"delete with GET", DeleteRoutes(), &lambda.Event{Method: "GET", ZipCodeField: "10001"}, "Invalid event method or zip_code provided: GET|10001."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyRepository{}
			payload := dispatch(t, spy, tt.table, tt.event)
			assert.Equal(t, tt.expected, payload)
			assert.Empty(t, spy.calls)
		})
	}
}

func TestNarrowRoutesReachRepository(t *testing.T) {
	tests := []struct {
		name  string
		table RouteTable
		event *lambda.Event
		call  string
	}{
		{"list", ListRoutes(), &lambda.Event{Method: "GET", ZipCode: "10001"}, "get_all"},
		{"get", GetRoutes(), &lambda.Event{Method: "GET", ZipCode: "10001"}, "get_by_zip_code"},
		{"put", PutRoutes(), &lambda.Event{Method: "PUT", ZipCodeField: "10001", NumParticipants: 2}, "create"},
		{"delete", DeleteRoutes(), &lambda.Event{Method: "DELETE", ZipCodeField: "10001"}, "delete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyRepository{}
			dispatch(t, spy, tt.table, tt.event)
			assert.Equal(t, []string{tt.call}, spy.calls)
		})
	}
}

func TestPayloadMapping(t *testing.T) {
	repo := repositories.NewDemographicsRepository(storage.NewMemoryTable(), nil, quietLogger())
	d := NewDispatcher(repo, MasterRoutes(), quietLogger())
	ctx := context.Background()

	t.Run("validation failure is false", func(t *testing.T) {
		outcome := d.Dispatch(ctx, &lambda.Event{Method: "PUT", ZipCodeField: "abc", NumParticipants: 5})
		assert.True(t, outcome.Failed())
		assert.False(t, IsRoutingFailure(outcome))
		assert.Equal(t, false, outcome.Payload)
	})

	t.Run("store failure is an error payload", func(t *testing.T) {
		event := &lambda.Event{Method: "PUT", ZipCodeField: "10001", NumParticipants: 5}
		first := d.Dispatch(ctx, event)
		require.False(t, first.Failed())

		second := d.Dispatch(ctx, event)
		require.True(t, second.Failed())
		payload, ok := second.Payload.(lambda.ErrorPayload)
		require.True(t, ok)
		assert.Equal(t, "ConditionalCheckFailedException", payload.Code)
		assert.False(t, payload.Retryable)
		assert.NotEmpty(t, payload.Message)
	})

	t.Run("routing failure is a message", func(t *testing.T) {
		outcome := d.Dispatch(ctx, &lambda.Event{Method: "PATCH"})
		assert.True(t, IsRoutingFailure(outcome))
		assert.Equal(t, IncompatibleMessage, outcome.Payload)
	})

	t.Run("create then get round trip", func(t *testing.T) {
		created := d.Dispatch(ctx, &lambda.Event{
			Method:           "PUT",
			ZipCodeField:     "94103",
			NumParticipants:  "12",
			AdditionalFields: map[string]interface{}{"count_female": float64(6), "junk_field": "x"},
		})
		require.False(t, created.Failed())

		got := d.Dispatch(ctx, &lambda.Event{Method: "GET", ZipCode: "94103"})
		records, ok := got.Payload.([]models.Record)
		require.True(t, ok)
		require.Len(t, records, 1)
		assert.Equal(t, int64(94103), records[0][models.AttrZipCode])
		assert.Equal(t, int64(12), records[0][models.AttrNumParticipants])
		assert.Equal(t, float64(6), records[0]["count_female"])
		assert.NotContains(t, records[0], models.JunkField)
	})
}
