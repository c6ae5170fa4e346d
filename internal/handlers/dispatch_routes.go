package handlers

import (
	"context"
	"fmt"

	"demographics-api/internal/models"
	"demographics-api/internal/repositories"
	"demographics-api/pkg/lambda"
)

// Caller-facing rejection messages
const (
	InvalidUpdateMessage   = "Received invalid update request. Please specify at least zip_code and num_participants."
	InvalidCreationMessage = "Invalid creation request. Please specify at least zip_code and num_participants."
	IncompatibleMessage    = "HTTP request incompatible with API. Please check format."
)

// MasterRoutes serves every method from a single handler
func MasterRoutes() RouteTable {
	incompatible := constant(IncompatibleMessage)
	return RouteTable{
		Name: "demographics",
		Routes: []Route{
			{Method: "GET", Operation: getDemographics},
			{Method: "POST", Accepts: hasKeys, Rejection: constant(InvalidUpdateMessage), Operation: updateDemographics},
			{Method: "PUT", Accepts: hasKeys, Rejection: constant(InvalidCreationMessage), Operation: createDemographics},
			{Method: "DELETE", Accepts: hasZipCodeField, Rejection: incompatible, Operation: deleteDemographics},
		},
		Fallback: incompatible,
	}
}

// ListRoutes serves the list-all handler
func ListRoutes() RouteTable {
	return RouteTable{
		Name: "list-demographics",
		Routes: []Route{
			{Method: "GET", Operation: listDemographics},
		},
		Fallback: invalidMethod,
	}
}

// GetRoutes serves the get-by-zip-code handler
func GetRoutes() RouteTable {
	invalid := func(event *lambda.Event) string {
		return fmt.Sprintf("Invalid event method or zipCode provided: %s|%s.",
			lambda.DisplayValue(event.Method), lambda.DisplayValue(event.ZipCode))
	}
	return RouteTable{
		Name: "get-demographics",
		Routes: []Route{
			{Method: "GET", Accepts: hasZipCodeQuery, Rejection: invalid, Operation: getDemographicsByZipCode},
		},
		Fallback: invalid,
	}
}

// PutRoutes serves the create handler
func PutRoutes() RouteTable {
	return RouteTable{
		Name: "put-demographics",
		Routes: []Route{
			{Method: "PUT", Accepts: hasKeys, Rejection: constant(InvalidCreationMessage), Operation: createDemographics},
		},
		Fallback: invalidMethod,
	}
}

// DeleteRoutes serves the delete handler
func DeleteRoutes() RouteTable {
	invalid := func(event *lambda.Event) string {
		return fmt.Sprintf("Invalid event method or zip_code provided: %s|%s.",
			lambda.DisplayValue(event.Method), lambda.DisplayValue(event.ZipCodeField))
	}
	return RouteTable{
		Name: "delete-demographics",
		Routes: []Route{
			{Method: "DELETE", Accepts: hasZipCodeField, Rejection: invalid, Operation: deleteDemographics},
		},
		Fallback: invalid,
	}
}

func constant(message string) func(*lambda.Event) string {
	return func(*lambda.Event) string { return message }
}

func invalidMethod(event *lambda.Event) string {
	return "Invalid event method provided: " + lambda.DisplayValue(event.Method)
}

func hasKeys(event *lambda.Event) bool {
	return models.IsTruthy(event.ZipCodeField) && models.IsTruthy(event.NumParticipants)
}

func hasZipCodeField(event *lambda.Event) bool {
	return models.IsTruthy(event.ZipCodeField)
}

func hasZipCodeQuery(event *lambda.Event) bool {
	return models.IsTruthy(event.ZipCode)
}

func getDemographics(ctx context.Context, repo repositories.DemographicsRepository, event *lambda.Event) (interface{}, error) {
	if hasZipCodeQuery(event) {
		return getDemographicsByZipCode(ctx, repo, event)
	}
	return listDemographics(ctx, repo, event)
}

func listDemographics(ctx context.Context, repo repositories.DemographicsRepository, event *lambda.Event) (interface{}, error) {
	return repo.GetAllDemographics(ctx)
}

func getDemographicsByZipCode(ctx context.Context, repo repositories.DemographicsRepository, event *lambda.Event) (interface{}, error) {
	return repo.GetDemographicsByZipCode(ctx, event.ZipCode)
}

// updateDemographics merges num_participants into the additional fields
func updateDemographics(ctx context.Context, repo repositories.DemographicsRepository, event *lambda.Event) (interface{}, error) {
	fields := models.SanitizeFields(event.AdditionalFields)
	fields[models.AttrNumParticipants] = event.NumParticipants
	return repo.UpdateDemographics(ctx, event.ZipCodeField, fields)
}

func createDemographics(ctx context.Context, repo repositories.DemographicsRepository, event *lambda.Event) (interface{}, error) {
	return repo.CreateDemographics(ctx, event.ZipCodeField, event.NumParticipants, models.SanitizeFields(event.AdditionalFields))
}

func deleteDemographics(ctx context.Context, repo repositories.DemographicsRepository, event *lambda.Event) (interface{}, error) {
	if err := repo.DeleteDemographicsByZipCode(ctx, event.ZipCodeField); err != nil {
		return nil, err
	}
	return map[string]interface{}{}, nil
}
