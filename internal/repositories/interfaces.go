package repositories

import (
	"context"

	"demographics-api/internal/models"
)

// DemographicsRepository defines the operations of the demographics record store.
// Key arguments are raw caller values (strings or numbers) and are validated before
// any storage access; a rejected argument yields an error satisfying IsValidation.
// Storage errors are returned unchanged.
type DemographicsRepository interface {
	// CreateDemographics inserts a new record built from the keys and extra
	// attributes. It fails if a record with the same key already exists.
	CreateDemographics(ctx context.Context, zipCode, numParticipants interface{}, extra map[string]interface{}) (models.Record, error)

	// GetDemographicsByZipCode returns every record of the zip code partition
	GetDemographicsByZipCode(ctx context.Context, zipCode interface{}) ([]models.Record, error)

	// GetAllDemographics returns every record in the table
	GetAllDemographics(ctx context.Context) ([]models.Record, error)

	// UpdateDemographics creates or updates the record identified by zipCode and
	// newValues["num_participants"]. It returns the previous values of the
	// overwritten attributes, or an empty record if the record did not exist.
	UpdateDemographics(ctx context.Context, zipCode interface{}, newValues map[string]interface{}) (models.Record, error)

	// DeleteDemographicsByZipCode removes every record of the zip code partition
	DeleteDemographicsByZipCode(ctx context.Context, zipCode interface{}) error

	// EnsureTable creates the demographics table with its key schema
	EnsureTable(ctx context.Context) error
}
