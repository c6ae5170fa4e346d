package repositories

import (
	"context"

	"github.com/sirupsen/logrus"

	"demographics-api/internal/adapters/storage"
	"demographics-api/internal/models"
)

// demographicsRepository implements DemographicsRepository on top of a storage.Table
type demographicsRepository struct {
	table  storage.Table
	schema *storage.TableSchema
	logger *logrus.Logger
}

// NewDemographicsRepository creates a new demographics repository
func NewDemographicsRepository(table storage.Table, schema *storage.TableSchema, logger *logrus.Logger) DemographicsRepository {
	if logger == nil {
		logger = logrus.New()
	}
	if schema == nil {
		schema = storage.DemographicsSchema("demographics", 1, 1)
	}
	return &demographicsRepository{
		table:  table,
		schema: schema,
		logger: logger,
	}
}

// CreateDemographics inserts a new record
func (r *demographicsRepository) CreateDemographics(ctx context.Context, zipCode, numParticipants interface{}, extra map[string]interface{}) (models.Record, error) {
	const op = "create"

	zip, ok := models.ParseKey(zipCode)
	if !ok {
		return nil, r.rejected(op, models.AttrZipCode, zipCode)
	}
	n, ok := models.ParseKey(numParticipants)
	if !ok {
		return nil, r.rejected(op, models.AttrNumParticipants, numParticipants)
	}

	record := models.NewRecord(zip, n, extra)
	if err := r.table.Insert(ctx, record); err != nil {
		r.failed(op, err).WithFields(logrus.Fields{
			"zip_code":         zip,
			"num_participants": n,
		}).Error("Data access error")
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"operation":        op,
		"zip_code":         zip,
		"num_participants": n,
	}).Info("Demographics record created")
	return record, nil
}

// GetDemographicsByZipCode returns the records of one zip code
func (r *demographicsRepository) GetDemographicsByZipCode(ctx context.Context, zipCode interface{}) ([]models.Record, error) {
	const op = "get_by_zip_code"

	zip, ok := models.ParseKey(zipCode)
	if !ok {
		return nil, r.rejected(op, models.AttrZipCode, zipCode)
	}

	items, err := r.table.Query(ctx, zip)
	if err != nil {
		r.failed(op, err).WithField("zip_code", zip).Error("Data access error")
		return nil, err
	}

	records := toRecords(items)
	r.logger.WithFields(logrus.Fields{
		"operation": op,
		"zip_code":  zip,
		"count":     len(records),
	}).Info("Demographics records retrieved")
	return records, nil
}

// GetAllDemographics returns every record in the table
func (r *demographicsRepository) GetAllDemographics(ctx context.Context) ([]models.Record, error) {
	const op = "get_all"

	items, err := r.table.Scan(ctx)
	if err != nil {
		r.failed(op, err).Error("Data access error")
		return nil, err
	}

	records := toRecords(items)
	r.logger.WithFields(logrus.Fields{
		"operation": op,
		"count":     len(records),
	}).Info("Demographics records retrieved")
	return records, nil
}

// UpdateDemographics creates or updates the record keyed by zipCode and
// newValues["num_participants"]
func (r *demographicsRepository) UpdateDemographics(ctx context.Context, zipCode interface{}, newValues map[string]interface{}) (models.Record, error) {
	const op = "update"

	zip, ok := models.ParseKey(zipCode)
	if !ok {
		return nil, r.rejected(op, models.AttrZipCode, zipCode)
	}
	rawParticipants := newValues[models.AttrNumParticipants]
	n, ok := models.ParseKey(rawParticipants)
	if !ok {
		return nil, r.rejected(op, models.AttrNumParticipants, rawParticipants)
	}

	key := models.Key{ZipCode: zip, NumParticipants: n}
	previous, err := r.table.Upsert(ctx, key, models.NewRecord(zip, n, newValues))
	if err != nil {
		r.failed(op, err).WithFields(logrus.Fields{
			"zip_code":         zip,
			"num_participants": n,
		}).Error("Data access error")
		return nil, err
	}
	if previous == nil {
		previous = models.Record{}
	}

	r.logger.WithFields(logrus.Fields{
		"operation":        op,
		"zip_code":         zip,
		"num_participants": n,
		"previous":         previous.String(),
	}).Info("Demographics record updated")
	return previous, nil
}

// DeleteDemographicsByZipCode removes every record of one zip code
func (r *demographicsRepository) DeleteDemographicsByZipCode(ctx context.Context, zipCode interface{}) error {
	const op = "delete"

	zip, ok := models.ParseKey(zipCode)
	if !ok {
		return r.rejected(op, models.AttrZipCode, zipCode)
	}

	if err := r.table.DeleteByPartition(ctx, zip); err != nil {
		r.failed(op, err).WithField("zip_code", zip).Error("Data access error")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"operation": op,
		"zip_code":  zip,
	}).Info("Demographics records deleted")
	return nil
}

// EnsureTable creates the demographics table
func (r *demographicsRepository) EnsureTable(ctx context.Context) error {
	const op = "create_table"

	if err := r.table.CreateTable(ctx, r.schema); err != nil {
		r.failed(op, err).WithField("table", r.schema.Name).Error("Unable to create table")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"operation":      op,
		"table":          r.schema.Name,
		"read_capacity":  r.schema.ReadCapacity,
		"write_capacity": r.schema.WriteCapacity,
	}).Info("Created table")
	return nil
}

func (r *demographicsRepository) rejected(op, field string, value interface{}) error {
	err := ValidationError(op, field, value)
	r.logger.WithFields(logrus.Fields{
		"operation": op,
		"field":     field,
		"value":     value,
	}).Warn("Unable to parse argument(s)")
	return err
}

func (r *demographicsRepository) failed(op string, err error) *logrus.Entry {
	return r.logger.WithFields(logrus.Fields{
		"operation":  op,
		"error":      err.Error(),
		"error_code": storage.ErrorCode(err),
		"retryable":  storage.IsRetryable(err),
	})
}

func toRecords(items []storage.Item) []models.Record {
	records := make([]models.Record, 0, len(items))
	for _, item := range items {
		records = append(records, item.NormalizeKeys())
	}
	return records
}
