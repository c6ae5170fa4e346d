package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// TableType represents the type of table engine
type TableType string

const (
	TableTypeDynamoDB TableType = "dynamodb"
	TableTypeSQLite   TableType = "sqlite"
	TableTypeMemory   TableType = "memory"
)

// Factory creates Table instances based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new table factory
func NewFactory(logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}
	return &Factory{
		logger: logger,
	}
}

// Create creates a Table instance based on the provided configuration
func (f *Factory) Create(ctx context.Context, config *Config) (Table, error) {
	if config == nil {
		return nil, fmt.Errorf("table config is required")
	}
	if config.TableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	var (
		table Table
		err   error
	)

	switch TableType(strings.ToLower(config.Type)) {
	case TableTypeDynamoDB, "":
		table, err = f.createDynamoTable(ctx, config)
	case TableTypeSQLite:
		table, err = f.createSQLiteTable(config)
	case TableTypeMemory:
		table = NewMemoryTable()
	default:
		return nil, fmt.Errorf("unsupported table type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s table: %w", config.Type, err)
	}

	f.logger.WithFields(logrus.Fields{
		"type":  config.Type,
		"table": config.TableName,
	}).Debug("Table engine created")

	return table, nil
}

// Schema returns the table schema described by config
func (f *Factory) Schema(config *Config) *TableSchema {
	return DemographicsSchema(config.TableName, config.ReadCapacity, config.WriteCapacity)
}

func (f *Factory) createDynamoTable(ctx context.Context, config *Config) (Table, error) {
	client, err := NewDynamoClient(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewDynamoTable(client, config.TableName, f.logger), nil
}

func (f *Factory) createSQLiteTable(config *Config) (Table, error) {
	path := config.SQLitePath
	if path == "" {
		path = "./data/demographics.db"
	}
	return NewSQLiteTable(path, config.TableName, f.logger)
}
