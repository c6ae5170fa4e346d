package storage

import (
	"context"

	"demographics-api/internal/models"
)

// Item is a single table item as exchanged with a storage engine
type Item = models.Record

// KeyAttribute describes one attribute of the table key schema
type KeyAttribute struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"` // "N", "S" or "B"
}

// TableSchema describes the key schema and provisioned throughput of a table
type TableSchema struct {
	Name          string       `json:"name" yaml:"name"`
	PartitionKey  KeyAttribute `json:"partition_key" yaml:"partition_key"`
	SortKey       KeyAttribute `json:"sort_key" yaml:"sort_key"`
	ReadCapacity  int64        `json:"read_capacity" yaml:"read_capacity"`
	WriteCapacity int64        `json:"write_capacity" yaml:"write_capacity"`
}

// DemographicsSchema returns the schema of the demographics table
func DemographicsSchema(name string, readCapacity, writeCapacity int64) *TableSchema {
	if readCapacity <= 0 {
		readCapacity = 1
	}
	if writeCapacity <= 0 {
		writeCapacity = 1
	}
	return &TableSchema{
		Name:          name,
		PartitionKey:  KeyAttribute{Name: models.AttrZipCode, Type: "N"},
		SortKey:       KeyAttribute{Name: models.AttrNumParticipants, Type: "N"},
		ReadCapacity:  readCapacity,
		WriteCapacity: writeCapacity,
	}
}

// Table provides an abstraction over the key-value table holding demographics records.
// Implementations exist for DynamoDB, a local SQLite file and process memory.
type Table interface {
	// Scan returns every item in the table, following pagination internally
	Scan(ctx context.Context) ([]Item, error)

	// Query returns all items sharing the given partition key, ordered by sort key
	Query(ctx context.Context, zipCode int64) ([]Item, error)

	// Insert stores a new item and fails with ErrItemExists if its key is taken
	Insert(ctx context.Context, item Item) error

	// Upsert creates the item at key or sets its attributes on the existing item.
	// It returns the previous values of the attributes it overwrote (empty if none).
	Upsert(ctx context.Context, key models.Key, item Item) (Item, error)

	// DeleteByPartition removes every item sharing the partition key.
	// Deleting an empty partition is not an error.
	DeleteByPartition(ctx context.Context, zipCode int64) error

	// CreateTable creates the table with the given schema
	CreateTable(ctx context.Context, schema *TableSchema) error

	// Close cleans up any resources used by the engine
	Close() error
}

// Config represents configuration for table engines
type Config struct {
	Type          string `json:"type" yaml:"type"` // "dynamodb", "sqlite" or "memory"
	TableName     string `json:"table_name" yaml:"table_name"`
	Region        string `json:"region" yaml:"region"`
	Endpoint      string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID   string `json:"access_key_id" yaml:"access_key_id"`
	SecretKey     string `json:"secret_key" yaml:"secret_key"`
	SQLitePath    string `json:"sqlite_path" yaml:"sqlite_path"`
	ReadCapacity  int64  `json:"read_capacity" yaml:"read_capacity"`
	WriteCapacity int64  `json:"write_capacity" yaml:"write_capacity"`
}
