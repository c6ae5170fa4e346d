package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"demographics-api/internal/models"

	"github.com/sirupsen/logrus"
)

func setupTestSQLite(t *testing.T) (*SQLiteTable, func()) {
	tempDir, err := os.MkdirTemp("", "sqlite_table_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	table, err := NewSQLiteTable(filepath.Join(tempDir, "test.db"), "demographics", logger)
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open SQLite table: %v", err)
	}

	cleanup := func() {
		table.Close()
		os.RemoveAll(tempDir)
	}

	return table, cleanup
}

func TestSQLiteTable(t *testing.T) {
	table, cleanup := setupTestSQLite(t)
	defer cleanup()

	testTableBehaviour(t, table)
}

func TestSQLiteTable_MissingTable(t *testing.T) {
	table, cleanup := setupTestSQLite(t)
	defer cleanup()

	_, err := table.Scan(context.Background())
	if !IsTableNotFound(err) {
		t.Errorf("Expected ErrTableNotFound, got %v", err)
	}
}

func TestSQLiteTable_NestedAttributes(t *testing.T) {
	table, cleanup := setupTestSQLite(t)
	defer cleanup()

	ctx := context.Background()
	if err := table.CreateTable(ctx, DemographicsSchema("demographics", 1, 1)); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	record := models.NewRecord(55555, 5, map[string]interface{}{
		"extra_field": map[string]interface{}{
			"some_list": []interface{}{55, "a"},
			"some_val":  true,
		},
	})
	if err := table.Insert(ctx, record); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	items, err := table.Query(ctx, 55555)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	extra, ok := items[0]["extra_field"].(map[string]interface{})
	if !ok {
		t.Fatalf("extra_field has type %T", items[0]["extra_field"])
	}
	list, ok := extra["some_list"].([]interface{})
	if !ok || len(list) != 2 || list[1] != "a" {
		t.Errorf("some_list = %v", extra["some_list"])
	}
	if items[0][models.AttrZipCode] != int64(55555) {
		t.Errorf("zip_code = %#v", items[0][models.AttrZipCode])
	}
}

func TestNewSQLiteTable_InvalidName(t *testing.T) {
	_, err := NewSQLiteTable(":memory:", `bad"name`, nil)
	if err == nil {
		t.Error("Expected error for invalid table name")
	}
}
