package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"demographics-api/internal/models"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,255}$`)

// SQLiteTable implements Table on a local SQLite file. Key attributes are columns,
// every other attribute lives in a JSON document column.
type SQLiteTable struct {
	db     *sql.DB
	table  string
	logger *logrus.Logger
}

// NewSQLiteTable opens (or creates) the database file at path
func NewSQLiteTable(path, tableName string, logger *logrus.Logger) (*SQLiteTable, error) {
	if logger == nil {
		logger = logrus.New()
	}

	if !tableNamePattern.MatchString(tableName) {
		return nil, NewTableError("NewSQLiteTable", tableName, ErrInvalidItem, false)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, NewTableError("NewSQLiteTable", "", err, false)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, NewTableError("NewSQLiteTable", "", err, false)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewTableError("NewSQLiteTable", "", err, true)
	}

	logger.WithFields(logrus.Fields{
		"db_path": path,
		"table":   tableName,
	}).Debug("SQLite table engine opened")

	return &SQLiteTable{
		db:     db,
		table:  tableName,
		logger: logger,
	}, nil
}

// Scan implements Table.Scan
func (s *SQLiteTable) Scan(ctx context.Context) ([]Item, error) {
	query := fmt.Sprintf(`SELECT zip_code, num_participants, attributes FROM %s`, s.quotedTable())
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, s.mapError("Scan", "", err)
	}
	defer rows.Close()

	return s.scanItems("Scan", rows)
}

// Query implements Table.Query
func (s *SQLiteTable) Query(ctx context.Context, zipCode int64) ([]Item, error) {
	query := fmt.Sprintf(`
		SELECT zip_code, num_participants, attributes
		FROM %s
		WHERE zip_code = ?
		ORDER BY num_participants ASC`, s.quotedTable())

	rows, err := s.db.QueryContext(ctx, query, zipCode)
	if err != nil {
		return nil, s.mapError("Query", fmt.Sprintf("%d", zipCode), err)
	}
	defer rows.Close()

	return s.scanItems("Query", rows)
}

// Insert implements Table.Insert
func (s *SQLiteTable) Insert(ctx context.Context, item Item) error {
	key, ok := item.Key()
	if !ok {
		return NewTableError("Insert", "", ErrInvalidItem, false)
	}

	attrs, err := json.Marshal(item.Attributes())
	if err != nil {
		return NewTableError("Insert", formatKey(key), fmt.Errorf("%w: %v", ErrInvalidItem, err), false)
	}

	query := fmt.Sprintf(`INSERT INTO %s (zip_code, num_participants, attributes) VALUES (?, ?, ?)`, s.quotedTable())
	if _, err := s.db.ExecContext(ctx, query, key.ZipCode, key.NumParticipants, string(attrs)); err != nil {
		return s.mapError("Insert", formatKey(key), err)
	}

	return nil
}

// Upsert implements Table.Upsert
func (s *SQLiteTable) Upsert(ctx context.Context, key models.Key, item Item) (Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.mapError("Upsert", formatKey(key), err)
	}
	defer tx.Rollback()

	selectQuery := fmt.Sprintf(`SELECT attributes FROM %s WHERE zip_code = ? AND num_participants = ?`, s.quotedTable())

	existing := map[string]interface{}{}
	var raw string
	switch err := tx.QueryRowContext(ctx, selectQuery, key.ZipCode, key.NumParticipants).Scan(&raw); {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, s.mapError("Upsert", formatKey(key), err)
	default:
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			return nil, NewTableError("Upsert", formatKey(key), err, false)
		}
	}

	previous := Item{}
	for name, value := range item.Attributes() {
		if old, ok := existing[name]; ok {
			previous[name] = old
		}
		existing[name] = value
	}

	attrs, err := json.Marshal(existing)
	if err != nil {
		return nil, NewTableError("Upsert", formatKey(key), fmt.Errorf("%w: %v", ErrInvalidItem, err), false)
	}

	upsertQuery := fmt.Sprintf(`
		INSERT INTO %s (zip_code, num_participants, attributes) VALUES (?, ?, ?)
		ON CONFLICT (zip_code, num_participants) DO UPDATE SET attributes = excluded.attributes`, s.quotedTable())

	if _, err := tx.ExecContext(ctx, upsertQuery, key.ZipCode, key.NumParticipants, string(attrs)); err != nil {
		return nil, s.mapError("Upsert", formatKey(key), err)
	}

	if err := tx.Commit(); err != nil {
		return nil, s.mapError("Upsert", formatKey(key), err)
	}

	return previous, nil
}

// DeleteByPartition implements Table.DeleteByPartition
func (s *SQLiteTable) DeleteByPartition(ctx context.Context, zipCode int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE zip_code = ?`, s.quotedTable())
	result, err := s.db.ExecContext(ctx, query, zipCode)
	if err != nil {
		return s.mapError("DeleteByPartition", fmt.Sprintf("%d", zipCode), err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		s.logger.WithFields(logrus.Fields{
			"zip_code": zipCode,
			"deleted":  affected,
		}).Debug("Deleted partition")
	}
	return nil
}

// CreateTable implements Table.CreateTable
func (s *SQLiteTable) CreateTable(ctx context.Context, schema *TableSchema) error {
	if schema == nil {
		return NewTableError("CreateTable", "", ErrInvalidItem, false)
	}

	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, s.table).Scan(&name)
	if err == nil {
		return NewTableError("CreateTable", s.table, ErrTableExists, false)
	}
	if err != sql.ErrNoRows {
		return s.mapError("CreateTable", s.table, err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE %s (
			%s INTEGER NOT NULL,
			%s INTEGER NOT NULL,
			attributes TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (%s, %s)
		)`,
		s.quotedTable(),
		schema.PartitionKey.Name, schema.SortKey.Name,
		schema.PartitionKey.Name, schema.SortKey.Name,
	)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return s.mapError("CreateTable", s.table, err)
	}

	s.logger.WithField("table", s.table).Info("Created SQLite table")
	return nil
}

// Close implements Table.Close
func (s *SQLiteTable) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteTable) quotedTable() string {
	return `"` + s.table + `"`
}

func (s *SQLiteTable) scanItems(op string, rows *sql.Rows) ([]Item, error) {
	items := make([]Item, 0)
	for rows.Next() {
		var (
			zipCode, numParticipants int64
			raw                      string
		)
		if err := rows.Scan(&zipCode, &numParticipants, &raw); err != nil {
			return nil, s.mapError(op, "", err)
		}

		item := Item{}
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, NewTableError(op, formatKey(models.Key{ZipCode: zipCode, NumParticipants: numParticipants}), err, false)
		}
		item[models.AttrZipCode] = zipCode
		item[models.AttrNumParticipants] = numParticipants
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, s.mapError(op, "", err)
	}
	return items, nil
}

func (s *SQLiteTable) mapError(op, key string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
			return NewTableError(op, key, ErrItemExists, false)
		case sqliteErr.Code == sqlite3.ErrBusy, sqliteErr.Code == sqlite3.ErrLocked:
			return NewTableError(op, key, fmt.Errorf("%w: %v", ErrUnavailable, err), true)
		}
	}

	if strings.Contains(err.Error(), "no such table") {
		return NewTableError(op, key, fmt.Errorf("%w: %s", ErrTableNotFound, s.table), false)
	}

	return NewTableError(op, key, err, false)
}
