package storage

import (
	"context"
	"fmt"
	"sync"

	"demographics-api/internal/models"
)

// MemoryTable is an in-memory implementation of Table for tests and local runs
type MemoryTable struct {
	mu     sync.RWMutex
	items  map[models.Key]Item
	schema *TableSchema
}

// NewMemoryTable creates a new MemoryTable instance
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{
		items: make(map[models.Key]Item),
	}
}

// Scan implements Table.Scan
func (m *MemoryTable) Scan(ctx context.Context) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, copyItem(item))
	}
	return items, nil
}

// Query implements Table.Query
func (m *MemoryTable) Query(ctx context.Context, zipCode int64) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Item, 0)
	for key, item := range m.items {
		if key.ZipCode == zipCode {
			items = append(items, copyItem(item))
		}
	}
	models.SortRecords(items)
	return items, nil
}

// Insert implements Table.Insert
func (m *MemoryTable) Insert(ctx context.Context, item Item) error {
	key, ok := item.Key()
	if !ok {
		return NewTableError("Insert", "", ErrInvalidItem, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; exists {
		return NewTableError("Insert", formatKey(key), ErrItemExists, false)
	}

	m.items[key] = copyItem(item).NormalizeKeys()
	return nil
}

// Upsert implements Table.Upsert
func (m *MemoryTable) Upsert(ctx context.Context, key models.Key, item Item) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := Item{}
	existing, exists := m.items[key]
	if !exists {
		existing = Item{
			models.AttrZipCode:         key.ZipCode,
			models.AttrNumParticipants: key.NumParticipants,
		}
	}

	for name, value := range item.Attributes() {
		if old, ok := existing[name]; ok && exists {
			previous[name] = old
		}
		existing[name] = value
	}

	m.items[key] = existing
	return previous, nil
}

// DeleteByPartition implements Table.DeleteByPartition
func (m *MemoryTable) DeleteByPartition(ctx context.Context, zipCode int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.items {
		if key.ZipCode == zipCode {
			delete(m.items, key)
		}
	}
	return nil
}

// CreateTable implements Table.CreateTable
func (m *MemoryTable) CreateTable(ctx context.Context, schema *TableSchema) error {
	if schema == nil {
		return NewTableError("CreateTable", "", ErrInvalidItem, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.schema != nil {
		return NewTableError("CreateTable", schema.Name, ErrTableExists, false)
	}
	m.schema = schema
	return nil
}

// Close implements Table.Close
func (m *MemoryTable) Close() error {
	return nil
}

// Len returns the number of stored items
func (m *MemoryTable) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func copyItem(item Item) Item {
	cp := make(Item, len(item))
	for k, v := range item {
		cp[k] = v
	}
	return cp
}

func formatKey(key models.Key) string {
	return fmt.Sprintf("%d/%d", key.ZipCode, key.NumParticipants)
}
