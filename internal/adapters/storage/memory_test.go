package storage

import (
	"context"
	"testing"

	"demographics-api/internal/models"
)

func TestMemoryTable(t *testing.T) {
	table := NewMemoryTable()
	defer table.Close()

	testTableBehaviour(t, table)
}

func TestMemoryTable_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable()

	if err := table.Insert(ctx, models.NewRecord(10001, 1, map[string]interface{}{"count_male": 1})); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	items, _ := table.Query(ctx, 10001)
	items[0]["count_male"] = 999

	again, _ := table.Query(ctx, 10001)
	if again[0]["count_male"] != 1 {
		t.Errorf("Stored item was mutated through a query result: %v", again[0])
	}
}

func TestMemoryTable_NormalizesKeys(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable()

	item := Item{models.AttrZipCode: float64(10001), models.AttrNumParticipants: "3"}
	if err := table.Insert(ctx, item); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	items, _ := table.Scan(ctx)
	if items[0][models.AttrZipCode] != int64(10001) {
		t.Errorf("zip_code = %#v, want int64(10001)", items[0][models.AttrZipCode])
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}
