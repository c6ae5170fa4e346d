package storage

import (
	"context"
	"testing"

	"demographics-api/internal/models"
)

// testTableBehaviour exercises the Table contract shared by all local engines
func testTableBehaviour(t *testing.T, table Table) {
	ctx := context.Background()

	t.Run("CreateTable", func(t *testing.T) {
		schema := DemographicsSchema("demographics", 1, 1)
		if err := table.CreateTable(ctx, schema); err != nil {
			t.Fatalf("CreateTable failed: %v", err)
		}

		err := table.CreateTable(ctx, schema)
		if err == nil {
			t.Fatal("Expected error creating table twice")
		}
	})

	t.Run("Insert and Query", func(t *testing.T) {
		items := []Item{
			models.NewRecord(10001, 20, map[string]interface{}{"count_male": 10}),
			models.NewRecord(10001, 5, nil),
			models.NewRecord(20002, 7, nil),
		}
		for _, item := range items {
			if err := table.Insert(ctx, item); err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
		}

		got, err := table.Query(ctx, 10001)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(got))
		}

		for _, item := range got {
			if zip, _ := item.ZipCode(); zip != 10001 {
				t.Errorf("Query returned zip_code %d, want 10001", zip)
			}
		}
		if n, _ := got[0].NumParticipants(); n != 5 {
			t.Errorf("Expected items ordered by num_participants, first is %d", n)
		}
	})

	t.Run("Insert duplicate key", func(t *testing.T) {
		err := table.Insert(ctx, models.NewRecord(10001, 5, nil))
		if !IsItemExists(err) {
			t.Errorf("Expected ErrItemExists, got %v", err)
		}
	})

	t.Run("Insert without key", func(t *testing.T) {
		err := table.Insert(ctx, Item{"count_male": 1})
		if err == nil {
			t.Error("Expected error inserting item without key")
		}
	})

	t.Run("Query empty partition", func(t *testing.T) {
		got, err := table.Query(ctx, 99999)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Expected empty non-nil slice, got %v", got)
		}
	})

	t.Run("Scan", func(t *testing.T) {
		got, err := table.Scan(ctx)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("Expected 3 items, got %d", len(got))
		}
	})

	t.Run("Upsert new item", func(t *testing.T) {
		key := models.Key{ZipCode: 55555, NumParticipants: 551}
		previous, err := table.Upsert(ctx, key, models.NewRecord(55555, 551, map[string]interface{}{"count_male": 550}))
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if len(previous) != 0 {
			t.Errorf("Expected empty previous values, got %v", previous)
		}

		got, _ := table.Query(ctx, 55555)
		if len(got) != 1 {
			t.Fatalf("Expected 1 item after upsert, got %d", len(got))
		}
		if v, ok := got[0]["count_male"].(float64); ok && v != 550 {
			t.Errorf("count_male = %v, want 550", v)
		}
	})

	t.Run("Upsert existing item", func(t *testing.T) {
		key := models.Key{ZipCode: 55555, NumParticipants: 551}
		previous, err := table.Upsert(ctx, key, models.NewRecord(55555, 551, map[string]interface{}{
			"count_male":   549,
			"count_female": 2,
		}))
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if _, ok := previous["count_male"]; !ok {
			t.Errorf("Expected previous count_male, got %v", previous)
		}
		if _, ok := previous["count_female"]; ok {
			t.Errorf("count_female did not exist before, got %v", previous)
		}
	})

	t.Run("DeleteByPartition", func(t *testing.T) {
		if err := table.DeleteByPartition(ctx, 10001); err != nil {
			t.Fatalf("DeleteByPartition failed: %v", err)
		}
		got, _ := table.Query(ctx, 10001)
		if len(got) != 0 {
			t.Errorf("Expected partition to be empty, got %d items", len(got))
		}

		// Deleting again is not an error
		if err := table.DeleteByPartition(ctx, 10001); err != nil {
			t.Errorf("Second DeleteByPartition failed: %v", err)
		}

		remaining, _ := table.Query(ctx, 20002)
		if len(remaining) != 1 {
			t.Errorf("Other partitions must survive, got %d items", len(remaining))
		}
	})
}
