package ingest

import (
	"context"
	"strings"
	"testing"
)

func TestBuildInsertSQL(t *testing.T) {
	got := buildInsertSQL("rooms", []string{"id", "name"}, 2)
	want := "INSERT INTO rooms (id, name) VALUES (?, ?), (?, ?)"
	if got != want {
		t.Errorf("buildInsertSQL = %q, want %q", got, want)
	}
}

func TestBuildInsertSQLPlaceholderCount(t *testing.T) {
	columns := []string{"id", "name", "birthday", "sex", "room_id"}
	query := buildInsertSQL("students", columns, 100)
	if got := strings.Count(query, "?"); got != 500 {
		t.Errorf("placeholder count = %d, want 500", got)
	}
	if got := strings.Count(query, "("); got != 101 {
		t.Errorf("group count = %d, want 101 (column list + 100 rows)", got)
	}
}

func TestLoadRoomsEmptySkipsInsert(t *testing.T) {
	// A nil handle proves no database call is made for an empty sequence.
	loader := NewLoader(nil)
	if err := loader.LoadRooms(context.Background(), nil); err != nil {
		t.Fatalf("empty LoadRooms should be a no-op, got: %v", err)
	}
	if err := loader.LoadRooms(context.Background(), []Room{}); err != nil {
		t.Fatalf("empty LoadRooms should be a no-op, got: %v", err)
	}
}

func TestLoadStudentBatchEmptySkipsInsert(t *testing.T) {
	loader := NewLoader(nil)
	if err := loader.LoadStudentBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty LoadStudentBatch should be a no-op, got: %v", err)
	}
}
