package ingest

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func studentsJSON(n int) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id": %d, "name": "Student %d", "birthday": "2000-01-01T00:00:00.000000", "sex": "M", "room": %d}`, i, i, i%10)
	}
	b.WriteString("]")
	return b.String()
}

func collectBatches(t *testing.T, src string, batchSize int) [][]Student {
	t.Helper()
	it := NewBatchIterator(strings.NewReader(src), batchSize)
	var batches [][]Student
	for it.Next() {
		batches = append(batches, it.Batch())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	return batches
}

func TestDecodeRooms(t *testing.T) {
	src := `[{"id": 1, "name": "Alpha"}, {"id": 2, "name": "Beta"}]`
	rooms, err := DecodeRooms(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeRooms failed: %v", err)
	}
	want := []Room{{ID: 1, Name: "Alpha"}, {ID: 2, Name: "Beta"}}
	if len(rooms) != len(want) {
		t.Fatalf("got %d rooms, want %d", len(rooms), len(want))
	}
	for i := range want {
		if rooms[i] != want[i] {
			t.Errorf("rooms[%d] = %+v, want %+v", i, rooms[i], want[i])
		}
	}
}

func TestDecodeRoomsEmpty(t *testing.T) {
	rooms, err := DecodeRooms(strings.NewReader("[]"))
	if err != nil {
		t.Fatalf("DecodeRooms failed: %v", err)
	}
	if len(rooms) != 0 {
		t.Errorf("got %d rooms, want 0", len(rooms))
	}
}

func TestDecodeRoomsErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"malformed json", `[{"id": 1,`, ErrDecode},
		{"not an array", `{"id": 1}`, ErrDecode},
		{"missing id", `[{"name": "Alpha"}]`, ErrField},
		{"missing name", `[{"id": 1}]`, ErrField},
		{"empty name", `[{"id": 1, "name": ""}]`, ErrField},
		{"non-integer id", `[{"id": "abc", "name": "Alpha"}]`, ErrField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRooms(strings.NewReader(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBatchCounts(t *testing.T) {
	tests := []struct {
		n, batchSize int
		wantBatches  []int // sizes of each expected batch
	}{
		{0, 5, nil},
		{1, 2, []int{1}},
		{4, 2, []int{2, 2}},
		{5, 2, []int{2, 2, 1}},
		{5, 5, []int{5}},
		{5, 10, []int{5}},
		{6, 2, []int{2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d_b=%d", tt.n, tt.batchSize), func(t *testing.T) {
			batches := collectBatches(t, studentsJSON(tt.n), tt.batchSize)
			if len(batches) != len(tt.wantBatches) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tt.wantBatches))
			}
			for i, want := range tt.wantBatches {
				if len(batches[i]) != want {
					t.Errorf("batch %d has %d records, want %d", i, len(batches[i]), want)
				}
			}
		})
	}
}

func TestBatchesPreserveSourceOrder(t *testing.T) {
	batches := collectBatches(t, studentsJSON(7), 3)

	next := 0
	for _, batch := range batches {
		for _, s := range batch {
			if s.ID != next {
				t.Fatalf("out of order: got id %d, want %d", s.ID, next)
			}
			next++
		}
	}
	if next != 7 {
		t.Errorf("concatenated batches have %d records, want 7", next)
	}
}

func TestBatchDefaultSize(t *testing.T) {
	it := NewBatchIterator(strings.NewReader("[]"), 0)
	if it.batchSize != DefaultBatchSize {
		t.Errorf("batchSize = %d, want %d", it.batchSize, DefaultBatchSize)
	}
}

func TestStudentFieldMapping(t *testing.T) {
	src := `[{"id": 7, "name": "Ann", "birthday": "2001-06-15T12:30:00", "sex": "f", "room": 3}]`
	batches := collectBatches(t, src, 10)
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("expected a single one-record batch, got %v", batches)
	}

	s := batches[0][0]
	if s.ID != 7 {
		t.Errorf("ID = %d, want 7", s.ID)
	}
	if s.Name != "Ann" {
		t.Errorf("Name = %q, want Ann", s.Name)
	}
	// Time-of-day is discarded, not rounded
	want := time.Date(2001, 6, 15, 0, 0, 0, 0, time.UTC)
	if !s.Birthday.Equal(want) {
		t.Errorf("Birthday = %v, want %v", s.Birthday, want)
	}
	if s.Sex != "F" {
		t.Errorf("Sex = %q, want uppercase F", s.Sex)
	}
	if s.RoomID != 3 {
		t.Errorf("RoomID = %d, want 3", s.RoomID)
	}
}

func TestStudentDateOnlyBirthday(t *testing.T) {
	src := `[{"id": 1, "name": "Bo", "birthday": "1999-12-31", "sex": "M", "room": 1}]`
	batches := collectBatches(t, src, 10)
	got := batches[0][0].Birthday
	want := time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Birthday = %v, want %v", got, want)
	}
}

func TestStudentDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"truncated document", `[{"id": 1, "name": "A"`, ErrDecode},
		{"not an array", `{"id": 1}`, ErrDecode},
		{"missing birthday", `[{"id": 1, "name": "A", "sex": "M", "room": 1}]`, ErrField},
		{"bad birthday", `[{"id": 1, "name": "A", "birthday": "junk", "sex": "M", "room": 1}]`, ErrField},
		{"bad sex", `[{"id": 1, "name": "A", "birthday": "2000-01-01", "sex": "X", "room": 1}]`, ErrField},
		{"missing room", `[{"id": 1, "name": "A", "birthday": "2000-01-01", "sex": "M"}]`, ErrField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := NewBatchIterator(strings.NewReader(tt.src), 10)
			for it.Next() {
			}
			if !errors.Is(it.Err(), tt.wantErr) {
				t.Errorf("error = %v, want %v", it.Err(), tt.wantErr)
			}
		})
	}
}

func TestStudentDecodeErrorReportsPosition(t *testing.T) {
	src := `[
		{"id": 1, "name": "A", "birthday": "2000-01-01", "sex": "M", "room": 1},
		{"id": 2, "name": "B", "birthday": "2000-01-01", "sex": "?", "room": 1}
	]`
	it := NewBatchIterator(strings.NewReader(src), 10)
	for it.Next() {
	}
	err := it.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "record 1") {
		t.Errorf("error should name the offending record position, got: %v", err)
	}
}

func TestIteratorStopsAfterError(t *testing.T) {
	it := NewBatchIterator(strings.NewReader(`[{"id":`), 10)
	if it.Next() {
		t.Fatal("Next should return false on malformed input")
	}
	if it.Next() {
		t.Fatal("Next should keep returning false after an error")
	}
	if it.Err() == nil {
		t.Fatal("Err should be set")
	}
}
