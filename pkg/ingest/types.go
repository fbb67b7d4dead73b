// Package ingest decodes the rooms and students JSON datasets and bulk-loads
// them into MySQL in bounded-size batches.
package ingest

import "time"

// DefaultBatchSize is the number of student records per load-and-commit unit.
const DefaultBatchSize = 5000

// Room is one decoded room record.
type Room struct {
	ID   int
	Name string
}

// Student is one decoded student record. Birthday carries a date only; any
// time-of-day present in the source is discarded during decoding.
type Student struct {
	ID       int
	Name     string
	Birthday time.Time
	Sex      string // "M" or "F"
	RoomID   int
}
