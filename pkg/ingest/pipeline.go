package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/mkorolev/dormstats/pkg/dormdb"
	"github.com/mkorolev/dormstats/pkg/logging"
)

// Options controls an ingestion run.
type Options struct {
	// BatchSize is the number of student records per load-and-commit unit.
	// Zero selects DefaultBatchSize.
	BatchSize int
	// Reset clears both tables before loading.
	Reset bool
	// RunID tags log lines from this run. Empty generates a fresh one.
	RunID string
}

// Result reports what an ingestion run accomplished. On failure it reflects
// the durably committed portion: per-batch commit means earlier batches stay
// loaded when a later batch fails.
type Result struct {
	RoomsLoaded      int
	StudentsLoaded   int
	BatchesCommitted int
}

// RunImport executes one ingestion run: ensure schema, optionally reset
// data, load rooms, then load student batches strictly in source order.
// It is a straight pipeline: no retries, no buffering beyond one batch, and
// any component failure propagates unmodified alongside the partial Result.
func RunImport(ctx context.Context, db *sql.DB, roomsSrc, studentsSrc io.Reader, opts Options) (*Result, error) {
	if opts.RunID == "" {
		opts.RunID = logging.NewRunID()
	}
	log := logging.WithRun(opts.RunID).With().Str("phase", "import").Logger()

	if err := dormdb.CreateSchema(ctx, db); err != nil {
		return nil, err
	}
	if opts.Reset {
		if err := dormdb.ResetData(ctx, db); err != nil {
			return nil, err
		}
	}

	loader := NewLoader(db)
	result := &Result{}
	start := time.Now()

	rooms, err := DecodeRooms(roomsSrc)
	if err != nil {
		return result, err
	}
	if err := loader.LoadRooms(ctx, rooms); err != nil {
		return result, err
	}
	result.RoomsLoaded = len(rooms)

	it := NewBatchIterator(studentsSrc, opts.BatchSize)
	for it.Next() {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		batch := it.Batch()
		if err := loader.LoadStudentBatch(ctx, batch); err != nil {
			return result, fmt.Errorf("batch %d: %w", result.BatchesCommitted, err)
		}
		result.BatchesCommitted++
		result.StudentsLoaded += len(batch)

		log.Debug().
			Int("batch", result.BatchesCommitted).
			Int("batch_records", len(batch)).
			Int("students_loaded", result.StudentsLoaded).
			Msg("committed student batch")
	}
	if err := it.Err(); err != nil {
		return result, err
	}

	log.Info().
		Int("rooms", result.RoomsLoaded).
		Int("students", result.StudentsLoaded).
		Int("batches", result.BatchesCommitted).
		Dur("elapsed", time.Since(start)).
		Msg("import complete")

	return result, nil
}
