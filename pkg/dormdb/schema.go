package dormdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkorolev/dormstats/pkg/logging"
)

// Executor is the subset of *sql.DB the schema manager needs. Tests can
// substitute a fake.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var tableStatements = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id INT PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS students (
		id INT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		birthday DATE NOT NULL,
		sex ENUM('M','F') NOT NULL,
		room_id INT NOT NULL,
		CONSTRAINT fk_students_room FOREIGN KEY (room_id)
			REFERENCES rooms(id)
			ON UPDATE CASCADE
			ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE utf8mb4_unicode_ci`,
}

// The composite indexes serve the report queries: grouping by room,
// sex-presence checks, and MIN/MAX over birthday within a room.
var indexStatements = []string{
	"CREATE INDEX idx_students_room ON students(room_id)",
	"CREATE INDEX idx_students_room_sex_bday ON students(room_id, sex, birthday)",
	"CREATE INDEX idx_students_room_bday ON students(room_id, birthday)",
}

// CreateSchema idempotently creates the rooms and students tables and their
// supporting indexes. Table creation uses IF NOT EXISTS; index creation has
// no such form in MySQL, so each duplicate-index-name failure is suppressed
// individually and every other failure propagates as a schema conflict.
func CreateSchema(ctx context.Context, db Executor) error {
	log := logging.WithPhase("schema")

	for _, stmt := range tableStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: create table: %w", ErrSchemaConflict, err)
		}
	}

	for _, stmt := range indexStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if isDuplicateIndex(err) {
				continue
			}
			return fmt.Errorf("%w: create index: %w", ErrSchemaConflict, err)
		}
	}

	log.Debug().Msg("schema ensured")
	return nil
}

// ResetData empties the students and rooms tables while leaving the schema
// in place. Referential-integrity checking is disabled for the duration so
// truncation order does not matter, and re-enabled before returning. Must
// not run concurrently with an in-flight ingestion.
func ResetData(ctx context.Context, db Executor) error {
	log := logging.WithPhase("reset")

	if _, err := db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=0"); err != nil {
		return fmt.Errorf("disable foreign key checks: %w", err)
	}
	defer func() {
		// Restore on every path; the toggle is session-scoped and the
		// session outlives this call.
		_, _ = db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=1")
	}()

	if _, err := db.ExecContext(ctx, "TRUNCATE TABLE students"); err != nil {
		return fmt.Errorf("truncate students: %w", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE TABLE rooms"); err != nil {
		return fmt.Errorf("truncate rooms: %w", err)
	}

	log.Info().Msg("cleared rooms and students")
	return nil
}
