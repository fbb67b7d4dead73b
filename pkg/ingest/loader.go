package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkorolev/dormstats/pkg/dormdb"
	"github.com/mkorolev/dormstats/pkg/logging"
)

// Loader bulk-inserts decoded records. Each load is one transaction: the
// batch either commits as a whole or not at all.
type Loader struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewLoader creates a loader over an injected connection handle. The loader
// does not own the handle and never closes it.
func NewLoader(db *sql.DB) *Loader {
	return &Loader{
		db:  db,
		log: logging.WithPhase("load"),
	}
}

// buildInsertSQL builds a multi-row INSERT for n rows.
func buildInsertSQL(table string, columns []string, n int) string {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	oneRow := "(" + strings.Join(placeholders, ", ") + ")"

	rows := make([]string, n)
	for i := range rows {
		rows[i] = oneRow
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(columns, ", "), strings.Join(rows, ", "))
}

// LoadRooms inserts the full room sequence in one statement and commits.
// An empty sequence is a no-op: no insert is issued at all.
func (l *Loader) LoadRooms(ctx context.Context, rooms []Room) error {
	if len(rooms) == 0 {
		l.log.Debug().Msg("no rooms to load")
		return nil
	}

	args := make([]any, 0, len(rooms)*2)
	for _, room := range rooms {
		args = append(args, room.ID, room.Name)
	}

	query := buildInsertSQL("rooms", []string{"id", "name"}, len(rooms))
	if err := l.execCommit(ctx, query, args); err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}

	l.log.Info().Int("rooms", len(rooms)).Msg("loaded rooms")
	return nil
}

// LoadStudentBatch inserts one batch and commits immediately. Commit
// granularity is per batch: a failure partway through a multi-batch run
// leaves prior batches durably committed and this batch absent.
func (l *Loader) LoadStudentBatch(ctx context.Context, batch []Student) error {
	if len(batch) == 0 {
		return nil
	}

	args := make([]any, 0, len(batch)*5)
	for _, s := range batch {
		args = append(args, s.ID, s.Name, s.Birthday.Format("2006-01-02"), s.Sex, s.RoomID)
	}

	columns := []string{"id", "name", "birthday", "sex", "room_id"}
	query := buildInsertSQL("students", columns, len(batch))
	if err := l.execCommit(ctx, query, args); err != nil {
		return fmt.Errorf("load student batch: %w", err)
	}
	return nil
}

func (l *Loader) execCommit(ctx context.Context, query string, args []any) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		if dormdb.IsConstraintViolation(err) {
			return fmt.Errorf("%w: %w", dormdb.ErrConstraint, err)
		}
		return fmt.Errorf("insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
