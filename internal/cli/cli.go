// Package cli implements the command-line interface for dormstats.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/mkorolev/dormstats/internal/config"
	"github.com/mkorolev/dormstats/pkg/dormdb"
	"github.com/mkorolev/dormstats/pkg/ingest"
	"github.com/mkorolev/dormstats/pkg/logging"
	"github.com/mkorolev/dormstats/pkg/report"
	"github.com/mkorolev/dormstats/pkg/source"
)

// Run executes the CLI with the given arguments.
func Run(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: dormstats <command> [options]\ncommands: run")
	}

	switch args[0] {
	case "run":
		return runRun(args[1:])
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	rooms := fs.String("rooms", "input/rooms.json", "rooms document: local path or s3:// URI")
	students := fs.String("students", "input/students.json", "students document: local path or s3:// URI")
	noImport := fs.Bool("no-import", false, "skip import and only run reports")
	noTruncate := fs.Bool("no-truncate", false, "do not clear tables before import")
	reportsDir := fs.String("reports-dir", "reports", "directory to write text reports to")
	batchSize := fs.Int("batch-size", ingest.DefaultBatchSize, "student records per load-and-commit batch")
	debug := fs.Bool("debug", false, "enable debug logging")
	human := fs.Bool("human", false, "human-friendly console logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *batchSize <= 0 {
		return errors.New("--batch-size must be positive")
	}

	logging.Init(*debug, *human)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := dormdb.Connect(ctx, cfg.MySQL)
	if err != nil {
		return err
	}
	// The connection is scoped to this run and released on every exit path.
	defer db.Close()

	if !*noImport {
		if err := doImport(ctx, db, *rooms, *students, *batchSize, !*noTruncate); err != nil {
			return err
		}
	}

	rendered, genErr := report.GenerateAll(ctx, report.NewEngine(db))
	for _, r := range rendered {
		fmt.Printf("\n%s\n%s\n", r.Title, r.Text)
	}
	if err := report.WriteFiles(*reportsDir, rendered); err != nil {
		return err
	}
	return genErr
}

func doImport(ctx context.Context, db *sql.DB, rooms, students string, batchSize int, reset bool) error {
	roomsSrc, err := source.Open(ctx, rooms)
	if err != nil {
		return err
	}
	defer roomsSrc.Close()

	studentsSrc, err := source.Open(ctx, students)
	if err != nil {
		return err
	}
	defer studentsSrc.Close()

	result, err := ingest.RunImport(ctx, db, roomsSrc, studentsSrc, ingest.Options{
		BatchSize: batchSize,
		Reset:     reset,
	})
	if err != nil {
		// Committed batches stay loaded; say how far the run got.
		if result != nil && result.BatchesCommitted > 0 {
			return fmt.Errorf("import failed after committing %d batches (%d students): %w",
				result.BatchesCommitted, result.StudentsLoaded, err)
		}
		return err
	}
	return nil
}
