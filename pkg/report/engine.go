// Package report computes the four aggregate reports over the loaded data.
package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mkorolev/dormstats/pkg/logging"
)

// ErrReportQuery indicates one of the aggregate queries failed. The failure
// is scoped to that query; the other reports can still be attempted.
var ErrReportQuery = errors.New("report query failure")

// OccupancyRow is one row of the room-occupancy report.
type OccupancyRow struct {
	RoomID   int
	RoomName string
	Students int
}

// AvgAgeRow is one row of the smallest-average-age report.
type AvgAgeRow struct {
	RoomID   int
	RoomName string
	AvgAge   float64
}

// AgeGapRow is one row of the largest-age-gap report.
type AgeGapRow struct {
	RoomID   int
	RoomName string
	GapYears int
}

// MixedRow is one row of the mixed-sex-rooms report.
type MixedRow struct {
	RoomID   int
	RoomName string
}

// Querier is the subset of *sql.DB the engine needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Engine issues the aggregate report queries. All four are pure reads with
// no ordering dependency between them.
type Engine struct {
	db  Querier
	log zerolog.Logger
}

// NewEngine creates an engine over an injected connection handle.
func NewEngine(db Querier) *Engine {
	return &Engine{
		db:  db,
		log: logging.WithPhase("report"),
	}
}

// Ages are elapsed whole years between birthday and CURDATE(), accounting
// for month and day. CURDATE() is evaluated once per statement, so every
// row in a report shares the same reference date.
const ageExpr = "TIMESTAMPDIFF(YEAR, s.birthday, CURDATE())"

// RoomCounts returns the student count for every room, including rooms with
// zero students, ordered by room id.
func (e *Engine) RoomCounts(ctx context.Context) ([]OccupancyRow, error) {
	const query = `
		SELECT r.id, r.name, COUNT(s.id) AS student_count
		FROM rooms r LEFT JOIN students s ON s.room_id = r.id
		GROUP BY r.id, r.name
		ORDER BY r.id`

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: room occupancy: %w", ErrReportQuery, err)
	}
	defer rows.Close()

	var out []OccupancyRow
	for rows.Next() {
		var row OccupancyRow
		if err := rows.Scan(&row.RoomID, &row.RoomName, &row.Students); err != nil {
			return nil, fmt.Errorf("%w: room occupancy scan: %w", ErrReportQuery, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: room occupancy: %w", ErrReportQuery, err)
	}
	return out, nil
}

// SmallestAvgAge returns the five rooms with the lowest average student age.
// Rooms with no students are excluded; ties break by ascending room id.
func (e *Engine) SmallestAvgAge(ctx context.Context) ([]AvgAgeRow, error) {
	query := fmt.Sprintf(`
		SELECT r.id, r.name, AVG(%s) AS avg_age_years
		FROM rooms r JOIN students s ON s.room_id = r.id
		GROUP BY r.id, r.name
		ORDER BY avg_age_years ASC, r.id ASC
		LIMIT 5`, ageExpr)

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: smallest average age: %w", ErrReportQuery, err)
	}
	defer rows.Close()

	var out []AvgAgeRow
	for rows.Next() {
		var row AvgAgeRow
		if err := rows.Scan(&row.RoomID, &row.RoomName, &row.AvgAge); err != nil {
			return nil, fmt.Errorf("%w: smallest average age scan: %w", ErrReportQuery, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: smallest average age: %w", ErrReportQuery, err)
	}
	return out, nil
}

// LargestAgeGap returns the five rooms with the largest spread between their
// oldest and youngest student. Rooms with fewer than two students are
// excluded; ties break by ascending room id.
func (e *Engine) LargestAgeGap(ctx context.Context) ([]AgeGapRow, error) {
	query := fmt.Sprintf(`
		SELECT r.id, r.name, (MAX(%[1]s) - MIN(%[1]s)) AS age_gap_years
		FROM rooms r JOIN students s ON s.room_id = r.id
		GROUP BY r.id, r.name
		HAVING COUNT(s.id) > 1
		ORDER BY age_gap_years DESC, r.id ASC
		LIMIT 5`, ageExpr)

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: largest age gap: %w", ErrReportQuery, err)
	}
	defer rows.Close()

	var out []AgeGapRow
	for rows.Next() {
		var row AgeGapRow
		if err := rows.Scan(&row.RoomID, &row.RoomName, &row.GapYears); err != nil {
			return nil, fmt.Errorf("%w: largest age gap scan: %w", ErrReportQuery, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: largest age gap: %w", ErrReportQuery, err)
	}
	return out, nil
}

// MixedSexRooms returns rooms housing at least one male and at least one
// female student, ordered by room id.
func (e *Engine) MixedSexRooms(ctx context.Context) ([]MixedRow, error) {
	const query = `
		SELECT r.id, r.name
		FROM rooms r JOIN students s ON s.room_id = r.id
		GROUP BY r.id, r.name
		HAVING SUM(CASE WHEN s.sex = 'M' THEN 1 ELSE 0 END) > 0
		   AND SUM(CASE WHEN s.sex = 'F' THEN 1 ELSE 0 END) > 0
		ORDER BY r.id`

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: mixed sex rooms: %w", ErrReportQuery, err)
	}
	defer rows.Close()

	var out []MixedRow
	for rows.Next() {
		var row MixedRow
		if err := rows.Scan(&row.RoomID, &row.RoomName); err != nil {
			return nil, fmt.Errorf("%w: mixed sex rooms scan: %w", ErrReportQuery, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: mixed sex rooms: %w", ErrReportQuery, err)
	}
	return out, nil
}
