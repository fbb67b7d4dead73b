package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Rendered is one report formatted for display and file output.
type Rendered struct {
	Title    string
	FileName string
	Text     string
}

// FormatTable renders rows as a fixed-width text table with a header rule.
func FormatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	fmtRow := func(cells []string) string {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			padded[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
		}
		return strings.Join(padded, " | ")
	}

	var b strings.Builder
	b.WriteString(fmtRow(headers))
	b.WriteString("\n")
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	b.WriteString(strings.Join(rule, "-+-"))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(fmtRow(row))
	}
	return b.String()
}

// GenerateAll runs all four reports and renders them. A failing query does
// not stop the others: every report that succeeds is returned, and the
// failures are joined into the returned error.
func GenerateAll(ctx context.Context, e *Engine) ([]Rendered, error) {
	var out []Rendered
	var errs []error

	if rows, err := e.RoomCounts(ctx); err != nil {
		errs = append(errs, err)
	} else {
		cells := make([][]string, len(rows))
		for i, r := range rows {
			cells[i] = []string{strconv.Itoa(r.RoomID), r.RoomName, strconv.Itoa(r.Students)}
		}
		out = append(out, Rendered{
			Title:    "Rooms and student counts:",
			FileName: "rooms_student_counts.txt",
			Text:     FormatTable([]string{"room_id", "room_name", "student_count"}, cells),
		})
	}

	if rows, err := e.SmallestAvgAge(ctx); err != nil {
		errs = append(errs, err)
	} else {
		cells := make([][]string, len(rows))
		for i, r := range rows {
			cells[i] = []string{strconv.Itoa(r.RoomID), r.RoomName, strconv.FormatFloat(r.AvgAge, 'f', 4, 64)}
		}
		out = append(out, Rendered{
			Title:    "Top 5 rooms with smallest average age:",
			FileName: "top5_smallest_avg_age.txt",
			Text:     FormatTable([]string{"room_id", "room_name", "avg_age_years"}, cells),
		})
	}

	if rows, err := e.LargestAgeGap(ctx); err != nil {
		errs = append(errs, err)
	} else {
		cells := make([][]string, len(rows))
		for i, r := range rows {
			cells[i] = []string{strconv.Itoa(r.RoomID), r.RoomName, strconv.Itoa(r.GapYears)}
		}
		out = append(out, Rendered{
			Title:    "Top 5 rooms with largest age gap:",
			FileName: "top5_largest_age_gap.txt",
			Text:     FormatTable([]string{"room_id", "room_name", "age_gap_years"}, cells),
		})
	}

	if rows, err := e.MixedSexRooms(ctx); err != nil {
		errs = append(errs, err)
	} else {
		cells := make([][]string, len(rows))
		for i, r := range rows {
			cells[i] = []string{strconv.Itoa(r.RoomID), r.RoomName}
		}
		out = append(out, Rendered{
			Title:    "Rooms with mixed sexes:",
			FileName: "mixed_sex_rooms.txt",
			Text:     FormatTable([]string{"room_id", "room_name"}, cells),
		})
	}

	return out, errors.Join(errs...)
}

// WriteFiles writes each rendered report into dir, creating it if needed.
func WriteFiles(dir string, reports []Rendered) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	for _, r := range reports {
		path := filepath.Join(dir, r.FileName)
		if err := os.WriteFile(path, []byte(r.Text+"\n"), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", r.FileName, err)
		}
	}
	return nil
}
