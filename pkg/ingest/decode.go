package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// rawRecord holds one source object with fields still undecoded, so missing
// keys can be told apart from zero values.
type rawRecord map[string]json.RawMessage

// intField extracts an integer-like field: a JSON number or a quoted string
// holding an integer.
func (r rawRecord) intField(key string) (int, error) {
	raw, ok := r[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrField, key)
	}
	s := strings.Trim(string(raw), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer: %s", ErrField, key, raw)
	}
	return n, nil
}

func (r rawRecord) strField(key string) (string, error) {
	raw, ok := r[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrField, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %q is not a string: %s", ErrField, key, raw)
	}
	return s, nil
}

// DecodeRooms eagerly decodes the rooms document, preserving source order.
// The room dataset is assumed small enough to materialize fully.
func DecodeRooms(r io.Reader) ([]Room, error) {
	var raws []rawRecord
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: rooms: %w", ErrDecode, err)
	}

	rooms := make([]Room, 0, len(raws))
	for i, rec := range raws {
		room, err := decodeRoom(rec)
		if err != nil {
			return nil, fmt.Errorf("rooms record %d: %w", i, err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func decodeRoom(rec rawRecord) (Room, error) {
	id, err := rec.intField("id")
	if err != nil {
		return Room{}, err
	}
	name, err := rec.strField("name")
	if err != nil {
		return Room{}, err
	}
	if name == "" {
		return Room{}, fmt.Errorf("%w: empty \"name\"", ErrField)
	}
	return Room{ID: id, Name: name}, nil
}

// BatchIterator lazily decodes the students document into batches of at most
// batchSize records, in source order. It is single-pass: consuming it fully
// exhausts the source. Memory use is bounded by the batch size, not by the
// total record count, because records are pulled off the underlying decoder
// one at a time.
type BatchIterator struct {
	dec       *json.Decoder
	batchSize int
	pos       int // absolute record position, for error context
	batch     []Student
	err       error
	started   bool
	done      bool
}

// NewBatchIterator creates a batch iterator over a students document.
// A batchSize of zero or less selects DefaultBatchSize.
func NewBatchIterator(r io.Reader, batchSize int) *BatchIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchIterator{
		dec:       json.NewDecoder(r),
		batchSize: batchSize,
	}
}

// Next decodes the next batch. Returns false when the source is exhausted or
// an error occurred; check Err afterwards.
func (it *BatchIterator) Next() bool {
	if it.err != nil || it.done {
		return false
	}

	if !it.started {
		if err := it.expectDelim('['); err != nil {
			it.err = err
			return false
		}
		it.started = true
	}

	it.batch = make([]Student, 0, it.batchSize)
	for len(it.batch) < it.batchSize && it.dec.More() {
		var rec rawRecord
		if err := it.dec.Decode(&rec); err != nil {
			it.err = fmt.Errorf("%w: students record %d: %w", ErrDecode, it.pos, err)
			return false
		}
		student, err := decodeStudent(rec)
		if err != nil {
			it.err = fmt.Errorf("students record %d: %w", it.pos, err)
			return false
		}
		it.batch = append(it.batch, student)
		it.pos++
	}

	if !it.dec.More() {
		if err := it.expectDelim(']'); err != nil {
			it.err = err
			return false
		}
		it.done = true
	}

	return len(it.batch) > 0
}

// Batch returns the batch decoded by the last successful Next call.
func (it *BatchIterator) Batch() []Student {
	return it.batch
}

// Err returns the first error encountered during iteration.
func (it *BatchIterator) Err() error {
	return it.err
}

func (it *BatchIterator) expectDelim(d json.Delim) error {
	tok, err := it.dec.Token()
	if err != nil {
		return fmt.Errorf("%w: students: %w", ErrDecode, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != d {
		return fmt.Errorf("%w: students: expected %q, got %v", ErrDecode, d.String(), tok)
	}
	return nil
}

func decodeStudent(rec rawRecord) (Student, error) {
	id, err := rec.intField("id")
	if err != nil {
		return Student{}, err
	}
	name, err := rec.strField("name")
	if err != nil {
		return Student{}, err
	}
	if name == "" {
		return Student{}, fmt.Errorf("%w: empty \"name\"", ErrField)
	}
	birthday, err := rec.strField("birthday")
	if err != nil {
		return Student{}, err
	}
	date, err := parseBirthday(birthday)
	if err != nil {
		return Student{}, err
	}
	sex, err := rec.strField("sex")
	if err != nil {
		return Student{}, err
	}
	sex = strings.ToUpper(sex)
	if sex != "M" && sex != "F" {
		return Student{}, fmt.Errorf("%w: \"sex\" must be M or F, got %q", ErrField, sex)
	}
	roomID, err := rec.intField("room")
	if err != nil {
		return Student{}, err
	}

	return Student{
		ID:       id,
		Name:     name,
		Birthday: date,
		Sex:      sex,
		RoomID:   roomID,
	}, nil
}

// parseBirthday takes the date-only prefix of an ISO-8601 value, discarding
// any time-of-day after the first time separator.
func parseBirthday(v string) (time.Time, error) {
	datePart, _, _ := strings.Cut(v, "T")
	t, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: \"birthday\" %q is not a date: %v", ErrField, v, err)
	}
	return t, nil
}
