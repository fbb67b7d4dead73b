package ingest

import "errors"

var (
	// ErrDecode indicates the source document is not well-formed JSON.
	ErrDecode = errors.New("malformed input document")
	// ErrField indicates a required field is absent or not convertible to
	// its target type.
	ErrField = errors.New("invalid record field")
)
