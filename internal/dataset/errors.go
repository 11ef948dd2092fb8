package dataset

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when a file name does not end in one of
// the recognised suffixes.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrInvalidPageSize is returned when a page size falls outside
// [MinPageSize, MaxPageSize].
var ErrInvalidPageSize = errors.New("invalid page size")

// errNoColumns mirrors the message dataframe readers give for empty input.
var errNoColumns = errors.New("no columns to parse from file")

// ParseError reports content that does not match its declared format.
type ParseError struct {
	Format Format
	Name   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s file %q: %v", e.Format, e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
