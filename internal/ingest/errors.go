package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyInput        = errors.New("empty input: need a header row and at least one data row")
	ErrMissingColumns    = errors.New("missing required columns")
	ErrNoCompletedTrades = errors.New("no completed trades")
	ErrReadFailure       = errors.New("read failure")
)

// MissingColumnsError names the required headers that were absent, in the
// order they are checked.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Is(target error) bool { return target == ErrMissingColumns }

// NoCompletedTradesError carries how many structurally valid rows were still
// open or pending (zero realized P&L).
type NoCompletedTradesError struct {
	Pending int
	Skipped int
}

func (e *NoCompletedTradesError) Error() string {
	return fmt.Sprintf("%s: %d pending rows, %d invalid rows", ErrNoCompletedTrades, e.Pending, e.Skipped)
}

func (e *NoCompletedTradesError) Is(target error) bool { return target == ErrNoCompletedTrades }

// ReadFailure wraps an I/O error raised while obtaining the upload.
func ReadFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrReadFailure, err)
}
