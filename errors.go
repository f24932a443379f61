package trendify

import (
	"errors"
	"fmt"
)

var (
	// ErrNoIndex is returned when a query runs before an index has been
	// built or loaded.
	ErrNoIndex = errors.New("no index: run BuildIndex or LoadIndex first")

	// ErrNoOrigins is returned when ProcessOrigins is called with no
	// paths.
	ErrNoOrigins = errors.New("no origin paths given")
)

// ErrUnknownRecordID indicates a record id the index does not know.
type ErrUnknownRecordID struct {
	ID string
}

func (e *ErrUnknownRecordID) Error() string {
	return fmt.Sprintf("unknown record id %q", e.ID)
}

// ErrRecordOutOfRange indicates an index entry pointing past the end of
// its backing document, a sign the document changed after the last
// index build.
type ErrRecordOutOfRange struct {
	ID       string
	File     string
	Position int
	Len      int
}

func (e *ErrRecordOutOfRange) Error() string {
	return fmt.Sprintf("record %q: position %d out of range in %s (len %d); rebuild the index",
		e.ID, e.Position, e.File, e.Len)
}
