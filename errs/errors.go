// Package errs defines the sentinel errors shared across the traildb encoder.
//
// Call sites wrap these with fmt.Errorf("%w: ...") so callers can match with
// errors.Is while still seeing the failing detail.
package errs

import "errors"

var (
	// ErrTooManyInvalidDeltas indicates that the ratio of events whose
	// timestamp delta exceeded the 24-bit budget crossed MaxInvalidRatio
	// during grouping. The input is considered corrupt.
	ErrTooManyInvalidDeltas = errors.New("too many invalid timestamp deltas")

	// ErrTrailsTooLarge indicates the trails file offset reached the 32-bit
	// TOC limit. The format caps trails.data at 4GB.
	ErrTrailsTooLarge = errors.New("trails file exceeds 32-bit offset limit")

	// ErrCodebookEmpty indicates codebook construction received no gram
	// frequencies.
	ErrCodebookEmpty = errors.New("cannot build codebook from empty frequencies")

	// ErrCodeLengthOverflow indicates canonical code assignment could not fit
	// every symbol within the maximum code length.
	ErrCodeLengthOverflow = errors.New("huffman code length exceeds limit")

	// ErrInvalidCodebook indicates a serialized codebook failed validation.
	ErrInvalidCodebook = errors.New("invalid codebook data")

	// ErrInvalidTOC indicates a trails file TOC failed validation.
	ErrInvalidTOC = errors.New("invalid trails TOC")

	// ErrInvalidInfo indicates an info line failed to parse.
	ErrInvalidInfo = errors.New("invalid info line")

	// ErrInvalidRecord indicates a spill stream yielded a truncated or
	// malformed grouped record.
	ErrInvalidRecord = errors.New("invalid grouped record")

	// ErrNoEvents indicates an encode was attempted with no events.
	ErrNoEvents = errors.New("no events to encode")

	// ErrFieldOverflow indicates a field id outside the 8-bit item budget.
	ErrFieldOverflow = errors.New("field id exceeds item field budget")

	// ErrValueOverflow indicates a value id outside the 24-bit item budget.
	ErrValueOverflow = errors.New("value id exceeds item value budget")

	// ErrCookieCollision indicates two distinct cookie keys hashed to the
	// same 64-bit identity.
	ErrCookieCollision = errors.New("cookie hash collision")

	// ErrInvalidCookie indicates an empty cookie key.
	ErrInvalidCookie = errors.New("invalid cookie key")

	// ErrBuilderFinished indicates use of a builder after Finish.
	ErrBuilderFinished = errors.New("builder already finished")
)
