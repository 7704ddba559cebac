package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrBadPrice means column A was not a positive decimal.
	ErrBadPrice = errors.New("invalid price")

	// ErrBadColor means column C did not decode to a 6-digit hex color.
	ErrBadColor = errors.New("invalid color")
)

// Kind classifies a ParseError by severity.
type Kind int

const (
	// KindPriceAbort discards every level of the body.
	KindPriceAbort Kind = iota + 1

	// KindRowDefect affects one row; the row is kept with DefaultColor.
	KindRowDefect
)

func (k Kind) String() string {
	switch k {
	case KindPriceAbort:
		return "price_abort"
	case KindRowDefect:
		return "row_defect"
	default:
		return "unknown"
	}
}

// ParseError reports a problem in one row of the feed.
type ParseError struct {
	Row   int    // 1-based line number
	Kind  Kind   // Severity
	Value string // Offending cell
	Err   error  // ErrBadPrice or ErrBadColor, possibly wrapping the decoder error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: %v: %q", e.Row, e.Err, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Aborts reports whether the error discards the whole body.
func (e *ParseError) Aborts() bool {
	return e.Kind == KindPriceAbort
}
