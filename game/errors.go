package game

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is matched by every *InvalidSizeError.
var ErrInvalidSize = errors.New("invalid board size")

// SizeReason says why a board size was rejected.
type SizeReason uint8

const (
	SizeTooSmall SizeReason = iota + 1
	SizeFractional
	SizeTooLarge
)

// InvalidSizeError is returned by New when the requested rows or columns
// cannot form a board.
type InvalidSizeError struct {
	Rows    float64
	Columns float64
	Reason  SizeReason
}

func (e *InvalidSizeError) Error() string {
	switch e.Reason {
	case SizeTooLarge:
		return fmt.Sprintf("%v: rows and columns must be %d or less (rows=%v columns=%v)", ErrInvalidSize, MaxSize, e.Rows, e.Columns)
	case SizeFractional:
		return fmt.Sprintf("%v: fractional sizes for rows and columns are not allowed (rows=%v columns=%v)", ErrInvalidSize, e.Rows, e.Columns)
	default:
		return fmt.Sprintf("%v: rows and columns must be %d or greater (rows=%v columns=%v)", ErrInvalidSize, MinSize, e.Rows, e.Columns)
	}
}

func (e *InvalidSizeError) Unwrap() error { return ErrInvalidSize }
