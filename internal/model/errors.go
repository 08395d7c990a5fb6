package model

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when an ordinal does not name an item.
var ErrOutOfRange = errors.New("index out of range")

// RangeError reports which ordinal was rejected and how many items there were.
type RangeError struct {
	Index int
	Size  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("index out of range: have %d, got %d", e.Size, e.Index)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
