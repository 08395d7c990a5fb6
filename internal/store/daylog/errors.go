package daylog

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is returned when a log file's first two lines are
	// missing or unreadable.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrIO is returned when the log directory or file cannot be read or
	// written.
	ErrIO = errors.New("i/o failure")
)

// HeaderError describes which header line of which file was rejected.
type HeaderError struct {
	Path   string
	Line   int
	Reason string
}

func (e *HeaderError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed header: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed header in %s: line %d: %s", e.Path, e.Line, e.Reason)
}

func (e *HeaderError) Is(target error) bool {
	return target == ErrMalformedHeader
}

// IOError wraps a filesystem failure with the operation and path involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
