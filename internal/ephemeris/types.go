package ephemeris

import (
	"errors"
	"fmt"

	"github.com/star/gravsim/internal/transform"
)

// Record is one body as read from an ephemeris file: a name, a mass and two
// observations one hour apart with angles already converted to radians.
type Record struct {
	Name   string
	Mass   float64 // 10^24 kg
	First  transform.Observation
	Second transform.Observation
}

// ErrTruncated reports an ephemeris that ends in the middle of a record.
var ErrTruncated = errors.New("truncated record")

// ParseError reports a malformed ephemeris line. Line is 1-based.
type ParseError struct {
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: field %s: %v", e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
