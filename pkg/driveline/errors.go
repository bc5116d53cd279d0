package driveline

import (
	"errors"
	"fmt"
)

var (
	ErrParse          = errors.New("driveline syntax error")
	ErrEmptyDriveline = errors.New("driveline has no points")
)

// ParseError reports a data line that is neither "x,y" nor "x,y,z".
type ParseError struct {
	Name string
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.Name, e.Line, ErrParse, e.Text)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}
