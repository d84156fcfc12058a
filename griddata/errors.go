package griddata

import (
	"errors"
	"fmt"
)

// errNoUsableData is returned by a method that found nothing to reduce. The
// engine recovers from it by trying the backup method and then the default
// value, so it never reaches callers.
var errNoUsableData = errors.New("no usable data")

// LookupTableError reports a malformed lookup table row.
type LookupTableError struct {
	Name   string
	Line   int
	Reason string
	Err    error
}

func (e *LookupTableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: %s: %v", e.Name, e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Reason)
}

func (e *LookupTableError) Unwrap() error {
	return e.Err
}

// ConfigError reports a combination of settings the engine cannot run with.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// SizeMismatchError is returned when per point slices differ in length.
type SizeMismatchError struct {
	What      string
	Got, Want int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: %d %s for %d points", e.Got, e.What, e.Want)
}
