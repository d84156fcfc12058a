package raster

import "fmt"

// OpenError is returned when a raster cannot be opened or has unusable
// metadata.
type OpenError struct {
	Name   string
	Reason string
	Err    error
}

func (e *OpenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to open raster %s: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to open raster %s: %s", e.Name, e.Reason)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// NotOpenError is returned when pixel data is requested from a raster that
// has not been opened.
type NotOpenError struct {
	Name string
	Op   string
}

func (e *NotOpenError) Error() string {
	return fmt.Sprintf("%s: raster %s is not open", e.Op, e.Name)
}
