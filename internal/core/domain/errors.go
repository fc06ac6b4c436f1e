package domain

import "fmt"

// ReadError wraps a transport or decoding failure for a single entity.
// It never escalates past the cycle: the entity gets an EventReadFailed
// and the cycle moves on.
type ReadError struct {
	Entity Entity
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s (%s): %v", e.Entity.Alias, e.Entity.Key(), e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
