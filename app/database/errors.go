package database

import (
	"errors"
	"fmt"
)

// ErrPersistence matches any PersistenceError via errors.Is
var ErrPersistence = errors.New("persistence error")

// ErrDuplicate is returned when an insert hits a unique constraint
var ErrDuplicate = errors.New("duplicate record")

// PersistenceError reports a failed create, update or delete against the store
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
