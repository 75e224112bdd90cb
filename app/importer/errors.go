package importer

import (
	"errors"
	"fmt"
)

var (
	ErrLockActive = errors.New("cannot start a new import process, timeout not expired yet")
	ErrNoSources  = errors.New("no feeds found")

	// ErrEntryValidation matches entries skipped before any article was written
	ErrEntryValidation = errors.New("entry validation failed")

	ErrMissingTitle  = errors.New("entry has no title")
	ErrEmptySlug     = errors.New("entry title produces an empty slug")
	ErrDuplicateSlug = errors.New("an article with the same slug already exists")
)

type EntryError struct {
	Title string
	Err   error
}

func (e *EntryError) Error() string {
	if e.Title == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.Title)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

func (e *EntryError) Is(target error) bool {
	return target == ErrEntryValidation
}

func entryError(title string, err error) error {
	return &EntryError{Title: title, Err: err}
}
