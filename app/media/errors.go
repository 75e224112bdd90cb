package media

import "errors"

var (
	// ErrMediaImport matches every failure returned by Importer.Import
	ErrMediaImport = errors.New("media import failed")

	ErrMissingExtension = errors.New("remote file has no extension")
	ErrEmptyBody        = errors.New("remote file is empty")
	ErrStorage          = errors.New("failed to store media file")
)

// ImportError carries the failing URL and the underlying cause
type ImportError struct {
	URL string
	Err error
}

func (e *ImportError) Error() string {
	return "media import failed for " + e.URL + ": " + e.Err.Error()
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func (e *ImportError) Is(target error) bool {
	return target == ErrMediaImport
}
