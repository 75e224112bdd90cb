package source

import "errors"

var (
	ErrInvalidURL       = errors.New("the url is not valid")
	ErrDuplicateURL     = errors.New("another feed with the same url has already been registered")
	ErrFeedNotFound     = errors.New("the specified feed was not found")
	ErrCategoryNotFound = errors.New("the specified category was not found")
)
