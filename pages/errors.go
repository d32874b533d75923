package pages

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested page does not exist.
// It is independent of the underlying repository implementation and is meant
// to be joined with or wrapped around technology-specific errors, so that
// callers can check for absence with errors.Is.
var ErrNotFound = errors.New("page not found")

// PageNotFoundError is returned by lookups that report absence as an error.
// It names the repository that was searched and the path that was requested.
type PageNotFoundError struct {
	Repository string
	Path       Path
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page %s not found in %s", e.Path, e.Repository)
}

// Is makes errors.Is(err, ErrNotFound) hold for every PageNotFoundError.
func (e *PageNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
