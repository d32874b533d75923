package pages

import (
	"context"
	"errors"
	"fmt"
)

// Repository defines the read-only contract every page store implements.
type Repository interface {
	// IsAvailable reports whether the repository can currently serve lookups.
	// It must not block for long; implementations that need network round
	// trips should prefer a cached connection state.
	IsAvailable(ctx context.Context) bool

	// GetPage retrieves the page at path, materialized to at least the given
	// capture level.
	// A missing page is reported as found == false with a nil error.
	// Errors are reserved for failures of the underlying store and are never
	// used to signal absence, although callers tolerate errors matching
	// ErrNotFound for stores that cannot tell the difference.
	GetPage(ctx context.Context, path Path, level CaptureLevel) (page *Page, found bool, err error)

	// Describe returns a short, stable, human-readable identity of the
	// repository. It is used for logging and debugging only and never for
	// equality.
	Describe() string
}

// ExistenceChecker is an optional interface that can be implemented by a
// repository that can answer existence queries cheaper than a full lookup.
type ExistenceChecker interface {
	// Exists reports whether a page exists at path.
	Exists(ctx context.Context, path Path) (bool, error)
}

// HealthCheckable is an optional interface that can be implemented by a
// repository.
type HealthCheckable interface {
	// CheckHealth verifies that the repository is reachable and properly
	// configured without modifying it.
	CheckHealth(ctx context.Context) error
}

// Exists reports whether repo has a page at path.
// Repositories implementing ExistenceChecker are asked directly; for all
// others the page is probed at CaptureLevelPage.
func Exists(ctx context.Context, repo Repository, path Path) (bool, error) {
	if checker, ok := repo.(ExistenceChecker); ok {
		return checker.Exists(ctx, path)
	}
	_, found, err := repo.GetPage(ctx, path, CaptureLevelPage)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probing page %s in %s failed: %w", path, repo.Describe(), err)
	}
	return found, nil
}
