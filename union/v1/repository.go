package v1

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

const Realm = "union"

// UnionRepository combines an ordered list of page repositories.
// The list is fixed at creation time and never changes, so lookups need no
// locking and may run concurrently.
// Instances are obtained from a Registry; two unions over the same ordered
// list obtained from the same Registry are the same instance.
type UnionRepository struct {
	// GoRoutineLimit limits the number of active goroutines for concurrent
	// operations.
	goRoutineLimit int

	mode LookupMode

	// The repositories slice is ordered by priority (highest first).
	// This list is immutable after creation.
	repositories []pages.Repository
}

var (
	_ pages.Repository       = (*UnionRepository)(nil)
	_ pages.ExistenceChecker = (*UnionRepository)(nil)
	_ pages.HealthCheckable  = (*UnionRepository)(nil)
)

func newUnionRepository(repositories []pages.Repository, options Options) *UnionRepository {
	return &UnionRepository{
		goRoutineLimit: options.GoRoutineLimit,
		mode:           options.LookupMode,
		repositories:   repositories,
	}
}

// Repositories returns a copy of the backing repositories in lookup order.
func (u *UnionRepository) Repositories() []pages.Repository {
	return slices.Clone(u.repositories)
}

// LookupMode returns the GetPage contract of this union.
func (u *UnionRepository) LookupMode() LookupMode {
	return u.mode
}

// Equal reports whether both unions combine the same repositories in the
// same order.
func (u *UnionRepository) Equal(other *UnionRepository) bool {
	if u == other {
		return true
	}
	if u == nil || other == nil {
		return false
	}
	return slices.EqualFunc(u.repositories, other.repositories, func(a, b pages.Repository) bool {
		return isComparable(a) && isComparable(b) && a == b
	})
}

// Describe lists the descriptions of all backing repositories in lookup order,
// for example "union(filesystem:/srv/pages, sqlite:pages.db)".
func (u *UnionRepository) Describe() string {
	var sb strings.Builder
	sb.WriteString("union(")
	for i, repo := range u.repositories {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(repo.Describe())
	}
	sb.WriteString(")")
	return sb.String()
}

func (u *UnionRepository) String() string {
	return u.Describe()
}

// IsAvailable reports true when all backing repositories are available.
// It stops at the first unavailable repository.
func (u *UnionRepository) IsAvailable(ctx context.Context) bool {
	for _, repo := range u.repositories {
		if !repo.IsAvailable(ctx) {
			slog.DebugContext(ctx, "repository unavailable", "realm", Realm, "union", u, "repository", repo.Describe())
			return false
		}
	}
	return true
}

// Exists reports whether any backing repository has a page at path.
// Repositories are asked in order until one reports existence. An error from
// any repository aborts the search and is returned; it is never taken as a
// reason to ask the next repository.
func (u *UnionRepository) Exists(ctx context.Context, path pages.Path) (bool, error) {
	for _, repo := range u.repositories {
		ok, err := pages.Exists(ctx, repo, path)
		if err != nil {
			return false, fmt.Errorf("checking existence of page %s in repository %s failed: %w", path, repo.Describe(), err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// GetPage searches all backing repositories in order and returns the first
// page found, following the LookupMode of the union.
func (u *UnionRepository) GetPage(ctx context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	if u.mode == LookupModeExistenceGated {
		return u.getPageExistenceGated(ctx, path, level)
	}
	return u.getPageDirectProbe(ctx, path, level)
}

func (u *UnionRepository) getPageDirectProbe(ctx context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	for _, repo := range u.repositories {
		page, found, err := repo.GetPage(ctx, path, level)
		if errors.Is(err, pages.ErrNotFound) {
			slog.DebugContext(ctx, "page not found in repository", "realm", Realm, "repository", repo.Describe(), "path", path)
			continue // try the next repository
		}
		if err != nil {
			return nil, false, fmt.Errorf("getting page %s from repository %s failed: %w", path, repo.Describe(), err)
		}
		if !found {
			slog.DebugContext(ctx, "page not found in repository", "realm", Realm, "repository", repo.Describe(), "path", path)
			continue
		}
		return page, true, nil
	}
	slog.DebugContext(ctx, "page not found in any repository", "realm", Realm, "union", u, "path", path)
	return nil, false, nil
}

func (u *UnionRepository) getPageExistenceGated(ctx context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	for _, repo := range u.repositories {
		ok, err := pages.Exists(ctx, repo, path)
		if err != nil {
			return nil, false, fmt.Errorf("checking existence of page %s in repository %s failed: %w", path, repo.Describe(), err)
		}
		if !ok {
			continue
		}
		// The repository claimed the page, so its answer is final even when
		// the fetch disagrees with the existence check.
		page, found, err := repo.GetPage(ctx, path, level)
		if err != nil {
			return nil, false, fmt.Errorf("getting page %s from repository %s failed: %w", path, repo.Describe(), err)
		}
		if !found {
			slog.WarnContext(ctx, "repository reported page as existing but did not return it", "realm", Realm, "repository", repo.Describe(), "path", path)
		}
		return page, found, nil
	}
	return nil, false, &pages.PageNotFoundError{Repository: u.Describe(), Path: path}
}

// CheckHealth checks all backing repositories concurrently.
// Repositories implementing pages.HealthCheckable are asked to check
// themselves, all others are checked for availability. All failures are
// returned joined, in lookup order.
func (u *UnionRepository) CheckHealth(ctx context.Context) error {
	errs := make([]error, len(u.repositories))

	var errGroup errgroup.Group
	errGroup.SetLimit(u.goRoutineLimit)
	for i, repo := range u.repositories {
		errGroup.Go(func() error {
			if checkable, ok := repo.(pages.HealthCheckable); ok {
				if err := checkable.CheckHealth(ctx); err != nil {
					errs[i] = fmt.Errorf("repository %s is unhealthy: %w", repo.Describe(), err)
				}
				return nil
			}
			if !repo.IsAvailable(ctx) {
				errs[i] = fmt.Errorf("repository %s is unavailable", repo.Describe())
			}
			return nil
		})
	}
	_ = errGroup.Wait()

	return errors.Join(errs...)
}
