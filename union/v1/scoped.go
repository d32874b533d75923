package v1

import (
	"context"
	"fmt"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

// ScopeResolver returns the backing repositories, in lookup order, of the
// union mounted at path inside scope. path is always canonical.
type ScopeResolver[S comparable] func(ctx context.Context, scope S, path pages.Path) ([]pages.Repository, error)

// ScopedRegistry hands out one ScopedRepository per scope and mount path.
// A scope is any comparable value identifying an externally managed
// lifetime, such as a hosting context. Paths are canonicalized first, so
// "/docs" and "/docs/" are the same mount point.
//
// Each scope has its own lock, so unions of different scopes are created
// independently of each other.
type ScopedRegistry[S comparable] struct {
	registry *Registry
	resolve  ScopeResolver[S]

	scopes Instances[S, *Instances[pages.Path, *ScopedRepository[S]]]
}

// NewScopedRegistry creates a scoped registry that builds the unions it
// mounts through registry, using resolve to find their backing repositories.
func NewScopedRegistry[S comparable](registry *Registry, resolve ScopeResolver[S]) *ScopedRegistry[S] {
	return &ScopedRegistry[S]{
		registry: registry,
		resolve:  resolve,
	}
}

// GetOrCreate returns the union mounted at path inside scope, creating it
// only when it does not exist yet.
func (r *ScopedRegistry[S]) GetOrCreate(ctx context.Context, scope S, path pages.Path) (*ScopedRepository[S], error) {
	if path.IsZero() {
		return nil, fmt.Errorf("mount path is required: %w", pages.ErrInvalidPath)
	}
	path = path.Canonical()

	mounts, _ := r.scopes.GetOrCreate(scope, func() (*Instances[pages.Path, *ScopedRepository[S]], error) {
		return &Instances[pages.Path, *ScopedRepository[S]]{}, nil
	})
	return mounts.GetOrCreate(path, func() (*ScopedRepository[S], error) {
		repositories, err := r.resolve(ctx, scope, path)
		if err != nil {
			return nil, fmt.Errorf("resolving repositories for %v at %s failed: %w", scope, path, err)
		}
		union, err := r.registry.GetOrCreate(ctx, repositories...)
		if err != nil {
			return nil, fmt.Errorf("creating union for %v at %s failed: %w", scope, path, err)
		}
		return newScopedRepository(scope, path, union), nil
	})
}

// ScopedRepository is a union mounted at a path inside a scope.
// Lookups take paths relative to the mount point: with a mount path of
// "/docs", a lookup of "/intro" searches the union for "/docs/intro".
type ScopedRepository[S comparable] struct {
	scope  S
	path   pages.Path
	prefix string
	union  *UnionRepository
}

func newScopedRepository[S comparable](scope S, path pages.Path, union *UnionRepository) *ScopedRepository[S] {
	prefix := path.String()
	if path.IsRoot() {
		prefix = ""
	}
	return &ScopedRepository[S]{
		scope:  scope,
		path:   path,
		prefix: prefix,
		union:  union,
	}
}

// Scope returns the scope the repository belongs to.
func (s *ScopedRepository[S]) Scope() S {
	return s.scope
}

// Path returns the mount path, without trailing slash except for "/".
func (s *ScopedRepository[S]) Path() pages.Path {
	return s.path
}

// Prefix returns the mount path for direct concatenation: the path itself,
// or the empty string for "/".
func (s *ScopedRepository[S]) Prefix() string {
	return s.prefix
}

// Union returns the union the mount point delegates to.
func (s *ScopedRepository[S]) Union() *UnionRepository {
	return s.union
}

func (s *ScopedRepository[S]) Describe() string {
	return "union:" + s.prefix
}

func (s *ScopedRepository[S]) String() string {
	return s.Describe()
}

func (s *ScopedRepository[S]) IsAvailable(ctx context.Context) bool {
	return s.union.IsAvailable(ctx)
}

func (s *ScopedRepository[S]) Exists(ctx context.Context, path pages.Path) (bool, error) {
	full, err := path.WithPrefix(s.prefix)
	if err != nil {
		return false, err
	}
	return s.union.Exists(ctx, full)
}

func (s *ScopedRepository[S]) GetPage(ctx context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	full, err := path.WithPrefix(s.prefix)
	if err != nil {
		return nil, false, err
	}
	return s.union.GetPage(ctx, full, level)
}

func (s *ScopedRepository[S]) CheckHealth(ctx context.Context) error {
	return s.union.CheckHealth(ctx)
}

var (
	_ pages.Repository       = (*ScopedRepository[string])(nil)
	_ pages.ExistenceChecker = (*ScopedRepository[string])(nil)
	_ pages.HealthCheckable  = (*ScopedRepository[string])(nil)
)
