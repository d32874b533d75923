// Package v1 restricts a page repository to the paths matching a set of
// glob patterns.
//
// Patterns use "/" as separator: "*" matches within one path segment and
// "**" across segments, so "/docs/**" matches every page below "/docs" and
// "/docs/*" only its direct children. Paths outside the patterns are
// reported as not found without asking the wrapped repository.
package v1

import (
	"context"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

const separator = '/'

// Repository wraps another repository and hides the pages outside its
// include patterns.
type Repository struct {
	base     pages.Repository
	patterns []string
	globs    []glob.Glob
}

var (
	_ pages.Repository       = (*Repository)(nil)
	_ pages.ExistenceChecker = (*Repository)(nil)
	_ pages.HealthCheckable  = (*Repository)(nil)
)

// New wraps base so that only paths matching at least one of include are
// visible. At least one pattern is required.
func New(base pages.Repository, include ...string) (*Repository, error) {
	if len(include) == 0 {
		return nil, fmt.Errorf("at least one include pattern required")
	}
	globs := make([]glob.Glob, 0, len(include))
	for _, pattern := range include {
		if !strings.HasPrefix(pattern, "/") {
			return nil, fmt.Errorf("include pattern %q must start with a slash", pattern)
		}
		g, err := glob.Compile(pattern, separator)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return &Repository{base: base, patterns: include, globs: globs}, nil
}

// Matches reports whether path is visible through the repository.
func (r *Repository) Matches(path pages.Path) bool {
	s := path.Canonical().String()
	for _, g := range r.globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// Base returns the wrapped repository.
func (r *Repository) Base() pages.Repository {
	return r.base
}

func (r *Repository) Describe() string {
	return fmt.Sprintf("%s[%s]", r.base.Describe(), strings.Join(r.patterns, ","))
}

func (r *Repository) String() string {
	return r.Describe()
}

func (r *Repository) IsAvailable(ctx context.Context) bool {
	return r.base.IsAvailable(ctx)
}

func (r *Repository) CheckHealth(ctx context.Context) error {
	if checkable, ok := r.base.(pages.HealthCheckable); ok {
		return checkable.CheckHealth(ctx)
	}
	if !r.base.IsAvailable(ctx) {
		return fmt.Errorf("repository %s is unavailable", r.base.Describe())
	}
	return nil
}

func (r *Repository) Exists(ctx context.Context, path pages.Path) (bool, error) {
	if !r.Matches(path) {
		return false, nil
	}
	return pages.Exists(ctx, r.base, path)
}

func (r *Repository) GetPage(ctx context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	if !r.Matches(path) {
		return nil, false, nil
	}
	return r.base.GetPage(ctx, path, level)
}
