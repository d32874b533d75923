// Package v1 records Prometheus metrics for the lookups of a page
// repository.
package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

const (
	OperationGetPage = "get_page"
	OperationExists  = "exists"

	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Repository forwards every call to the wrapped repository and records
// its outcome.
type Repository struct {
	base  pages.Repository
	label string
}

var (
	_ pages.Repository       = (*Repository)(nil)
	_ pages.ExistenceChecker = (*Repository)(nil)
	_ pages.HealthCheckable  = (*Repository)(nil)
)

// New wraps base. Metrics are labeled with the description of base.
func New(base pages.Repository) *Repository {
	return &Repository{base: base, label: base.Describe()}
}

// Base returns the wrapped repository.
func (r *Repository) Base() pages.Repository {
	return r.base
}

func (r *Repository) Describe() string {
	return r.base.Describe()
}

func (r *Repository) String() string {
	return r.Describe()
}

func (r *Repository) IsAvailable(ctx context.Context) bool {
	ok := r.base.IsAvailable(ctx)
	if ok {
		available.WithLabelValues(r.label).Set(1)
	} else {
		available.WithLabelValues(r.label).Set(0)
	}
	return ok
}

func (r *Repository) CheckHealth(ctx context.Context) error {
	if checkable, ok := r.base.(pages.HealthCheckable); ok {
		err := checkable.CheckHealth(ctx)
		if err != nil {
			available.WithLabelValues(r.label).Set(0)
		} else {
			available.WithLabelValues(r.label).Set(1)
		}
		return err
	}
	if !r.IsAvailable(ctx) {
		return fmt.Errorf("repository %s is unavailable", r.base.Describe())
	}
	return nil
}

func (r *Repository) Exists(ctx context.Context, path pages.Path) (bool, error) {
	defer r.observe(OperationExists, time.Now())
	ok, err := pages.Exists(ctx, r.base, path)
	r.count(OperationExists, ok, err)
	return ok, err
}

func (r *Repository) GetPage(ctx context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	defer r.observe(OperationGetPage, time.Now())
	page, found, err := r.base.GetPage(ctx, path, level)
	r.count(OperationGetPage, found, err)
	return page, found, err
}

func (r *Repository) observe(operation string, start time.Time) {
	lookupDuration.WithLabelValues(r.label, operation).Observe(time.Since(start).Seconds())
}

func (r *Repository) count(operation string, found bool, err error) {
	result := ResultNotFound
	switch {
	case err != nil:
		result = ResultError
	case found:
		result = ResultFound
	}
	lookupTotal.WithLabelValues(r.label, operation, result).Inc()
}
