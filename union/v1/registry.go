package v1

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

var (
	// ErrNoRepositories is returned when a union is requested without any
	// backing repository.
	ErrNoRepositories = errors.New("at least one repository required")
	// ErrIncomparableRepository is returned when a backing repository cannot
	// be compared with ==, which is required to use it in a registry key.
	ErrIncomparableRepository = errors.New("repository is not comparable")
	// ErrNilRepository is returned when a nil repository is part of the list.
	ErrNilRepository = errors.New("repository is nil")
)

// Registry hands out one UnionRepository per distinct ordered list of
// backing repositories.
// Two lists are the same key when they have the same length and their
// elements are equal (==) position by position. Lists that only differ in
// order are different keys.
//
// A Registry is meant to be created once per application and passed to
// whoever needs unions. All unions created by a registry share its options.
type Registry struct {
	options Options

	// ids assigns every distinct repository a stable number so that an
	// ordered list of repositories can be turned into a comparable key.
	idsMu sync.Mutex
	ids   map[pages.Repository]uint64

	unions Instances[string, *UnionRepository]
}

// NewRegistry creates an empty registry. The options apply to every union
// the registry creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		options: newOptions(opts),
		ids:     make(map[pages.Repository]uint64),
	}
}

// GetOrCreate returns the union of the given repositories, in the given order,
// creating it only when no union for that list exists yet.
// The argument slice is copied.
func (r *Registry) GetOrCreate(ctx context.Context, repositories ...pages.Repository) (*UnionRepository, error) {
	return r.getOrCreate(ctx, slices.Clone(repositories))
}

// GetOrCreateFromSeq is like GetOrCreate but reads the repositories from
// seq. The sequence is iterated exactly once.
func (r *Registry) GetOrCreateFromSeq(ctx context.Context, seq iter.Seq[pages.Repository]) (*UnionRepository, error) {
	return r.getOrCreate(ctx, slices.Collect(seq))
}

// Len returns the number of unions created so far.
func (r *Registry) Len() int {
	return r.unions.Len()
}

func (r *Registry) getOrCreate(ctx context.Context, repositories []pages.Repository) (*UnionRepository, error) {
	if len(repositories) == 0 {
		return nil, ErrNoRepositories
	}
	key, err := r.key(repositories)
	if err != nil {
		return nil, err
	}
	return r.unions.GetOrCreate(key, func() (*UnionRepository, error) {
		union := newUnionRepository(repositories, r.options)
		slog.DebugContext(ctx, "created union repository", "realm", Realm, "union", union, "mode", r.options.LookupMode)
		return union, nil
	})
}

func (r *Registry) key(repositories []pages.Repository) (string, error) {
	for i, repo := range repositories {
		if repo == nil {
			return "", fmt.Errorf("repository at index %d: %w", i, ErrNilRepository)
		}
		if !isComparable(repo) {
			return "", fmt.Errorf("repository at index %d of type %T: %w", i, repo, ErrIncomparableRepository)
		}
	}

	r.idsMu.Lock()
	defer r.idsMu.Unlock()

	var sb strings.Builder
	for i, repo := range repositories {
		id, ok := r.ids[repo]
		if !ok {
			id = uint64(len(r.ids))
			r.ids[repo] = id
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(id, 10))
	}
	return sb.String(), nil
}

// isComparable reports whether repo can be compared with == without
// panicking. The dynamic value is checked, so interface fields holding
// slices or maps are caught as well.
func isComparable(repo pages.Repository) bool {
	return reflect.ValueOf(repo).Comparable()
}
