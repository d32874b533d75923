// Package provider turns typed repository specifications into page
// repositories.
//
// Constructors are registered per specification type. A provider builds at
// most one repository per distinct specification: two specifications that
// only differ in key order or formatting yield the same repository
// instance, so unions built from them are the same union as well.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	filtered "github.com/ao-apps/semanticcms-core-pages-union/repositories/filtered/v1"
	instrumented "github.com/ao-apps/semanticcms-core-pages-union/repositories/instrumented/v1"
	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
	union "github.com/ao-apps/semanticcms-core-pages-union/union/v1"
)

const Realm = "repositories/provider"

// Constructor creates a repository from a decoded specification.
type Constructor func(ctx context.Context, spec runtime.Typed) (pages.Repository, error)

// common holds the fields every repository specification may carry in
// addition to its type specific ones.
type common struct {
	// Include restricts the repository to the paths matching these globs.
	Include []string `json:"include,omitempty"`
	// Instrument records lookup metrics for the repository.
	Instrument bool `json:"instrument,omitempty"`
}

// Provider holds the registered constructors and all repositories built so
// far.
type Provider struct {
	scheme *runtime.Scheme

	mu           sync.RWMutex
	constructors map[runtime.Type]Constructor
	closers      []io.Closer

	repositories union.Instances[string, pages.Repository]

	// instrumentAll wraps every repository in an instrumented.Repository.
	instrumentAll bool
}

type Option func(*Provider)

// WithInstrumentation records lookup metrics for every repository, not
// only for those whose specification asks for it.
func WithInstrumentation() Option {
	return func(p *Provider) {
		p.instrumentAll = true
	}
}

// New creates a provider without any constructors.
func New(opts ...Option) *Provider {
	p := &Provider{
		scheme:       runtime.NewScheme(),
		constructors: make(map[runtime.Type]Constructor),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register makes constructor responsible for specifications of the given
// types, decoded into prototype.
func Register[T runtime.Typed](p *Provider, prototype T, constructor func(ctx context.Context, spec T) (pages.Repository, error), types ...runtime.Type) error {
	if len(types) == 0 {
		return fmt.Errorf("no type given for prototype %T", prototype)
	}
	for _, typ := range types {
		if !typ.HasVersion() {
			return fmt.Errorf("type %q of prototype %T must be versioned", typ, prototype)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.scheme.Register(prototype, types...); err != nil {
		return fmt.Errorf("failed to register prototype %T: %w", prototype, err)
	}
	for _, typ := range types {
		p.constructors[typ] = func(ctx context.Context, spec runtime.Typed) (pages.Repository, error) {
			typed, ok := spec.(T)
			if !ok {
				return nil, fmt.Errorf("expected %T for type %s, got %T", prototype, typ, spec)
			}
			return constructor(ctx, typed)
		}
	}
	return nil
}

// Types lists the registered specification types, sorted.
func (p *Provider) Types() []runtime.Type {
	p.mu.RLock()
	defer p.mu.RUnlock()
	types := make([]runtime.Type, 0, len(p.constructors))
	for typ := range p.constructors {
		types = append(types, typ)
	}
	slices.SortFunc(types, func(a, b runtime.Type) int {
		return strings.Compare(a.String(), b.String())
	})
	return types
}

// GetRepository returns the repository described by spec, constructing it
// on first use.
func (p *Provider) GetRepository(ctx context.Context, spec *runtime.Raw) (pages.Repository, error) {
	if spec == nil {
		return nil, fmt.Errorf("repository specification is required")
	}
	if typ := spec.GetType(); !p.scheme.IsRegistered(typ) {
		return nil, fmt.Errorf("no repository registered for type %q, known types are %v", typ, p.Types())
	}
	return p.repositories.GetOrCreate(spec.String(), func() (pages.Repository, error) {
		return p.construct(ctx, spec)
	})
}

// GetRepositories returns the repositories described by specs, in order.
func (p *Provider) GetRepositories(ctx context.Context, specs []*runtime.Raw) ([]pages.Repository, error) {
	repos := make([]pages.Repository, 0, len(specs))
	for i, spec := range specs {
		repo, err := p.GetRepository(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("repository %d: %w", i, err)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

func (p *Provider) construct(ctx context.Context, spec *runtime.Raw) (pages.Repository, error) {
	typ := spec.GetType()
	p.mu.RLock()
	constructor, ok := p.constructors[typ]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no repository registered for type %q", typ)
	}

	typed, err := p.scheme.Decode(spec)
	if err != nil {
		return nil, err
	}
	var opts common
	if err := json.Unmarshal(spec.Data, &opts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal common options of %s: %w", typ, err)
	}

	repo, err := constructor(ctx, typed)
	if err != nil {
		return nil, fmt.Errorf("constructing repository of type %s failed: %w", typ, err)
	}
	if closer, ok := repo.(io.Closer); ok {
		p.mu.Lock()
		p.closers = append(p.closers, closer)
		p.mu.Unlock()
	}

	if opts.Instrument || p.instrumentAll {
		repo = instrumented.New(repo)
	}
	if len(opts.Include) > 0 {
		if repo, err = filtered.New(repo, opts.Include...); err != nil {
			return nil, err
		}
	}
	slog.DebugContext(ctx, "constructed repository", "realm", Realm, "type", typ, "repository", repo.Describe())
	return repo, nil
}

// Close closes every constructed repository that holds resources.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs error
	for _, closer := range p.closers {
		errs = errors.Join(errs, closer.Close())
	}
	p.closers = nil
	return errs
}
