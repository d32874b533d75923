// Package unions builds the unions named in a configuration.
package unions

import (
	"context"
	"fmt"

	configv1 "github.com/ao-apps/semanticcms-core-pages-union/configuration/v1"
	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	"github.com/ao-apps/semanticcms-core-pages-union/repositories/provider"
	union "github.com/ao-apps/semanticcms-core-pages-union/union/v1"
)

// Resolver hands out the configured unions by name. Unions and their
// backing repositories are created on first use and shared afterwards.
type Resolver struct {
	config   *configv1.Config
	provider *provider.Provider

	// one registry per lookup mode, since the mode is fixed per registry
	registries map[union.LookupMode]*union.Registry
	mounts     map[union.LookupMode]*union.ScopedRegistry[string]
}

// New creates a resolver for the unions in cfg whose repositories are built
// by p. opts apply to every union.
func New(cfg *configv1.Config, p *provider.Provider, opts ...union.Option) *Resolver {
	r := &Resolver{
		config:     cfg,
		provider:   p,
		registries: make(map[union.LookupMode]*union.Registry),
		mounts:     make(map[union.LookupMode]*union.ScopedRegistry[string]),
	}
	for _, mode := range []union.LookupMode{union.LookupModeDirectProbe, union.LookupModeExistenceGated} {
		registry := union.NewRegistry(append(opts, union.WithLookupMode(mode))...)
		r.registries[mode] = registry
		r.mounts[mode] = union.NewScopedRegistry(registry, r.resolve)
	}
	return r
}

// Names returns the configured union names in configuration order.
func (r *Resolver) Names() []string {
	return r.config.Names()
}

// Default returns the name of the first configured union.
func (r *Resolver) Default() (string, error) {
	names := r.Names()
	if len(names) == 0 {
		return "", fmt.Errorf("no unions configured")
	}
	return names[0], nil
}

// Union returns the union configured under name.
func (r *Resolver) Union(ctx context.Context, name string) (*union.UnionRepository, error) {
	mode, err := r.mode(name)
	if err != nil {
		return nil, err
	}
	repos, err := r.resolve(ctx, name, pages.Root)
	if err != nil {
		return nil, err
	}
	return r.registries[mode].GetOrCreate(ctx, repos...)
}

// Mount returns the union configured under name mounted at path: lookups
// through it take paths relative to path.
func (r *Resolver) Mount(ctx context.Context, name string, path pages.Path) (*union.ScopedRepository[string], error) {
	mode, err := r.mode(name)
	if err != nil {
		return nil, err
	}
	return r.mounts[mode].GetOrCreate(ctx, name, path)
}

// Close releases all repositories built so far.
func (r *Resolver) Close() error {
	return r.provider.Close()
}

func (r *Resolver) mode(name string) (union.LookupMode, error) {
	cfg, err := r.config.Union(name)
	if err != nil {
		return 0, err
	}
	mode, err := union.ParseLookupMode(cfg.Mode)
	if err != nil {
		return 0, fmt.Errorf("union %q: %w", name, err)
	}
	return mode, nil
}

// resolve builds the backing repositories of the union name. The mount path
// does not change which repositories back a union.
func (r *Resolver) resolve(ctx context.Context, name string, _ pages.Path) ([]pages.Repository, error) {
	cfg, err := r.config.Union(name)
	if err != nil {
		return nil, err
	}
	repos, err := r.provider.GetRepositories(ctx, cfg.Repositories)
	if err != nil {
		return nil, fmt.Errorf("union %q: %w", name, err)
	}
	return repos, nil
}
