// Package builtin registers the repositories shipped with this module.
package builtin

import (
	"context"
	"errors"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	archive "github.com/ao-apps/semanticcms-core-pages-union/repositories/archive/v1"
	filesystem "github.com/ao-apps/semanticcms-core-pages-union/repositories/filesystem/v1"
	inmemory "github.com/ao-apps/semanticcms-core-pages-union/repositories/inmemory/v1"
	natsrepo "github.com/ao-apps/semanticcms-core-pages-union/repositories/nats/v1"
	"github.com/ao-apps/semanticcms-core-pages-union/repositories/provider"
	sqlite "github.com/ao-apps/semanticcms-core-pages-union/repositories/sqlite/v1"
)

// Register registers all built-in repository types with p.
func Register(p *provider.Provider) error {
	return errors.Join(
		provider.Register(p, &inmemory.Spec{}, func(_ context.Context, spec *inmemory.Spec) (pages.Repository, error) {
			return inmemory.NewFromSpec(spec)
		}, inmemory.Type),
		provider.Register(p, &filesystem.Spec{}, func(_ context.Context, spec *filesystem.Spec) (pages.Repository, error) {
			return filesystem.NewFromSpec(spec)
		}, filesystem.Type),
		provider.Register(p, &archive.Spec{}, func(ctx context.Context, spec *archive.Spec) (pages.Repository, error) {
			return archive.NewFromSpec(ctx, spec)
		}, archive.Type),
		provider.Register(p, &sqlite.Spec{}, func(ctx context.Context, spec *sqlite.Spec) (pages.Repository, error) {
			return sqlite.NewFromSpec(ctx, spec)
		}, sqlite.Type),
		provider.Register(p, &natsrepo.Spec{}, func(ctx context.Context, spec *natsrepo.Spec) (pages.Repository, error) {
			return natsrepo.Connect(ctx, spec)
		}, natsrepo.Type),
	)
}

// NewProvider creates a provider with all built-in repository types
// registered.
func NewProvider(opts ...provider.Option) (*provider.Provider, error) {
	p := provider.New(opts...)
	if err := Register(p); err != nil {
		return nil, err
	}
	return p, nil
}
