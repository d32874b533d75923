package context

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ao-apps/semanticcms-core-pages-union/cli/internal/unions"
	configv1 "github.com/ao-apps/semanticcms-core-pages-union/configuration/v1"
)

type ctxKey string

const key ctxKey = "github.com/ao-apps/semanticcms-core-pages-union/cli/internal/context"

// Context is the pageunion command line context.
// It holds the structures that are created once per invocation and shared
// by all commands.
type Context struct {
	mu sync.RWMutex

	// configuration is the loaded configuration file. It is nil when no
	// configuration was given.
	configuration *configv1.Config

	// unions resolves the configured unions. It is nil when no
	// configuration was given.
	unions *unions.Resolver
}

// WithConfiguration creates a new context with the given configuration.
func WithConfiguration(ctx context.Context, cfg *configv1.Config) context.Context {
	ctx, clictx := retrieveOrCreateContext(ctx)
	clictx.mu.Lock()
	defer clictx.mu.Unlock()
	clictx.configuration = cfg
	return ctx
}

// WithUnions creates a new context with the given union resolver.
func WithUnions(ctx context.Context, resolver *unions.Resolver) context.Context {
	ctx, clictx := retrieveOrCreateContext(ctx)
	clictx.mu.Lock()
	defer clictx.mu.Unlock()
	clictx.unions = resolver
	return ctx
}

// Register makes sure the context of cmd carries a Context.
func Register(cmd *cobra.Command) {
	ctx, _ := retrieveOrCreateContext(cmd.Context())
	cmd.SetContext(ctx)
}

func (ctx *Context) Configuration() *configv1.Config {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.configuration
}

func (ctx *Context) Unions() *unions.Resolver {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.unions
}

// FromContext retrieves the Context from ctx, or nil if there is none.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(key).(*Context); ok {
		return v
	}
	return nil
}

// WithContext creates a new context carrying c.
func WithContext(ctx context.Context, c *Context) context.Context {
	if c == nil {
		return nil
	}
	return context.WithValue(ctx, key, c)
}

func retrieveOrCreateContext(ctx context.Context) (context.Context, *Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	clictx := FromContext(ctx)
	if clictx == nil {
		clictx = &Context{}
		ctx = WithContext(ctx, clictx)
	}
	return ctx, clictx
}
