package provider_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	"github.com/ao-apps/semanticcms-core-pages-union/repositories/builtin"
	filtered "github.com/ao-apps/semanticcms-core-pages-union/repositories/filtered/v1"
	inmemory "github.com/ao-apps/semanticcms-core-pages-union/repositories/inmemory/v1"
	instrumented "github.com/ao-apps/semanticcms-core-pages-union/repositories/instrumented/v1"
	"github.com/ao-apps/semanticcms-core-pages-union/repositories/provider"
	sqlite "github.com/ao-apps/semanticcms-core-pages-union/repositories/sqlite/v1"
	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
	union "github.com/ao-apps/semanticcms-core-pages-union/union/v1"
)

func raw(t *testing.T, doc string) *runtime.Raw {
	t.Helper()
	r := &runtime.Raw{}
	require.NoError(t, yaml.Unmarshal([]byte(doc), r))
	return r
}

func TestGetRepository(t *testing.T) {
	ctx := t.Context()
	p, err := builtin.NewProvider()
	require.NoError(t, err)

	a := raw(t, "type: inmemory/v1\nname: fixtures\npages: [{path: /a, title: A}]\n")
	b := raw(t, "pages: [{title: A, path: /a}]\nname: fixtures\ntype: inmemory/v1\n")

	repoA, err := p.GetRepository(ctx, a)
	require.NoError(t, err)
	repoB, err := p.GetRepository(ctx, b)
	require.NoError(t, err)
	assert.Same(t, repoA, repoB, "equal specifications yield the same repository")
	assert.IsType(t, &inmemory.Repository{}, repoA)

	registry := union.NewRegistry()
	u1, err := registry.GetOrCreate(ctx, repoA)
	require.NoError(t, err)
	u2, err := registry.GetOrCreate(ctx, repoB)
	require.NoError(t, err)
	assert.Same(t, u1, u2)

	page, found, err := u1.GetPage(ctx, pages.MustParsePath("/a"), pages.CaptureLevelMeta)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "A", page.Title)
}

func TestCommonOptions(t *testing.T) {
	ctx := t.Context()
	p, err := builtin.NewProvider()
	require.NoError(t, err)

	repo, err := p.GetRepository(ctx, raw(t, "type: inmemory/v1\nname: wrapped\ninclude: [/docs/**]\ninstrument: true\n"))
	require.NoError(t, err)
	filter, ok := repo.(*filtered.Repository)
	require.True(t, ok)
	assert.IsType(t, &instrumented.Repository{}, filter.Base())
	assert.Equal(t, "inmemory:wrapped[/docs/**]", repo.Describe())

	_, err = p.GetRepository(ctx, raw(t, "type: inmemory/v1\ninclude: [relative]\n"))
	assert.Error(t, err)

	all, err := builtin.NewProvider(provider.WithInstrumentation())
	require.NoError(t, err)
	repo, err = all.GetRepository(ctx, raw(t, "type: inmemory/v1\n"))
	require.NoError(t, err)
	assert.IsType(t, &instrumented.Repository{}, repo)
}

func TestErrors(t *testing.T) {
	ctx := t.Context()
	p, err := builtin.NewProvider()
	require.NoError(t, err)

	_, err = p.GetRepository(ctx, nil)
	assert.Error(t, err)

	_, err = p.GetRepository(ctx, raw(t, "type: unknown/v1\n"))
	assert.ErrorContains(t, err, `no repository registered for type "unknown/v1", known types are [archive/v1 filesystem/v1 inmemory/v1 nats/v1 sqlite/v1]`)

	_, err = p.GetRepository(ctx, raw(t, "type: filesystem/v1\n"))
	assert.ErrorContains(t, err, "root directory is required")

	_, err = p.GetRepositories(ctx, []*runtime.Raw{raw(t, "type: inmemory/v1\n"), raw(t, "type: sqlite/v1\n")})
	assert.ErrorContains(t, err, "repository 1")
}

func TestRegisterCustomType(t *testing.T) {
	ctx := t.Context()
	p := provider.New()
	calls := 0
	boom := errors.New("boom")
	require.NoError(t, provider.Register(p, &inmemory.Spec{}, func(_ context.Context, spec *inmemory.Spec) (pages.Repository, error) {
		calls++
		if spec.Name == "fail" {
			return nil, boom
		}
		return inmemory.New(spec.Name), nil
	}, runtime.NewVersionedType("custom", "v1")))
	assert.Error(t, provider.Register(p, &inmemory.Spec{}, nil))
	assert.ErrorContains(t, provider.Register(p, &inmemory.Spec{}, nil, runtime.Type{Name: "unversioned"}), "must be versioned")
	assert.Equal(t, []runtime.Type{runtime.NewVersionedType("custom", "v1")}, p.Types())

	_, err := p.GetRepository(ctx, raw(t, "type: custom/v1\nname: fail\n"))
	require.ErrorIs(t, err, boom)
	_, err = p.GetRepository(ctx, raw(t, "type: custom/v1\nname: fail\n"))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls, "failed constructions are not cached")

	_, err = p.GetRepository(ctx, raw(t, "type: custom/v1\nname: ok\n"))
	require.NoError(t, err)
	_, err = p.GetRepository(ctx, raw(t, "type: custom/v1\nname: ok\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestClose(t *testing.T) {
	ctx := t.Context()
	p, err := builtin.NewProvider()
	require.NoError(t, err)

	dsn := filepath.Join(t.TempDir(), "pages.db")
	repos, err := p.GetRepositories(ctx, []*runtime.Raw{raw(t, "type: sqlite/v1\ndsn: "+dsn+"\n")})
	require.NoError(t, err)
	require.Len(t, repos, 1)
	db, ok := repos[0].(*sqlite.Repository)
	require.True(t, ok)
	assert.True(t, db.IsAvailable(ctx))

	require.NoError(t, p.Close())
	assert.False(t, db.IsAvailable(ctx))
}
