package v1_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	filesystem "github.com/ao-apps/semanticcms-core-pages-union/repositories/filesystem/v1"
	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.yaml":       {Data: []byte("title: Home\n")},
		"docs/index.yaml":  {Data: []byte("title: Docs\nproperties:\n  author: jane\ncontent: docs body\n")},
		"docs/intro.yaml":  {Data: []byte("title: Intro\ncontent: hello\n")},
		"docs/broken.yaml": {Data: []byte("title: [\n")},
		"docs/readme.txt":  {Data: []byte("not a page")},
		"empty/.keep":      {Data: nil},
	}
}

func TestGetPage(t *testing.T) {
	ctx := t.Context()
	repo := filesystem.New("test", testFS())

	tests := []struct {
		path    string
		level   pages.CaptureLevel
		found   bool
		title   string
		content string
	}{
		{path: "/", level: pages.CaptureLevelMeta, found: true, title: "Home"},
		{path: "/docs", level: pages.CaptureLevelBody, found: true, title: "Docs", content: "docs body"},
		{path: "/docs/", level: pages.CaptureLevelMeta, found: true, title: "Docs"},
		{path: "/docs/intro", level: pages.CaptureLevelBody, found: true, title: "Intro", content: "hello"},
		{path: "/docs/intro", level: pages.CaptureLevelPage, found: true},
		{path: "/docs/missing", level: pages.CaptureLevelBody},
		{path: "/empty", level: pages.CaptureLevelBody},
		{path: "/docs/readme", level: pages.CaptureLevelBody},
	}
	for _, tt := range tests {
		t.Run(tt.path+"@"+tt.level.String(), func(t *testing.T) {
			page, found, err := repo.GetPage(ctx, pages.MustParsePath(tt.path), tt.level)
			require.NoError(t, err)
			require.Equal(t, tt.found, found)

			exists, err := repo.Exists(ctx, pages.MustParsePath(tt.path))
			require.NoError(t, err)
			assert.Equal(t, tt.found, exists)

			if !found {
				assert.Nil(t, page)
				return
			}
			assert.Equal(t, tt.path, page.Path.String())
			assert.Equal(t, tt.title, page.Title)
			assert.Equal(t, tt.content, string(page.Content))
			assert.Equal(t, "filesystem:test", page.Repository)
			if tt.level == pages.CaptureLevelBody {
				assert.Equal(t, digest.FromString(tt.content), page.Digest)
			}
		})
	}
}

func TestGetPageBroken(t *testing.T) {
	repo := filesystem.New("test", testFS())

	_, _, err := repo.GetPage(t.Context(), pages.MustParsePath("/docs/broken"), pages.CaptureLevelMeta)
	assert.ErrorContains(t, err, "decoding docs/broken.yaml failed")

	_, found, err := repo.GetPage(t.Context(), pages.MustParsePath("/docs/broken"), pages.CaptureLevelPage)
	require.NoError(t, err)
	assert.True(t, found, "existence does not require decoding")
}

func TestPaths(t *testing.T) {
	repo := filesystem.New("test", testFS())

	paths, err := repo.Paths(t.Context())
	require.NoError(t, err)
	var names []string
	for _, p := range paths {
		names = append(names, p.String())
	}
	assert.Equal(t, []string{"/", "/docs", "/docs/broken", "/docs/intro"}, names)
}

func TestHealth(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.yaml"), []byte("title: Home\n"), 0o600))

	repo, err := filesystem.NewFromSpec(&filesystem.Spec{Type: filesystem.Type, Root: dir})
	require.NoError(t, err)
	assert.True(t, repo.IsAvailable(ctx))
	assert.NoError(t, repo.CheckHealth(ctx))

	page, found, err := repo.GetPage(ctx, pages.Root, pages.CaptureLevelMeta)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Home", page.Title)

	missing, err := filesystem.NewFromSpec(&filesystem.Spec{Type: filesystem.Type, Root: filepath.Join(dir, "missing")})
	require.NoError(t, err)
	assert.False(t, missing.IsAvailable(ctx))
	assert.Error(t, missing.CheckHealth(ctx))

	_, err = filesystem.NewFromSpec(&filesystem.Spec{Type: runtime.Type{}})
	assert.Error(t, err)
}
