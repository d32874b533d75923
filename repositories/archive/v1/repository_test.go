package v1

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

func writeArchive(t *testing.T, write func(w *Writer), extra ...string) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	write(w)
	require.NoError(t, w.Flush())
	for _, line := range extra {
		buf.WriteString(line + "\n")
	}
	name := filepath.Join(t.TempDir(), "pages.jsonl")
	require.NoError(t, os.WriteFile(name, buf.Bytes(), 0o600))
	return name
}

func TestArchive(t *testing.T) {
	ctx := t.Context()
	name := writeArchive(t, func(w *Writer) {
		require.NoError(t, w.Put(&pages.Page{Path: pages.MustParsePath("/a"), Title: "A1", Content: []byte("first")}))
		require.NoError(t, w.Put(&pages.Page{Path: pages.MustParsePath("/b/"), Title: "B", Properties: map[string]string{"k": "v"}, Content: []byte(strings.Repeat("b", 4096))}))
		require.NoError(t, w.Put(&pages.Page{Path: pages.MustParsePath("/a"), Title: "A2", Content: []byte("second")}))
		require.NoError(t, w.Put(&pages.Page{Path: pages.MustParsePath("/gone"), Title: "Gone"}))
		require.NoError(t, w.Delete(pages.MustParsePath("/gone")))
	}, "not json", `{"_id":"0000000000000000","_p":"/forged"}`, "")

	repo, err := Open(ctx, name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	assert.Equal(t, 2, repo.Len())
	assert.True(t, repo.IsAvailable(ctx))
	assert.Equal(t, "archive:"+name, repo.Describe())

	t.Run("newest record wins", func(t *testing.T) {
		page, found, err := repo.GetPage(ctx, pages.MustParsePath("/a"), pages.CaptureLevelBody)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "A2", page.Title)
		assert.Equal(t, "second", string(page.Content))
		assert.Equal(t, digest.FromString("second"), page.Digest)
	})

	t.Run("capture levels", func(t *testing.T) {
		page, found, err := repo.GetPage(ctx, pages.MustParsePath("/b"), pages.CaptureLevelMeta)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "B", page.Title)
		assert.Equal(t, map[string]string{"k": "v"}, page.Properties)
		assert.Nil(t, page.Content)

		page, found, err = repo.GetPage(ctx, pages.MustParsePath("/b/"), pages.CaptureLevelBody)
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, page.Content, 4096)
		assert.Equal(t, "/b/", page.Path.String(), "the requested path is returned")

		page, found, err = repo.GetPage(ctx, pages.MustParsePath("/b"), pages.CaptureLevelPage)
		require.NoError(t, err)
		require.True(t, found)
		assert.Empty(t, page.Title)
	})

	t.Run("deleted and missing pages", func(t *testing.T) {
		for _, p := range []string{"/gone", "/missing", "/forged"} {
			page, found, err := repo.GetPage(ctx, pages.MustParsePath(p), pages.CaptureLevelBody)
			require.NoError(t, err)
			assert.False(t, found, p)
			assert.Nil(t, page)

			ok, err := repo.Exists(ctx, pages.MustParsePath(p))
			require.NoError(t, err)
			assert.False(t, ok, p)
		}
	})

	t.Run("closed", func(t *testing.T) {
		repo, err := Open(ctx, name)
		require.NoError(t, err)
		require.NoError(t, repo.Close())
		require.NoError(t, repo.Close())

		assert.False(t, repo.IsAvailable(ctx))
		_, _, err = repo.GetPage(ctx, pages.MustParsePath("/a"), pages.CaptureLevelBody)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = repo.Exists(ctx, pages.MustParsePath("/a"))
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestArchiveCRLF(t *testing.T) {
	ctx := t.Context()
	lf := writeArchive(t, func(w *Writer) {
		require.NoError(t, w.Put(&pages.Page{Path: pages.MustParsePath("/a"), Title: "A", Content: []byte("a")}))
		require.NoError(t, w.Put(&pages.Page{Path: pages.MustParsePath("/b"), Title: "B", Content: []byte("b")}))
		require.NoError(t, w.Put(&pages.Page{Path: pages.MustParsePath("/c"), Title: "C", Content: []byte("c")}))
	})
	data, err := os.ReadFile(lf)
	require.NoError(t, err)
	name := filepath.Join(t.TempDir(), "crlf.jsonl")
	require.NoError(t, os.WriteFile(name, bytes.ReplaceAll(data, []byte("\n"), []byte("\r\n")), 0o600))

	repo, err := Open(ctx, name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	for _, title := range []string{"A", "B", "C"} {
		p := pages.MustParsePath("/" + strings.ToLower(title))
		page, found, err := repo.GetPage(ctx, p, pages.CaptureLevelBody)
		require.NoError(t, err, p.String())
		require.True(t, found, p.String())
		assert.Equal(t, title, page.Title)
		assert.Equal(t, strings.ToLower(title), string(page.Content))
	}
}

func TestArchiveDigestMismatch(t *testing.T) {
	name := writeArchive(t, func(w *Writer) {
		require.NoError(t, w.Put(&pages.Page{Path: pages.MustParsePath("/a"), Content: []byte("a"), Digest: digest.FromString("b")}))
	})
	repo, err := Open(t.Context(), name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	_, _, err = repo.GetPage(t.Context(), pages.MustParsePath("/a"), pages.CaptureLevelBody)
	assert.ErrorIs(t, err, ErrCorruptRecord)

	_, found, err := repo.GetPage(t.Context(), pages.MustParsePath("/a"), pages.CaptureLevelMeta)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(t.Context(), filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewFromSpec(t.Context(), &Spec{Type: Type})
	assert.Error(t, err)
}

func TestCompress(t *testing.T) {
	for _, in := range [][]byte{nil, []byte("x"), bytes.Repeat([]byte("page content "), 1000)} {
		encoded := compress(in)
		assert.NotContains(t, encoded, "\n")
		out, err := decompress(encoded)
		require.NoError(t, err)
		assert.Equal(t, len(in), len(out))
	}
	_, err := decompress("not ascii85 ~~~")
	assert.ErrorIs(t, err, ErrDecompress)
}

func TestID(t *testing.T) {
	assert.Len(t, id("/a"), 16)
	assert.Equal(t, id("/a"), id("/a"))
	assert.NotEqual(t, id("/a"), id("/b"))
}
