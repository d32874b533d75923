package pages_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

func TestCaptureLevel(t *testing.T) {
	for _, level := range []pages.CaptureLevel{pages.CaptureLevelPage, pages.CaptureLevelMeta, pages.CaptureLevelBody} {
		parsed, err := pages.ParseCaptureLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	parsed, err := pages.ParseCaptureLevel("BODY")
	require.NoError(t, err)
	assert.Equal(t, pages.CaptureLevelBody, parsed)

	_, err = pages.ParseCaptureLevel("rendered")
	assert.Error(t, err)

	assert.Equal(t, "CaptureLevel(7)", pages.CaptureLevel(7).String())
	assert.True(t, pages.CaptureLevelBody.Includes(pages.CaptureLevelMeta))
	assert.False(t, pages.CaptureLevelPage.Includes(pages.CaptureLevelMeta))
	assert.Equal(t, []string{"page", "meta", "body"}, pages.CaptureLevelNames())
}

func TestPageTruncate(t *testing.T) {
	full := &pages.Page{
		Path:       pages.MustParsePath("/a"),
		Title:      "A",
		Properties: map[string]string{"author": "me"},
		Content:    []byte("hello"),
		Repository: "mem",
	}

	page := full.Truncate(pages.CaptureLevelPage)
	assert.Equal(t, &pages.Page{Path: full.Path, Repository: "mem"}, page)

	meta := full.Truncate(pages.CaptureLevelMeta)
	assert.Equal(t, "A", meta.Title)
	assert.Nil(t, meta.Content)

	body := full.Truncate(pages.CaptureLevelBody)
	assert.Equal(t, []byte("hello"), body.Content)
	assert.NotEmpty(t, body.Digest)
	assert.NoError(t, body.Digest.Validate())

	var nilPage *pages.Page
	assert.Nil(t, nilPage.Truncate(pages.CaptureLevelBody))
}
