package v1_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/ao-apps/semanticcms-core-pages-union/configuration/v1"
	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
)

const validConfig = `
type: unions.config.semanticcms.com/v1
unions:
  - name: docs
    mode: existence-gated
    repositories:
      - type: filesystem/v1
        root: ./pages
      - type: sqlite/v1
        dsn: "file:pages.db?mode=ro"
        include: ["/docs/**"]
  - name: site
    repositories:
      - type: inmemory/v1
`

func TestParse(t *testing.T) {
	cfg, err := v1.Parse([]byte(validConfig))
	require.NoError(t, err)

	assert.Equal(t, v1.ConfigType, cfg.Type)
	assert.Equal(t, []string{"docs", "site"}, cfg.Names())

	docs, err := cfg.Union("docs")
	require.NoError(t, err)
	assert.Equal(t, "existence-gated", docs.Mode)
	require.Len(t, docs.Repositories, 2)
	assert.Equal(t, runtime.NewVersionedType("filesystem", "v1"), docs.Repositories[0].GetType())
	assert.JSONEq(t, `{"type":"sqlite/v1","dsn":"file:pages.db?mode=ro","include":["/docs/**"]}`, docs.Repositories[1].String())

	site, err := cfg.Union("site")
	require.NoError(t, err)
	assert.Empty(t, site.Mode)

	_, err = cfg.Union("missing")
	assert.ErrorIs(t, err, v1.ErrUnknownUnion)

	assert.Contains(t, cfg.String(), "name: docs")
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{
			name:   "wrong type",
			config: "type: other/v1\nunions: [{name: a, repositories: [{type: inmemory/v1}]}]",
		},
		{
			name:   "no unions",
			config: "type: unions.config.semanticcms.com/v1\nunions: []",
		},
		{
			name:   "no repositories",
			config: "type: unions.config.semanticcms.com/v1\nunions: [{name: a, repositories: []}]",
		},
		{
			name:   "unknown mode",
			config: "type: unions.config.semanticcms.com/v1\nunions: [{name: a, mode: merge, repositories: [{type: inmemory/v1}]}]",
		},
		{
			name:   "repository without type",
			config: "type: unions.config.semanticcms.com/v1\nunions: [{name: a, repositories: [{root: /srv}]}]",
		},
		{
			name:   "duplicate union",
			config: "type: unions.config.semanticcms.com/v1\nunions: [{name: a, repositories: [{type: inmemory/v1}]}, {name: a, repositories: [{type: inmemory/v1}]}]",
		},
		{
			name:   "not yaml",
			config: "type: [",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v1.Parse([]byte(tt.config))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o600))

	cfg, err := v1.Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Unions, 2)

	_, err = v1.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
