package hooks_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/configuration"
	pucmd "github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/internal/cmd"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/setup/hooks"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/internal/flags/log"
	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	archive "github.com/ao-apps/semanticcms-core-pages-union/repositories/archive/v1"
)

func setupArchiveConfig(t *testing.T) string {
	r := require.New(t)
	dir := t.TempDir()
	file, err := os.Create(filepath.Join(dir, "pages.jsonl"))
	r.NoError(err)
	w := archive.NewWriter(file)
	r.NoError(w.Put(&pages.Page{Path: pages.MustParsePath("/a"), Title: "A"}))
	r.NoError(w.Flush())
	r.NoError(file.Close())

	cfg := filepath.Join(dir, "unions.yaml")
	r.NoError(os.WriteFile(cfg, fmt.Appendf(nil, `type: unions.config.semanticcms.com/v1
unions:
  - name: archived
    repositories:
      - type: archive/v1
        file: %q
`, file.Name()), 0o644))
	return cfg
}

func TestCloseOnFinish(t *testing.T) {
	failure := errors.New("lookup failed")

	for _, tc := range []struct {
		name string
		err  error
	}{
		{name: "command succeeds"},
		{name: "command fails", err: failure},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)
			var opened pages.Repository
			root := &cobra.Command{
				Use:               "root",
				PersistentPreRunE: hooks.PreRunE,
				SilenceUsage:      true,
				SilenceErrors:     true,
			}
			configuration.RegisterConfigFlag(root)
			log.RegisterLoggingFlags(root.PersistentFlags())
			root.AddCommand(&cobra.Command{
				Use: "lookup",
				RunE: func(cmd *cobra.Command, _ []string) error {
					resolver, err := pucmd.Unions(cmd)
					if err != nil {
						return err
					}
					u, err := resolver.Union(cmd.Context(), "archived")
					if err != nil {
						return err
					}
					opened = u.Repositories()[0]
					return tc.err
				},
			})
			hooks.CloseOnFinish(root)

			root.SetArgs([]string{"lookup", "--config", setupArchiveConfig(t)})
			err := root.ExecuteContext(t.Context())
			if tc.err != nil {
				r.ErrorIs(err, tc.err)
			} else {
				r.NoError(err)
			}

			r.NotNil(opened)
			checkable, ok := opened.(pages.HealthCheckable)
			r.True(ok)
			r.ErrorIs(checkable.CheckHealth(t.Context()), archive.ErrClosed, "the archive is closed after the command finished")
		})
	}
}
