package exists

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pucmd "github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/internal/cmd"
	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exists {path}",
		Short: "Check whether a page exists in a union",
		Long: `Check whether any repository of a union has a page.

Prints true or false. Errors reported by a repository abort the check.`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), pucmd.PathAsFirstPositional),
		Example: strings.TrimSpace(`
exists /docs/intro
exists /intro --union site --mount /docs
`),
		RunE:              Exists,
		DisableAutoGenTag: true,
	}
	pucmd.RegisterUnionFlags(cmd)
	return cmd
}

func Exists(cmd *cobra.Command, args []string) error {
	path, err := pages.ParsePath(args[0])
	if err != nil {
		return err
	}
	repo, err := pucmd.Repository(cmd)
	if err != nil {
		return fmt.Errorf("could not initialize union: %w", err)
	}
	exists, err := pages.Exists(cmd.Context(), repo, path)
	if err != nil {
		return fmt.Errorf("checking page %s in %s failed: %w", path, repo.Describe(), err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), exists)
	return err
}
