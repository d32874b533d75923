package archive

import (
	"github.com/spf13/cobra"

	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/archive/create"
)

// New represents commands that work with page archives.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive {create}",
		Short: "Work with page archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(create.New())
	return cmd
}
