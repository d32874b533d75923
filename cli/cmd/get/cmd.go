package get

import (
	"github.com/spf13/cobra"

	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/get/page"
)

// New represents any command that is related to retrieving ( "get"ting ) objects
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get {page}",
		Short: "Get anything from a union",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(page.New())
	return cmd
}
