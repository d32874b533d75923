package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/archive"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/configuration"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/describe"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/exists"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/get"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/setup/hooks"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/status"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/internal/flags/log"
)

// Execute runs the pageunion root command. It is called by main.main().
func Execute() {
	err := New().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pageunion [sub-command]",
		Short: "Look up pages through unions of page repositories",
		Long: `pageunion presents several ordered page repositories as one.
A lookup probes the repositories of a union in the configured order and
returns the first page found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: hooks.PreRunE,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	configuration.RegisterConfigFlag(cmd)
	log.RegisterLoggingFlags(cmd.PersistentFlags())

	cmd.AddCommand(get.New())
	cmd.AddCommand(exists.New())
	cmd.AddCommand(describe.New())
	cmd.AddCommand(status.New())
	cmd.AddCommand(archive.New())
	hooks.CloseOnFinish(cmd)
	return cmd
}
