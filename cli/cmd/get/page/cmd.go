package page

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	pucmd "github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/internal/cmd"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/internal/flags/enum"
	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	instrumented "github.com/ao-apps/semanticcms-core-pages-union/repositories/instrumented/v1"
)

const FlagCaptureLevel = "capture-level"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "page {path}",
		Aliases: []string{"pages", "p"},
		Short:   "Get a page from a union",
		Args:    cobra.MatchAll(cobra.ExactArgs(1), pucmd.PathAsFirstPositional),
		Long: fmt.Sprintf(`Get a page from a union of page repositories.

The repositories of the union are probed in their configured order and the
first page found is returned. The capture level {%s} selects how much of the
page is read.`, strings.Join(pages.CaptureLevelNames(), "|")),
		Example: strings.TrimSpace(`
Getting the metadata of a page from the first configured union:

get page /docs/intro

Getting the full page from a named union as YAML:

get page /docs/intro --union site --capture-level body -oyaml

Looking up a page relative to a mount point and printing lookup statistics:

get page /intro --mount /docs --stats
`),
		RunE:              GetPage,
		DisableAutoGenTag: true,
	}

	pucmd.RegisterUnionFlags(cmd)
	enum.VarP(cmd.Flags(), pucmd.FlagOutput, "o", []string{"table", "yaml", "json"}, "output format of the page")
	enum.Var(cmd.Flags(), FlagCaptureLevel, []string{
		pages.CaptureLevelMeta.String(),
		pages.CaptureLevelPage.String(),
		pages.CaptureLevelBody.String(),
	}, "how much of the page is read")
	cmd.Flags().Bool(pucmd.FlagStats, false, "print per repository lookup metrics after the page")

	return cmd
}

func GetPage(cmd *cobra.Command, args []string) error {
	output, err := enum.Get(cmd.Flags(), pucmd.FlagOutput)
	if err != nil {
		return fmt.Errorf("getting output flag failed: %w", err)
	}
	levelFlag, err := enum.Get(cmd.Flags(), FlagCaptureLevel)
	if err != nil {
		return fmt.Errorf("getting capture-level flag failed: %w", err)
	}
	level, err := pages.ParseCaptureLevel(levelFlag)
	if err != nil {
		return err
	}
	stats, err := cmd.Flags().GetBool(pucmd.FlagStats)
	if err != nil {
		return fmt.Errorf("getting stats flag failed: %w", err)
	}

	path, err := pages.ParsePath(args[0])
	if err != nil {
		return err
	}

	var registry *prometheus.Registry
	if stats {
		registry = prometheus.NewRegistry()
		if err := instrumented.RegisterMetrics(registry); err != nil {
			return fmt.Errorf("registering lookup metrics failed: %w", err)
		}
	}

	repo, err := pucmd.Repository(cmd)
	if err != nil {
		return fmt.Errorf("could not initialize union: %w", err)
	}

	page, found, err := repo.GetPage(cmd.Context(), path, level)
	if err != nil {
		return fmt.Errorf("getting page %s from %s failed: %w", path, repo.Describe(), err)
	}
	if !found {
		return &pages.PageNotFoundError{Repository: repo.Describe(), Path: path}
	}

	reader, size, err := encodePage(output, page)
	if err != nil {
		return fmt.Errorf("generating output failed: %w", err)
	}
	if _, err := io.CopyN(cmd.OutOrStdout(), reader, size); err != nil {
		return fmt.Errorf("writing page failed: %w", err)
	}

	if registry != nil {
		families, err := registry.Gather()
		if err != nil {
			return fmt.Errorf("gathering lookup metrics failed: %w", err)
		}
		if _, err := cmd.OutOrStdout().Write(encodeStats(families)); err != nil {
			return fmt.Errorf("writing lookup metrics failed: %w", err)
		}
	}

	return nil
}
