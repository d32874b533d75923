package create

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	archive "github.com/ao-apps/semanticcms-core-pages-union/repositories/archive/v1"
	filesystem "github.com/ao-apps/semanticcms-core-pages-union/repositories/filesystem/v1"
)

const FlagFrom = "from"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create {archive} --from {directory}",
		Short: "Append the pages of a directory to a page archive",
		Long: `Append the pages of a directory to a page archive.

Every page file of the directory is appended as a new record, so pages already
in the archive are replaced. The archive is created if it does not exist.`,
		Args: cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
archive create pages.jsonl --from ./content
`),
		RunE:              Create,
		DisableAutoGenTag: true,
	}
	cmd.Flags().String(FlagFrom, "", "directory of page files to archive")
	_ = cmd.MarkFlagRequired(FlagFrom)
	return cmd
}

func Create(cmd *cobra.Command, args []string) (err error) {
	from, err := cmd.Flags().GetString(FlagFrom)
	if err != nil {
		return fmt.Errorf("getting from flag failed: %w", err)
	}
	source, err := filesystem.NewFromSpec(&filesystem.Spec{Type: filesystem.Type, Root: from})
	if err != nil {
		return err
	}
	if err := source.CheckHealth(cmd.Context()); err != nil {
		return err
	}
	paths, err := source.Paths(cmd.Context())
	if err != nil {
		return err
	}

	file, err := os.OpenFile(args[0], os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening archive %s failed: %w", args[0], err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	w := archive.NewWriter(file)
	for _, path := range paths {
		page, found, err := source.GetPage(cmd.Context(), path, pages.CaptureLevelBody)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if err := w.Put(page); err != nil {
			return err
		}
		slog.DebugContext(cmd.Context(), "archived page", slog.String("path", path.String()))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing archive %s failed: %w", args[0], err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "archived %d pages to %s\n", len(paths), args[0])
	return err
}
