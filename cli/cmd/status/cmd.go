package status

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	pucmd "github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/internal/cmd"
)

// ErrUnhealthy is returned when at least one union is unavailable or fails
// its health check.
var ErrUnhealthy = errors.New("unhealthy unions")

type result struct {
	name      string
	available bool
	err       error
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [union...]",
		Short: "Check availability and health of the configured unions",
		Long: `Check availability and health of the configured unions.

A union is available when all of its repositories are. Repositories that
support health checks are checked concurrently. The command fails when any
union is unavailable or unhealthy.`,
		Example: strings.TrimSpace(`
status
status site docs --concurrency-limit 2
`),
		RunE:              Status,
		DisableAutoGenTag: true,
	}
	cmd.Flags().Int(pucmd.FlagConcurrencyLimit, 4, "maximum amount of unions and repositories checked in parallel")
	return cmd
}

func Status(cmd *cobra.Command, args []string) error {
	resolver, err := pucmd.Unions(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt(pucmd.FlagConcurrencyLimit)
	if err != nil {
		return fmt.Errorf("getting concurrency-limit flag failed: %w", err)
	}
	if limit < 1 {
		return fmt.Errorf("invalid argument %d for --%s: must be at least 1", limit, pucmd.FlagConcurrencyLimit)
	}
	names := args
	if len(names) == 0 {
		names = resolver.Names()
	}

	results := make([]result, len(names))
	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(limit)
	for i, name := range names {
		eg.Go(func() error {
			u, err := resolver.Union(ctx, name)
			if err != nil {
				return fmt.Errorf("could not initialize union %q: %w", name, err)
			}
			results[i] = result{
				name:      name,
				available: u.IsAvailable(ctx),
				err:       u.CheckHealth(ctx),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Union", "Available", "Healthy", "Error"})
	unhealthy := 0
	for _, r := range results {
		msg := ""
		if r.err != nil {
			msg = r.err.Error()
		}
		if !r.available || r.err != nil {
			unhealthy++
		}
		t.AppendRow(table.Row{r.name, r.available, r.err == nil, msg})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing status failed: %w", err)
	}

	if unhealthy > 0 {
		return fmt.Errorf("%w: %d of %d", ErrUnhealthy, unhealthy, len(results))
	}
	return nil
}
