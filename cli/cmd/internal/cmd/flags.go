// Package cmd holds flags and helpers shared by several pageunion commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/configuration"
	puctx "github.com/ao-apps/semanticcms-core-pages-union/cli/internal/context"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/internal/unions"
	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

const (
	// FlagUnion selects the union by name.
	FlagUnion = "union"
	// FlagMount looks paths up relative to a mount point of the union.
	FlagMount = "mount"
	// FlagOutput selects the output format.
	FlagOutput = "output"
	// FlagStats enables lookup metrics.
	FlagStats = "stats"
	// FlagConcurrencyLimit limits parallel requests.
	FlagConcurrencyLimit = "concurrency-limit"
)

// RegisterUnionFlags registers FlagUnion and FlagMount with cmd.
func RegisterUnionFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagUnion, "", "name of the union to look pages up in, the first configured union by default")
	cmd.Flags().String(FlagMount, "", "mount point of the union, paths are looked up relative to it")
}

// Unions returns the union resolver registered for cmd, or an error if no
// configuration was loaded.
func Unions(cmd *cobra.Command) (*unions.Resolver, error) {
	resolver := puctx.FromContext(cmd.Context()).Unions()
	if resolver == nil {
		return nil, configuration.ErrNoConfiguration
	}
	return resolver, nil
}

// Repository returns the repository selected by FlagUnion and FlagMount:
// either a union or one of its mount points.
func Repository(cmd *cobra.Command) (pages.Repository, error) {
	resolver, err := Unions(cmd)
	if err != nil {
		return nil, err
	}
	name, err := cmd.Flags().GetString(FlagUnion)
	if err != nil {
		return nil, fmt.Errorf("getting %s flag failed: %w", FlagUnion, err)
	}
	if name == "" {
		if name, err = resolver.Default(); err != nil {
			return nil, err
		}
	}
	mount, err := cmd.Flags().GetString(FlagMount)
	if err != nil {
		return nil, fmt.Errorf("getting %s flag failed: %w", FlagMount, err)
	}
	if mount == "" {
		return resolver.Union(cmd.Context(), name)
	}
	path, err := pages.ParsePath(mount)
	if err != nil {
		return nil, fmt.Errorf("parsing mount point %q failed: %w", mount, err)
	}
	return resolver.Mount(cmd.Context(), name, path)
}

// PathAsFirstPositional validates that the first argument is a page path.
func PathAsFirstPositional(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing page path as first positional argument")
	}
	if _, err := pages.ParsePath(args[0]); err != nil {
		return fmt.Errorf("parsing page path from first positional argument %q failed: %w", args[0], err)
	}
	return nil
}
