// Package hooks contains the cobra hooks shared by all pageunion commands.
package hooks

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/configuration"
	pucmd "github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/internal/cmd"
	puctx "github.com/ao-apps/semanticcms-core-pages-union/cli/internal/context"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/internal/flags/log"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/internal/unions"
	"github.com/ao-apps/semanticcms-core-pages-union/repositories/builtin"
	"github.com/ao-apps/semanticcms-core-pages-union/repositories/provider"
	union "github.com/ao-apps/semanticcms-core-pages-union/union/v1"
)

// PreRunE installs the logger, loads the configuration and registers the
// command line context of cmd.
func PreRunE(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not retrieve logger: %w", err)
	}
	slog.SetDefault(logger)
	ctx := slogcontext.NewCtx(cmd.Context(), logger)

	cfg, err := configuration.GetConfigForCommand(cmd)
	if err != nil {
		return fmt.Errorf("could not load union configuration: %w", err)
	}
	ctx = puctx.WithConfiguration(ctx, cfg)

	if cfg != nil {
		var opts []provider.Option
		if flag := cmd.Flags().Lookup(pucmd.FlagStats); flag != nil && flag.Changed {
			opts = append(opts, provider.WithInstrumentation())
		}
		p, err := builtin.NewProvider(opts...)
		if err != nil {
			return fmt.Errorf("could not setup repository provider: %w", err)
		}
		var unionOpts []union.Option
		if flag := cmd.Flags().Lookup(pucmd.FlagConcurrencyLimit); flag != nil {
			if limit, err := cmd.Flags().GetInt(pucmd.FlagConcurrencyLimit); err == nil {
				unionOpts = append(unionOpts, union.WithGoRoutineLimit(limit))
			} else {
				slog.DebugContext(ctx, "could not read concurrency limit flag value", slog.String("error", err.Error()))
			}
		}
		ctx = puctx.WithUnions(ctx, unions.New(cfg, p, unionOpts...))
	}

	cmd.SetContext(ctx)
	puctx.Register(cmd)

	// inherit IO from parent if exists
	if parent := cmd.Parent(); parent != nil {
		cmd.SetOut(parent.OutOrStdout())
		cmd.SetErr(parent.ErrOrStderr())
	}

	return nil
}

// CloseOnFinish wraps the RunE of cmd and all of its sub commands so that
// the repositories opened while running are released whether the command
// succeeds or fails.
func CloseOnFinish(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		CloseOnFinish(sub)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := closeRepositories(cmd); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}()
		return run(cmd, args)
	}
}

func closeRepositories(cmd *cobra.Command) error {
	resolver := puctx.FromContext(cmd.Context()).Unions()
	if resolver == nil {
		return nil
	}
	if err := resolver.Close(); err != nil {
		return fmt.Errorf("closing repositories failed: %w", err)
	}
	return nil
}
