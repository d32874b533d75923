// Package configuration locates and loads the union configuration of the
// pageunion CLI.
package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	configv1 "github.com/ao-apps/semanticcms-core-pages-union/configuration/v1"
)

// Configuration file constants
const (
	ConfigFileName           = "unions.yaml"
	ConfigDirectoryName      = "pageunion"
	ConfigEnvironmentKey     = "PAGEUNION_CONFIG"
	ConfigCommandArgument    = "config"
	configCommandDescription = `supply the union configuration by a given configuration file.
By default (without specifying a custom location with this flag), the file is read from the first of:
1. The path specified in the PAGEUNION_CONFIG environment variable
2. $PWD/unions.yaml
3. $XDG_CONFIG_HOME/pageunion/unions.yaml, or $HOME/.config/pageunion/unions.yaml
Commands that do not look up pages work without a configuration.`
)

func RegisterConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(ConfigCommandArgument, "", configCommandDescription)
}

// GetConfigForCommand loads the configuration selected by the flags of cmd.
// It returns nil without an error if no flag was given and no configuration
// exists in any of the well known locations.
func GetConfigForCommand(cmd *cobra.Command) (*configv1.Config, error) {
	path, _ := cmd.Flags().GetString(ConfigCommandArgument)
	if path != "" {
		return configv1.Load(path)
	}
	path = GetConfigPath()
	if path == "" {
		slog.DebugContext(cmd.Context(), "no union configuration found in any known location")
		return nil, nil
	}
	cfg, err := configv1.Load(path)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(cmd.Context(), "union configuration was loaded successfully", slog.String("path", path))
	return cfg, nil
}

// GetConfigPath returns the first existing configuration file of the well
// known locations, or the empty string.
func GetConfigPath() string {
	var candidates []string
	if env := os.Getenv(ConfigEnvironmentKey); env != "" {
		candidates = append(candidates, env)
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, ConfigFileName))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, ConfigDirectoryName, ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", ConfigDirectoryName, ConfigFileName))
	}
	for _, path := range candidates {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			slog.Warn("union configuration path was skipped", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		if !info.IsDir() {
			return path
		}
	}
	return ""
}

// ErrNoConfiguration is returned by commands that need unions when no
// configuration was loaded.
var ErrNoConfiguration = fmt.Errorf("no union configuration found, use --%s or %s", ConfigCommandArgument, ConfigEnvironmentKey)
