package describe

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	pucmd "github.com/ao-apps/semanticcms-core-pages-union/cli/cmd/internal/cmd"
	"github.com/ao-apps/semanticcms-core-pages-union/cli/internal/flags/enum"
)

// Union is the description of one configured union.
type Union struct {
	Name         string   `json:"name"`
	Mode         string   `json:"mode"`
	Description  string   `json:"description"`
	Repositories []string `json:"repositories"`
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [union...]",
		Short: "Describe the configured unions",
		Long: `Describe the configured unions and their repositories in lookup order.

Without arguments all configured unions are described.`,
		Example: strings.TrimSpace(`
describe
describe site -ojson
`),
		RunE:              Describe,
		DisableAutoGenTag: true,
	}
	enum.VarP(cmd.Flags(), pucmd.FlagOutput, "o", []string{"table", "yaml", "json"}, "output format of the description")
	return cmd
}

func Describe(cmd *cobra.Command, args []string) error {
	output, err := enum.Get(cmd.Flags(), pucmd.FlagOutput)
	if err != nil {
		return fmt.Errorf("getting output flag failed: %w", err)
	}
	resolver, err := pucmd.Unions(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = resolver.Names()
	}

	descriptions := make([]Union, 0, len(names))
	for _, name := range names {
		u, err := resolver.Union(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("could not initialize union %q: %w", name, err)
		}
		d := Union{Name: name, Mode: u.LookupMode().String(), Description: u.Describe()}
		for _, repo := range u.Repositories() {
			d.Repositories = append(d.Repositories, repo.Describe())
		}
		descriptions = append(descriptions, d)
	}

	reader, size, err := encodeUnions(output, descriptions)
	if err != nil {
		return fmt.Errorf("generating output failed: %w", err)
	}
	if _, err := io.CopyN(cmd.OutOrStdout(), reader, size); err != nil {
		return fmt.Errorf("writing description failed: %w", err)
	}
	return nil
}

func encodeUnions(output string, unions []Union) (io.Reader, int64, error) {
	var data []byte
	var err error
	switch output {
	case "json":
		data, err = json.Marshal(unions)
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(unions)
	case "table":
		data = encodeUnionsAsTable(unions)
	default:
		err = fmt.Errorf("unknown output format: %q", output)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("encoding unions as %q failed: %w", output, err)
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

func encodeUnionsAsTable(unions []Union) []byte {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Union", "Mode", "Priority", "Repository"})
	for _, u := range unions {
		for i, repo := range u.Repositories {
			t.AppendRow(table.Row{u.Name, u.Mode, i + 1, repo})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.Bytes()
}
