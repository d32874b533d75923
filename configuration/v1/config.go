package v1

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"sigs.k8s.io/yaml"

	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
)

// ConfigType is the type every configuration document declares.
var ConfigType = runtime.NewVersionedType("unions.config.semanticcms.com", "v1")

// ErrUnknownUnion is returned when a union is looked up by a name that is not
// configured.
var ErrUnknownUnion = errors.New("unknown union")

// Config is the root of a configuration document.
type Config struct {
	Type   runtime.Type  `json:"type"`
	Unions []UnionConfig `json:"unions"`
}

// UnionConfig configures one named union.
type UnionConfig struct {
	Name string `json:"name"`
	// Mode is the lookup mode, "direct-probe" when empty.
	Mode string `json:"mode,omitempty"`
	// Repositories are the typed specifications of the backing repositories
	// in lookup order.
	Repositories []*runtime.Raw `json:"repositories"`
}

// Union returns the union configured under name.
func (c *Config) Union(name string) (*UnionConfig, error) {
	for i := range c.Unions {
		if c.Unions[i].Name == name {
			return &c.Unions[i], nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownUnion, name)
}

// Names returns the names of all configured unions in document order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Unions))
	for _, u := range c.Unions {
		names = append(names, u.Name)
	}
	return names
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration %s failed: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates a YAML (or JSON) configuration document and decodes it.
func Parse(data []byte) (*Config, error) {
	if err := ValidateRawYAML(data); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if !cfg.Type.Equal(ConfigType) {
		return nil, fmt.Errorf("unsupported configuration type %s, expected %s", cfg.Type, ConfigType)
	}
	seen := make(map[string]struct{}, len(cfg.Unions))
	for _, u := range cfg.Unions {
		if _, ok := seen[u.Name]; ok {
			return nil, fmt.Errorf("union %q is configured more than once", u.Name)
		}
		seen[u.Name] = struct{}{}
	}
	return cfg, nil
}

// JSONSchema contains the embedded JSON schema for configuration documents.
//
//go:embed resources/schema.json
var JSONSchema []byte

// GetJSONSchema compiles the JSON schema once and caches it for reuse.
var GetJSONSchema = sync.OnceValues[*jsonschema.Schema, error](func() (*jsonschema.Schema, error) {
	const schemaFile = "resources/schema.json"
	c := jsonschema.NewCompiler()
	unmarshaler, err := jsonschema.UnmarshalJSON(bytes.NewReader(JSONSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	if err := c.AddResource(schemaFile, unmarshaler); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}
	sch, err := c.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
})

// ValidateRawYAML validates raw YAML data against the configuration schema.
func ValidateRawYAML(raw []byte) error {
	data, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return fmt.Errorf("failed to convert configuration to json: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	schema, err := GetJSONSchema()
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	return schema.Validate(doc)
}

// String renders the configuration as YAML.
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
