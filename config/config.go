package config

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"
)

const envPrefix = "ASCLGW_"

// Config holds every recognized option from SPEC_FULL.md §6.
type Config struct {
	DatabaseHost         string `yaml:"database-host"`
	DatabaseName         string `yaml:"database-name"`
	DatabaseAuth         string `yaml:"database-auth"`
	BlobStoreCredentials string `yaml:"blob-store-credentials"`
	BlobBucket           string `yaml:"blob-bucket"`
	AttachmentMode       string `yaml:"attachment-mode"`
	MCPTools             string `yaml:"mcp-tools"`
	SchemaSourcePath     string `yaml:"schema-source"`
	SchemaSourceInline   string `yaml:"schema-source-inline"`
}

// Load reads a YAML config document from path, then overrides any field
// with the corresponding ASCLGW_-prefixed environment variable if set
// (e.g. ASCLGW_DATABASE_HOST overrides database-host).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := &Config{AttachmentMode: "disabled", MCPTools: "disabled"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	override := func(key string, dst *string) {
		env := envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}
	override("database-host", &cfg.DatabaseHost)
	override("database-name", &cfg.DatabaseName)
	override("database-auth", &cfg.DatabaseAuth)
	override("blob-store-credentials", &cfg.BlobStoreCredentials)
	override("blob-bucket", &cfg.BlobBucket)
	override("attachment-mode", &cfg.AttachmentMode)
	override("mcp-tools", &cfg.MCPTools)
	override("schema-source", &cfg.SchemaSourcePath)
	override("schema-source-inline", &cfg.SchemaSourceInline)
}

// Validate enforces the required options and the mutually-exclusive
// schema-source pair, following the same "exactly one of N sources"
// pattern the teacher applies to its own input-source options.
func (c *Config) Validate() error {
	if c.DatabaseHost == "" {
		return fmt.Errorf("config: database-host is required")
	}
	if c.DatabaseName == "" {
		return fmt.Errorf("config: database-name is required")
	}
	if err := validateSingleInputSource(
		"config: one of schema-source or schema-source-inline is required",
		"config: schema-source and schema-source-inline are mutually exclusive",
		c.SchemaSourcePath != "", c.SchemaSourceInline != "",
	); err != nil {
		return err
	}
	switch c.AttachmentMode {
	case "enabled", "disabled":
	default:
		return fmt.Errorf("config: attachment-mode must be %q or %q, got %q", "enabled", "disabled", c.AttachmentMode)
	}
	switch c.MCPTools {
	case "enabled", "disabled":
	default:
		return fmt.Errorf("config: mcp-tools must be %q or %q, got %q", "enabled", "disabled", c.MCPTools)
	}
	return nil
}

// AttachmentEnabled reports whether the attachment side-channel is
// enabled.
func (c *Config) AttachmentEnabled() bool { return c.AttachmentMode == "enabled" }

// MCPToolsEnabled reports whether the operational introspection surface
// (SPEC_FULL.md §10) is enabled.
func (c *Config) MCPToolsEnabled() bool { return c.MCPTools == "enabled" }

// validateSingleInputSource ensures exactly one of sources is true.
func validateSingleInputSource(noSourceMsg, multiSourceMsg string, sources ...bool) error {
	count := 0
	for _, s := range sources {
		if s {
			count++
		}
	}
	if count == 0 {
		return fmt.Errorf("%s", noSourceMsg)
	}
	if count > 1 {
		return fmt.Errorf("%s", multiSourceMsg)
	}
	return nil
}

// SchemaSource returns the raw schema document bytes, loading from
// SchemaSourcePath or decoding SchemaSourceInline, whichever Validate
// confirmed is set.
func (c *Config) SchemaSource() ([]byte, error) {
	if c.SchemaSourcePath != "" {
		data, err := os.ReadFile(c.SchemaSourcePath)
		if err != nil {
			return nil, fmt.Errorf("config: read schema-source %s: %w", c.SchemaSourcePath, err)
		}
		return data, nil
	}
	return []byte(c.SchemaSourceInline), nil
}
