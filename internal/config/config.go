// Package config provides configuration management for cpm.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/klauern/cpm/internal/model"
	"github.com/klauern/cpm/internal/util"
)

// Config represents the complete cpm configuration.
type Config struct {
	// Registry configures the package registry client
	Registry RegistryConfig `yaml:"registry"`

	// Install configures default installation behavior
	Install InstallConfig `yaml:"install"`

	// Sources configures manifest source behavior
	Sources SourcesConfig `yaml:"sources"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`
}

// RegistryConfig holds package registry settings.
type RegistryConfig struct {
	// BaseURL is the registry API endpoint
	BaseURL string `yaml:"base_url"`
	// Timeout bounds each registry request
	Timeout time.Duration `yaml:"timeout"`
}

// InstallConfig holds installation settings.
type InstallConfig struct {
	// DefaultPlatforms are the platforms targeted when none is given
	DefaultPlatforms []string `yaml:"default_platforms"`
	// ScanContent enables sensitive-data warnings on downloaded content
	ScanContent bool `yaml:"scan_content"`
}

// SourcesConfig holds manifest source settings.
type SourcesConfig struct {
	// ManifestTimeout bounds lightweight metadata-only fetches
	ManifestTimeout time.Duration `yaml:"manifest_timeout"`
	// DownloadTimeout bounds full archive downloads
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Format is the default output format (table, json)
	Format string `yaml:"format"`
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			BaseURL: "https://registry.cpm.dev/api",
			Timeout: 10 * time.Second,
		},
		Install: InstallConfig{
			DefaultPlatforms: []string{string(model.ClaudeCode)},
			ScanContent:      true,
		},
		Sources: SourcesConfig{
			ManifestTimeout: 5 * time.Second,
			DownloadTimeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Format:  "table",
			Color:   "auto",
			Verbose: false,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.CPMConfigPath(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults with environment overrides
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	// Parse YAML over defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern CPM_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("CPM_REGISTRY_URL"); v != "" {
		c.Registry.BaseURL = v
	}
	if v := os.Getenv("CPM_REGISTRY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Registry.Timeout = d
		}
	}

	if v := os.Getenv("CPM_INSTALL_PLATFORMS"); v != "" {
		c.Install.DefaultPlatforms = splitList(v)
	}
	if v := os.Getenv("CPM_INSTALL_SCAN_CONTENT"); v != "" {
		c.Install.ScanContent = parseBool(v)
	}

	if v := os.Getenv("CPM_SOURCES_MANIFEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Sources.ManifestTimeout = d
		}
	}
	if v := os.Getenv("CPM_SOURCES_DOWNLOAD_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Sources.DownloadTimeout = d
		}
	}

	if v := os.Getenv("CPM_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("CPM_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("CPM_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
}

// Platforms resolves the configured default platforms, dropping any
// unrecognized entries.
func (c *Config) Platforms() []model.Platform {
	platforms := make([]model.Platform, 0, len(c.Install.DefaultPlatforms))
	for _, name := range c.Install.DefaultPlatforms {
		if p, err := model.ParsePlatform(name); err == nil {
			platforms = append(platforms, p)
		}
	}
	if len(platforms) == 0 {
		platforms = []model.Platform{model.ClaudeCode}
	}
	return platforms
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// splitList splits a comma-separated list, filtering empty segments.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
