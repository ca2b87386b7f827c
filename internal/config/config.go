// Package config provides configuration management for the composer CLI.
//
// Without an explicit path, $COMPOSER_CONFIG is read when set; otherwise
// the first composer.yaml found in ., $XDG_CONFIG_HOME/composer,
// ~/.config/composer and /etc/composer.
//
// Every setting can be overridden from the environment with the
// COMPOSER_ prefix, e.g. COMPOSER_DATABASE_PATH or COMPOSER_LAYOUT_NODE_WIDTH.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"composer/internal/layout"
	"composer/pkg/logger"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "COMPOSER"

// Config is the CLI configuration
type Config struct {
	Version  int            `mapstructure:"version" yaml:"version"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Layout   layout.Options `mapstructure:"layout" yaml:"layout"`
	Logging  logger.Config  `mapstructure:"logging" yaml:"logging"`
}

// CatalogConfig locates the service catalog
type CatalogConfig struct {
	Path     string        `mapstructure:"path" yaml:"path"`
	Watch    bool          `mapstructure:"watch" yaml:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// DatabaseConfig locates the inventory store
type DatabaseConfig struct {
	Path              string `mapstructure:"path" yaml:"path"`
	CompressThreshold int    `mapstructure:"compress_threshold" yaml:"compress_threshold"`
}

// OutputConfig controls what the CLI prints
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // json, yaml
}

// Load discovers and loads the config file, or returns defaults if none
// is found. The second result is the file read.
func Load() (*Config, string, error) {
	v := newViper()
	path, err := readDiscovered(v)
	if err != nil {
		return nil, path, err
	}
	return decode(v, path)
}

// LoadFromPath loads config from a specific path. An empty path yields
// the defaults with environment overrides applied.
func LoadFromPath(path string) (*Config, string, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v, path)
}

func decode(v *viper.Viper, path string) (*Config, string, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults register every key so environment overrides reach Unmarshal
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.watch", d.Catalog.Watch)
	v.SetDefault("catalog.debounce", d.Catalog.Debounce)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.compress_threshold", d.Database.CompressThreshold)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("layout.node_width", d.Layout.NodeWidth)
	v.SetDefault("layout.base_height", d.Layout.BaseHeight)
	v.SetDefault("layout.row_height", d.Layout.RowHeight)
	v.SetDefault("layout.max_rows", d.Layout.MaxRows)
	v.SetDefault("layout.column_spacing", d.Layout.ColumnSpacing)
	v.SetDefault("layout.row_gap", d.Layout.RowGap)
	v.SetDefault("layout.embedded_offset_x", d.Layout.EmbeddedOffsetX)
	v.SetDefault("layout.start_x", d.Layout.StartX)
	v.SetDefault("layout.start_y", d.Layout.StartY)
	v.SetDefault("layout.step", d.Layout.Step)
	v.SetDefault("layout.max_attempts", d.Layout.MaxAttempts)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)

	return v
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Catalog: CatalogConfig{
			Path:     "./catalog.yaml",
			Debounce: 500 * time.Millisecond,
		},
		Database: DatabaseConfig{
			Path:              "./composer.db",
			CompressThreshold: 4 * 1024,
		},
		Output:  OutputConfig{Format: "json"},
		Layout:  layout.DefaultOptions(),
		Logging: logger.Config{Level: "info"},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Version == 0 {
		c.Version = d.Version
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = d.Catalog.Path
	}
	if c.Catalog.Debounce <= 0 {
		c.Catalog.Debounce = d.Catalog.Debounce
	}
	if c.Database.CompressThreshold <= 0 {
		c.Database.CompressThreshold = d.Database.CompressThreshold
	}
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Catalog: %s (watch: %t)\n", c.Catalog.Path, c.Catalog.Watch)
	summary += fmt.Sprintf("Database: %s\n", c.Database.Path)
	summary += fmt.Sprintf("Output: %s, Log level: %s", c.Output.Format, c.Logging.Level)
	return summary
}
