// Package config provides configuration types, defaults, loading and
// persistence for mibstore.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjrosen/mibstore/internal/log"
	"github.com/zjrosen/mibstore/internal/tracing"
)

// EnvPrefix prefixes environment overrides, e.g. MIBSTORE_STORAGE_DB_PATH.
const EnvPrefix = "MIBSTORE"

// LocalConfigPath is checked before the user config directory.
const LocalConfigPath = ".mibstore/config.yaml"

// Config holds all configuration options for mibstore.
type Config struct {
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Tracing  tracing.Config `mapstructure:"tracing" yaml:"tracing"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// RegistryConfig selects container types by colon separated preference
// lists and defines extra aliases.
type RegistryConfig struct {
	DefaultType string `mapstructure:"default_type" yaml:"default_type"`
	IndexType   string `mapstructure:"index_type" yaml:"index_type"`
	// Aliases maps a new name to a colon list of existing names.
	// Keys are lowercased by viper.
	Aliases map[string]string `mapstructure:"aliases" yaml:"aliases,omitempty"`
}

// StorageConfig locates the expression table stores.
type StorageConfig struct {
	DBPath   string `mapstructure:"db_path" yaml:"db_path"`
	ConfPath string `mapstructure:"conf_path" yaml:"conf_path,omitempty"` // config-line export target
}

// LogConfig controls the file logger.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
	Level   string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// MetricsConfig controls the agent's HTTP endpoint.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Registry: RegistryConfig{
			DefaultType: "table_container:binary_array",
			IndexType:   "linked_list:sorted_singly_linked_list",
		},
		Storage: StorageConfig{
			DBPath: DefaultDBPath(),
		},
		Log: LogConfig{
			Enabled: false,
			Path:    DefaultLogPath(),
			Level:   "info",
		},
		Tracing: tc,
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9464",
		},
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mibstore")
}

// DefaultDBPath returns ~/.mibstore/mibstore.db, or a relative path when
// the home directory is unknown.
func DefaultDBPath() string {
	return filepath.Join(dataDir(), "mibstore.db")
}

// DefaultLogPath returns ~/.mibstore/mibstore.log.
func DefaultLogPath() string {
	return filepath.Join(dataDir(), "mibstore.log")
}

// DefaultTracesFilePath returns ~/.mibstore/traces/traces.jsonl.
func DefaultTracesFilePath() string {
	return filepath.Join(dataDir(), "traces", "traces.jsonl")
}

// DefaultConfigPath returns ~/.config/mibstore/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return LocalConfigPath
	}
	return filepath.Join(home, ".config", "mibstore", "config.yaml")
}

// SetDefaults registers every default with v so environment overrides and
// Unmarshal see all keys.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("registry.default_type", d.Registry.DefaultType)
	v.SetDefault("registry.index_type", d.Registry.IndexType)
	v.SetDefault("registry.aliases", map[string]string{})
	v.SetDefault("storage.db_path", d.Storage.DBPath)
	v.SetDefault("storage.conf_path", d.Storage.ConfPath)
	v.SetDefault("log.enabled", d.Log.Enabled)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// Load reads the config file at path, or looks one up when path is empty:
// .mibstore/config.yaml first, then ~/.config/mibstore/config.yaml. A
// missing file in the lookup is not an error. It returns the config and the
// file actually used ("" when none).
func Load(path string) (Config, string, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case path != "":
		v.SetConfigFile(path)
	case fileExists(LocalConfigPath):
		v.SetConfigFile(LocalConfigPath)
	default:
		v.AddConfigPath(filepath.Dir(DefaultConfigPath()))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	cfg.Storage.DBPath = ExpandHome(cfg.Storage.DBPath)
	cfg.Storage.ConfPath = ExpandHome(cfg.Storage.ConfPath)
	cfg.Log.Path = ExpandHome(cfg.Log.Path)
	cfg.Tracing.FilePath = ExpandHome(cfg.Tracing.FilePath)

	used := v.ConfigFileUsed()
	if used != "" && !fileExists(used) {
		used = ""
	}
	return cfg, used, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if err := ValidateTypeList("registry.default_type", c.Registry.DefaultType); err != nil {
		return err
	}
	if err := ValidateTypeList("registry.index_type", c.Registry.IndexType); err != nil {
		return err
	}
	for alias, target := range c.Registry.Aliases {
		if alias == "" || strings.Contains(alias, ":") {
			return fmt.Errorf("registry.aliases: invalid alias name %q", alias)
		}
		if err := ValidateTypeList("registry.aliases."+alias, target); err != nil {
			return err
		}
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if _, ok := log.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", c.Log.Level)
	}
	if c.Log.Enabled && c.Log.Path == "" {
		return fmt.Errorf("log.path is required when logging is enabled")
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTypeList checks that list names at least one container type.
func ValidateTypeList(key, list string) error {
	for _, name := range strings.Split(list, ":") {
		if name != "" {
			return nil
		}
	}
	return fmt.Errorf("%s must name at least one container type, got %q", key, list)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0 || tc.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}
	switch tc.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
	}
	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}
