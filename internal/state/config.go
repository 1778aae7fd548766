package state

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the user configuration for mccmd.
type Config struct {
	Plugin      PluginConfig      `yaml:"plugin" json:"plugin" mapstructure:"plugin"`
	Permissions PermissionsConfig `yaml:"permissions" json:"permissions" mapstructure:"permissions"`
	Metrics     MetricsConfig     `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
	Watch       WatchConfig       `yaml:"watch" json:"watch" mapstructure:"watch"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging" mapstructure:"logging"`
}

// PluginConfig names the label manifest commands are registered under and
// the manifest file they are read from.
type PluginConfig struct {
	Label    string `yaml:"label" json:"label" mapstructure:"label"`
	Manifest string `yaml:"manifest" json:"manifest" mapstructure:"manifest"`
}

// PermissionsConfig holds the location of the permissions file.
type PermissionsConfig struct {
	File string `yaml:"file" json:"file" mapstructure:"file"`
}

// MetricsConfig holds the Prometheus endpoint configuration. An empty Addr
// disables the endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr" json:"addr" mapstructure:"addr"`
	Path string `yaml:"path" json:"path" mapstructure:"path"`
}

// WatchConfig holds manifest hot reload settings.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Debounce time.Duration `yaml:"debounce" json:"debounce" mapstructure:"debounce"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" mapstructure:"level"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Plugin: PluginConfig{
			Label:    "mccmd",
			Manifest: ManifestFileName,
		},
		Permissions: PermissionsConfig{
			File: PermissionsFileName,
		},
		Metrics: MetricsConfig{
			Addr: "",
			Path: "/metrics",
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the configuration from the default config file.
func LoadConfig(ctx context.Context) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFile(ctx, configPath)
}

// LoadConfigFile loads the configuration from path.
// If the file doesn't exist, it creates a new one with defaults.
// If the file is corrupted, it backs up the corrupted file and creates a fresh one.
func LoadConfigFile(ctx context.Context, configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfigFile(ctx, configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing keys keep their defaults.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		backupPath := configPath + ".corrupted"
		if backupErr := os.Rename(configPath, backupPath); backupErr != nil {
			return nil, fmt.Errorf("config file is corrupted and failed to create backup: %w (original error: %v)", backupErr, err)
		}

		cfg := DefaultConfig()
		if saveErr := SaveConfigFile(ctx, configPath, cfg); saveErr != nil {
			return nil, fmt.Errorf("config file was corrupted (backed up to %s), failed to save fresh config: %w (original error: %v)", backupPath, saveErr, err)
		}

		return cfg, nil
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the default config file.
func SaveConfig(ctx context.Context, cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveConfigFile(ctx, configPath, cfg)
}

// SaveConfigFile saves the configuration to path using atomic writes.
func SaveConfigFile(ctx context.Context, configPath string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := AtomicWrite(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ValidateConfig validates the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateLabel(cfg.Plugin.Label); err != nil {
		return fmt.Errorf("invalid plugin label: %w", err)
	}

	if err := ValidatePath(cfg.Plugin.Manifest); err != nil {
		return fmt.Errorf("invalid manifest path: %w", err)
	}

	if err := ValidatePath(cfg.Permissions.File); err != nil {
		return fmt.Errorf("invalid permissions file: %w", err)
	}

	if cfg.Metrics.Addr != "" {
		if err := validateListenAddr(cfg.Metrics.Addr); err != nil {
			return fmt.Errorf("invalid metrics address: %w", err)
		}
		if len(cfg.Metrics.Path) == 0 || cfg.Metrics.Path[0] != '/' {
			return fmt.Errorf("metrics path must start with '/', got %q", cfg.Metrics.Path)
		}
	}

	if cfg.Watch.Debounce < 10*time.Millisecond {
		return fmt.Errorf("watch debounce must be >= 10ms, got %v", cfg.Watch.Debounce)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	validLevel := false
	for _, level := range validLogLevels {
		if cfg.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	return nil
}

func validateListenAddr(addr string) error {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q", portStr)
	}
	return ValidatePort(port)
}
