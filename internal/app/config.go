package app

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/steviee/mccmd/internal/state"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. MCCMD_METRICS_ADDR for metrics.addr.
const EnvPrefix = "MCCMD"

// SetDefaults registers every config key with its default value so that
// environment overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	def := state.DefaultConfig()

	v.SetDefault("plugin.label", def.Plugin.Label)
	v.SetDefault("plugin.manifest", def.Plugin.Manifest)
	v.SetDefault("permissions.file", def.Permissions.File)
	v.SetDefault("metrics.addr", def.Metrics.Addr)
	v.SetDefault("metrics.path", def.Metrics.Path)
	v.SetDefault("watch.enabled", def.Watch.Enabled)
	v.SetDefault("watch.debounce", def.Watch.Debounce)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadConfig decodes the settings held by v, validates them and resolves
// the manifest and permissions paths against the config directory.
func LoadConfig(v *viper.Viper) (*state.Config, error) {
	cfg := state.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := state.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := CheckLabel(cfg.Plugin.Label); err != nil {
		return nil, fmt.Errorf("invalid plugin label: %w", err)
	}

	manifest, err := state.ExpandPath(cfg.Plugin.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	cfg.Plugin.Manifest = manifest

	permissions, err := state.ExpandPath(cfg.Permissions.File)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions path: %w", err)
	}
	cfg.Permissions.File = permissions

	return cfg, nil
}
