package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "mccmd", cfg.Plugin.Label)
	assert.Equal(t, ManifestFileName, cfg.Plugin.Manifest)
	assert.Equal(t, PermissionsFileName, cfg.Permissions.File)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfig_CreatesDefaultIfMissing(t *testing.T) {
	setupTestEnv(t)
	ctx := context.Background()

	cfg, err := LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	configPath, err := GetConfigPath()
	require.NoError(t, err)
	_, err = os.Stat(configPath)
	require.NoError(t, err, "default config should be written")
}

func TestLoadConfigFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("plugin:\n  label: warps\nwatch:\n  enabled: true\n  debounce: 2s\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfigFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "warps", cfg.Plugin.Label)
	assert.Equal(t, ManifestFileName, cfg.Plugin.Manifest)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFile_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("this is not valid YAML: {[}]"), 0644))

	cfg, err := LoadConfigFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(path + ".corrupted")
	require.NoError(t, err, "corrupted file should be backed up")
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644))

	_, err := LoadConfigFile(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestSaveConfigFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Plugin.Label = "warps"
	cfg.Metrics.Addr = "127.0.0.1:9464"
	require.NoError(t, SaveConfigFile(ctx, path, cfg))

	loaded, err := LoadConfigFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveConfig_Nil(t *testing.T) {
	err := SaveConfigFile(context.Background(), filepath.Join(t.TempDir(), "c.yaml"), nil)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "metrics enabled", modify: func(c *Config) { c.Metrics.Addr = ":9464" }},
		{name: "upper-case label", modify: func(c *Config) { c.Plugin.Label = "Warps" }, wantErr: "invalid plugin label"},
		{name: "empty manifest", modify: func(c *Config) { c.Plugin.Manifest = "" }, wantErr: "invalid manifest path"},
		{name: "traversal in permissions", modify: func(c *Config) { c.Permissions.File = "../perms.yaml" }, wantErr: "invalid permissions file"},
		{name: "metrics without port", modify: func(c *Config) { c.Metrics.Addr = "localhost" }, wantErr: "invalid metrics address"},
		{name: "metrics port out of range", modify: func(c *Config) { c.Metrics.Addr = ":70000" }, wantErr: "invalid metrics address"},
		{name: "metrics path", modify: func(c *Config) { c.Metrics.Addr = ":9464"; c.Metrics.Path = "metrics" }, wantErr: "metrics path"},
		{name: "debounce too small", modify: func(c *Config) { c.Watch.Debounce = time.Millisecond }, wantErr: "watch debounce"},
		{name: "log level", modify: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
