package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnv points XDG_CONFIG_HOME at a temp directory and creates the
// config directory inside it.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	require.NoError(t, InitDirs())
	return filepath.Join(tmpDir, ConfigDirName)
}

func TestGetConfigDir(t *testing.T) {
	tests := []struct {
		name        string
		xdg         string
		wantContain string
	}{
		{name: "uses XDG_CONFIG_HOME when set", xdg: "/tmp/test-config", wantContain: "/tmp/test-config/mccmd"},
		{name: "uses ~/.config when XDG_CONFIG_HOME not set", xdg: "", wantContain: ".config/mccmd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", tt.xdg)

			dir, err := GetConfigDir()
			require.NoError(t, err)
			assert.Contains(t, dir, tt.wantContain)
		})
	}
}

func TestConfigDirFiles(t *testing.T) {
	dir := setupTestEnv(t)

	tests := []struct {
		name string
		get  func() (string, error)
		want string
	}{
		{name: "config", get: GetConfigPath, want: ConfigFileName},
		{name: "permissions", get: GetPermissionsPath, want: PermissionsFileName},
		{name: "manifest", get: GetManifestPath, want: ManifestFileName},
		{name: "lock", get: GetLockPath, want: LockFileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := tt.get()
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), path)
		})
	}
}

func TestExpandPath(t *testing.T) {
	dir := setupTestEnv(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "commands.yaml", want: filepath.Join(dir, "commands.yaml")},
		{path: "/etc/mccmd/commands.yaml", want: "/etc/mccmd/commands.yaml"},
		{path: "~/plugins/commands.yaml", want: filepath.Join(home, "plugins/commands.yaml")},
		{path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ExpandPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitDirs(t *testing.T) {
	dir := setupTestEnv(t)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent.
	require.NoError(t, InitDirs())
}
