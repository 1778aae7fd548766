package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ConfigDirName is the root directory name for mccmd configuration
	ConfigDirName = "mccmd"

	// File names
	ConfigFileName      = "config.yaml"
	PermissionsFileName = "permissions.yaml"
	ManifestFileName    = "commands.yaml"
	LockFileName        = "mccmd.lock"
)

// GetConfigDir returns the path to the mccmd configuration directory.
// It defaults to ~/.config/mccmd/.
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configHome, ConfigDirName), nil
}

// GetConfigPath returns the path to the main configuration file.
func GetConfigPath() (string, error) {
	return inConfigDir(ConfigFileName)
}

// GetPermissionsPath returns the default path of the permissions file.
func GetPermissionsPath() (string, error) {
	return inConfigDir(PermissionsFileName)
}

// GetManifestPath returns the default path of the command manifest.
func GetManifestPath() (string, error) {
	return inConfigDir(ManifestFileName)
}

// GetLockPath returns the path of the console instance lock.
func GetLockPath() (string, error) {
	return inConfigDir(LockFileName)
}

func inConfigDir(name string) (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, name), nil
}

// ExpandPath resolves a leading "~/" against the user's home directory.
// Relative paths are resolved against the configuration directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
	}

	if filepath.IsAbs(path) {
		return path, nil
	}
	return inConfigDir(path)
}

// InitDirs creates the configuration directory.
func InitDirs() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config dir: %w", err)
	}
	return EnsureDir(configDir)
}

// EnsureDir ensures that a directory exists, creating it if necessary.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory %s: %w", path, err)
	}
	return nil
}
