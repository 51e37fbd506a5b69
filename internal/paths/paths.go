// Package paths resolves where reel keeps its configuration and its
// project database.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user directories on every platform.
const appName = "reel"

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".reel"
	DefaultDataDirName   = ".reel-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "REEL_CONFIG_DIR"
	EnvDataDir   = "REEL_DATA_DIR"
)

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// userDir returns $xdgVar/reel, or home/fallback.../reel on Linux, and the
// user config directory elsewhere.
func userDir(xdgVar string, fallback ...string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...), nil
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/reel (fallback ~/.config/reel)
// macOS:   ~/Library/Application Support/reel
// Windows: %APPDATA%/reel
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific data directory.
//
// Linux:   $XDG_DATA_HOME/reel (fallback ~/.local/share/reel)
// macOS and Windows: same as the config directory.
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir returns the configuration directory: flag >
// REEL_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory: flag > config.yaml value >
// REEL_DATA_DIR > $(CWD)/.reel-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, dir := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the path of config.yaml inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}
