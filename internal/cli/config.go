package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/reel/internal/paths"
	"github.com/mesh-intelligence/reel/pkg/types"
)

// Config keys in config.yaml.
const (
	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeyLogLevel     = "log_level"
	cfgKeyHistoryLimit = "history_limit"
	cfgKeyListen       = "listen"
)

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	LogLevel     string `yaml:"log_level"`
	HistoryLimit int    `yaml:"history_limit"`
	Listen       string `yaml:"listen"`
}

// loadConfig reads config.yaml from configDir with viper and resolves the
// data directory. A missing config.yaml means defaults.
func loadConfig(configDir, dataDirFlag string) (types.Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyLogLevel, types.DefaultLogLevel)
	v.SetDefault(cfgKeyHistoryLimit, types.DefaultHistoryLimit)
	v.SetDefault(cfgKeyListen, types.DefaultListen)
	v.SetConfigFile(paths.ConfigFile(configDir))
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	dataDir, err := paths.ResolveDataDir(dataDirFlag, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Backend:      v.GetString(cfgKeyBackend),
		DataDir:      dataDir,
		LogLevel:     v.GetString(cfgKeyLogLevel),
		HistoryLimit: v.GetInt(cfgKeyHistoryLimit),
		Listen:       v.GetString(cfgKeyListen),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config %s: %w", paths.ConfigFile(configDir), err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left alone.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(&configFile{
		Backend:      types.BackendSQLite,
		DataDir:      dataDir,
		LogLevel:     types.DefaultLogLevel,
		HistoryLimit: types.DefaultHistoryLimit,
		Listen:       types.DefaultListen,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
