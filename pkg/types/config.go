package types

import "errors"

// Config holds backend selection and editor parameters.
type Config struct {
	Backend      string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir      string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	LogLevel     string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	HistoryLimit int    `json:"history_limit" yaml:"history_limit" mapstructure:"history_limit"`
	Listen       string `json:"listen" yaml:"listen" mapstructure:"listen"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config defaults.
const (
	DefaultHistoryLimit = 50
	DefaultLogLevel     = "info"
	DefaultListen       = "127.0.0.1:8790"
)

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrHistoryLimitInvalid = errors.New("history limit must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMemory: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. A zero HistoryLimit means the default.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.HistoryLimit < 0 {
		return ErrHistoryLimitInvalid
	}
	return nil
}

// GetHistoryLimit returns the configured history limit or the default.
func (c Config) GetHistoryLimit() int {
	if c.HistoryLimit <= 0 {
		return DefaultHistoryLimit
	}
	return c.HistoryLimit
}
