// Package cli implements the reel command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reel/internal/logging"
	"github.com/mesh-intelligence/reel/internal/paths"
	"github.com/mesh-intelligence/reel/pkg/types"
)

// Version is the reel release version.
const Version = "0.1.0"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	project   string
	logLevel  string
	jsonMode  bool
}

var flags rootFlags

// env is what PersistentPreRunE resolves for every subcommand.
type env struct {
	configDir string
	config    types.Config
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "reel" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:          "reel",
		Short:        "Timeline editor for screen-recorded demos",
		Long:         "Reel edits demo projects: tracks, clips, effects and keyframes,\nsaved to a local SQLite database.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.reel-db)")
	root.PersistentFlags().StringVarP(&flags.project, "project", "p", "", "project ID (default: the only stored project)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(e))
	root.AddCommand(newProjectCmd(e))
	root.AddCommand(newTrackCmd(e))
	root.AddCommand(newClipCmd(e))
	root.AddCommand(newServeCmd(e))

	return root
}

// load resolves directories, config and the logger.
func (e *env) load(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir, flags.dataDir)
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	e.configDir = configDir
	e.config = cfg
	e.logger = logging.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel)
	return nil
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrKeyframeFloor):
		return exitUserError
	default:
		return exitSysError
	}
}
