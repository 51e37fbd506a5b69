package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize reel storage",
		Long:  "Create the configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wrote, err := writeConfigIfMissing(e.configDir, e.config.DataDir)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if wrote {
				e.logger.Info("config written", "config_dir", e.configDir)
			}

			store, err := e.openStore()
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				return fmt.Errorf("finalize storage: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Reel initialized in %s\n", e.config.DataDir)
			return nil
		},
	}
}
