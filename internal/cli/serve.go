package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reel/internal/api"
	"github.com/mesh-intelligence/reel/internal/reconcile"
)

func newServeCmd(e *env) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the current project over HTTP",
		Long:  "Open the current project in an editing session and serve it over HTTP\nuntil interrupted. Unsaved edits are saved on shutdown.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = e.config.Listen
			}
			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := resolveProject(cmd.Context(), store)
			if err != nil {
				return err
			}
			data, err := reconcile.Load(cmd.Context(), store, id)
			if err != nil {
				return err
			}
			session, r := e.newSession(store)
			session.Open(data)

			srv := api.NewServer(api.ServerConfig{
				Listen:     listen,
				Session:    session,
				Reconciler: r,
				Logger:     e.logger,
				StartTime:  time.Now(),
				Version:    Version,
			})
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				e.logger.Info("received shutdown signal", "signal", sig)
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("serve: %w", err)
				}
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				e.logger.Error("HTTP server shutdown error", "error", err)
			}
			if session.Dirty() {
				if err := session.Save(shutdownCtx); err != nil {
					return fmt.Errorf("save project %s: %w", id, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default: from config)")
	return cmd
}
