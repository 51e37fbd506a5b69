package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reel/internal/editor"
	"github.com/mesh-intelligence/reel/internal/logging"
	"github.com/mesh-intelligence/reel/internal/memstore"
	"github.com/mesh-intelligence/reel/internal/reconcile"
	reelsqlite "github.com/mesh-intelligence/reel/pkg/sqlite"
	"github.com/mesh-intelligence/reel/pkg/types"
)

// openStore opens the configured backend. The caller must Close it.
func (e *env) openStore() (types.Store, error) {
	switch e.config.Backend {
	case types.BackendMemory:
		return memstore.New(), nil
	default:
		store, err := reelsqlite.Open(e.config, e.logger)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return store, nil
	}
}

// newSession builds a session that saves through a reconciler over store.
func (e *env) newSession(store types.Store) (*editor.Session, *reconcile.Reconciler) {
	r := reconcile.New(store, e.logger)
	s := editor.NewSession(
		editor.WithSaver(r),
		editor.WithLogger(e.logger),
		editor.WithHistoryLimit(e.config.GetHistoryLimit()),
	)
	return s, r
}

// resolveProject returns the --project flag, or the only stored project.
func resolveProject(ctx context.Context, store types.Store) (string, error) {
	if flags.project != "" {
		return flags.project, nil
	}
	projects, err := reconcile.ListProjects(ctx, store)
	if err != nil {
		return "", err
	}
	switch len(projects) {
	case 0:
		return "", usageError("no projects; create one with 'reel project new'")
	case 1:
		return projects[0].ProjectID, nil
	default:
		return "", usageError("%d projects stored; pick one with --project", len(projects))
	}
}

// withProject loads the resolved project into a fresh session and runs fn.
// When fn leaves the session dirty the project is saved.
func (e *env) withProject(cmd *cobra.Command, fn func(s *editor.Session) error) error {
	ctx := cmd.Context()
	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := resolveProject(ctx, store)
	if err != nil {
		return err
	}
	data, err := reconcile.Load(ctx, store, id)
	if err != nil {
		return err
	}

	e.logger = logging.WithProjectID(e.logger, id)
	s, _ := e.newSession(store)
	s.Open(data)
	if err := fn(s); err != nil {
		return err
	}
	if !s.Dirty() {
		return nil
	}
	if err := s.Save(ctx); err != nil {
		return fmt.Errorf("save project %s: %w", id, err)
	}
	return nil
}

// output writes v as indented JSON in --json mode and text otherwise.
func output(cmd *cobra.Command, v any, text string) error {
	if flags.jsonMode {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, types.ErrNotFound)
}
