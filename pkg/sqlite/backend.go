// Package sqlite exposes the SQLite storage backend while keeping its
// implementation internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/reel/internal/sqlite"
	"github.com/mesh-intelligence/reel/pkg/types"
)

// Open attaches a SQLite store in config.DataDir. Close the store when done.
//
// Example:
//
//	store, err := sqlite.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".reel-db",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(config types.Config, logger *slog.Logger) (types.Store, error) {
	b := sqlite.NewBackend(logger)
	if err := b.Attach(config); err != nil {
		return nil, err
	}
	return b, nil
}
