// Package sqlite implements the SQLite storage backend for reel projects.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/reel/internal/logging"
	"github.com/mesh-intelligence/reel/pkg/types"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "reel.db"

// pragmas applied to every connection.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// Backend implements types.Store on a SQLite database file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger

	projects       *table[types.Project]
	backgrounds    *table[types.Background]
	tracks         *table[types.Track]
	clips          *clipTable
	zoomClips      *table[types.ZoomClip]
	blurClips      *table[types.BlurClip]
	panClips       *table[types.PanClip]
	transformClips *table[types.TransformClip]
	assets         *table[types.Asset]
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = logging.Discard()
	}
	b := &Backend{logger: logging.WithComponent(logger, "sqlite")}
	b.projects = newTable(b, projectMapping)
	b.backgrounds = newTable(b, backgroundMapping)
	b.tracks = newTable(b, trackMapping)
	b.clips = &clipTable{newTable(b, clipMapping)}
	b.zoomClips = newTable(b, zoomClipMapping)
	b.blurClips = newTable(b, blurClipMapping)
	b.panClips = newTable(b, panClipMapping)
	b.transformClips = newTable(b, transformClipMapping)
	b.assets = newTable(b, assetMapping)
	return b
}

// Attach opens (creating if needed) DataDir/reel.db and ensures the schema.
// Existing data is kept. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := open(dbPath)
	if err != nil {
		return err
	}
	for _, ddl := range slices.Concat(schemaDDL, indexDDL) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	b.logger.Info("database opened", "path", dbPath)
	return nil
}

// open opens the database with a single connection so the pragmas hold for
// every statement.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	db := b.db
	b.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// Close implements types.Store.
func (b *Backend) Close() error {
	return b.Detach()
}

// read returns the database under the read lock.
func (b *Backend) read() (*sql.DB, func(), error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, nil, types.ErrStoreDetached
	}
	return b.db, b.mu.RUnlock, nil
}

// write returns the database under the write lock.
func (b *Backend) write() (*sql.DB, func(), error) {
	b.mu.Lock()
	if !b.attached {
		b.mu.Unlock()
		return nil, nil, types.ErrStoreDetached
	}
	return b.db, b.mu.Unlock, nil
}

func (b *Backend) Projects() types.Table[types.Project]             { return b.projects }
func (b *Backend) Backgrounds() types.Table[types.Background]       { return b.backgrounds }
func (b *Backend) Tracks() types.Table[types.Track]                 { return b.tracks }
func (b *Backend) Clips() types.ClipTable                           { return b.clips }
func (b *Backend) ZoomClips() types.Table[types.ZoomClip]           { return b.zoomClips }
func (b *Backend) BlurClips() types.Table[types.BlurClip]           { return b.blurClips }
func (b *Backend) PanClips() types.Table[types.PanClip]             { return b.panClips }
func (b *Backend) TransformClips() types.Table[types.TransformClip] { return b.transformClips }
func (b *Backend) Assets() types.Table[types.Asset]                 { return b.assets }

// GetWithData hydrates a project with everything it owns. Tracks come back
// ordered by sort order; other children in insertion order.
// Returns ErrNotFound if the project does not exist.
func (b *Backend) GetWithData(ctx context.Context, projectID string) (*types.ProjectWithData, error) {
	p, err := b.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	db, unlock, err := b.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := &types.ProjectWithData{Project: p}
	bgs, err := b.backgrounds.query(ctx, db, "WHERE project_id = ?", projectID)
	if err != nil {
		return nil, err
	}
	if len(bgs) > 0 {
		out.Background = &bgs[0]
	}

	if out.Tracks, err = b.tracks.query(ctx, db, "WHERE project_id = ?", projectID); err != nil {
		return nil, err
	}
	slices.SortStableFunc(out.Tracks, func(x, y types.Track) int { return x.SortOrder - y.SortOrder })

	const onProject = "WHERE track_id IN (SELECT track_id FROM tracks WHERE project_id = ?)"
	if out.Clips, err = b.clips.query(ctx, db, onProject, projectID); err != nil {
		return nil, err
	}
	if out.ZoomClips, err = b.zoomClips.query(ctx, db, onProject, projectID); err != nil {
		return nil, err
	}
	if out.BlurClips, err = b.blurClips.query(ctx, db, onProject, projectID); err != nil {
		return nil, err
	}
	if out.PanClips, err = b.panClips.query(ctx, db, onProject, projectID); err != nil {
		return nil, err
	}
	if out.TransformClips, err = b.transformClips.query(ctx, db, onProject, projectID); err != nil {
		return nil, err
	}
	if out.Assets, err = b.assets.query(ctx, db, "WHERE project_id = ?", projectID); err != nil {
		return nil, err
	}
	return out, nil
}
