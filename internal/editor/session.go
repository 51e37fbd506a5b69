// Package editor implements the editing session: the exclusively owned
// project aggregate and every operation that mutates it.
//
// A Session serializes all operations behind one mutex. Each mutating
// operation records a pre-mutation snapshot in the history before it
// changes anything, and operations on IDs that do not exist are silent
// no-ops. Entities removed from the aggregate are recorded in the pending
// deletions ledger until the next successful Save.
package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/reel/internal/history"
	"github.com/mesh-intelligence/reel/internal/ids"
	"github.com/mesh-intelligence/reel/internal/logging"
	"github.com/mesh-intelligence/reel/pkg/types"
)

// Saver converges a backing store to an aggregate. On success it clears
// pending; on failure pending is left untouched.
type Saver interface {
	Save(ctx context.Context, data *types.ProjectWithData, pending *types.PendingDeletions) error
}

// Session is an editing session over one project.
type Session struct {
	mu sync.Mutex

	data    *types.ProjectWithData
	pending *types.PendingDeletions
	view    ViewState
	dirty   bool

	history *history.Manager
	ids     ids.Generator
	saver   Saver
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithIDGenerator sets the generator used for new entity IDs.
func WithIDGenerator(g ids.Generator) Option {
	return func(s *Session) { s.ids = g }
}

// WithSaver sets the Saver used by Save.
func WithSaver(saver Saver) Option {
	return func(s *Session) { s.saver = saver }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logging.WithComponent(logger, "editor") }
}

// WithHistoryLimit sets the maximum number of undo entries.
func WithHistoryLimit(limit int) Option {
	return func(s *Session) { s.history = history.New(limit) }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession returns a session with no project open.
func NewSession(opts ...Option) *Session {
	s := &Session{
		pending: types.NewPendingDeletions(),
		view:    defaultViewState(),
		history: history.New(0),
		ids:     ids.UUIDGenerator{},
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new, empty project with a default background and returns
// its ID. Any project already open is discarded.
func (s *Session) Create(name, format string, frameRate int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	p := types.Project{
		ProjectID:    s.ids.NewID(),
		Name:         name,
		OutputFormat: types.FormatYouTube,
		FrameRate:    frameRate,
		DurationMs:   types.DefaultDurationMs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.FrameRate <= 0 {
		p.FrameRate = types.DefaultFrameRate
	}
	if err := p.ApplyFormat(format); err != nil {
		_ = p.ApplyFormat(types.FormatYouTube)
	}

	s.reset(&types.ProjectWithData{
		Project: p,
		Background: &types.Background{
			BackgroundID: s.ids.NewID(),
			ProjectID:    p.ProjectID,
			Type:         types.BackgroundColor,
			Color:        "#000000",
		},
	})
	s.dirty = true
	s.logger.Info("project created", "project_id", p.ProjectID)
	return p.ProjectID
}

// Open replaces the session state with a hydrated aggregate. The session
// keeps its own copy.
func (s *Session) Open(data *types.ProjectWithData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset(data.Clone())
	if s.data != nil {
		s.logger.Info("project opened", "project_id", s.data.Project.ProjectID)
	}
}

// Close discards the open project, its history and its pending deletions.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(nil)
}

func (s *Session) reset(data *types.ProjectWithData) {
	s.data = data
	s.pending = types.NewPendingDeletions()
	s.view = defaultViewState()
	s.history.Clear()
	s.dirty = false
}

// IsOpen reports whether a project is open.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data != nil
}

// Snapshot returns a deep copy of the aggregate, or nil if no project is
// open.
func (s *Session) Snapshot() *types.ProjectWithData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// PendingDeletions returns a copy of the pending deletions ledger.
func (s *Session) PendingDeletions() *types.PendingDeletions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Clone()
}

// Dirty reports whether the aggregate changed since it was opened or last
// saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// History returns the recorded undo entries, oldest first.
func (s *Session) History() []types.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// CanUndo reports whether Undo would change the aggregate.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would change the aggregate.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// record pushes the pre-mutation snapshot. The caller holds s.mu and has
// already checked that the operation will change something.
func (s *Session) record(action string) {
	s.history.Push(action, s.data)
	s.dirty = true
	s.data.Project.UpdatedAt = s.now().UTC()
	s.logger.Debug("edit", "action", action)
}

// Undo restores the aggregate captured before the most recent edit.
// Returns false if there is nothing to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return false
	}
	restored, ok := s.history.Undo(s.data)
	if !ok {
		return false
	}
	s.restore(restored)
	return true
}

// Redo reapplies the most recently undone edit.
// Returns false if there is nothing to redo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return false
	}
	restored, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restore(restored)
	return true
}

// restore swaps in a snapshot. Entities that disappear are queued for
// deletion and entities that reappear leave the ledger, so the next save
// converges the store to the restored state.
func (s *Session) restore(next *types.ProjectWithData) {
	prev := s.data
	s.data = next
	s.dirty = true
	reconcileLedger(s.pending, prev, next)
	s.view.prune(next)
}

// Save hands the aggregate and the pending deletions ledger to the Saver.
// The session lock is held for the whole save, so no edit, undo or redo can
// observe a half-saved state.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return types.ErrNoProject
	}
	if s.saver == nil {
		return types.ErrStoreDetached
	}
	if err := s.saver.Save(ctx, s.data.Clone(), s.pending); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// entityIDs lists every ID in the aggregate in aggregate order, keyed by
// ledger kind.
func entityIDs(p *types.ProjectWithData) map[string][]string {
	out := make(map[string][]string, len(types.DeletionOrder))
	if p == nil {
		return out
	}
	for _, c := range p.Clips {
		out[types.KindClip] = append(out[types.KindClip], c.ClipID)
	}
	for _, z := range p.ZoomClips {
		out[types.KindZoomClip] = append(out[types.KindZoomClip], z.ZoomClipID)
	}
	for _, b := range p.BlurClips {
		out[types.KindBlurClip] = append(out[types.KindBlurClip], b.BlurClipID)
	}
	for _, pc := range p.PanClips {
		out[types.KindPanClip] = append(out[types.KindPanClip], pc.PanClipID)
	}
	for _, t := range p.TransformClips {
		out[types.KindTransformClip] = append(out[types.KindTransformClip], t.TransformClipID)
	}
	for _, a := range p.Assets {
		out[types.KindAsset] = append(out[types.KindAsset], a.AssetID)
	}
	for _, t := range p.Tracks {
		out[types.KindTrack] = append(out[types.KindTrack], t.TrackID)
	}
	return out
}

func reconcileLedger(pending *types.PendingDeletions, prev, next *types.ProjectWithData) {
	before := entityIDs(prev)
	after := entityIDs(next)

	kept := types.NewPendingDeletions()
	for _, kind := range types.DeletionOrder {
		present := make(map[string]bool, len(after[kind]))
		for _, id := range after[kind] {
			present[id] = true
		}
		for _, id := range pending.IDs(kind) {
			if !present[id] {
				kept.Add(kind, id)
			}
		}
		for _, id := range before[kind] {
			if !present[id] {
				kept.Add(kind, id)
			}
		}
	}
	*pending = *kept
}
