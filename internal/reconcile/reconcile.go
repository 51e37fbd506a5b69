// Package reconcile converges a backing store to an in-memory project.
//
// A save upserts every entity of the aggregate under its client-generated
// ID and flushes the pending deletions ledger in foreign-key-safe order:
// links to doomed clips are cleared first, children are deleted before
// their parents, and clip links are written only after every clip exists.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/reel/internal/logging"
	"github.com/mesh-intelligence/reel/pkg/types"
)

// State is the phase of the reconciler.
type State int

// Reconciler states. A save moves Idle to Saving, then back to Idle on
// success or to Error on failure. Error behaves like Idle for the next save.
const (
	StateIdle State = iota
	StateSaving
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSaving:
		return "saving"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Reconciler saves aggregates to a store. It allows one save at a time.
type Reconciler struct {
	store  types.Store
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	lastErr error
}

// New returns a reconciler writing to store. A nil logger discards output.
func New(store types.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Reconciler{store: store, logger: logging.WithComponent(logger, "reconcile")}
}

// State returns the current state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastError returns the error of the most recent save, or nil.
func (r *Reconciler) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Save converges the store to data and flushes pending.
//
// Per-item failures are logged and the save continues; if any write
// failed, Save returns an error wrapping types.ErrSaveFailed and leaves
// pending untouched. On success pending is cleared, except for deletions
// the store refused for a reason other than the row being absent; those
// stay queued for the next save. Returns types.ErrSaveInProgress if another
// save is running.
func (r *Reconciler) Save(ctx context.Context, data *types.ProjectWithData, pending *types.PendingDeletions) error {
	if data == nil {
		return types.ErrNoProject
	}
	r.mu.Lock()
	if r.state == StateSaving {
		r.mu.Unlock()
		return types.ErrSaveInProgress
	}
	r.state = StateSaving
	r.mu.Unlock()

	if pending == nil {
		pending = types.NewPendingDeletions()
	}
	run := &saveRun{
		store:   r.store,
		data:    data,
		deletes: pending.Clone(),
		logger:  logging.WithProjectID(r.logger, data.Project.ProjectID),
	}
	err := run.save(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastErr = err
	if err != nil {
		r.state = StateError
		return err
	}
	r.state = StateIdle
	pending.Clear()
	for _, d := range run.refused {
		pending.Add(d.kind, d.id)
	}
	return nil
}

type deletion struct {
	kind, id string
}

// saveRun holds the working state of one save.
type saveRun struct {
	store   types.Store
	data    *types.ProjectWithData
	deletes *types.PendingDeletions
	logger  *slog.Logger

	failures []error
	refused  []deletion
}

func (s *saveRun) fail(err error) {
	s.logger.Warn("write failed", "error", err)
	s.failures = append(s.failures, err)
}

func (s *saveRun) save(ctx context.Context) error {
	s.logger.Info("save started", "pending", s.deletes.Len())

	p := s.data.Project
	if _, err := upsert(ctx, s.store.Projects(), p.ProjectID, p); err != nil {
		return fmt.Errorf("%w: project %s: %w", types.ErrSaveFailed, p.ProjectID, err)
	}

	s.sweepDeletedTracks(ctx)
	s.clearDoomedLinks(ctx)
	for _, kind := range types.DeletionOrder {
		for _, id := range s.deletes.IDs(kind) {
			s.delete(ctx, kind, id)
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrSaveFailed, err)
	}

	if bg := s.data.Background; bg != nil {
		upsertAll(ctx, s, "background", []types.Background{*bg}, s.store.Backgrounds(),
			func(b types.Background) string { return b.BackgroundID })
	}
	upsertAll(ctx, s, types.KindTrack, s.data.Tracks, s.store.Tracks(),
		func(t types.Track) string { return t.TrackID })
	s.saveClips(ctx)
	upsertAll(ctx, s, types.KindZoomClip, s.data.ZoomClips, s.store.ZoomClips(),
		func(z types.ZoomClip) string { return z.ZoomClipID })
	upsertAll(ctx, s, types.KindBlurClip, s.data.BlurClips, s.store.BlurClips(),
		func(b types.BlurClip) string { return b.BlurClipID })
	upsertAll(ctx, s, types.KindPanClip, s.data.PanClips, s.store.PanClips(),
		func(p types.PanClip) string { return p.PanClipID })
	upsertAll(ctx, s, types.KindTransformClip, s.data.TransformClips, s.store.TransformClips(),
		func(t types.TransformClip) string { return t.TransformClipID })
	upsertAll(ctx, s, types.KindAsset, s.data.Assets, s.store.Assets(),
		func(a types.Asset) string { return a.AssetID })

	// A delete refused because another row still pointed at the target can
	// succeed once that row has been rewritten.
	s.retryRefused(ctx)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrSaveFailed, err)
	}
	if len(s.failures) > 0 {
		s.logger.Error("save failed", "failures", len(s.failures))
		return fmt.Errorf("%w: %d writes failed: %w", types.ErrSaveFailed, len(s.failures), errors.Join(s.failures...))
	}
	s.logger.Info("save finished", "refused_deletions", len(s.refused))
	return nil
}

// upsert updates the row stored under id, creating it when the store
// reports it missing.
func upsert[T types.Entity](ctx context.Context, table types.Table[T], id string, v T) (T, error) {
	got, err := table.Update(ctx, id, v)
	if err == nil || !errors.Is(err, types.ErrNotFound) {
		return got, err
	}
	return table.Create(ctx, v)
}

func upsertAll[T types.Entity](ctx context.Context, s *saveRun, kind string, items []T, table types.Table[T], key func(T) string) {
	for _, it := range items {
		id := key(it)
		if _, err := upsert(ctx, table, id, it); err != nil {
			s.fail(fmt.Errorf("upsert %s %s: %w", kind, id, err))
			continue
		}
		s.logger.Debug("upserted", "kind", kind, "id", id)
	}
}

// sweepDeletedTracks queues stored children of deleted tracks that the
// aggregate no longer holds, so no row is left pointing at a removed track.
func (s *saveRun) sweepDeletedTracks(ctx context.Context) {
	tracks := s.deletes.IDs(types.KindTrack)
	if len(tracks) == 0 {
		return
	}
	live := make(map[string]bool)
	for _, ids := range liveIDs(s.data) {
		for _, id := range ids {
			live[id] = true
		}
	}
	for _, trackID := range tracks {
		filter := map[string]any{"track_id": trackID}
		sweep[types.Clip](ctx, s, types.KindClip, s.store.Clips(), filter, live, func(c types.Clip) string { return c.ClipID })
		sweep(ctx, s, types.KindZoomClip, s.store.ZoomClips(), filter, live, func(z types.ZoomClip) string { return z.ZoomClipID })
		sweep(ctx, s, types.KindBlurClip, s.store.BlurClips(), filter, live, func(b types.BlurClip) string { return b.BlurClipID })
		sweep(ctx, s, types.KindPanClip, s.store.PanClips(), filter, live, func(p types.PanClip) string { return p.PanClipID })
		sweep(ctx, s, types.KindTransformClip, s.store.TransformClips(), filter, live, func(t types.TransformClip) string { return t.TransformClipID })
	}
}

func sweep[T types.Entity](ctx context.Context, s *saveRun, kind string, table types.Table[T], filter map[string]any, live map[string]bool, key func(T) string) {
	rows, err := table.Fetch(ctx, filter)
	if err != nil {
		s.logger.Warn("fetch failed", "kind", kind, "error", err)
		return
	}
	for _, r := range rows {
		if id := key(r); !live[id] {
			s.deletes.Add(kind, id)
		}
	}
}

// clearDoomedLinks clears the stored links of queued clips and of their
// stored partners, so deleting a clip never breaks a link foreign key.
func (s *saveRun) clearDoomedLinks(ctx context.Context) {
	queued := s.deletes.IDs(types.KindClip)
	doomed := make(map[string]bool, len(queued))
	for _, id := range queued {
		doomed[id] = true
	}
	clips := s.store.Clips()
	for _, id := range queued {
		stored, err := clips.Get(ctx, id)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			s.fail(fmt.Errorf("get clip %s: %w", id, err))
			continue
		}
		if !stored.IsLinked() {
			continue
		}
		if partner := *stored.LinkedClipID; !doomed[partner] {
			s.setLink(ctx, partner, nil)
		}
		s.setLink(ctx, id, nil)
	}
}

func (s *saveRun) setLink(ctx context.Context, id string, linked *string) {
	err := s.store.Clips().SetLink(ctx, id, linked)
	if err == nil || errors.Is(err, types.ErrNotFound) {
		return
	}
	s.fail(fmt.Errorf("set link of clip %s: %w", id, err))
}

// saveClips upserts clips without links, then writes every link that
// differs from the stored one.
func (s *saveRun) saveClips(ctx context.Context) {
	clips := s.store.Clips()
	present := make(map[string]bool, len(s.data.Clips))
	for _, c := range s.data.Clips {
		present[c.ClipID] = true
	}

	stored := make(map[string]*string, len(s.data.Clips))
	for _, c := range s.data.Clips {
		got, err := upsert[types.Clip](ctx, clips, c.ClipID, c)
		if err != nil {
			s.fail(fmt.Errorf("upsert clip %s: %w", c.ClipID, err))
			continue
		}
		stored[c.ClipID] = got.LinkedClipID
	}

	for _, c := range s.data.Clips {
		have, ok := stored[c.ClipID]
		if !ok {
			continue
		}
		want := c.LinkedClipID
		if want != nil {
			if _, saved := stored[*want]; !present[*want] || s.deletes.Has(types.KindClip, *want) || !saved {
				s.logger.Warn("dropping dangling link", "clip_id", c.ClipID, "linked_clip_id", *want)
				want = nil
			}
		}
		if sameLink(have, want) {
			continue
		}
		s.setLink(ctx, c.ClipID, want)
	}
}

func sameLink(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *saveRun) delete(ctx context.Context, kind, id string) {
	err := s.deleter(kind)(ctx, id)
	switch {
	case err == nil:
		s.logger.Debug("deleted", "kind", kind, "id", id)
	case errors.Is(err, types.ErrNotFound):
		s.logger.Debug("already deleted", "kind", kind, "id", id)
	default:
		s.logger.Warn("delete failed", "kind", kind, "id", id, "error", err)
		s.refused = append(s.refused, deletion{kind: kind, id: id})
	}
}

func (s *saveRun) retryRefused(ctx context.Context) {
	refused := s.refused
	s.refused = nil
	for _, d := range refused {
		s.delete(ctx, d.kind, d.id)
	}
}

func (s *saveRun) deleter(kind string) func(context.Context, string) error {
	switch kind {
	case types.KindClip:
		return s.store.Clips().Delete
	case types.KindZoomClip:
		return s.store.ZoomClips().Delete
	case types.KindBlurClip:
		return s.store.BlurClips().Delete
	case types.KindPanClip:
		return s.store.PanClips().Delete
	case types.KindTransformClip:
		return s.store.TransformClips().Delete
	case types.KindAsset:
		return s.store.Assets().Delete
	case types.KindTrack:
		return s.store.Tracks().Delete
	}
	return func(context.Context, string) error {
		return fmt.Errorf("kind %q: %w", kind, types.ErrTableNotFound)
	}
}

// liveIDs lists the IDs of every entity in p by kind.
func liveIDs(p *types.ProjectWithData) map[string][]string {
	out := make(map[string][]string)
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
	return out
}

// Load hydrates the aggregate of projectID from store. Keyframes come back
// sorted by time.
func Load(ctx context.Context, store types.Store, projectID string) (*types.ProjectWithData, error) {
	data, err := store.GetWithData(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	for i := range data.TransformClips {
		data.TransformClips[i].SortKeyframes()
	}
	return data, nil
}

// ListProjects returns every stored project.
func ListProjects(ctx context.Context, store types.Store) ([]types.Project, error) {
	projects, err := store.Projects().Fetch(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}
