// Package memstore implements types.Store in memory.
//
// The store mirrors the relational backend closely enough to test the
// reconciler against it: foreign keys are checked on every write and
// delete, clips store links only through SetLink, and every call is
// recorded so tests can assert on write ordering. Faults can be injected
// per table, operation and ID.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mesh-intelligence/reel/pkg/types"
)

// ErrForeignKey is returned when a write or delete would break a foreign
// key.
var ErrForeignKey = errors.New("foreign key constraint failed")

// Table names used in recorded calls and fault injection.
const (
	TableProjects       = "projects"
	TableBackgrounds    = "backgrounds"
	TableTracks         = "tracks"
	TableClips          = "clips"
	TableZoomClips      = "zoom_clips"
	TableBlurClips      = "blur_clips"
	TablePanClips       = "pan_clips"
	TableTransformClips = "transform_clips"
	TableAssets         = "assets"
)

// Operation names used in recorded calls and fault injection.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpSetLink = "set_link"
)

// Call is one recorded mutating table call.
type Call struct {
	Table string
	Op    string
	ID    string
}

type fault struct {
	table, op, id string
}

// Store is an in-memory types.Store. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	calls  []Call
	faults map[fault]error
	closed bool

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

// New returns an empty store.
func New() *Store {
	s := &Store{faults: make(map[fault]error)}

	s.projects = newTable(s, TableProjects, func(p types.Project) string { return p.ProjectID },
		func(p types.Project, col string) (any, bool) {
			if col == "name" {
				return p.Name, true
			}
			return nil, false
		})
	s.projects.referenced = func(id string) bool {
		return s.backgrounds.someRow(func(b types.Background) bool { return b.ProjectID == id }) ||
			s.tracks.someRow(func(t types.Track) bool { return t.ProjectID == id }) ||
			s.assets.someRow(func(a types.Asset) bool { return a.ProjectID == id })
	}

	s.backgrounds = newTable(s, TableBackgrounds, func(b types.Background) string { return b.BackgroundID }, projectColumn(func(b types.Background) string { return b.ProjectID }))
	s.backgrounds.refs = func(b types.Background) error { return s.projects.mustHave(b.ProjectID) }

	s.tracks = newTable(s, TableTracks, func(t types.Track) string { return t.TrackID },
		func(t types.Track, col string) (any, bool) {
			switch col {
			case "project_id":
				return t.ProjectID, true
			case "type":
				return t.Type, true
			}
			return nil, false
		})
	s.tracks.refs = func(t types.Track) error { return s.projects.mustHave(t.ProjectID) }
	s.tracks.referenced = func(id string) bool {
		onTrack := func(trackID string) bool { return trackID == id }
		return s.clips.someRow(func(c types.Clip) bool { return onTrack(c.TrackID) }) ||
			s.zoomClips.someRow(func(z types.ZoomClip) bool { return onTrack(z.TrackID) }) ||
			s.blurClips.someRow(func(b types.BlurClip) bool { return onTrack(b.TrackID) }) ||
			s.panClips.someRow(func(p types.PanClip) bool { return onTrack(p.TrackID) }) ||
			s.transformClips.someRow(func(t types.TransformClip) bool { return onTrack(t.TrackID) })
	}

	s.clips = &clipTable{table: newTable(s, TableClips, func(c types.Clip) string { return c.ClipID }, trackColumn(func(c types.Clip) string { return c.TrackID }))}
	s.clips.refs = func(c types.Clip) error { return s.tracks.mustHave(c.TrackID) }
	s.clips.referenced = func(id string) bool {
		return s.clips.someRow(func(c types.Clip) bool { return c.LinkedTo(id) })
	}

	s.zoomClips = newTable(s, TableZoomClips, func(z types.ZoomClip) string { return z.ZoomClipID }, trackColumn(func(z types.ZoomClip) string { return z.TrackID }))
	s.zoomClips.refs = func(z types.ZoomClip) error { return s.tracks.mustHave(z.TrackID) }
	s.blurClips = newTable(s, TableBlurClips, func(b types.BlurClip) string { return b.BlurClipID }, trackColumn(func(b types.BlurClip) string { return b.TrackID }))
	s.blurClips.refs = func(b types.BlurClip) error { return s.tracks.mustHave(b.TrackID) }
	s.panClips = newTable(s, TablePanClips, func(p types.PanClip) string { return p.PanClipID }, trackColumn(func(p types.PanClip) string { return p.TrackID }))
	s.panClips.refs = func(p types.PanClip) error { return s.tracks.mustHave(p.TrackID) }
	s.transformClips = newTable(s, TableTransformClips, func(t types.TransformClip) string { return t.TransformClipID }, trackColumn(func(t types.TransformClip) string { return t.TrackID }))
	s.transformClips.refs = func(t types.TransformClip) error { return s.tracks.mustHave(t.TrackID) }

	s.assets = newTable(s, TableAssets, func(a types.Asset) string { return a.AssetID }, projectColumn(func(a types.Asset) string { return a.ProjectID }))
	s.assets.refs = func(a types.Asset) error { return s.projects.mustHave(a.ProjectID) }
	return s
}

func projectColumn[T any](projectID func(T) string) func(T, string) (any, bool) {
	return func(v T, col string) (any, bool) {
		if col == "project_id" {
			return projectID(v), true
		}
		return nil, false
	}
}

func trackColumn[T any](trackID func(T) string) func(T, string) (any, bool) {
	return func(v T, col string) (any, bool) {
		if col == "track_id" {
			return trackID(v), true
		}
		return nil, false
	}
}

// FailOn makes the next calls of op on table for id return err until
// cleared with a nil err. An empty id matches every ID.
func (s *Store) FailOn(table, op, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := fault{table: table, op: op, id: id}
	if err == nil {
		delete(s.faults, k)
		return
	}
	s.faults[k] = err
}

// Calls returns the mutating calls recorded so far, oldest first.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// ResetCalls forgets the recorded calls.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// begin records a call and returns any injected fault. The caller holds
// s.mu.
func (s *Store) begin(table, op, id string) error {
	if s.closed {
		return types.ErrStoreDetached
	}
	s.calls = append(s.calls, Call{Table: table, Op: op, ID: id})
	if err, ok := s.faults[fault{table, op, id}]; ok {
		return err
	}
	if err, ok := s.faults[fault{table, op, ""}]; ok {
		return err
	}
	return nil
}

// Projects returns the projects table.
func (s *Store) Projects() types.Table[types.Project] { return s.projects }

// Backgrounds returns the backgrounds table.
func (s *Store) Backgrounds() types.Table[types.Background] { return s.backgrounds }

// Tracks returns the tracks table.
func (s *Store) Tracks() types.Table[types.Track] { return s.tracks }

// Clips returns the clips table.
func (s *Store) Clips() types.ClipTable { return s.clips }

// ZoomClips returns the zoom clips table.
func (s *Store) ZoomClips() types.Table[types.ZoomClip] { return s.zoomClips }

// BlurClips returns the blur clips table.
func (s *Store) BlurClips() types.Table[types.BlurClip] { return s.blurClips }

// PanClips returns the pan clips table.
func (s *Store) PanClips() types.Table[types.PanClip] { return s.panClips }

// TransformClips returns the transform clips table.
func (s *Store) TransformClips() types.Table[types.TransformClip] { return s.transformClips }

// Assets returns the assets table.
func (s *Store) Assets() types.Table[types.Asset] { return s.assets }

// GetWithData hydrates the aggregate of projectID.
func (s *Store) GetWithData(ctx context.Context, projectID string) (*types.ProjectWithData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrStoreDetached
	}
	p, ok := s.projects.rows[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, types.ErrNotFound)
	}

	out := &types.ProjectWithData{Project: p}
	for _, b := range s.backgrounds.list() {
		if b.ProjectID == projectID {
			out.Background = &b
			break
		}
	}
	onProject := make(map[string]bool)
	for _, t := range s.tracks.list() {
		if t.ProjectID == projectID {
			out.Tracks = append(out.Tracks, t.Clone())
			onProject[t.TrackID] = true
		}
	}
	slices.SortStableFunc(out.Tracks, func(a, b types.Track) int { return a.SortOrder - b.SortOrder })

	for _, c := range s.clips.list() {
		if onProject[c.TrackID] {
			out.Clips = append(out.Clips, c.Clone())
		}
	}
	out.ZoomClips = filterTrack(s.zoomClips.list(), onProject, func(z types.ZoomClip) string { return z.TrackID })
	out.BlurClips = filterTrack(s.blurClips.list(), onProject, func(b types.BlurClip) string { return b.TrackID })
	out.PanClips = filterTrack(s.panClips.list(), onProject, func(p types.PanClip) string { return p.TrackID })
	for _, t := range s.transformClips.list() {
		if onProject[t.TrackID] {
			out.TransformClips = append(out.TransformClips, t.Clone())
		}
	}
	for _, a := range s.assets.list() {
		if a.ProjectID == projectID {
			out.Assets = append(out.Assets, a)
		}
	}
	return out, nil
}

func filterTrack[T any](items []T, tracks map[string]bool, trackID func(T) string) []T {
	var out []T
	for _, it := range items {
		if tracks[trackID(it)] {
			out = append(out, it)
		}
	}
	return out
}

// Close detaches the store. Later calls return types.ErrStoreDetached.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// table is one entity table. All methods lock the owning store.
type table[T types.Entity] struct {
	s      *Store
	name   string
	rows   map[string]T
	order  []string
	key    func(T) string
	column func(T, string) (any, bool)

	// refs checks the foreign keys a row holds.
	refs func(T) error
	// referenced reports whether another row holds a foreign key to id.
	referenced func(id string) bool
}

func newTable[T types.Entity](s *Store, name string, key func(T) string, column func(T, string) (any, bool)) *table[T] {
	return &table[T]{s: s, name: name, rows: make(map[string]T), key: key, column: column}
}

func (t *table[T]) list() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) someRow(pred func(T) bool) bool {
	for _, v := range t.rows {
		if pred(v) {
			return true
		}
	}
	return false
}

func (t *table[T]) mustHave(id string) error {
	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("%s %s: %w", t.name, id, ErrForeignKey)
	}
	return nil
}

func (t *table[T]) Get(_ context.Context, id string) (T, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var zero T
	if t.s.closed {
		return zero, types.ErrStoreDetached
	}
	v, ok := t.rows[id]
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", t.name, id, types.ErrNotFound)
	}
	return v, nil
}

func (t *table[T]) Create(_ context.Context, v T) (T, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.create(v)
}

func (t *table[T]) create(v T) (T, error) {
	var zero T
	id := t.key(v)
	if err := t.s.begin(t.name, OpCreate, id); err != nil {
		return zero, err
	}
	if id == "" {
		return zero, types.ErrInvalidID
	}
	if _, ok := t.rows[id]; ok {
		return zero, fmt.Errorf("%s %s: %w", t.name, id, types.ErrDuplicateID)
	}
	if t.refs != nil {
		if err := t.refs(v); err != nil {
			return zero, err
		}
	}
	t.rows[id] = v
	t.order = append(t.order, id)
	return v, nil
}

func (t *table[T]) Update(_ context.Context, id string, v T) (T, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.update(id, v)
}

func (t *table[T]) update(id string, v T) (T, error) {
	var zero T
	if err := t.s.begin(t.name, OpUpdate, id); err != nil {
		return zero, err
	}
	if _, ok := t.rows[id]; !ok {
		return zero, fmt.Errorf("%s %s: %w", t.name, id, types.ErrNotFound)
	}
	if t.key(v) != id {
		return zero, types.ErrInvalidID
	}
	if t.refs != nil {
		if err := t.refs(v); err != nil {
			return zero, err
		}
	}
	t.rows[id] = v
	return v, nil
}

func (t *table[T]) Delete(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.begin(t.name, OpDelete, id); err != nil {
		return err
	}
	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("%s %s: %w", t.name, id, types.ErrNotFound)
	}
	if t.referenced != nil && t.referenced(id) {
		return fmt.Errorf("delete %s %s: %w", t.name, id, ErrForeignKey)
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(v string) bool { return v == id })
	return nil
}

// Fetch matches filter values against the table's filterable columns. An
// unknown column matches nothing.
func (t *table[T]) Fetch(_ context.Context, filter map[string]any) ([]T, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.closed {
		return nil, types.ErrStoreDetached
	}
	var out []T
	for _, v := range t.list() {
		if t.matches(v, filter) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (t *table[T]) matches(v T, filter map[string]any) bool {
	for col, want := range filter {
		got, ok := t.column(v, col)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// clipTable stores clip links only through SetLink.
type clipTable struct {
	*table[types.Clip]
}

func (t *clipTable) Create(_ context.Context, c types.Clip) (types.Clip, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c = c.Clone()
	c.LinkedClipID = nil
	return t.create(c)
}

func (t *clipTable) Update(_ context.Context, id string, c types.Clip) (types.Clip, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c = c.Clone()
	if prev, ok := t.rows[id]; ok {
		c.LinkedClipID = prev.LinkedClipID
	}
	return t.update(id, c)
}

func (t *clipTable) Get(ctx context.Context, id string) (types.Clip, error) {
	c, err := t.table.Get(ctx, id)
	return c.Clone(), err
}

// SetLink writes the stored link of clip id. A non-nil linkedID must name
// a stored clip.
func (t *clipTable) SetLink(_ context.Context, id string, linkedID *string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.begin(t.name, OpSetLink, id); err != nil {
		return err
	}
	c, ok := t.rows[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", t.name, id, types.ErrNotFound)
	}
	if linkedID != nil {
		if err := t.mustHave(*linkedID); err != nil {
			return err
		}
		c.LinkedClipID = types.StringPtr(*linkedID)
	} else {
		c.LinkedClipID = nil
	}
	t.rows[id] = c
	return nil
}
