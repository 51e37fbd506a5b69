package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/reel/internal/editor"
	"github.com/mesh-intelligence/reel/internal/ids"
	"github.com/mesh-intelligence/reel/internal/memstore"
	"github.com/mesh-intelligence/reel/pkg/types"
)

// setup returns a session that saves into a fresh in-memory store.
func setup(t *testing.T) (*editor.Session, *Reconciler, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	t.Cleanup(func() { store.Close() })
	r := New(store, nil)
	s := editor.NewSession(editor.WithIDGenerator(&ids.Sequence{Prefix: "id"}), editor.WithSaver(r))
	s.Create("Demo", types.FormatYouTube, 60)
	return s, r, store
}

func stored(t *testing.T, store types.Store, projectID string) *types.ProjectWithData {
	t.Helper()
	data, err := Load(context.Background(), store, projectID)
	require.NoError(t, err)
	return data
}

func indexOf(calls []memstore.Call, table, op, id string) int {
	for i, c := range calls {
		if c.Table == table && c.Op == op && c.ID == id {
			return i
		}
	}
	return -1
}

func TestSaveFreshProject(t *testing.T) {
	s, r, store := setup(t)
	ctx := context.Background()
	video := s.AddTrack(types.TrackVideo, "Video")
	fx := s.AddTrack(types.TrackTransform, "Motion")
	s.AddClip(types.Clip{TrackID: video, Name: "Intro", DurationMs: 4000})
	s.AddTransformClip(types.TransformClip{TrackID: fx})
	s.AddAsset(types.Asset{Name: "intro.mp4", FilePath: "/media/intro.mp4"})

	require.NoError(t, s.Save(ctx))
	assert.Equal(t, StateIdle, r.State())
	assert.NoError(t, r.LastError())

	want := s.Snapshot()
	got := stored(t, store, want.Project.ProjectID)
	assert.Equal(t, want, got)
}

func TestSaveIsIdempotent(t *testing.T) {
	s, _, store := setup(t)
	ctx := context.Background()
	track := s.AddTrack(types.TrackVideo, "")
	s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})
	require.NoError(t, s.Save(ctx))

	store.ResetCalls()
	require.NoError(t, s.Save(ctx))
	for _, c := range store.Calls() {
		assert.Equal(t, memstore.OpUpdate, c.Op, "second save only updates: %+v", c)
	}
}

func TestSaveWritesLinksAfterAllClips(t *testing.T) {
	s, _, store := setup(t)
	vt := s.AddTrack(types.TrackVideo, "")
	at := s.AddTrack(types.TrackAudio, "")
	v := s.AddClip(types.Clip{TrackID: vt, SourceType: types.SourceVideo, DurationMs: 5000, HasAudio: true})
	a := s.DetachAudio(v, at)
	require.NotEmpty(t, a)

	require.NoError(t, s.Save(context.Background()))

	calls := store.Calls()
	lastCreate := max(indexOf(calls, memstore.TableClips, memstore.OpCreate, v), indexOf(calls, memstore.TableClips, memstore.OpCreate, a))
	firstLink := indexOf(calls, memstore.TableClips, memstore.OpSetLink, v)
	require.GreaterOrEqual(t, firstLink, 0)
	assert.Greater(t, firstLink, lastCreate)

	data := stored(t, store, s.Snapshot().Project.ProjectID)
	gv, _ := data.Clip(v)
	ga, _ := data.Clip(a)
	assert.True(t, gv.LinkedTo(a))
	assert.True(t, ga.LinkedTo(v))
}

func TestSaveDeletesLinkedPair(t *testing.T) {
	s, _, store := setup(t)
	ctx := context.Background()
	vt := s.AddTrack(types.TrackVideo, "")
	at := s.AddTrack(types.TrackAudio, "")
	v := s.AddClip(types.Clip{TrackID: vt, SourceType: types.SourceVideo, DurationMs: 5000, HasAudio: true})
	a := s.DetachAudio(v, at)
	require.NoError(t, s.Save(ctx))
	store.ResetCalls()

	s.DeleteClip(v)
	require.NoError(t, s.Save(ctx))

	assert.True(t, s.PendingDeletions().IsEmpty())
	data := stored(t, store, s.Snapshot().Project.ProjectID)
	assert.Empty(t, data.Clips)

	calls := store.Calls()
	for _, id := range []string{v, a} {
		unlink := indexOf(calls, memstore.TableClips, memstore.OpSetLink, id)
		del := indexOf(calls, memstore.TableClips, memstore.OpDelete, id)
		require.GreaterOrEqual(t, unlink, 0, "link of %s cleared", id)
		assert.Less(t, unlink, del, "link of %s cleared before delete", id)
	}
}

func TestSaveDeleteAudioKeepsMutedVideo(t *testing.T) {
	s, _, store := setup(t)
	ctx := context.Background()
	vt := s.AddTrack(types.TrackVideo, "")
	at := s.AddTrack(types.TrackAudio, "")
	v := s.AddClip(types.Clip{TrackID: vt, SourceType: types.SourceVideo, DurationMs: 5000, HasAudio: true})
	a := s.DetachAudio(v, at)
	require.NoError(t, s.Save(ctx))

	s.DeleteClip(a)
	require.NoError(t, s.Save(ctx))

	data := stored(t, store, s.Snapshot().Project.ProjectID)
	require.Len(t, data.Clips, 1)
	assert.Equal(t, v, data.Clips[0].ClipID)
	assert.True(t, data.Clips[0].Muted)
	assert.Nil(t, data.Clips[0].LinkedClipID)
}

func TestSaveDeletesChildrenBeforeTrack(t *testing.T) {
	s, _, store := setup(t)
	ctx := context.Background()
	track := s.AddTrack(types.TrackVideo, "")
	fx := s.AddTrack(types.TrackZoom, "")
	c := s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})
	z := s.AddZoomClip(types.ZoomClip{TrackID: fx})
	require.NoError(t, s.Save(ctx))
	store.ResetCalls()

	s.DeleteTrack(track)
	s.DeleteTrack(fx)
	require.NoError(t, s.Save(ctx))
	assert.True(t, s.PendingDeletions().IsEmpty())

	calls := store.Calls()
	assert.Less(t, indexOf(calls, memstore.TableClips, memstore.OpDelete, c), indexOf(calls, memstore.TableTracks, memstore.OpDelete, track))
	assert.Less(t, indexOf(calls, memstore.TableZoomClips, memstore.OpDelete, z), indexOf(calls, memstore.TableTracks, memstore.OpDelete, fx))

	data := stored(t, store, s.Snapshot().Project.ProjectID)
	assert.Empty(t, data.Tracks)
	assert.Empty(t, data.Clips)
	assert.Empty(t, data.ZoomClips)
}

func TestSaveClipMovedOffDeletedTrack(t *testing.T) {
	s, _, store := setup(t)
	ctx := context.Background()
	old := s.AddTrack(types.TrackVideo, "")
	keep := s.AddTrack(types.TrackVideo, "")
	c := s.AddClip(types.Clip{TrackID: old, DurationMs: 1000})
	require.NoError(t, s.Save(ctx))

	s.MoveClip(c, keep, 0)
	s.DeleteTrack(old)
	require.NoError(t, s.Save(ctx))

	assert.True(t, s.PendingDeletions().IsEmpty())
	data := stored(t, store, s.Snapshot().Project.ProjectID)
	require.Len(t, data.Tracks, 1)
	require.Len(t, data.Clips, 1)
	assert.Equal(t, keep, data.Clips[0].TrackID)
}

func TestSaveSweepsOrphansOfDeletedTrack(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	r := New(store, nil)

	data := &types.ProjectWithData{
		Project: types.Project{ProjectID: "p1", Name: "Demo"},
		Tracks:  []types.Track{{TrackID: "t1", ProjectID: "p1", Type: types.TrackVideo}},
		Clips:   []types.Clip{{ClipID: "c1", TrackID: "t1", DurationMs: 1000}},
	}
	require.NoError(t, r.Save(ctx, data, nil))

	// The track is queued but the clip on it was never queued.
	pending := types.NewPendingDeletions()
	pending.Add(types.KindTrack, "t1")
	data.Tracks, data.Clips = nil, nil
	require.NoError(t, r.Save(ctx, data, pending))

	assert.True(t, pending.IsEmpty())
	_, err := store.Clips().Get(ctx, "c1")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = store.Tracks().Get(ctx, "t1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSaveMissingDeletionIsNotFatal(t *testing.T) {
	s, _, _ := setup(t)
	track := s.AddTrack(types.TrackVideo, "")
	clip := s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})
	s.DeleteClip(clip)

	// The clip was never saved, so the store has nothing to delete.
	require.NoError(t, s.Save(context.Background()))
	assert.True(t, s.PendingDeletions().IsEmpty())
}

func TestSaveFailureKeepsLedger(t *testing.T) {
	s, r, store := setup(t)
	ctx := context.Background()
	track := s.AddTrack(types.TrackVideo, "")
	doomed := s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})
	clip := s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})
	require.NoError(t, s.Save(ctx))

	s.DeleteClip(doomed)
	name := "renamed"
	s.UpdateClip(clip, editor.ClipPatch{Name: &name})
	boom := errors.New("disk full")
	store.FailOn(memstore.TableClips, memstore.OpUpdate, clip, boom)

	err := s.Save(ctx)
	require.ErrorIs(t, err, types.ErrSaveFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateError, r.State())
	assert.True(t, s.PendingDeletions().Has(types.KindClip, doomed))
	assert.True(t, s.Dirty())

	store.FailOn(memstore.TableClips, memstore.OpUpdate, clip, nil)
	require.NoError(t, s.Save(ctx))
	assert.Equal(t, StateIdle, r.State())
	assert.True(t, s.PendingDeletions().IsEmpty())

	got, err := store.Clips().Get(ctx, clip)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestSaveProjectFailureAborts(t *testing.T) {
	s, _, store := setup(t)
	store.FailOn(memstore.TableProjects, memstore.OpUpdate, "", errors.New("offline"))
	s.AddTrack(types.TrackVideo, "")

	err := s.Save(context.Background())
	require.ErrorIs(t, err, types.ErrSaveFailed)
	assert.Equal(t, 1, len(store.Calls()), "nothing written after the project fails")
}

func TestSaveRefusedDeletionStaysQueued(t *testing.T) {
	s, _, store := setup(t)
	ctx := context.Background()
	track := s.AddTrack(types.TrackZoom, "")
	z := s.AddZoomClip(types.ZoomClip{TrackID: track})
	require.NoError(t, s.Save(ctx))

	store.FailOn(memstore.TableZoomClips, memstore.OpDelete, z, errors.New("locked"))
	s.DeleteZoomClip(z)
	require.NoError(t, s.Save(ctx))
	assert.Equal(t, []string{z}, s.PendingDeletions().IDs(types.KindZoomClip))

	store.FailOn(memstore.TableZoomClips, memstore.OpDelete, z, nil)
	require.NoError(t, s.Save(ctx))
	assert.True(t, s.PendingDeletions().IsEmpty())
}

func TestSaveAfterUndoConverges(t *testing.T) {
	s, _, store := setup(t)
	ctx := context.Background()
	track := s.AddTrack(types.TrackVideo, "")
	clip := s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})
	require.NoError(t, s.Save(ctx))

	require.True(t, s.Undo())
	require.NoError(t, s.Save(ctx))
	_, err := store.Clips().Get(ctx, clip)
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.True(t, s.Redo())
	require.NoError(t, s.Save(ctx))
	_, err = store.Clips().Get(ctx, clip)
	assert.NoError(t, err)
}

func TestSaveTransformDeletion(t *testing.T) {
	s, _, store := setup(t)
	ctx := context.Background()
	track := s.AddTrack(types.TrackTransform, "")
	tr := s.AddTransformClip(types.TransformClip{TrackID: track})
	kf := s.AddKeyframe(tr, types.Keyframe{TimeMs: 1000, Rotation: 90})
	require.NoError(t, s.Save(ctx))

	got, err := store.TransformClips().Get(ctx, tr)
	require.NoError(t, err)
	require.Len(t, got.Keyframes, 3)
	assert.Equal(t, kf, got.Keyframes[1].KeyframeID)

	s.DeleteTransformClip(tr)
	require.NoError(t, s.Save(ctx))
	_, err = store.TransformClips().Get(ctx, tr)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

// blockingStore stalls project updates until released.
type blockingStore struct {
	*memstore.Store
	started chan struct{}
	release chan struct{}
}

type blockingProjects struct {
	types.Table[types.Project]
	b *blockingStore
}

func (p blockingProjects) Update(ctx context.Context, id string, v types.Project) (types.Project, error) {
	close(p.b.started)
	<-p.b.release
	return p.Table.Update(ctx, id, v)
}

func (b *blockingStore) Projects() types.Table[types.Project] {
	return blockingProjects{Table: b.Store.Projects(), b: b}
}

func TestSaveInProgress(t *testing.T) {
	store := &blockingStore{Store: memstore.New(), started: make(chan struct{}), release: make(chan struct{})}
	r := New(store, nil)
	data := &types.ProjectWithData{Project: types.Project{ProjectID: "p1", Name: "Demo"}}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = r.Save(context.Background(), data, nil)
	}()

	<-store.started
	assert.Equal(t, StateSaving, r.State())
	assert.ErrorIs(t, r.Save(context.Background(), data, nil), types.ErrSaveInProgress)

	close(store.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, StateIdle, r.State())
}

func TestSaveCancelled(t *testing.T) {
	s, r, _ := setup(t)
	s.AddTrack(types.TrackVideo, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Save(ctx)
	require.ErrorIs(t, err, types.ErrSaveFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateError, r.State())
}

func TestLoadSortsKeyframes(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	_, err := store.Projects().Create(ctx, types.Project{ProjectID: "p1"})
	require.NoError(t, err)
	_, err = store.Tracks().Create(ctx, types.Track{TrackID: "t1", ProjectID: "p1", Type: types.TrackTransform})
	require.NoError(t, err)
	_, err = store.TransformClips().Create(ctx, types.TransformClip{
		TransformClipID: "x1",
		TrackID:         "t1",
		Keyframes:       []types.Keyframe{{KeyframeID: "k2", TimeMs: 900}, {KeyframeID: "k1", TimeMs: 100}},
	})
	require.NoError(t, err)

	data, err := Load(ctx, store, "p1")
	require.NoError(t, err)
	require.Len(t, data.TransformClips, 1)
	assert.Equal(t, "k1", data.TransformClips[0].Keyframes[0].KeyframeID)

	_, err = Load(ctx, store, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	projects, err := ListProjects(ctx, store)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "saving", StateSaving.String())
	assert.Equal(t, "error", StateError.String())
}
