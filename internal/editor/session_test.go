package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/reel/internal/ids"
	"github.com/mesh-intelligence/reel/pkg/types"
)

type fakeSaver struct {
	err     error
	calls   int
	data    *types.ProjectWithData
	deleted map[string][]string
}

func (f *fakeSaver) Save(_ context.Context, data *types.ProjectWithData, pending *types.PendingDeletions) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.data = data
	f.deleted = make(map[string][]string)
	for _, kind := range types.DeletionOrder {
		if got := pending.IDs(kind); len(got) > 0 {
			f.deleted[kind] = got
		}
	}
	pending.Clear()
	return nil
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		fps        int
		wantFormat string
		wantWidth  int
		wantHeight int
		wantFPS    int
	}{
		{name: "youtube", format: types.FormatYouTube, fps: 60, wantFormat: types.FormatYouTube, wantWidth: 1920, wantHeight: 1080, wantFPS: 60},
		{name: "shorts", format: types.FormatShorts, fps: 30, wantFormat: types.FormatShorts, wantWidth: 1080, wantHeight: 1920, wantFPS: 30},
		{name: "unknown format", format: "vhs", fps: 0, wantFormat: types.FormatYouTube, wantWidth: 1920, wantHeight: 1080, wantFPS: types.DefaultFrameRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(WithIDGenerator(&ids.Sequence{Prefix: "id"}), WithClock(fixedClock()))
			id := s.Create("Demo", tt.format, tt.fps)
			assert.Equal(t, "id-1", id)

			snap := s.Snapshot()
			require.NotNil(t, snap)
			assert.Equal(t, tt.wantFormat, snap.Project.OutputFormat)
			assert.Equal(t, tt.wantWidth, snap.Project.Width)
			assert.Equal(t, tt.wantHeight, snap.Project.Height)
			assert.Equal(t, tt.wantFPS, snap.Project.FrameRate)
			assert.Equal(t, int64(types.DefaultDurationMs), snap.Project.DurationMs)
			require.NotNil(t, snap.Background)
			assert.Equal(t, "#000000", snap.Background.Color)
			assert.True(t, s.Dirty())
			assert.False(t, s.CanUndo())
		})
	}
}

func TestNoProjectIsNoop(t *testing.T) {
	s := NewSession()
	assert.False(t, s.IsOpen())
	assert.Nil(t, s.Snapshot())
	assert.Empty(t, s.AddTrack(types.TrackVideo, ""))
	s.DeleteClip("x")
	s.Seek(100)
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.ErrorIs(t, s.Save(context.Background()), types.ErrNoProject)
}

func TestUndoRedoRestoresSnapshots(t *testing.T) {
	s := newTestSession(t, WithClock(fixedClock()))
	track := s.AddTrack(types.TrackVideo, "")
	before := s.Snapshot()

	clip := s.AddClip(types.Clip{TrackID: track, DurationMs: 4000})
	s.SplitClip(clip, 1000)
	after := s.Snapshot()

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.Equal(t, before, s.Snapshot())
	assert.True(t, s.CanRedo())

	require.True(t, s.Redo())
	require.True(t, s.Redo())
	assert.Equal(t, after, s.Snapshot())
	assert.False(t, s.Redo())
}

func TestEditAfterUndoDropsRedo(t *testing.T) {
	s := newTestSession(t)
	track := s.AddTrack(types.TrackVideo, "")
	s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})

	require.True(t, s.Undo())
	s.AddClip(types.Clip{TrackID: track, DurationMs: 2000})
	assert.False(t, s.CanRedo())
	require.Len(t, s.Snapshot().Clips, 1)
	assert.Equal(t, int64(2000), s.Snapshot().Clips[0].DurationMs)
}

func TestHistoryLimit(t *testing.T) {
	s := newTestSession(t)
	for range 75 {
		s.AddTrack(types.TrackVideo, "")
	}
	assert.Len(t, s.History(), types.DefaultHistoryLimit)

	undos := 0
	for s.Undo() {
		undos++
	}
	assert.Equal(t, types.DefaultHistoryLimit, undos)
	assert.Len(t, s.Snapshot().Tracks, 25, "oldest reachable state")
}

func TestHistoryLimitUndoesEveryEdit(t *testing.T) {
	s := newTestSession(t)
	for range types.DefaultHistoryLimit {
		s.AddTrack(types.TrackVideo, "")
	}

	undos := 0
	for s.Undo() {
		undos++
	}
	assert.Equal(t, types.DefaultHistoryLimit, undos)
	assert.Empty(t, s.Snapshot().Tracks)

	for s.Redo() {
	}
	assert.Len(t, s.Snapshot().Tracks, types.DefaultHistoryLimit)
}

func TestUndoRequeuesAndRedoUnqueues(t *testing.T) {
	s := newTestSession(t)
	track := s.AddTrack(types.TrackVideo, "")
	clip := s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})

	s.DeleteClip(clip)
	require.True(t, s.PendingDeletions().Has(types.KindClip, clip))

	require.True(t, s.Undo())
	assert.True(t, hasClip(s, clip))
	assert.False(t, s.PendingDeletions().Has(types.KindClip, clip), "restored clip leaves the ledger")

	require.True(t, s.Redo())
	assert.False(t, hasClip(s, clip))
	assert.True(t, s.PendingDeletions().Has(types.KindClip, clip))

	// Undoing the add removes a clip that may already be stored.
	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.False(t, hasClip(s, clip))
	assert.True(t, s.PendingDeletions().Has(types.KindClip, clip))
	assert.Equal(t, 1, s.PendingDeletions().Len())
}

func TestUndoPrunesSelection(t *testing.T) {
	s := newTestSession(t)
	track := s.AddTrack(types.TrackVideo, "")
	clip := s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})
	s.SelectTrack(track)
	s.SelectClip(clip)

	require.True(t, s.Undo())
	sel := s.View().Selection
	assert.Empty(t, sel.ClipID)
	assert.Equal(t, track, sel.TrackID)
}

func TestSave(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(t, WithSaver(saver))
	track := s.AddTrack(types.TrackVideo, "")
	clip := s.AddClip(types.Clip{TrackID: track, DurationMs: 1000})
	s.DeleteClip(clip)

	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, 1, saver.calls)
	assert.Equal(t, map[string][]string{types.KindClip: {clip}}, saver.deleted)
	assert.True(t, s.PendingDeletions().IsEmpty())
	assert.False(t, s.Dirty())
	require.NotNil(t, saver.data)
	assert.Len(t, saver.data.Tracks, 1)

	// The saver receives a copy.
	saver.data.Tracks[0].Name = "changed"
	tr, _ := s.Snapshot().Track(track)
	assert.NotEqual(t, "changed", tr.Name)
}

func TestSaveFailureKeepsLedger(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk full")}
	s := newTestSession(t, WithSaver(saver))
	track := s.AddTrack(types.TrackVideo, "")
	s.DeleteTrack(track)

	err := s.Save(context.Background())
	require.Error(t, err)
	assert.True(t, s.PendingDeletions().Has(types.KindTrack, track))
	assert.True(t, s.Dirty())
}

func TestSaveWithoutSaver(t *testing.T) {
	s := newTestSession(t)
	assert.ErrorIs(t, s.Save(context.Background()), types.ErrStoreDetached)
}

func TestOpenAndClose(t *testing.T) {
	src := newTestSession(t)
	track := src.AddTrack(types.TrackVideo, "")
	src.AddClip(types.Clip{TrackID: track, DurationMs: 1000})
	data := src.Snapshot()

	s := NewSession()
	s.Open(data)
	data.Clips[0].Name = "mutated"

	assert.True(t, s.IsOpen())
	assert.False(t, s.Dirty())
	assert.False(t, s.CanUndo())
	assert.Equal(t, "Clip", s.Snapshot().Clips[0].Name)

	s.DeleteTrack(track)
	s.Close()
	assert.False(t, s.IsOpen())
	assert.True(t, s.PendingDeletions().IsEmpty())
}

func TestProjectSettings(t *testing.T) {
	s := newTestSession(t)

	s.SetFormat(types.FormatSquare)
	p := s.Snapshot().Project
	assert.Equal(t, types.FormatSquare, p.OutputFormat)
	assert.Equal(t, p.Width, p.Height)

	s.SetDimensions(1280, 720)
	p = s.Snapshot().Project
	assert.Equal(t, types.FormatCustom, p.OutputFormat)
	assert.Equal(t, 1280, p.Width)

	s.SetFrameRate(24)
	s.RenameProject("Renamed")
	p = s.Snapshot().Project
	assert.Equal(t, 24, p.FrameRate)
	assert.Equal(t, "Renamed", p.Name)

	track := s.AddTrack(types.TrackVideo, "")
	s.AddClip(types.Clip{TrackID: track, DurationMs: 15000})
	s.SetDuration(5000)
	assert.Equal(t, int64(15000), s.Snapshot().Project.DurationMs, "duration covers content")
	s.SetDuration(30000)
	assert.Equal(t, int64(30000), s.Snapshot().Project.DurationMs)
}

func TestBackgroundAndAssets(t *testing.T) {
	s := newTestSession(t)
	bgID := s.Snapshot().Background.BackgroundID

	s.SetBackground(types.Background{Type: types.BackgroundColor, Color: "#ffffff"})
	bg := s.Snapshot().Background
	assert.Equal(t, bgID, bg.BackgroundID)
	assert.Equal(t, "#ffffff", bg.Color)

	asset := s.AddAsset(types.Asset{Name: "intro.mp4", FilePath: "/media/intro.mp4"})
	require.NotEmpty(t, asset)
	s.DeleteAsset(asset)
	assert.Empty(t, s.Snapshot().Assets)
	assert.Equal(t, []string{asset}, s.PendingDeletions().IDs(types.KindAsset))
}
