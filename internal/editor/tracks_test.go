package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/reel/pkg/types"
)

func TestAddTrack(t *testing.T) {
	s := newTestSession(t)

	v := s.AddTrack(types.TrackVideo, "Main")
	a := s.AddTrack(types.TrackAudio, "")
	assert.Empty(t, s.AddTrack("subtitle", "Subs"))

	snap := s.Snapshot()
	require.Len(t, snap.Tracks, 2)

	tv, _ := snap.Track(v)
	ta, _ := snap.Track(a)
	assert.Equal(t, "Main", tv.Name)
	assert.Equal(t, types.TrackAudio, ta.Name)
	assert.True(t, tv.Visible)
	assert.Equal(t, 1.0, tv.Volume)
	assert.Equal(t, snap.Project.ProjectID, tv.ProjectID)
	assert.Less(t, tv.SortOrder, ta.SortOrder)
}

func TestUpdateTrackTarget(t *testing.T) {
	s := newTestSession(t)
	video := s.AddTrack(types.TrackVideo, "")
	zoom := s.AddTrack(types.TrackZoom, "")

	tests := []struct {
		name   string
		target string
		want   *string
	}{
		{name: "valid target", target: video, want: types.StringPtr(video)},
		{name: "self ignored", target: zoom, want: types.StringPtr(video)},
		{name: "unknown ignored", target: "missing", want: types.StringPtr(video)},
		{name: "empty clears", target: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.UpdateTrack(zoom, TrackPatch{TargetTrackID: &tt.target})
			tr, _ := s.Snapshot().Track(zoom)
			assert.Equal(t, tt.want, tr.TargetTrackID)
		})
	}
}

func TestUpdateTrackFields(t *testing.T) {
	s := newTestSession(t)
	id := s.AddTrack(types.TrackAudio, "Music")

	locked := true
	volume := 0.3
	s.UpdateTrack(id, TrackPatch{Locked: &locked, Volume: &volume})

	tr, _ := s.Snapshot().Track(id)
	assert.True(t, tr.Locked)
	assert.Equal(t, 0.3, tr.Volume)
	assert.Equal(t, "Music", tr.Name)
}

func TestDeleteTrackCascades(t *testing.T) {
	s := newTestSession(t)
	doomed := s.AddTrack(types.TrackVideo, "Doomed")
	keep := s.AddTrack(types.TrackVideo, "Keep")
	zoomTrack := s.AddTrack(types.TrackZoom, "")

	c1 := s.AddClip(types.Clip{TrackID: doomed, DurationMs: 1000})
	c2 := s.AddClip(types.Clip{TrackID: doomed, StartTimeMs: 1000, DurationMs: 1000})
	survivor := s.AddClip(types.Clip{TrackID: keep, DurationMs: 1000})
	s.LinkClips(c1, survivor)
	zoom := s.AddZoomClip(types.ZoomClip{TrackID: doomed})
	otherZoom := s.AddZoomClip(types.ZoomClip{TrackID: zoomTrack})
	s.UpdateTrack(zoomTrack, TrackPatch{TargetTrackID: &doomed})
	s.SelectTrack(doomed)

	s.DeleteTrack(doomed)

	snap := s.Snapshot()
	_, ok := snap.Track(doomed)
	assert.False(t, ok)
	assert.False(t, hasClip(s, c1))
	assert.False(t, hasClip(s, c2))
	assert.True(t, hasClip(s, survivor))
	assert.Nil(t, mustClip(t, s, survivor).LinkedClipID)
	_, ok = snap.ZoomClip(zoom)
	assert.False(t, ok)
	_, ok = snap.ZoomClip(otherZoom)
	assert.True(t, ok)

	zt, _ := snap.Track(zoomTrack)
	assert.Nil(t, zt.TargetTrackID)
	assert.Empty(t, s.View().Selection.TrackID)

	pending := s.PendingDeletions()
	assert.Equal(t, []string{doomed}, pending.IDs(types.KindTrack))
	assert.ElementsMatch(t, []string{c1, c2}, pending.IDs(types.KindClip))
	assert.Equal(t, []string{zoom}, pending.IDs(types.KindZoomClip))
}

func TestDeleteAudioTrackMutesVideo(t *testing.T) {
	s := newTestSession(t)
	v, a := linkedAV(t, s)

	s.DeleteTrack(mustClip(t, s, a).TrackID)

	video := mustClip(t, s, v)
	assert.True(t, video.Muted)
	assert.Nil(t, video.LinkedClipID)
}
