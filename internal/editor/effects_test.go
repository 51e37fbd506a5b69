package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/reel/pkg/types"
)

func mustTransform(t *testing.T, s *Session, id string) types.TransformClip {
	t.Helper()
	tc, ok := s.Snapshot().TransformClip(id)
	require.True(t, ok, "transform clip %s should exist", id)
	return *tc
}

func keyframeTimes(tc types.TransformClip) []int64 {
	var out []int64
	for _, k := range tc.Keyframes {
		out = append(out, k.TimeMs)
	}
	return out
}

func TestAddZoomClipDefaults(t *testing.T) {
	s := newTestSession(t)
	track := s.AddTrack(types.TrackZoom, "")

	id := s.AddZoomClip(types.ZoomClip{TrackID: track})
	require.NotEmpty(t, id)

	z, ok := s.Snapshot().ZoomClip(id)
	require.True(t, ok)
	assert.Equal(t, "Zoom", z.Name)
	assert.Equal(t, int64(DefaultEffectDurationMs), z.DurationMs)
	assert.Equal(t, 2.0, z.Scale)
	assert.Equal(t, 0.5, z.CenterX)
	assert.Equal(t, 0.5, z.CenterY)

	assert.Empty(t, s.AddZoomClip(types.ZoomClip{TrackID: "missing"}))
}

func TestUpdateEffectClips(t *testing.T) {
	s := newTestSession(t)
	track := s.AddTrack(types.TrackZoom, "")
	other := s.AddTrack(types.TrackBlur, "")

	zoom := s.AddZoomClip(types.ZoomClip{TrackID: track})
	blur := s.AddBlurClip(types.BlurClip{TrackID: other})
	pan := s.AddPanClip(types.PanClip{TrackID: track})

	scale := 3.0
	start := int64(12000)
	s.UpdateZoomClip(zoom, ZoomPatch{Scale: &scale, TimingPatch: TimingPatch{StartTimeMs: &start}})
	z, _ := s.Snapshot().ZoomClip(zoom)
	assert.Equal(t, 3.0, z.Scale)
	assert.Equal(t, int64(12000), z.StartTimeMs)
	assert.Equal(t, int64(15000), s.Snapshot().Project.DurationMs)

	invert := true
	missing := "missing"
	s.UpdateBlurClip(blur, BlurPatch{Invert: &invert, TimingPatch: TimingPatch{TrackID: &missing}})
	b, _ := s.Snapshot().BlurClip(blur)
	assert.True(t, b.Invert)
	assert.Equal(t, 20.0, b.Intensity)
	assert.Equal(t, other, b.TrackID, "unknown track is ignored")

	endX := 0.9
	s.UpdatePanClip(pan, PanPatch{EndX: &endX, TimingPatch: TimingPatch{TrackID: &other}})
	p, _ := s.Snapshot().PanClip(pan)
	assert.Equal(t, 0.9, p.EndX)
	assert.Equal(t, other, p.TrackID)
}

func TestDeleteEffectClips(t *testing.T) {
	s := newTestSession(t)
	track := s.AddTrack(types.TrackZoom, "")

	zoom := s.AddZoomClip(types.ZoomClip{TrackID: track})
	blur := s.AddBlurClip(types.BlurClip{TrackID: track})
	pan := s.AddPanClip(types.PanClip{TrackID: track})
	tr := s.AddTransformClip(types.TransformClip{TrackID: track})
	s.SelectZoomClip(zoom)

	s.DeleteZoomClip(zoom)
	s.DeleteBlurClip(blur)
	s.DeletePanClip(pan)
	s.DeleteTransformClip(tr)
	s.DeleteZoomClip(zoom)

	snap := s.Snapshot()
	assert.Empty(t, snap.ZoomClips)
	assert.Empty(t, snap.BlurClips)
	assert.Empty(t, snap.PanClips)
	assert.Empty(t, snap.TransformClips)
	assert.Empty(t, s.View().Selection.ZoomClipID)

	pending := s.PendingDeletions()
	assert.Equal(t, []string{zoom}, pending.IDs(types.KindZoomClip))
	assert.Equal(t, []string{blur}, pending.IDs(types.KindBlurClip))
	assert.Equal(t, []string{pan}, pending.IDs(types.KindPanClip))
	assert.Equal(t, []string{tr}, pending.IDs(types.KindTransformClip))
}

func TestAddTransformClipSeedsKeyframes(t *testing.T) {
	tests := []struct {
		name      string
		keyframes []types.Keyframe
		want      []int64
	}{
		{name: "none given", want: []int64{0, 3000}},
		{name: "one at start", keyframes: []types.Keyframe{{TimeMs: 0, ScaleX: 2, ScaleY: 2, Opacity: 1}}, want: []int64{0, 3000}},
		{name: "one in the middle", keyframes: []types.Keyframe{{TimeMs: 1500, Opacity: 1}}, want: []int64{0, 1500}},
		{name: "unsorted", keyframes: []types.Keyframe{{TimeMs: 2000}, {TimeMs: 500}, {TimeMs: 1000}}, want: []int64{500, 1000, 2000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			track := s.AddTrack(types.TrackTransform, "")

			id := s.AddTransformClip(types.TransformClip{TrackID: track, Keyframes: tt.keyframes})
			require.NotEmpty(t, id)

			tc := mustTransform(t, s, id)
			assert.Equal(t, tt.want, keyframeTimes(tc))
			seen := make(map[string]bool)
			for _, k := range tc.Keyframes {
				assert.NotEmpty(t, k.KeyframeID)
				assert.False(t, seen[k.KeyframeID], "keyframe IDs are unique")
				seen[k.KeyframeID] = true
			}
		})
	}
}

func TestAddTransformClipDoesNotAliasInput(t *testing.T) {
	s := newTestSession(t)
	track := s.AddTrack(types.TrackTransform, "")
	kfs := []types.Keyframe{{TimeMs: 100}, {TimeMs: 200}}

	id := s.AddTransformClip(types.TransformClip{TrackID: track, Keyframes: kfs})
	kfs[0].TimeMs = 9999

	assert.Equal(t, []int64{100, 200}, keyframeTimes(mustTransform(t, s, id)))
	assert.Empty(t, kfs[0].KeyframeID)
}

func TestKeyframesStaySorted(t *testing.T) {
	s := newTestSession(t)
	track := s.AddTrack(types.TrackTransform, "")
	id := s.AddTransformClip(types.TransformClip{TrackID: track, EffectTiming: types.EffectTiming{DurationMs: 4000}})

	mid := s.AddKeyframe(id, types.Keyframe{TimeMs: 2000, Opacity: 0.5})
	require.NotEmpty(t, mid)
	assert.Equal(t, []int64{0, 2000, 4000}, keyframeTimes(mustTransform(t, s, id)))

	early := s.AddKeyframe(id, types.Keyframe{TimeMs: 1000})
	assert.Equal(t, []int64{0, 1000, 2000, 4000}, keyframeTimes(mustTransform(t, s, id)))

	moved := int64(3000)
	s.UpdateKeyframe(id, early, KeyframePatch{TimeMs: &moved})
	tc := mustTransform(t, s, id)
	assert.Equal(t, []int64{0, 2000, 3000, 4000}, keyframeTimes(tc))
	assert.Equal(t, 2, tc.KeyframeIndex(early))

	rotation := 45.0
	s.UpdateKeyframe(id, mid, KeyframePatch{Rotation: &rotation})
	tc = mustTransform(t, s, id)
	assert.Equal(t, 45.0, tc.Keyframes[tc.KeyframeIndex(mid)].Rotation)
	assert.Equal(t, 0.5, tc.Keyframes[tc.KeyframeIndex(mid)].Opacity)

	assert.Empty(t, s.AddKeyframe("missing", types.Keyframe{}))
}

func TestDeleteKeyframeFloor(t *testing.T) {
	s := newTestSession(t)
	track := s.AddTrack(types.TrackTransform, "")
	id := s.AddTransformClip(types.TransformClip{TrackID: track})
	tc := mustTransform(t, s, id)
	require.Len(t, tc.Keyframes, 2)

	err := s.DeleteKeyframe(id, tc.Keyframes[0].KeyframeID)
	require.ErrorIs(t, err, types.ErrKeyframeFloor)
	assert.Len(t, mustTransform(t, s, id).Keyframes, 2)

	extra := s.AddKeyframe(id, types.Keyframe{TimeMs: 1500})
	s.SelectKeyframe(id, extra)
	require.NoError(t, s.DeleteKeyframe(id, extra))
	assert.Len(t, mustTransform(t, s, id).Keyframes, 2)
	assert.Empty(t, s.View().Selection.KeyframeID)
	assert.Equal(t, id, s.View().Selection.TransformClipID)

	assert.NoError(t, s.DeleteKeyframe(id, "missing"))
	assert.NoError(t, s.DeleteKeyframe("missing", extra))
}
