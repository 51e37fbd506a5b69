package editor

import "github.com/mesh-intelligence/reel/pkg/types"

// TrackPatch lists track fields to change. Nil fields are left alone.
type TrackPatch struct {
	Name          *string  `json:"name,omitempty"`
	Locked        *bool    `json:"locked,omitempty"`
	Visible       *bool    `json:"visible,omitempty"`
	Muted         *bool    `json:"muted,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
	SortOrder     *int     `json:"sort_order,omitempty"`
	TargetTrackID *string  `json:"target_track_id,omitempty"`
}

// AddTrack appends a track of the given type and returns its ID. The track
// is visible, at full volume, and sorted after every existing track.
// Returns "" for an unknown track type.
func (s *Session) AddTrack(trackType, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil || !types.ValidTrackType(trackType) {
		return ""
	}
	s.record("Add track")

	order := 0
	for _, t := range s.data.Tracks {
		order = max(order, t.SortOrder+1)
	}
	if name == "" {
		name = trackType
	}
	t := types.Track{
		TrackID:   s.ids.NewID(),
		ProjectID: s.data.Project.ProjectID,
		Type:      trackType,
		Name:      name,
		Visible:   true,
		Volume:    1,
		SortOrder: order,
	}
	s.data.Tracks = append(s.data.Tracks, t)
	return t.TrackID
}

// UpdateTrack merges patch into track id. An empty TargetTrackID clears the
// target; a target naming the track itself or an unknown track is ignored.
func (s *Session) UpdateTrack(id string, patch TrackPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	t, ok := s.data.Track(id)
	if !ok {
		return
	}
	s.record("Update track")

	setIf(&t.Name, patch.Name)
	setIf(&t.Locked, patch.Locked)
	setIf(&t.Visible, patch.Visible)
	setIf(&t.Muted, patch.Muted)
	setIf(&t.Volume, patch.Volume)
	setIf(&t.SortOrder, patch.SortOrder)
	if patch.TargetTrackID != nil {
		target := *patch.TargetTrackID
		switch {
		case target == "":
			t.TargetTrackID = nil
		case target == id:
		default:
			if _, ok := s.data.Track(target); ok {
				t.TargetTrackID = types.StringPtr(target)
			}
		}
	}
}

// DeleteTrack removes track id with every clip and effect clip on it, and
// queues all of them for deletion. Links from surviving clips to removed
// clips are cleared, as are target references from other tracks.
func (s *Session) DeleteTrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	if _, ok := s.data.Track(id); !ok {
		return
	}
	s.record("Delete track")

	var clipIDs []string
	for _, c := range s.data.Clips {
		if c.TrackID == id {
			clipIDs = append(clipIDs, c.ClipID)
		}
	}
	s.removeClips(clipIDs...)

	s.data.ZoomClips = removeOnTrack(s, s.data.ZoomClips, id, types.KindZoomClip,
		func(z types.ZoomClip) (string, string) { return z.ZoomClipID, z.TrackID })
	s.data.BlurClips = removeOnTrack(s, s.data.BlurClips, id, types.KindBlurClip,
		func(b types.BlurClip) (string, string) { return b.BlurClipID, b.TrackID })
	s.data.PanClips = removeOnTrack(s, s.data.PanClips, id, types.KindPanClip,
		func(p types.PanClip) (string, string) { return p.PanClipID, p.TrackID })
	s.data.TransformClips = removeOnTrack(s, s.data.TransformClips, id, types.KindTransformClip,
		func(t types.TransformClip) (string, string) { return t.TransformClipID, t.TrackID })

	kept := s.data.Tracks[:0]
	for _, t := range s.data.Tracks {
		if t.TrackID == id {
			continue
		}
		if t.TargetTrackID != nil && *t.TargetTrackID == id {
			t.TargetTrackID = nil
		}
		kept = append(kept, t)
	}
	s.data.Tracks = kept
	s.pending.Add(types.KindTrack, id)
	s.deselect(id)
}

// removeOnTrack filters out the effect clips on trackID, queueing and
// deselecting each. The caller holds s.mu.
func removeOnTrack[T any](s *Session, clips []T, trackID, kind string, key func(T) (id, track string)) []T {
	kept := clips[:0]
	for _, c := range clips {
		id, track := key(c)
		if track == trackID {
			s.pending.Add(kind, id)
			s.deselect(id)
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
