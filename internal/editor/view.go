package editor

import "github.com/mesh-intelligence/reel/pkg/types"

// Timeline zoom bounds.
const (
	MinTimelineZoom = 0.1
	MaxTimelineZoom = 10.0
)

// Selection holds the IDs of the selected entities. At most one clip of any
// kind is selected at a time; the track selection is independent.
type Selection struct {
	TrackID         string `json:"track_id,omitempty"`
	ClipID          string `json:"clip_id,omitempty"`
	ZoomClipID      string `json:"zoom_clip_id,omitempty"`
	BlurClipID      string `json:"blur_clip_id,omitempty"`
	PanClipID       string `json:"pan_clip_id,omitempty"`
	TransformClipID string `json:"transform_clip_id,omitempty"`
	KeyframeID      string `json:"keyframe_id,omitempty"`
}

func (s *Selection) clearClips() {
	s.ClipID = ""
	s.ZoomClipID = ""
	s.BlurClipID = ""
	s.PanClipID = ""
	s.TransformClipID = ""
	s.KeyframeID = ""
}

// ViewState is the ephemeral playback and view state of a session. It is
// not part of the history and is never persisted.
type ViewState struct {
	CurrentTimeMs  int64     `json:"current_time_ms"`
	Playing        bool      `json:"playing"`
	Zoom           float64   `json:"zoom"`
	ScrollOffsetMs int64     `json:"scroll_offset_ms"`
	Selection      Selection `json:"selection"`
}

func defaultViewState() ViewState {
	return ViewState{Zoom: 1}
}

// prune drops selections of entities absent from p and clamps the playhead.
func (v *ViewState) prune(p *types.ProjectWithData) {
	if p == nil {
		*v = defaultViewState()
		return
	}
	sel := &v.Selection
	if _, ok := p.Track(sel.TrackID); !ok {
		sel.TrackID = ""
	}
	if _, ok := p.Clip(sel.ClipID); !ok {
		sel.ClipID = ""
	}
	if _, ok := p.ZoomClip(sel.ZoomClipID); !ok {
		sel.ZoomClipID = ""
	}
	if _, ok := p.BlurClip(sel.BlurClipID); !ok {
		sel.BlurClipID = ""
	}
	if _, ok := p.PanClip(sel.PanClipID); !ok {
		sel.PanClipID = ""
	}
	tc, ok := p.TransformClip(sel.TransformClipID)
	if !ok {
		sel.TransformClipID = ""
		sel.KeyframeID = ""
	} else if tc.KeyframeIndex(sel.KeyframeID) < 0 {
		sel.KeyframeID = ""
	}
	v.CurrentTimeMs = clampTime(v.CurrentTimeMs, p.Project.DurationMs)
}

func clampTime(t, duration int64) int64 {
	if t < 0 {
		return 0
	}
	if t > duration {
		return duration
	}
	return t
}

// View returns a copy of the view state.
func (s *Session) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Seek moves the playhead, clamped to [0, project duration].
func (s *Session) Seek(timeMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	s.view.CurrentTimeMs = clampTime(timeMs, s.data.Project.DurationMs)
}

// Play starts playback.
func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Playing = s.data != nil
}

// Pause stops playback.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Playing = false
}

// SetTimelineZoom sets the timeline zoom, clamped to
// [MinTimelineZoom, MaxTimelineZoom].
func (s *Session) SetTimelineZoom(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Zoom = min(max(zoom, MinTimelineZoom), MaxTimelineZoom)
}

// SetScrollOffset sets the timeline scroll position.
func (s *Session) SetScrollOffset(offsetMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ScrollOffsetMs = max(offsetMs, 0)
}

// SelectTrack selects a track. An empty or unknown ID clears the track
// selection.
func (s *Session) SelectTrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Selection.TrackID = ""
	if s.data == nil {
		return
	}
	if _, ok := s.data.Track(id); ok {
		s.view.Selection.TrackID = id
	}
}

// SelectClip selects a media clip and clears every other clip selection.
func (s *Session) SelectClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Selection.clearClips()
	if s.data == nil {
		return
	}
	if _, ok := s.data.Clip(id); ok {
		s.view.Selection.ClipID = id
	}
}

// SelectZoomClip selects a zoom clip and clears every other clip selection.
func (s *Session) SelectZoomClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Selection.clearClips()
	if s.data == nil {
		return
	}
	if _, ok := s.data.ZoomClip(id); ok {
		s.view.Selection.ZoomClipID = id
	}
}

// SelectBlurClip selects a blur clip and clears every other clip selection.
func (s *Session) SelectBlurClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Selection.clearClips()
	if s.data == nil {
		return
	}
	if _, ok := s.data.BlurClip(id); ok {
		s.view.Selection.BlurClipID = id
	}
}

// SelectPanClip selects a pan clip and clears every other clip selection.
func (s *Session) SelectPanClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Selection.clearClips()
	if s.data == nil {
		return
	}
	if _, ok := s.data.PanClip(id); ok {
		s.view.Selection.PanClipID = id
	}
}

// SelectTransformClip selects a transform clip and clears every other clip
// selection.
func (s *Session) SelectTransformClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Selection.clearClips()
	if s.data == nil {
		return
	}
	if _, ok := s.data.TransformClip(id); ok {
		s.view.Selection.TransformClipID = id
	}
}

// SelectKeyframe selects a keyframe together with its transform clip.
func (s *Session) SelectKeyframe(clipID, keyframeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	tc, ok := s.data.TransformClip(clipID)
	if !ok || tc.KeyframeIndex(keyframeID) < 0 {
		return
	}
	s.view.Selection.clearClips()
	s.view.Selection.TransformClipID = clipID
	s.view.Selection.KeyframeID = keyframeID
}

// ClearSelection clears every selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Selection = Selection{}
}

// deselect clears any selection that names one of ids. The caller holds
// s.mu.
func (s *Session) deselect(ids ...string) {
	sel := &s.view.Selection
	for _, id := range ids {
		if id == "" {
			continue
		}
		switch id {
		case sel.TrackID:
			sel.TrackID = ""
		case sel.ClipID:
			sel.ClipID = ""
		case sel.ZoomClipID:
			sel.ZoomClipID = ""
		case sel.BlurClipID:
			sel.BlurClipID = ""
		case sel.PanClipID:
			sel.PanClipID = ""
		case sel.TransformClipID:
			sel.TransformClipID = ""
			sel.KeyframeID = ""
		case sel.KeyframeID:
			sel.KeyframeID = ""
		}
	}
}
