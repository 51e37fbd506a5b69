package editor

import "github.com/mesh-intelligence/reel/pkg/types"

// KeyframePatch lists keyframe fields to change. Nil fields are left alone.
type KeyframePatch struct {
	TimeMs    *int64   `json:"time_ms,omitempty"`
	PositionX *float64 `json:"position_x,omitempty"`
	PositionY *float64 `json:"position_y,omitempty"`
	ScaleX    *float64 `json:"scale_x,omitempty"`
	ScaleY    *float64 `json:"scale_y,omitempty"`
	Rotation  *float64 `json:"rotation,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	Easing    *string  `json:"easing,omitempty"`
}

// AddKeyframe inserts kf into transform clip clipID and returns the new
// keyframe ID. Keyframes stay sorted by time.
func (s *Session) AddKeyframe(clipID string, kf types.Keyframe) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	t, ok := s.data.TransformClip(clipID)
	if !ok {
		return ""
	}
	s.record("Add keyframe")

	kf.KeyframeID = s.ids.NewID()
	kf.TimeMs = max(kf.TimeMs, 0)
	t.Keyframes = append(t.Keyframes, kf)
	t.SortKeyframes()
	return kf.KeyframeID
}

// UpdateKeyframe merges patch into a keyframe and re-sorts, since a time
// change can reorder keyframes.
func (s *Session) UpdateKeyframe(clipID, keyframeID string, patch KeyframePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	t, ok := s.data.TransformClip(clipID)
	if !ok {
		return
	}
	i := t.KeyframeIndex(keyframeID)
	if i < 0 {
		return
	}
	s.record("Update keyframe")

	k := &t.Keyframes[i]
	setIf(&k.TimeMs, patch.TimeMs)
	k.TimeMs = max(k.TimeMs, 0)
	setIf(&k.PositionX, patch.PositionX)
	setIf(&k.PositionY, patch.PositionY)
	setIf(&k.ScaleX, patch.ScaleX)
	setIf(&k.ScaleY, patch.ScaleY)
	setIf(&k.Rotation, patch.Rotation)
	setIf(&k.Opacity, patch.Opacity)
	setIf(&k.Easing, patch.Easing)
	t.SortKeyframes()
}

// DeleteKeyframe removes a keyframe. Returns types.ErrKeyframeFloor and
// changes nothing when the clip would keep fewer than two keyframes.
// Unknown clip or keyframe IDs are a no-op.
func (s *Session) DeleteKeyframe(clipID, keyframeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil
	}
	t, ok := s.data.TransformClip(clipID)
	if !ok {
		return nil
	}
	i := t.KeyframeIndex(keyframeID)
	if i < 0 {
		return nil
	}
	if len(t.Keyframes) <= types.MinKeyframes {
		return types.ErrKeyframeFloor
	}
	s.record("Delete keyframe")

	t.Keyframes = append(t.Keyframes[:i], t.Keyframes[i+1:]...)
	s.deselect(keyframeID)
	return nil
}
