package types

import "sort"

// MinKeyframes is the number of keyframes a transform clip always keeps:
// its implicit start and end.
const MinKeyframes = 2

// EffectTiming is the timeline placement shared by every effect clip kind.
type EffectTiming struct {
	StartTimeMs int64 `json:"start_time_ms"`
	DurationMs  int64 `json:"duration_ms"`
	EaseInMs    int64 `json:"ease_in_ms"`
	EaseOutMs   int64 `json:"ease_out_ms"`
}

// EndTimeMs returns the timeline position where the effect ends.
func (e EffectTiming) EndTimeMs() int64 {
	return e.StartTimeMs + e.DurationMs
}

// ZoomClip magnifies the frame around a center point.
type ZoomClip struct {
	ZoomClipID string `json:"zoom_clip_id"`
	TrackID    string `json:"track_id"`
	Name       string `json:"name"`
	EffectTiming
	Scale   float64 `json:"scale"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

// BlurClip blurs a rectangular region, or everything outside it when
// Invert is set.
type BlurClip struct {
	BlurClipID string `json:"blur_clip_id"`
	TrackID    string `json:"track_id"`
	Name       string `json:"name"`
	EffectTiming
	Intensity    float64 `json:"intensity"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	CornerRadius float64 `json:"corner_radius"`
	Invert       bool    `json:"invert"`
}

// PanClip moves the viewport from a start point to an end point.
type PanClip struct {
	PanClipID string `json:"pan_clip_id"`
	TrackID   string `json:"track_id"`
	Name      string `json:"name"`
	EffectTiming
	StartX float64 `json:"start_x"`
	StartY float64 `json:"start_y"`
	EndX   float64 `json:"end_x"`
	EndY   float64 `json:"end_y"`
}

// Keyframe is a timestamped transform snapshot within a TransformClip.
// TimeMs is relative to the clip start.
type Keyframe struct {
	KeyframeID string  `json:"keyframe_id"`
	TimeMs     int64   `json:"time_ms"`
	PositionX  float64 `json:"position_x"`
	PositionY  float64 `json:"position_y"`
	ScaleX     float64 `json:"scale_x"`
	ScaleY     float64 `json:"scale_y"`
	Rotation   float64 `json:"rotation"`
	Opacity    float64 `json:"opacity"`
	Easing     string  `json:"easing,omitempty"`
}

// TransformClip animates a transform through an ordered list of keyframes.
type TransformClip struct {
	TransformClipID string `json:"transform_clip_id"`
	TrackID         string `json:"track_id"`
	Name            string `json:"name"`
	EffectTiming
	Keyframes []Keyframe `json:"keyframes"`
}

// Clone returns an independent copy of the transform clip.
func (t TransformClip) Clone() TransformClip {
	if t.Keyframes != nil {
		t.Keyframes = append([]Keyframe(nil), t.Keyframes...)
	}
	return t
}

// SortKeyframes orders the keyframes ascending by TimeMs. Keyframes with
// equal times keep their relative order.
func (t *TransformClip) SortKeyframes() {
	sort.SliceStable(t.Keyframes, func(i, j int) bool {
		return t.Keyframes[i].TimeMs < t.Keyframes[j].TimeMs
	})
}

// KeyframeIndex returns the index of the keyframe with the given ID, or -1.
func (t TransformClip) KeyframeIndex(id string) int {
	for i, k := range t.Keyframes {
		if k.KeyframeID == id {
			return i
		}
	}
	return -1
}

// IdentityKeyframe returns a keyframe at timeMs with no transform applied.
func IdentityKeyframe(id string, timeMs int64) Keyframe {
	return Keyframe{
		KeyframeID: id,
		TimeMs:     timeMs,
		ScaleX:     1,
		ScaleY:     1,
		Opacity:    1,
	}
}
