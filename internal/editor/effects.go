package editor

import "github.com/mesh-intelligence/reel/pkg/types"

// DefaultEffectDurationMs is the duration given to effect clips added
// without one.
const DefaultEffectDurationMs = 3000

// TimingPatch lists effect timing fields to change. Nil fields are left
// alone.
type TimingPatch struct {
	Name        *string `json:"name,omitempty"`
	StartTimeMs *int64  `json:"start_time_ms,omitempty"`
	DurationMs  *int64  `json:"duration_ms,omitempty"`
	EaseInMs    *int64  `json:"ease_in_ms,omitempty"`
	EaseOutMs   *int64  `json:"ease_out_ms,omitempty"`
	TrackID     *string `json:"track_id,omitempty"`
}

// apply merges the patch. A TrackID naming a track that does not exist is
// ignored.
func (p TimingPatch) apply(s *Session, name, trackID *string, timing *types.EffectTiming) {
	setIf(name, p.Name)
	setIf(&timing.StartTimeMs, p.StartTimeMs)
	setIf(&timing.DurationMs, p.DurationMs)
	setIf(&timing.EaseInMs, p.EaseInMs)
	setIf(&timing.EaseOutMs, p.EaseOutMs)
	timing.StartTimeMs = max(timing.StartTimeMs, 0)
	if p.TrackID != nil {
		if _, ok := s.data.Track(*p.TrackID); ok {
			*trackID = *p.TrackID
		}
	}
}

func withTimingDefaults(t types.EffectTiming) types.EffectTiming {
	if t.DurationMs <= 0 {
		t.DurationMs = DefaultEffectDurationMs
	}
	t.StartTimeMs = max(t.StartTimeMs, 0)
	return t
}

// ZoomPatch lists zoom clip fields to change.
type ZoomPatch struct {
	TimingPatch
	Scale   *float64 `json:"scale,omitempty"`
	CenterX *float64 `json:"center_x,omitempty"`
	CenterY *float64 `json:"center_y,omitempty"`
}

// BlurPatch lists blur clip fields to change.
type BlurPatch struct {
	TimingPatch
	Intensity    *float64 `json:"intensity,omitempty"`
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	CornerRadius *float64 `json:"corner_radius,omitempty"`
	Invert       *bool    `json:"invert,omitempty"`
}

// PanPatch lists pan clip fields to change.
type PanPatch struct {
	TimingPatch
	StartX *float64 `json:"start_x,omitempty"`
	StartY *float64 `json:"start_y,omitempty"`
	EndX   *float64 `json:"end_x,omitempty"`
	EndY   *float64 `json:"end_y,omitempty"`
}

// AddZoomClip places a zoom clip on its track and returns its ID. A zero
// scale means 2x and a zero center means the frame center. Returns "" if
// the track does not exist.
func (s *Session) AddZoomClip(draft types.ZoomClip) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	if _, ok := s.data.Track(draft.TrackID); !ok {
		return ""
	}
	s.record("Add zoom")

	z := draft
	z.ZoomClipID = s.ids.NewID()
	z.EffectTiming = withTimingDefaults(z.EffectTiming)
	if z.Name == "" {
		z.Name = "Zoom"
	}
	if z.Scale == 0 {
		z.Scale = 2
	}
	if z.CenterX == 0 && z.CenterY == 0 {
		z.CenterX, z.CenterY = 0.5, 0.5
	}
	s.data.ZoomClips = append(s.data.ZoomClips, z)
	s.extendDuration()
	return z.ZoomClipID
}

// UpdateZoomClip merges patch into zoom clip id.
func (s *Session) UpdateZoomClip(id string, patch ZoomPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	z, ok := s.data.ZoomClip(id)
	if !ok {
		return
	}
	s.record("Update zoom")

	patch.TimingPatch.apply(s, &z.Name, &z.TrackID, &z.EffectTiming)
	setIf(&z.Scale, patch.Scale)
	setIf(&z.CenterX, patch.CenterX)
	setIf(&z.CenterY, patch.CenterY)
	s.extendDuration()
}

// DeleteZoomClip removes zoom clip id and queues it for deletion.
func (s *Session) DeleteZoomClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	if _, ok := s.data.ZoomClip(id); !ok {
		return
	}
	s.record("Delete zoom")
	s.data.ZoomClips = removeByID(s.data.ZoomClips, id, func(z types.ZoomClip) string { return z.ZoomClipID })
	s.pending.Add(types.KindZoomClip, id)
	s.deselect(id)
}

// AddBlurClip places a blur clip on its track and returns its ID. A zero
// intensity means 20 and an empty region means the middle half of the
// frame. Returns "" if the track does not exist.
func (s *Session) AddBlurClip(draft types.BlurClip) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	if _, ok := s.data.Track(draft.TrackID); !ok {
		return ""
	}
	s.record("Add blur")

	b := draft
	b.BlurClipID = s.ids.NewID()
	b.EffectTiming = withTimingDefaults(b.EffectTiming)
	if b.Name == "" {
		b.Name = "Blur"
	}
	if b.Intensity == 0 {
		b.Intensity = 20
	}
	if b.Width == 0 || b.Height == 0 {
		b.X, b.Y, b.Width, b.Height = 0.25, 0.25, 0.5, 0.5
	}
	s.data.BlurClips = append(s.data.BlurClips, b)
	s.extendDuration()
	return b.BlurClipID
}

// UpdateBlurClip merges patch into blur clip id.
func (s *Session) UpdateBlurClip(id string, patch BlurPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	b, ok := s.data.BlurClip(id)
	if !ok {
		return
	}
	s.record("Update blur")

	patch.TimingPatch.apply(s, &b.Name, &b.TrackID, &b.EffectTiming)
	setIf(&b.Intensity, patch.Intensity)
	setIf(&b.X, patch.X)
	setIf(&b.Y, patch.Y)
	setIf(&b.Width, patch.Width)
	setIf(&b.Height, patch.Height)
	setIf(&b.CornerRadius, patch.CornerRadius)
	setIf(&b.Invert, patch.Invert)
	s.extendDuration()
}

// DeleteBlurClip removes blur clip id and queues it for deletion.
func (s *Session) DeleteBlurClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	if _, ok := s.data.BlurClip(id); !ok {
		return
	}
	s.record("Delete blur")
	s.data.BlurClips = removeByID(s.data.BlurClips, id, func(b types.BlurClip) string { return b.BlurClipID })
	s.pending.Add(types.KindBlurClip, id)
	s.deselect(id)
}

// AddPanClip places a pan clip on its track and returns its ID. Returns ""
// if the track does not exist.
func (s *Session) AddPanClip(draft types.PanClip) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	if _, ok := s.data.Track(draft.TrackID); !ok {
		return ""
	}
	s.record("Add pan")

	p := draft
	p.PanClipID = s.ids.NewID()
	p.EffectTiming = withTimingDefaults(p.EffectTiming)
	if p.Name == "" {
		p.Name = "Pan"
	}
	s.data.PanClips = append(s.data.PanClips, p)
	s.extendDuration()
	return p.PanClipID
}

// UpdatePanClip merges patch into pan clip id.
func (s *Session) UpdatePanClip(id string, patch PanPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	p, ok := s.data.PanClip(id)
	if !ok {
		return
	}
	s.record("Update pan")

	patch.TimingPatch.apply(s, &p.Name, &p.TrackID, &p.EffectTiming)
	setIf(&p.StartX, patch.StartX)
	setIf(&p.StartY, patch.StartY)
	setIf(&p.EndX, patch.EndX)
	setIf(&p.EndY, patch.EndY)
	s.extendDuration()
}

// DeletePanClip removes pan clip id and queues it for deletion.
func (s *Session) DeletePanClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	if _, ok := s.data.PanClip(id); !ok {
		return
	}
	s.record("Delete pan")
	s.data.PanClips = removeByID(s.data.PanClips, id, func(p types.PanClip) string { return p.PanClipID })
	s.pending.Add(types.KindPanClip, id)
	s.deselect(id)
}

// AddTransformClip places a transform clip on its track and returns its
// ID. Keyframe IDs are assigned and keyframes sorted; when fewer than two
// are given, identity keyframes are added at the clip's start and end.
// Returns "" if the track does not exist.
func (s *Session) AddTransformClip(draft types.TransformClip) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	if _, ok := s.data.Track(draft.TrackID); !ok {
		return ""
	}
	s.record("Add transform")

	t := draft.Clone()
	t.TransformClipID = s.ids.NewID()
	t.EffectTiming = withTimingDefaults(t.EffectTiming)
	if t.Name == "" {
		t.Name = "Transform"
	}
	for i := range t.Keyframes {
		t.Keyframes[i].KeyframeID = s.ids.NewID()
	}
	t.SortKeyframes()
	if len(t.Keyframes) < types.MinKeyframes {
		if len(t.Keyframes) == 0 || t.Keyframes[0].TimeMs > 0 {
			t.Keyframes = append(t.Keyframes, types.IdentityKeyframe(s.ids.NewID(), 0))
		} else {
			t.Keyframes = append(t.Keyframes, types.IdentityKeyframe(s.ids.NewID(), t.DurationMs))
		}
		if len(t.Keyframes) < types.MinKeyframes {
			t.Keyframes = append(t.Keyframes, types.IdentityKeyframe(s.ids.NewID(), t.DurationMs))
		}
		t.SortKeyframes()
	}
	s.data.TransformClips = append(s.data.TransformClips, t)
	s.extendDuration()
	return t.TransformClipID
}

// UpdateTransformClip merges patch into transform clip id.
func (s *Session) UpdateTransformClip(id string, patch TimingPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	t, ok := s.data.TransformClip(id)
	if !ok {
		return
	}
	s.record("Update transform")
	patch.apply(s, &t.Name, &t.TrackID, &t.EffectTiming)
	s.extendDuration()
}

// DeleteTransformClip removes transform clip id and queues it for
// deletion.
func (s *Session) DeleteTransformClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	if _, ok := s.data.TransformClip(id); !ok {
		return
	}
	s.record("Delete transform")
	s.data.TransformClips = removeByID(s.data.TransformClips, id,
		func(t types.TransformClip) string { return t.TransformClipID })
	s.pending.Add(types.KindTransformClip, id)
	s.deselect(id)
}

func removeByID[T any](items []T, id string, key func(T) string) []T {
	kept := items[:0]
	for _, it := range items {
		if key(it) != id {
			kept = append(kept, it)
		}
	}
	return kept
}
