package editor

import (
	"math"

	"github.com/mesh-intelligence/reel/pkg/types"
)

// ClipPatch lists clip fields to change. Nil fields are left alone.
type ClipPatch struct {
	Name             *string           `json:"name,omitempty"`
	SourcePath       *string           `json:"source_path,omitempty"`
	SourceDurationMs *int64            `json:"source_duration_ms,omitempty"`
	StartTimeMs      *int64            `json:"start_time_ms,omitempty"`
	DurationMs       *int64            `json:"duration_ms,omitempty"`
	InPointMs        *int64            `json:"in_point_ms,omitempty"`
	OutPointMs       *int64            `json:"out_point_ms,omitempty"`
	PositionX        *float64          `json:"position_x,omitempty"`
	PositionY        *float64          `json:"position_y,omitempty"`
	Scale            *float64          `json:"scale,omitempty"`
	Rotation         *float64          `json:"rotation,omitempty"`
	Crop             *types.Crop       `json:"crop,omitempty"`
	CornerRadius     *float64          `json:"corner_radius,omitempty"`
	Opacity          *float64          `json:"opacity,omitempty"`
	Shadow           *types.Shadow     `json:"shadow,omitempty"`
	Border           *types.Border     `json:"border,omitempty"`
	Volume           *float64          `json:"volume,omitempty"`
	Muted            *bool             `json:"muted,omitempty"`
	FadeInMs         *int64            `json:"fade_in_ms,omitempty"`
	FadeOutMs        *int64            `json:"fade_out_ms,omitempty"`
	Speed            *float64          `json:"speed,omitempty"`
	FreezeFrame      *bool             `json:"freeze_frame,omitempty"`
	FreezeTimeMs     *int64            `json:"freeze_time_ms,omitempty"`
	TransitionIn     *types.Transition `json:"transition_in,omitempty"`
	TransitionOut    *types.Transition `json:"transition_out,omitempty"`
	HasAudio         *bool             `json:"has_audio,omitempty"`
}

func (p ClipPatch) apply(c *types.Clip) {
	setIf(&c.Name, p.Name)
	setIf(&c.SourcePath, p.SourcePath)
	setIf(&c.SourceDurationMs, p.SourceDurationMs)
	setIf(&c.StartTimeMs, p.StartTimeMs)
	setIf(&c.DurationMs, p.DurationMs)
	setIf(&c.InPointMs, p.InPointMs)
	setIf(&c.OutPointMs, p.OutPointMs)
	setIf(&c.PositionX, p.PositionX)
	setIf(&c.PositionY, p.PositionY)
	setIf(&c.Scale, p.Scale)
	setIf(&c.Rotation, p.Rotation)
	setIf(&c.Crop, p.Crop)
	setIf(&c.CornerRadius, p.CornerRadius)
	setIf(&c.Opacity, p.Opacity)
	setIf(&c.Shadow, p.Shadow)
	setIf(&c.Border, p.Border)
	setIf(&c.Volume, p.Volume)
	setIf(&c.Muted, p.Muted)
	setIf(&c.FadeInMs, p.FadeInMs)
	setIf(&c.FadeOutMs, p.FadeOutMs)
	setIf(&c.FreezeFrame, p.FreezeFrame)
	setIf(&c.FreezeTimeMs, p.FreezeTimeMs)
	setIf(&c.TransitionIn, p.TransitionIn)
	setIf(&c.TransitionOut, p.TransitionOut)
	setIf(&c.HasAudio, p.HasAudio)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// retime returns the duration that plays the same amount of source at
// newSpeed as duration plays at oldSpeed.
func retime(duration int64, oldSpeed, newSpeed float64) int64 {
	return int64(math.Round(float64(duration) * oldSpeed / newSpeed))
}

// extendDuration raises the project duration to cover all content. The
// caller holds s.mu.
func (s *Session) extendDuration() {
	if end := s.data.ContentEndMs(); end > s.data.Project.DurationMs {
		s.data.Project.DurationMs = end
	}
}

// withClipDefaults fills unset numeric fields of a new clip.
func withClipDefaults(c types.Clip) types.Clip {
	if c.Opacity == 0 {
		c.Opacity = 1
	}
	if c.Scale == 0 {
		c.Scale = 1
	}
	if c.Volume == 0 {
		c.Volume = 1
	}
	if c.Speed == 0 {
		c.Speed = 1
	}
	c.Speed = types.ClampSpeed(c.Speed)
	if c.SourceType == "" {
		c.SourceType = types.SourceVideo
	}
	if c.TransitionIn.Type == "" {
		c.TransitionIn.Type = types.TransitionNone
	}
	if c.TransitionOut.Type == "" {
		c.TransitionOut.Type = types.TransitionNone
	}

	// Default trim window: the source range the clip's duration plays, or
	// the whole source when no duration was given.
	if c.OutPointMs == 0 {
		if c.DurationMs > 0 {
			c.OutPointMs = c.InPointMs + int64(math.Round(float64(c.DurationMs)*c.Speed))
		} else {
			c.OutPointMs = c.SourceDurationMs
		}
	}
	if c.DurationMs == 0 && c.OutPointMs > c.InPointMs {
		c.DurationMs = int64(math.Round(float64(c.OutPointMs-c.InPointMs) / c.Speed))
	}
	if c.SourceDurationMs == 0 {
		c.SourceDurationMs = c.OutPointMs
	}
	return c
}

// AddClip places a new clip on its track and returns the new ID. Unset
// numeric fields get defaults (opacity, scale, speed and volume 1, trim
// window covering the source), and the project duration grows to cover the
// clip. Returns "" if the track does not exist or the source type is not
// recognized. Any ClipID or LinkedClipID on draft is ignored.
func (s *Session) AddClip(draft types.Clip) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	if _, ok := s.data.Track(draft.TrackID); !ok {
		return ""
	}
	if draft.SourceType != "" && !types.ValidSourceType(draft.SourceType) {
		return ""
	}
	s.record("Add clip")

	c := withClipDefaults(draft.Clone())
	c.ClipID = s.ids.NewID()
	c.LinkedClipID = nil
	if c.Name == "" {
		c.Name = "Clip"
	}
	s.data.Clips = append(s.data.Clips, c)
	s.extendDuration()
	return c.ClipID
}

// UpdateClip merges patch into clip id. A speed change is clamped to
// [types.MinSpeed, types.MaxSpeed]; on a video clip it rescales the
// duration so the clip plays the same source range, and the linked partner
// is retimed with it.
func (s *Session) UpdateClip(id string, patch ClipPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	c, ok := s.data.Clip(id)
	if !ok {
		return
	}
	s.record("Update clip")

	oldSpeed := c.Speed
	oldDuration := c.DurationMs
	patch.apply(c)

	if patch.Speed == nil {
		s.extendDuration()
		return
	}
	newSpeed := types.ClampSpeed(*patch.Speed)
	c.Speed = newSpeed
	if newSpeed == oldSpeed || !isVideoClip(c) {
		s.extendDuration()
		return
	}
	if patch.DurationMs == nil {
		c.DurationMs = retime(oldDuration, oldSpeed, newSpeed)
	}
	if p, ok := s.partner(c); ok {
		p.Speed = newSpeed
		p.DurationMs = c.DurationMs
	}
	s.extendDuration()
}

// MoveClip moves clip id to trackID at startMs. Duration and trim window
// are unchanged. The linked partner shifts by the same amount on its own
// track.
func (s *Session) MoveClip(id, trackID string, startMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	c, ok := s.data.Clip(id)
	if !ok {
		return
	}
	if _, ok := s.data.Track(trackID); !ok {
		return
	}
	startMs = max(startMs, 0)
	if c.TrackID == trackID && c.StartTimeMs == startMs {
		return
	}
	s.record("Move clip")

	delta := startMs - c.StartTimeMs
	c.TrackID = trackID
	c.StartTimeMs = startMs
	if p, ok := s.partner(c); ok {
		p.StartTimeMs = max(p.StartTimeMs+delta, 0)
	}
	s.extendDuration()
}

// TrimClip sets the trim window of clip id and its duration to
// outMs - inMs. The linked partner gets the same window. A window that is
// empty, inverted or starts before the source is ignored.
func (s *Session) TrimClip(id string, inMs, outMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	c, ok := s.data.Clip(id)
	if !ok || inMs < 0 || outMs <= inMs {
		return
	}
	s.record("Trim clip")

	trim := func(c *types.Clip) {
		c.InPointMs = inMs
		c.OutPointMs = outMs
		c.DurationMs = outMs - inMs
	}
	trim(c)
	if p, ok := s.partner(c); ok {
		trim(p)
	}
	s.extendDuration()
}

// SplitClip cuts clip id at atMs and returns the ID of the new second half.
// The original clip keeps the first half. The second half resumes the
// source where the first stops, honoring speed. A linked partner is split
// with the same timeline values and its second half is linked to the new
// clip; the original halves keep their link. Returns "" and changes nothing
// unless atMs lies strictly inside the clip.
func (s *Session) SplitClip(id string, atMs int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	c, ok := s.data.Clip(id)
	if !ok || atMs <= c.StartTimeMs || atMs >= c.EndTimeMs() {
		return ""
	}
	s.record("Split clip")

	first := atMs - c.StartTimeMs
	second := c.DurationMs - first
	inPoint := c.InPointMs + int64(math.Round(float64(first)*c.Speed))

	split := func(c *types.Clip) types.Clip {
		tail := c.Clone()
		tail.ClipID = s.ids.NewID()
		tail.Name = c.Name + " (2)"
		tail.StartTimeMs = atMs
		tail.DurationMs = second
		tail.InPointMs = inPoint
		tail.LinkedClipID = nil

		c.DurationMs = first
		c.OutPointMs = inPoint
		return tail
	}

	tail := split(c)
	var partnerTail *types.Clip
	if p, ok := s.partner(c); ok {
		pt := split(p)
		partnerTail = &pt
	}

	s.data.Clips = append(s.data.Clips, tail)
	if partnerTail != nil {
		s.data.Clips = append(s.data.Clips, *partnerTail)
		s.link(types.LinkedPair{A: tail.ClipID, B: partnerTail.ClipID})
	}
	return tail.ClipID
}

// DuplicateClip copies clip id to start right after it and returns the
// copy's ID. The copy is not linked to anything.
func (s *Session) DuplicateClip(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	c, ok := s.data.Clip(id)
	if !ok {
		return ""
	}
	s.record("Duplicate clip")

	dup := c.Clone()
	dup.ClipID = s.ids.NewID()
	dup.Name = c.Name + " (copy)"
	dup.StartTimeMs = c.StartTimeMs + c.DurationMs
	dup.LinkedClipID = nil
	s.data.Clips = append(s.data.Clips, dup)
	s.extendDuration()
	return dup.ClipID
}

// DeleteClip removes clip id and queues it for deletion. When the clip is
// the audio half of an audio/video pair, the video survives unlinked and
// muted, so its embedded audio stays silent. Any other partner is removed
// and queued as well.
func (s *Session) DeleteClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	c, ok := s.data.Clip(id)
	if !ok {
		return
	}
	s.record("Delete clip")

	removed := []string{id}
	if p, ok := s.partner(c); ok {
		if s.isAudioClip(c) && isVideoClip(p) {
			p.Muted = true
			s.unlink(id)
		} else {
			removed = append(removed, p.ClipID)
		}
	}
	s.removeClips(removed...)
}

// removeClips drops clips, queues them for deletion, clears links from
// surviving clips and clears selections. A surviving video clip whose audio
// partner is removed is muted. The caller holds s.mu.
func (s *Session) removeClips(ids ...string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	for i := range s.data.Clips {
		c := &s.data.Clips[i]
		if gone[c.ClipID] || !c.IsLinked() || !gone[*c.LinkedClipID] {
			continue
		}
		if p, ok := s.data.Clip(*c.LinkedClipID); ok && s.isAudioClip(p) && isVideoClip(c) {
			c.Muted = true
		}
		c.LinkedClipID = nil
	}

	kept := s.data.Clips[:0]
	for _, c := range s.data.Clips {
		if gone[c.ClipID] {
			s.pending.Add(types.KindClip, c.ClipID)
			continue
		}
		kept = append(kept, c)
	}
	s.data.Clips = kept
	s.deselect(ids...)
}
