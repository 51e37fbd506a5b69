package editor

import "github.com/mesh-intelligence/reel/pkg/types"

// link writes both halves of a pair. The caller holds s.mu.
func (s *Session) link(pair types.LinkedPair) {
	a, okA := s.data.Clip(pair.A)
	b, okB := s.data.Clip(pair.B)
	if !okA || !okB || pair.A == pair.B {
		return
	}
	s.unlink(a.ClipID)
	s.unlink(b.ClipID)
	a.LinkedClipID = types.StringPtr(pair.B)
	b.LinkedClipID = types.StringPtr(pair.A)
}

// unlink clears the link of clip id and of its partner, returning the
// former partner's ID. The caller holds s.mu.
func (s *Session) unlink(id string) string {
	c, ok := s.data.Clip(id)
	if !ok || !c.IsLinked() {
		return ""
	}
	partnerID := *c.LinkedClipID
	c.LinkedClipID = nil
	if p, ok := s.data.Clip(partnerID); ok && p.LinkedTo(id) {
		p.LinkedClipID = nil
	}
	return partnerID
}

// partner returns the linked partner of c, if it exists.
func (s *Session) partner(c *types.Clip) (*types.Clip, bool) {
	if !c.IsLinked() {
		return nil, false
	}
	return s.data.Clip(*c.LinkedClipID)
}

// isAudioClip reports whether c carries only audio, either by source type
// or by living on an audio track.
func (s *Session) isAudioClip(c *types.Clip) bool {
	if c.SourceType == types.SourceAudio {
		return true
	}
	t, ok := s.data.Track(c.TrackID)
	return ok && t.Type == types.TrackAudio
}

func isVideoClip(c *types.Clip) bool {
	return c.SourceType == types.SourceVideo
}

// LinkClips pairs two clips, breaking any pairs either was part of.
func (s *Session) LinkClips(a, b string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil || a == b {
		return
	}
	ca, okA := s.data.Clip(a)
	_, okB := s.data.Clip(b)
	if !okA || !okB || ca.LinkedTo(b) {
		return
	}
	s.record("Link clips")
	s.link(types.LinkedPair{A: a, B: b})
}

// UnlinkClip breaks the pair clip id belongs to. Both clips survive.
func (s *Session) UnlinkClip(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	c, ok := s.data.Clip(id)
	if !ok || !c.IsLinked() {
		return
	}
	s.record("Unlink clip")
	s.unlink(id)
}

// LinkedPairs returns every linked pair in the project, each once.
func (s *Session) LinkedPairs() []types.LinkedPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil
	}
	var pairs []types.LinkedPair
	seen := make(map[string]bool)
	for _, c := range s.data.Clips {
		if !c.IsLinked() || seen[c.ClipID] {
			continue
		}
		other := *c.LinkedClipID
		seen[c.ClipID] = true
		seen[other] = true
		pairs = append(pairs, types.LinkedPair{A: c.ClipID, B: other})
	}
	return pairs
}

// DetachAudio copies the audio of video clip id onto an audio track as a new
// audio clip linked to the video, and mutes the video so its embedded audio
// is not heard twice. Returns the new clip ID, or "" if the clip is not a
// video clip with audio or the track does not exist.
func (s *Session) DetachAudio(id, audioTrackID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	v, ok := s.data.Clip(id)
	if !ok || !isVideoClip(v) || !v.HasAudio {
		return ""
	}
	if _, ok := s.data.Track(audioTrackID); !ok {
		return ""
	}
	s.record("Detach audio")

	audio := v.Clone()
	audio.ClipID = s.ids.NewID()
	audio.TrackID = audioTrackID
	audio.Name = v.Name + " (audio)"
	audio.SourceType = types.SourceAudio
	audio.Muted = false
	audio.LinkedClipID = nil
	s.data.Clips = append(s.data.Clips, audio)

	// The append may have moved the slice; look the video up again.
	v, _ = s.data.Clip(id)
	v.Muted = true
	s.link(types.LinkedPair{A: id, B: audio.ClipID})
	return audio.ClipID
}
