package editor

import "github.com/mesh-intelligence/reel/pkg/types"

// RenameProject sets the project name.
func (s *Session) RenameProject(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil || name == "" || s.data.Project.Name == name {
		return
	}
	s.record("Rename project")
	s.data.Project.Name = name
}

// SetFormat switches the output format. Fixed formats also set the frame
// size. Unknown formats are ignored.
func (s *Session) SetFormat(format string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil || !types.ValidFormat(format) {
		return
	}
	s.record("Change format")
	_ = s.data.Project.ApplyFormat(format)
}

// SetDimensions sets a custom frame size and switches the format to
// custom. Non-positive sizes are ignored.
func (s *Session) SetDimensions(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil || width <= 0 || height <= 0 {
		return
	}
	s.record("Change dimensions")
	s.data.Project.OutputFormat = types.FormatCustom
	s.data.Project.Width = width
	s.data.Project.Height = height
}

// SetFrameRate sets the project frame rate. Non-positive rates are ignored.
func (s *Session) SetFrameRate(fps int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil || fps <= 0 || s.data.Project.FrameRate == fps {
		return
	}
	s.record("Change frame rate")
	s.data.Project.FrameRate = fps
}

// SetDuration sets the project duration. It never drops below the end of
// the last clip or effect clip.
func (s *Session) SetDuration(durationMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	durationMs = max(durationMs, s.data.ContentEndMs())
	if durationMs == s.data.Project.DurationMs {
		return
	}
	s.record("Change duration")
	s.data.Project.DurationMs = durationMs
	s.view.CurrentTimeMs = clampTime(s.view.CurrentTimeMs, durationMs)
}

// SetBackground replaces the project background, keeping its ID.
func (s *Session) SetBackground(bg types.Background) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	s.record("Change background")
	if s.data.Background != nil {
		bg.BackgroundID = s.data.Background.BackgroundID
	} else if bg.BackgroundID == "" {
		bg.BackgroundID = s.ids.NewID()
	}
	bg.ProjectID = s.data.Project.ProjectID
	s.data.Background = &bg
}

// AddAsset registers a media file with the project and returns its ID.
func (s *Session) AddAsset(a types.Asset) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ""
	}
	s.record("Add asset")
	a.AssetID = s.ids.NewID()
	a.ProjectID = s.data.Project.ProjectID
	s.data.Assets = append(s.data.Assets, a)
	return a.AssetID
}

// DeleteAsset removes asset id and queues it for deletion. Clips using the
// asset's file are left alone.
func (s *Session) DeleteAsset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return
	}
	if _, ok := s.data.Asset(id); !ok {
		return
	}
	s.record("Delete asset")
	s.data.Assets = removeByID(s.data.Assets, id, func(a types.Asset) string { return a.AssetID })
	s.pending.Add(types.KindAsset, id)
}
