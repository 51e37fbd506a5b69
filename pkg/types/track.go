package types

// Track types. Media clips live on video, audio and overlay tracks; each
// effect clip kind lives on a track of its own kind.
const (
	TrackVideo     = "video"
	TrackAudio     = "audio"
	TrackOverlay   = "overlay"
	TrackZoom      = "zoom"
	TrackBlur      = "blur"
	TrackPan       = "pan"
	TrackTransform = "transform"
)

var validTrackTypes = map[string]bool{
	TrackVideo:     true,
	TrackAudio:     true,
	TrackOverlay:   true,
	TrackZoom:      true,
	TrackBlur:      true,
	TrackPan:       true,
	TrackTransform: true,
}

// ValidTrackType reports whether t is a recognized track type.
func ValidTrackType(t string) bool {
	return validTrackTypes[t]
}

// Track is a timeline lane owned by a project.
type Track struct {
	TrackID   string  `json:"track_id"`
	ProjectID string  `json:"project_id"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Locked    bool    `json:"locked"`
	Visible   bool    `json:"visible"`
	Muted     bool    `json:"muted"`
	Volume    float64 `json:"volume"`
	SortOrder int     `json:"sort_order"`

	// TargetTrackID names the track this one projects onto, e.g. an audio
	// track following a video track. Nil when the track stands alone.
	TargetTrackID *string `json:"target_track_id"`
}

// Clone returns an independent copy of the track.
func (t Track) Clone() Track {
	t.TargetTrackID = cloneString(t.TargetTrackID)
	return t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}
