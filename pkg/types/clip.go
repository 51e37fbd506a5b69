package types

import "math"

// Clip source types.
const (
	SourceVideo = "video"
	SourceImage = "image"
	SourceAudio = "audio"
)

// ValidSourceType reports whether t is a recognized clip source type.
func ValidSourceType(t string) bool {
	return t == SourceVideo || t == SourceImage || t == SourceAudio
}

// Speed bounds for clip retiming.
const (
	MinSpeed = 0.25
	MaxSpeed = 4.0
)

// Transition types.
const (
	TransitionNone  = "none"
	TransitionFade  = "fade"
	TransitionSlide = "slide"
	TransitionZoom  = "zoom"
)

// Transition describes how a clip enters or leaves the timeline.
type Transition struct {
	Type       string `json:"type"`
	DurationMs int64  `json:"duration_ms"`
}

// Crop insets, as fractions of the source frame.
type Crop struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Shadow is the drop shadow drawn behind a clip.
type Shadow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Border is the outline drawn around a clip.
type Border struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
}

// Clip is a placed, trimmed reference to a media source on a track.
//
// The trim window and the timeline duration are coupled through Speed:
// the amount of source consumed is DurationMs × Speed, starting at
// InPointMs.
type Clip struct {
	ClipID           string  `json:"clip_id"`
	TrackID          string  `json:"track_id"`
	Name             string  `json:"name"`
	SourcePath       string  `json:"source_path"`
	SourceType       string  `json:"source_type"`
	SourceDurationMs int64   `json:"source_duration_ms"`
	StartTimeMs      int64   `json:"start_time_ms"`
	DurationMs       int64   `json:"duration_ms"`
	InPointMs        int64   `json:"in_point_ms"`
	OutPointMs       int64   `json:"out_point_ms"`
	PositionX        float64 `json:"position_x"`
	PositionY        float64 `json:"position_y"`
	Scale            float64 `json:"scale"`
	Rotation         float64 `json:"rotation"`
	Crop             Crop    `json:"crop"`
	CornerRadius     float64 `json:"corner_radius"`
	Opacity          float64 `json:"opacity"`
	Shadow           Shadow  `json:"shadow"`
	Border           Border  `json:"border"`
	Volume           float64 `json:"volume"`
	Muted            bool    `json:"muted"`
	FadeInMs         int64   `json:"fade_in_ms"`
	FadeOutMs        int64   `json:"fade_out_ms"`
	Speed            float64 `json:"speed"`
	FreezeFrame      bool    `json:"freeze_frame"`
	FreezeTimeMs     int64   `json:"freeze_time_ms"`

	TransitionIn  Transition `json:"transition_in"`
	TransitionOut Transition `json:"transition_out"`

	// LinkedClipID points at the other half of a linked pair. Both halves
	// always point at each other while both exist.
	LinkedClipID *string `json:"linked_clip_id"`
	HasAudio     bool    `json:"has_audio"`
}

// EndTimeMs returns the timeline position where the clip ends.
func (c Clip) EndTimeMs() int64 {
	return c.StartTimeMs + c.DurationMs
}

// IsLinked reports whether the clip belongs to a linked pair.
func (c Clip) IsLinked() bool {
	return c.LinkedClipID != nil && *c.LinkedClipID != ""
}

// LinkedTo reports whether the clip links to id.
func (c Clip) LinkedTo(id string) bool {
	return c.LinkedClipID != nil && *c.LinkedClipID == id
}

// Clone returns an independent copy of the clip.
func (c Clip) Clone() Clip {
	c.LinkedClipID = cloneString(c.LinkedClipID)
	return c
}

// ClampSpeed limits speed to [MinSpeed, MaxSpeed]. NaN means normal speed.
func ClampSpeed(speed float64) float64 {
	if math.IsNaN(speed) {
		return 1
	}
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}

// LinkedPair names the two clips of a linked pair. The editor links and
// unlinks clips only through pairs so both pointers change together.
type LinkedPair struct {
	A string
	B string
}

// Other returns the member of the pair that is not id, or "" if id is not
// a member.
func (p LinkedPair) Other(id string) string {
	switch id {
	case p.A:
		return p.B
	case p.B:
		return p.A
	}
	return ""
}

// Contains reports whether id is a member of the pair.
func (p LinkedPair) Contains(id string) bool {
	return id != "" && (p.A == id || p.B == id)
}
