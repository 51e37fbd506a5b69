package types

import "time"

// Output formats. Every format except FormatCustom fixes the frame size.
const (
	FormatYouTube   = "youtube"
	FormatYouTube4K = "youtube_4k"
	FormatShorts    = "shorts"
	FormatSquare    = "square"
	FormatTwitter   = "twitter"
	FormatCustom    = "custom"
)

// formatDimensions maps each fixed output format to its width and height.
var formatDimensions = map[string][2]int{
	FormatYouTube:   {1920, 1080},
	FormatYouTube4K: {3840, 2160},
	FormatShorts:    {1080, 1920},
	FormatSquare:    {1080, 1080},
	FormatTwitter:   {1280, 720},
}

// Project defaults used when a new project is created.
const (
	DefaultFrameRate  = 60
	DefaultDurationMs = 10000
)

// Project is the top-level demo being edited.
type Project struct {
	ProjectID    string    `json:"project_id"`
	Name         string    `json:"name"`
	OutputFormat string    `json:"output_format"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	FrameRate    int       `json:"frame_rate"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FormatDimensions returns the fixed width and height for format. ok is
// false for FormatCustom and for unknown formats.
func FormatDimensions(format string) (width, height int, ok bool) {
	d, ok := formatDimensions[format]
	if !ok {
		return 0, 0, false
	}
	return d[0], d[1], true
}

// ValidFormat reports whether format is a recognized output format.
func ValidFormat(format string) bool {
	if format == FormatCustom {
		return true
	}
	_, ok := formatDimensions[format]
	return ok
}

// ApplyFormat sets the output format and, for fixed formats, the frame size.
// Returns ErrInvalidFormat if the format is not recognized.
func (p *Project) ApplyFormat(format string) error {
	if !ValidFormat(format) {
		return ErrInvalidFormat
	}
	p.OutputFormat = format
	if w, h, ok := FormatDimensions(format); ok {
		p.Width = w
		p.Height = h
	}
	return nil
}
