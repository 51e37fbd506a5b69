package types

// Asset is a media file imported into a project. Clips refer to assets by
// path, not by foreign key.
type Asset struct {
	AssetID       string `json:"asset_id"`
	ProjectID     string `json:"project_id"`
	Name          string `json:"name"`
	FilePath      string `json:"file_path"`
	Type          string `json:"type"`
	DurationMs    int64  `json:"duration_ms"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	ThumbnailPath string `json:"thumbnail_path"`
	FileSize      int64  `json:"file_size"`
	HasAudio      bool   `json:"has_audio"`
}

// Background types.
const (
	BackgroundColor    = "color"
	BackgroundGradient = "gradient"
	BackgroundPattern  = "pattern"
	BackgroundMedia    = "media"
	BackgroundImageURL = "image_url"
)

// Background is the canvas drawn behind all tracks. Each project has one.
// Only the fields relevant to Type are meaningful.
type Background struct {
	BackgroundID  string  `json:"background_id"`
	ProjectID     string  `json:"project_id"`
	Type          string  `json:"type"`
	Color         string  `json:"color"`
	GradientFrom  string  `json:"gradient_from"`
	GradientTo    string  `json:"gradient_to"`
	GradientAngle float64 `json:"gradient_angle"`
	Pattern       string  `json:"pattern"`
	MediaPath     string  `json:"media_path"`
	ImageURL      string  `json:"image_url"`
	Blur          float64 `json:"blur"`
}
