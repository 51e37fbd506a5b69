package types

import "time"

// ProjectWithData is the whole editable aggregate: a project with its
// background, tracks, clips, effect clips and assets.
type ProjectWithData struct {
	Project        Project         `json:"project"`
	Background     *Background     `json:"background"`
	Tracks         []Track         `json:"tracks"`
	Clips          []Clip          `json:"clips"`
	ZoomClips      []ZoomClip      `json:"zoom_clips"`
	BlurClips      []BlurClip      `json:"blur_clips"`
	PanClips       []PanClip       `json:"pan_clips"`
	TransformClips []TransformClip `json:"transform_clips"`
	Assets         []Asset         `json:"assets"`
}

// Clone returns a deep copy that shares no memory with p.
func (p *ProjectWithData) Clone() *ProjectWithData {
	if p == nil {
		return nil
	}
	out := &ProjectWithData{
		Project:   p.Project,
		ZoomClips: cloneSlice(p.ZoomClips),
		BlurClips: cloneSlice(p.BlurClips),
		PanClips:  cloneSlice(p.PanClips),
		Assets:    cloneSlice(p.Assets),
	}
	if p.Background != nil {
		bg := *p.Background
		out.Background = &bg
	}
	if p.Tracks != nil {
		out.Tracks = make([]Track, len(p.Tracks))
		for i, t := range p.Tracks {
			out.Tracks[i] = t.Clone()
		}
	}
	if p.Clips != nil {
		out.Clips = make([]Clip, len(p.Clips))
		for i, c := range p.Clips {
			out.Clips[i] = c.Clone()
		}
	}
	if p.TransformClips != nil {
		out.TransformClips = make([]TransformClip, len(p.TransformClips))
		for i, t := range p.TransformClips {
			out.TransformClips[i] = t.Clone()
		}
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

// Track returns the track with the given ID.
func (p *ProjectWithData) Track(id string) (*Track, bool) {
	for i := range p.Tracks {
		if p.Tracks[i].TrackID == id {
			return &p.Tracks[i], true
		}
	}
	return nil, false
}

// Clip returns the clip with the given ID.
func (p *ProjectWithData) Clip(id string) (*Clip, bool) {
	for i := range p.Clips {
		if p.Clips[i].ClipID == id {
			return &p.Clips[i], true
		}
	}
	return nil, false
}

// ZoomClip returns the zoom clip with the given ID.
func (p *ProjectWithData) ZoomClip(id string) (*ZoomClip, bool) {
	for i := range p.ZoomClips {
		if p.ZoomClips[i].ZoomClipID == id {
			return &p.ZoomClips[i], true
		}
	}
	return nil, false
}

// BlurClip returns the blur clip with the given ID.
func (p *ProjectWithData) BlurClip(id string) (*BlurClip, bool) {
	for i := range p.BlurClips {
		if p.BlurClips[i].BlurClipID == id {
			return &p.BlurClips[i], true
		}
	}
	return nil, false
}

// PanClip returns the pan clip with the given ID.
func (p *ProjectWithData) PanClip(id string) (*PanClip, bool) {
	for i := range p.PanClips {
		if p.PanClips[i].PanClipID == id {
			return &p.PanClips[i], true
		}
	}
	return nil, false
}

// TransformClip returns the transform clip with the given ID.
func (p *ProjectWithData) TransformClip(id string) (*TransformClip, bool) {
	for i := range p.TransformClips {
		if p.TransformClips[i].TransformClipID == id {
			return &p.TransformClips[i], true
		}
	}
	return nil, false
}

// Asset returns the asset with the given ID.
func (p *ProjectWithData) Asset(id string) (*Asset, bool) {
	for i := range p.Assets {
		if p.Assets[i].AssetID == id {
			return &p.Assets[i], true
		}
	}
	return nil, false
}

// ContentEndMs returns the latest end time over all clips and effect clips.
// It is the lower bound for the project duration.
func (p *ProjectWithData) ContentEndMs() int64 {
	var end int64
	for _, c := range p.Clips {
		end = max(end, c.EndTimeMs())
	}
	for _, z := range p.ZoomClips {
		end = max(end, z.EndTimeMs())
	}
	for _, b := range p.BlurClips {
		end = max(end, b.EndTimeMs())
	}
	for _, pc := range p.PanClips {
		end = max(end, pc.EndTimeMs())
	}
	for _, t := range p.TransformClips {
		end = max(end, t.EndTimeMs())
	}
	return end
}

// HistoryEntry is one undo step: the aggregate as it was before the labeled
// action ran.
type HistoryEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	Action    string           `json:"action"`
	Snapshot  *ProjectWithData `json:"snapshot"`
}
