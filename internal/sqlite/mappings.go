package sqlite

import (
	"database/sql"

	"github.com/mesh-intelligence/reel/pkg/types"
)

var projectMapping = mapping[types.Project]{
	name: "projects",
	columns: []string{
		"project_id", "name", "output_format", "width", "height",
		"frame_rate", "duration_ms", "created_at", "updated_at",
	},
	readonly: []string{"created_at"},
	id:       func(p types.Project) string { return p.ProjectID },
	values: func(p types.Project) ([]any, error) {
		return []any{
			p.ProjectID, p.Name, p.OutputFormat, p.Width, p.Height,
			p.FrameRate, p.DurationMs, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
		}, nil
	},
	scan: func(s scanner) (types.Project, error) {
		var p types.Project
		var created, updated string
		if err := s.Scan(&p.ProjectID, &p.Name, &p.OutputFormat, &p.Width, &p.Height,
			&p.FrameRate, &p.DurationMs, &created, &updated); err != nil {
			return p, err
		}
		var err error
		if p.CreatedAt, err = parseTime(created); err != nil {
			return p, err
		}
		p.UpdatedAt, err = parseTime(updated)
		return p, err
	},
}

var backgroundMapping = mapping[types.Background]{
	name: "backgrounds",
	columns: []string{
		"background_id", "project_id", "type", "color", "gradient_from",
		"gradient_to", "gradient_angle", "pattern", "media_path", "image_url", "blur",
	},
	id: func(b types.Background) string { return b.BackgroundID },
	values: func(b types.Background) ([]any, error) {
		return []any{
			b.BackgroundID, b.ProjectID, b.Type, b.Color, b.GradientFrom,
			b.GradientTo, b.GradientAngle, b.Pattern, b.MediaPath, b.ImageURL, b.Blur,
		}, nil
	},
	scan: func(s scanner) (types.Background, error) {
		var b types.Background
		err := s.Scan(&b.BackgroundID, &b.ProjectID, &b.Type, &b.Color, &b.GradientFrom,
			&b.GradientTo, &b.GradientAngle, &b.Pattern, &b.MediaPath, &b.ImageURL, &b.Blur)
		return b, err
	},
}

var trackMapping = mapping[types.Track]{
	name: "tracks",
	columns: []string{
		"track_id", "project_id", "type", "name", "locked",
		"visible", "muted", "volume", "sort_order", "target_track_id",
	},
	id: func(t types.Track) string { return t.TrackID },
	values: func(t types.Track) ([]any, error) {
		return []any{
			t.TrackID, t.ProjectID, t.Type, t.Name, t.Locked,
			t.Visible, t.Muted, t.Volume, t.SortOrder, nullString(t.TargetTrackID),
		}, nil
	},
	scan: func(s scanner) (types.Track, error) {
		var t types.Track
		var target sql.NullString
		err := s.Scan(&t.TrackID, &t.ProjectID, &t.Type, &t.Name, &t.Locked,
			&t.Visible, &t.Muted, &t.Volume, &t.SortOrder, &target)
		t.TargetTrackID = stringPtr(target)
		return t, err
	},
}

// The link column is written only by clipTable.SetLink.
var clipMapping = mapping[types.Clip]{
	name: "clips",
	columns: []string{
		"clip_id", "track_id", "name", "source_path", "source_type",
		"source_duration_ms", "start_time_ms", "duration_ms", "in_point_ms", "out_point_ms",
		"position_x", "position_y", "scale", "rotation", "crop",
		"corner_radius", "opacity", "shadow", "border", "volume",
		"muted", "fade_in_ms", "fade_out_ms", "speed", "freeze_frame",
		"freeze_time_ms", "transition_in", "transition_out", "linked_clip_id", "has_audio",
	},
	readonly: []string{"linked_clip_id"},
	id:       func(c types.Clip) string { return c.ClipID },
	values: func(c types.Clip) ([]any, error) {
		enc, err := jsonColumns(c.Crop, c.Shadow, c.Border, c.TransitionIn, c.TransitionOut)
		if err != nil {
			return nil, err
		}
		return []any{
			c.ClipID, c.TrackID, c.Name, c.SourcePath, c.SourceType,
			c.SourceDurationMs, c.StartTimeMs, c.DurationMs, c.InPointMs, c.OutPointMs,
			c.PositionX, c.PositionY, c.Scale, c.Rotation, enc[0],
			c.CornerRadius, c.Opacity, enc[1], enc[2], c.Volume,
			c.Muted, c.FadeInMs, c.FadeOutMs, c.Speed, c.FreezeFrame,
			c.FreezeTimeMs, enc[3], enc[4], nullString(c.LinkedClipID), c.HasAudio,
		}, nil
	},
	scan: func(s scanner) (types.Clip, error) {
		var c types.Clip
		var crop, shadow, border, tin, tout string
		var linked sql.NullString
		if err := s.Scan(&c.ClipID, &c.TrackID, &c.Name, &c.SourcePath, &c.SourceType,
			&c.SourceDurationMs, &c.StartTimeMs, &c.DurationMs, &c.InPointMs, &c.OutPointMs,
			&c.PositionX, &c.PositionY, &c.Scale, &c.Rotation, &crop,
			&c.CornerRadius, &c.Opacity, &shadow, &border, &c.Volume,
			&c.Muted, &c.FadeInMs, &c.FadeOutMs, &c.Speed, &c.FreezeFrame,
			&c.FreezeTimeMs, &tin, &tout, &linked, &c.HasAudio); err != nil {
			return c, err
		}
		c.LinkedClipID = stringPtr(linked)
		err := fromJSON(crop, &c.Crop, shadow, &c.Shadow, border, &c.Border,
			tin, &c.TransitionIn, tout, &c.TransitionOut)
		return c, err
	},
}

var zoomClipMapping = mapping[types.ZoomClip]{
	name: "zoom_clips",
	columns: []string{
		"zoom_clip_id", "track_id", "name", "start_time_ms", "duration_ms",
		"ease_in_ms", "ease_out_ms", "scale", "center_x", "center_y",
	},
	id: func(z types.ZoomClip) string { return z.ZoomClipID },
	values: func(z types.ZoomClip) ([]any, error) {
		return []any{
			z.ZoomClipID, z.TrackID, z.Name, z.StartTimeMs, z.DurationMs,
			z.EaseInMs, z.EaseOutMs, z.Scale, z.CenterX, z.CenterY,
		}, nil
	},
	scan: func(s scanner) (types.ZoomClip, error) {
		var z types.ZoomClip
		err := s.Scan(&z.ZoomClipID, &z.TrackID, &z.Name, &z.StartTimeMs, &z.DurationMs,
			&z.EaseInMs, &z.EaseOutMs, &z.Scale, &z.CenterX, &z.CenterY)
		return z, err
	},
}

var blurClipMapping = mapping[types.BlurClip]{
	name: "blur_clips",
	columns: []string{
		"blur_clip_id", "track_id", "name", "start_time_ms", "duration_ms",
		"ease_in_ms", "ease_out_ms", "intensity", "x", "y",
		"width", "height", "corner_radius", "invert",
	},
	id: func(b types.BlurClip) string { return b.BlurClipID },
	values: func(b types.BlurClip) ([]any, error) {
		return []any{
			b.BlurClipID, b.TrackID, b.Name, b.StartTimeMs, b.DurationMs,
			b.EaseInMs, b.EaseOutMs, b.Intensity, b.X, b.Y,
			b.Width, b.Height, b.CornerRadius, b.Invert,
		}, nil
	},
	scan: func(s scanner) (types.BlurClip, error) {
		var b types.BlurClip
		err := s.Scan(&b.BlurClipID, &b.TrackID, &b.Name, &b.StartTimeMs, &b.DurationMs,
			&b.EaseInMs, &b.EaseOutMs, &b.Intensity, &b.X, &b.Y,
			&b.Width, &b.Height, &b.CornerRadius, &b.Invert)
		return b, err
	},
}

var panClipMapping = mapping[types.PanClip]{
	name: "pan_clips",
	columns: []string{
		"pan_clip_id", "track_id", "name", "start_time_ms", "duration_ms",
		"ease_in_ms", "ease_out_ms", "start_x", "start_y", "end_x", "end_y",
	},
	id: func(p types.PanClip) string { return p.PanClipID },
	values: func(p types.PanClip) ([]any, error) {
		return []any{
			p.PanClipID, p.TrackID, p.Name, p.StartTimeMs, p.DurationMs,
			p.EaseInMs, p.EaseOutMs, p.StartX, p.StartY, p.EndX, p.EndY,
		}, nil
	},
	scan: func(s scanner) (types.PanClip, error) {
		var p types.PanClip
		err := s.Scan(&p.PanClipID, &p.TrackID, &p.Name, &p.StartTimeMs, &p.DurationMs,
			&p.EaseInMs, &p.EaseOutMs, &p.StartX, &p.StartY, &p.EndX, &p.EndY)
		return p, err
	},
}

// Keyframes live in a JSON column; the transform clip owns them outright.
var transformClipMapping = mapping[types.TransformClip]{
	name: "transform_clips",
	columns: []string{
		"transform_clip_id", "track_id", "name", "start_time_ms", "duration_ms",
		"ease_in_ms", "ease_out_ms", "keyframes",
	},
	id: func(t types.TransformClip) string { return t.TransformClipID },
	values: func(t types.TransformClip) ([]any, error) {
		kf, err := jsonText(t.Keyframes)
		if err != nil {
			return nil, err
		}
		return []any{
			t.TransformClipID, t.TrackID, t.Name, t.StartTimeMs, t.DurationMs,
			t.EaseInMs, t.EaseOutMs, kf,
		}, nil
	},
	scan: func(s scanner) (types.TransformClip, error) {
		var t types.TransformClip
		var kf string
		if err := s.Scan(&t.TransformClipID, &t.TrackID, &t.Name, &t.StartTimeMs, &t.DurationMs,
			&t.EaseInMs, &t.EaseOutMs, &kf); err != nil {
			return t, err
		}
		return t, fromJSON(kf, &t.Keyframes)
	},
}

var assetMapping = mapping[types.Asset]{
	name: "assets",
	columns: []string{
		"asset_id", "project_id", "name", "file_path", "type",
		"duration_ms", "width", "height", "thumbnail_path", "file_size", "has_audio",
	},
	id: func(a types.Asset) string { return a.AssetID },
	values: func(a types.Asset) ([]any, error) {
		return []any{
			a.AssetID, a.ProjectID, a.Name, a.FilePath, a.Type,
			a.DurationMs, a.Width, a.Height, a.ThumbnailPath, a.FileSize, a.HasAudio,
		}, nil
	},
	scan: func(s scanner) (types.Asset, error) {
		var a types.Asset
		err := s.Scan(&a.AssetID, &a.ProjectID, &a.Name, &a.FilePath, &a.Type,
			&a.DurationMs, &a.Width, &a.Height, &a.ThumbnailPath, &a.FileSize, &a.HasAudio)
		return a, err
	},
}
