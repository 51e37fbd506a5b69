package sqlite

// Schema DDL for all tables. Child rows reference their parents without
// cascades, so the database refuses to drop a track that still has clips or
// a clip that another clip still links to.
const (
	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    project_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    output_format TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    frame_rate INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createBackgrounds = `CREATE TABLE IF NOT EXISTS backgrounds (
    background_id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    type TEXT NOT NULL,
    color TEXT NOT NULL,
    gradient_from TEXT NOT NULL,
    gradient_to TEXT NOT NULL,
    gradient_angle REAL NOT NULL,
    pattern TEXT NOT NULL,
    media_path TEXT NOT NULL,
    image_url TEXT NOT NULL,
    blur REAL NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(project_id)
);`

	createTracks = `CREATE TABLE IF NOT EXISTS tracks (
    track_id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    type TEXT NOT NULL,
    name TEXT NOT NULL,
    locked INTEGER NOT NULL,
    visible INTEGER NOT NULL,
    muted INTEGER NOT NULL,
    volume REAL NOT NULL,
    sort_order INTEGER NOT NULL,
    target_track_id TEXT,
    FOREIGN KEY (project_id) REFERENCES projects(project_id)
);`

	createClips = `CREATE TABLE IF NOT EXISTS clips (
    clip_id TEXT PRIMARY KEY,
    track_id TEXT NOT NULL,
    name TEXT NOT NULL,
    source_path TEXT NOT NULL,
    source_type TEXT NOT NULL,
    source_duration_ms INTEGER NOT NULL,
    start_time_ms INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    in_point_ms INTEGER NOT NULL,
    out_point_ms INTEGER NOT NULL,
    position_x REAL NOT NULL,
    position_y REAL NOT NULL,
    scale REAL NOT NULL,
    rotation REAL NOT NULL,
    crop TEXT NOT NULL,
    corner_radius REAL NOT NULL,
    opacity REAL NOT NULL,
    shadow TEXT NOT NULL,
    border TEXT NOT NULL,
    volume REAL NOT NULL,
    muted INTEGER NOT NULL,
    fade_in_ms INTEGER NOT NULL,
    fade_out_ms INTEGER NOT NULL,
    speed REAL NOT NULL,
    freeze_frame INTEGER NOT NULL,
    freeze_time_ms INTEGER NOT NULL,
    transition_in TEXT NOT NULL,
    transition_out TEXT NOT NULL,
    linked_clip_id TEXT,
    has_audio INTEGER NOT NULL,
    FOREIGN KEY (track_id) REFERENCES tracks(track_id),
    FOREIGN KEY (linked_clip_id) REFERENCES clips(clip_id)
);`

	createZoomClips = `CREATE TABLE IF NOT EXISTS zoom_clips (
    zoom_clip_id TEXT PRIMARY KEY,
    track_id TEXT NOT NULL,
    name TEXT NOT NULL,
    start_time_ms INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    ease_in_ms INTEGER NOT NULL,
    ease_out_ms INTEGER NOT NULL,
    scale REAL NOT NULL,
    center_x REAL NOT NULL,
    center_y REAL NOT NULL,
    FOREIGN KEY (track_id) REFERENCES tracks(track_id)
);`

	createBlurClips = `CREATE TABLE IF NOT EXISTS blur_clips (
    blur_clip_id TEXT PRIMARY KEY,
    track_id TEXT NOT NULL,
    name TEXT NOT NULL,
    start_time_ms INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    ease_in_ms INTEGER NOT NULL,
    ease_out_ms INTEGER NOT NULL,
    intensity REAL NOT NULL,
    x REAL NOT NULL,
    y REAL NOT NULL,
    width REAL NOT NULL,
    height REAL NOT NULL,
    corner_radius REAL NOT NULL,
    invert INTEGER NOT NULL,
    FOREIGN KEY (track_id) REFERENCES tracks(track_id)
);`

	createPanClips = `CREATE TABLE IF NOT EXISTS pan_clips (
    pan_clip_id TEXT PRIMARY KEY,
    track_id TEXT NOT NULL,
    name TEXT NOT NULL,
    start_time_ms INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    ease_in_ms INTEGER NOT NULL,
    ease_out_ms INTEGER NOT NULL,
    start_x REAL NOT NULL,
    start_y REAL NOT NULL,
    end_x REAL NOT NULL,
    end_y REAL NOT NULL,
    FOREIGN KEY (track_id) REFERENCES tracks(track_id)
);`

	createTransformClips = `CREATE TABLE IF NOT EXISTS transform_clips (
    transform_clip_id TEXT PRIMARY KEY,
    track_id TEXT NOT NULL,
    name TEXT NOT NULL,
    start_time_ms INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    ease_in_ms INTEGER NOT NULL,
    ease_out_ms INTEGER NOT NULL,
    keyframes TEXT NOT NULL,
    FOREIGN KEY (track_id) REFERENCES tracks(track_id)
);`

	createAssets = `CREATE TABLE IF NOT EXISTS assets (
    asset_id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    file_path TEXT NOT NULL,
    type TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    thumbnail_path TEXT NOT NULL,
    file_size INTEGER NOT NULL,
    has_audio INTEGER NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(project_id)
);`
)

// Index DDL for the lookups GetWithData and the reconciler make.
const (
	idxBackgroundsProject  = `CREATE INDEX IF NOT EXISTS idx_backgrounds_project ON backgrounds(project_id);`
	idxTracksProject       = `CREATE INDEX IF NOT EXISTS idx_tracks_project ON tracks(project_id, sort_order);`
	idxClipsTrack          = `CREATE INDEX IF NOT EXISTS idx_clips_track ON clips(track_id);`
	idxClipsLinked         = `CREATE INDEX IF NOT EXISTS idx_clips_linked ON clips(linked_clip_id);`
	idxZoomClipsTrack      = `CREATE INDEX IF NOT EXISTS idx_zoom_clips_track ON zoom_clips(track_id);`
	idxBlurClipsTrack      = `CREATE INDEX IF NOT EXISTS idx_blur_clips_track ON blur_clips(track_id);`
	idxPanClipsTrack       = `CREATE INDEX IF NOT EXISTS idx_pan_clips_track ON pan_clips(track_id);`
	idxTransformClipsTrack = `CREATE INDEX IF NOT EXISTS idx_transform_clips_track ON transform_clips(track_id);`
	idxAssetsProject       = `CREATE INDEX IF NOT EXISTS idx_assets_project ON assets(project_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createProjects,
	createBackgrounds,
	createTracks,
	createClips,
	createZoomClips,
	createBlurClips,
	createPanClips,
	createTransformClips,
	createAssets,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxBackgroundsProject,
	idxTracksProject,
	idxClipsTrack,
	idxClipsLinked,
	idxZoomClipsTrack,
	idxBlurClipsTrack,
	idxPanClipsTrack,
	idxTransformClipsTrack,
	idxAssetsProject,
}
