package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/reel/internal/editor"
	"github.com/mesh-intelligence/reel/internal/ids"
	"github.com/mesh-intelligence/reel/internal/memstore"
	"github.com/mesh-intelligence/reel/internal/reconcile"
	"github.com/mesh-intelligence/reel/pkg/types"
)

func sample(t *testing.T) *types.ProjectWithData {
	t.Helper()
	s := editor.NewSession(
		editor.WithIDGenerator(&ids.Sequence{Prefix: "id"}),
		editor.WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
	)
	s.Create("Demo", types.FormatShorts, 30)
	video := s.AddTrack(types.TrackVideo, "Video")
	audio := s.AddTrack(types.TrackAudio, "Audio")
	fx := s.AddTrack(types.TrackTransform, "Motion")
	v := s.AddClip(types.Clip{TrackID: video, Name: "Intro", DurationMs: 5000, HasAudio: true})
	a := s.AddClip(types.Clip{TrackID: audio, Name: "Intro audio", DurationMs: 5000, SourceType: types.SourceAudio})
	s.LinkClips(v, a)
	s.AddZoomClip(types.ZoomClip{TrackID: fx})
	s.AddTransformClip(types.TransformClip{TrackID: fx})
	s.AddAsset(types.Asset{Name: "intro.mp4", FilePath: "/media/intro.mp4", HasAudio: true})
	return s.Snapshot()
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.jsonl")
	want := sample(t)

	require.NoError(t, Write(path, want))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Contains(t, lines[0], `"kind":"project"`, "project record comes first")
	assert.Contains(t, lines[1], `"kind":"background"`)
}

func TestWriteReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.jsonl")
	data := sample(t)
	require.NoError(t, Write(path, data))

	data.Project.Name = "Second"
	require.NoError(t, Write(path, data))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Project.Name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteNil(t *testing.T) {
	assert.ErrorIs(t, Write(filepath.Join(t.TempDir(), "x.jsonl"), nil), types.ErrNoProject)
}

func TestReadSkipsNoise(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.jsonl")
	content := strings.Join([]string{
		`{"kind":"project","data":{"project_id":"p1","name":"Demo"}}`,
		``,
		`{not json`,
		`{"kind":"sticker","data":{}}`,
		`{"kind":"track","data":{"track_id":"t1","project_id":"p1","type":"video"}}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.Project.ProjectID)
	require.Len(t, got.Tracks, 1)
	assert.Equal(t, "t1", got.Tracks[0].TrackID)
}

func TestLongRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.jsonl")
	data := sample(t)
	data.Project.Name = strings.Repeat("x", 100_000)
	require.NoError(t, Write(path, data))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, data.Project.Name, got.Project.Name)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.jsonl")
	require.NoError(t, os.WriteFile(empty, []byte(`{"kind":"track","data":{"track_id":"t1"}}`), 0o644))
	_, err = Read(empty)
	assert.ErrorIs(t, err, types.ErrInvalidData)

	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte(`{"kind":"project","data":{"width":"wide"}}`), 0o644))
	_, err = Read(bad)
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "demo.jsonl")
	want := sample(t)

	src := memstore.New()
	require.NoError(t, reconcile.New(src, nil).Save(ctx, want, types.NewPendingDeletions()))
	require.NoError(t, Export(ctx, src, want.Project.ProjectID, path))

	dst := memstore.New()
	got, err := Import(ctx, reconcile.New(dst, nil), path)
	require.NoError(t, err)
	assert.Equal(t, want.Project.ProjectID, got.Project.ProjectID)

	loaded, err := reconcile.Load(ctx, dst, want.Project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, want, loaded)

	err = Export(ctx, src, "missing", path)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
