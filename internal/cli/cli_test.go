package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/reel/internal/paths"
	"github.com/mesh-intelligence/reel/pkg/types"
)

type testEnv struct {
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// run executes reel with args and returns trimmed stdout.
func (te *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", te.configDir, "--data-dir", te.dataDir}, args...))
	err := root.Execute()
	return strings.TrimSpace(stdout.String()), err
}

func (te *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := te.run(t, args...)
	require.NoError(t, err, "reel %s", strings.Join(args, " "))
	return out
}

func TestInit(t *testing.T) {
	te := newTestEnv(t)
	out := te.mustRun(t, "init")
	assert.Contains(t, out, "Reel initialized")

	assert.FileExists(t, paths.ConfigFile(te.configDir))
	assert.FileExists(t, filepath.Join(te.dataDir, "reel.db"))

	// Idempotent.
	te.mustRun(t, "init")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(dir, filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.Equal(t, types.DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, types.DefaultListen, cfg.Listen)

	content := "backend: memory\nlog_level: debug\nhistory_limit: 5\nlisten: 127.0.0.1:9000\n"
	require.NoError(t, os.WriteFile(paths.ConfigFile(dir), []byte(content), 0o644))
	cfg, err = loadConfig(dir, filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.Equal(t, types.BackendMemory, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)

	require.NoError(t, os.WriteFile(paths.ConfigFile(dir), []byte("backend: tape\n"), 0o644))
	_, err = loadConfig(dir, filepath.Join(dir, "data"))
	assert.Error(t, err)
}

func TestWriteConfigIfMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")
	wrote, err := writeConfigIfMissing(dir, "/srv/reel")
	require.NoError(t, err)
	assert.True(t, wrote)

	cfg, err := loadConfig(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "/srv/reel", cfg.DataDir)

	wrote, err = writeConfigIfMissing(dir, "/elsewhere")
	require.NoError(t, err)
	assert.False(t, wrote, "existing config is kept")
}

func TestEditingWorkflow(t *testing.T) {
	te := newTestEnv(t)
	te.mustRun(t, "init")

	_, err := te.run(t, "project", "show")
	assert.ErrorIs(t, err, errUsage, "no project yet")

	project := te.mustRun(t, "project", "new", "Launch demo", "--format", "shorts", "--fps", "30")
	require.NotEmpty(t, project)

	video := te.mustRun(t, "track", "add", "video", "Screen")
	clip := te.mustRun(t, "clip", "add", video, "/media/take1.mp4", "--duration", "8000")
	second := te.mustRun(t, "clip", "split", clip, "3000")
	assert.NotEqual(t, clip, second)

	te.mustRun(t, "clip", "speed", second, "2")
	te.mustRun(t, "clip", "move", clip, "500")

	out := te.mustRun(t, "--json", "clip", "list")
	var clips []types.Clip
	require.NoError(t, json.Unmarshal([]byte(out), &clips))
	require.Len(t, clips, 2)
	assert.Equal(t, int64(500), clips[0].StartTimeMs)
	assert.Equal(t, int64(3000), clips[0].DurationMs)
	assert.Equal(t, int64(2500), clips[1].DurationMs, "5000ms at double speed")

	te.mustRun(t, "clip", "delete", second)
	out = te.mustRun(t, "--json", "project", "show")
	var data types.ProjectWithData
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, project, data.Project.ProjectID)
	assert.Equal(t, "Launch demo", data.Project.Name)
	assert.Equal(t, 1080, data.Project.Width)
	assert.Len(t, data.Clips, 1)

	_, err = te.run(t, "clip", "delete", "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))

	te.mustRun(t, "track", "delete", video)
	out = te.mustRun(t, "--json", "project", "show")
	var after types.ProjectWithData
	require.NoError(t, json.Unmarshal([]byte(out), &after))
	assert.Empty(t, after.Tracks)
	assert.Empty(t, after.Clips)
}

func TestProjectSelection(t *testing.T) {
	te := newTestEnv(t)
	first := te.mustRun(t, "project", "new", "One")
	te.mustRun(t, "project", "new", "Two")

	_, err := te.run(t, "track", "add", "audio")
	assert.ErrorIs(t, err, errUsage, "ambiguous without --project")

	te.mustRun(t, "--project", first, "track", "add", "audio", "Voice")
	out := te.mustRun(t, "--project", first, "--json", "track", "list")
	var tracks []types.Track
	require.NoError(t, json.Unmarshal([]byte(out), &tracks))
	require.Len(t, tracks, 1)
	assert.Equal(t, "Voice", tracks[0].Name)

	_, err = te.run(t, "--project", "missing", "project", "show")
	assert.ErrorIs(t, err, types.ErrNotFound)

	out = te.mustRun(t, "--json", "project", "list")
	var projects []types.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	assert.Len(t, projects, 2)
}

func TestBadArguments(t *testing.T) {
	te := newTestEnv(t)
	te.mustRun(t, "project", "new", "Demo")

	for _, args := range [][]string{
		{"project", "new", "Other", "--format", "vhs"},
		{"track", "add", "hologram"},
		{"clip", "split", "x", "soon"},
		{"clip", "speed", "x", "0"},
		{"clip", "speed", "x", "NaN"},
		{"clip", "speed", "x", "Inf"},
		{"clip", "add", "t1", "/media/a.mp4", "--source-type", "hologram"},
		{"clip", "trim", "x", "500", "100"},
	} {
		_, err := te.run(t, args...)
		assert.ErrorIs(t, err, errUsage, "reel %s", strings.Join(args, " "))
		assert.Equal(t, exitUserError, exitCode(err))
	}
}

func TestExportImport(t *testing.T) {
	src := newTestEnv(t)
	project := src.mustRun(t, "project", "new", "Demo")
	video := src.mustRun(t, "track", "add", "video")
	src.mustRun(t, "clip", "add", video, "/media/a.mp4", "--duration", "4000")

	path := filepath.Join(t.TempDir(), "demo.jsonl")
	src.mustRun(t, "project", "export", path)

	dst := newTestEnv(t)
	assert.Equal(t, project, dst.mustRun(t, "project", "import", path))

	out := dst.mustRun(t, "--json", "clip", "list")
	var clips []types.Clip
	require.NoError(t, json.Unmarshal([]byte(out), &clips))
	require.Len(t, clips, 1)
	assert.Equal(t, "/media/a.mp4", clips[0].SourcePath)
}

func TestVersion(t *testing.T) {
	te := newTestEnv(t)
	out := te.mustRun(t, "version")
	assert.Contains(t, out, "reel v"+Version)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUserError, exitCode(usageError("bad")))
	assert.Equal(t, exitUserError, exitCode(notFound("clip", "c1")))
	assert.Equal(t, exitSysError, exitCode(errors.New("disk on fire")))
}
