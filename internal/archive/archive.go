// Package archive writes whole projects to JSONL files and reads them back.
// Each line is one entity tagged with its kind; the project comes first and
// children follow in foreign key order.
package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/reel/pkg/types"
)

// Record kinds. Deletion-ledger kinds are reused where they exist.
const (
	KindProject    = "project"
	KindBackground = "background"
)

type record struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Write stores the project in path, replacing any existing file.
func Write(path string, data *types.ProjectWithData) error {
	if data == nil {
		return types.ErrNoProject
	}
	var records [][]byte
	add := func(kind string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", kind, err)
		}
		line, err := json.Marshal(record{Kind: kind, Data: raw})
		if err != nil {
			return fmt.Errorf("encode %s: %w", kind, err)
		}
		records = append(records, line)
		return nil
	}

	if err := add(KindProject, data.Project); err != nil {
		return err
	}
	if data.Background != nil {
		if err := add(KindBackground, data.Background); err != nil {
			return err
		}
	}
	if err := addAll(add, types.KindTrack, data.Tracks); err != nil {
		return err
	}
	if err := addAll(add, types.KindAsset, data.Assets); err != nil {
		return err
	}
	if err := addAll(add, types.KindClip, data.Clips); err != nil {
		return err
	}
	if err := addAll(add, types.KindZoomClip, data.ZoomClips); err != nil {
		return err
	}
	if err := addAll(add, types.KindBlurClip, data.BlurClips); err != nil {
		return err
	}
	if err := addAll(add, types.KindPanClip, data.PanClips); err != nil {
		return err
	}
	if err := addAll(add, types.KindTransformClip, data.TransformClips); err != nil {
		return err
	}
	return replaceFile(path, bytes.Join(records, []byte("\n")))
}

func addAll[T any](add func(string, any) error, kind string, items []T) error {
	for _, it := range items {
		if err := add(kind, it); err != nil {
			return err
		}
	}
	return nil
}

// Read loads a project written by Write. Lines of unknown kind are skipped.
// Returns ErrInvalidData when the file holds no project record.
func Read(path string) (*types.ProjectWithData, error) {
	lines, err := recordLines(path)
	if err != nil {
		return nil, err
	}

	out := &types.ProjectWithData{}
	found := false
	for i, line := range lines {
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, types.ErrInvalidData)
		}
		switch rec.Kind {
		case KindProject:
			err = json.Unmarshal(rec.Data, &out.Project)
			found = true
		case KindBackground:
			var bg types.Background
			err = json.Unmarshal(rec.Data, &bg)
			out.Background = &bg
		case types.KindTrack:
			out.Tracks, err = appendDecoded(out.Tracks, rec.Data)
		case types.KindAsset:
			out.Assets, err = appendDecoded(out.Assets, rec.Data)
		case types.KindClip:
			out.Clips, err = appendDecoded(out.Clips, rec.Data)
		case types.KindZoomClip:
			out.ZoomClips, err = appendDecoded(out.ZoomClips, rec.Data)
		case types.KindBlurClip:
			out.BlurClips, err = appendDecoded(out.BlurClips, rec.Data)
		case types.KindPanClip:
			out.PanClips, err = appendDecoded(out.PanClips, rec.Data)
		case types.KindTransformClip:
			out.TransformClips, err = appendDecoded(out.TransformClips, rec.Data)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w: %w", i+1, rec.Kind, types.ErrInvalidData, err)
		}
	}
	if !found || out.Project.ProjectID == "" {
		return nil, fmt.Errorf("%s: no project record: %w", path, types.ErrInvalidData)
	}
	for i := range out.TransformClips {
		out.TransformClips[i].SortKeyframes()
	}
	return out, nil
}

func appendDecoded[T any](items []T, raw json.RawMessage) ([]T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return items, err
	}
	return append(items, v), nil
}

// Loader reads a project aggregate from a store.
type Loader interface {
	GetWithData(ctx context.Context, projectID string) (*types.ProjectWithData, error)
}

// Export writes the stored project to path.
func Export(ctx context.Context, store Loader, projectID, path string) error {
	data, err := store.GetWithData(ctx, projectID)
	if err != nil {
		return fmt.Errorf("export %s: %w", projectID, err)
	}
	return Write(path, data)
}

// Saver persists an aggregate; *reconcile.Reconciler satisfies it.
type Saver interface {
	Save(ctx context.Context, data *types.ProjectWithData, pending *types.PendingDeletions) error
}

// Import reads path and saves the project it holds. A project already
// stored under the same ID is overwritten entity by entity; stored
// entities the file does not mention are left alone.
func Import(ctx context.Context, saver Saver, path string) (*types.ProjectWithData, error) {
	data, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := saver.Save(ctx, data, types.NewPendingDeletions()); err != nil {
		return nil, fmt.Errorf("import %s: %w", data.Project.ProjectID, err)
	}
	return data, nil
}

// maxRecord bounds one line; a transform clip with many keyframes can
// outgrow bufio's default token size.
const maxRecord = 4 << 20

// recordLines returns the lines of path that hold valid JSON.
func recordLines(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	var lines [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(nil, maxRecord)
	for sc.Scan() {
		if line := bytes.TrimSpace(sc.Bytes()); json.Valid(line) {
			lines = append(lines, bytes.Clone(line))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	return lines, nil
}

// replaceFile writes body plus a trailing newline next to path, syncs it
// and renames it into place, so readers see the old file or the new one.
func replaceFile(path string, body []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".reel-archive-*")
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(append(body, '\n')); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
