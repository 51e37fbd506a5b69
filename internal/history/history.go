// Package history implements bounded, snapshot-based undo and redo.
//
// Each entry holds a deep copy of the whole project aggregate taken before
// the labeled action ran. Undo and redo swap the live aggregate for a stored
// snapshot; no inverse operations are defined.
package history

import (
	"time"

	"github.com/mesh-intelligence/reel/pkg/types"
)

// DefaultLimit is the number of entries kept when no limit is given.
const DefaultLimit = types.DefaultHistoryLimit

// Manager is a bounded undo/redo list. The zero value is not usable; call
// New. Manager is not safe for concurrent use; the editor session
// serializes access.
//
// Entries hold only pre-edit snapshots, so a limit of n allows n undos. The
// live state seen at the first undo is kept apart from the entries for
// redo to return to.
type Manager struct {
	entries []types.HistoryEntry
	// index counts the entries whose edits are applied to the live state.
	index int
	// tip is the live state before the first undo since the last Push.
	tip   *types.ProjectWithData
	limit int
	now   func() time.Time
}

// New returns an empty Manager that keeps at most limit entries.
// A non-positive limit means DefaultLimit.
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit, now: time.Now}
}

// Push records snapshot as the state before action. Any redo tail beyond
// the current position is discarded, and the oldest entry is dropped when
// the list exceeds its limit. snapshot is cloned.
func (m *Manager) Push(action string, snapshot *types.ProjectWithData) {
	m.entries = append(m.entries[:m.index], types.HistoryEntry{
		Timestamp: m.now(),
		Action:    action,
		Snapshot:  snapshot.Clone(),
	})
	if over := len(m.entries) - m.limit; over > 0 {
		m.entries = append([]types.HistoryEntry(nil), m.entries[over:]...)
	}
	m.index = len(m.entries)
	m.tip = nil
}

// CanUndo reports whether Undo would restore a snapshot.
func (m *Manager) CanUndo() bool {
	return m.index > 0
}

// CanRedo reports whether Redo would restore a snapshot.
func (m *Manager) CanRedo() bool {
	return m.index < len(m.entries)
}

// Undo returns the snapshot taken before the last applied edit, or false if
// there is nothing to undo. current is the live aggregate; when undoing
// from the newest state it is kept so a later Redo can return to it.
func (m *Manager) Undo(current *types.ProjectWithData) (*types.ProjectWithData, bool) {
	if !m.CanUndo() {
		return nil, false
	}
	if m.index == len(m.entries) {
		m.tip = current.Clone()
	}
	m.index--
	return m.entries[m.index].Snapshot.Clone(), true
}

// Redo returns the state after the next undone edit, or false if there is
// nothing to redo.
func (m *Manager) Redo() (*types.ProjectWithData, bool) {
	if !m.CanRedo() {
		return nil, false
	}
	m.index++
	if m.index == len(m.entries) {
		return m.tip.Clone(), true
	}
	return m.entries[m.index].Snapshot.Clone(), true
}

// Entries returns the recorded entries, oldest first. The snapshots are
// shared with the manager and must not be modified.
func (m *Manager) Entries() []types.HistoryEntry {
	return append([]types.HistoryEntry(nil), m.entries...)
}

// Len returns the number of recorded entries.
func (m *Manager) Len() int {
	return len(m.entries)
}

// Clear drops all entries.
func (m *Manager) Clear() {
	m.entries = nil
	m.index = 0
	m.tip = nil
}
