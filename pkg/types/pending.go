package types

// Entity kinds tracked by the pending deletions ledger, in the order the
// reconciler deletes them. Tracks come last because everything else
// references them.
const (
	KindClip          = "clip"
	KindZoomClip      = "zoom_clip"
	KindBlurClip      = "blur_clip"
	KindPanClip       = "pan_clip"
	KindTransformClip = "transform_clip"
	KindAsset         = "asset"
	KindTrack         = "track"
)

// DeletionOrder lists entity kinds in the order deletions are flushed.
var DeletionOrder = []string{
	KindClip,
	KindZoomClip,
	KindBlurClip,
	KindPanClip,
	KindTransformClip,
	KindAsset,
	KindTrack,
}

// PendingDeletions records entities removed from the in-memory project but
// not yet deleted from the store. IDs keep insertion order and are recorded
// at most once per kind.
type PendingDeletions struct {
	ids map[string][]string
}

// NewPendingDeletions returns an empty ledger.
func NewPendingDeletions() *PendingDeletions {
	return &PendingDeletions{ids: make(map[string][]string)}
}

// Add records id under kind. Adding an ID already recorded is a no-op.
func (p *PendingDeletions) Add(kind, id string) {
	if id == "" {
		return
	}
	if p.ids == nil {
		p.ids = make(map[string][]string)
	}
	if p.Has(kind, id) {
		return
	}
	p.ids[kind] = append(p.ids[kind], id)
}

// Has reports whether id is recorded under kind.
func (p *PendingDeletions) Has(kind, id string) bool {
	for _, v := range p.ids[kind] {
		if v == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the IDs recorded under kind.
func (p *PendingDeletions) IDs(kind string) []string {
	return append([]string(nil), p.ids[kind]...)
}

// Len returns the total number of recorded IDs.
func (p *PendingDeletions) Len() int {
	n := 0
	for _, v := range p.ids {
		n += len(v)
	}
	return n
}

// IsEmpty reports whether nothing is pending.
func (p *PendingDeletions) IsEmpty() bool {
	return p.Len() == 0
}

// Clear drops every recorded ID.
func (p *PendingDeletions) Clear() {
	p.ids = make(map[string][]string)
}

// Clone returns an independent copy of the ledger.
func (p *PendingDeletions) Clone() *PendingDeletions {
	out := NewPendingDeletions()
	for k, v := range p.ids {
		out.ids[k] = append([]string(nil), v...)
	}
	return out
}
