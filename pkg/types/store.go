package types

import "context"

// Entity is the set of persisted entity types.
type Entity interface {
	Project | Track | Clip | ZoomClip | BlurClip | PanClip | TransformClip | Asset | Background
}

// Table provides uniform CRUD operations for a single entity type.
// IDs are generated by the client; Create stores the entity under the ID it
// carries, verbatim.
type Table[T Entity] interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(ctx context.Context, id string) (T, error)

	// Create inserts a new entity under the ID it carries.
	// Returns ErrInvalidID if the ID is empty and ErrDuplicateID if an
	// entity with that ID already exists.
	Create(ctx context.Context, entity T) (T, error)

	// Update overwrites the entity stored under id.
	// Returns ErrNotFound if no entity exists with that ID.
	Update(ctx context.Context, id string, entity T) (T, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID; callers that
	// treat deletion as idempotent check for it with errors.Is.
	Delete(ctx context.Context, id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table. Filter keys are column names.
	Fetch(ctx context.Context, filter map[string]any) ([]T, error)
}

// ClipTable is the clips table. Create and Update never write
// LinkedClipID; links are written only through SetLink so that a clip is
// never stored pointing at a partner that does not exist yet.
type ClipTable interface {
	Table[Clip]

	// SetLink sets or clears (linkedID == nil) the stored link of a clip.
	// Returns ErrNotFound if the clip does not exist.
	SetLink(ctx context.Context, id string, linkedID *string) error
}

// Store defines backend-agnostic access to persisted projects.
type Store interface {
	Projects() Table[Project]
	Backgrounds() Table[Background]
	Tracks() Table[Track]
	Clips() ClipTable
	ZoomClips() Table[ZoomClip]
	BlurClips() Table[BlurClip]
	PanClips() Table[PanClip]
	TransformClips() Table[TransformClip]
	Assets() Table[Asset]

	// GetWithData hydrates the full aggregate of a project.
	// Returns ErrNotFound if the project does not exist.
	GetWithData(ctx context.Context, projectID string) (*ProjectWithData, error)

	// Close releases backend resources. Idempotent.
	Close() error
}
