package api

// Error codes.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeNotFound   = "NOT_FOUND"
	CodeNoProject  = "NO_PROJECT"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UptimeS   int64  `json:"uptime_s"`
	SaveState string `json:"save_state"`
	Dirty     bool   `json:"dirty"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type AddTrackRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type MoveClipRequest struct {
	TrackID     string `json:"track_id"`
	StartTimeMs int64  `json:"start_time_ms"`
}

type TrimClipRequest struct {
	InPointMs  int64 `json:"in_point_ms"`
	OutPointMs int64 `json:"out_point_ms"`
}

type SplitClipRequest struct {
	AtMs int64 `json:"at_ms"`
}

type HistoryResponse struct {
	Applied bool `json:"applied"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}
