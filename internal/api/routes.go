package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/reel/internal/editor"
	"github.com/mesh-intelligence/reel/pkg/types"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(requireProject(cfg.Session))

		r.Get("/project", projectHandler(cfg))
		r.Get("/view", viewHandler(cfg))

		r.Post("/tracks", addTrackHandler(cfg))
		r.Patch("/tracks/{id}", updateTrackHandler(cfg))
		r.Delete("/tracks/{id}", deleteTrackHandler(cfg))

		r.Post("/clips", addClipHandler(cfg))
		r.Patch("/clips/{id}", updateClipHandler(cfg))
		r.Post("/clips/{id}/move", moveClipHandler(cfg))
		r.Post("/clips/{id}/trim", trimClipHandler(cfg))
		r.Post("/clips/{id}/split", splitClipHandler(cfg))
		r.Post("/clips/{id}/duplicate", duplicateClipHandler(cfg))
		r.Delete("/clips/{id}", deleteClipHandler(cfg))

		r.Post("/transform-clips/{id}/keyframes", addKeyframeHandler(cfg))
		r.Delete("/transform-clips/{id}/keyframes/{kid}", deleteKeyframeHandler(cfg))

		r.Post("/undo", undoHandler(cfg))
		r.Post("/redo", redoHandler(cfg))
		r.Post("/save", saveHandler(cfg))
	})

	return r
}

// requireProject answers 404 until the session has a project open.
func requireProject(s *editor.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.IsOpen() {
				WriteError(w, http.StatusNotFound, types.ErrNoProject.Error(), CodeNoProject)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
		return false
	}
	return true
}

// found reports whether lookup finds id in the current snapshot and writes
// a 404 when it does not.
func found(w http.ResponseWriter, cfg ServerConfig, what, id string, lookup func(*types.ProjectWithData, string) bool) bool {
	snap := cfg.Session.Snapshot()
	if snap == nil || !lookup(snap, id) {
		WriteError(w, http.StatusNotFound, what+" not found", CodeNotFound)
		return false
	}
	return true
}

func hasTrack(p *types.ProjectWithData, id string) bool {
	_, ok := p.Track(id)
	return ok
}

func hasClip(p *types.ProjectWithData, id string) bool {
	_, ok := p.Clip(id)
	return ok
}

func hasTransformClip(p *types.ProjectWithData, id string) bool {
	_, ok := p.TransformClip(id)
	return ok
}

func created(w http.ResponseWriter, id, what string) {
	if id == "" {
		WriteError(w, http.StatusBadRequest, "could not add "+what, CodeBadRequest)
		return
	}
	WriteJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
			Dirty:   cfg.Session.Dirty(),
		}
		if cfg.Reconciler != nil {
			resp.SaveState = cfg.Reconciler.State().String()
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func projectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Session.Snapshot())
	}
}

func viewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Session.View())
	}
}

func addTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddTrackRequest
		if !decode(w, r, &req) {
			return
		}
		if !types.ValidTrackType(req.Type) {
			WriteError(w, http.StatusBadRequest, types.ErrInvalidTrackType.Error(), CodeBadRequest)
			return
		}
		created(w, cfg.Session.AddTrack(req.Type, req.Name), "track")
	}
}

func updateTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var patch editor.TrackPatch
		if !decode(w, r, &patch) || !found(w, cfg, "track", id, hasTrack) {
			return
		}
		cfg.Session.UpdateTrack(id, patch)
		t, _ := cfg.Session.Snapshot().Track(id)
		WriteJSON(w, http.StatusOK, t)
	}
}

func deleteTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !found(w, cfg, "track", id, hasTrack) {
			return
		}
		cfg.Session.DeleteTrack(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft types.Clip
		if !decode(w, r, &draft) {
			return
		}
		created(w, cfg.Session.AddClip(draft), "clip")
	}
}

// clipResponse writes the clip as it stands after an edit.
func clipResponse(w http.ResponseWriter, cfg ServerConfig, id string) {
	c, ok := cfg.Session.Snapshot().Clip(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "clip not found", CodeNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func updateClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var patch editor.ClipPatch
		if !decode(w, r, &patch) || !found(w, cfg, "clip", id, hasClip) {
			return
		}
		cfg.Session.UpdateClip(id, patch)
		clipResponse(w, cfg, id)
	}
}

func moveClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req MoveClipRequest
		if !decode(w, r, &req) || !found(w, cfg, "clip", id, hasClip) {
			return
		}
		if !hasTrack(cfg.Session.Snapshot(), req.TrackID) {
			WriteError(w, http.StatusBadRequest, "unknown track", CodeBadRequest)
			return
		}
		cfg.Session.MoveClip(id, req.TrackID, req.StartTimeMs)
		clipResponse(w, cfg, id)
	}
}

func trimClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req TrimClipRequest
		if !decode(w, r, &req) || !found(w, cfg, "clip", id, hasClip) {
			return
		}
		cfg.Session.TrimClip(id, req.InPointMs, req.OutPointMs)
		clipResponse(w, cfg, id)
	}
}

func splitClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req SplitClipRequest
		if !decode(w, r, &req) || !found(w, cfg, "clip", id, hasClip) {
			return
		}
		created(w, cfg.Session.SplitClip(id, req.AtMs), "split")
	}
}

func duplicateClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !found(w, cfg, "clip", id, hasClip) {
			return
		}
		created(w, cfg.Session.DuplicateClip(id), "duplicate")
	}
}

func deleteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !found(w, cfg, "clip", id, hasClip) {
			return
		}
		cfg.Session.DeleteClip(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func addKeyframeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var kf types.Keyframe
		if !decode(w, r, &kf) || !found(w, cfg, "transform clip", id, hasTransformClip) {
			return
		}
		created(w, cfg.Session.AddKeyframe(id, kf), "keyframe")
	}
}

func deleteKeyframeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		kid := chi.URLParam(r, "kid")
		if !found(w, cfg, "transform clip", id, hasTransformClip) {
			return
		}
		if err := cfg.Session.DeleteKeyframe(id, kid); err != nil {
			WriteError(w, http.StatusConflict, err.Error(), CodeConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func historyResponse(s *editor.Session, applied bool) HistoryResponse {
	return HistoryResponse{Applied: applied, CanUndo: s.CanUndo(), CanRedo: s.CanRedo()}
}

func undoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, historyResponse(cfg.Session, cfg.Session.Undo()))
	}
}

func redoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, historyResponse(cfg.Session, cfg.Session.Redo()))
	}
}

func saveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := cfg.Session.Save(r.Context())
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, types.ErrSaveInProgress):
			WriteError(w, http.StatusConflict, err.Error(), CodeConflict)
		default:
			cfg.Logger.Error("save failed", "error", err, "request_id", requestID(r))
			WriteError(w, http.StatusInternalServerError, err.Error(), CodeInternal)
		}
	}
}
