package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/atinyakov/MediaKeeper/internal/middleware"
	"github.com/atinyakov/MediaKeeper/internal/models"
	"github.com/go-chi/chi/v5"
)

// MediaService defines the catalog operations required by the MediaHandler.
type MediaService interface {
	List(ctx context.Context, userID int64) ([]models.MediaEntry, error)
	Create(ctx context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error)
	Update(ctx context.Context, userID int64, e models.MediaEntry) (models.MediaEntry, error)
	Delete(ctx context.Context, userID, id int64) error
}

// MediaHandler serves /api/users/{userID}/media. The user id is taken from
// the context set by middleware.UserScope.
type MediaHandler struct {
	MediaService MediaService
}

// List handles GET requests and responds with the user's entries.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.MediaService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Create handles POST requests and responds 201 with the stored entry.
func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var e models.MediaEntry
	if err := decodeJSON(w, r, &e); err != nil {
		writeDecodeError(w, err)
		return
	}
	saved, err := h.MediaService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), e)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// Update handles PUT /{id}. The id in the path wins over one in the body.
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	var e models.MediaEntry
	if err := decodeJSON(w, r, &e); err != nil {
		writeDecodeError(w, err)
		return
	}
	e.ID = &id

	saved, err := h.MediaService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), e)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Delete handles DELETE /{id} and responds 204.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	if err := h.MediaService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return 0, false
	}
	return id, true
}

// writeDecodeError reports a bad body; unknown media types keep their
// validation message.
func writeDecodeError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	writeError(w, http.StatusBadRequest, "invalid request")
}
