package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"notes-backend/middleware"
	"notes-backend/models"
	"notes-backend/store"
)

type noteCreateRequest struct {
	Title   *string `json:"title" validate:"required,max=255"`
	Content *string `json:"content" validate:"required"`
}

type noteUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=255"`
	Content *string `json:"content"`
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	params, err := listParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	notes, err := h.notes.List(r.Context(), user.ID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, notes)
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req noteCreateRequest
	if err := h.decode(r, w, &req); err != nil {
		writeError(w, r, err)
		return
	}
	note, err := h.notes.Create(r.Context(), user.ID, *req.Title, *req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, note)
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	note, err := h.notes.Get(r.Context(), user.ID, noteID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, note)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req noteUpdateRequest
	if err := h.decode(r, w, &req); err != nil {
		writeError(w, r, err)
		return
	}
	note, err := h.notes.Update(r.Context(), user.ID, noteID, models.NoteUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, note)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	noteID, err := noteIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.notes.Delete(r.Context(), user.ID, noteID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func noteIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, (&models.ValidationError{}).Add("value is not a valid integer", "path", "note_id")
	}
	return id, nil
}

// listParams reads q, skip and limit. Out-of-range values are rejected
// rather than clamped.
func listParams(r *http.Request) (store.ListParams, error) {
	query := r.URL.Query()
	params := store.ListParams{Query: query.Get("q"), Skip: 0, Limit: store.DefaultLimit}
	verr := &models.ValidationError{}

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			verr.Add("value is not a valid integer", "query", "skip")
		case skip < 0:
			verr.Add("ensure this value is greater than or equal to 0", "query", "skip")
		default:
			params.Skip = skip
		}
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			verr.Add("value is not a valid integer", "query", "limit")
		case limit < 1:
			verr.Add("ensure this value is greater than or equal to 1", "query", "limit")
		case limit > store.MaxLimit:
			verr.Add("ensure this value is less than or equal to 100", "query", "limit")
		default:
			params.Limit = limit
		}
	}
	if len(verr.Fields) > 0 {
		return params, verr
	}
	return params, nil
}
