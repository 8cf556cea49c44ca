package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"feedbackradar-engine/internal/jobs"
	"feedbackradar-engine/internal/store"
)

type JobsHandler struct {
	Deps Deps
}

type createJobRequest struct {
	Keywords     []string `json:"keywords"`
	Concurrency  int      `json:"concurrency"`
	DelaySeconds int      `json:"delay_seconds"`
}

func (h JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req createJobRequest
	if err := dec.Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	job, err := h.Deps.Manager.Create(r.Context(), req.Keywords, req.Concurrency, req.DelaySeconds)
	if err != nil {
		if errors.Is(err, jobs.ErrInvalidArgument) {
			WriteError(w, r, http.StatusBadRequest, "invalid_argument", err.Error())
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, job)
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := store.ListJobs(r.Context(), h.Deps.DB, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, list)
}

// GetByPath serves GET /jobs/{id}.
func (h JobsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid job id")
		return
	}

	job, err := h.Deps.Manager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "unknown job id")
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, job)
}

// CancelByPath serves POST /jobs/{id}/cancel.
func (h JobsHandler) CancelByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/jobs/")
	id := strings.TrimSuffix(rest, "/cancel")
	if id == "" || id == rest || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid job id")
		return
	}

	applied, err := h.Deps.Manager.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "unknown job id")
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"cancelled": applied})
}

func (h JobsHandler) CancelAll(w http.ResponseWriter, r *http.Request) {
	count := h.Deps.Manager.CancelAll(r.Context())
	writeJSON(w, map[string]any{"cancelled_count": count})
}
