package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"feedbackradar-engine/internal/domain"
	"feedbackradar-engine/internal/store"
)

// QueriesHandler manages the default saved query driving scheduled jobs.
type QueriesHandler struct {
	Deps Deps
}

func (h QueriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, ok, err := store.LoadQuery(r.Context(), h.Deps.DB, store.DefaultQueryName)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	if !ok {
		writeJSON(w, domain.SavedQuery{Name: store.DefaultQueryName, Keywords: []string{}})
		return
	}
	writeJSON(w, q)
}

func (h QueriesHandler) Put(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var body struct {
		Keywords []string `json:"keywords"`
	}
	if err := dec.Decode(&body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	cleaned := make([]string, 0, len(body.Keywords))
	for _, kw := range body.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	if len(cleaned) == 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_argument", "keywords must not be empty")
		return
	}

	q := domain.SavedQuery{Name: store.DefaultQueryName, Keywords: cleaned}
	if err := store.SaveQuery(r.Context(), h.Deps.DB, q); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, q)
}
