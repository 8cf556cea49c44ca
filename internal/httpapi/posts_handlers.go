package httpapi

import (
	"net/http"
	"strconv"

	"feedbackradar-engine/internal/store"
)

type PostsHandler struct {
	Deps Deps
}

func (h PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	minPriority, _ := strconv.ParseFloat(q.Get("min_priority"), 64)
	limit, _ := strconv.ParseUint(q.Get("limit"), 10, 64)

	posts, err := store.ListPosts(r.Context(), h.Deps.DB, store.ListPostsOpts{
		Source:      q.Get("source"),
		Label:       q.Get("label"),
		MinPriority: minPriority,
		Window:      q.Get("window"),
		Sort:        q.Get("sort"),
		Limit:       limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, posts)
}
