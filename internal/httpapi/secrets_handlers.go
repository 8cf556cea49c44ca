package httpapi

import (
	"encoding/json"
	"net/http"

	"feedbackradar-engine/internal/secrets"
)

type SecretsHandler struct{}

// SetSourceToken stores a source API token in the OS keyring so it
// never touches the config file or the database.
func (h SecretsHandler) SetSourceToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Account string `json:"account"`
		Token   string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if err := secrets.SetSourceToken(body.Account, body.Token); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}
