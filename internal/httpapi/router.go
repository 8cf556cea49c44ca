package httpapi

import (
	"net/http"
	"strings"
)

// NewMux returns the raw mux so main() can still attach /shutdown
// (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	jh := JobsHandler{Deps: d}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  jh.List,
		http.MethodPost: jh.Create,
	}))
	mux.HandleFunc("/jobs/cancel_all", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: jh.CancelAll,
	}))
	// /jobs/{id} and /jobs/{id}/cancel
	mux.HandleFunc("/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/cancel") {
			methodMux(map[string]http.HandlerFunc{
				http.MethodPost: jh.CancelByPath,
			})(w, r)
			return
		}
		methodMux(map[string]http.HandlerFunc{
			http.MethodGet: jh.GetByPath,
		})(w, r)
	})

	ph := PostsHandler{Deps: d}
	mux.HandleFunc("/posts", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.List,
	}))

	qh := QueriesHandler{Deps: d}
	mux.HandleFunc("/queries", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: qh.Get,
		http.MethodPut: qh.Put,
	}))

	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	sh := SecretsHandler{}
	mux.HandleFunc("/api/secrets/source", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetSourceToken,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
