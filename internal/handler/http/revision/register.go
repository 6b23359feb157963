package revision

import "net/http"

// Register mounts the handler's routes on mux.
func Register(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /articles/{id}/revisions", h.Revise)
	mux.HandleFunc("GET /articles/{id}/versions", h.ListVersions)
	mux.HandleFunc("POST /articles/{id}/versions/{versionID}/restore", h.RestoreVersion)
	mux.HandleFunc("GET /articles/{id}/analysis", h.Analyze)
	mux.HandleFunc("GET /articles/{id}/eligibility", h.Eligibility)
	mux.HandleFunc("POST /articles/{id}/ready", h.MarkReady)
	mux.HandleFunc("POST /autopublish/run", h.RunCycle)
}
