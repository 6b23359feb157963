// Package http holds the API server's shared handlers and middleware: health
// probes, request logging, panic recovery and request metrics. Feature routes
// live in subpackages.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"draftdesk/internal/handler/http/respond"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"` // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one dependency check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler pings every dependency and reports each result.
type HealthHandler struct {
	Checks  map[string]Pinger
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// 依存サービスの接続チェック
	checks := make(map[string]CheckStatus, len(h.Checks))
	healthy := true
	for _, name := range sortedNames(h.Checks) {
		if err := h.Checks[name].PingContext(ctx); err != nil {
			healthy = false
			checks[name] = CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
			slog.Warn("health check failed",
				slog.String("check", name),
				slog.String("error", respond.SanitizeError(err)))
			continue
		}
		checks[name] = CheckStatus{Status: "healthy"}
	}

	// 全体のステータス決定
	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// ReadyHandler answers readiness probes: 200 once every check passes.
type ReadyHandler struct {
	Checks map[string]Pinger
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, name := range sortedNames(h.Checks) {
		if err := h.Checks[name].PingContext(ctx); err != nil {
			http.Error(w, name+" not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler answers liveness probes.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

func sortedNames(checks map[string]Pinger) []string {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
