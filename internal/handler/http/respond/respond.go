// Package respond writes JSON responses and keeps internal error details out
// of them.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v as the response body with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent.
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes {"error": err.Error()} verbatim.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeMarkers are substrings of messages that describe the caller's input
// and may be shown to them.
var safeMarkers = []string{
	"required",
	"invalid",
	"not found",
	"unknown",
	"already",
	"in progress",
	"must be",
	"cannot be",
	"too long",
}

// SafeError writes err's message when it describes bad input and the status
// is below 500. Anything else is logged sanitized and answered with a
// generic message.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError && isSafe(err.Error()) {
		JSON(w, code, map[string]string{"error": err.Error()})
		return
	}

	slog.Default().Error("request failed",
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": genericMessage(code)})
}

func isSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range safeMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func genericMessage(code int) string {
	switch code {
	case http.StatusBadGateway:
		return "upstream provider failed"
	case http.StatusServiceUnavailable:
		return "service unavailable"
	}
	if code >= http.StatusInternalServerError {
		return "internal server error"
	}
	return strings.ToLower(http.StatusText(code))
}
