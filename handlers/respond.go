package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"cinelist/internal/apperr"
)

// exposeInternalErrors adds the underlying error text to 5xx responses.
var exposeInternalErrors atomic.Bool

// SetDebugErrors toggles detailed error bodies; enabled in development.
func SetDebugErrors(enabled bool) {
	exposeInternalErrors.Store(enabled)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps err to a status and a client-safe message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	body := map[string]string{"error": apperr.PublicMessage(err)}

	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed",
			"method", r.Method, "path", r.URL.Path, "kind", kind.String(), "error", err)
		if exposeInternalErrors.Load() {
			body["details"] = err.Error()
		}
	}
	writeJSON(w, status, body)
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.New(apperr.Validation, "request body is required")
	}
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	return nil
}
