package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tkasparek/tkasparek/internal/apperr"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteAppError answers with the status of err's kind and its message.
// Server side failures are logged with the request path.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"kind", apperr.KindOf(err).String(),
			"error", err,
		)
	}
	WriteError(w, status, err.Error())
}
